package scene

import (
	"errors"

	"github.com/Faultbox/shapebridge/pkg/math"
)

// ErrNoActiveDocument is returned by operations that need an open document.
var ErrNoActiveDocument = errors.New("no active document")

// Document is one open model.
type Document struct {
	Name string
	Path string
	// RotationOrder is the Euler order the editor applies to node rotations.
	RotationOrder math.EulerOrder
	Graph         *Graph

	// Texture references carried through import and export. Pixel data is
	// never loaded.
	Textures      map[string]string
	TextureWidth  int
	TextureHeight int
}

// NewDocument returns an empty document using XYZ rotations.
func NewDocument(name string) *Document {
	return &Document{
		Name:          name,
		RotationOrder: math.OrderXYZ,
		Graph:         NewGraph(),
		Textures:      map[string]string{},
		TextureWidth:  16,
		TextureHeight: 16,
	}
}

// Workspace tracks the active document, the way a host editor does. Code
// that defers work across a document switch compares Active() by identity.
type Workspace struct {
	active *Document
}

// NewWorkspace returns a workspace with doc active (doc may be nil).
func NewWorkspace(doc *Document) *Workspace {
	return &Workspace{active: doc}
}

// Active returns the active document or nil.
func (w *Workspace) Active() *Document { return w.active }

// Open makes doc the active document, replacing any previous one.
func (w *Workspace) Open(doc *Document) { w.active = doc }

// Close closes the active document.
func (w *Workspace) Close() { w.active = nil }

// Require returns the active document or ErrNoActiveDocument.
func (w *Workspace) Require() (*Document, error) {
	if w == nil || w.active == nil {
		return nil, ErrNoActiveDocument
	}
	return w.active, nil
}
