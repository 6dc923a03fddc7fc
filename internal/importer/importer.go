// Package importer builds scene nodes from split shape elements.
//
// A running accumulator tracks the absolute position of the current parent
// element's from. Groups land at accumulator + rotationOrigin, cubes at
// accumulator + from/to, and children advance the accumulator by from.
package importer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/config"
	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/internal/transform"
	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// SlotInferrer maps a source file path to a clothing slot.
type SlotInferrer func(path string) (string, bool)

// Options controls an import.
type Options struct {
	// FilePath is the source file, used for slot inference.
	FilePath string
	// Backdrop marks every created node as a locked backdrop.
	Backdrop bool
	// Slots is the active clothing-slot vocabulary.
	Slots []string
	// InferSlot derives a slot from FilePath. Nil disables path inference.
	InferSlot SlotInferrer
	// RotationOrder of the target document. Empty means XYZ.
	RotationOrder math.EulerOrder
}

// OptionsFromConfig maps the import section of the configuration.
func OptionsFromConfig(cfg *config.ImportConfig) Options {
	return Options{Backdrop: cfg.AsBackdrop, RotationOrder: cfg.RotationOrder}
}

// Skipped records an element that was not imported.
type Skipped struct {
	Path string
	Err  error
}

// Result lists what an import created.
type Result struct {
	Roots   []*scene.Node // created top-level nodes, in file order
	Nodes   []*scene.Node // every created node, parents before children
	Skipped []Skipped
}

type builder struct {
	graph  *scene.Graph
	opts   Options
	slots  map[string]struct{}
	result *Result
	log    *zap.Logger
}

// Build adds the elements to graph. It expects split input: an element that
// mixes geometry with children or attachment points is skipped with
// transform.ErrStructuralViolation and the rest of the batch continues.
// Zero-volume elements with faces are dropped. Elements with neither
// geometry nor hierarchy become empty groups.
func Build(graph *scene.Graph, elements []formats.Element, opts Options) (*Result, error) {
	if graph == nil {
		return nil, fmt.Errorf("import: %w", scene.ErrNoActiveDocument)
	}
	if opts.RotationOrder == "" {
		opts.RotationOrder = math.OrderXYZ
	}
	if !opts.RotationOrder.Valid() {
		return nil, fmt.Errorf("import: unsupported rotation order %q", opts.RotationOrder)
	}

	b := &builder{
		graph:  graph,
		opts:   opts,
		slots:  make(map[string]struct{}, len(opts.Slots)),
		result: &Result{},
		log:    logger.Named("import"),
	}
	for _, s := range opts.Slots {
		b.slots[s] = struct{}{}
	}

	for i := range elements {
		if err := b.element(nil, math.Zero, &elements[i], ""); err != nil {
			return b.result, err
		}
	}
	b.log.Debug("import built",
		zap.String("file", opts.FilePath),
		zap.Int("nodes", len(b.result.Nodes)),
		zap.Int("skipped", len(b.result.Skipped)))
	return b.result, nil
}

// ImportShape splits shape and adds it to doc. Texture references the
// document does not know yet are added; the texture size is taken from the
// shape when the document was empty.
func ImportShape(doc *scene.Document, shape *formats.Shape, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("import: %w", scene.ErrNoActiveDocument)
	}
	split, err := transform.SplitShape(shape)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if opts.RotationOrder == "" {
		opts.RotationOrder = doc.RotationOrder
	}

	if doc.Graph.Len() == 0 {
		if shape.TextureWidth > 0 {
			doc.TextureWidth = shape.TextureWidth
		}
		if shape.TextureHeight > 0 {
			doc.TextureHeight = shape.TextureHeight
		}
	}
	if doc.Textures == nil {
		doc.Textures = make(map[string]string, len(shape.Textures))
	}
	for name, loc := range shape.Textures {
		if _, ok := doc.Textures[name]; !ok {
			doc.Textures[name] = loc
		}
	}

	return Build(doc.Graph, split.Elements, opts)
}

func (b *builder) skip(path string, err error) {
	b.log.Warn("element skipped", zap.String("element", path), zap.Error(err))
	b.result.Skipped = append(b.result.Skipped, Skipped{Path: path, Err: err})
}

func (b *builder) element(parent *scene.Node, accum math.Vec3, e *formats.Element, prefix string) error {
	path := e.Name
	if prefix != "" {
		path = prefix + "/" + e.Name
	}

	switch {
	case transform.HasGeometryWithHierarchy(e):
		b.skip(path, fmt.Errorf("%w: %q mixes geometry and hierarchy", transform.ErrStructuralViolation, e.Name))
		return nil

	case transform.IsSimpleCube(e):
		return b.cube(parent, accum, e)

	case transform.IsSimpleGroup(e), len(e.Faces) == 0:
		group, err := b.group(parent, accum, e)
		if err != nil {
			return err
		}
		childAccum := accum.Add(e.From)
		if err := b.locators(group, childAccum, e.AttachmentPoints); err != nil {
			return err
		}
		for i := range e.Children {
			if err := b.element(group, childAccum, &e.Children[i], path); err != nil {
				return err
			}
		}
		return nil

	default:
		b.log.Debug("zero-volume element dropped", zap.String("element", path))
		return nil
	}
}

func (b *builder) rotation(r math.Vec3) (math.Vec3, error) {
	return math.ReorderEuler(r, math.OrderXYZ, b.opts.RotationOrder)
}

func (b *builder) add(n, parent *scene.Node) error {
	if b.opts.Backdrop {
		n.Backdrop = true
		n.Locked = true
	}
	if err := b.graph.Add(n, parent); err != nil {
		return fmt.Errorf("import %s: %w", n, err)
	}
	if parent == nil {
		b.result.Roots = append(b.result.Roots, n)
	}
	b.result.Nodes = append(b.result.Nodes, n)
	return nil
}

func (b *builder) group(parent *scene.Node, accum math.Vec3, e *formats.Element) (*scene.Node, error) {
	g := scene.NewGroup(e.Name, accum.Add(e.Origin()))
	rot, err := b.rotation(e.Rotation())
	if err != nil {
		return nil, err
	}
	g.Rotation = rot
	g.StepParentName = e.StepParentName

	if parent == nil && e.StepParentName != "" {
		b.inferSlot(g)
	}
	if err := b.add(g, parent); err != nil {
		return nil, err
	}
	return g, nil
}

// inferSlot tags a top-level attachment group. A step-parent that is itself
// a slot name wins over the file path.
func (b *builder) inferSlot(g *scene.Node) {
	if g.ClothingSlot != "" {
		return
	}
	if _, ok := b.slots[g.StepParentName]; ok {
		g.ClothingSlot = g.StepParentName
	} else if b.opts.InferSlot != nil && b.opts.FilePath != "" {
		if slot, ok := b.opts.InferSlot(b.opts.FilePath); ok {
			g.ClothingSlot = slot
		}
	}
	if g.ClothingSlot != "" {
		b.log.Debug("inferred clothing slot",
			zap.String("group", g.Name),
			zap.String("slot", g.ClothingSlot))
	}
}

func (b *builder) cube(parent *scene.Node, accum math.Vec3, e *formats.Element) error {
	pivot := e.From
	if e.RotationOrigin != nil {
		pivot = *e.RotationOrigin
	}
	c := scene.NewCube(e.Name, accum.Add(e.From), accum.Add(e.To), accum.Add(pivot))
	rot, err := b.rotation(e.Rotation())
	if err != nil {
		return err
	}
	c.Rotation = rot
	c.StepParentName = e.StepParentName
	c.Faces = make(map[formats.Direction]formats.Face, len(e.Faces))
	for dir, face := range e.Faces {
		c.Faces[dir] = *face
	}
	return b.add(c, parent)
}

func (b *builder) locators(group *scene.Node, accum math.Vec3, points []formats.AttachmentPoint) error {
	for _, p := range points {
		loc := scene.NewLocator(p.Code, accum.Add(p.Offset()))
		rot, err := b.rotation(p.Rotation())
		if err != nil {
			return err
		}
		loc.Rotation = rot
		if err := b.add(loc, group); err != nil {
			return err
		}
	}
	return nil
}
