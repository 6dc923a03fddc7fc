package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// nodeFile is the on-disk form of a node in a scene document.
type nodeFile struct {
	Kind           string                             `yaml:"kind"`
	Name           string                             `yaml:"name"`
	Origin         math.Vec3                          `yaml:"origin,flow"`
	Rotation       *math.Vec3                         `yaml:"rotation,omitempty,flow"`
	From           *math.Vec3                         `yaml:"from,omitempty,flow"`
	To             *math.Vec3                         `yaml:"to,omitempty,flow"`
	Faces          map[formats.Direction]formats.Face `yaml:"faces,omitempty"`
	StepParentName string                             `yaml:"step_parent,omitempty"`
	ClothingSlot   string                             `yaml:"clothing_slot,omitempty"`
	Hologram       bool                               `yaml:"hologram,omitempty"`
	Backdrop       bool                               `yaml:"backdrop,omitempty"`
	Locked         bool                               `yaml:"locked,omitempty"`
	Children       []nodeFile                         `yaml:"children,omitempty"`
}

type documentFile struct {
	Name          string            `yaml:"name"`
	RotationOrder math.EulerOrder   `yaml:"rotation_order,omitempty"`
	TextureWidth  int               `yaml:"texture_width,omitempty"`
	TextureHeight int               `yaml:"texture_height,omitempty"`
	Textures      map[string]string `yaml:"textures,omitempty"`
	Nodes         []nodeFile        `yaml:"nodes"`
}

// MarshalDocument encodes a document as YAML.
func MarshalDocument(doc *Document) ([]byte, error) {
	file := documentFile{
		Name:          doc.Name,
		RotationOrder: doc.RotationOrder,
		TextureWidth:  doc.TextureWidth,
		TextureHeight: doc.TextureHeight,
		Textures:      doc.Textures,
	}
	for _, r := range doc.Graph.Roots() {
		file.Nodes = append(file.Nodes, toFile(r))
	}
	return yaml.Marshal(&file)
}

func toFile(n *Node) nodeFile {
	f := nodeFile{
		Kind:           n.Kind.String(),
		Name:           n.Name,
		Origin:         n.Origin,
		StepParentName: n.StepParentName,
		ClothingSlot:   n.ClothingSlot,
		Hologram:       n.Hologram,
		Backdrop:       n.Backdrop,
		Locked:         n.Locked,
	}
	if !n.Rotation.IsZero() {
		rot := n.Rotation
		f.Rotation = &rot
	}
	if n.IsCube() {
		from, to := n.From, n.To
		f.From, f.To = &from, &to
		f.Faces = n.Faces
	}
	for _, c := range n.children {
		f.Children = append(f.Children, toFile(c))
	}
	return f
}

// UnmarshalDocument decodes a YAML scene document into a fresh graph.
func UnmarshalDocument(data []byte) (*Document, error) {
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding scene document: %w", err)
	}

	doc := NewDocument(file.Name)
	if file.RotationOrder != "" {
		if !file.RotationOrder.Valid() {
			return nil, fmt.Errorf("scene document: unsupported rotation order %q", file.RotationOrder)
		}
		doc.RotationOrder = file.RotationOrder
	}
	if file.TextureWidth > 0 {
		doc.TextureWidth = file.TextureWidth
	}
	if file.TextureHeight > 0 {
		doc.TextureHeight = file.TextureHeight
	}
	for k, v := range file.Textures {
		doc.Textures[k] = v
	}

	for i := range file.Nodes {
		if err := fromFile(doc.Graph, &file.Nodes[i], nil); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func fromFile(g *Graph, f *nodeFile, parent *Node) error {
	n := &Node{
		Name:           f.Name,
		Origin:         f.Origin,
		StepParentName: f.StepParentName,
		ClothingSlot:   f.ClothingSlot,
		Hologram:       f.Hologram,
		Backdrop:       f.Backdrop,
		Locked:         f.Locked,
	}
	switch f.Kind {
	case "group", "":
		n.Kind = KindGroup
	case "cube":
		n.Kind = KindCube
		if f.From == nil || f.To == nil {
			return fmt.Errorf("scene document: cube %q without from/to", f.Name)
		}
		n.From, n.To = *f.From, *f.To
		n.Faces = f.Faces
	case "locator":
		n.Kind = KindLocator
	default:
		return fmt.Errorf("scene document: node %q has unknown kind %q", f.Name, f.Kind)
	}
	if f.Rotation != nil {
		n.Rotation = *f.Rotation
	}
	if n.Kind != KindGroup && len(f.Children) > 0 {
		return fmt.Errorf("scene document: %s %q cannot have children", n.Kind, f.Name)
	}

	if err := g.Add(n, parent); err != nil {
		return err
	}
	for i := range f.Children {
		if err := fromFile(g, &f.Children[i], n); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocument reads a scene document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene document: %w", err)
	}
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// SaveDocument writes doc to path.
func SaveDocument(doc *Document, path string) error {
	data, err := MarshalDocument(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
