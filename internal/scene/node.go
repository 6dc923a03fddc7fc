// Package scene holds the editor-side model: a tree of groups, cubes and
// locators with absolute positions, owned by a Graph.
package scene

import (
	"fmt"

	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// ID identifies a node within its graph. IDs are never reused.
type ID uint64

// Kind is the node variant.
type Kind int

const (
	KindGroup   Kind = iota // container with origin and rotation
	KindCube                // geometric leaf
	KindLocator             // non-geometric marker (attachment point)
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindCube:
		return "cube"
	case KindLocator:
		return "locator"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Node is a scene node. Which fields are meaningful depends on Kind:
// From, To and Faces only apply to cubes, Hologram only to groups.
type Node struct {
	Kind     Kind
	Name     string
	Origin   math.Vec3 // absolute pivot
	Rotation math.Vec3 // degrees

	From  math.Vec3 // absolute corner, cubes
	To    math.Vec3 // absolute corner, cubes
	Faces map[formats.Direction]formats.Face

	// StepParentName names a bone this node follows at render time. It is a
	// lookup key, never an ownership edge.
	StepParentName string
	ClothingSlot   string
	Hologram       bool
	Backdrop       bool
	Locked         bool

	id       ID
	graph    *Graph
	parent   *Node
	children []*Node
}

// NewGroup returns a detached group.
func NewGroup(name string, origin math.Vec3) *Node {
	return &Node{Kind: KindGroup, Name: name, Origin: origin}
}

// NewCube returns a detached cube spanning from..to with its pivot at origin.
func NewCube(name string, from, to, origin math.Vec3) *Node {
	return &Node{Kind: KindCube, Name: name, From: from, To: to, Origin: origin}
}

// NewLocator returns a detached locator.
func NewLocator(name string, origin math.Vec3) *Node {
	return &Node{Kind: KindLocator, Name: name, Origin: origin}
}

// ID returns the node id, 0 while detached.
func (n *Node) ID() ID { return n.id }

// Parent returns the owning group, nil for top-level nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// IsGroup reports whether n is a group.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// IsCube reports whether n is a cube.
func (n *Node) IsCube() bool { return n.Kind == KindCube }

// IsLocator reports whether n is a locator.
func (n *Node) IsLocator() bool { return n.Kind == KindLocator }

// Size returns the cube extent.
func (n *Node) Size() math.Vec3 { return n.To.Sub(n.From) }

// Attached reports whether the node belongs to a graph.
func (n *Node) Attached() bool { return n.graph != nil }

// HasAncestor reports whether anc is a strict ancestor of n.
func (n *Node) HasAncestor(anc *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

// Path returns the slash separated names from the top level down to n.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.Name
	}
	return n.parent.Path() + "/" + n.Name
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %q#%d", n.Kind, n.Name, n.id)
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
