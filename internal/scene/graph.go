package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Graph errors.
var (
	ErrCycle        = errors.New("move would create a cycle")
	ErrNotInGraph   = errors.New("node is not part of this graph")
	ErrNotContainer = errors.New("only groups can have children")
	ErrAttached     = errors.New("node is already attached")
)

// Graph owns a forest of nodes. It is not safe for concurrent use; the
// core treats it as the single shared document state.
type Graph struct {
	roots  []*Node
	nodes  map[ID]*Node
	nextID ID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[ID]*Node)}
}

// Add attaches a detached node (with any detached children it already
// holds) under parent. A nil parent adds it at the top level.
func (g *Graph) Add(n, parent *Node) error {
	if n.graph != nil {
		return fmt.Errorf("adding %s: %w", n, ErrAttached)
	}
	if parent != nil {
		if parent.graph != g {
			return fmt.Errorf("adding %s under %s: %w", n, parent, ErrNotInGraph)
		}
		if !parent.IsGroup() {
			return fmt.Errorf("adding %s under %s: %w", n, parent, ErrNotContainer)
		}
	}

	g.register(n)
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	} else {
		g.roots = append(g.roots, n)
	}
	return nil
}

func (g *Graph) register(n *Node) {
	g.nextID++
	n.id = g.nextID
	n.graph = g
	g.nodes[n.id] = n
	for _, c := range n.children {
		c.parent = n
		g.register(c)
	}
}

// Move reparents n under target (nil = top level), appending it as the last
// child. Absolute positions are unchanged.
func (g *Graph) Move(n, target *Node) error {
	return g.MoveBefore(n, target, nil)
}

// MoveBefore is Move, but inserts n in front of the sibling before. When
// before is nil or not a child of target, n is appended.
func (g *Graph) MoveBefore(n, target, before *Node) error {
	if !g.Contains(n) {
		return fmt.Errorf("moving %s: %w", n, ErrNotInGraph)
	}
	if target != nil {
		if !g.Contains(target) {
			return fmt.Errorf("moving %s to %s: %w", n, target, ErrNotInGraph)
		}
		if !target.IsGroup() {
			return fmt.Errorf("moving %s to %s: %w", n, target, ErrNotContainer)
		}
		if target == n || target.HasAncestor(n) {
			return fmt.Errorf("moving %s to %s: %w", n, target, ErrCycle)
		}
	}

	g.detach(n)
	n.parent = target
	if target != nil {
		target.children = insertBefore(target.children, n, before)
	} else {
		g.roots = insertBefore(g.roots, n, before)
	}
	return nil
}

func insertBefore(list []*Node, n, before *Node) []*Node {
	if before != nil && before != n {
		for i, s := range list {
			if s == before {
				list = append(list, nil)
				copy(list[i+1:], list[i:])
				list[i] = n
				return list
			}
		}
	}
	return append(list, n)
}

// Remove deletes n and its whole subtree.
func (g *Graph) Remove(n *Node) error {
	if !g.Contains(n) {
		return fmt.Errorf("removing %s: %w", n, ErrNotInGraph)
	}
	g.detach(n)
	n.parent = nil
	g.unregister(n)
	return nil
}

func (g *Graph) unregister(n *Node) {
	delete(g.nodes, n.id)
	n.graph = nil
	for _, c := range n.children {
		g.unregister(c)
	}
}

func (g *Graph) detach(n *Node) {
	if p := n.parent; p != nil {
		if i := p.indexOf(n); i >= 0 {
			p.children = append(p.children[:i], p.children[i+1:]...)
		}
		return
	}
	for i, r := range g.roots {
		if r == n {
			g.roots = append(g.roots[:i], g.roots[i+1:]...)
			return
		}
	}
}

// Contains reports whether n is currently attached to g.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && n.graph == g && g.nodes[n.id] == n
}

// Node returns the node with the given id.
func (g *Graph) Node(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Roots returns a copy of the top-level nodes.
func (g *Graph) Roots() []*Node {
	out := make([]*Node, len(g.roots))
	copy(out, g.roots)
	return out
}

// Len returns the number of attached nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Walk visits every node depth-first, parents before children, in child
// order. Returning false from fn skips the node's subtree.
func (g *Graph) Walk(fn func(n *Node) bool) {
	for _, r := range g.Roots() {
		walk(r, fn)
	}
}

func walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		walk(c, fn)
	}
}

// All returns every node in Walk order.
func (g *Graph) All() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	g.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Groups returns every group in Walk order.
func (g *Graph) Groups() []*Node {
	var out []*Node
	g.Walk(func(n *Node) bool {
		if n.IsGroup() {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Snapshot returns the set of ids currently in the graph.
func (g *Graph) Snapshot() map[ID]struct{} {
	set := make(map[ID]struct{}, len(g.nodes))
	for id := range g.nodes {
		set[id] = struct{}{}
	}
	return set
}

// FindGroupsByName returns all groups whose name matches case-insensitively,
// in Walk order.
func (g *Graph) FindGroupsByName(name string) []*Node {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil
	}
	var out []*Node
	for _, grp := range g.Groups() {
		if strings.ToLower(grp.Name) == target {
			out = append(out, grp)
		}
	}
	return out
}

// FindGroupByName returns the first group matching name case-insensitively.
func (g *Graph) FindGroupByName(name string) *Node {
	if found := g.FindGroupsByName(name); len(found) > 0 {
		return found[0]
	}
	return nil
}
