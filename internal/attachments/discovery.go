package attachments

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/shapebridge/internal/scene"
)

// Section is the set of attachments carrying one clothing slot, in tree
// order.
type Section struct {
	Slot  string
	Nodes []*scene.Node
}

// IsAttachment reports whether n is a group or cube tagged with a slot.
func IsAttachment(n *scene.Node) bool {
	if n == nil || n.IsLocator() {
		return false
	}
	return strings.TrimSpace(n.ClothingSlot) != ""
}

// structural memoizes the structural-only check per node.
type structural map[scene.ID]bool

// of reports whether n is a structural-only parent: a non-empty group whose
// children are all attachments or structural-only parents themselves.
func (m structural) of(n *scene.Node) bool {
	if v, ok := m[n.ID()]; ok {
		return v
	}
	v := n.IsGroup() && n.NumChildren() > 0
	if v {
		for _, c := range n.Children() {
			if !IsAttachment(c) && !m.of(c) {
				v = false
				break
			}
		}
	}
	m[n.ID()] = v
	return v
}

// FindSections buckets tagged nodes by slot. Only slots in vocabulary are
// reported, empty buckets are dropped and sections are sorted by slot.
// Structural-only parents are left out so a wrapper group is not counted
// alongside its tagged children.
func FindSections(graph *scene.Graph, vocabulary []string) []Section {
	known := make(map[string]struct{}, len(vocabulary))
	for _, s := range vocabulary {
		known[s] = struct{}{}
	}

	memo := structural{}
	buckets := map[string][]*scene.Node{}
	graph.Walk(func(n *scene.Node) bool {
		if !IsAttachment(n) {
			return true
		}
		slot := strings.TrimSpace(n.ClothingSlot)
		if _, ok := known[slot]; !ok {
			return true
		}
		if memo.of(n) {
			return true
		}
		buckets[slot] = append(buckets[slot], n)
		return true
	})

	sections := make([]Section, 0, len(buckets))
	for slot, nodes := range buckets {
		sections = append(sections, Section{Slot: slot, Nodes: nodes})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Slot < sections[j].Slot })
	return sections
}

// Attachments returns every node listed in the sections, in section order.
func Attachments(graph *scene.Graph, vocabulary []string) []*scene.Node {
	var out []*scene.Node
	for _, s := range FindSections(graph, vocabulary) {
		out = append(out, s.Nodes...)
	}
	return out
}

// DeleteSection removes every attachment of the section from graph and
// returns how many subtrees were removed. Nodes already gone with an
// ancestor are skipped.
func DeleteSection(graph *scene.Graph, section Section) (int, error) {
	removed := 0
	for _, n := range section.Nodes {
		if !graph.Contains(n) {
			continue
		}
		if err := graph.Remove(n); err != nil {
			return removed, fmt.Errorf("delete section %s: %w", section.Slot, err)
		}
		removed++
	}
	return removed, nil
}
