package attachments

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// ErrDocumentChanged is returned when the active document was replaced or
// closed between BeginImport and Reconcile.
var ErrDocumentChanged = errors.New("active document changed during import")

// Token is the first half of a two-phase import. It remembers which nodes
// existed and which document was active before the import added anything.
type Token struct {
	ws     *scene.Workspace
	doc    *scene.Document
	before map[scene.ID]struct{}
}

// BeginImport snapshots the active document. Nodes added to it afterwards
// count as newly imported when the token is reconciled.
func BeginImport(ws *scene.Workspace) (*Token, error) {
	doc, err := ws.Require()
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	return &Token{ws: ws, doc: doc, before: doc.Graph.Snapshot()}, nil
}

// Document returns the document the import targets.
func (t *Token) Document() *scene.Document { return t.doc }

// Existed reports whether n was in the graph before the import.
func (t *Token) Existed(n *scene.Node) bool {
	_, ok := t.before[n.ID()]
	return ok
}

// SlotConfirmer picks the slot applied to an import batch. Returning false
// or an empty slot declines the import and every imported node is removed
// again.
type SlotConfirmer interface {
	ConfirmSlot(inferred, filePath string) (slot string, ok bool)
}

// SlotConfirmerFunc adapts a function to SlotConfirmer.
type SlotConfirmerFunc func(inferred, filePath string) (string, bool)

// ConfirmSlot calls f.
func (f SlotConfirmerFunc) ConfirmSlot(inferred, filePath string) (string, bool) {
	return f(inferred, filePath)
}

// DefaultFallbackSlot is applied when no slot can be inferred.
const DefaultFallbackSlot = "Unknown"

// acceptInferred is the non-interactive confirmer.
type acceptInferred struct{ fallback string }

func (a acceptInferred) ConfirmSlot(inferred, _ string) (string, bool) {
	if inferred != "" {
		return inferred, true
	}
	return a.fallback, true
}

// AcceptInferred returns a confirmer that takes the inferred slot, or
// fallback when nothing could be inferred.
func AcceptInferred(fallback string) SlotConfirmer {
	return acceptInferred{fallback: fallback}
}

// Match records a slot match made by the first pass.
type Match struct {
	Imported  string
	MatchedTo string
	Slot      string
}

// Reparent records a node moved under its step-parent.
type Reparent struct {
	Node       string
	StepParent string
	Created    bool // the step-parent group was created
}

// Merge records a duplicate group folded into its base group.
type Merge struct {
	Duplicate string
	Into      string
	Moved     int
	Removed   bool
}

// Report summarises a reconciliation.
type Report struct {
	Label     string
	Matches   []Match
	Reparents []Reparent
	Merges    []Merge
	Slot      string
	Tagged    int
	Declined  bool
	Removed   int
	Failures  int
}

// Reconciler folds a batch of imported nodes into the existing model.
type Reconciler struct {
	Resolver  *Resolver
	Confirmer SlotConfirmer
}

// NewReconciler returns a reconciler that accepts the inferred slot or
// fallback without asking.
func NewReconciler(r *Resolver, fallback string) *Reconciler {
	return &Reconciler{Resolver: r, Confirmer: AcceptInferred(fallback)}
}

var numericSuffix = regexp.MustCompile(`\d+$`)

// reconcile holds the state of one run.
type reconcile struct {
	graph  *scene.Graph
	token  *Token
	report *Report
	log    *zap.Logger

	// journal lists moves of pre-existing nodes, undone on decline.
	journal []undoMove
	// emptied maps merged duplicates left empty to their Merges index.
	// They are only removed once the slot is confirmed.
	emptied map[*scene.Node]int
}

// undoMove puts node back under parent in front of before.
type undoMove struct {
	node, parent, before *scene.Node
}

// Reconcile runs the four passes over the nodes added since BeginImport:
// slot matching, step-parent reparenting, duplicate merging and slot
// assignment, strictly in that order. A failing move is logged and skipped.
// It returns ErrDocumentChanged without touching anything when the active
// document is no longer the token's.
func (r *Reconciler) Reconcile(token *Token, filePath, label string) (*Report, error) {
	if token == nil || token.ws.Active() != token.doc {
		return nil, ErrDocumentChanged
	}

	rc := &reconcile{
		graph:  token.doc.Graph,
		token:  token,
		report: &Report{Label: label},
		log:    logger.Named("reconcile").With(zap.String("label", label)),
	}

	rc.matchSlots()
	rc.reparent()
	rc.mergeDuplicates()

	inferred := ""
	if r.Resolver != nil {
		inferred, _ = r.Resolver.InferSlot(filePath)
	}
	confirmer := r.Confirmer
	if confirmer == nil {
		confirmer = AcceptInferred(DefaultFallbackSlot)
	}
	slot, ok := confirmer.ConfirmSlot(inferred, filePath)
	if ok && slot != "" {
		rc.removeEmptied()
		rc.applySlot(slot)
	} else {
		rc.rollback()
	}

	rc.log.Info("import reconciled",
		zap.String("file", filePath),
		zap.Int("matches", len(rc.report.Matches)),
		zap.Int("reparented", len(rc.report.Reparents)),
		zap.Int("merged", len(rc.report.Merges)),
		zap.String("slot", rc.report.Slot),
		zap.Bool("declined", rc.report.Declined),
		zap.Int("failures", rc.report.Failures))
	return rc.report, nil
}

func (rc *reconcile) isNew(n *scene.Node) bool {
	return !rc.token.Existed(n)
}

// newNodes returns the imported nodes still in the graph, in tree order.
func (rc *reconcile) newNodes() []*scene.Node {
	var out []*scene.Node
	rc.graph.Walk(func(n *scene.Node) bool {
		if rc.isNew(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// topLevelNew returns imported nodes whose parent is absent or pre-existing.
func (rc *reconcile) topLevelNew() []*scene.Node {
	var out []*scene.Node
	for _, n := range rc.newNodes() {
		if p := n.Parent(); p == nil || !rc.isNew(p) {
			out = append(out, n)
		}
	}
	return out
}

func (rc *reconcile) move(n, target *scene.Node, step string) bool {
	var undo undoMove
	if !rc.isNew(n) {
		undo = undoMove{node: n, parent: n.Parent(), before: rc.nextExisting(n)}
	}
	if err := rc.graph.Move(n, target); err != nil {
		rc.report.Failures++
		rc.log.Warn("move failed",
			zap.String("step", step),
			zap.String("node", n.Name),
			zap.Error(err))
		return false
	}
	if undo.node != nil {
		rc.journal = append(rc.journal, undo)
	}
	return true
}

// nextExisting returns the first pre-existing sibling after n.
func (rc *reconcile) nextExisting(n *scene.Node) *scene.Node {
	siblings := rc.graph.Roots()
	if p := n.Parent(); p != nil {
		siblings = p.Children()
	}
	after := false
	for _, s := range siblings {
		if s == n {
			after = true
			continue
		}
		if after && !rc.isNew(s) {
			return s
		}
	}
	return nil
}

// matchSlots moves the content of each slotted top-level imported group into
// the best pre-existing group of the same slot.
func (rc *reconcile) matchSlots() {
	for _, g := range rc.topLevelNew() {
		if !g.IsGroup() {
			continue
		}
		slot := strings.TrimSpace(g.ClothingSlot)
		if slot == "" {
			continue
		}
		target := rc.bestSlotMatch(slot, g.Name)
		if target == nil {
			continue
		}

		for _, c := range g.Children() {
			rc.move(c, target, "match")
		}
		rc.report.Matches = append(rc.report.Matches, Match{Imported: g.Name, MatchedTo: target.Name, Slot: slot})
		rc.log.Debug("slot match", zap.String("imported", g.Name), zap.String("matched", target.Name), zap.String("slot", slot))

		if g.NumChildren() == 0 {
			if err := rc.graph.Remove(g); err != nil {
				rc.report.Failures++
				rc.log.Warn("remove failed", zap.String("node", g.Name), zap.Error(err))
			}
		}
	}
}

// bestSlotMatch prefers a pre-existing group with the same slot and name,
// else the first pre-existing group with the slot, both case-insensitive.
func (rc *reconcile) bestSlotMatch(slot, name string) *scene.Node {
	slot = strings.ToLower(slot)
	name = strings.ToLower(strings.TrimSpace(name))

	var first *scene.Node
	for _, g := range rc.graph.Groups() {
		if rc.isNew(g) || strings.ToLower(strings.TrimSpace(g.ClothingSlot)) != slot {
			continue
		}
		if name != "" && strings.ToLower(strings.TrimSpace(g.Name)) == name {
			return g
		}
		if first == nil {
			first = g
		}
	}
	return first
}

// reparent moves every imported node with a step-parent under a group of
// that name, creating a top-level group when none exists.
func (rc *reconcile) reparent() {
	for _, n := range rc.newNodes() {
		if !rc.graph.Contains(n) {
			continue
		}
		name := strings.TrimSpace(n.StepParentName)
		if name == "" {
			continue
		}

		target, created := rc.stepParentGroup(n, name)
		if target == nil {
			rc.log.Debug("step-parent unresolved", zap.String("node", n.Name), zap.String("step_parent", name))
			continue
		}
		if target == n || target.HasAncestor(n) || n.Parent() == target {
			continue
		}
		if rc.move(n, target, "reparent") {
			rc.report.Reparents = append(rc.report.Reparents, Reparent{Node: n.Name, StepParent: target.Name, Created: created})
		}
	}
}

// stepParentGroup prefers a pre-existing group over one from this import
// batch. A usable imported group must not be n or inside n.
func (rc *reconcile) stepParentGroup(n *scene.Node, name string) (*scene.Node, bool) {
	matches := rc.graph.FindGroupsByName(name)
	if len(matches) == 0 {
		g := scene.NewGroup(name, math.Zero)
		if err := rc.graph.Add(g, nil); err != nil {
			rc.report.Failures++
			rc.log.Warn("creating step-parent failed", zap.String("step_parent", name), zap.Error(err))
			return nil, false
		}
		rc.log.Debug("created step-parent group", zap.String("step_parent", name))
		return g, true
	}

	for _, m := range matches {
		if !rc.isNew(m) {
			return m, false
		}
	}
	for _, m := range matches {
		if m != n && !m.HasAncestor(n) {
			return m, false
		}
	}
	return nil, false
}

// mergeDuplicates folds groups renamed with a numeric suffix ("head2") into
// the group carrying the base name. Groups are visited top-down. Emptied
// groups stay in place until the slot is confirmed.
func (rc *reconcile) mergeDuplicates() {
	for _, g := range rc.graph.Groups() {
		if !rc.graph.Contains(g) {
			continue
		}
		base := numericSuffix.ReplaceAllString(g.Name, "")
		if base == g.Name || strings.TrimSpace(base) == "" {
			continue
		}
		target := rc.graph.FindGroupByName(base)
		if target == nil || target == g {
			continue
		}

		merge := Merge{Duplicate: g.Name, Into: target.Name}
		for _, c := range g.Children() {
			if c == target || c.Parent() == target || target.HasAncestor(c) {
				continue
			}
			if rc.move(c, target, "merge") {
				merge.Moved++
			}
		}
		if g.NumChildren() == 0 {
			if rc.emptied == nil {
				rc.emptied = make(map[*scene.Node]int)
			}
			rc.emptied[g] = len(rc.report.Merges)
		}
		rc.report.Merges = append(rc.report.Merges, merge)
		rc.log.Debug("merged duplicate", zap.String("duplicate", g.Name), zap.String("into", target.Name), zap.Int("moved", merge.Moved))
	}
}

// removeEmptied drops merged duplicates that are still empty.
func (rc *reconcile) removeEmptied() {
	for g, i := range rc.emptied {
		if !rc.graph.Contains(g) || g.NumChildren() > 0 {
			continue
		}
		if err := rc.graph.Remove(g); err != nil {
			rc.report.Failures++
			rc.log.Warn("remove failed", zap.String("node", g.Name), zap.Error(err))
			continue
		}
		rc.report.Merges[i].Removed = true
	}
}

// applySlot tags imported groups and cubes that carry no slot yet.
func (rc *reconcile) applySlot(slot string) {
	rc.report.Slot = slot
	var tag func(n *scene.Node)
	tag = func(n *scene.Node) {
		if rc.isNew(n) && !n.IsLocator() && strings.TrimSpace(n.ClothingSlot) == "" {
			n.ClothingSlot = slot
			rc.report.Tagged++
		}
		for _, c := range n.Children() {
			tag(c)
		}
	}
	for _, n := range rc.topLevelNew() {
		tag(n)
	}
}

// rollback restores the graph to its state before the import: moves of
// pre-existing nodes are undone in reverse, then every imported node is
// removed. A pre-existing node still inside an imported group is hoisted to
// its parent.
func (rc *reconcile) rollback() {
	rc.report.Declined = true
	for i := len(rc.journal) - 1; i >= 0; i-- {
		u := rc.journal[i]
		if err := rc.graph.MoveBefore(u.node, u.parent, u.before); err != nil {
			rc.report.Failures++
			rc.log.Warn("undo failed", zap.String("node", u.node.Name), zap.Error(err))
		}
	}
	rc.journal = nil

	nodes := rc.newNodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !rc.graph.Contains(n) {
			continue
		}
		for _, c := range n.Children() {
			if !rc.isNew(c) {
				rc.move(c, n.Parent(), "rollback")
			}
		}
		if err := rc.graph.Remove(n); err != nil {
			rc.report.Failures++
			rc.log.Warn("remove failed", zap.String("node", n.Name), zap.Error(err))
			continue
		}
		rc.report.Removed++
	}
	rc.log.Info("import declined, imported nodes removed", zap.Int("removed", rc.report.Removed))
}
