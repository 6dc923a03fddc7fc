package attachments

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/config"
	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/internal/scene"
)

// Resolver infers step-parents and clothing slots for nodes that carry
// none. Unresolved lookups return ok == false and are never errors.
type Resolver struct {
	Mappings   config.StepParentMappings
	Slots      []string
	PathSlots  map[string]string // lower-case path segment -> slot
	ArmorSlots map[string]string // file name under an armor directory -> slot
}

// NewResolver builds a resolver from the attachments configuration.
func NewResolver(cfg *config.AttachmentsConfig) *Resolver {
	return &Resolver{
		Mappings:   cfg.StepParentMappings,
		Slots:      ActiveSlots(cfg),
		PathSlots:  cfg.PathSlots,
		ArmorSlots: cfg.ArmorSlots,
	}
}

// ResolveStepParent returns the bone n should follow: its explicit
// stepParentName, else whatever StepParentFor derives from its name.
func (r *Resolver) ResolveStepParent(n *scene.Node) (string, bool) {
	if name := strings.TrimSpace(n.StepParentName); name != "" {
		return name, true
	}
	return r.StepParentFor(n.Name)
}

// StepParentFor derives a step-parent from a group name. Exact mappings win,
// then pattern rules in two passes (specific rules first, default rules
// second), then the longest slot name the group name ends with, stripped
// from the name.
func (r *Resolver) StepParentFor(name string) (string, bool) {
	log := logger.Named("resolver")

	if sp, ok := r.Mappings.Exact[name]; ok && sp != "" {
		log.Debug("exact step-parent mapping", zap.String("group", name), zap.String("step_parent", sp))
		return sp, true
	}

	lower := strings.ToLower(name)
	for _, p := range r.Mappings.Patterns {
		if p.Contains == "" || !strings.Contains(lower, strings.ToLower(p.Contains)) {
			continue
		}
		switch {
		case p.EndsWith != "":
			if strings.HasSuffix(lower, strings.ToLower(p.EndsWith)) && p.StepParent != "" {
				return p.StepParent, true
			}
		case p.Default != "":
			// second pass
		case p.StepParent != "":
			return p.StepParent, true
		}
	}
	for _, p := range r.Mappings.Patterns {
		if p.Contains != "" && p.Default != "" && strings.Contains(lower, strings.ToLower(p.Contains)) {
			return p.Default, true
		}
	}

	slot := ""
	for _, s := range r.Slots {
		if len(s) > len(slot) && len(s) <= len(name) && strings.EqualFold(name[len(name)-len(s):], s) {
			slot = s
		}
	}
	if slot == "" {
		log.Debug("no step-parent for group", zap.String("group", name))
		return "", false
	}
	sp := name[:len(name)-len(slot)]
	if sp == "" {
		return "", false
	}
	return sp, true
}

// InferSlot infers a clothing slot from a file path with the resolver's
// tables.
func (r *Resolver) InferSlot(filePath string) (string, bool) {
	return InferSlotFromPath(filePath, r.PathSlots, r.ArmorSlots)
}

// InferSlotFromPath lower-cases filePath, splits it into segments and
// returns the slot of the rightmost segment found in table. Paths with an
// armor segment first map their file name through armor.
func InferSlotFromPath(filePath string, table, armor map[string]string) (string, bool) {
	if filePath == "" {
		return "", false
	}
	normalized := strings.ToLower(strings.ReplaceAll(filePath, `\`, "/"))
	segments := strings.Split(normalized, "/")

	for _, seg := range segments {
		if seg != "armor" {
			continue
		}
		file := segments[len(segments)-1]
		file = strings.TrimSuffix(file, path.Ext(file))
		if slot, ok := armor[file]; ok {
			return slot, true
		}
		break
	}

	for i := len(segments) - 1; i >= 0; i-- {
		if slot, ok := table[segments[i]]; ok {
			return slot, true
		}
	}
	return "", false
}
