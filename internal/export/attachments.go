package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// StepParentResolver names the bone an attachment group follows.
type StepParentResolver interface {
	ResolveStepParent(n *scene.Node) (string, bool)
}

// BuildAttachments exports the given attachment groups as top-level
// elements of an attachment shape. Each group gets its resolved
// stepParentName and is positioned relative to that bone's origin, so the
// engine can mount it on the bone. Groups whose step-parent cannot be
// resolved or located export relative to the scene origin.
func BuildAttachments(doc *scene.Document, groups []*scene.Node, resolver StepParentResolver, opts Options) ([]formats.Element, error) {
	if doc == nil {
		return nil, fmt.Errorf("export attachments: %w", scene.ErrNoActiveDocument)
	}
	b := &builder{
		opts:  opts,
		order: doc.RotationOrder,
		log:   logger.Named("export.attachments"),
	}

	out := []formats.Element{}
	for _, g := range groups {
		if !doc.Graph.Contains(g) {
			return nil, fmt.Errorf("export attachments: %s: %w", g, scene.ErrNotInGraph)
		}

		stepParent, ok := resolver.ResolveStepParent(g)
		if !ok {
			b.log.Warn("no step-parent for attachment", zap.String("group", g.Name))
		}

		// top-level elements are offset by the negated bone origin
		b.offset = math.Zero
		if bone := doc.Graph.FindGroupByName(stepParent); ok && bone != nil {
			b.offset = bone.Origin.Neg()
		}

		var elements []formats.Element
		if err := b.emit([]*scene.Node{g}, nil, math.Zero, true, &elements); err != nil {
			return nil, err
		}
		for i := range elements {
			if ok && elements[i].StepParentName == "" {
				elements[i].StepParentName = stepParent
			}
		}
		out = append(out, elements...)
	}
	return out, nil
}
