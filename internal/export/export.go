// Package export converts the active scene document into shape elements.
//
// Scene nodes carry absolute positions; shape elements are relative to their
// parent element. Groups export with from == to == rotationOrigin equal to
// the offset from the parent group, cubes export their corners and pivot
// relative to the parent group origin.
package export

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

// Options controls an export.
type Options struct {
	// RootOffset is added to top-level elements. It is skipped when the first
	// top-level group already sits at the offset.
	RootOffset math.Vec3
	// Split runs the complex-element splitter over the result.
	Split bool
	// KeepBackdrops exports backdrop subtrees too.
	KeepBackdrops bool
	// Animations are consulted by the splitter.
	Animations []formats.Animation
}

// DefaultOptions returns the options of the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(&config.Default().Export)
}

// OptionsFromConfig maps the export section of the configuration.
func OptionsFromConfig(cfg *config.ExportConfig) Options {
	return Options{
		RootOffset:    cfg.RootOffset,
		Split:         cfg.SplitComplex,
		KeepBackdrops: cfg.KeepBackdrops,
	}
}

// builder carries per-export state through the recursion.
type builder struct {
	opts   Options
	order  math.EulerOrder
	offset math.Vec3
	log    *zap.Logger
}

// Build walks the active document and returns its shape elements. It fails
// with scene.ErrNoActiveDocument when no document is open.
func Build(ws *scene.Workspace, opts Options) ([]formats.Element, error) {
	doc, err := ws.Require()
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	roots := doc.Graph.Roots()
	b := &builder{
		opts:   opts,
		order:  doc.RotationOrder,
		offset: rootOffset(roots, opts.RootOffset),
		log:    logger.Named("export"),
	}

	out := []formats.Element{}
	if err := b.emit(roots, nil, math.Zero, true, &out); err != nil {
		return nil, err
	}
	if !opts.Split {
		return out, nil
	}
	return transform.SplitComplex(out, opts.Animations)
}

// BuildShape exports the active document as a complete shape, carrying the
// document's texture references.
func BuildShape(ws *scene.Workspace, opts Options) (*formats.Shape, error) {
	elements, err := Build(ws, opts)
	if err != nil {
		return nil, err
	}
	doc := ws.Active()

	shape := &formats.Shape{
		TextureWidth:  doc.TextureWidth,
		TextureHeight: doc.TextureHeight,
		Textures:      make(map[string]string, len(doc.Textures)),
		Elements:      elements,
		Animations:    opts.Animations,
	}
	for k, v := range doc.Textures {
		shape.Textures[k] = v
	}
	return shape, nil
}

// rootOffset returns zero when the first top-level group already sits at
// the offset.
func rootOffset(roots []*scene.Node, offset math.Vec3) math.Vec3 {
	for _, n := range roots {
		if !n.IsGroup() {
			continue
		}
		if n.Origin.Equals(offset) {
			return math.Zero
		}
		break
	}
	return offset
}

// emit appends the elements for nodes to out. base is the absolute origin of
// the nearest emitted container and container receives attachment points.
func (b *builder) emit(nodes []*scene.Node, container *formats.Element, base math.Vec3, top bool, out *[]formats.Element) error {
	for _, n := range nodes {
		if n.Backdrop && !b.opts.KeepBackdrops {
			continue
		}

		switch n.Kind {
		case scene.KindGroup:
			if n.Hologram {
				// children are promoted to the current level
				if err := b.emit(n.Children(), container, base, top, out); err != nil {
					return err
				}
				continue
			}
			el, err := b.group(n, base, top)
			if err != nil {
				return err
			}
			if err := b.emit(n.Children(), &el, n.Origin, false, &el.Children); err != nil {
				return err
			}
			*out = append(*out, el)

		case scene.KindCube:
			el, err := b.cube(n, base, top)
			if err != nil {
				return err
			}
			*out = append(*out, el)

		case scene.KindLocator:
			if container == nil {
				b.log.Debug("locator outside a group, skipped", zap.String("node", n.Path()))
				continue
			}
			container.AttachmentPoints = append(container.AttachmentPoints, b.point(n, base))
		}
	}
	return nil
}

func (b *builder) relative(p, base math.Vec3, top bool) math.Vec3 {
	rel := p.Sub(base)
	if top {
		rel = rel.Add(b.offset)
	}
	return rel
}

func (b *builder) rotation(n *scene.Node) (math.Vec3, error) {
	rot, err := math.ReorderEuler(n.Rotation, b.order, math.OrderXYZ)
	if err != nil {
		return math.Zero, fmt.Errorf("export %s: %w", n, err)
	}
	return rot, nil
}

func (b *builder) group(n *scene.Node, base math.Vec3, top bool) (formats.Element, error) {
	pos := b.relative(n.Origin, base, top)
	origin := pos
	el := formats.Element{
		Name:           n.Name,
		From:           pos,
		To:             pos,
		RotationOrigin: &origin,
		StepParentName: n.StepParentName,
	}
	rot, err := b.rotation(n)
	if err != nil {
		return el, err
	}
	el.SetRotation(rot)
	return el, nil
}

func (b *builder) cube(n *scene.Node, base math.Vec3, top bool) (formats.Element, error) {
	origin := b.relative(n.Origin, base, top)
	el := formats.Element{
		Name:           n.Name,
		From:           b.relative(n.From, base, top),
		To:             b.relative(n.To, base, top),
		RotationOrigin: &origin,
		StepParentName: n.StepParentName,
	}
	if len(n.Faces) > 0 {
		el.Faces = make(map[formats.Direction]*formats.Face, len(n.Faces))
		for dir, face := range n.Faces {
			f := face
			el.Faces[dir] = &f
		}
	}
	rot, err := b.rotation(n)
	if err != nil {
		return el, err
	}
	el.SetRotation(rot)
	return el, nil
}

func (b *builder) point(n *scene.Node, base math.Vec3) formats.AttachmentPoint {
	pos := n.Origin.Sub(base)
	rot, err := b.rotation(n)
	if err != nil {
		b.log.Warn("locator rotation dropped", zap.String("node", n.Path()), zap.Error(err))
		rot = math.Zero
	}
	return formats.AttachmentPoint{
		Code:      n.Name,
		PosX:      pos.X,
		PosY:      pos.Y,
		PosZ:      pos.Z,
		RotationX: rot.X,
		RotationY: rot.Y,
		RotationZ: rot.Z,
	}
}
