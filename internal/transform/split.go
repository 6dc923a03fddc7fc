package transform

import (
	"errors"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/pkg/formats"
	"github.com/Faultbox/shapebridge/pkg/math"
)

// ErrStructuralViolation marks an element tree that breaks the
// container-or-leaf rule, or a move that would break the tree.
var ErrStructuralViolation = errors.New("structural violation")

// GeometrySuffix is appended to the name of the leaf split off a complex
// element.
const GeometrySuffix = "_geo"

// Clone deep-copies an element tree.
func Clone(elements []formats.Element) ([]formats.Element, error) {
	if elements == nil {
		return nil, nil
	}
	out := make([]formats.Element, 0, len(elements))
	if err := copier.CopyWithOption(&out, &elements, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}

// SplitComplex returns a copy of elements in which no element is complex.
// Each complex element becomes a container keeping its name, position,
// rotation, step-parent, attachment points and children, with a new first
// child "<name>_geo" holding the faces. The input is never modified.
// Running SplitComplex on its own output returns an equal tree.
func SplitComplex(elements []formats.Element, animations []formats.Animation) ([]formats.Element, error) {
	cloned, err := Clone(elements)
	if err != nil {
		return nil, err
	}
	splitAll(cloned, animations)
	return cloned, nil
}

// SplitShape returns a copy of shape with its elements split. The input is
// left untouched.
func SplitShape(shape *formats.Shape) (*formats.Shape, error) {
	elements, err := SplitComplex(shape.Elements, shape.Animations)
	if err != nil {
		return nil, err
	}
	out := *shape
	out.Elements = elements
	return &out, nil
}

// splitAll works on an owned copy. Children are split before their parent is
// inspected, so every nested complex element is split on its own.
func splitAll(elements []formats.Element, animations []formats.Animation) {
	for i := range elements {
		e := &elements[i]
		splitAll(e.Children, animations)
		if IsComplex(e, animations) {
			logger.Debug("splitting complex element", zap.String("element", e.Name))
			elements[i] = splitElement(*e)
		}
	}
}

// splitElement separates geometry from hierarchy. Both halves share the
// maps and slices of complex, which is an owned copy.
func splitElement(complex formats.Element) formats.Element {
	from := complex.From

	geometry := formats.Element{
		Name:       complex.Name + GeometrySuffix,
		From:       math.Zero,
		To:         complex.To.Sub(from),
		AutoUnwrap: complex.AutoUnwrap,
		UV:         complex.UV,
		Faces:      complex.Faces,
	}
	geoOrigin := math.Zero
	if complex.RotationOrigin != nil {
		geoOrigin = complex.RotationOrigin.Sub(from)
	}
	geometry.RotationOrigin = &geoOrigin

	parent := complex
	parent.To = from
	parent.Faces = nil
	parent.UV = nil
	parent.AutoUnwrap = false
	parent.Children = append([]formats.Element{geometry}, complex.Children...)

	return parent
}
