// Package transform classifies shape elements and rewrites element trees so
// that every element is either a pure container or a pure geometric leaf.
package transform

import (
	"github.com/Faultbox/shapebridge/pkg/formats"
)

// HasGeometry reports whether e renders a volume: it has faces and a
// non-degenerate extent.
func HasGeometry(e *formats.Element) bool {
	return len(e.Faces) > 0 && !e.From.Equals(e.To)
}

// HasChildren reports whether e has child elements.
func HasChildren(e *formats.Element) bool {
	return len(e.Children) > 0
}

// HasAttachments reports whether e carries attachment points.
func HasAttachments(e *formats.Element) bool {
	return len(e.AttachmentPoints) > 0
}

// HasAnimation reports whether any keyframe targets e by name.
func HasAnimation(e *formats.Element, animations []formats.Animation) bool {
	for i := range animations {
		if animations[i].Keys(e.Name) {
			return true
		}
	}
	return false
}

// HasGeometryWithHierarchy reports geometry mixed with children or
// attachment points.
func HasGeometryWithHierarchy(e *formats.Element) bool {
	return HasGeometry(e) && (HasChildren(e) || HasAttachments(e))
}

// IsComplex reports whether e must be split before import: it mixes
// geometry with hierarchy, or it is animated geometry that needs its own
// transform node.
func IsComplex(e *formats.Element, animations []formats.Animation) bool {
	return HasGeometryWithHierarchy(e) || (HasGeometry(e) && HasAnimation(e, animations))
}

// IsSimpleGroup reports a pure container.
func IsSimpleGroup(e *formats.Element) bool {
	return (HasChildren(e) || HasAttachments(e)) && !HasGeometry(e)
}

// IsSimpleCube reports a pure geometric leaf.
func IsSimpleCube(e *formats.Element) bool {
	return !HasChildren(e) && !HasAttachments(e) && HasGeometry(e)
}
