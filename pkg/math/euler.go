package math

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerOrder names the sequence in which per-axis rotations are composed.
// "XYZ" means the rotation matrix is Rx * Ry * Rz.
type EulerOrder string

const (
	OrderXYZ EulerOrder = "XYZ"
	OrderZYX EulerOrder = "ZYX"
)

// Valid reports whether the order is supported.
func (o EulerOrder) Valid() bool {
	return o == OrderXYZ || o == OrderZYX
}

// gimbal threshold used by the decomposition, same as three.js.
const gimbalLimit = 0.9999999

// EulerToQuat composes degrees rotation (x, y, z) in the given order.
func EulerToQuat(rot Vec3, order EulerOrder) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(rot.X), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(rot.Y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(rot.Z), mgl64.Vec3{0, 0, 1})

	switch order {
	case OrderZYX:
		return qz.Mul(qy).Mul(qx)
	default:
		return qx.Mul(qy).Mul(qz)
	}
}

// QuatToEuler decomposes q into degrees rotation for the given order.
func QuatToEuler(q mgl64.Quat, order EulerOrder) Vec3 {
	m := q.Normalize().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m21, m22, m23 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m31, m32, m33 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	var x, y, z float64
	switch order {
	case OrderZYX:
		y = math.Asin(-clamp(m31, -1, 1))
		if math.Abs(m31) < gimbalLimit {
			x = math.Atan2(m32, m33)
			z = math.Atan2(m21, m11)
		} else {
			z = math.Atan2(-m12, m22)
		}
	default:
		y = math.Asin(clamp(m13, -1, 1))
		if math.Abs(m13) < gimbalLimit {
			x = math.Atan2(-m23, m33)
			z = math.Atan2(-m12, m11)
		} else {
			x = math.Atan2(m32, m22)
		}
	}

	return Vec3{mgl64.RadToDeg(x), mgl64.RadToDeg(y), mgl64.RadToDeg(z)}
}

// ReorderEuler converts degrees rotation expressed in order from into the
// angles producing the same orientation in order to.
func ReorderEuler(rot Vec3, from, to EulerOrder) (Vec3, error) {
	if !from.Valid() || !to.Valid() {
		return rot, fmt.Errorf("unsupported euler order %q -> %q", from, to)
	}
	if from == to || rot.IsZero() {
		return rot, nil
	}
	return QuatToEuler(EulerToQuat(rot, from), to), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
