// Package math provides the vector and rotation helpers shared by the shape
// import and export paths.
package math

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vec3 is a 3D vector. It serializes as a JSON array [x, y, z], which is how
// shape files store positions.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the zero vector.
var Zero = Vec3{}

// V3 is a shorthand constructor.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Array returns the components as [3]float64.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Equals reports exact component equality (zero tolerance).
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// ApproxEquals reports equality within eps on every component.
func (v Vec3) ApproxEquals(other Vec3, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.Equals(Zero)
}

// String formats the vector as "[x y z]".
func (v Vec3) String() string {
	return fmt.Sprintf("[%g %g %g]", v.X, v.Y, v.Z)
}

// MarshalJSON writes the vector as a three element array.
func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Array())
}

// UnmarshalJSON reads a three element array.
func (v *Vec3) UnmarshalJSON(data []byte) error {
	var a []float64
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if len(a) != 3 {
		return fmt.Errorf("vec3: expected 3 components, got %d", len(a))
	}
	*v = Vec3{a[0], a[1], a[2]}
	return nil
}

// MarshalYAML writes the vector as a flow sequence.
func (v Vec3) MarshalYAML() (interface{}, error) {
	return []float64{v.X, v.Y, v.Z}, nil
}

// UnmarshalYAML reads a three element sequence.
func (v *Vec3) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var a []float64
	if err := unmarshal(&a); err != nil {
		return err
	}
	if len(a) != 3 {
		return fmt.Errorf("vec3: expected 3 components, got %d", len(a))
	}
	*v = Vec3{a[0], a[1], a[2]}
	return nil
}
