package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/Faultbox/shapebridge/pkg/math"
)

// Shape format errors.
var (
	ErrMalformedShape = errors.New("malformed shape")
)

// Direction is a cube face key.
type Direction string

const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists the six face keys in file order.
var Directions = []Direction{North, East, South, West, Up, Down}

// Face is a textured cube face.
type Face struct {
	Texture  string     `json:"texture"`
	UV       [4]float64 `json:"uv"`
	Rotation float64    `json:"rotation,omitempty"`
	WindMode []int      `json:"windMode,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty"`
}

// AttachmentPoint is a named locator in element-local space.
type AttachmentPoint struct {
	Code      string  `json:"code"`
	PosX      float64 `json:"posX"`
	PosY      float64 `json:"posY"`
	PosZ      float64 `json:"posZ"`
	RotationX float64 `json:"rotationX,omitempty"`
	RotationY float64 `json:"rotationY,omitempty"`
	RotationZ float64 `json:"rotationZ,omitempty"`
}

// Offset returns the local position of the point.
func (p AttachmentPoint) Offset() math.Vec3 {
	return math.Vec3{X: p.PosX, Y: p.PosY, Z: p.PosZ}
}

// Rotation returns the point rotation in degrees.
func (p AttachmentPoint) Rotation() math.Vec3 {
	return math.Vec3{X: p.RotationX, Y: p.RotationY, Z: p.RotationZ}
}

// Element is a node of the shape tree. Coordinates are relative to the
// parent element's From.
type Element struct {
	Name             string              `json:"name"`
	From             math.Vec3           `json:"from"`
	To               math.Vec3           `json:"to"`
	AutoUnwrap       bool                `json:"autoUnwrap,omitempty"`
	UV               []float64           `json:"uv,omitempty"`
	RotationOrigin   *math.Vec3          `json:"rotationOrigin,omitempty"`
	RotationX        float64             `json:"rotationX,omitempty"`
	RotationY        float64             `json:"rotationY,omitempty"`
	RotationZ        float64             `json:"rotationZ,omitempty"`
	Faces            map[Direction]*Face `json:"faces,omitempty"`
	AttachmentPoints []AttachmentPoint   `json:"attachmentpoints,omitempty"`
	StepParentName   string              `json:"stepParentName,omitempty"`
	Children         []Element           `json:"children,omitempty"`
}

// Rotation returns rotationX/Y/Z as a vector. Absent fields read as 0.
func (e *Element) Rotation() math.Vec3 {
	return math.Vec3{X: e.RotationX, Y: e.RotationY, Z: e.RotationZ}
}

// SetRotation sets rotationX/Y/Z. Zero components are omitted on write.
func (e *Element) SetRotation(r math.Vec3) {
	e.RotationX, e.RotationY, e.RotationZ = r.X, r.Y, r.Z
}

// Origin returns rotationOrigin, or the zero vector when unset.
func (e *Element) Origin() math.Vec3 {
	if e.RotationOrigin == nil {
		return math.Zero
	}
	return *e.RotationOrigin
}

// UnmarshalJSON decodes an element and checks the required fields.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var raw struct {
		plain
		From *math.Vec3 `json:"from"`
		To   *math.Vec3 `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("%w: element without name", ErrMalformedShape)
	}
	if raw.From == nil || raw.To == nil {
		return fmt.Errorf("%w: element %q: missing from/to", ErrMalformedShape, raw.Name)
	}

	*e = Element(raw.plain)
	e.From = *raw.From
	e.To = *raw.To

	// null faces are treated as absent
	for dir, face := range e.Faces {
		if face == nil {
			delete(e.Faces, dir)
		}
	}
	return nil
}

// EditorSettings holds editor-only metadata stored in the shape.
type EditorSettings struct {
	BackDropShape     string `json:"backDropShape,omitempty"`
	CollapsedPaths    string `json:"collapsedPaths,omitempty"`
	AllAngles         bool   `json:"allAngles,omitempty"`
	EntityTextureMode bool   `json:"entityTextureMode,omitempty"`
	VSFormatConverted bool   `json:"vsFormatConverted,omitempty"`
}

// Keyframe maps element names to animation keys. Keys are kept verbatim.
type Keyframe struct {
	Frame    int                        `json:"frame"`
	Elements map[string]json.RawMessage `json:"elements"`
}

// Animation is passed through untouched; only the keyed element names are
// inspected.
type Animation struct {
	Name               string     `json:"name"`
	Code               string     `json:"code"`
	QuantityFrames     int        `json:"quantityframes"`
	OnActivityStopped  string     `json:"onActivityStopped,omitempty"`
	OnAnimationEnd     string     `json:"onAnimationEnd,omitempty"`
	EaseAnimationSpeed bool       `json:"easeAnimationSpeed,omitempty"`
	Keyframes          []Keyframe `json:"keyframes"`
}

// Keys reports whether any keyframe targets the named element.
func (a *Animation) Keys(name string) bool {
	for _, kf := range a.Keyframes {
		if _, ok := kf.Elements[name]; ok {
			return true
		}
	}
	return false
}

// Shape is a parsed shape file.
type Shape struct {
	Editor        *EditorSettings   `json:"editor,omitempty"`
	TextureWidth  int               `json:"textureWidth,omitempty"`
	TextureHeight int               `json:"textureHeight,omitempty"`
	TextureSizes  map[string][2]int `json:"textureSizes,omitempty"`
	Textures      map[string]string `json:"textures"`
	Elements      []Element         `json:"elements"`
	Animations    []Animation       `json:"animations,omitempty"`
}

var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

// CleanJSON removes trailing commas (",]" and ",}"), which hand-edited shape
// files commonly contain.
func CleanJSON(data []byte) []byte {
	return trailingComma.ReplaceAll(data, []byte("$1"))
}

// ParseShape parses shape data. Nothing is returned unless the whole file
// is structurally valid.
func ParseShape(data []byte) (*Shape, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrMalformedShape)
	}

	var shape Shape
	if err := json.Unmarshal(CleanJSON(data), &shape); err != nil {
		if errors.Is(err, ErrMalformedShape) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedShape, err)
	}
	if shape.Elements == nil {
		return nil, fmt.Errorf("%w: missing elements", ErrMalformedShape)
	}
	if shape.Textures == nil {
		shape.Textures = make(map[string]string)
	}
	if shape.TextureWidth == 0 {
		shape.TextureWidth = 16
	}
	if shape.TextureHeight == 0 {
		shape.TextureHeight = 16
	}

	return &shape, nil
}

// ParseShapeFile reads and parses a shape file from disk.
func ParseShapeFile(path string) (*Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shape file: %w", err)
	}
	return ParseShape(data)
}

// MarshalShape encodes a shape with tab indentation.
func MarshalShape(s *Shape) ([]byte, error) {
	if s.Textures == nil {
		s.Textures = make(map[string]string)
	}
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	return json.MarshalIndent(s, "", "\t")
}

// WriteShapeFile encodes a shape and writes it to path.
func WriteShapeFile(path string, s *Shape) error {
	data, err := MarshalShape(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
