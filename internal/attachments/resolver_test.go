package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/shapebridge/internal/config"
	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/pkg/math"
)

func TestActiveSlots(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		custom []string
		want   []string
	}{
		{"glint", "glint", nil, Glint.Slots},
		{"vintage story", "vintage_story", nil, VintageStory.Slots},
		{"custom", PresetCustom, []string{"Cape", "Tail"}, []string{"Cape", "Tail"}},
		{"custom without slots", PresetCustom, nil, Glint.Slots},
		{"unknown", "nope", nil, Glint.Slots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Attachments
			cfg.Preset = tt.preset
			cfg.CustomSlots = tt.custom
			assert.Equal(t, tt.want, ActiveSlots(&cfg))
		})
	}

	// callers get their own copy
	cfg := config.Default().Attachments
	slots := ActiveSlots(&cfg)
	slots[0] = "changed"
	assert.Equal(t, "Outerwear", Glint.Slots[0])
}

func TestInferSlotFromPath(t *testing.T) {
	table := config.DefaultPathSlots()
	armor := config.DefaultArmorSlots()

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"assets/game/textures/head/helmet.json", "Head", true},
		{"/mods/x/shapes/armor/legs.json", "Armor Legs", true},
		{"/mods/x/shapes/armor/plate/head.json", "Armor Head", true},
		{`C:\Mods\Shapes\ARMOR\Body.JSON`, "Armor Body", true},
		{"/mods/x/shapes/armor/upperbody/cape.json", "UpperBody", true},
		{"/clothes/upperbody/neck/scarf.json", "Neck", true},
		{"/clothes/hair-base/braid.json", "Hair Base", true},
		{"/clothes/misc/thing.json", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := InferSlotFromPath(tt.path, table, armor)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepParentFor(t *testing.T) {
	r := &Resolver{
		Mappings: config.StepParentMappings{
			Exact: map[string]string{"Crown": "Head"},
			Patterns: []config.PatternRule{
				{Contains: "arm", Default: "UpperArmR"},
				{Contains: "arm", EndsWith: "l", StepParent: "UpperArmL"},
				{Contains: "glove", StepParent: "Hand"},
			},
		},
		Slots: []string{"Face", "Top", "FaceItem", "Hair Base", "Kelvin"},
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Crown", "Head", true},
		{"ArmbandL", "UpperArmL", true},
		{"Armband", "UpperArmR", true},
		{"LeatherGlove", "Hand", true},
		{"PirateFaceItem", "Pirate", true},
		{"NeckTop", "Neck", true},
		{"LongHair Base", "Long", true},
		{"pirateFACEITEM", "pirate", true},
		{"ȺhatTop", "Ⱥhat", true},
		// the Kelvin sign folds to k but is wider, so no suffix is cut
		{"Hat\u212Aelvin", "", false},
		{"Face", "", false},
		{"Cape", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.StepParentFor(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveStepParent(t *testing.T) {
	cfg := config.Default().Attachments
	r := NewResolver(&cfg)

	explicit := scene.NewGroup("HatFace", math.Zero)
	explicit.StepParentName = "Head"
	got, ok := r.ResolveStepParent(explicit)
	assert.True(t, ok)
	assert.Equal(t, "Head", got)

	padded := scene.NewGroup("Veil", math.Zero)
	padded.StepParentName = "  Head "
	got, ok = r.ResolveStepParent(padded)
	assert.True(t, ok)
	assert.Equal(t, "Head", got)

	got, ok = r.ResolveStepParent(scene.NewGroup("MaskFace", math.Zero))
	assert.True(t, ok)
	assert.Equal(t, "Mask", got)

	assert.Equal(t, "Head", mustInfer(t, r, "x/head/hat.json"))
}

func mustInfer(t *testing.T, r *Resolver, path string) string {
	t.Helper()
	slot, ok := r.InferSlot(path)
	assert.True(t, ok)
	return slot
}
