// Package attachments discovers clothing attachments in a scene, infers
// step-parents and slots from names and paths, and reconciles freshly
// imported attachment files into an existing model.
package attachments

import (
	"github.com/Faultbox/shapebridge/internal/config"
)

// Preset is a named clothing-slot vocabulary.
type Preset struct {
	Name        string
	Description string
	Slots       []string
}

// Glint is the Glint character customization vocabulary.
var Glint = Preset{
	Name:        "Glint",
	Description: "Glint character customization slots",
	Slots: []string{
		"Outerwear",
		"Top",
		"Bottom",
		"Boot",
		"Glove",
		"Eyebrows",
		"Eyes",
		"Nose",
		"Mouth",
		"FacialHair",
		"Earring",
		"Ears",
		"FaceItem",
		"Face",
		"Hair Base",
		"Hair Extra",
		"Hair Face",
	},
}

// VintageStory is the seraph clothing and armor vocabulary.
var VintageStory = Preset{
	Name:        "Vintage Story",
	Description: "Vintage Story Seraph clothing and armor slots",
	Slots: []string{
		// clothing
		"Arm",
		"Emblem",
		"Face",
		"Ears",
		"Hair",
		"Nose",
		"Foot",
		"Hand",
		"Head",
		"LowerBody",
		"Neck",
		"Shoulder",
		"UpperBody",
		"UpperBodyOver",
		"Waist",
		// armor
		"Armor Body",
		"Armor Head",
		"Armor Legs",
	},
}

// Presets maps configuration keys to built-in presets.
var Presets = map[string]Preset{
	"glint":         Glint,
	"vintage_story": VintageStory,
}

// PresetCustom selects the slots listed in the configuration.
const PresetCustom = "custom"

// ActiveSlots returns the slot vocabulary selected by cfg. A custom preset
// without slots and an unknown preset key both fall back to Glint.
func ActiveSlots(cfg *config.AttachmentsConfig) []string {
	var slots []string
	switch p, ok := Presets[cfg.Preset]; {
	case cfg.Preset == PresetCustom && len(cfg.CustomSlots) > 0:
		slots = cfg.CustomSlots
	case ok:
		slots = p.Slots
	default:
		slots = Glint.Slots
	}
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}
