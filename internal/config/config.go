// Package config handles shapetool configuration loading and management.
package config

import "github.com/Faultbox/shapebridge/pkg/math"

// Config holds all settings.
type Config struct {
	Attachments AttachmentsConfig `yaml:"attachments"`
	Export      ExportConfig      `yaml:"export"`
	Import      ImportConfig      `yaml:"import"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AttachmentsConfig holds the clothing slot vocabulary and the naming tables
// used to infer step-parents and slots.
type AttachmentsConfig struct {
	Preset             string             `yaml:"preset"`       // glint, vintage_story or custom
	CustomSlots        []string           `yaml:"custom_slots"` // used when preset is custom
	StepParentMappings StepParentMappings `yaml:"stepparent_mappings"`
	PathSlots          map[string]string  `yaml:"path_slots"`  // path segment -> slot
	ArmorSlots         map[string]string  `yaml:"armor_slots"` // file name under armor/ -> slot
	FallbackSlot       string             `yaml:"fallback_slot"`
}

// StepParentMappings maps attachment group names to bone names.
type StepParentMappings struct {
	Exact    map[string]string `yaml:"exact"`
	Patterns []PatternRule     `yaml:"patterns"`
}

// PatternRule matches names containing Contains. With EndsWith set the rule
// also needs that suffix and yields StepParent; with Default set it is a
// fallback consulted only after every other rule failed.
type PatternRule struct {
	Contains   string `yaml:"contains"`
	EndsWith   string `yaml:"ends_with,omitempty"`
	StepParent string `yaml:"step_parent,omitempty"`
	Default    string `yaml:"default,omitempty"`
}

// ExportConfig holds shape export settings.
type ExportConfig struct {
	RootOffset    math.Vec3 `yaml:"root_offset,flow"`
	SplitComplex  bool      `yaml:"split_complex"`
	KeepBackdrops bool      `yaml:"keep_backdrops"`
}

// ImportConfig holds shape import settings.
type ImportConfig struct {
	AsBackdrop    bool            `yaml:"as_backdrop"`
	RotationOrder math.EulerOrder `yaml:"rotation_order"` // of documents created by import
}

// LoggingConfig holds logging settings. The rotation fields apply to
// LogFile only.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Attachments: AttachmentsConfig{
			Preset: "glint",
			StepParentMappings: StepParentMappings{
				Exact: map[string]string{},
			},
			PathSlots:    DefaultPathSlots(),
			ArmorSlots:   DefaultArmorSlots(),
			FallbackSlot: "Unknown",
		},
		Export: ExportConfig{
			RootOffset:   math.V3(8, 0, 8),
			SplitComplex: true,
		},
		Import: ImportConfig{
			RotationOrder: math.OrderXYZ,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// DefaultPathSlots returns the built-in path segment to slot table.
func DefaultPathSlots() map[string]string {
	return map[string]string{
		// Vintage Story clothing paths
		"upperbody":     "UpperBody",
		"upperbodyover": "UpperBodyOver",
		"lowerbody":     "LowerBody",
		"head":          "Head",
		"face":          "Face",
		"neck":          "Neck",
		"shoulder":      "Shoulder",
		"hand":          "Hand",
		"foot":          "Foot",
		"waist":         "Waist",
		"arm":           "Arm",
		"emblem":        "Emblem",
		"hair":          "Hair",

		// Glint paths
		"outerwear":  "Outerwear",
		"top":        "Top",
		"bottom":     "Bottom",
		"boot":       "Boot",
		"glove":      "Glove",
		"eyebrows":   "Eyebrows",
		"eyes":       "Eyes",
		"nose":       "Nose",
		"mouth":      "Mouth",
		"facialhair": "FacialHair",
		"earring":    "Earring",
		"ears":       "Ears",
		"faceitem":   "FaceItem",
		"hair-base":  "Hair Base",
		"hair-extra": "Hair Extra",
		"hair-face":  "Hair Face",
	}
}

// DefaultArmorSlots returns the armor file name to slot table.
func DefaultArmorSlots() map[string]string {
	return map[string]string{
		"body": "Armor Body",
		"head": "Armor Head",
		"legs": "Armor Legs",
	}
}
