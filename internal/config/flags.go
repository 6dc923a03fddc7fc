package config

import "flag"

// Flags holds command-line overrides shared by all shapetool commands.
type Flags struct {
	Config  string
	Debug   bool
	Preset  string
	LogFile string
}

// RegisterFlags registers the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Preset, "preset", "", "Attachment slot preset (glint, vintage_story, custom)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Preset != "" {
		cfg.Attachments.Preset = f.Preset
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
