// shapetool converts between scene documents and Vintage Story shape files
// and manages clothing attachments.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/shapebridge/internal/config"
	"github.com/Faultbox/shapebridge/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "export":
		err = cmdExport(args)
	case "import":
		err = cmdImport(args)
	case "split":
		err = cmdSplit(args)
	case "attach":
		err = cmdAttach(args)
	case "sections", "ls":
		err = cmdSections(args)
	case "infer-slot":
		err = cmdInferSlot(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shapetool - scene document and shape file utility

Usage:
  shapetool <command> [options]

Commands:
  export <scene.yaml> [out.json]           Export a scene document as a shape
  import <shape.json> [out.yaml]           Import a shape into a new scene document
  split <shape.json> [out.json]            Split complex elements
  attach <scene.yaml> <shape.json>...      Import attachment files and reconcile them
  sections <scene.yaml>                    List attachment sections
  infer-slot <path>...                     Print the slot inferred from file paths
  config [-o file]                         Write the effective configuration

Common options:
  -config <file>   Config file (default ./shapetool.yaml or user config dir)
  -debug           Enable debug logging
  -preset <name>   Slot preset: glint, vintage_story, custom

Examples:
  shapetool export seraph.yaml seraph.json
  shapetool export -attach Hat,Scarf seraph.yaml clothes.json
  shapetool import -backdrop seraph.json seraph.yaml
  shapetool attach -o dressed.yaml seraph.yaml shapes/head/hat.json
  shapetool sections -watch seraph.yaml
  shapetool sections -delete Head seraph.yaml`)
}

// setup parses args with the shared flags registered on fs, loads the
// configuration and initializes logging.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

// usageError is returned when positional arguments are missing.
type usageError string

func (u usageError) Error() string { return "usage: shapetool " + string(u) }
