package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/shapebridge/internal/attachments"
	"github.com/Faultbox/shapebridge/internal/config"
	"github.com/Faultbox/shapebridge/internal/export"
	"github.com/Faultbox/shapebridge/internal/importer"
	"github.com/Faultbox/shapebridge/internal/logger"
	"github.com/Faultbox/shapebridge/internal/scene"
	"github.com/Faultbox/shapebridge/internal/transform"
	"github.com/Faultbox/shapebridge/pkg/formats"
)

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	attach := fs.String("attach", "", "Export only these comma-separated attachment groups")
	noSplit := fs.Bool("no-split", false, "Keep complex elements as they are")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("export [-attach groups] <scene.yaml> [out.json]")
	}

	doc, err := scene.LoadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	opts := export.OptionsFromConfig(&cfg.Export)
	if *noSplit {
		opts.Split = false
	}

	var shape *formats.Shape
	if *attach == "" {
		shape, err = export.BuildShape(scene.NewWorkspace(doc), opts)
	} else {
		shape, err = exportAttachments(doc, splitList(*attach), cfg, opts)
	}
	if err != nil {
		return err
	}

	out := outputPath(fs, 1, defaultOut(fs.Arg(0), "", ".json"))
	if err := formats.WriteShapeFile(out, shape); err != nil {
		return err
	}
	fmt.Printf("Exported: %s (%d top-level elements)\n", out, len(shape.Elements))
	return nil
}

func exportAttachments(doc *scene.Document, names []string, cfg *config.Config, opts export.Options) (*formats.Shape, error) {
	groups := make([]*scene.Node, 0, len(names))
	for _, name := range names {
		g := doc.Graph.FindGroupByName(name)
		if g == nil {
			return nil, fmt.Errorf("no group named %q", name)
		}
		groups = append(groups, g)
	}

	resolver := attachments.NewResolver(&cfg.Attachments)
	elements, err := export.BuildAttachments(doc, groups, resolver, opts)
	if err != nil {
		return nil, err
	}
	if opts.Split {
		if elements, err = transform.SplitComplex(elements, nil); err != nil {
			return nil, err
		}
	}

	shape := &formats.Shape{
		TextureWidth:  doc.TextureWidth,
		TextureHeight: doc.TextureHeight,
		Textures:      make(map[string]string, len(doc.Textures)),
		Elements:      elements,
	}
	for k, v := range doc.Textures {
		shape.Textures[k] = v
	}
	return shape, nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	backdrop := fs.Bool("backdrop", false, "Import as a locked backdrop")
	into := fs.String("into", "", "Add to this scene document instead of creating one")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("import [-backdrop] [-into scene.yaml] <shape.json> [out.yaml]")
	}
	in := fs.Arg(0)

	shape, err := formats.ParseShapeFile(in)
	if err != nil {
		return err
	}

	resolver := attachments.NewResolver(&cfg.Attachments)
	opts := importer.OptionsFromConfig(&cfg.Import)
	opts.FilePath = in
	opts.Slots = resolver.Slots
	opts.InferSlot = resolver.InferSlot
	if *backdrop {
		opts.Backdrop = true
	}

	var doc *scene.Document
	out := outputPath(fs, 1, defaultOut(in, "", ".yaml"))
	if *into != "" {
		if doc, err = scene.LoadDocument(*into); err != nil {
			return err
		}
		opts.RotationOrder = doc.RotationOrder
		if fs.NArg() < 2 {
			out = *into
		}
	} else {
		doc = scene.NewDocument(stem(in))
		doc.RotationOrder = opts.RotationOrder
	}

	res, err := importer.ImportShape(doc, shape, opts)
	if err != nil {
		return err
	}
	printSkipped(res)

	if err := scene.SaveDocument(doc, out); err != nil {
		return err
	}
	fmt.Printf("Imported: %s (%d nodes, %d skipped)\n", out, len(res.Nodes), len(res.Skipped))
	return nil
}

func cmdSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	if _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("split <shape.json> [out.json]")
	}

	shape, err := formats.ParseShapeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	split, err := transform.SplitShape(shape)
	if err != nil {
		return err
	}

	out := outputPath(fs, 1, defaultOut(fs.Arg(0), "_split", ".json"))
	if err := formats.WriteShapeFile(out, split); err != nil {
		return err
	}
	fmt.Printf("Split: %s (%d complex elements)\n", out, countComplex(shape.Elements, shape.Animations))
	return nil
}

func countComplex(elements []formats.Element, animations []formats.Animation) int {
	n := 0
	for i := range elements {
		if transform.IsComplex(&elements[i], animations) {
			n++
		}
		n += countComplex(elements[i].Children, animations)
	}
	return n
}

func cmdAttach(args []string) error {
	fs := flag.NewFlagSet("attach", flag.ExitOnError)
	out := fs.String("o", "", "Output scene document (default: overwrite the input)")
	slot := fs.String("slot", "", "Clothing slot for every file instead of the inferred one")
	ask := fs.Bool("i", false, "Ask for the clothing slot of each file")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usageError("attach [-o out.yaml] [-slot name | -i] <scene.yaml> <shape.json>...")
	}

	doc, err := scene.LoadDocument(fs.Arg(0))
	if err != nil {
		return err
	}
	ws := scene.NewWorkspace(doc)

	resolver := attachments.NewResolver(&cfg.Attachments)
	rec := attachments.NewReconciler(resolver, cfg.Attachments.FallbackSlot)
	switch {
	case *slot != "":
		if !attachments.KnownSlot(*slot, resolver.Slots) {
			fields := []zap.Field{zap.String("slot", *slot), zap.String("preset", cfg.Attachments.Preset)}
			if hint, ok := attachments.SuggestSlot(*slot, resolver.Slots); ok {
				fields = append(fields, zap.String("did_you_mean", hint))
			}
			logger.Warn("slot is not in the active preset", fields...)
		}
		rec.Confirmer = attachments.SlotConfirmerFunc(func(string, string) (string, bool) {
			return *slot, true
		})
	case *ask:
		rec.Confirmer = newPromptConfirmer(os.Stdin, os.Stdout, cfg.Attachments.FallbackSlot)
	}

	for _, path := range fs.Args()[1:] {
		rep, err := attachFile(ws, rec, resolver, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		printReport(path, rep)
	}

	target := *out
	if target == "" {
		target = fs.Arg(0)
	}
	if err := scene.SaveDocument(doc, target); err != nil {
		return err
	}
	fmt.Printf("Saved: %s\n", target)
	return nil
}

// attachFile imports one attachment shape into the active document and
// reconciles it with what was there before.
func attachFile(ws *scene.Workspace, rec *attachments.Reconciler, resolver *attachments.Resolver, path string) (*attachments.Report, error) {
	shape, err := formats.ParseShapeFile(path)
	if err != nil {
		return nil, err
	}

	token, err := attachments.BeginImport(ws)
	if err != nil {
		return nil, err
	}
	doc := token.Document()
	res, err := importer.ImportShape(doc, shape, importer.Options{
		FilePath:      path,
		Slots:         resolver.Slots,
		InferSlot:     resolver.InferSlot,
		RotationOrder: doc.RotationOrder,
	})
	if err != nil {
		return nil, err
	}
	printSkipped(res)

	return rec.Reconcile(token, path, "import "+filepath.Base(path))
}

func printReport(path string, rep *attachments.Report) {
	if rep.Declined {
		fmt.Printf("%s: discarded (%d nodes removed)\n", path, rep.Removed)
		return
	}
	fmt.Printf("%s: slot %s, %d tagged, %d matched, %d reparented, %d merged\n",
		path, rep.Slot, rep.Tagged, len(rep.Matches), len(rep.Reparents), len(rep.Merges))
	for _, m := range rep.Matches {
		fmt.Printf("  %s -> %s\n", m.Imported, m.MatchedTo)
	}
	for _, r := range rep.Reparents {
		created := ""
		if r.Created {
			created = " (created)"
		}
		fmt.Printf("  %s under %s%s\n", r.Node, r.StepParent, created)
	}
	for _, m := range rep.Merges {
		fmt.Printf("  %s merged into %s (%d moved)\n", m.Duplicate, m.Into, m.Moved)
	}
	if rep.Failures > 0 {
		fmt.Fprintf(os.Stderr, "  %d moves failed, see log\n", rep.Failures)
	}
}

func printSkipped(res *importer.Result) {
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", s.Path, s.Err)
	}
}

func cmdSections(args []string) error {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	watch := fs.Bool("watch", false, "Print again whenever the document changes")
	del := fs.String("delete", "", "Delete every attachment of this slot and save")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("sections [-watch | -delete slot] <scene.yaml>")
	}
	path := fs.Arg(0)
	slots := attachments.ActiveSlots(&cfg.Attachments)

	if *del != "" {
		return deleteSection(path, *del, slots)
	}
	if err := printSections(path, slots); err != nil {
		return err
	}
	if *watch {
		return watchSections(path, slots)
	}
	return nil
}

func printSections(path string, slots []string) error {
	doc, err := scene.LoadDocument(path)
	if err != nil {
		return err
	}

	sections := attachments.FindSections(doc.Graph, slots)
	if len(sections) == 0 {
		fmt.Println("No attachments")
		return nil
	}
	for _, s := range sections {
		fmt.Printf("%s (%d)\n", s.Slot, len(s.Nodes))
		for _, n := range s.Nodes {
			fmt.Printf("  %s\n", n.Path())
		}
	}
	return nil
}

func deleteSection(path, slot string, slots []string) error {
	doc, err := scene.LoadDocument(path)
	if err != nil {
		return err
	}

	for _, s := range attachments.FindSections(doc.Graph, slots) {
		if s.Slot != slot {
			continue
		}
		removed, err := attachments.DeleteSection(doc.Graph, s)
		if err != nil {
			return err
		}
		if err := scene.SaveDocument(doc, path); err != nil {
			return err
		}
		fmt.Printf("Deleted %d attachments from %s\n", removed, slot)
		return nil
	}
	if hint, ok := attachments.SuggestSlot(slot, slots); ok && hint != slot {
		return fmt.Errorf("no attachments in slot %q (did you mean %q?)", slot, hint)
	}
	return fmt.Errorf("no attachments in slot %q", slot)
}

func cmdInferSlot(args []string) error {
	fs := flag.NewFlagSet("infer-slot", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("infer-slot <path>...")
	}

	resolver := attachments.NewResolver(&cfg.Attachments)
	for _, p := range fs.Args() {
		slot, ok := resolver.InferSlot(p)
		if !ok {
			slot = "-"
		}
		fmt.Printf("%s\t%s\n", p, slot)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Write to this file instead of the user config directory")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = config.UserConfigPath()
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", path)
	return nil
}

// outputPath returns positional argument i when given, else def.
func outputPath(fs *flag.FlagSet, i int, def string) string {
	if fs.NArg() > i {
		return fs.Arg(i)
	}
	return def
}

// defaultOut derives an output file next to in.
func defaultOut(in, suffix, ext string) string {
	return filepath.Join(filepath.Dir(in), stem(in)+suffix+ext)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
