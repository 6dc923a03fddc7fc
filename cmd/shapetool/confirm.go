package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// promptConfirmer asks on the terminal which clothing slot an imported
// file gets.
type promptConfirmer struct {
	in       *bufio.Scanner
	out      io.Writer
	fallback string
}

func newPromptConfirmer(in io.Reader, out io.Writer, fallback string) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewScanner(in), out: out, fallback: fallback}
}

// ConfirmSlot offers the inferred slot as the default. An empty answer
// accepts it, "-" or end of input discards the import.
func (p *promptConfirmer) ConfirmSlot(inferred, filePath string) (string, bool) {
	def := inferred
	if def == "" {
		def = p.fallback
	}
	fmt.Fprintf(p.out, "Slot for %s [%s] (- to discard): ", filepath.Base(filePath), def)

	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	switch answer := strings.TrimSpace(p.in.Text()); answer {
	case "":
		return def, def != ""
	case "-":
		return "", false
	default:
		return answer, true
	}
}
