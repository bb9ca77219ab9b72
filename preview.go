package stagefs

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// PreviewOptions controls diff preview rendering.
type PreviewOptions struct {
	// Color enables ANSI colors: red deletions, yellow moves, green writes.
	Color bool
	// OldContent, when set, supplies the current bytes of a path about to
	// be overwritten; the preview then includes a line-level content diff.
	// Returning false means the path has no previous content.
	OldContent func(path string) ([]byte, bool)
}

// WritePreview renders a human-readable summary of a diff, grouped as
// deletions, then moves, then directory creations and file writes. The
// grouping is cosmetic; the ordering that matters for correctness is the
// Applier contract.
func WritePreview(w io.Writer, d *Diff, opts *PreviewOptions) error {
	if opts == nil {
		opts = &PreviewOptions{}
	}
	paint := painter(opts.Color)

	if d.Empty() {
		_, err := fmt.Fprintln(w, "no pending changes")
		return err
	}
	for _, p := range d.Deletes {
		if _, err := fmt.Fprintln(w, paint(color.FgRed, "- delete "+p)); err != nil {
			return err
		}
	}
	for _, mv := range d.Moves {
		line := fmt.Sprintf("~ move %s -> %s", mv.Source, mv.Destination)
		if _, err := fmt.Fprintln(w, paint(color.FgYellow, line)); err != nil {
			return err
		}
	}
	for _, p := range d.EntryPaths() {
		e := d.Entries[p]
		if e.Dir {
			if _, err := fmt.Fprintln(w, paint(color.FgGreen, "+ mkdir "+p)); err != nil {
				return err
			}
			continue
		}
		line := fmt.Sprintf("+ write %s (%d bytes)", p, len(e.Data))
		if _, err := fmt.Fprintln(w, paint(color.FgGreen, line)); err != nil {
			return err
		}
		if opts.OldContent == nil {
			continue
		}
		old, ok := opts.OldContent(p)
		if !ok {
			continue
		}
		if err := writeContentDiff(w, string(old), string(e.Data), paint); err != nil {
			return err
		}
	}
	return nil
}

// writeContentDiff renders a line-level diff between old and new content,
// indented under the owning write line. Unchanged runs are elided.
func writeContentDiff(w io.Writer, oldText, newText string, paint func(color.Attribute, string) string) error {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, df := range diffs {
		var prefix string
		var attr color.Attribute
		switch df.Type {
		case diffmatchpatch.DiffDelete:
			prefix, attr = "-", color.FgRed
		case diffmatchpatch.DiffInsert:
			prefix, attr = "+", color.FgGreen
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(df.Text, "\n"), "\n") {
			if _, err := fmt.Fprintln(w, paint(attr, "    "+prefix+" "+line)); err != nil {
				return err
			}
		}
	}
	return nil
}

// painter returns a colorizing function honoring the Color option without
// mutating the package-global color state.
func painter(enabled bool) func(color.Attribute, string) string {
	if !enabled {
		return func(_ color.Attribute, s string) string { return s }
	}
	return func(attr color.Attribute, s string) string {
		c := color.New(attr)
		c.EnableColor()
		return c.Sprint(s)
	}
}
