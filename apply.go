package stagefs

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Applier commits a diff against real storage. Implementations must apply
// deletions first, replay moves in recorded order, and materialize entries
// so that every entry's parent directory exists before the entry itself.
// Commit is not transactional: a failure partway through leaves real
// storage in a mixed state.
type Applier interface {
	Apply(ctx context.Context, d *Diff) error
}

// fsApplier commits diffs to an afero backend.
type fsApplier struct {
	real *realFS
}

// NewApplier returns an Applier that commits diffs to the given base
// filesystem, normally the same base the FS was constructed over.
func NewApplier(base afero.Fs) Applier {
	return &fsApplier{real: &realFS{base: base}}
}

// Apply runs the three commit phases sequentially. It stops at the first
// failure and reports the phase and path; nothing applied so far is undone.
func (a *fsApplier) Apply(ctx context.Context, d *Diff) error {
	for _, p := range d.Deletes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.real.RemoveAll(p); err != nil {
			return fmt.Errorf("apply deletion of %s: %w", p, err)
		}
	}
	for _, mv := range d.Moves {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.real.Rename(mv.Source, mv.Destination); err != nil {
			return fmt.Errorf("apply move %s to %s: %w", mv.Source, mv.Destination, err)
		}
	}
	// Depth order plus unconditional parent creation: entry materialization
	// must never depend on lexicographic accidents of sibling names.
	for _, p := range d.EntryPaths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e := d.Entries[p]
		if e.Dir {
			if err := a.real.MkdirAll(p); err != nil {
				return fmt.Errorf("apply mkdir %s: %w", p, err)
			}
			continue
		}
		if err := a.real.WriteFile(p, e.Data); err != nil {
			return fmt.Errorf("apply write %s: %w", p, err)
		}
	}
	return nil
}

// Commit snapshots the overlay and applies it through the given Applier.
// The overlay keeps its state afterwards; discard the FS once committed.
func (f *FS) Commit(ctx context.Context, a Applier) error {
	return a.Apply(ctx, f.Diff())
}
