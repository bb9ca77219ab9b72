// Command stagefs previews and applies serialized stagefs diffs.
//
// A transformation run produces a diff with stagefs.EncodeDiff; this tool
// renders the diff for review and commits it against real storage.
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/absfs/stagefs"
)

var log = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// applyBackend is the filesystem diffs are committed against. Tests swap
// in an in-memory backend.
var applyBackend afero.Fs = afero.NewOsFs()

func main() {
	if err := newRoot().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRoot() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:               "stagefs",
		Short:             "Preview and apply staged filesystem diffs",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(previewCmd())
	cmd.AddCommand(applyCmd())
	return cmd
}

func previewCmd() *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:     "preview <diff.yaml>",
		Short:   "Render a serialized diff as a change summary",
		Example: `  stagefs preview changes.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiff(args[0])
			if err != nil {
				return err
			}
			withOld := func(path string) ([]byte, bool) {
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, false
				}
				return data, true
			}
			opts := &stagefs.PreviewOptions{Color: !noColor, OldContent: withOld}
			return stagefs.WritePreview(cmd.OutOrStdout(), d, opts)
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func applyCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "apply <diff.yaml>",
		Short:   "Commit a serialized diff against real storage",
		Example: `  stagefs apply changes.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDiff(args[0])
			if err != nil {
				return err
			}
			if d.Empty() {
				log.Info("nothing to apply")
				return nil
			}
			if dryRun {
				log.Info("dry run, rendering preview only")
				return stagefs.WritePreview(cmd.OutOrStdout(), d, nil)
			}
			log.Debug("applying diff",
				"deletes", len(d.Deletes),
				"moves", len(d.Moves),
				"entries", len(d.Entries))
			applier := stagefs.NewApplier(applyBackend)
			if err := applier.Apply(cmd.Context(), d); err != nil {
				return err
			}
			log.Info("diff applied",
				"deletes", len(d.Deletes),
				"moves", len(d.Moves),
				"entries", len(d.Entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render the preview instead of applying")
	return cmd
}

func loadDiff(path string) (*stagefs.Diff, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open diff: %w", err)
	}
	defer f.Close()
	return stagefs.DecodeDiff(f)
}
