package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
)

func newNormalizeCommand(opts *rootOptions) *cobra.Command {
	var repoDir string
	var out string
	var archive bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Write every import as one canonical transaction CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive && out == "" {
				return fmt.Errorf("--archive requires --out")
			}
			r, err := openRepo(repoDir, opts)
			if err != nil {
				return err
			}
			defer r.close()
			return runNormalize(cmd.OutOrStdout(), r, out, archive)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "tally directory")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&archive, "archive", false, "move the source files to import/processed/ afterwards")
	return cmd
}

func runNormalize(w io.Writer, r *repo, out string, archive bool) error {
	sources, err := importer.Scan(r.root)
	if err != nil {
		return err
	}

	_, txns, err := r.transactions()
	if err != nil {
		return err
	}

	if out == "" {
		return importer.WriteTransactions(w, txns)
	}

	outPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := importer.WriteTransactions(f, txns); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}
	fmt.Fprintf(w, "Wrote %d transactions to %s\n", len(txns), out)

	if !archive {
		return nil
	}
	moved := 0
	for _, src := range sources {
		if src.Path == outPath {
			continue
		}
		if err := importer.MarkProcessed(r.root, src.Name); err != nil {
			return err
		}
		moved++
	}
	fmt.Fprintf(w, "Archived %d import file(s)\n", moved)
	return nil
}
