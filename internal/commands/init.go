package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string
	var email string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, email)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "profile name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&email, "email", "", "default address for bill reminders")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, email string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		"categories",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	cfg.Profile.Email = email
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	svc := categories.NewService(categories.DefaultMappings())
	if err := svc.Save(dir); err != nil {
		return fmt.Errorf("writing category map: %w", err)
	}

	// Secrets and mail history stay out of version control.
	gitignore := ".env\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized tally for %s at %s\n", name, dir)
	return nil
}
