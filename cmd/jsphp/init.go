package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jsphp/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter jsphp.toml",
		Long: `Initialize a scanner configuration by writing jsphp.toml into [dir]
(the current directory when omitted). A missing directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing jsphp.toml")
	return cmd
}

// runInit resolves the target directory, creates it when needed and writes
// config.Starter unless a configuration already exists.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	force, _ := cmd.Flags().GetBool("force")
	path := filepath.Join(target, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("already initialized: %s exists (use --force to overwrite)", path)
	}

	// the starter must stay loadable
	if _, err := config.Decode([]byte(config.Starter)); err != nil {
		return fmt.Errorf("built-in starter config is invalid: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.Starter), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, path); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", rel)
	return nil
}
