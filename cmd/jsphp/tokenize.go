package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jsphp/internal/config"
	"jsphp/internal/diag"
	"jsphp/internal/diagfmt"
	"jsphp/internal/driver"
	"jsphp/internal/source"
)

// errScanFailed is returned after the diagnostics of failed files were printed.
var errScanFailed = errors.New("tokenization failed")

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] <file.js|dir>",
		Short: "Tokenize a JavaScript file or every *.js file under a directory",
		Long: `Tokenize scans the input with the configured pattern table and prints
the resulting tokens. Diagnostics go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: runTokenize,
	}
	cmd.Flags().String("format", "pretty", "token output format (pretty|json)")
	cmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|json|short)")
	cmd.Flags().String("path-mode", "auto", "diagnostic paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("cache", false, "reuse token streams from the on-disk cache")
	cmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/jsphp)")
	cmd.Flags().Bool("clear-cache", false, "drop every cached token stream before scanning")
	cmd.Flags().Int("jobs", 0, "parallel workers for directories (0 = GOMAXPROCS)")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	addConfigFlags(cmd)
	return cmd
}

type tokenizeFlags struct {
	format     string
	diagFormat string
	pathMode   diagfmt.PathMode
	jobs       int
	ui         uiMode
	maxDiag    int
	timings    bool
	quiet      bool
}

func readTokenizeFlags(cmd *cobra.Command) (tokenizeFlags, error) {
	var (
		tf  tokenizeFlags
		err error
	)
	if tf.format, err = cmd.Flags().GetString("format"); err != nil {
		return tf, fmt.Errorf("failed to get format flag: %w", err)
	}
	tf.format = strings.ToLower(tf.format)
	if tf.format != "pretty" && tf.format != "json" {
		return tf, fmt.Errorf("unknown format: %s", tf.format)
	}
	if tf.diagFormat, err = cmd.Flags().GetString("diag-format"); err != nil {
		return tf, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	switch tf.diagFormat = strings.ToLower(tf.diagFormat); tf.diagFormat {
	case "pretty", "json", "short":
	default:
		return tf, fmt.Errorf("unknown diag format: %s", tf.diagFormat)
	}
	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return tf, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if tf.pathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return tf, err
	}
	if tf.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return tf, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return tf, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if tf.ui, err = readUIMode(uiValue); err != nil {
		return tf, err
	}
	pf := cmd.Root().PersistentFlags()
	if tf.maxDiag, err = pf.GetInt("max-diagnostics"); err != nil {
		return tf, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	tf.timings, _ = pf.GetBool("timings")
	tf.quiet, _ = pf.GetBool("quiet")
	return tf, nil
}

func openCache(cmd *cobra.Command) (*driver.TokenCache, error) {
	enabled, _ := cmd.Flags().GetBool("cache")
	clearCache, _ := cmd.Flags().GetBool("clear-cache")
	if !enabled && !clearCache {
		return nil, nil
	}
	dir, _ := cmd.Flags().GetString("cache-dir")
	var (
		cache *driver.TokenCache
		err   error
	)
	if dir != "" {
		cache, err = driver.NewTokenCache(dir)
	} else {
		cache, err = driver.OpenTokenCache("jsphp")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open token cache: %w", err)
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear token cache: %w", err)
		}
	}
	if !enabled {
		return nil, nil
	}
	return cache, nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	target := args[0]

	tf, err := readTokenizeFlags(cmd)
	if err != nil {
		return err
	}
	cfg, cfgSource, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	if !tf.quiet && cfgSource != "built-in" {
		fmt.Fprintf(cmd.ErrOrStderr(), "using %s\n", cfgSource)
	}

	opts := driver.Options{
		MaxDiagnostics: tf.maxDiag,
		Jobs:           tf.jobs,
		Cache:          cache,
		Timings:        tf.timings,
	}

	st, err := os.Stat(target)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return tokenizeDir(cmd, target, cfg, opts, tf)
	}
	return tokenizeFile(cmd, target, cfg, opts, tf)
}

func tokenizeFile(cmd *cobra.Command, path string, cfg config.Config, opts driver.Options, tf tokenizeFlags) error {
	// Выполняем токенизацию
	result, err := driver.Tokenize(cmd.Context(), path, cfg, opts)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if err := printDiagnostics(cmd, result.Bag, result.FileSet, tf); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch tf.format {
	case "json":
		err = diagfmt.FormatTokensJSON(out, result.Tokens)
	default:
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.Err != nil {
		return errScanFailed
	}
	return nil
}

func tokenizeDir(cmd *cobra.Command, dir string, cfg config.Config, opts driver.Options, tf tokenizeFlags) error {
	var (
		fileSet *source.FileSet
		results []driver.TokenizeDirResult
		err     error
	)
	if tf.format == "pretty" && shouldUseTUI(tf.ui) {
		files, listErr := driver.ListSourceFiles(dir)
		if listErr != nil {
			return listErr
		}
		fileSet, results, err = runTokenizeWithUI(cmd.Context(), cmd.OutOrStdout(), "tokenize "+dir, files, func(ctx context.Context, sink driver.ProgressSink) (*source.FileSet, []driver.TokenizeDirResult, error) {
			o := opts
			o.Progress = sink
			return driver.TokenizeDir(ctx, dir, cfg, o)
		})
	} else {
		fileSet, results, err = driver.TokenizeDir(cmd.Context(), dir, cfg, opts)
	}
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	failed := 0
	merged := diag.NewBag(0)
	for _, r := range results {
		merged.Merge(r.Bag)
		if r.Err != nil || !r.Loaded {
			failed++
		}
	}
	if err := printDiagnostics(cmd, merged, fileSet, tf); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if tf.format == "json" {
		files := make([]diagfmt.FileTokensOutput, 0, len(results))
		for _, r := range results {
			entry := diagfmt.FileTokensOutput{
				Path:   r.Path,
				Tokens: diagfmt.TokensOutput(r.Tokens),
				Cached: r.Cached,
			}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			files = append(files, entry)
		}
		if err := diagfmt.FormatFileTokensJSON(out, files); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if err := printFileHeader(out, r); err != nil {
				return err
			}
			if err := diagfmt.FormatTokensPretty(out, r.Tokens, fileSet); err != nil {
				return err
			}
		}
		if !tf.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %d failed\n", len(results), failed)
		}
	}
	if failed > 0 {
		return errScanFailed
	}
	return nil
}

func printFileHeader(w io.Writer, r driver.TokenizeDirResult) error {
	header := "== " + r.Path
	if r.Cached {
		header += " (cached)"
	}
	_, err := fmt.Fprintln(w, header+" ==")
	return err
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, tf tokenizeFlags) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	if !tf.timings {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Code != diag.ObsTimings })
		if bag.Len() == 0 {
			return nil
		}
	}
	bag.Sort()
	errOut := cmd.ErrOrStderr()
	switch tf.diagFormat {
	case "json":
		return diagfmt.JSON(errOut, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			PathMode:         tf.pathMode,
		})
	case "short":
		return diagfmt.Short(errOut, bag, fs, diagfmt.ShortOpts{
			IncludeNotes: tf.timings,
			PathMode:     tf.pathMode,
		})
	default:
		diagfmt.Pretty(errOut, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			Context:   2,
			PathMode:  tf.pathMode,
			ShowNotes: tf.timings,
		})
		return nil
	}
}
