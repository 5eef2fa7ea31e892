package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"jsphp/internal/pattern"
)

type patternJSON struct {
	Priority  int      `json:"priority"`
	Kind      string   `json:"kind"`
	Mode      string   `json:"mode"`
	Regex     string   `json:"regex,omitempty"`
	Literals  []string `json:"literals,omitempty"`
	Prefix    string   `json:"prefix,omitempty"`
	WholeWord bool     `json:"whole_word,omitempty"`
}

type patternsPayload struct {
	Fingerprint string        `json:"fingerprint"`
	Disallow    []string      `json:"disallow"`
	Builder     string        `json:"builder"`
	Patterns    []patternJSON `json:"patterns"`
}

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Print the effective pattern table in scan order",
		Args:  cobra.NoArgs,
		RunE:  runPatterns,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Int("expr-width", 60, "truncate expressions to this width in pretty output (0 = no limit)")
	addConfigFlags(cmd)
	return cmd
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	width, err := cmd.Flags().GetInt("expr-width")
	if err != nil {
		return fmt.Errorf("failed to get expr-width flag: %w", err)
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	builder := cfg.TokenBuilder
	if builder == "" {
		builder = "default"
	}

	switch strings.ToLower(format) {
	case "json":
		payload := patternsPayload{
			Fingerprint: cfg.Patterns.Fingerprint(),
			Disallow:    append([]string{}, cfg.Disallow...),
			Builder:     builder,
			Patterns:    make([]patternJSON, 0, cfg.Patterns.Len()),
		}
		for _, p := range cfg.Patterns.Sorted() {
			payload.Patterns = append(payload.Patterns, toPatternJSON(p))
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		return printPatterns(cmd.OutOrStdout(), cfg.Patterns, width)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func toPatternJSON(p pattern.Pattern) patternJSON {
	out := patternJSON{
		Priority:  p.Priority,
		Kind:      p.Kind.String(),
		Mode:      p.Mode.String(),
		Literals:  p.Literals,
		Prefix:    p.ValuePrefix,
		WholeWord: p.WordBoundary,
	}
	if p.Literals == nil {
		out.Regex = p.Expr
	}
	return out
}

func printPatterns(w io.Writer, table pattern.Table, width int) error {
	for _, p := range table.Sorted() {
		expr := "/" + p.Expr + "/"
		if p.Literals != nil {
			expr = strings.Join(p.Literals, " ")
		}
		if width > 0 {
			expr = runewidth.Truncate(expr, width, "...")
		}
		var flags []string
		if p.WordBoundary {
			flags = append(flags, "whole-word")
		}
		if p.ValuePrefix != "" {
			flags = append(flags, "prefix="+p.ValuePrefix)
		}
		line := fmt.Sprintf("%5d  %s %s %s",
			p.Priority,
			runewidth.FillRight(p.Kind.String(), 10),
			runewidth.FillRight(p.Mode.String(), 6),
			expr)
		if len(flags) > 0 {
			line += "  [" + strings.Join(flags, ", ") + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d patterns, fingerprint %s\n", table.Len(), shortHash(table.Fingerprint()))
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
