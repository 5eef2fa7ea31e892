package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jsphp/internal/prof"
	"jsphp/internal/version"
)

// runState holds what PersistentPreRunE started and run must stop.
type runState struct {
	trace   *traceSession
	profile *prof.Session
}

func (s *runState) close(stderr io.Writer, failed bool) {
	s.trace.Close(failed)
	if err := s.profile.Stop(); err != nil {
		fmt.Fprintf(stderr, "failed to write profiles: %v\n", err)
	}
	s.profile = nil
}

// newRootCmd собирает дерево команд; каждый вызов возвращает независимый экземпляр.
func newRootCmd() (*cobra.Command, *runState) {
	state := &runState{}
	root := &cobra.Command{
		Use:           "jsphp",
		Short:         "Pattern-priority JavaScript scanner",
		Long:          `jsphp splits JavaScript sources into tokens using an ordered, configurable pattern table`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			p, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			state.profile = p
			s, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			state.trace = s
			return nil
		},
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	pf.String("config", "", "path to jsphp.toml (default: search upwards from the working directory)")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|file|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode=ring|both")
	pf.String("trace-format", "auto", "trace encoding (auto|text|ndjson)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newTokenizeCmd())
	root.AddCommand(newPatternsCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root, state
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root, state := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	// PersistentPostRun не вызывается при ошибке, поэтому закрываем здесь
	state.close(stderr, err != nil)
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the given stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch strings.ToLower(mode) {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "auto", "":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}
