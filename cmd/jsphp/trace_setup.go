package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jsphp/internal/trace"
)

type traceFlags struct {
	output   string
	level    string
	mode     string
	format   string
	ringSize int
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var (
		tf  traceFlags
		err error
	)
	if tf.output, err = pf.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if tf.level, err = pf.GetString("trace-level"); err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if tf.mode, err = pf.GetString("trace-mode"); err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if tf.format, err = pf.GetString("trace-format"); err != nil {
		return tf, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	if tf.ringSize, err = pf.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	return tf, nil
}

// traceSession owns the tracer of one CLI invocation.
type traceSession struct {
	tracer trace.Tracer
	errOut io.Writer
	closed bool
}

// Close flushes the tracer. With failed set, a ring that was not streamed is
// dumped to errOut so the last events before the error are visible.
func (s *traceSession) Close(failed bool) {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if rec, ok := s.tracer.(*trace.Recorder); ok && failed && !rec.Streaming() {
		fmt.Fprintln(s.errOut, "trace: last events before failure:")
		if err := rec.DumpRecent(s.errOut); err != nil {
			fmt.Fprintf(s.errOut, "trace: dump error: %v\n", err)
		}
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(s.errOut, "trace: %v\n", err)
	}
}

// setupTracing attaches a tracer built from the trace flags to the command
// context. A nil session means tracing is off.
func setupTracing(cmd *cobra.Command) (*traceSession, error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}

	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil, nil
	}

	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(tf.format)
	if err != nil {
		return nil, err
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	}
	if tf.output == "" || tf.output == "-" {
		cfg.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.Open(cfg)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return &traceSession{tracer: tracer, errOut: cmd.ErrOrStderr()}, nil
}
