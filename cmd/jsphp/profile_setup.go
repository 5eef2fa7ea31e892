package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jsphp/internal/prof"
)

// setupProfiling reads the persistent profiling flags and starts the
// requested profilers. A nil session means profiling is off.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	pf := cmd.Root().PersistentFlags()

	cpuProfile, err := pf.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := pf.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	tracePath, err := pf.GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	cfg := prof.Config{CPUPath: cpuProfile, MemPath: memProfile, TracePath: tracePath}
	if !cfg.Enabled() {
		return nil, nil
	}
	session, err := prof.Start(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return session, nil
}
