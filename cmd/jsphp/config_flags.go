package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"jsphp/internal/config"
	"jsphp/internal/token"
)

// addConfigFlags registers the flags that override jsphp.toml.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("disallow", "", "space separated kinds that abort scanning (adds to the config file)")
	cmd.Flags().StringSlice("remove", nil, "kinds whose patterns are dropped")
	cmd.Flags().String("builder", "", "token builder ("+builderList()+")")
	cmd.Flags().Bool("prefix", false, "apply var/const prefixes to variable and constant values")
	cmd.Flags().Bool("no-config", false, "ignore jsphp.toml and use the built-in patterns")
}

// loadConfig resolves --config (or searches upwards from the working
// directory) and applies command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	cfg := config.Default()
	source := "built-in"

	noConfig, _ := cmd.Flags().GetBool("no-config")
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return cfg, "", fmt.Errorf("failed to get config flag: %w", err)
	}
	if !noConfig {
		if path == "" {
			found, ok, findErr := config.Find(".")
			if findErr != nil {
				return cfg, "", findErr
			}
			if ok {
				path = found
			}
		}
		if path != "" {
			if cfg, err = config.Load(path); err != nil {
				return cfg, "", err
			}
			source = path
		}
	}

	if cmd.Flags().Lookup("disallow") == nil {
		return cfg, source, nil
	}
	if raw, _ := cmd.Flags().GetString("disallow"); raw != "" {
		kinds, err := config.ParseDisallow(raw)
		if err != nil {
			return cfg, "", err
		}
		cfg = cfg.WithDisallow(slices.Concat(cfg.Disallow, kinds)...)
	}
	if kinds, _ := cmd.Flags().GetStringSlice("remove"); len(kinds) > 0 {
		cfg = cfg.RemoveKinds(kinds...)
	}
	if name, _ := cmd.Flags().GetString("builder"); name != "" {
		cfg.TokenBuilder = name
	}
	if prefixed, _ := cmd.Flags().GetBool("prefix"); prefixed {
		cfg = cfg.Prefixed()
	}
	if _, err := cfg.Builder(); err != nil {
		return cfg, "", err
	}
	return cfg, source, nil
}

func builderList() string {
	return strings.Join(token.BuilderNames(), "|")
}
