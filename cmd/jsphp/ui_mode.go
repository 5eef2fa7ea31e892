package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// uiMode decides whether a directory scan draws the bubbletea progress view.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = []uiMode{uiModeAuto, uiModeOn, uiModeOff}

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return uiModeAuto, nil
	}
	if !slices.Contains(uiModes, mode) {
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// shouldUseTUI: в режиме auto прогресс рисуется только на живом терминале,
// stdout и stderr оба tty и TERM не dumb.
func shouldUseTUI(mode uiMode) bool {
	if mode != uiModeAuto {
		return mode == uiModeOn
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout) && isTerminal(os.Stderr)
}
