package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestGetDefaults(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestGetTrimsAndFallsBack(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "  "
	GitCommit = " abc123 \n"
	info := Get()
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want abc123", info.GitCommit)
	}
}

func TestColoredPlain(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	cases := map[string]string{
		"0.1.0-dev": "0.1.0-dev",
		"1.2.3":     "1.2.3",
		"dev":       "dev",
	}
	for in, want := range cases {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColoredEnabled(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	if got := Colored("1.2.3"); got == "1.2.3" {
		t.Errorf("Colored did not add escape codes")
	}
}
