package diagfmt

import (
	"fmt"
	"strings"

	"jsphp/internal/source"
)

// PathMode selects how diagnostic paths are printed.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // as loaded, basename for long absolute paths
	PathModeAbsolute                 // always absolute
	PathModeRelative                 // relative to the FileSet base dir (or the working directory)
	PathModeBasename                 // file name only
)

var pathModeNames = [...]string{"auto", "absolute", "relative", "basename"}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// ParsePathMode accepts the names printed by PathMode.String.
func ParsePathMode(s string) (PathMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return PathModeAuto, nil
	}
	for i, n := range pathModeNames {
		if n == name {
			return PathMode(i), nil
		}
	}
	return PathModeAuto, fmt.Errorf("invalid path mode %q (expected %s)", s, strings.Join(pathModeNames[:], "|"))
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста перед строкой ошибки
	PathMode  PathMode
	Width     uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	IncludePositions bool // line/col next to byte offsets
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// ShortOpts configures Short.
type ShortOpts struct {
	IncludeNotes bool
	PathMode     PathMode
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	if mode == PathModeRelative {
		return f.FormatPath(mode.String(), fs.BaseDir())
	}
	return f.FormatPath(mode.String(), "")
}

func displayPath(p string) string {
	if p == "" {
		return "<input>"
	}
	return p
}
