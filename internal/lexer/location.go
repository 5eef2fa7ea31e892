package lexer

import (
	"fmt"
	"strings"
)

// Location describes where the lexer stands, for error messages.
type Location struct {
	Path string // absolute path, empty for anonymous input
	Line uint32
	Near string // trimmed consumed window
}

func (l Location) String() string {
	var b strings.Builder
	if l.Path != "" {
		b.WriteString("in ")
		b.WriteString(l.Path)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "on line %d near from %s", l.Line, l.Near)
	return b.String()
}
