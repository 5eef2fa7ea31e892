package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"jsphp/internal/source"
)

// Cursor представляет собой позицию внутри окна файла [Off, Limit).
// The window text is converted to a string once, so Rest and Since slice
// it without copying.
type Cursor struct {
	File  *source.File
	Off   uint32
	Limit uint32 // exclusive upper bound for Off
	base  uint32
	src   string // File.Content[base:Limit]
}

// NewCursor creates a cursor over the whole file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return NewCursorIn(f, source.Span{File: f.ID, Start: 0, End: limit})
}

// NewCursorIn creates a cursor restricted to sp.
func NewCursorIn(f *source.File, sp source.Span) Cursor {
	return Cursor{
		File:  f,
		Off:   sp.Start,
		Limit: sp.End,
		base:  sp.Start,
		src:   string(f.Content[sp.Start:sp.End]),
	}
}

// EOF проверяет, достигнут ли конец окна
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Rest возвращает непрочитанную часть окна.
func (c *Cursor) Rest() string {
	if c.EOF() {
		return ""
	}
	return c.src[c.Off-c.base:]
}

// Since returns the window text between m and the current position.
func (c *Cursor) Since(m Mark) string {
	return c.src[uint32(m)-c.base : c.Off-c.base]
}

// Advance сдвигает курсор на n байт (не дальше Limit).
func (c *Cursor) Advance(n int) {
	step, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("cursor advance overflow: %w", err))
	}
	c.Off = min(c.Off+step, c.Limit)
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom получает Span для фрагмента, начиная с метки
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}

// Reset возвращает курсор назад к метке
func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}
