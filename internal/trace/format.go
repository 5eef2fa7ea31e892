package trace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatAuto   Format = iota // by output extension, text otherwise
	FormatText                 // one readable line per event
	FormatNDJSON               // one JSON object per line
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

func formatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

func encode(ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		return encodeJSON(ev)
	}
	return encodeText(ev)
}

type jsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	Span      uint64            `json:"span,omitempty"`
	Parent    uint64            `json:"parent,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Failure   bool              `json:"failure,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func encodeJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:      ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Failure:   ev.Failure,
	}
	if len(ev.Attrs) > 0 {
		j.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			j.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(j)
	if err != nil {
		// only strings and integers inside, Marshal cannot fail here
		panic(err)
	}
	return append(data, '\n')
}

var kindMarks = map[Kind]string{KindBegin: ">", KindEnd: "<", KindPoint: "*"}

// encodeText renders "#seq scope mark name (detail) 1.2ms k=v ..." with
// attributes in insertion order.
func encodeText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString("#")
	sb.WriteString(strconv.FormatUint(ev.Seq, 10))
	sb.WriteString(" ")
	sb.WriteString(ev.Scope.String())
	sb.WriteString(" ")
	if ev.Failure {
		sb.WriteString("!")
	} else {
		sb.WriteString(kindMarks[ev.Kind])
	}
	sb.WriteString(" ")
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}
	if ev.Kind == KindEnd {
		fmt.Fprintf(&sb, " %.3fms", float64(ev.Elapsed.Microseconds())/1000)
	}
	for _, a := range ev.Attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(strconv.Quote(a.Value))
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}
