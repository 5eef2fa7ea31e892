package driver

import (
	"encoding/json"
	"fmt"

	"jsphp/internal/diag"
	"jsphp/internal/observ"
	"jsphp/internal/source"
)

// scanSummary is the JSON note attached to the OBS6001 diagnostic of one file.
type scanSummary struct {
	Path    string               `json:"path,omitempty"`
	Tokens  int                  `json:"tokens"`
	Cached  bool                 `json:"cached"`
	Failed  bool                 `json:"failed,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func newScanSummary(path string, out fileOutcome, report observ.Report) scanSummary {
	return scanSummary{
		Path:    path,
		Tokens:  len(out.tokens),
		Cached:  out.cached,
		Failed:  out.err != nil,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
}

// message is the one-line form, e.g. "tokenized main.js: 12 tokens in 0.40 ms (cached)".
func (s scanSummary) message() string {
	name := s.Path
	if name == "" {
		name = "<input>"
	}
	msg := fmt.Sprintf("tokenized %s: %d tokens in %.2f ms", name, s.Tokens, s.TotalMS)
	switch {
	case s.Failed:
		msg += " (stopped on error)"
	case s.Cached:
		msg += " (cached)"
	}
	return msg
}

// reportScanTimings adds the summary as an info diagnostic. A full bag is
// grown by one so the timing line is never lost.
func reportScanTimings(bag *diag.Bag, file source.FileID, s scanSummary) {
	if bag == nil {
		return
	}
	note, err := json.Marshal(s)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: file}, s.message()).
		WithNote(source.Span{File: file}, string(note))
	if bag.Add(d) {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(d)
	bag.Merge(extra)
}
