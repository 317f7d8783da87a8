package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/meshmessaging/usenix23/config"
	"github.com/meshmessaging/usenix23/routing"
	"github.com/meshmessaging/usenix23/stats"
)

// Report is written at the end of a run.
type Report struct {
	ID      uuid.UUID     `json:"id"`
	Started time.Time     `json:"started"`
	Elapsed time.Duration `json:"elapsed"`
	Preset  string        `json:"preset,omitempty"`
	Config  config.Config `json:"config"`
	Ticks   int           `json:"ticks"`
	Links   int           `json:"links"`
	Summary stats.Summary `json:"summary"`
	Trace   *TraceInfo    `json:"trace,omitempty"`
}

// TraceInfo identifies the trace recorded during the run.
type TraceInfo struct {
	Path   string         `json:"path"`
	Format routing.Format `json:"format"`
	// Digest is the hex encoded blake3 hash of the trace file.
	Digest string `json:"digest"`
}

func newReport(started time.Time, conf config.Config, out outcome) *Report {
	return &Report{
		ID:      uuid.New(),
		Started: started.UTC(),
		Elapsed: out.Result.Elapsed,
		Preset:  conf.Preset,
		Config:  conf,
		Ticks:   out.Result.Ticks,
		Links:   out.Result.Links,
		Summary: out.Summary,
	}
}

// writeReport replaces the file at path with r, so that readers never observe
// a partially written report.
func writeReport(path string, r *Report) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(buf, '\n'))
	return err
}
