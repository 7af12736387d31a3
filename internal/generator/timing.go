package generator

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

const (
	timingPathEnv  = "VGADBG_TIMING_JSONL"
	timingFlagEnv  = "VGADBG_TIMING"
	defaultTimings = "timing.jsonl"
)

type timingEvent struct {
	Phase      string  `json:"phase"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status,omitempty"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

// timingRecorder streams one JSON line per finished stage. A recorder
// without a path records nothing.
type timingRecorder struct {
	start time.Time
	file  *os.File
	enc   *json.Encoder
	err   error
}

func newTimingRecorder(start time.Time, path string) *timingRecorder {
	tr := &timingRecorder{start: start}
	if path == "" {
		return tr
	}
	f, err := os.Create(path)
	if err != nil {
		tr.err = err
		return tr
	}
	tr.file = f
	tr.enc = json.NewEncoder(f)
	return tr
}

func (tr *timingRecorder) Err() error {
	if tr == nil {
		return nil
	}
	return tr.err
}

// Close closes the output and reports the first write or close failure.
func (tr *timingRecorder) Close() error {
	if tr == nil || tr.file == nil {
		return nil
	}
	err := tr.file.Close()
	tr.file, tr.enc = nil, nil
	if tr.err != nil {
		return tr.err
	}
	return err
}

func (tr *timingRecorder) RecordStage(phase string, start time.Time, duration time.Duration, status string) {
	if tr == nil || tr.enc == nil {
		return
	}
	startMS := durationToMS(start.Sub(tr.start))
	durationMS := durationToMS(duration)
	event := timingEvent{
		Phase:      phase,
		Kind:       "stage",
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	if err := tr.enc.Encode(event); err != nil && tr.err == nil {
		tr.err = err
	}
}

func durationToMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}

// resolveTimingPath picks where stage timings go: the environment path
// wins, then an explicit request, then the boolean environment switch.
func (g *Generator) resolveTimingPath() string {
	if g == nil {
		return ""
	}
	if envPath := os.Getenv(timingPathEnv); envPath != "" {
		return envPath
	}
	if g.Timing {
		if g.TimingPath != "" {
			return g.TimingPath
		}
		return defaultTimings
	}
	if envBool(timingFlagEnv) {
		return defaultTimings
	}
	return ""
}

func envBool(key string) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "on"
}
