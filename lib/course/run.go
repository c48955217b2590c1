package course

import (
	"context"
	"time"
)

// Run describes one execution of the pipeline.
type Run struct {
	ID         string    `json:"id"`
	Term       string    `json:"term"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Targets    int       `json:"targets"`
	Failures   int       `json:"failures"`
	Stats      Stats     `json:"stats"`
}

// RunRecorder is implemented by sinks that also keep a history of runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}
