package processor

import (
	"context"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
)

// Processor runs the video pipeline: acquire audio, transcribe, summarize and,
// for a verified caller, record the result in history.
type Processor interface {
	Process(ctx context.Context, videoURL string, identity auth.Identity) (Result, error)
}

// Result is the output of one successful run.
type Result struct {
	Transcript string
	Summary    string
	Title      string
	// Saved reports whether the run was written to the caller's history.
	Saved bool
}

// HistoryWriter is the part of history.Store the pipeline needs.
type HistoryWriter interface {
	Save(ctx context.Context, rec history.Record) error
}
