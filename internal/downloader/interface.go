package downloader

import "context"

// Downloader fetches the audio track of a video and stores it locally.
type Downloader interface {
	Acquire(ctx context.Context, videoURL string) (Artifact, error)
}

// Artifact is a local audio file produced for a single pipeline run.
// Dir is the run's private directory holding Path; it is empty when the
// file is not owned by the run.
type Artifact struct {
	Path            string
	Dir             string
	Format          string
	SourceID        string
	Title           string
	DurationSeconds float64
}
