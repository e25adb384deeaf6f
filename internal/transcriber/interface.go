package transcriber

import "context"

// Segment is one timed span of recognized speech.
type Segment struct {
	Start float64 // seconds from the beginning of the audio
	End   float64
	Text  string
}

// Engine turns an audio file into timed segments. Implementations are built
// once at startup and shared by concurrent runs.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// Transcriber produces the minute-marked transcript of an audio file.
type Transcriber interface {
	Segment(ctx context.Context, audioPath string) (string, error)
}
