package transcriber

import (
	"context"
	"fmt"
)

func (t *implTranscriber) Segment(ctx context.Context, audioPath string) (string, error) {
	segments, err := t.engine.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	t.logger.Debug(ctx, "Transcribed %d segments from %s", len(segments), audioPath)
	return Annotate(segments), nil
}
