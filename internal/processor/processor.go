package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
)

// Process runs the stages strictly in order and stops at the first failure.
// Nothing is persisted unless every stage succeeded and the caller is
// verified.
func (p *implProcessor) Process(ctx context.Context, videoURL string, identity auth.Identity) (Result, error) {
	if err := ValidateURL(videoURL); err != nil {
		return Result{}, err
	}

	if err := p.sem.acquire(ctx); err != nil {
		return Result{}, fmt.Errorf("wait for pipeline slot: %w", err)
	}
	defer p.sem.release()

	startTime := time.Now()
	p.logger.Info(ctx, "Starting pipeline: %s (identity=%s, in flight=%d)", videoURL, identity.Status, p.sem.inFlight())

	artifact, err := p.downloader.Acquire(ctx, videoURL)
	if err != nil {
		p.logger.Error(ctx, "Acquisition failed for %s: %v", videoURL, err)
		return Result{}, stageFailure(StageAcquisition, err)
	}

	transcript, err := p.transcriber.Segment(ctx, artifact.Path)
	p.discardArtifact(ctx, artifact)
	if err != nil {
		p.logger.Error(ctx, "Transcription failed for %s: %v", videoURL, err)
		return Result{}, stageFailure(StageTranscription, err)
	}

	summary, err := p.summarizer.Summarize(ctx, transcript)
	if err != nil {
		p.logger.Error(ctx, "Summarization failed for %s: %v", videoURL, err)
		return Result{}, stageFailure(StageSummarization, err)
	}

	result := Result{
		Transcript: transcript,
		Summary:    summary,
		Title:      artifact.Title,
	}

	if identity.Verified() {
		rec := history.Record{
			UserID:     identity.UserID,
			VideoURL:   videoURL,
			Title:      artifact.Title,
			Transcript: transcript,
			Summary:    summary,
		}
		if err := p.history.Save(ctx, rec); err != nil {
			p.logger.Error(ctx, "History save failed for %s: %v", videoURL, err)
			return Result{}, stageFailure(StagePersistence, fmt.Errorf("failed to save history: %w", err))
		}
		result.Saved = true
	}

	p.logger.Info(ctx, "Pipeline completed: %s in %s (saved=%t)", videoURL, time.Since(startTime), result.Saved)
	return result, nil
}
