package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/nguyentantai21042004/edusummarize/internal/downloader"
)

// discardArtifact removes the downloaded audio and its run directory once it
// has been transcribed.
func (p *implProcessor) discardArtifact(ctx context.Context, art downloader.Artifact) {
	if p.keepAudio || art.Path == "" {
		return
	}
	if err := os.Remove(art.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn(ctx, "Failed to cleanup audio file %s: %v", art.Path, err)
		return
	}
	if art.Dir != "" {
		if err := os.RemoveAll(art.Dir); err != nil {
			p.logger.Warn(ctx, "Failed to cleanup run dir %s: %v", art.Dir, err)
		}
	}
	p.logger.Debug(ctx, "Cleaned up audio file: %s", art.Path)
}
