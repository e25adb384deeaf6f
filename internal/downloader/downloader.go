package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// videoInfo is the subset of yt-dlp's info JSON the pipeline needs.
type videoInfo struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Duration          float64 `json:"duration"`
	RequestedDownload []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// Acquire downloads the best audio stream for videoURL and converts it to
// the configured format. Every call writes into its own run directory under
// the download dir, so two URLs resolving to the same source id never share
// a file. The file is named <source id>.<format> inside that directory.
func (d *implDownloader) Acquire(ctx context.Context, videoURL string) (Artifact, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("audio download failed: create download dir: %w", err)
	}
	runDir, err := os.MkdirTemp(d.dir, "run-*")
	if err != nil {
		return Artifact{}, fmt.Errorf("audio download failed: create run dir: %w", err)
	}

	art, err := d.acquireInto(ctx, runDir, videoURL)
	if err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			d.logger.Warn(ctx, "Failed to remove run dir %s: %v", runDir, rmErr)
		}
		return Artifact{}, fmt.Errorf("audio download failed: %w", err)
	}
	return art, nil
}

func (d *implDownloader) acquireInto(ctx context.Context, runDir, videoURL string) (Artifact, error) {
	d.logger.Info(ctx, "Downloading audio: %s", videoURL)

	// --dump-single-json with --no-simulate prints the info dict once the
	// download and the audio post-processing have finished.
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", d.format,
		"--audio-quality", d.quality,
		"--no-playlist",
		"--output", filepath.Join(runDir, "%(id)s.%(ext)s"),
		"--dump-single-json",
		"--no-simulate",
		"--quiet",
		"--no-warnings",
		videoURL,
	}

	out, err := d.executor.Execute(ctx, d.binary, args...)
	if err != nil {
		return Artifact{}, err
	}

	info, err := parseInfo(out)
	if err != nil {
		return Artifact{}, err
	}

	path := d.outputPath(runDir, info)
	if _, err := os.Stat(path); err != nil {
		return Artifact{}, fmt.Errorf("output not found: %w", err)
	}

	d.logger.Info(ctx, "Audio downloaded: %s", path)
	return Artifact{
		Path:            path,
		Dir:             runDir,
		Format:          d.format,
		SourceID:        info.ID,
		Title:           info.Title,
		DurationSeconds: info.Duration,
	}, nil
}

// outputPath prefers the post-processed path reported by yt-dlp and falls
// back to the output template.
func (d *implDownloader) outputPath(runDir string, info videoInfo) string {
	for _, rd := range info.RequestedDownload {
		if rd.Filepath != "" && strings.EqualFold(filepath.Ext(rd.Filepath), "."+d.format) {
			return rd.Filepath
		}
	}
	return filepath.Join(runDir, info.ID+"."+d.format)
}

func parseInfo(out string) (videoInfo, error) {
	var info videoInfo

	// Anything yt-dlp prints before the JSON object (stray notices) is skipped.
	trimmed := strings.TrimSpace(out)
	if i := strings.Index(trimmed, "{"); i > 0 {
		trimmed = trimmed[i:]
	}
	if trimmed == "" {
		return info, fmt.Errorf("empty metadata from yt-dlp")
	}

	if err := json.Unmarshal([]byte(trimmed), &info); err != nil {
		return info, fmt.Errorf("decode metadata: %w", err)
	}
	if info.ID == "" {
		return info, fmt.Errorf("metadata has no video id")
	}
	return info, nil
}
