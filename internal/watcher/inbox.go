package watcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/export"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/internal/processor"
)

const processedDirName = "processed"

// ParseURLs reads one video URL per line. Blank lines and lines starting
// with # are skipped.
func ParseURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

// InboxHandler runs every URL of an inbox file through the pipeline and
// writes one .docx per successful run.
type InboxHandler struct {
	proc      processor.Processor
	identity  auth.Identity
	outputDir string
	logger    logger.Logger
}

// NewInboxHandler builds a handler whose runs are attributed to userID; an
// empty userID processes anonymously.
func NewInboxHandler(proc processor.Processor, userID, outputDir string, log logger.Logger) *InboxHandler {
	identity := auth.Identity{Status: auth.Anonymous}
	if userID != "" {
		identity = auth.Identity{UserID: userID, Status: auth.Verified}
	}
	return &InboxHandler{
		proc:      proc,
		identity:  identity,
		outputDir: outputDir,
		logger:    log,
	}
}

// Handle processes filePath and moves it to the processed folder. Individual
// URL failures are logged and counted; the file is still moved so it is not
// retried forever.
func (h *InboxHandler) Handle(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open inbox file: %w", err)
	}
	urls, err := ParseURLs(f)
	f.Close()
	if err != nil {
		return err
	}

	source := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	h.logger.Info(ctx, "Processing %d URLs from %s", len(urls), filePath)

	var failed int
	for i, videoURL := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		outPath := filepath.Join(h.outputDir, fmt.Sprintf("%s-%d.docx", source, i+1))
		if err := h.processOne(ctx, videoURL, outPath); err != nil {
			failed++
			h.logger.Error(ctx, "Failed %s (%d/%d): %v", videoURL, i+1, len(urls), err)
			continue
		}
		h.logger.Info(ctx, "Wrote %s (%d/%d)", outPath, i+1, len(urls))
	}

	if err := h.moveToProcessed(ctx, filePath); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d urls failed in %s", failed, len(urls), filepath.Base(filePath))
	}
	return nil
}

func (h *InboxHandler) processOne(ctx context.Context, videoURL, outPath string) error {
	result, err := h.proc.Process(ctx, videoURL, h.identity)
	if err != nil {
		return err
	}
	return export.WriteFile(outPath, export.Document{
		Title:       result.Title,
		VideoURL:    videoURL,
		Transcript:  result.Transcript,
		Summary:     result.Summary,
		ProcessedAt: time.Now(),
	})
}

// moveToProcessed moves the handled inbox file out of the watched folder.
func (h *InboxHandler) moveToProcessed(ctx context.Context, filePath string) error {
	dir := filepath.Join(h.outputDir, processedDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(filePath))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		dest = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(dest, ext), time.Now().Unix(), ext)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat processed file: %w", err)
	}

	h.logger.Info(ctx, "Moving to processed folder: %s -> %s", filePath, dest)
	if err := os.Rename(filePath, dest); err != nil {
		return fmt.Errorf("move to processed: %w", err)
	}
	return nil
}
