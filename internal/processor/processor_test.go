package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/downloader"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
)

type fakeDownloader struct {
	mu    sync.Mutex
	calls int
	path  string
	err   error
	block chan struct{}
}

func (f *fakeDownloader) Acquire(ctx context.Context, videoURL string) (downloader.Artifact, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return downloader.Artifact{}, ctx.Err()
		}
	}
	if f.err != nil {
		return downloader.Artifact{}, f.err
	}
	return downloader.Artifact{Path: f.path, Format: "mp3", SourceID: "abc", Title: "Lecture 1"}, nil
}

type fakeTranscriber struct {
	got        string
	transcript string
	err        error
}

func (f *fakeTranscriber) Segment(ctx context.Context, audioPath string) (string, error) {
	f.got = audioPath
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type fakeSummarizer struct {
	got   string
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	f.calls++
	f.got = transcript
	if f.err != nil {
		return "", f.err
	}
	return "- [00:00] intro", nil
}

type fakeHistory struct {
	saved []history.Record
	err   error
}

func (f *fakeHistory) Save(ctx context.Context, rec history.Record) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, rec)
	return nil
}

type harness struct {
	dl    *fakeDownloader
	tr    *fakeTranscriber
	sum   *fakeSummarizer
	store *fakeHistory
	proc  Processor
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	audio := filepath.Join(t.TempDir(), "abc.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{Performance: config.PerformanceConfig{MaxConcurrent: 2}}
	if mutate != nil {
		mutate(cfg)
	}

	h := &harness{
		dl:    &fakeDownloader{path: audio},
		tr:    &fakeTranscriber{transcript: "[00:00]\nHello"},
		sum:   &fakeSummarizer{},
		store: &fakeHistory{},
	}
	h.proc = New(cfg, Deps{
		Downloader:  h.dl,
		Transcriber: h.tr,
		Summarizer:  h.sum,
		History:     h.store,
	}, logger.Nop())
	return h
}

var verified = auth.Identity{UserID: "user-1", Status: auth.Verified}

func TestProcessAnonymous(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.proc.Process(context.Background(), "https://youtu.be/abc", auth.Identity{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Transcript != "[00:00]\nHello" || res.Summary != "- [00:00] intro" {
		t.Errorf("Process() = %+v", res)
	}
	if res.Saved || len(h.store.saved) != 0 {
		t.Errorf("anonymous run wrote %d history records", len(h.store.saved))
	}
	if h.sum.got != res.Transcript {
		t.Errorf("summarizer got %q, want transcript", h.sum.got)
	}
}

func TestProcessRejectedIdentityIsNotPersisted(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.proc.Process(context.Background(), "https://youtu.be/abc", auth.Identity{Status: auth.Rejected})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(h.store.saved) != 0 {
		t.Errorf("rejected identity wrote %d history records", len(h.store.saved))
	}
}

func TestProcessVerifiedSavesOnce(t *testing.T) {
	h := newHarness(t, nil)
	url := "https://youtu.be/abc"

	res, err := h.proc.Process(context.Background(), url, verified)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !res.Saved {
		t.Error("Saved = false for a verified caller")
	}
	if len(h.store.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(h.store.saved))
	}
	rec := h.store.saved[0]
	if rec.UserID != "user-1" || rec.VideoURL != url || rec.Title != "Lecture 1" {
		t.Errorf("saved record = %+v", rec)
	}
	if rec.Transcript != res.Transcript || rec.Summary != res.Summary {
		t.Errorf("saved record does not match result")
	}
}

func TestProcessInvalidURL(t *testing.T) {
	tests := []string{"", "not a url", "ftp://example.com/v", "https://", "youtube.com/watch?v=1", "http://:80"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			h := newHarness(t, nil)
			_, err := h.proc.Process(context.Background(), raw, verified)
			if !errors.Is(err, ErrInvalidURL) {
				t.Fatalf("Process(%q) error = %v, want ErrInvalidURL", raw, err)
			}
			if h.dl.calls != 0 {
				t.Errorf("downloader called %d times for invalid url", h.dl.calls)
			}
			if _, ok := StageOf(err); ok {
				t.Error("validation failure reported as a stage failure")
			}
		})
	}
}

func TestProcessStageFailures(t *testing.T) {
	tests := []struct {
		name     string
		inject   func(h *harness)
		sentinel error
		stage    Stage
		message  string
	}{
		{
			name:     "acquisition",
			inject:   func(h *harness) { h.dl.err = errors.New("audio download failed: HTTP Error 403") },
			sentinel: ErrAcquisition,
			stage:    StageAcquisition,
			message:  "audio download failed: HTTP Error 403",
		},
		{
			name:     "transcription",
			inject:   func(h *harness) { h.tr.err = errors.New("transcription failed: model crashed") },
			sentinel: ErrTranscription,
			stage:    StageTranscription,
			message:  "transcription failed: model crashed",
		},
		{
			name:     "summarization",
			inject:   func(h *harness) { h.sum.err = errors.New("summarization failed: quota exceeded") },
			sentinel: ErrSummarization,
			stage:    StageSummarization,
			message:  "summarization failed: quota exceeded",
		},
		{
			name:     "persistence",
			inject:   func(h *harness) { h.store.err = errors.New("disk full") },
			sentinel: ErrPersistence,
			stage:    StagePersistence,
			message:  "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			tt.inject(h)

			res, err := h.proc.Process(context.Background(), "https://youtu.be/abc", verified)
			if err == nil {
				t.Fatal("Process() succeeded, want failure")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if stage, _ := StageOf(err); stage != tt.stage {
				t.Errorf("StageOf() = %q, want %q", stage, tt.stage)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not carry %q", err.Error(), tt.message)
			}
			if res != (Result{}) {
				t.Errorf("partial result returned: %+v", res)
			}
			if len(h.store.saved) != 0 {
				t.Errorf("history written after failure")
			}
		})
	}
}

func TestProcessStopsAtFirstFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.tr.err = errors.New("boom")

	if _, err := h.proc.Process(context.Background(), "https://youtu.be/abc", verified); err == nil {
		t.Fatal("expected failure")
	}
	if h.sum.calls != 0 {
		t.Errorf("summarizer called %d times after transcription failure", h.sum.calls)
	}
}

func TestProcessDiscardsAudio(t *testing.T) {
	t.Run("removed by default", func(t *testing.T) {
		h := newHarness(t, nil)
		if _, err := h.proc.Process(context.Background(), "https://youtu.be/abc", auth.Identity{}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(h.dl.path); !os.IsNotExist(err) {
			t.Errorf("audio file still present: %v", err)
		}
	})

	t.Run("removed after transcription failure", func(t *testing.T) {
		h := newHarness(t, nil)
		h.tr.err = errors.New("boom")
		_, _ = h.proc.Process(context.Background(), "https://youtu.be/abc", auth.Identity{})
		if _, err := os.Stat(h.dl.path); !os.IsNotExist(err) {
			t.Errorf("audio file still present: %v", err)
		}
	})

	t.Run("kept when configured", func(t *testing.T) {
		h := newHarness(t, func(cfg *config.Config) { cfg.Paths.KeepAudio = true })
		if _, err := h.proc.Process(context.Background(), "https://youtu.be/abc", auth.Identity{}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(h.dl.path); err != nil {
			t.Errorf("audio file removed: %v", err)
		}
	})
}

func TestProcessBoundsConcurrentRuns(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.Performance.MaxConcurrent = 1 })
	h.dl.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.proc.Process(context.Background(), "https://youtu.be/first", auth.Identity{})
		done <- err
	}()

	// Wait until the first run holds the only slot.
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.dl.mu.Lock()
		calls := h.dl.calls
		h.dl.mu.Unlock()
		if calls == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first run never reached the downloader")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := h.proc.Process(ctx, "https://youtu.be/second", auth.Identity{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second run error = %v, want deadline exceeded", err)
	}

	close(h.dl.block)
	if err := <-done; err != nil {
		t.Errorf("first run error = %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{raw: "http://example.com/video.mp4"},
		{raw: "HTTPS://youtu.be/abc"},
		{raw: " https://youtu.be/abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "mailto:someone@example.com", wantErr: true},
		{raw: "/relative/path", wantErr: true},
		{raw: "https://exa mple.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

// sharedIDExecutor plays yt-dlp for URLs that all resolve to one source id.
type sharedIDExecutor struct{ id string }

func (e sharedIDExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--output" {
			path := strings.NewReplacer("%(id)s", e.id, "%(ext)s", "mp3").Replace(args[i+1])
			if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
				return "", err
			}
			return `{"id": "` + e.id + `", "title": "Shared"}`, nil
		}
	}
	return "", errors.New("no --output flag")
}

func (e sharedIDExecutor) LookPath(name string) (string, error) { return name, nil }

// gatedTranscriber holds every run inside Segment until released, then
// checks its audio file is still on disk.
type gatedTranscriber struct {
	arrived chan string
	release chan struct{}
}

func (g *gatedTranscriber) Segment(ctx context.Context, audioPath string) (string, error) {
	g.arrived <- audioPath
	<-g.release
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return "[00:00]\nHello", nil
}

func TestProcessSameSourceIDRunsInParallel(t *testing.T) {
	downloads := filepath.Join(t.TempDir(), "downloads")
	cfg := &config.Config{
		Performance: config.PerformanceConfig{MaxConcurrent: 2},
		Downloader:  config.DownloaderConfig{BinaryPath: "yt-dlp", AudioQuality: "192K"},
		Audio:       config.AudioConfig{Format: "mp3"},
		Paths:       config.PathsConfig{Download: downloads},
	}
	tr := &gatedTranscriber{arrived: make(chan string, 2), release: make(chan struct{})}
	proc := New(cfg, Deps{
		Downloader:  downloader.New(cfg, sharedIDExecutor{id: "vid123"}, logger.Nop()),
		Transcriber: tr,
		Summarizer:  &fakeSummarizer{},
		History:     &fakeHistory{},
	}, logger.Nop())

	urls := []string{"https://youtu.be/vid123", "https://www.youtube.com/watch?v=vid123"}
	errs := make(chan error, len(urls))
	for _, u := range urls {
		go func(u string) {
			_, err := proc.Process(context.Background(), u, auth.Identity{})
			errs <- err
		}(u)
	}

	var paths []string
	for range urls {
		select {
		case p := <-tr.arrived:
			paths = append(paths, p)
		case <-time.After(2 * time.Second):
			t.Fatal("runs never reached transcription together")
		}
	}
	if paths[0] == paths[1] {
		t.Fatalf("both runs transcribe %q", paths[0])
	}

	close(tr.release)
	for range urls {
		if err := <-errs; err != nil {
			t.Errorf("Process() error = %v", err)
		}
	}

	left, err := filepath.Glob(filepath.Join(downloads, "run-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("run dirs left behind: %v", left)
	}
}
