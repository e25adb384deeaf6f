package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
)

type fakeExecutor struct {
	out   string
	err   error
	name  string
	args  []string
	calls int
	// writeID, when set, makes the fake produce <writeID>.mp3 from the
	// --output template the way yt-dlp would.
	writeID string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls++
	f.name = name
	f.args = args
	if f.writeID != "" {
		if err := writeFromTemplate(args, f.writeID); err != nil {
			return "", err
		}
	}
	return f.out, f.err
}

func writeFromTemplate(args []string, id string) error {
	for i := 0; i+1 < len(args); i++ {
		if args[i] != "--output" {
			continue
		}
		path := strings.NewReplacer("%(id)s", id, "%(ext)s", "mp3").Replace(args[i+1])
		return os.WriteFile(path, []byte("audio-"+id), 0o644)
	}
	return errors.New("no --output flag")
}

func runDirs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "run-*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func (f *fakeExecutor) LookPath(name string) (string, error) { return name, nil }

func newTestDownloader(t *testing.T, exec *fakeExecutor) (Downloader, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "downloads")
	cfg := &config.Config{
		Downloader: config.DownloaderConfig{BinaryPath: "yt-dlp", AudioQuality: "192K"},
		Audio:      config.AudioConfig{Format: "mp3"},
		Paths:      config.PathsConfig{Download: dir},
	}
	return New(cfg, exec, logger.Nop()), dir
}

func TestAcquireSuccess(t *testing.T) {
	exec := &fakeExecutor{
		out:     `{"id": "abc123", "title": "Intro to Go", "duration": 125.5, "ext": "webm"}`,
		writeID: "abc123",
	}
	d, dir := newTestDownloader(t, exec)

	art, err := d.Acquire(context.Background(), "https://example.com/video")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if filepath.Dir(art.Path) != art.Dir {
		t.Errorf("Path %q is not inside run dir %q", art.Path, art.Dir)
	}
	if filepath.Dir(art.Dir) != dir || !strings.HasPrefix(filepath.Base(art.Dir), "run-") {
		t.Errorf("Dir = %q, want a run-* directory under %q", art.Dir, dir)
	}
	if filepath.Base(art.Path) != "abc123.mp3" {
		t.Errorf("Path = %q, want abc123.mp3", art.Path)
	}
	if art.SourceID != "abc123" || art.Title != "Intro to Go" || art.Format != "mp3" {
		t.Errorf("unexpected artifact %+v", art)
	}
	if art.DurationSeconds != 125.5 {
		t.Errorf("DurationSeconds = %v", art.DurationSeconds)
	}

	joined := strings.Join(exec.args, " ")
	for _, fragment := range []string{"--audio-format mp3", "bestaudio/best", "%(id)s.%(ext)s", "https://example.com/video"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args %q missing %q", joined, fragment)
		}
	}
}

func TestAcquirePrefersReportedFilepath(t *testing.T) {
	d, dir := newTestDownloader(t, &fakeExecutor{})
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	reported := filepath.Join(dir, "renamed.mp3")
	if err := os.WriteFile(reported, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := d.(*implDownloader).executor.(*fakeExecutor)
	exec.out = `{"id": "xyz", "requested_downloads": [{"filepath": "` + reported + `"}]}`

	art, err := d.Acquire(context.Background(), "https://example.com/v")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if art.Path != reported {
		t.Errorf("Path = %q, want %q", art.Path, reported)
	}
}

func TestAcquireFailures(t *testing.T) {
	tests := []struct {
		name    string
		exec    *fakeExecutor
		wantMsg string
	}{
		{
			name:    "command fails",
			exec:    &fakeExecutor{err: errors.New("ERROR: Unsupported URL")},
			wantMsg: "Unsupported URL",
		},
		{
			name:    "garbage output",
			exec:    &fakeExecutor{out: "not json"},
			wantMsg: "metadata",
		},
		{
			name:    "missing id",
			exec:    &fakeExecutor{out: `{"title": "x"}`},
			wantMsg: "no video id",
		},
		{
			name:    "file never written",
			exec:    &fakeExecutor{out: `{"id": "ghost"}`},
			wantMsg: "output not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, dir := newTestDownloader(t, tt.exec)
			_, err := d.Acquire(context.Background(), "https://example.com/video")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "audio download failed") {
				t.Errorf("error %q should start with download failure", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
			if left := runDirs(t, dir); len(left) != 0 {
				t.Errorf("failed download left run dirs %v", left)
			}
		})
	}
}

func TestAcquireSameSourceIDUsesSeparateFiles(t *testing.T) {
	exec := &fakeExecutor{out: `{"id": "shared"}`, writeID: "shared"}
	d, dir := newTestDownloader(t, exec)

	first, err := d.Acquire(context.Background(), "https://youtu.be/shared")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	second, err := d.Acquire(context.Background(), "https://www.youtube.com/watch?v=shared")
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	if first.Path == second.Path || first.Dir == second.Dir {
		t.Fatalf("runs share an artifact: %q and %q", first.Path, second.Path)
	}
	if err := os.RemoveAll(first.Dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(second.Path); err != nil {
		t.Errorf("removing one run's dir touched the other: %v", err)
	}
	if got := len(runDirs(t, dir)); got != 1 {
		t.Errorf("run dirs = %d, want 1", got)
	}
}
