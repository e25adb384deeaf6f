package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/pkg/executor"
)

type whisperEngine struct {
	binary    string
	modelPath string
	language  string
	prompt    string
	threads   int
	executor  executor.Executor
	logger    logger.Logger
}

// whisperOutput mirrors the file whisper.cpp writes with -oj.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// NewWhisperEngine returns an Engine backed by the whisper.cpp CLI. The
// binary and model file are checked here so a misconfigured process fails
// at startup rather than on its first request.
func NewWhisperEngine(cfg *config.Config, exec executor.Executor, log logger.Logger) (Engine, error) {
	binary, err := exec.LookPath(cfg.Whisper.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("whisper binary %q: %w", cfg.Whisper.BinaryPath, err)
	}
	if _, err := os.Stat(cfg.Whisper.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model %q: %w", cfg.Whisper.ModelPath, err)
	}

	return &whisperEngine{
		binary:    binary,
		modelPath: cfg.Whisper.ModelPath,
		language:  cfg.Whisper.Language,
		prompt:    cfg.Whisper.Prompt,
		threads:   cfg.Whisper.Threads,
		executor:  exec,
		logger:    log,
	}, nil
}

func (w *whisperEngine) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	// Isolated output dir per run so concurrent runs never share a prefix.
	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outputPrefix := filepath.Join(outDir, "transcript")

	w.logger.Info(ctx, "Starting transcription with %d threads: %s", w.threads, audioPath)

	args := []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outputPrefix,
		"-l", w.language,
		"-t", strconv.Itoa(w.threads),
	}
	if w.prompt != "" {
		args = append(args, "--prompt", w.prompt)
	}

	if _, err := w.executor.Execute(ctx, w.binary, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	segments, err := readWhisperJSON(outputPrefix + ".json")
	if err != nil {
		return nil, err
	}

	w.logger.Info(ctx, "Transcription completed: %d segments", len(segments))
	return segments, nil
}

func readWhisperJSON(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, item := range out.Transcription {
		segments = append(segments, Segment{
			Start: float64(item.Offsets.From) / 1000,
			End:   float64(item.Offsets.To) / 1000,
			Text:  item.Text,
		})
	}
	return segments, nil
}
