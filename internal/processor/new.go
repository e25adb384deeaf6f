package processor

import (
	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/downloader"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/internal/summarizer"
	"github.com/nguyentantai21042004/edusummarize/internal/transcriber"
)

type implProcessor struct {
	downloader  downloader.Downloader
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	history     HistoryWriter
	keepAudio   bool
	sem         *semaphore
	logger      logger.Logger
}

// Deps are the stage implementations a Processor sequences. They are built
// once at startup and shared by every run.
type Deps struct {
	Downloader  downloader.Downloader
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
	History     HistoryWriter
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	capacity := cfg.Performance.MaxConcurrent
	if capacity <= 0 {
		capacity = 1
	}

	return &implProcessor{
		downloader:  deps.Downloader,
		transcriber: deps.Transcriber,
		summarizer:  deps.Summarizer,
		history:     deps.History,
		keepAudio:   cfg.Paths.KeepAudio,
		sem:         newSemaphore(capacity),
		logger:      log,
	}
}
