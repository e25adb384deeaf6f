package downloader

import (
	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/pkg/executor"
)

type implDownloader struct {
	binary   string
	dir      string
	format   string
	quality  string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a yt-dlp backed Downloader writing into cfg.Paths.Download.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Downloader {
	return &implDownloader{
		binary:   cfg.Downloader.BinaryPath,
		dir:      cfg.Paths.Download,
		format:   cfg.Audio.Format,
		quality:  cfg.Downloader.AudioQuality,
		executor: exec,
		logger:   log,
	}
}
