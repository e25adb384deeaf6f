package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/downloader"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
	"github.com/nguyentantai21042004/edusummarize/internal/processor"
	"github.com/nguyentantai21042004/edusummarize/internal/summarizer"
	"github.com/nguyentantai21042004/edusummarize/internal/transcriber"
	"github.com/nguyentantai21042004/edusummarize/pkg/executor"
)

type commandContext struct {
	configFlag     *string
	configExplicit bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     logger.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := resolveConfigPath(strings.TrimSpace(*c.configFlag), c.configExplicit)
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := ensureDirectories(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger.New(cfg.Logging.Level)
	})
	return c.config, c.configErr
}

// resolveConfigPath drops the default config file when it does not exist so
// an environment-only setup still starts. An explicit path must exist.
func resolveConfigPath(path string, explicit bool) string {
	if explicit || path == "" {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return path
}

func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Download,
		cfg.Paths.Data,
		cfg.Paths.Output,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// pipeline holds the process-wide singletons shared by every run.
type pipeline struct {
	proc  processor.Processor
	store history.Store
}

func (p *pipeline) Close() error {
	return p.store.Close()
}

// buildPipeline constructs every external client once, before any work is
// accepted. A missing whisper binary or model fails here.
func (c *commandContext) buildPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log := c.logger

	exec := executor.New()

	engine, err := transcriber.NewWhisperEngine(cfg, exec, log)
	if err != nil {
		return nil, fmt.Errorf("init transcriber: %w", err)
	}

	sum, err := summarizer.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}

	store, err := history.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init history store: %w", err)
	}

	proc := processor.New(cfg, processor.Deps{
		Downloader:  downloader.New(cfg, exec, log),
		Transcriber: transcriber.New(engine, log),
		Summarizer:  sum,
		History:     store,
	}, log)

	return &pipeline{proc: proc, store: store}, nil
}
