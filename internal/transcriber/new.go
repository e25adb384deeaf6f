package transcriber

import (
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
)

type implTranscriber struct {
	engine Engine
	logger logger.Logger
}

// New creates a Transcriber on top of a speech-to-text engine.
func New(engine Engine, log logger.Logger) Transcriber {
	return &implTranscriber{
		engine: engine,
		logger: log,
	}
}
