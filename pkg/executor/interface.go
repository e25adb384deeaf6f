package executor

import "context"

// Executor runs external programs (yt-dlp, whisper-cli).
type Executor interface {
	// Execute runs name with args and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports where name would be resolved from.
	LookPath(name string) (string, error)
}
