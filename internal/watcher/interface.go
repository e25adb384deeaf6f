package watcher

import "context"

// Watcher monitors the inbox directory and hands new URL lists to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler handles one inbox file.
type EventHandler func(ctx context.Context, filePath string) error
