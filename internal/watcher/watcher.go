package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/edusummarize/internal/logger"
)

// settleDelay gives writers time to finish before a new file is read.
const settleDelay = 500 * time.Millisecond

var ErrInboxLocked = errors.New("inbox is already being watched")

type implWatcher struct {
	inboxDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	lock          *flock.Flock
	maxConcurrent int
	semaphore     chan struct{}
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Start takes the inbox lock, handles files already waiting in the inbox,
// then processes new ones until ctx is canceled.
func (w *implWatcher) Start(ctx context.Context) error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInboxLocked, w.inboxDir)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn(ctx, "Failed to release inbox lock: %v", err)
		}
	}()

	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inboxDir)

	if err := w.drainBacklog(ctx); err != nil {
		return w.shutdown(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			return w.shutdown(ctx, ctx.Err())

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.shutdown(ctx, fmt.Errorf("watcher events channel closed"))
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isURLList(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-inbox file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New inbox file detected: %s", event.Name)
			time.Sleep(settleDelay)
			if err := w.dispatch(ctx, event.Name); err != nil {
				return w.shutdown(ctx, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.shutdown(ctx, fmt.Errorf("watcher errors channel closed"))
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) shutdown(ctx context.Context, cause error) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "Inbox watcher stopped")
	return cause
}

// drainBacklog handles files that arrived while no watcher was running.
func (w *implWatcher) drainBacklog(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && isURLList(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.dispatch(ctx, filepath.Join(w.inboxDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler for path on its own goroutine once a slot is
// free. A file already being handled is skipped, since one file produces
// several Create/Write events.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	w.mu.Lock()
	if _, busy := w.inFlight[path]; busy {
		w.mu.Unlock()
		return nil
	}
	w.inFlight[path] = struct{}{}
	w.mu.Unlock()

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.forget(path)
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()
		defer w.forget(path)

		if _, err := os.Stat(path); err != nil {
			// Already handled and moved away.
			return
		}
		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

func (w *implWatcher) forget(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isURLList(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".url":
		return true
	default:
		return false
	}
}
