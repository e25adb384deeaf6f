package processor

import "context"

// semaphore bounds the number of pipeline runs in flight.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{slots: make(chan struct{}, capacity)}
}

// acquire blocks until a slot is free or ctx is done.
func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.slots
}

func (s *semaphore) inFlight() int {
	return len(s.slots)
}
