package verify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActivitySink consumes audit entries. Services treat the sink as an
// observability side channel: a Record failure is warn-logged by the caller
// and never fails the originating operation.
type ActivitySink interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, entry ActivityEntry) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, entry ActivityEntry) error {
	if f == nil {
		return nil
	}
	return f(ctx, entry)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEntry) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// NewActivityEntry builds an audit entry for the given actor and action.
// A nil actor (or an actor whose id is not a UUID) produces a
// system-originated entry with no user reference.
func NewActivityEntry(actor Identity, action, details string) ActivityEntry {
	entry := ActivityEntry{
		Action:  action,
		Details: details,
	}

	if actor != nil {
		if id, err := uuid.Parse(actor.ID()); err == nil {
			entry.UserID = &id
		}
	}

	return entry
}

// QueuedSink decouples audit writes from request handling: Record enqueues
// and returns immediately, a single background worker performs the store
// writes. Entries are dropped (and warn-logged) when the queue is full or
// the store errors; audit is best-effort by design.
type QueuedSink struct {
	store   ActivitySink
	logger  Logger
	queue   chan ActivityEntry
	done    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration

	closeOnce sync.Once
}

// NewQueuedSink starts the background writer. A buffer of zero or less
// falls back to 256.
func NewQueuedSink(store ActivitySink, logger Logger, buffer int) *QueuedSink {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = defLogger{}
	}

	s := &QueuedSink{
		store:   normalizeActivitySink(store),
		logger:  logger,
		queue:   make(chan ActivityEntry, buffer),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}

	s.wg.Add(1)
	go s.drain()

	return s
}

// Record enqueues the entry without blocking. It never returns an error to
// the caller; a full queue drops the entry.
func (s *QueuedSink) Record(_ context.Context, entry ActivityEntry) error {
	select {
	case <-s.done:
		return nil
	default:
	}

	select {
	case s.queue <- entry:
	default:
		s.logger.Warn("activity queue full, dropping entry", "action", entry.Action)
	}
	return nil
}

// Close stops accepting entries and flushes what is already queued.
func (s *QueuedSink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *QueuedSink) drain() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.queue:
			s.write(entry)
		case <-s.done:
			for {
				select {
				case entry := <-s.queue:
					s.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *QueuedSink) write(entry ActivityEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.Warn("activity write failed", "action", entry.Action, "error", err)
	}
}

var _ ActivitySink = (*QueuedSink)(nil)
