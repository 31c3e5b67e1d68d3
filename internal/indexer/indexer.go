package indexer

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stakeflow/ledger/internal/logger"
	"github.com/stakeflow/ledger/internal/state"
	"github.com/stakeflow/ledger/internal/types"
)

// Indexer mirrors ledger events into the database asynchronously. Publish
// never blocks the engine: events are handed to a buffered channel and a
// background worker drains it. A full buffer drops the event with a log line
// rather than stalling a ledger operation.
type Indexer struct {
	logger zerolog.Logger
	queue  chan types.Event

	startOnce sync.Once
	done      chan struct{}
}

// NewIndexer creates an indexer with the given queue depth.
func NewIndexer(bufferSize int) *Indexer {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Indexer{
		logger: logger.GetForComponent("indexer"),
		queue:  make(chan types.Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Publish enqueues an event for persistence. Implements ledger.EventSink.
func (ix *Indexer) Publish(event types.Event) error {
	select {
	case ix.queue <- event:
		return nil
	default:
		return fmt.Errorf("indexer queue full, dropping event %s", event.ID)
	}
}

// Start launches the background worker. It runs until the context is
// cancelled and the queue has been drained.
func (ix *Indexer) Start(ctx context.Context) {
	ix.startOnce.Do(func() {
		go ix.run(ctx)
	})
}

// Wait blocks until the worker has drained the queue and exited.
func (ix *Indexer) Wait() {
	<-ix.done
}

func (ix *Indexer) run(ctx context.Context) {
	defer close(ix.done)
	ix.logger.Info().Int("buffer", cap(ix.queue)).Msg("Indexer started")

	for {
		select {
		case event := <-ix.queue:
			ix.persist(event)
		case <-ctx.Done():
			ix.drain()
			ix.logger.Info().Msg("Indexer stopped")
			return
		}
	}
}

// drain flushes whatever is still queued at shutdown.
func (ix *Indexer) drain() {
	for {
		select {
		case event := <-ix.queue:
			ix.persist(event)
		default:
			return
		}
	}
}

func (ix *Indexer) persist(event types.Event) {
	if err := state.SaveEvent(event); err != nil {
		ix.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to persist event")
		return
	}
	if err := state.RecordEventStats(event); err != nil {
		ix.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to update daily stats")
	}
}
