package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"vantage-hq/saturn/pkg/cardinality"
)

// RecorderConfig contains configuration for the audit recorder.
type RecorderConfig struct {
	// Buffer is the size of the async write channel.
	// Default: 1000
	Buffer int

	// WriteTimeout bounds each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder subscribes to the cardinality guard as an event sink and writes
// entries to a store asynchronously. Emit never blocks: when the buffer is
// full the event is dropped and counted, keeping slow storage off the
// metric-recording hot path.
type Recorder struct {
	store   Store
	config  RecorderConfig
	entries chan *Entry
	dropped atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewRecorder creates a recorder writing to the given store and starts its
// background worker.
func NewRecorder(store Store, config RecorderConfig) *Recorder {
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		store:   store,
		config:  config,
		entries: make(chan *Entry, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder started",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Emit implements cardinality.Sink. It enqueues the event for async writing,
// dropping it when the buffer is full.
func (r *Recorder) Emit(ev cardinality.Event) {
	select {
	case r.entries <- NewEntry(ev):
	default:
		if r.dropped.Add(1)%100 == 1 {
			r.logger.Warn("audit buffer full, dropping events",
				"dropped_total", r.dropped.Load(),
			)
		}
	}
}

// Dropped returns the number of events dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close drains buffered entries and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	r.logger.Info("audit recorder stopped", "dropped_total", r.dropped.Load())
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.entries:
			r.write(entry)

		case <-r.done:
			// Drain remaining entries before exit.
			for {
				select {
				case entry := <-r.entries:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(entry *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.store.Save(ctx, entry); err != nil {
		r.logger.Error("failed to save audit entry",
			"entry_id", entry.ID,
			"metric", entry.Metric,
			"error", err,
		)
	}
}
