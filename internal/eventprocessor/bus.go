// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/shelfwise/internal/logging"
)

const metadataEventType = "event_type"

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus closed")

// HandlerFunc processes one decoded shelf event.
type HandlerFunc func(ctx context.Context, event *ShelfEvent) error

type handlerSpec struct {
	name string
	fn   HandlerFunc
}

// BusMetrics holds runtime counters for the bus.
type BusMetrics struct {
	Published int64
	Handled   int64
	Failed    int64
}

// Bus publishes shelf events on an in-process GoChannel and dispatches them to
// registered handlers through a Watermill router.
type Bus struct {
	cfg     RouterConfig
	pubsub  *gochannel.GoChannel
	wmLog   watermill.LoggerAdapter
	logger  zerolog.Logger
	mu      sync.Mutex
	specs   []handlerSpec
	router  *message.Router
	closed  bool
	running chan struct{}

	published atomic.Int64
	handled   atomic.Int64
	failed    atomic.Int64
}

// NewBus creates a bus. Watermill logs go through zerolog via log/slog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg RouterConfig, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "eventbus").Logger()
	wmLog := watermill.NewSlogLogger(slog.New(logging.NewSlogHandlerWithLogger(logger)))

	return &Bus{
		cfg: cfg,
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, wmLog),
		wmLog:   wmLog,
		logger:  logger,
		running: make(chan struct{}),
	}
}

// Handle registers fn under name. Handlers registered after Serve has started
// take effect on the next Serve.
func (b *Bus) Handle(name string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.specs = append(b.specs, handlerSpec{name: name, fn: fn})
}

// Publish encodes event and publishes it. Events published while no router is
// subscribed are dropped by the GoChannel.
func (b *Bus) Publish(ctx context.Context, event *ShelfEvent) error {
	if b.isClosed() {
		return ErrBusClosed
	}

	payload, err := SerializeEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(metadataEventType, string(event.Type))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	} else if id := logging.RequestIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if err := b.pubsub.Publish(TopicShelfEvents, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	b.published.Add(1)
	return nil
}

// Serve runs the router until ctx is done. It implements suture.Service;
// a closed bus asks the supervisor not to restart it.
func (b *Bus) Serve(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, ErrBusClosed)
	}
	r, err := newRouter(&b.cfg, b.wmLog)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	for _, spec := range b.specs {
		r.AddConsumerHandler(spec.name, TopicShelfEvents, b.pubsub, b.wrap(spec))
	}
	b.router = r
	handlers := len(b.specs)
	b.mu.Unlock()

	go func() {
		select {
		case <-r.Running():
			b.signalRunning()
		case <-ctx.Done():
		}
	}()

	b.logger.Info().Int("handlers", handlers).Msg("Event bus started")
	err = r.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if b.isClosed() {
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, ErrBusClosed)
	}
	return err
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Running returns a channel that closes once the router first starts.
func (b *Bus) Running() <-chan struct{} {
	return b.running
}

func (b *Bus) signalRunning() {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.running:
	default:
		close(b.running)
	}
}

func (b *Bus) wrap(spec handlerSpec) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		event, err := DeserializeEvent(msg.Payload)
		if err != nil {
			// Undecodable payloads cannot succeed on retry.
			b.failed.Add(1)
			b.logger.Error().Err(err).Str("handler", spec.name).Str("message_id", msg.UUID).Msg("dropping malformed event")
			return nil
		}

		ctx := msg.Context()
		if id := middleware.MessageCorrelationID(msg); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}

		if err := spec.fn(ctx, event); err != nil {
			b.failed.Add(1)
			return fmt.Errorf("%s: %w", spec.name, err)
		}
		b.handled.Add(1)
		return nil
	}
}

// Metrics returns a snapshot of the bus counters.
func (b *Bus) Metrics() BusMetrics {
	return BusMetrics{
		Published: b.published.Load(),
		Handled:   b.handled.Load(),
		Failed:    b.failed.Load(),
	}
}

// Close stops the router and the pub/sub.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	r := b.router
	b.mu.Unlock()

	var errs []error
	if r != nil {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if err := b.pubsub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	return errors.Join(errs...)
}
