package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for the event channel.
const DefaultEventBufferSize = 100

// trackEndedPublishTimeout bounds how long publishing a track end waits for
// buffer space. A dropped end event would leave its session stuck on the
// ended track.
const trackEndedPublishTimeout = 5 * time.Second

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// All event types share one channel and one dispatcher goroutine, so handlers
// observe events in publish order: a track's start always precedes its end.
type ChannelEventBus struct {
	events            chan any
	trackEndedTimeout time.Duration

	trackStartedHandlers []func(context.Context, domain.TrackStartedEvent)
	trackEndedHandlers   []func(context.Context, domain.TrackEndedEvent)
	nodeLinkLostHandlers []func(context.Context, domain.NodeLinkLostEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		events:            make(chan any, bufferSize),
		trackEndedTimeout: trackEndedPublishTimeout,
		ctx:               ctx,
		cancel:            cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *ChannelEventBus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.events:
			if !ok {
				return
			}
			b.deliver(event)
		}
	}
}

func (b *ChannelEventBus) deliver(event any) {
	switch e := event.(type) {
	case domain.TrackStartedEvent:
		b.mu.RLock()
		handlers := b.trackStartedHandlers
		b.mu.RUnlock()
		for _, handler := range handlers {
			handler(b.ctx, e)
		}
	case domain.TrackEndedEvent:
		b.mu.RLock()
		handlers := b.trackEndedHandlers
		b.mu.RUnlock()
		for _, handler := range handlers {
			handler(b.ctx, e)
		}
	case domain.NodeLinkLostEvent:
		b.mu.RLock()
		handlers := b.nodeLinkLostHandlers
		b.mu.RUnlock()
		for _, handler := range handlers {
			handler(b.ctx, e)
		}
	default:
		slog.Warn("dropping event of unknown type", "type", fmt.Sprintf("%T", event))
	}
}

// publish enqueues an event. With a zero wait it never blocks; otherwise it
// waits up to wait for buffer space. An event that does not fit is dropped
// with a warning.
func (b *ChannelEventBus) publish(kind string, event any, wait time.Duration) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", kind)
		return
	}

	select {
	case b.events <- event:
		slog.Debug("published event", "type", kind)
		return
	default:
	}

	if wait <= 0 {
		slog.Warn("event buffer full, dropping event", "type", kind)
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case b.events <- event:
		slog.Debug("published event after waiting for buffer space", "type", kind)
	case <-b.ctx.Done():
		slog.Warn("event bus closed while publishing, dropping event", "type", kind)
	case <-timer.C:
		slog.Warn("event buffer full, dropping event", "type", kind, "waited", wait)
	}
}

// --- EventPublisher interface ---

// PublishTrackStarted publishes a TrackStartedEvent.
func (b *ChannelEventBus) PublishTrackStarted(event domain.TrackStartedEvent) {
	b.publish("TrackStarted", event, 0)
}

// PublishTrackEnded publishes a TrackEndedEvent. It is the only event that
// waits for buffer space, since the session advances on it.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	b.publish("TrackEnded", event, b.trackEndedTimeout)
}

// PublishNodeLinkLost publishes a NodeLinkLostEvent.
func (b *ChannelEventBus) PublishNodeLinkLost(event domain.NodeLinkLostEvent) {
	b.publish("NodeLinkLost", event, 0)
}

// --- EventSubscriber interface ---

// OnTrackStarted registers a handler for TrackStartedEvent.
func (b *ChannelEventBus) OnTrackStarted(
	handler func(context.Context, domain.TrackStartedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackStartedHandlers = append(b.trackStartedHandlers, handler)
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackEndedHandlers = append(b.trackEndedHandlers, handler)
}

// OnNodeLinkLost registers a handler for NodeLinkLostEvent.
func (b *ChannelEventBus) OnNodeLinkLost(
	handler func(context.Context, domain.NodeLinkLostEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodeLinkLostHandlers = append(b.nodeLinkLostHandlers, handler)
}

// Close stops the dispatcher. Events still buffered are discarded and
// publishing afterwards is a no-op.
func (b *ChannelEventBus) Close() {
	// Cancel first so a publisher waiting for buffer space releases its
	// read lock.
	b.cancel()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.events)
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
