package ports

import (
	"context"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// EventSubscriber defines the interface for subscribing to events.
// Handlers are invoked in publish order on a single dispatcher goroutine.
type EventSubscriber interface {
	OnTrackStarted(handler func(context.Context, domain.TrackStartedEvent))
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnNodeLinkLost(handler func(context.Context, domain.NodeLinkLostEvent))
}
