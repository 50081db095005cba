package ports

import "github.com/sglre6355/lavabot/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing events asynchronously.
// Publishing never blocks.
type EventPublisher interface {
	PublishTrackStarted(event domain.TrackStartedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishNodeLinkLost(event domain.NodeLinkLostEvent)
}
