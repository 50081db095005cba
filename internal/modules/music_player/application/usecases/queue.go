package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// QueueListInput contains the input for the List use case.
type QueueListInput struct {
	GuildID snowflake.ID
}

// QueueListOutput contains the result of the List use case.
type QueueListOutput struct {
	Current  *domain.Track
	Position time.Duration
	Tracks   []*domain.Track // pending tracks in play order
	LoopMode domain.LoopMode
}

// RemoveAction describes what RemoveOrBump did with the matched track.
type RemoveAction int

const (
	RemoveActionSkipped RemoveAction = iota // matched the current track, which was skipped
	RemoveActionRemoved                     // removed from the queue
	RemoveActionMoved                       // moved to the head of the queue
)

// RemoveOrBumpInput contains the input for the RemoveOrBump use case.
type RemoveOrBumpInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Query   string
	Bump    bool
}

// RemoveOrBumpOutput contains the result of the RemoveOrBump use case.
type RemoveOrBumpOutput struct {
	Track  *domain.Track
	Action RemoveAction
}

// QueueService handles queue operations.
type QueueService struct {
	repo        domain.PlayerStateRepository
	audioPlayer ports.AudioPlayer
	voiceState  ports.VoiceStateProvider
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.PlayerStateRepository,
	audioPlayer ports.AudioPlayer,
	voiceState ports.VoiceStateProvider,
) *QueueService {
	return &QueueService{
		repo:        repo,
		audioPlayer: audioPlayer,
		voiceState:  voiceState,
	}
}

// List returns the current track, its position and the pending tracks.
func (q *QueueService) List(_ context.Context, input QueueListInput) (*QueueListOutput, error) {
	state := LockSession(q.repo, input.GuildID)
	if state == nil {
		return nil, ErrQueueEmpty
	}
	defer state.Unlock()

	current := state.Current()
	if current == nil {
		return nil, ErrQueueEmpty
	}

	return &QueueListOutput{
		Current:  current,
		Position: min(q.audioPlayer.Position(input.GuildID), current.Duration),
		Tracks:   state.Queue(),
		LoopMode: state.LoopMode(),
	}, nil
}

// RemoveOrBump finds the first track whose title contains the query, looking
// at the current track before the queue. A match on the current track is
// skipped; a match in the queue is removed, or moved to the head when Bump is set.
func (q *QueueService) RemoveOrBump(
	ctx context.Context,
	input RemoveOrBumpInput,
) (*RemoveOrBumpOutput, error) {
	state := LockSession(q.repo, input.GuildID)
	if state == nil {
		return nil, ErrQueueEmpty
	}
	defer state.Unlock()

	if err := requireSameChannel(q.voiceState, state, input.UserID); err != nil {
		return nil, err
	}

	current := state.Current()
	if current == nil {
		return nil, ErrQueueEmpty
	}

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrTrackNotFound
	}

	if state.CurrentMatches(query) {
		if input.Bump {
			return nil, ErrAlreadyPlaying
		}
		if err := q.audioPlayer.Stop(ctx, input.GuildID); err != nil {
			return nil, err
		}
		return &RemoveOrBumpOutput{Track: current, Action: RemoveActionSkipped}, nil
	}

	if input.Bump {
		if track := state.BumpInQueue(query); track != nil {
			return &RemoveOrBumpOutput{Track: track, Action: RemoveActionMoved}, nil
		}
		return nil, ErrTrackNotFound
	}

	if track := state.RemoveFromQueue(query); track != nil {
		return &RemoveOrBumpOutput{Track: track, Action: RemoveActionRemoved}, nil
	}
	return nil, ErrTrackNotFound
}
