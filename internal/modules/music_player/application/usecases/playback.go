package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	TextChannelID snowflake.ID
	Query         string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Tracks       []*domain.Track
	PlaylistName string        // empty unless a playlist was enqueued
	Started      *domain.Track // non-nil if the session was idle
}

// IsPlaylist returns true if a playlist was enqueued.
func (o *PlayOutput) IsPlaylist() bool {
	return o.PlaylistName != ""
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID    snowflake.ID
	UserID     snowflake.ID
	ClearQueue bool // "stop": empty the queue and go idle
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
}

// SeekInput contains the input for the Seek use case.
type SeekInput struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	Timestamp string
}

// SeekOutput contains the result of the Seek use case.
type SeekOutput struct {
	Track    *domain.Track
	Position time.Duration
}

// LoopInput contains the input for the loop use cases.
type LoopInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// LoopOutput contains the result of the loop use cases.
type LoopOutput struct {
	Mode  domain.LoopMode
	Track *domain.Track // current track when the mode was changed, may be nil
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	repo        domain.PlayerStateRepository
	audioPlayer ports.AudioPlayer
	voiceState  ports.VoiceStateProvider
	notifier    ports.NotificationSender
	voice       *VoiceChannelService
	loader      *TrackLoaderService
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.PlayerStateRepository,
	audioPlayer ports.AudioPlayer,
	voiceState ports.VoiceStateProvider,
	notifier ports.NotificationSender,
	voice *VoiceChannelService,
	loader *TrackLoaderService,
) *PlaybackService {
	return &PlaybackService{
		repo:        repo,
		audioPlayer: audioPlayer,
		voiceState:  voiceState,
		notifier:    notifier,
		voice:       voice,
		loader:      loader,
	}
}

// Play resolves the query and enqueues the result, joining the user's voice
// channel if the guild has no session. Playback starts immediately if the
// session was idle.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	userChannel, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if userChannel == nil {
		return nil, ErrUserNotInVoice
	}

	if existing := p.repo.Get(input.GuildID); existing != nil {
		existing.Lock()
		sameChannel := existing.VoiceChannelID() == *userChannel
		existing.Unlock()
		if !sameChannel {
			return nil, ErrNotInSameChannel
		}
	}

	if !p.audioPlayer.IsAvailable() {
		return nil, ErrNodeUnavailable
	}

	loaded, err := p.loader.LoadTracks(ctx, LoadTracksInput{
		Query:       input.Query,
		RequesterID: input.UserID,
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.voice.Join(ctx, input.GuildID, *userChannel); err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	state := LockSession(p.repo, input.GuildID)
	if state == nil {
		// Torn down between joining and locking.
		return nil, ErrNotConnected
	}
	defer state.Unlock()

	if state.VoiceChannelID() != *userChannel {
		return nil, ErrNotInSameChannel
	}

	state.BindNotificationChannel(input.TextChannelID)

	output := &PlayOutput{
		Tracks:       loaded.Tracks,
		PlaylistName: loaded.PlaylistName,
	}

	started := state.Enqueue(loaded.Tracks...)
	if started == nil {
		return output, nil
	}

	if err := p.audioPlayer.Play(ctx, input.GuildID, started); err != nil {
		state.DropCurrent(started)
		return nil, fmt.Errorf("failed to start playback: %w", err)
	}
	output.Started = started

	slog.Debug("playback started", "guild", input.GuildID, "track", started.Title)

	return output, nil
}

// Skip stops the current track. Without ClearQueue the track end event
// decides what plays next; with ClearQueue the queue is emptied and the
// session goes idle.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	state := LockSession(p.repo, input.GuildID)
	if state == nil {
		return nil, ErrNotPlaying
	}
	defer state.Unlock()

	if err := requireSameChannel(p.voiceState, state, input.UserID); err != nil {
		return nil, err
	}

	current := state.Current()
	if current == nil {
		return nil, ErrNotPlaying
	}

	if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
		return nil, err
	}

	if input.ClearQueue {
		state.Stop()
		if msg := state.TakeNowPlayingMessage(); msg != nil {
			if err := p.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
				slog.Warn(
					"failed to delete now playing message",
					"guild", input.GuildID,
					"error", err,
				)
			}
		}
	}

	return &SkipOutput{SkippedTrack: current}, nil
}

// Seek moves the playback position of the current track.
func (p *PlaybackService) Seek(ctx context.Context, input SeekInput) (*SeekOutput, error) {
	state := LockSession(p.repo, input.GuildID)
	if state == nil {
		return nil, ErrNotPlaying
	}
	defer state.Unlock()

	if err := requireSameChannel(p.voiceState, state, input.UserID); err != nil {
		return nil, err
	}

	current := state.Current()
	if current == nil {
		return nil, ErrNotPlaying
	}

	target, err := domain.ParseSeekTarget(input.Timestamp)
	if err != nil {
		return nil, ErrInvalidTimestamp
	}

	if current.IsStream {
		return nil, ErrNotSeekable
	}

	position := target.Resolve(p.audioPlayer.Position(input.GuildID), current.Duration)
	if err := p.audioPlayer.Seek(ctx, input.GuildID, position); err != nil {
		return nil, err
	}

	return &SeekOutput{Track: current, Position: position}, nil
}

// Loop toggles looping of the current track.
func (p *PlaybackService) Loop(_ context.Context, input LoopInput) (*LoopOutput, error) {
	state := LockSession(p.repo, input.GuildID)
	if state == nil {
		return nil, ErrNotPlaying
	}
	defer state.Unlock()

	if err := requireSameChannel(p.voiceState, state, input.UserID); err != nil {
		return nil, err
	}

	if state.Current() == nil {
		return nil, ErrNotPlaying
	}

	return &LoopOutput{Mode: state.ToggleTrackLoop(), Track: state.Current()}, nil
}

// LoopAll toggles looping of the whole queue.
func (p *PlaybackService) LoopAll(_ context.Context, input LoopInput) (*LoopOutput, error) {
	state := LockSession(p.repo, input.GuildID)
	if state == nil {
		return nil, ErrNotPlaying
	}
	defer state.Unlock()

	if err := requireSameChannel(p.voiceState, state, input.UserID); err != nil {
		return nil, err
	}

	return &LoopOutput{Mode: state.ToggleQueueLoop(), Track: state.Current()}, nil
}
