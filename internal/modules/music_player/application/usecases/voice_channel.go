package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations and session lifecycle.
type VoiceChannelService struct {
	repo            domain.PlayerStateRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	notifier        ports.NotificationSender

	joinMu sync.Mutex
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.PlayerStateRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	notifier ports.NotificationSender,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		notifier:        notifier,
	}
}

// Join returns the guild's session, connecting to voiceChannelID and
// creating the session if none exists yet.
func (v *VoiceChannelService) Join(
	ctx context.Context,
	guildID, voiceChannelID snowflake.ID,
) (*domain.PlayerState, error) {
	v.joinMu.Lock()
	defer v.joinMu.Unlock()

	if state := v.repo.Get(guildID); state != nil {
		return state, nil
	}

	if err := v.voiceConnection.JoinChannel(ctx, guildID, voiceChannelID); err != nil {
		return nil, err
	}

	state := domain.NewPlayerState(guildID, voiceChannelID)
	v.repo.Save(state)

	slog.Info("joined voice channel", "guild", guildID, "channel", voiceChannelID)

	return state, nil
}

// Leave handles the "disconnect" command.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	state := LockSession(v.repo, input.GuildID)
	if state == nil {
		return ErrNotConnected
	}
	defer state.Unlock()

	if err := requireSameChannel(v.voiceState, state, input.UserID); err != nil {
		return err
	}

	return v.teardownLocked(ctx, state)
}

// Teardown ends the session if it is still the one given, deleting its
// "Now playing" message and leaving the voice channel.
// A nil expected session matches whatever session the guild has.
func (v *VoiceChannelService) Teardown(
	ctx context.Context,
	guildID snowflake.ID,
	expected *domain.PlayerState,
) error {
	state := LockSession(v.repo, guildID)
	if state == nil {
		return nil
	}
	defer state.Unlock()

	if expected != nil && state != expected {
		return nil
	}

	return v.teardownLocked(ctx, state)
}

func (v *VoiceChannelService) teardownLocked(ctx context.Context, state *domain.PlayerState) error {
	guildID := state.GuildID()

	if msg := state.TakeNowPlayingMessage(); msg != nil {
		if err := v.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
			slog.Warn(
				"failed to delete now playing message",
				"guild", guildID,
				"error", err,
			)
		}
	}

	// Unregistered before leaving so the resulting voice state update finds no session.
	v.repo.Delete(guildID)

	if err := v.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
		return err
	}

	slog.Info("left voice channel", "guild", guildID)

	return nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) error {
	if input.NewChannelID == nil {
		return v.Teardown(ctx, input.GuildID, nil)
	}

	state := LockSession(v.repo, input.GuildID)
	if state == nil {
		return nil
	}
	defer state.Unlock()

	if *input.NewChannelID != state.VoiceChannelID() {
		slog.Info(
			"bot moved to another voice channel",
			"guild", input.GuildID,
			"channel", *input.NewChannelID,
		)
		state.SetVoiceChannelID(*input.NewChannelID)
	}
	return nil
}
