package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// PlaybackEventHandler advances sessions when the audio node ends a track.
type PlaybackEventHandler struct {
	playerStates domain.PlayerStateRepository
	player       ports.AudioPlayer
	notifier     ports.NotificationSender
	subscriber   ports.EventSubscriber
	reporter     ports.ErrorReporter
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playerStates domain.PlayerStateRepository,
	player ports.AudioPlayer,
	notifier ports.NotificationSender,
	subscriber ports.EventSubscriber,
	reporter ports.ErrorReporter,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playerStates: playerStates,
		player:       player,
		notifier:     notifier,
		subscriber:   subscriber,
		reporter:     reporter,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handlers properly registered")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	defer h.reporter.Recover("track ended")

	state := usecases.LockSession(h.playerStates, event.GuildID)
	if state == nil {
		slog.Debug("track ended but player state not found", "guild", event.GuildID)
		return
	}
	defer state.Unlock()

	next, ok := state.Advance(event.Encoded, event.Reason)
	if !ok {
		slog.Debug(
			"ignoring track end",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
		return
	}

	if msg := state.TakeNowPlayingMessage(); msg != nil {
		if err := h.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
			slog.Debug(
				"failed to delete now playing message",
				"guild", event.GuildID,
				"error", err,
			)
		}
	}

	if next == nil {
		slog.Debug("queue exhausted, player idle", "guild", event.GuildID)
		return
	}

	slog.Debug(
		"track ended, starting next",
		"guild", event.GuildID,
		"reason", event.Reason,
		"next", next.Title,
		"loop_mode", state.LoopMode().String(),
	)

	if err := h.player.Play(ctx, event.GuildID, next); err != nil {
		state.DropCurrent(next)
		h.reporter.Report("track ended", fmt.Errorf("failed to start next track: %w", err), nil)
	}
}

// NotificationEventHandler maintains the "Now playing" message of each session.
type NotificationEventHandler struct {
	playerStates     domain.PlayerStateRepository
	subscriber       ports.EventSubscriber
	notifier         ports.NotificationSender
	userInfoProvider ports.UserInfoProvider
	reporter         ports.ErrorReporter
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	playerStates domain.PlayerStateRepository,
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfoProvider ports.UserInfoProvider,
	reporter ports.ErrorReporter,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		playerStates:     playerStates,
		subscriber:       subscriber,
		notifier:         notifier,
		userInfoProvider: userInfoProvider,
		reporter:         reporter,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnTrackStarted(h.handleTrackStarted)
	h.subscriber.OnNodeLinkLost(h.handleNodeLinkLost)

	slog.Debug("notification event handlers properly registered")
}

func (h *NotificationEventHandler) handleTrackStarted(
	_ context.Context,
	event domain.TrackStartedEvent,
) {
	defer h.reporter.Recover("track started")

	state := usecases.LockSession(h.playerStates, event.GuildID)
	if state == nil {
		slog.Debug(
			"skipping now playing notification, state not found",
			"guild", event.GuildID,
		)
		return
	}
	defer state.Unlock()

	// A track that failed or was skipped right after starting may already
	// be superseded.
	if !state.IsCurrent(event.Encoded) {
		slog.Debug("skipping now playing notification, track no longer current", "guild", event.GuildID)
		return
	}

	channelID := state.NotificationChannelID()
	if channelID == 0 {
		return
	}

	// The node repeats the start event when a player is resumed after a
	// reconnect; the track is already announced.
	if msg := state.NowPlayingMessage(); msg != nil && msg.Encoded == event.Encoded {
		slog.Debug("skipping now playing notification, already announced", "guild", event.GuildID)
		return
	}

	h.deleteNowPlaying(state)

	current := state.Current()
	info := &ports.NowPlayingInfo{
		Title:       current.Title,
		Artist:      current.Artist,
		Duration:    current.FormattedDuration(),
		URI:         current.URI,
		ArtworkURL:  current.ArtworkURL,
		SourceName:  current.Source().DisplayName(),
		RequesterID: current.RequesterID,
		EnqueuedAt:  current.EnqueuedAt,
	}
	if current.RequesterID != 0 && h.userInfoProvider != nil {
		userInfo, err := h.userInfoProvider.GetUserInfo(event.GuildID, current.RequesterID)
		if err != nil {
			slog.Debug("failed to fetch requester info", "guild", event.GuildID, "error", err)
		} else {
			info.RequesterName = userInfo.DisplayName
			info.RequesterAvatarURL = userInfo.AvatarURL
		}
	}

	messageID, err := h.notifier.SendNowPlaying(channelID, info)
	if err != nil {
		h.reporter.Report("track started", fmt.Errorf("failed to send now playing notification: %w", err), nil)
		return
	}

	state.SetNowPlayingMessage(&domain.NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
		Encoded:   event.Encoded,
	})
}

func (h *NotificationEventHandler) handleNodeLinkLost(
	_ context.Context,
	event domain.NodeLinkLostEvent,
) {
	defer h.reporter.Recover("node link lost")

	slog.Warn("audio node link lost, clearing now playing messages", "node", event.NodeName)

	for _, candidate := range h.playerStates.All() {
		state := usecases.LockSession(h.playerStates, candidate.GuildID())
		if state == nil {
			continue
		}
		h.deleteNowPlaying(state)
		state.Unlock()
	}
}

// deleteNowPlaying deletes the session's "Now playing" message, if any.
// The caller holds the session lock.
func (h *NotificationEventHandler) deleteNowPlaying(state *domain.PlayerState) {
	msg := state.TakeNowPlayingMessage()
	if msg == nil {
		return
	}
	if err := h.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		slog.Debug(
			"failed to delete now playing message",
			"guild", state.GuildID(),
			"error", err,
		)
	}
}
