package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
)

// VoiceEventForwarder relays the bot's voice events to the audio node.
type VoiceEventForwarder interface {
	OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate)
	OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate)
}

// IdleChecker schedules a check for sessions left without listeners.
type IdleChecker interface {
	Check(guildID snowflake.ID)
}

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID        snowflake.ID
	voiceEvents  VoiceEventForwarder
	voiceChannel *usecases.VoiceChannelService
	idle         IdleChecker
	reporter     ports.ErrorReporter
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceEvents VoiceEventForwarder,
	voiceChannel *usecases.VoiceChannelService,
	idle IdleChecker,
	reporter ports.ErrorReporter,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceEvents:  voiceEvents,
		voiceChannel: voiceChannel,
		idle:         idle,
		reporter:     reporter,
	}
}

// HandleVoiceServerUpdate forwards voice server assignments to the audio node.
func (h *EventHandlers) HandleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	defer h.reporter.Recover("on_voice_server_update")

	h.voiceEvents.OnVoiceServerUpdate(event)
}

// HandleVoiceStateUpdate handles voice state changes of any member.
// The bot's own changes are forwarded to the audio node and may end the
// session; every change may leave the bot alone in its channel.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	defer h.reporter.Recover("on_voice_state_update")

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	if event.UserID == h.botID.String() {
		h.voiceEvents.OnVoiceStateUpdate(event)
		h.handleBotVoiceState(guildID, event)
	}

	h.idle.Check(guildID)
}

func (h *EventHandlers) handleBotVoiceState(guildID snowflake.ID, event *discordgo.VoiceStateUpdate) {
	// Parse the channel ID - nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		newChannelID = &id
	}

	err := h.voiceChannel.HandleBotVoiceStateChange(context.Background(), usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	})
	if err != nil {
		h.reporter.Report("on_voice_state_update", err, nil)
	}
}
