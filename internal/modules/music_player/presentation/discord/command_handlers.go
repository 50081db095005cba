package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// commandTimeout bounds a single command, including joining a voice
// channel and resolving tracks on the audio node.
const commandTimeout = 30 * time.Second

// userMessages maps errors caused by user input or bot state to replies.
// Anything else is returned to the bot and reported to the operator.
var userMessages = []struct {
	err     error
	message string
}{
	{usecases.ErrUserNotInVoice, "You're not in a voice channel."},
	{usecases.ErrNotInSameChannel, "We're not in the same voice channel."},
	{usecases.ErrNotPlaying, "There is nothing playing."},
	{usecases.ErrQueueEmpty, "The track queue is currently empty."},
	{usecases.ErrNoResults, "No results found."},
	{usecases.ErrTrackNotFound, "The track was not found in the queue."},
	{usecases.ErrAlreadyPlaying, "The track is already playing."},
	{usecases.ErrInvalidTimestamp, "Invalid timestamp specified."},
	{usecases.ErrNotSeekable, "Live streams cannot be seeked."},
	{usecases.ErrNotConnected, "I'm not in a voice channel."},
	{
		usecases.ErrNodeUnavailable,
		"The connection to the audio node is not yet established. Try again shortly.",
	},
	{usecases.ErrLoadFailed, "Failed to load the track, please try again."},
}

// userMessage returns the reply for err, if err is a user-facing error.
func userMessage(err error) (string, bool) {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.message, true
		}
	}
	return "", false
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
	}
}

// Handlers returns the handler of every command, keyed by command name.
func (h *CommandHandlers) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":       h.HandlePlay,
		"skip":       h.HandleSkip,
		"stop":       h.HandleStop,
		"remove":     h.HandleRemove,
		"bump":       h.HandleBump,
		"queue":      h.HandleQueue,
		"seek":       h.HandleSeek,
		"loop":       h.HandleLoop,
		"loopall":    h.HandleLoopAll,
		"disconnect": h.HandleDisconnect,
	}
}

// commandContext holds what every command reads from the interaction.
type commandContext struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

// begin acknowledges the interaction and parses its IDs.
func begin(i *discordgo.InteractionCreate, r bot.Responder) (commandContext, error) {
	if err := r.Defer(); err != nil {
		return commandContext{}, fmt.Errorf("failed to defer interaction: %w", err)
	}

	var cc commandContext
	var err error

	if cc.guildID, err = snowflake.Parse(i.GuildID); err != nil {
		return commandContext{}, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}

	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return commandContext{}, errors.New("interaction has no user")
	}
	if cc.userID, err = snowflake.Parse(user.ID); err != nil {
		return commandContext{}, fmt.Errorf("invalid user ID %q: %w", user.ID, err)
	}

	if cc.channelID, err = snowflake.Parse(i.ChannelID); err != nil {
		return commandContext{}, fmt.Errorf("invalid channel ID %q: %w", i.ChannelID, err)
	}

	return cc, nil
}

// stringOption returns the value of the named string option.
func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// replyError answers user-facing errors and passes every other error on.
func replyError(r bot.Responder, err error) error {
	if message, ok := userMessage(err); ok {
		return bot.Reply(r, message)
	}
	return err
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID:       cc.guildID,
		UserID:        cc.userID,
		TextChannelID: cc.channelID,
		Query:         stringOption(i, "song"),
	})
	if err != nil {
		return replyError(r, err)
	}

	if output.IsPlaylist() {
		return bot.Reply(r, "", playlistEmbed(output.PlaylistName, output.Tracks))
	}
	return bot.Reply(r, "", trackEmbed("Track enqueued", output.Tracks[0]))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.skip(i, r, false)
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.skip(i, r, true)
}

func (h *CommandHandlers) skip(i *discordgo.InteractionCreate, r bot.Responder, clearQueue bool) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID:    cc.guildID,
		UserID:     cc.userID,
		ClearQueue: clearQueue,
	})
	if err != nil {
		return replyError(r, err)
	}

	if clearQueue {
		return bot.Reply(r, "Queue cleared.")
	}
	return bot.Reply(r, "", trackEmbed("Track skipped", output.SkippedTrack))
}

// HandleRemove handles the /remove command.
func (h *CommandHandlers) HandleRemove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.removeOrBump(i, r, false)
}

// HandleBump handles the /bump command.
func (h *CommandHandlers) HandleBump(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.removeOrBump(i, r, true)
}

func (h *CommandHandlers) removeOrBump(i *discordgo.InteractionCreate, r bot.Responder, bump bool) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.queue.RemoveOrBump(ctx, usecases.RemoveOrBumpInput{
		GuildID: cc.guildID,
		UserID:  cc.userID,
		Query:   stringOption(i, "song"),
		Bump:    bump,
	})
	if err != nil {
		return replyError(r, err)
	}

	var title string
	switch output.Action {
	case usecases.RemoveActionSkipped:
		title = "Track skipped"
	case usecases.RemoveActionMoved:
		title = "Track moved"
	default:
		title = "Track removed"
	}
	return bot.Reply(r, "", trackEmbed(title, output.Track))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	output, err := h.queue.List(context.Background(), usecases.QueueListInput{
		GuildID: cc.guildID,
	})
	if err != nil {
		return replyError(r, err)
	}

	return bot.Reply(r, "", queueEmbed(output.Current, output.Position, output.Tracks, output.LoopMode))
}

// HandleSeek handles the /seek command.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Seek(ctx, usecases.SeekInput{
		GuildID:   cc.guildID,
		UserID:    cc.userID,
		Timestamp: stringOption(i, "timestamp"),
	})
	if err != nil {
		return replyError(r, err)
	}

	return bot.Reply(r, fmt.Sprintf(
		"Seeked to %s.",
		domain.FormatTimestamp(output.Position, output.Track.Duration),
	))
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	output, err := h.playback.Loop(context.Background(), usecases.LoopInput{
		GuildID: cc.guildID,
		UserID:  cc.userID,
	})
	if err != nil {
		return replyError(r, err)
	}

	return bot.Reply(r, loopMessage(output.Mode, output.Track))
}

// HandleLoopAll handles the /loopall command.
func (h *CommandHandlers) HandleLoopAll(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	output, err := h.playback.LoopAll(context.Background(), usecases.LoopInput{
		GuildID: cc.guildID,
		UserID:  cc.userID,
	})
	if err != nil {
		return replyError(r, err)
	}

	return bot.Reply(r, loopMessage(output.Mode, output.Track))
}

// HandleDisconnect handles the /disconnect command.
func (h *CommandHandlers) HandleDisconnect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := begin(i, r)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	err = h.voiceChannel.Leave(ctx, usecases.LeaveInput{
		GuildID: cc.guildID,
		UserID:  cc.userID,
	})
	if err != nil {
		return replyError(r, err)
	}

	return bot.Reply(r, "Disconnected.")
}
