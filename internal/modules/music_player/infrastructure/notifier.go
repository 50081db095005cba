package infrastructure

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorNowPlaying = 0x5865F2
)

// messageSender is the subset of *discordgo.Session used by Notifier.
type messageSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Notifier sends notifications to Discord channels.
type Notifier struct {
	session messageSender
}

// NewNotifier creates a new Notifier.
func NewNotifier(session messageSender) *Notifier {
	return &Notifier{
		session: session,
	}
}

// SendNowPlaying sends a "Now playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), nowPlayingEmbed(info))
	if err != nil {
		return 0, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
// A message that was already deleted is not an error.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	err := n.session.ChannelMessageDelete(channelID.String(), messageID.String())
	if err != nil && !isUnknownMessage(err) {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Now playing",
		Description: bot.MaskedLink(info.Title, info.URI),
		Color:       colorNowPlaying,
	}

	if info.Artist != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Artist",
			Value:  bot.EscapeMarkdown(info.Artist),
			Inline: true,
		})
	}
	if info.Duration != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Duration",
			Value:  info.Duration,
			Inline: true,
		})
	}
	if name := domain.ParseTrackSource(info.SourceName).DisplayName(); name != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Source",
			Value:  name,
			Inline: true,
		})
	}

	if info.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.ArtworkURL}
	}

	if info.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", info.RequesterName),
			IconURL: info.RequesterAvatarURL,
		}
	}
	if !info.EnqueuedAt.IsZero() {
		embed.Timestamp = info.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	return embed
}

// isUnknownMessage reports whether err is Discord's answer for a message
// that no longer exists.
func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
