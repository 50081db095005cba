package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

const (
	// maxListedTracks is the number of embed fields Discord allows.
	maxListedTracks = 25

	progressBarWidth = 20
	progressMarker   = ":radio_button:"
)

// Embed colors.
const (
	colorInfo = 0x5865F2
)

// trackLink renders a track as an escaped markdown link, or its escaped
// title when it has no URI.
func trackLink(track *domain.Track) string {
	return bot.MaskedLink(track.Title, track.URI)
}

// progressBar renders a 20 character bar with the marker at the playback position.
func progressBar(position, length time.Duration) string {
	slot := 0
	if length > 0 {
		slot = int(position * progressBarWidth / length)
	}
	slot = max(0, min(slot, progressBarWidth-1))

	return strings.Repeat("-", slot) + progressMarker +
		strings.Repeat("-", progressBarWidth-1-slot)
}

// progressLine renders "position bar length" for the queue display.
func progressLine(position, length time.Duration) string {
	return fmt.Sprintf("%s %s %s",
		domain.FormatTimestamp(position, length),
		progressBar(position, length),
		domain.FormatTimestamp(length, length),
	)
}

// addTrackFields lists tracks as numbered embed fields, at most 25 of them,
// with a footer counting the rest.
func addTrackFields(embed *discordgo.MessageEmbed, tracks []*domain.Track) {
	for i, track := range tracks {
		if i == maxListedTracks {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "",
			Value: fmt.Sprintf("%d) %s", i+1, trackLink(track)),
		})
	}

	if rest := len(tracks) - maxListedTracks; rest > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("... and %d more.", rest),
		}
	}
}

func trackEmbed(title string, track *domain.Track) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: trackLink(track),
		Color:       colorInfo,
	}
}

func playlistEmbed(name string, tracks []*domain.Track) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Playlist enqueued",
		Description: bot.EscapeMarkdown(name),
		Color:       colorInfo,
	}
	addTrackFields(embed, tracks)
	return embed
}

func queueEmbed(
	current *domain.Track,
	position time.Duration,
	queue []*domain.Track,
	loopMode domain.LoopMode,
) *discordgo.MessageEmbed {
	var description strings.Builder
	fmt.Fprintf(&description, "Now playing: %s\n", trackLink(current))
	if current.IsStream {
		description.WriteString("LIVE")
	} else {
		description.WriteString(progressLine(position, current.Duration))
	}

	switch loopMode {
	case domain.LoopModeTrack:
		description.WriteString("\n:repeat_one: Looping the current track.")
	case domain.LoopModeQueue:
		description.WriteString("\n:repeat: Looping the queue.")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Song queue",
		Description: description.String(),
		Color:       colorInfo,
	}
	addTrackFields(embed, queue)
	return embed
}

func loopMessage(mode domain.LoopMode, track *domain.Track) string {
	switch mode {
	case domain.LoopModeTrack:
		return fmt.Sprintf("Looping %s.", trackLink(track))
	case domain.LoopModeQueue:
		return "Looping the queue."
	default:
		return "Looping disabled."
	}
}
