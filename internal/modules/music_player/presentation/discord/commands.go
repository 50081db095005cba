package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
// Every command is usable in guilds only.
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play a track from YouTube.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "song",
					Description: "URL or search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "skip",
			Description: "Skip to the next track.",
		},
		{
			Name:        "stop",
			Description: "Stop the music.",
		},
		{
			Name:        "remove",
			Description: "Remove a track from the queue.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "song",
					Description: "Part of the track title",
					Required:    true,
				},
			},
		},
		{
			Name:        "bump",
			Description: "Move a track to the front of the queue.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "song",
					Description: "Part of the track title",
					Required:    true,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the current queue.",
		},
		{
			Name:        "seek",
			Description: "Seek within the current track.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timestamp",
					Description: "Seconds to move by (e.g. 30, -10) or a position (e.g. 1:30, 1:02:03)",
					Required:    true,
				},
			},
		},
		{
			Name:        "loop",
			Description: "Toggle looping of the current track.",
		},
		{
			Name:        "loopall",
			Description: "Toggle looping of the whole queue.",
		},
		{
			Name:        "disconnect",
			Description: "Disconnect from the voice channel.",
		},
	}

	for _, cmd := range commands {
		cmd.Contexts = &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	}
	return commands
}
