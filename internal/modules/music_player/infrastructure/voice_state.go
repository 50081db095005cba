package infrastructure

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
)

// VoiceStateProvider provides Discord voice state information from the
// gateway state cache.
type VoiceStateProvider struct {
	state *discordgo.State

	// fetchUser resolves users missing from the cache.
	fetchUser func(userID string) (*discordgo.User, error)
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		state: session.State,
		fetchUser: func(userID string) (*discordgo.User, error) {
			return session.User(userID)
		},
	}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns nil if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (*snowflake.ID, error) {
	guild, err := v.state.Guild(guildID.String())
	if err != nil {
		return nil, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return nil, err
			}
			return &channelID, nil
		}
	}

	return nil, nil
}

// HasHumanListeners reports whether any non-bot user is in the voice channel.
func (v *VoiceStateProvider) HasHumanListeners(guildID, channelID snowflake.ID) (bool, error) {
	guild, err := v.state.Guild(guildID.String())
	if err != nil {
		return false, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID.String() {
			continue
		}
		if !v.isBot(guild.ID, vs) {
			return true, nil
		}
	}

	return false, nil
}

func (v *VoiceStateProvider) isBot(guildID string, vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Bot
	}
	if member, err := v.state.Member(guildID, vs.UserID); err == nil && member.User != nil {
		return member.User.Bot
	}

	user, err := v.fetchUser(vs.UserID)
	if err != nil {
		// Counting an unknown user as a listener keeps the session alive.
		slog.Debug("failed to fetch voice channel member", "user", vs.UserID, "error", err)
		return false
	}
	return user.Bot
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
