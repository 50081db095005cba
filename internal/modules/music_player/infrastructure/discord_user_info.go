package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
)

// DiscordUserInfoProvider resolves requester names and avatars for notifications.
type DiscordUserInfoProvider struct {
	state       *discordgo.State
	fetchMember func(guildID, userID string) (*discordgo.Member, error)
}

// NewDiscordUserInfoProvider creates a new DiscordUserInfoProvider.
func NewDiscordUserInfoProvider(session *discordgo.Session) *DiscordUserInfoProvider {
	return &DiscordUserInfoProvider{
		state: session.State,
		fetchMember: func(guildID, userID string) (*discordgo.Member, error) {
			return session.GuildMember(guildID, userID)
		},
	}
}

// GetUserInfo returns display info for a guild member, preferring the
// gateway cache over a REST lookup.
func (p *DiscordUserInfoProvider) GetUserInfo(
	guildID, userID snowflake.ID,
) (*ports.UserInfo, error) {
	member, err := p.state.Member(guildID.String(), userID.String())
	if err != nil || member.User == nil {
		member, err = p.fetchMember(guildID.String(), userID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild member: %w", err)
		}
	}

	return &ports.UserInfo{
		DisplayName: displayName(member),
		AvatarURL:   member.AvatarURL(""),
	}, nil
}

// displayName returns the name shown for a guild member:
// guild nickname, then global display name, then username.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

var _ ports.UserInfoProvider = (*DiscordUserInfoProvider)(nil)
