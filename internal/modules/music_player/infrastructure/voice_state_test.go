package infrastructure

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

func newTestVoiceStateProvider(t *testing.T, voiceStates ...*discordgo.VoiceState) *VoiceStateProvider {
	t.Helper()

	state := discordgo.NewState()
	if err := state.GuildAdd(&discordgo.Guild{ID: "1", VoiceStates: voiceStates}); err != nil {
		t.Fatalf("failed to add guild: %v", err)
	}

	return &VoiceStateProvider{
		state: state,
		fetchUser: func(userID string) (*discordgo.User, error) {
			return nil, errors.New("unknown user " + userID)
		},
	}
}

func member(userID string, isBot bool) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Bot: isBot}}
}

func TestVoiceStateProvider_GetUserVoiceChannel(t *testing.T) {
	provider := newTestVoiceStateProvider(t,
		&discordgo.VoiceState{GuildID: "1", UserID: "100", ChannelID: "10"},
	)

	channelID, err := provider.GetUserVoiceChannel(snowflake.ID(1), snowflake.ID(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID == nil || *channelID != snowflake.ID(10) {
		t.Errorf("expected channel 10, got %v", channelID)
	}

	channelID, err = provider.GetUserVoiceChannel(snowflake.ID(1), snowflake.ID(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != nil {
		t.Errorf("expected nil channel for user not in voice, got %v", *channelID)
	}

	if _, err := provider.GetUserVoiceChannel(snowflake.ID(2), snowflake.ID(100)); err == nil {
		t.Error("expected error for unknown guild")
	}
}

func TestVoiceStateProvider_HasHumanListeners(t *testing.T) {
	tests := []struct {
		name        string
		voiceStates []*discordgo.VoiceState
		want        bool
	}{
		{
			name: "only the bot",
			voiceStates: []*discordgo.VoiceState{
				{UserID: "900", ChannelID: "10", Member: member("900", true)},
			},
			want: false,
		},
		{
			name: "human with the bot",
			voiceStates: []*discordgo.VoiceState{
				{UserID: "900", ChannelID: "10", Member: member("900", true)},
				{UserID: "100", ChannelID: "10", Member: member("100", false)},
			},
			want: true,
		},
		{
			name: "human in another channel",
			voiceStates: []*discordgo.VoiceState{
				{UserID: "900", ChannelID: "10", Member: member("900", true)},
				{UserID: "100", ChannelID: "11", Member: member("100", false)},
			},
			want: false,
		},
		{
			name: "unknown user counts as listener",
			voiceStates: []*discordgo.VoiceState{
				{UserID: "100", ChannelID: "10"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestVoiceStateProvider(t, tt.voiceStates...)

			got, err := provider.HasHumanListeners(snowflake.ID(1), snowflake.ID(10))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasHumanListeners() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVoiceStateProvider_HasHumanListeners_FetchesUncachedUsers(t *testing.T) {
	provider := newTestVoiceStateProvider(t,
		&discordgo.VoiceState{UserID: "901", ChannelID: "10"},
	)
	provider.fetchUser = func(userID string) (*discordgo.User, error) {
		return &discordgo.User{ID: userID, Bot: true}, nil
	}

	got, err := provider.HasHumanListeners(snowflake.ID(1), snowflake.ID(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected a fetched bot not to count as listener")
	}
}
