package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// LockSession returns the guild's session with its lock held, or nil if the
// guild has no session. The session is re-validated after the lock is
// acquired, so a session torn down while waiting is never returned.
// Callers must Unlock the returned state.
func LockSession(repo domain.PlayerStateRepository, guildID snowflake.ID) *domain.PlayerState {
	state := repo.Get(guildID)
	if state == nil {
		return nil
	}

	state.Lock()
	if repo.Get(guildID) != state {
		state.Unlock()
		return nil
	}
	return state
}

// requireSameChannel checks that the user shares the session's voice channel.
func requireSameChannel(
	voiceState ports.VoiceStateProvider,
	state *domain.PlayerState,
	userID snowflake.ID,
) error {
	channelID, err := voiceState.GetUserVoiceChannel(state.GuildID(), userID)
	if err != nil {
		return err
	}
	if channelID == nil {
		return ErrUserNotInVoice
	}
	if *channelID != state.VoiceChannelID() {
		return ErrNotInSameChannel
	}
	return nil
}
