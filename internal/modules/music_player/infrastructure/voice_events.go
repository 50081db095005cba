package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceForwarder receives complete voice updates. disgolink.Client satisfies it.
type voiceForwarder interface {
	OnVoiceStateUpdate(
		ctx context.Context,
		guildID snowflake.ID,
		channelID *snowflake.ID,
		sessionID string,
	)
	OnVoiceServerUpdate(ctx context.Context, guildID snowflake.ID, token string, endpoint string)
}

// voiceUpdate collects both halves of a voice connection handshake.
type voiceUpdate struct {
	// From VoiceStateUpdate
	hasState  bool
	channelID *snowflake.ID
	sessionID string

	// From VoiceServerUpdate
	hasServer bool
	token     string
	endpoint  string
}

func (u *voiceUpdate) complete() bool {
	return u.hasState && u.hasServer
}

// voiceRelay buffers Discord voice events per guild and forwards them to the
// audio node only once both the state and server halves are known. Forwarding
// a lone state update makes the node reject it as a partial voice state.
type voiceRelay struct {
	forwarder voiceForwarder

	mu      sync.Mutex
	buffers map[snowflake.ID]*voiceUpdate
	waiters map[snowflake.ID]chan struct{}
}

func newVoiceRelay(forwarder voiceForwarder) *voiceRelay {
	return &voiceRelay{
		forwarder: forwarder,
		buffers:   make(map[snowflake.ID]*voiceUpdate),
		waiters:   make(map[snowflake.ID]chan struct{}),
	}
}

// expect registers interest in the next completed handshake for guildID.
// The returned channel is closed once it has been forwarded; release must be
// called when the caller stops waiting.
func (r *voiceRelay) expect(guildID snowflake.ID) (ready <-chan struct{}, release func()) {
	ch := make(chan struct{})

	r.mu.Lock()
	r.waiters[guildID] = ch
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.waiters[guildID] == ch {
			delete(r.waiters, guildID)
		}
	}
}

// stateUpdate handles the bot's own voice state. A nil channel means the bot
// left and is forwarded immediately.
func (r *voiceRelay) stateUpdate(
	ctx context.Context,
	guildID snowflake.ID,
	channelID *snowflake.ID,
	sessionID string,
) {
	if channelID == nil {
		r.mu.Lock()
		delete(r.buffers, guildID)
		r.mu.Unlock()

		r.forwarder.OnVoiceStateUpdate(ctx, guildID, nil, sessionID)
		return
	}

	r.mu.Lock()
	update := r.bufferLocked(guildID)
	update.hasState = true
	update.channelID = channelID
	update.sessionID = sessionID
	r.mu.Unlock()

	r.flush(ctx, guildID)
}

// serverUpdate handles the voice server assignment for a guild.
func (r *voiceRelay) serverUpdate(ctx context.Context, guildID snowflake.ID, token, endpoint string) {
	r.mu.Lock()
	update := r.bufferLocked(guildID)
	update.hasServer = true
	update.token = token
	update.endpoint = endpoint
	r.mu.Unlock()

	r.flush(ctx, guildID)
}

func (r *voiceRelay) bufferLocked(guildID snowflake.ID) *voiceUpdate {
	update, ok := r.buffers[guildID]
	if !ok {
		update = &voiceUpdate{}
		r.buffers[guildID] = update
	}
	return update
}

// flush forwards a completed handshake in state, server order and wakes the waiter.
func (r *voiceRelay) flush(ctx context.Context, guildID snowflake.ID) {
	r.mu.Lock()
	update, ok := r.buffers[guildID]
	if !ok || !update.complete() {
		r.mu.Unlock()
		return
	}
	delete(r.buffers, guildID)
	waiter := r.waiters[guildID]
	delete(r.waiters, guildID)
	r.mu.Unlock()

	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", update.channelID,
		"has_session_id", update.sessionID != "",
	)

	r.forwarder.OnVoiceStateUpdate(ctx, guildID, update.channelID, update.sessionID)
	r.forwarder.OnVoiceServerUpdate(ctx, guildID, update.token, update.endpoint)

	if waiter != nil {
		close(waiter)
	}
}
