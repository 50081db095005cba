package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerState represents the playback session of a guild.
//
// PlayerState is not safe for concurrent use on its own. Callers hold
// Lock while reading or mutating it and re-validate that the state is
// still registered before acting on it.
type PlayerState struct {
	mu sync.Mutex

	guildID               snowflake.ID
	voiceChannelID        snowflake.ID       // Voice channel the bot is connected to
	notificationChannelID snowflake.ID       // Text channel for notifications, zero when unset
	nowPlayingMessage     *NowPlayingMessage // "Now playing" message info (for deletion)

	current   *Track
	queue     Queue
	loopMode  LoopMode
	loopTrack *Track // track a LoopModeTrack is bound to

	// Encoded data of a track released by Stop whose end event is still
	// in flight.
	releasedEncoded string
}

// NewPlayerState creates a new idle PlayerState for the given guild and voice channel.
func NewPlayerState(guildID, voiceChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:        guildID,
		voiceChannelID: voiceChannelID,
	}
}

// Lock acquires the session lock.
func (p *PlayerState) Lock() {
	p.mu.Lock()
}

// Unlock releases the session lock.
func (p *PlayerState) Unlock() {
	p.mu.Unlock()
}

// GuildID returns the guild ID.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the voice channel the session is connected to.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel for notifications, or zero if unset.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// BindNotificationChannel sets the notification channel unless one is
// already set. It reports whether the channel was set.
func (p *PlayerState) BindNotificationChannel(channelID snowflake.ID) bool {
	if p.notificationChannelID != 0 {
		return false
	}
	p.notificationChannelID = channelID
	return true
}

// Current returns the streaming track, or nil when idle.
func (p *PlayerState) Current() *Track {
	return p.current
}

// IsIdle returns true if nothing is streaming.
func (p *PlayerState) IsIdle() bool {
	return p.current == nil
}

// IsCurrent reports whether encoded identifies the streaming track.
func (p *PlayerState) IsCurrent(encoded string) bool {
	return p.current != nil && p.current.Encoded == encoded
}

// Queue returns the pending tracks in play order.
func (p *PlayerState) Queue() []*Track {
	return p.queue.List()
}

// QueueLen returns the number of pending tracks.
func (p *PlayerState) QueueLen() int {
	return p.queue.Len()
}

// LoopMode returns the effective loop mode.
// A track loop bound to a track that is no longer current is reported as off.
func (p *PlayerState) LoopMode() LoopMode {
	if p.loopMode == LoopModeTrack && (p.current == nil || p.loopTrack != p.current) {
		return LoopModeOff
	}
	return p.loopMode
}

// Enqueue appends tracks to the tail of the queue.
// If the session is idle, the head is popped into the current slot and
// returned so the caller can start streaming it; otherwise nil is returned.
func (p *PlayerState) Enqueue(tracks ...*Track) *Track {
	p.queue.Append(tracks...)
	if p.current != nil {
		return nil
	}
	p.current = p.queue.PopFront()
	return p.current
}

// DropCurrent clears the current slot after a failed start.
func (p *PlayerState) DropCurrent(track *Track) {
	if p.current == track {
		p.current = nil
	}
}

// Advance reacts to the end of the track identified by encoded.
//
// It returns ok=false, leaving the session untouched, when the end event is
// stale (the track is no longer current) or the reason does not advance
// playback. Otherwise it returns the track to stream next, which is the
// same track again when a track loop is bound to it, or nil when the queue
// is exhausted and the session became idle.
func (p *PlayerState) Advance(encoded string, reason TrackEndReason) (next *Track, ok bool) {
	if p.releasedEncoded != "" && p.releasedEncoded == encoded {
		p.releasedEncoded = ""
		return nil, false
	}
	if !reason.ShouldAdvanceQueue() || !p.IsCurrent(encoded) {
		return nil, false
	}

	finished := p.current
	if reason.HonorsTrackLoop() && p.loopMode == LoopModeTrack && p.loopTrack == finished {
		return finished, true
	}

	if p.loopMode == LoopModeQueue {
		p.queue.Append(finished)
	}
	p.current = p.queue.PopFront()
	return p.current, true
}

// Stop empties the queue and releases the current track, leaving the session
// idle. The end event the node emits for the released track is ignored.
// It returns the released track.
func (p *PlayerState) Stop() *Track {
	p.queue.Clear()
	released := p.current
	p.current = nil
	if released != nil {
		p.releasedEncoded = released.Encoded
	}
	return released
}

// CurrentMatches reports whether the current track title contains query
// under Unicode case folding.
func (p *PlayerState) CurrentMatches(query string) bool {
	return TitleMatches(p.current, query)
}

// RemoveFromQueue removes the first pending track matching query.
// Returns nil if nothing matches.
func (p *PlayerState) RemoveFromQueue(query string) *Track {
	return p.queue.RemoveAt(p.queue.IndexOfTitle(query))
}

// BumpInQueue moves the first pending track matching query to the head.
// Returns nil if nothing matches.
func (p *PlayerState) BumpInQueue(query string) *Track {
	return p.queue.MoveToFront(p.queue.IndexOfTitle(query))
}

// ToggleTrackLoop toggles between off and a loop bound to the current track.
// Invoking it while a different track is current re-arms the loop on that track.
func (p *PlayerState) ToggleTrackLoop() LoopMode {
	if p.LoopMode() == LoopModeTrack || p.current == nil {
		p.loopMode = LoopModeOff
		p.loopTrack = nil
		return p.loopMode
	}
	p.loopMode = LoopModeTrack
	p.loopTrack = p.current
	return p.loopMode
}

// ToggleQueueLoop toggles between off and queue loop.
func (p *PlayerState) ToggleQueueLoop() LoopMode {
	p.loopTrack = nil
	if p.loopMode == LoopModeQueue {
		p.loopMode = LoopModeOff
	} else {
		p.loopMode = LoopModeQueue
	}
	return p.loopMode
}

// NowPlayingMessage returns the current "Now playing" message info, or nil.
func (p *PlayerState) NowPlayingMessage() *NowPlayingMessage {
	return p.nowPlayingMessage
}

// SetNowPlayingMessage records the "Now playing" message announcing the current track.
func (p *PlayerState) SetNowPlayingMessage(msg *NowPlayingMessage) {
	p.nowPlayingMessage = msg
}

// TakeNowPlayingMessage returns the "Now playing" message info and clears it.
func (p *PlayerState) TakeNowPlayingMessage() *NowPlayingMessage {
	msg := p.nowPlayingMessage
	p.nowPlayingMessage = nil
	return msg
}
