package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why the audio node ended a track.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to the end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the node could not load or decode the track.
	TrackEndLoadFailed TrackEndReason = "loadFailed"
	// TrackEndStopped means playback was stopped on request.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another track was started over it.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the node destroyed the player.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should start the next track.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStopped
}

// HonorsTrackLoop returns true if a track loop should replay the ended track.
// A skipped track is replayed like a finished one; a track the node failed to
// load is not, since it would fail again.
func (r TrackEndReason) HonorsTrackLoop() bool {
	return r == TrackEndFinished || r == TrackEndStopped
}

// TrackStartedEvent is published when the audio node starts streaming a track.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Encoded string
}

// TrackEndedEvent is published when the audio node stops streaming a track.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Encoded string
	Reason  TrackEndReason
}

// NodeLinkLostEvent is published when the link to an audio node drops.
type NodeLinkLostEvent struct {
	NodeName string
}
