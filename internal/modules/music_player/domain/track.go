package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is the audio node's identifier for a track (e.g. a YouTube video ID).
type TrackID string

// Track represents a playable audio track.
// A Track is created per enqueue, so two queue entries of the same song
// are distinct values.
type Track struct {
	ID          TrackID
	Encoded     string // Lavalink encoded track data
	Title       string
	Artist      string
	Duration    time.Duration
	URI         string
	ArtworkURL  string
	SourceName  string // e.g., "youtube", "spotify", "soundcloud"
	IsStream    bool
	RequesterID snowflake.ID // Discord user who added the track
	EnqueuedAt  time.Time
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(
	id TrackID,
	encoded string,
	title string,
	artist string,
	duration time.Duration,
	uri string,
	artworkURL string,
	sourceName string,
	isStream bool,
	requesterID snowflake.ID,
) *Track {
	return &Track{
		ID:          id,
		Encoded:     encoded,
		Title:       title,
		Artist:      artist,
		Duration:    duration,
		URI:         uri,
		ArtworkURL:  artworkURL,
		SourceName:  sourceName,
		IsStream:    isStream,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// FormattedDuration returns the duration as MM:SS, or H:MM:SS from one hour on.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatTimestamp(t.Duration, t.Duration)
}
