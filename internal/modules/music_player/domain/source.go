package domain

// TrackSource represents the origin platform of a track, as reported by the audio node.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceBandcamp   TrackSource = "bandcamp"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceHTTP       TrackSource = "http"
	TrackSourceOther      TrackSource = "other"
)

var trackSourceNames = map[TrackSource]string{
	TrackSourceYouTube:    "YouTube",
	TrackSourceSoundCloud: "SoundCloud",
	TrackSourceBandcamp:   "Bandcamp",
	TrackSourceTwitch:     "Twitch",
	TrackSourceHTTP:       "HTTP",
}

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	source := TrackSource(name)
	if _, ok := trackSourceNames[source]; ok {
		return source
	}
	return TrackSourceOther
}

// DisplayName returns the platform name shown to users, or "" for unknown sources.
func (s TrackSource) DisplayName() string {
	return trackSourceNames[s]
}
