package usecases

import (
	"errors"

	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// Errors returned to command handlers. All of them are user-facing and are
// answered with a reply rather than reported.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("user is not in a voice channel")

	// ErrNotInSameChannel is returned when the user is in a different voice channel than the bot.
	ErrNotInSameChannel = errors.New("user is not in the bot's voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrQueueEmpty is returned when there is nothing to list or search.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrTrackNotFound is returned when no track matches a remove or bump query.
	ErrTrackNotFound = errors.New("track not found in the queue")

	// ErrAlreadyPlaying is returned when bumping the track that is already playing.
	ErrAlreadyPlaying = errors.New("track is already playing")

	// ErrInvalidTimestamp is returned when a seek argument cannot be parsed.
	ErrInvalidTimestamp = domain.ErrInvalidTimestamp

	// ErrNotSeekable is returned when seeking a live stream.
	ErrNotSeekable = errors.New("track is not seekable")

	// ErrNodeUnavailable is returned when no audio node is connected.
	ErrNodeUnavailable = errors.New("audio node unavailable")

	// ErrLoadFailed is returned when the audio node fails to load tracks.
	ErrLoadFailed = errors.New("failed to load track")
)
