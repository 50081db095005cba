package usecases

import (
	"context"
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	Query       string
	RequesterID snowflake.ID
}

// LoadTracksOutput contains the result of the LoadTracks use case.
type LoadTracksOutput struct {
	Tracks       []*domain.Track
	PlaylistName string // empty unless the query resolved to a playlist
}

// TrackLoaderService handles track loading operations.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(trackResolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
	}
}

// LoadTracks resolves a user query.
// A search yields its first result only; a playlist yields every track in order.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrNoResults
	}

	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	if result == nil || result.Type == ports.LoadTypeEmpty || len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	tracks := make([]*domain.Track, 0, len(result.Tracks))
	for _, info := range result.Tracks {
		track := domain.NewTrack(
			domain.TrackID(info.Identifier),
			info.Encoded,
			info.Title,
			info.Artist,
			info.Duration,
			info.URI,
			info.ArtworkURL,
			info.SourceName,
			info.IsStream,
			input.RequesterID,
		)
		// Entries the node could not describe are skipped.
		if !track.IsValid() {
			continue
		}
		tracks = append(tracks, track)
	}
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}
	if result.Type != ports.LoadTypePlaylist {
		tracks = tracks[:1]
	}

	output := &LoadTracksOutput{Tracks: tracks}
	if result.Type == ports.LoadTypePlaylist {
		output.PlaylistName = result.PlaylistName
		if output.PlaylistName == "" {
			output.PlaylistName = "Untitled playlist"
		}
	}
	return output, nil
}
