package ports

import (
	"context"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves a URL or prefixed search query.
	// An empty result is not an error.
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}
