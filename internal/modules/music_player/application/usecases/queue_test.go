package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

func trackIDs(tracks []*domain.Track) []domain.TrackID {
	ids := make([]domain.TrackID, len(tracks))
	for i, track := range tracks {
		ids[i] = track.ID
	}
	return ids
}

func assertTrackIDs(t *testing.T, got []*domain.Track, want ...domain.TrackID) {
	t.Helper()
	ids := trackIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func namedTrack(id, title string) *domain.Track {
	track := mockTrack(id)
	track.Title = title
	return track
}

func TestQueueService_List(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		s := newTestServices()

		_, err := s.queue.List(context.Background(), QueueListInput{GuildID: testGuildID})
		if !errors.Is(err, ErrQueueEmpty) {
			t.Fatalf("expected ErrQueueEmpty, got %v", err)
		}
	})

	t.Run("idle session", func(t *testing.T) {
		s := newTestServices()
		s.repo.createConnectedState()

		_, err := s.queue.List(context.Background(), QueueListInput{GuildID: testGuildID})
		if !errors.Is(err, ErrQueueEmpty) {
			t.Fatalf("expected ErrQueueEmpty, got %v", err)
		}
	})

	t.Run("lists current and pending tracks", func(t *testing.T) {
		s := newTestServices()
		state := s.repo.createConnectedState(mockTrack("a"), mockTrack("b"), mockTrack("c"))
		state.ToggleQueueLoop()
		s.player.position = 62 * time.Second

		output, err := s.queue.List(context.Background(), QueueListInput{GuildID: testGuildID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Current.ID != "a" {
			t.Errorf("expected a current, got %s", output.Current.ID)
		}
		if output.Position != 62*time.Second {
			t.Errorf("expected position 62s, got %v", output.Position)
		}
		if output.LoopMode != domain.LoopModeQueue {
			t.Errorf("expected queue loop, got %v", output.LoopMode)
		}
		assertTrackIDs(t, output.Tracks, "b", "c")
	})

	t.Run("position is capped at the duration", func(t *testing.T) {
		s := newTestServices()
		s.repo.createConnectedState(mockTrack("a"))
		s.player.position = time.Hour

		output, err := s.queue.List(context.Background(), QueueListInput{GuildID: testGuildID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Position != 3*time.Minute {
			t.Errorf("expected position capped at 3m, got %v", output.Position)
		}
	})
}

func TestQueueService_RemoveOrBump(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		bump       bool
		userID     snowflake.ID
		wantErr    error
		wantTrack  domain.TrackID
		wantAction RemoveAction
		wantQueue  []domain.TrackID
		wantStops  int
	}{
		{
			name:       "remove from queue",
			query:      "foo",
			wantTrack:  "foo",
			wantAction: RemoveActionRemoved,
			wantQueue:  []domain.TrackID{"x", "y"},
		},
		{
			name:       "bump to head",
			query:      "foo",
			bump:       true,
			wantTrack:  "foo",
			wantAction: RemoveActionMoved,
			wantQueue:  []domain.TrackID{"foo", "x", "y"},
		},
		{
			name:       "case insensitive",
			query:      "FOOTRACK",
			wantTrack:  "foo",
			wantAction: RemoveActionRemoved,
			wantQueue:  []domain.TrackID{"x", "y"},
		},
		{
			name:       "current track is skipped",
			query:      "playing",
			wantTrack:  "current",
			wantAction: RemoveActionSkipped,
			wantQueue:  []domain.TrackID{"x", "foo", "y"},
			wantStops:  1,
		},
		{
			name:      "bumping the current track",
			query:     "playing",
			bump:      true,
			wantErr:   ErrAlreadyPlaying,
			wantQueue: []domain.TrackID{"x", "foo", "y"},
		},
		{
			name:       "current track is checked first",
			query:      "track",
			wantTrack:  "current",
			wantAction: RemoveActionSkipped,
			wantQueue:  []domain.TrackID{"x", "foo", "y"},
			wantStops:  1,
		},
		{
			name:      "not found",
			query:     "nothing",
			wantErr:   ErrTrackNotFound,
			wantQueue: []domain.TrackID{"x", "foo", "y"},
		},
		{
			name:      "blank query",
			query:     "   ",
			wantErr:   ErrTrackNotFound,
			wantQueue: []domain.TrackID{"x", "foo", "y"},
		},
		{
			name:      "user in another channel",
			query:     "foo",
			userID:    testStrangerID,
			wantErr:   ErrNotInSameChannel,
			wantQueue: []domain.TrackID{"x", "foo", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServices()
			state := s.repo.createConnectedState(
				namedTrack("current", "Now Playing Track"),
				namedTrack("x", "Song X"),
				namedTrack("foo", "FooTrack"),
				namedTrack("y", "Song Y"),
			)

			userID := tt.userID
			if userID == 0 {
				userID = testUserID
			}

			output, err := s.queue.RemoveOrBump(context.Background(), RemoveOrBumpInput{
				GuildID: testGuildID,
				UserID:  userID,
				Query:   tt.query,
				Bump:    tt.bump,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if output.Track.ID != tt.wantTrack {
					t.Errorf("expected track %s, got %s", tt.wantTrack, output.Track.ID)
				}
				if output.Action != tt.wantAction {
					t.Errorf("expected action %v, got %v", tt.wantAction, output.Action)
				}
			}

			assertTrackIDs(t, state.Queue(), tt.wantQueue...)
			if s.player.stops != tt.wantStops {
				t.Errorf("expected %d stop calls, got %d", tt.wantStops, s.player.stops)
			}
		})
	}
}

func TestQueueService_RemoveOrBump_EmptySession(t *testing.T) {
	s := newTestServices()
	input := RemoveOrBumpInput{GuildID: testGuildID, UserID: testUserID, Query: "foo"}

	if _, err := s.queue.RemoveOrBump(context.Background(), input); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty without session, got %v", err)
	}

	s.repo.createConnectedState()
	if _, err := s.queue.RemoveOrBump(context.Background(), input); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty when idle, got %v", err)
	}
}
