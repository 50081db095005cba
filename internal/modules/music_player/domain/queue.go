package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Queue is a FIFO of tracks waiting to be played.
// The zero value is an empty queue ready to use.
type Queue struct {
	tracks []*Track
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if no tracks are pending.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// List returns a copy of the pending tracks in play order.
func (q *Queue) List() []*Track {
	result := make([]*Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Append adds tracks to the tail, preserving their order.
func (q *Queue) Append(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopFront removes and returns the head, or nil if the queue is empty.
func (q *Queue) PopFront() *Track {
	if q.IsEmpty() {
		return nil
	}
	head := q.tracks[0]
	q.tracks[0] = nil
	q.tracks = q.tracks[1:]
	return head
}

// RemoveAt removes the track at index and returns it.
// Returns nil if index is out of range.
func (q *Queue) RemoveAt(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	track := q.tracks[index]
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return track
}

// MoveToFront moves the track at index to the head and returns it.
// Returns nil if index is out of range.
func (q *Queue) MoveToFront(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	track := q.tracks[index]
	copy(q.tracks[1:index+1], q.tracks[:index])
	q.tracks[0] = track
	return track
}

// Clear removes all pending tracks and returns how many were removed.
func (q *Queue) Clear() int {
	n := len(q.tracks)
	q.tracks = nil
	return n
}

// IndexOfTitle returns the index of the first track, head to tail, whose
// title contains query under Unicode case folding, or -1.
func (q *Queue) IndexOfTitle(query string) int {
	for i, track := range q.tracks {
		if TitleMatches(track, query) {
			return i
		}
	}
	return -1
}

// TitleMatches reports whether the track title contains query under
// Unicode case folding.
func TitleMatches(track *Track, query string) bool {
	if track == nil {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(track.Title), fold.String(query))
}
