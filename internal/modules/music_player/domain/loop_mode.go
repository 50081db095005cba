package domain

// LoopMode represents the loop mode for queue playback.
type LoopMode int

const (
	LoopModeOff   LoopMode = iota // Default: no looping
	LoopModeTrack                 // Replay the track the loop was armed on
	LoopModeQueue                 // Requeue each finished track at the tail
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "off"
	}
}
