package player

import "time"

// An Engine loads audio files and starts playing them.
// Every successful Load hands back a Sound that is already playing.
type Engine interface {
	Load(path string, volume float64) (Sound, error)
}

// A Sound is the handle to a loaded, playing (or paused) track.
type Sound interface {
	Pause() error
	Resume() error
	Stop() error
	SetVolume(volume float64) error
	SeekTo(position time.Duration) error
	Position() time.Duration
	Duration() time.Duration

	// Done is closed once the sound stops producing audio, either because
	// it reached the end or because Stop was called.
	Done() <-chan struct{}
}
