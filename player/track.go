package player

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

const DefaultVolume = 0.5

var (
	ErrNoTrack          = errors.New("no track loaded")
	ErrIndexOutOfRange  = errors.New("track index out of range")
	errNilEngine        = errors.New("nil audio engine")
	errEngineReturnsNil = errors.New("audio engine returned no sound")
)

// State is a point-in-time copy of a CurrentTrack.
type State struct {
	// Index of the loaded track in the music list, -1 when nothing was
	// ever loaded.
	Index    int
	Playing  bool
	Loaded   bool
	Volume   float64
	Duration time.Duration
}

// CurrentTrack holds the single active track and mediates every playback
// transition on it. Transitions that need a handle do nothing when no
// sound is loaded.
type CurrentTrack struct {
	mu        sync.Mutex
	index     int
	isPlaying bool
	volume    float64
	duration  time.Duration
	handle    Sound

	finished chan int
}

func NewCurrentTrack() *CurrentTrack {
	return NewCurrentTrackAt(DefaultVolume)
}

// NewCurrentTrackAt starts with volume instead of DefaultVolume.
func NewCurrentTrackAt(volume float64) *CurrentTrack {
	return &CurrentTrack{
		index:    -1,
		volume:   clampVolume(volume),
		finished: make(chan int, 1),
	}
}

// Finished receives the list index of a track that played to its end.
// Stopped or replaced tracks are not reported.
func (t *CurrentTrack) Finished() <-chan int {
	return t.finished
}

// Play stops whatever is loaded and starts paths[index] at the current
// volume.
func (t *CurrentTrack) Play(engine Engine, paths []string, index int) error {
	if engine == nil {
		return errNilEngine
	}
	if index < 0 || index >= len(paths) {
		return fmt.Errorf("play %d of %d: %w", index, len(paths), ErrIndexOutOfRange)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle != nil {
		old := t.handle
		t.handle = nil
		t.isPlaying = false
		if err := old.Stop(); err != nil {
			log.Println("failed to stop previous track:", err)
		}
	}

	sound, err := engine.Load(paths[index], t.volume)
	if err != nil {
		return fmt.Errorf("load %s: %w", paths[index], err)
	}
	if sound == nil {
		return errEngineReturnsNil
	}

	t.handle = sound
	t.isPlaying = true
	t.index = index
	t.duration = sound.Duration()

	go t.watch(sound, index)
	return nil
}

func (t *CurrentTrack) watch(sound Sound, index int) {
	<-sound.Done()

	t.mu.Lock()
	if t.handle != sound {
		t.mu.Unlock()
		return
	}
	t.handle = nil
	t.isPlaying = false
	t.duration = 0
	t.mu.Unlock()

	// release the decoder and its file
	if err := sound.Stop(); err != nil {
		log.Println("failed to release finished track:", err)
	}

	select {
	case t.finished <- index:
	default:
	}
}

// Toggle pauses a playing track and resumes a paused one.
func (t *CurrentTrack) Toggle() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == nil {
		return ErrNoTrack
	}

	if t.isPlaying {
		if err := t.handle.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		t.isPlaying = false
		return nil
	}

	if err := t.handle.Resume(); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	t.isPlaying = true
	return nil
}

// SetVolume changes the level of the loaded sound. The stored volume is
// only updated when a sound accepted it.
func (t *CurrentTrack) SetVolume(volume float64) error {
	volume = clampVolume(volume)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == nil {
		return ErrNoTrack
	}
	if err := t.handle.SetVolume(volume); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	t.volume = volume
	return nil
}

// Seek moves the loaded sound to position and returns the position it
// actually landed on.
func (t *CurrentTrack) Seek(position time.Duration) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == nil {
		return 0, ErrNoTrack
	}

	if position < 0 {
		position = 0
	}
	if t.duration > 0 && position > t.duration {
		position = t.duration
	}

	if err := t.handle.SeekTo(position); err != nil {
		return 0, fmt.Errorf("seek to %s: %w", position, err)
	}
	return position, nil
}

// Position reports how far into the loaded sound playback is, or 0.
func (t *CurrentTrack) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == nil {
		return 0
	}
	return t.handle.Position()
}

// Stop releases the loaded sound. The index is kept so the list can still
// point at the last track.
func (t *CurrentTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == nil {
		return ErrNoTrack
	}
	handle := t.handle
	t.handle = nil
	t.isPlaying = false
	t.duration = 0
	return handle.Stop()
}

func (t *CurrentTrack) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return State{
		Index:    t.index,
		Playing:  t.isPlaying,
		Loaded:   t.handle != nil,
		Volume:   t.volume,
		Duration: t.duration,
	}
}

func clampVolume(volume float64) float64 {
	if math.IsNaN(volume) || volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
