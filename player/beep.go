package player

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

const RESAMPLE_QUALITY_FACTOR = 4

// Extensions the beep engine can decode, without the leading dot.
var SupportedExtensions = []string{"mp3", "ogg", "flac", "wav"}

// BeepEngine plays files through the beep speaker.
// The speaker is initialized lazily with the sample rate of the first
// file; later files with other rates are resampled to it.
type BeepEngine struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

func NewBeepEngine() *BeepEngine {
	return &BeepEngine{sampleRate: beep.SampleRate(-1)}
}

func (e *BeepEngine) Load(path string, volume float64) (Sound, error) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	rate, err := e.speakerRate(format.SampleRate)
	if err != nil {
		streamer.Close()
		return nil, err
	}

	sound := newBeepSound(streamer, format, rate, volume)
	speaker.Play(sound.stream())
	log.Println("playing", path)

	return sound, nil
}

// Close shuts the speaker down. Loaded sounds stop producing audio.
func (e *BeepEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	e.initialized = false
	e.sampleRate = beep.SampleRate(-1)
}

func (e *BeepEngine) speakerRate(rate beep.SampleRate) (beep.SampleRate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Careful not to double-initialize the speaker!
	if !e.initialized {
		if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
			return 0, fmt.Errorf("failed to initialize speaker: %w", err)
		}
		e.sampleRate = rate
		e.initialized = true
	}
	return e.sampleRate, nil
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open file: %w", err)
	}
	// Closing the streamer later will close the file itself, so don't defer close it here

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("only mp3, flac, wav and ogg formats are supported")
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode audio file: %w", err)
	}

	return streamer, format, nil
}

// beepSound is the chain decoder -> (resampler) -> volume -> ctrl, played
// as ctrl followed by a callback that marks the sound done.
type beepSound struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

func newBeepSound(
	streamer beep.StreamSeekCloser,
	format beep.Format,
	speakerRate beep.SampleRate,
	level float64,
) *beepSound {
	var source beep.Streamer = streamer

	// If the chosen file has a different sample rate than that of the
	// initialized speaker, we need to resample it to make it sound right
	if speakerRate > 0 && speakerRate != format.SampleRate {
		source = beep.Resample(
			RESAMPLE_QUALITY_FACTOR,
			format.SampleRate,
			speakerRate,
			streamer,
		)
	}

	volume := &effects.Volume{Streamer: source, Base: 2}
	applyLevel(volume, level)

	return &beepSound{
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: volume, Paused: false},
		volume:   volume,
		done:     make(chan struct{}),
	}
}

func (s *beepSound) stream() beep.Streamer {
	return beep.Seq(s.ctrl, beep.Callback(s.markDone))
}

func (s *beepSound) markDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *beepSound) Done() <-chan struct{} {
	return s.done
}

func (s *beepSound) Pause() error {
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (s *beepSound) Resume() error {
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (s *beepSound) Stop() error {
	// A nil streamer makes the ctrl report exhaustion, so the speaker
	// drops this sound on its next pass.
	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()

	var err error
	s.closeOnce.Do(func() { err = s.streamer.Close() })
	s.markDone()
	return err
}

func (s *beepSound) SetVolume(level float64) error {
	speaker.Lock()
	applyLevel(s.volume, level)
	speaker.Unlock()
	return nil
}

func (s *beepSound) SeekTo(position time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()

	n := s.format.SampleRate.N(position)
	if length := s.streamer.Len(); n > length {
		n = length
	}
	return s.streamer.Seek(n)
}

func (s *beepSound) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return s.format.SampleRate.D(s.streamer.Position())
}

func (s *beepSound) Duration() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return s.format.SampleRate.D(s.streamer.Len())
}

// applyLevel maps a linear level in [0, 1] onto the exponential volume
// effect: 1 is unity gain, 0.5 halves the amplitude, 0 is silence.
func applyLevel(volume *effects.Volume, level float64) {
	level = clampVolume(level)
	if level == 0 {
		volume.Silent = true
		volume.Volume = 0
		return
	}
	volume.Silent = false
	volume.Volume = math.Log2(level)
}
