// Package audio plays the punch, parry, and hit sounds.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// Sound names a sound effect.
type Sound string

const (
	SoundPunch Sound = "punch"
	SoundParry Sound = "parry"
	SoundHit   Sound = "hit"
)

// Sounds lists every sound effect.
var Sounds = []Sound{SoundPunch, SoundParry, SoundHit}

const defaultSampleRate = beep.SampleRate(44100)

// ErrDisabled is returned by Play when no audio device could be opened.
var ErrDisabled = errors.New("audio disabled")

// Config holds playback settings.
type Config struct {
	Muted  bool
	Volume float64
	// SoundDir optionally holds punch.wav, parry.wav and hit.wav overrides.
	SoundDir string
}

// Player renders sounds once and plays them through the speaker.
// A muted player never touches the audio device.
type Player struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	mixer       *beep.Mixer
	buffers     map[Sound]*beep.Buffer
	initialized bool
}

// NewPlayer creates a player. Call Init before Play.
func NewPlayer(cfg Config) *Player {
	return &Player{
		cfg:     cfg,
		rate:    defaultSampleRate,
		mixer:   &beep.Mixer{},
		buffers: map[Sound]*beep.Buffer{},
	}
}

// Init renders all sounds and opens the speaker.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || p.cfg.Muted {
		return nil
	}
	buffers, err := Render(p.cfg, p.rate)
	if err != nil {
		return err
	}
	if err := speaker.Init(p.rate, p.rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	p.buffers = buffers
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play starts a sound without waiting for it to finish.
func (p *Player) Play(sound Sound) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.Muted {
		return nil
	}
	if !p.initialized {
		return ErrDisabled
	}
	buf, ok := p.buffers[sound]
	if !ok {
		return fmt.Errorf("unknown sound %q", sound)
	}
	speaker.Lock()
	p.mixer.Add(buf.Streamer(0, buf.Len()))
	speaker.Unlock()
	return nil
}

// Close stops playback and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Render builds a buffer per sound, preferring WAV overrides from cfg.SoundDir.
func Render(cfg Config, rate beep.SampleRate) (map[Sound]*beep.Buffer, error) {
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	out := make(map[Sound]*beep.Buffer, len(Sounds))
	for _, sound := range Sounds {
		var src beep.Streamer
		var closer func()
		if cfg.SoundDir != "" {
			s, c, err := loadWAV(filepath.Join(cfg.SoundDir, string(sound)+".wav"), rate)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			src, closer = s, c
		}
		if src == nil {
			src = Synthesize(sound, rate)
		}
		buf := beep.NewBuffer(format)
		buf.Append(newVolume(src, cfg.Volume))
		if closer != nil {
			closer()
		}
		out[sound] = buf
	}
	return out, nil
}

func loadWAV(path string, rate beep.SampleRate) (beep.Streamer, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	closer := func() {
		if cerr := streamer.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}
	if format.SampleRate != rate {
		return beep.Resample(4, format.SampleRate, rate, streamer), closer, nil
	}
	return streamer, closer, nil
}
