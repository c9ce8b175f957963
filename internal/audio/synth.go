package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

type waveType int

const (
	waveSaw waveType = iota
	waveNoise
)

// oscillator generates a finite raw wave.
type oscillator struct {
	freq     float64
	phase    float64
	position int
	duration int
	wave     waveType
	rate     beep.SampleRate
	rnd      *rand.Rand
}

func newOscillator(freq float64, duration time.Duration, wave waveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rnd:      rand.New(rand.NewSource(int64(freq*1000) + int64(wave))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case waveSaw:
			val = 2.0 * (o.phase - 0.5)
		case waveNoise:
			val = o.rnd.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay shapes a stream with a linear attack and exponential decay.
type decay struct {
	streamer beep.Streamer
	position int
	attack   int
	total    int
	rate     float64
}

func newDecay(s beep.Streamer, duration, attack time.Duration, sr beep.SampleRate) beep.Streamer {
	total := sr.N(duration)
	return &decay{
		streamer: s,
		attack:   sr.N(attack),
		total:    total,
		// Reaches ~1% of the peak at the end of the sound.
		rate: math.Log(100) / float64(maxInt(total, 1)),
	}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	if d.position >= d.total {
		return 0, false
	}
	if remaining := d.total - d.position; len(samples) > remaining {
		samples = samples[:remaining]
	}
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := math.Exp(-d.rate * float64(d.position))
		if d.position < d.attack {
			vol *= float64(d.position) / float64(d.attack)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

func sine(sr beep.SampleRate, freq float64, duration time.Duration) beep.Streamer {
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		// Frequencies at or above Nyquist are rejected; fall back to silence.
		return beep.Silence(sr.N(duration))
	}
	return beep.Take(sr.N(duration), tone)
}

func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Synthesize returns the built-in rendition of a sound.
func Synthesize(sound Sound, sr beep.SampleRate) beep.Streamer {
	switch sound {
	case SoundPunch:
		// Low thump under a short noise burst.
		const d = 220 * time.Millisecond
		body := newDecay(sine(sr, 85, d), d, 4*time.Millisecond, sr)
		crack := newDecay(newOscillator(0, 60*time.Millisecond, waveNoise, sr), 60*time.Millisecond, time.Millisecond, sr)
		return beep.Take(sr.N(d), beep.Mix(newVolume(body, 0.9), newVolume(crack, 0.5)))
	case SoundParry:
		// Metallic ping: fundamental plus a fifth above.
		const d = 260 * time.Millisecond
		fund := newDecay(sine(sr, 1320, d), d, 2*time.Millisecond, sr)
		over := newDecay(sine(sr, 1980, d), d/2, 2*time.Millisecond, sr)
		return beep.Take(sr.N(d), beep.Mix(newVolume(fund, 0.6), newVolume(over, 0.3)))
	case SoundHit:
		const d = 320 * time.Millisecond
		buzz := newDecay(newOscillator(70, d, waveSaw, sr), d, 5*time.Millisecond, sr)
		return newVolume(buzz, 0.7)
	default:
		return nil
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
