package pos

import (
	"math"
	"sync"
	"time"
)

// ToneKind selects which alert pattern to play.
type ToneKind string

const (
	ToneOrder   ToneKind = "order"
	ToneRequest ToneKind = "request"
)

// Waveforms for the note oscillator.
const (
	WaveSine     = "sine"
	WaveTriangle = "triangle"
)

type Note struct {
	FreqHz   float64
	Waveform string
	Duration time.Duration
}

// Pattern describes one alert: the note sequence plus the vibration
// cadence in milliseconds (on, off, on, ...).
type Pattern struct {
	Kind      ToneKind
	Notes     []Note
	Spacing   time.Duration
	Vibration []int
}

// PatternFor returns the alert pattern for a kind. Orders use a rising
// two-note sine chime; service requests use a four-note triangle trill so
// the two are distinguishable without looking at a screen.
func PatternFor(kind ToneKind) Pattern {
	const noteLen = 200 * time.Millisecond
	const spacing = 150 * time.Millisecond

	switch kind {
	case ToneRequest:
		return Pattern{
			Kind: ToneRequest,
			Notes: []Note{
				{FreqHz: 600, Waveform: WaveTriangle, Duration: noteLen},
				{FreqHz: 800, Waveform: WaveTriangle, Duration: noteLen},
				{FreqHz: 600, Waveform: WaveTriangle, Duration: noteLen},
				{FreqHz: 800, Waveform: WaveTriangle, Duration: noteLen},
			},
			Spacing:   spacing,
			Vibration: []int{300, 100, 300, 100, 300},
		}
	default:
		return Pattern{
			Kind: ToneOrder,
			Notes: []Note{
				{FreqHz: 800, Waveform: WaveSine, Duration: noteLen},
				{FreqHz: 1000, Waveform: WaveSine, Duration: noteLen},
			},
			Spacing:   spacing,
			Vibration: []int{200, 100, 200},
		}
	}
}

// RenderPCM synthesizes a note as 16-bit mono PCM samples. Each note
// decays exponentially from its attack level down to near silence, which
// reads as a soft chime rather than a buzzer.
func RenderPCM(n Note, sampleRate int, volume int) []int16 {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	count := int(float64(sampleRate) * n.Duration.Seconds())
	samples := make([]int16, count)

	attack := float64(volume) / 100 * 0.3
	const floor = 0.01
	for i := 0; i < count; i++ {
		t := float64(i) / float64(sampleRate)
		progress := float64(i) / float64(count)

		var osc float64
		switch n.Waveform {
		case WaveTriangle:
			phase := math.Mod(n.FreqHz*t, 1)
			osc = 4*math.Abs(phase-0.5) - 1
		default:
			osc = math.Sin(2 * math.Pi * n.FreqHz * t)
		}

		amp := attack * math.Pow(floor/math.Max(attack, floor), progress)
		samples[i] = int16(osc * amp * math.MaxInt16)
	}
	return samples
}

// Synthesizer plays a rendered pattern on whatever audio backend the
// terminal has. Implementations must tolerate being called concurrently.
type Synthesizer interface {
	Play(p Pattern, volume int)
	Vibrate(cadence []int)
}

// Emitter fans alert tones out to the synthesizer. Emission is
// fire-and-forget: a slow or broken audio backend never delays the
// caller, and playback failures are silently dropped.
type Emitter struct {
	mu        sync.Mutex
	synth     Synthesizer
	volume    int
	sound     bool
	vibration bool
}

func NewEmitter(synth Synthesizer) *Emitter {
	return &Emitter{
		synth:     synth,
		volume:    70,
		sound:     true,
		vibration: true,
	}
}

func (e *Emitter) SetVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
}

func (e *Emitter) SetSound(on bool) {
	e.mu.Lock()
	e.sound = on
	e.mu.Unlock()
}

func (e *Emitter) SetVibration(on bool) {
	e.mu.Lock()
	e.vibration = on
	e.mu.Unlock()
}

// Emit plays the pattern for kind in the background and returns
// immediately.
func (e *Emitter) Emit(kind ToneKind) {
	e.mu.Lock()
	synth := e.synth
	volume := e.volume
	sound := e.sound
	vibration := e.vibration
	e.mu.Unlock()

	if synth == nil {
		return
	}

	p := PatternFor(kind)
	go func() {
		defer func() { recover() }()
		if sound && volume > 0 {
			synth.Play(p, volume)
		}
		if vibration {
			synth.Vibrate(p.Vibration)
		}
	}()
}
