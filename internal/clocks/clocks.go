// Package clocks provides the timing sources consumed by animators and the
// strobe subsystem: a bank of local phase clocks with rate and retrigger
// controls, an audio envelope follower, and an optional remote snapshot feed
// that overrides the local bank when present.
package clocks

import (
	"math"
	"strconv"
	"strings"

	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// NClocks is the size of the clock bank.
const NClocks = 4

// Rate fader endpoints in Hz. The fader maps through a quadratic curve so
// the useful low end gets most of the throw.
const (
	minClockRate = 0.01
	maxClockRate = 10.0
)

// Phasor is a phase accumulator. It underlies both the bank clocks and the
// strobe clock.
type Phasor struct {
	phase  number.Phase
	Rate   float64
	ticked bool
}

// Update advances the phase by rate*dt (in seconds).
func (p *Phasor) Update(dt float64) {
	next := p.phase.Float() + p.Rate*dt
	p.ticked = next >= 1.0 || next < 0.0
	p.phase = number.PhaseFromFloat(next)
}

// Phase returns the current phase.
func (p *Phasor) Phase() number.Phase { return p.phase }

// Ticked reports whether the phase wrapped on the most recent update.
func (p *Phasor) Ticked() bool { return p.ticked }

// Reset snaps the phase back to zero without ticking.
func (p *Phasor) Reset() {
	p.phase = 0
	p.ticked = false
}

// ClockState is the snapshot of one clock handed to animators.
type ClockState struct {
	Phase  number.Phase
	Rate   float64
	Ticked bool
}

// Snapshot is the full timing state for one tick.
type Snapshot struct {
	Clocks        [NClocks]ClockState
	AudioEnvelope number.Unipolar
}

// Clock returns the state of clock i, tolerating out-of-range indexes by
// clamping so a stale control surface cannot panic the render path.
func (s *Snapshot) Clock(i int) ClockState {
	if i < 0 {
		i = 0
	}
	if i >= NClocks {
		i = NClocks - 1
	}
	return s.Clocks[i]
}

type bankClock struct {
	phasor Phasor
	// rateVal is the raw fader value, kept for state emission.
	rateVal      number.Unipolar
	audioModRate bool
	retrigger    bool
}

// Bank is the set of local clocks plus the audio envelope. When a remote
// snapshot feed is attached and fresh, it wins over the local state.
type Bank struct {
	clocks   [NClocks]bankClock
	envelope Envelope
	remote   *RemoteSlot

	current  Snapshot
	controls *osc.ControlMap[osc.ScopedEmitter]
}

// NewBank creates a clock bank. remote may be nil.
func NewBank(remote *RemoteSlot) *Bank {
	b := &Bank{remote: remote}
	b.controls = osc.NewControlMap[osc.ScopedEmitter]()
	b.controls.Add("Rate", osc.TalkbackOff, func(msg *osc.ControlMessage, e osc.ScopedEmitter) error {
		i, err := clockIndex(msg)
		if err != nil {
			return err
		}
		v, err := msg.Unipolar()
		if err != nil {
			return err
		}
		b.setRate(i, v)
		return nil
	})
	b.controls.Add("Retrigger", osc.TalkbackAll, func(msg *osc.ControlMessage, e osc.ScopedEmitter) error {
		i, err := clockIndex(msg)
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		b.clocks[i].retrigger = v
		e.EmitLabeled("Retrigger", strconv.Itoa(i), v)
		return nil
	})
	b.controls.Add("Reset", osc.TalkbackAll, func(msg *osc.ControlMessage, e osc.ScopedEmitter) error {
		i, err := clockIndex(msg)
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if v {
			b.clocks[i].phasor.Reset()
		}
		return nil
	})
	b.controls.Add("AudioMod", osc.TalkbackAll, func(msg *osc.ControlMessage, e osc.ScopedEmitter) error {
		i, err := clockIndex(msg)
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		b.clocks[i].audioModRate = v
		e.EmitLabeled("AudioMod", strconv.Itoa(i), v)
		return nil
	})
	return b
}

// Control handles a message addressed to the clock group.
func (b *Bank) Control(msg *osc.ControlMessage, e osc.ScopedEmitter) (bool, error) {
	return b.controls.Handle(msg, e)
}

// AudioControl handles a message addressed to the audio group.
func (b *Bank) AudioControl(msg *osc.ControlMessage, e osc.ScopedEmitter) (bool, error) {
	return b.envelope.Control(msg, e)
}

// Update advances all clocks by dt seconds and refreshes the current
// snapshot. If a fresh remote snapshot is available it replaces the local
// state wholesale.
func (b *Bank) Update(dt float64) {
	if b.remote != nil {
		if snap, ok := b.remote.Take(); ok {
			b.current = snap
			return
		}
	}
	b.envelope.Update(dt)
	env := b.envelope.Value()
	for i := range b.clocks {
		c := &b.clocks[i]
		rate := rateFromUnipolar(c.rateVal)
		if c.audioModRate {
			rate *= 0.5 + 1.5*env.Float()
		}
		c.phasor.Rate = rate
		if c.retrigger && env.Float() > 0.9 && b.current.AudioEnvelope.Float() <= 0.9 {
			c.phasor.Reset()
		}
		c.phasor.Update(dt)
		b.current.Clocks[i] = ClockState{
			Phase:  c.phasor.Phase(),
			Rate:   rate,
			Ticked: c.phasor.Ticked(),
		}
	}
	b.current.AudioEnvelope = env
}

// Current returns the snapshot produced by the most recent update.
func (b *Bank) Current() Snapshot { return b.current }

// SetAudioInput feeds a new raw audio level into the envelope follower.
func (b *Bank) SetAudioInput(v number.Unipolar) { b.envelope.SetInput(v) }

// EmitState sends the full clock control state.
func (b *Bank) EmitState(e osc.ScopedEmitter) {
	for i := range b.clocks {
		c := &b.clocks[i]
		e.EmitFloat("Rate/"+strconv.Itoa(i), c.rateVal.Float())
		e.EmitLabeled("Retrigger", strconv.Itoa(i), c.retrigger)
		e.EmitLabeled("AudioMod", strconv.Itoa(i), c.audioModRate)
	}
}

// EmitAudioState sends the envelope follower state. Audio controls live on
// their own control surface group, so they take a separate emitter.
func (b *Bank) EmitAudioState(e osc.ScopedEmitter) {
	b.envelope.EmitState(e)
}

func (b *Bank) setRate(i int, v number.Unipolar) {
	b.clocks[i].rateVal = v
}

// rateFromUnipolar maps the fader through a square curve for finer control
// at the low end.
func rateFromUnipolar(v number.Unipolar) float64 {
	f := v.Float()
	return minClockRate + math.Pow(f, 2)*(maxClockRate-minClockRate)
}

func clockIndex(msg *osc.ControlMessage) (int, error) {
	payload := strings.TrimPrefix(msg.AddrPayload(), "/")
	i, err := strconv.Atoi(payload)
	if err != nil {
		return 0, msg.Err("bad clock index %q", payload)
	}
	if i < 0 || i >= NClocks {
		return 0, msg.Err("clock index %d out of range", i)
	}
	return i, nil
}
