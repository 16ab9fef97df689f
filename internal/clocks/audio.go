package clocks

import (
	"math"

	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// Envelope is an envelope follower over an externally supplied audio level.
// The raw input arrives over the control fabric (the system performs no
// audio capture of its own); the follower applies gain and asymmetric
// attack/release smoothing.
type Envelope struct {
	input number.Unipolar
	value float64

	gain    float64
	attack  number.Unipolar
	release number.Unipolar

	controls *osc.ControlMap[osc.ScopedEmitter]
}

// Smoothing time-constant endpoints in seconds.
const (
	minEnvelopeTau = 0.002
	maxEnvelopeTau = 0.5
)

func (a *Envelope) ensureControls() {
	if a.controls != nil {
		return
	}
	if a.gain == 0 {
		a.gain = 1
	}
	a.controls = osc.NewControlMap[osc.ScopedEmitter]()
	a.controls.AddUnipolar("EnvelopeInput", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.input = v
	})
	a.controls.AddUnipolar("EnvelopeGain", func(v number.Unipolar, e osc.ScopedEmitter) {
		// Up to 4x gain, unity at 0.25.
		a.gain = v.Float() * 4
	})
	a.controls.AddUnipolar("EnvelopeAttack", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.attack = v
	})
	a.controls.AddUnipolar("EnvelopeRelease", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.release = v
	})
}

// Control handles a message addressed to the audio group.
func (a *Envelope) Control(msg *osc.ControlMessage, e osc.ScopedEmitter) (bool, error) {
	a.ensureControls()
	return a.controls.Handle(msg, e)
}

// SetInput feeds a new raw level, bypassing the control fabric. Used by the
// remote feed.
func (a *Envelope) SetInput(v number.Unipolar) { a.input = v }

// Update advances the follower by dt seconds.
func (a *Envelope) Update(dt float64) {
	if a.controls == nil {
		a.ensureControls()
	}
	target := a.input.Float() * a.gain
	if target > 1 {
		target = 1
	}
	tau := envelopeTau(a.release)
	if target > a.value {
		tau = envelopeTau(a.attack)
	}
	coef := math.Exp(-dt / tau)
	a.value = target + (a.value-target)*coef
}

// Value returns the current envelope level.
func (a *Envelope) Value() number.Unipolar {
	return number.UnipolarFromFloat(a.value)
}

// EmitState sends the follower's control state.
func (a *Envelope) EmitState(e osc.ScopedEmitter) {
	a.ensureControls()
	e.EmitFloat("EnvelopeGain", a.gain/4)
	e.EmitFloat("EnvelopeAttack", a.attack.Float())
	e.EmitFloat("EnvelopeRelease", a.release.Float())
}

func envelopeTau(v number.Unipolar) float64 {
	return minEnvelopeTau + v.Float()*(maxEnvelopeTau-minEnvelopeTau)
}
