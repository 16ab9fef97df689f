package animation

import (
	"math"
	"strconv"
	"strings"

	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// Maximum internal animator rate in Hz at full speed fader deflection.
const maxAnimationRate = 20.0

// Maximum period multiplier selectable on the NPeriods fader.
const maxNPeriods = 16

// ClockSource selects what drives an animator's phase: its own phasor or one
// of the bank clocks.
type ClockSource int

const (
	// SourceInternal runs the animator from its own speed fader.
	SourceInternal ClockSource = iota
	// SourceClock0 and up follow the corresponding bank clock.
	SourceClock0
)

// ClockSourceLabels lists the selectable clock sources.
var ClockSourceLabels = []string{"Internal", "Clock0", "Clock1", "Clock2", "Clock3"}

// State is the plain-data configuration and phase of one animator. It is
// copyable, which is what makes the clipboard work.
type State struct {
	Waveform    Waveform
	Speed       number.Bipolar
	Size        number.Unipolar
	DutyCycle   number.Unipolar
	Smoothing   number.Unipolar
	PhaseOffset number.Phase
	NPeriods    int
	Source      ClockSource
	Phase       number.Phase
}

// DefaultState returns an animator at rest: full duty, zero size so a fresh
// animator has no visible effect until dialed in.
func DefaultState() State {
	return State{DutyCycle: 1, NPeriods: 1}
}

// Animator generates a bipolar value per instance per tick. Controls are
// bound once at construction; the state itself is swappable for clipboard
// paste.
type Animator struct {
	state    State
	controls *osc.ControlMap[osc.ScopedEmitter]
}

// New creates an animator with default state and bound controls.
func New() *Animator {
	a := &Animator{state: DefaultState()}
	a.controls = osc.NewControlMap[osc.ScopedEmitter]()
	a.controls.AddSelector("Waveform", WaveformLabels, func(idx int, e osc.ScopedEmitter) {
		a.state.Waveform = Waveform(idx)
		osc.EmitSelector(e, "Waveform", WaveformLabels, idx)
	})
	a.controls.AddBipolar("Speed", func(v number.Bipolar, e osc.ScopedEmitter) {
		a.state.Speed = number.BipolarFaderWithDetent(v)
	})
	a.controls.AddUnipolar("Size", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.state.Size = v
	})
	a.controls.AddUnipolar("DutyCycle", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.state.DutyCycle = v
	})
	a.controls.AddUnipolar("Smoothing", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.state.Smoothing = v
	})
	a.controls.AddPhase("PhaseOffset", func(v number.Phase, e osc.ScopedEmitter) {
		a.state.PhaseOffset = v
	})
	a.controls.AddUnipolar("NPeriods", func(v number.Unipolar, e osc.ScopedEmitter) {
		a.state.NPeriods = 1 + int(math.Round(v.Float()*float64(maxNPeriods-1)))
	})
	a.controls.AddSelector("ClockSource", ClockSourceLabels, func(idx int, e osc.ScopedEmitter) {
		a.state.Source = ClockSource(idx)
		osc.EmitSelector(e, "ClockSource", ClockSourceLabels, idx)
	})
	return a
}

// State returns a copy of the animator's state for the clipboard.
func (a *Animator) State() State { return a.state }

// SetState overwrites the animator's state, as on clipboard paste.
func (a *Animator) SetState(s State) { a.state = s }

// Reset returns the animator to defaults.
func (a *Animator) Reset() { a.state = DefaultState() }

// Control handles an animator-scoped control message. The control key may
// carry a trailing sub-address for selectors.
func (a *Animator) Control(msg *osc.ControlMessage, e osc.ScopedEmitter) (bool, error) {
	return a.controls.Handle(msg, e)
}

// EmitState sends every control's current value.
func (a *Animator) EmitState(e osc.ScopedEmitter) {
	osc.EmitSelector(e, "Waveform", WaveformLabels, int(a.state.Waveform))
	e.EmitFloat("Speed", a.state.Speed.Float())
	e.EmitFloat("Size", a.state.Size.Float())
	e.EmitFloat("DutyCycle", a.state.DutyCycle.Float())
	e.EmitFloat("Smoothing", a.state.Smoothing.Float())
	e.EmitFloat("PhaseOffset", a.state.PhaseOffset.Float())
	e.EmitFloat("NPeriods", float64(a.state.NPeriods-1)/float64(maxNPeriods-1))
	osc.EmitSelector(e, "ClockSource", ClockSourceLabels, int(a.state.Source))
}

// Update advances the internal phasor by dt seconds. Clock-driven animators
// track their source in Value instead.
func (a *Animator) Update(dt float64) {
	if a.state.Source != SourceInternal {
		return
	}
	// Quadratic in the throw magnitude for fine control near zero.
	mag := a.state.Speed.Abs().Float()
	rate := math.Copysign(mag*mag*maxAnimationRate, a.state.Speed.Float())
	a.state.Phase = number.PhaseFromFloat(a.state.Phase.Float() + rate*dt)
}

// Value computes the animator's output for one fixture instance. The
// per-instance phase offset spreads the waveform spatially across the group.
func (a *Animator) Value(phaseOffset number.Phase, instance int, snap *clocks.Snapshot) float64 {
	if a.state.Size.Float() == 0 {
		return 0
	}
	base := a.state.Phase.Float()
	if a.state.Source != SourceInternal {
		base = snap.Clock(int(a.state.Source - SourceClock0)).Phase.Float()
	}
	phase := base*float64(a.state.NPeriods) +
		phaseOffset.Float()*float64(a.state.NPeriods) +
		a.state.PhaseOffset.Float()
	return a.state.Waveform.Eval(phase, a.state.Smoothing.Float(), a.state.DutyCycle.Float()) *
		a.state.Size.Float()
}

// TargetedValues computes the per-instance value array for a set of
// animators with their targets.
func TargetedValues(anims []*Targeted, phaseOffset number.Phase, instance int, snap *clocks.Snapshot) []TargetedValue {
	out := make([]TargetedValue, len(anims))
	for i, ta := range anims {
		out[i] = TargetedValue{
			Value:  ta.Animator.Value(phaseOffset, instance, snap),
			Target: ta.Target,
		}
	}
	return out
}

// Targeted pairs an animator with the index of the model parameter it
// drives.
type Targeted struct {
	Animator *Animator
	Target   int
}

// TargetedValue is one computed animation value plus its target index.
type TargetedValue struct {
	Value  float64
	Target int
}

// ParseIndex extracts a trailing integer index from a control payload such
// as /Animation/Select/2, validated against the given bound.
func ParseIndex(msg *osc.ControlMessage, bound int) (int, error) {
	payload := strings.TrimPrefix(msg.AddrPayload(), "/")
	i, err := strconv.Atoi(payload)
	if err != nil {
		return 0, msg.Err("bad index %q", payload)
	}
	if i < 0 || i >= bound {
		return 0, msg.Err("index %d out of range [0, %d)", i, bound)
	}
	return i, nil
}
