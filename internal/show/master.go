package show

import (
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// MasterGroup is the reserved OSC group for master strobe controls.
const MasterGroup = "Master"

// Master owns the show-wide strobe clock and its control surface bindings.
type Master struct {
	strobe   *StrobeClock
	controls *osc.ControlMap[osc.ScopedEmitter]
	state    fixture.StrobeState
}

// NewMaster creates the master control group.
func NewMaster() *Master {
	m := &Master{strobe: NewStrobeClock()}
	c := osc.NewControlMap[osc.ScopedEmitter]()
	c.AddBool("StrobeOn", func(v bool, e osc.ScopedEmitter) {
		m.strobe.SetOn(v)
		e.EmitBool("StrobeOn", v)
	})
	c.AddUnipolar("StrobeRate", func(v number.Unipolar, e osc.ScopedEmitter) {
		m.strobe.SetRate(v)
		e.EmitFloat("StrobeRate", v.Float())
	})
	c.AddUnipolar("StrobeIntensity", func(v number.Unipolar, e osc.ScopedEmitter) {
		m.strobe.SetIntensity(v)
		e.EmitFloat("StrobeIntensity", v.Float())
	})
	c.AddSelector("StrobeMultiplier", strobeMultiplierLabels, func(idx int, e osc.ScopedEmitter) {
		m.strobe.SetMultiplier(idx)
		osc.EmitSelector(e, "StrobeMultiplier", strobeMultiplierLabels, idx)
	})
	c.AddTrigger("Tap", func(e osc.ScopedEmitter) {
		m.tap(e)
	})
	c.AddTrigger("FlashNow", func(e osc.ScopedEmitter) {
		m.strobe.QueueFlash()
	})
	m.controls = c
	return m
}

func (m *Master) tap(e osc.ScopedEmitter) {
	if m.strobe.Tap() {
		// The fader moved to match the tap cadence; echo to every surface.
		e.WithTalkback(osc.TalkbackAll).EmitFloat("StrobeRate", m.strobe.Rate().Float())
	}
}

// Control routes a master-addressed control message.
func (m *Master) Control(msg *osc.ControlMessage, e osc.ScopedEmitter) (bool, error) {
	return m.controls.Handle(msg, e)
}

// HandleMidi applies a master-scoped MIDI event, echoing resulting state
// back out through the emitters.
func (m *Master) HandleMidi(ev midi.Event, e osc.ScopedEmitter, feedback func(midi.Event)) bool {
	switch v := ev.(type) {
	case midi.MasterStrobeToggle:
		m.strobe.SetOn(!m.strobe.On())
		e.EmitBool("StrobeOn", m.strobe.On())
		feedback(midi.MasterStrobeToggle{On: m.strobe.On()})
	case midi.MasterStrobeRate:
		m.strobe.SetRate(v.Value)
		e.EmitFloat("StrobeRate", v.Value.Float())
	case midi.TapSync:
		m.tap(e)
	case midi.FlashNow:
		m.strobe.QueueFlash()
	default:
		return false
	}
	return true
}

// Update advances the strobe clock one tick. The second return reports
// whether the beat indicator changed, for surface feedback.
func (m *Master) Update(dt float64) (fixture.StrobeState, bool) {
	state, indicatorChanged := m.strobe.Update(dt)
	m.state = state
	return state, indicatorChanged
}

// State returns the strobe snapshot from the most recent update.
func (m *Master) State() fixture.StrobeState { return m.state }

// Indicator reports the tap sync beat light state.
func (m *Master) Indicator() bool { return m.strobe.Indicator() }

// EmitState sends every master control's current value.
func (m *Master) EmitState(e osc.ScopedEmitter) {
	e.EmitBool("StrobeOn", m.strobe.On())
	e.EmitFloat("StrobeRate", m.strobe.Rate().Float())
	e.EmitFloat("StrobeIntensity", m.strobe.Intensity().Float())
	osc.EmitSelector(e, "StrobeMultiplier", strobeMultiplierLabels, m.strobe.MultiplierIndex())
}
