package profile

import (
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

func init() {
	fixture.Register("smoke", func(opts fixture.Options) (fixture.Profile, error) {
		return fixture.Profile{Fixture: NewSmoke(), ChannelCount: 1}, nil
	})
}

// Puff cycle endpoints in seconds.
const (
	maxSmokePeriod   = 120.0
	maxSmokeDuration = 10.0
)

// Smoke is a single-channel smoke machine with a periodic puff timer on top
// of a manual level.
type Smoke struct {
	level number.Unipolar
	// Timer configuration: puff every period seconds for duration seconds.
	timerOn  bool
	period   number.Unipolar
	duration number.Unipolar
	elapsed  float64

	controls *ControlMap
}

// NewSmoke creates a smoke machine with the timer off.
func NewSmoke() *Smoke {
	s := &Smoke{}
	s.controls = NewControlMap()
	s.controls.AddUnipolar("Level", func(v number.Unipolar, e fixture.StateEmitter) {
		s.level = v
		e.Osc.EmitFloat("Level", v.Float())
	})
	s.controls.AddBool("TimerOn", func(v bool, e fixture.StateEmitter) {
		s.timerOn = v
		s.elapsed = 0
		e.Osc.EmitBool("TimerOn", v)
	})
	s.controls.AddUnipolar("TimerPeriod", func(v number.Unipolar, e fixture.StateEmitter) {
		s.period = v
	})
	s.controls.AddUnipolar("TimerDuration", func(v number.Unipolar, e fixture.StateEmitter) {
		s.duration = v
	})
	return s
}

func (s *Smoke) Update(ctx fixture.UpdateContext) {
	if !s.timerOn {
		return
	}
	s.elapsed += ctx.Dt
	if s.elapsed >= s.periodSeconds() {
		s.elapsed = 0
	}
}

func (s *Smoke) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return s.controls.Handle(msg, e)
}

func (s *Smoke) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Level", s.level.Float())
	e.Osc.EmitBool("TimerOn", s.timerOn)
	e.Osc.EmitFloat("TimerPeriod", s.period.Float())
	e.Osc.EmitFloat("TimerDuration", s.duration.Float())
}

func (s *Smoke) Render(ctx fixture.RenderContext, buf []byte) {
	out := s.level
	if s.timerOn && s.elapsed < s.durationSeconds() {
		out = 1
	}
	buf[0] = number.UnitToByte(out)
}

func (s *Smoke) periodSeconds() float64 {
	// Never shorter than the puff itself.
	p := s.period.Float() * maxSmokePeriod
	d := s.durationSeconds()
	if p < d {
		return d
	}
	return p
}

func (s *Smoke) durationSeconds() float64 {
	return s.duration.Float() * maxSmokeDuration
}
