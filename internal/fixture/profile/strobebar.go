package profile

import (
	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

func init() {
	fixture.Register("strobe_bar", func(opts fixture.Options) (fixture.Profile, error) {
		cells := defaultStrobeBarCells
		if v, ok := opts.Float("cells"); ok {
			if v < 1 || v > 64 {
				return fixture.Profile{}, fixture.RejectedOptionError{
					FixtureType: "strobe_bar",
					Option:      "cells",
					Err:         errors.Errorf("cell count %v out of range [1, 64]", v),
				}
			}
			cells = int(v)
		}
		bar := NewStrobeBar(cells)
		return fixture.Profile{Fixture: bar, ChannelCount: 2 + cells}, nil
	})
}

const defaultStrobeBarCells = 10

// Cell flash duration in ticks.
const strobeBarFlashTicks = 2

// StrobeBar is a multi-cell strobe bar running a chase: each master flash
// lights the next cell. It keeps its own per-cell flash state and consumes
// the distributor's flash signal in update rather than subscribing to the
// level override.
type StrobeBar struct {
	level number.Unipolar
	// remaining flash ticks per cell
	cells    []int
	next     int
	controls *ControlMap
}

// NewStrobeBar creates a bar with the given cell count.
func NewStrobeBar(cells int) *StrobeBar {
	s := &StrobeBar{cells: make([]int, cells)}
	s.controls = NewControlMap()
	s.controls.AddUnipolar("Level", func(v number.Unipolar, e fixture.StateEmitter) {
		s.setLevel(v, e)
	})
	return s
}

func (s *StrobeBar) setLevel(v number.Unipolar, e fixture.StateEmitter) {
	s.level = v
	e.Osc.EmitFloat("Level", v.Float())
	e.EmitChannelLevel(v)
}

func (s *StrobeBar) Update(ctx fixture.UpdateContext) {
	for i, remaining := range s.cells {
		if remaining > 0 {
			s.cells[i] = remaining - 1
		}
	}
	if ctx.Strobe.FlashNow {
		s.cells[s.next] = strobeBarFlashTicks
		s.next = (s.next + 1) % len(s.cells)
	}
}

func (s *StrobeBar) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return s.controls.Handle(msg, e)
}

func (s *StrobeBar) ControlFromChannel(msg fixture.ChannelControl, e fixture.StateEmitter) bool {
	if lv, ok := msg.(fixture.ChannelLevel); ok {
		s.setLevel(lv.Value, e)
		return true
	}
	return false
}

func (s *StrobeBar) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Level", s.level.Float())
	e.EmitChannelLevel(s.level)
}

func (s *StrobeBar) StrobeResponse() fixture.StrobeResponse {
	return fixture.StrobeShort
}

func (s *StrobeBar) Render(ctx fixture.RenderContext, buf []byte) {
	buf[0] = number.UnitToByte(s.level)
	// Manual cell control mode.
	buf[1] = 0
	intensity := number.UnitToByte(ctx.Strobe.Intensity)
	cells := buf[2:]
	for i := range cells {
		idx := i
		if ctx.Mirror {
			idx = len(cells) - 1 - i
		}
		if idx < len(s.cells) && s.cells[idx] > 0 {
			cells[i] = intensity
		} else {
			cells[i] = 0
		}
	}
}
