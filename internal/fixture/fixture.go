// Package fixture defines the patch model: the contracts implemented by
// fixture profiles, the fixture group that binds a model to its physical
// instances, and the patch that owns all groups and allocates their DMX
// addresses.
package fixture

import (
	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// StrobeResponse declares which flash duration a fixture subscribes to.
type StrobeResponse int

const (
	// StrobeNone opts the fixture out of master strobing entirely.
	StrobeNone StrobeResponse = iota
	// StrobeShort subscribes to the short flash window.
	StrobeShort
	// StrobeLong subscribes to the long flash window.
	StrobeLong
)

// StrobeState is the master strobe snapshot for one tick.
type StrobeState struct {
	On           bool
	FlashNow     bool
	Intensity    number.Unipolar
	ShortFlashOn bool
	LongFlashOn  bool
	Rate         number.Unipolar
}

// Level applies the strobe override to a fixture's level for the given
// response. While strobing, the level is the master intensity during the
// subscribed flash window and zero between flashes. A residual flash (such
// as a manual flash with strobe off) also overrides. Otherwise the level
// passes through.
func (s StrobeState) Level(resp StrobeResponse, level number.Unipolar) number.Unipolar {
	if resp == StrobeNone {
		return level
	}
	flashOn := s.LongFlashOn
	if resp == StrobeShort {
		flashOn = s.ShortFlashOn
	}
	if s.On {
		if flashOn {
			return s.Intensity
		}
		return 0
	}
	if flashOn {
		return s.Intensity
	}
	return level
}

// UpdateContext carries the per-tick inputs to a fixture model's update.
type UpdateContext struct {
	// Dt is the tick duration in seconds.
	Dt float64
	// Strobe is the master strobe snapshot, with FlashNow masked so it is
	// only set when the flash distributor picked this group.
	Strobe StrobeState
	// Clocks is the timing snapshot for this tick.
	Clocks *clocks.Snapshot
}

// RenderContext carries the per-instance inputs to a fixture model's render.
type RenderContext struct {
	// PhaseOffset is i/N for instance i of N.
	PhaseOffset number.Phase
	// Instance is the index of this physical instance within the group.
	Instance int
	// Mirror inverts directional controls for symmetric rig layouts.
	Mirror bool
	// RenderMode selects the output layout, nil for the model default.
	RenderMode *int
	// Strobe is the master strobe snapshot.
	Strobe StrobeState
}

// Fixture is the capability set shared by every fixture model.
type Fixture interface {
	// Update advances internal state once per tick.
	Update(ctx UpdateContext)
	// Control handles a group-scoped control message, reporting whether
	// the model claimed it.
	Control(msg *osc.ControlMessage, e StateEmitter) (bool, error)
	// EmitState sends every control's current value.
	EmitState(e StateEmitter)
}

// NonAnimated is a fixture model rendered directly.
type NonAnimated interface {
	Fixture
	Render(ctx RenderContext, buf []byte)
}

// Animated is a fixture model that accepts targeted animation values.
type Animated interface {
	Fixture
	// AnimationTargets lists the animatable parameters. Target indexes
	// are positions in this slice; they are derived at startup and never
	// persisted.
	AnimationTargets() []string
	RenderWithAnimations(ctx RenderContext, anims []animation.TargetedValue, buf []byte)
}

// ChannelControl is a channel-scoped control message forwarded to the group
// currently bound to a logical channel.
type ChannelControl interface {
	isChannelControl()
}

// ChannelLevel sets the group's primary level.
type ChannelLevel struct {
	Value number.Unipolar
}

// ChannelKnob sets one of the channel's generic knobs.
type ChannelKnob struct {
	Index int
	Value number.Unipolar
}

func (ChannelLevel) isChannelControl() {}
func (ChannelKnob) isChannelControl()  {}

// ChannelStateEmitter echoes channel-scoped state back to the channel
// surfaces. Nil-safe wrappers are provided on StateEmitter.
type ChannelStateEmitter interface {
	EmitLevel(v number.Unipolar)
	EmitKnob(idx int, v number.Unipolar)
}

// StateEmitter is handed to fixture models for state emission: OSC messages
// scoped to the group, plus the channel echo path when the group is bound
// to a channel.
type StateEmitter struct {
	Osc     osc.ScopedEmitter
	Channel ChannelStateEmitter
}

// WithTalkback propagates a talkback mode onto the OSC path.
func (e StateEmitter) WithTalkback(t osc.Talkback) StateEmitter {
	e.Osc = e.Osc.WithTalkback(t)
	return e
}

// EmitChannelLevel echoes a level change to the channel surfaces, if bound.
func (e StateEmitter) EmitChannelLevel(v number.Unipolar) {
	if e.Channel != nil {
		e.Channel.EmitLevel(v)
	}
}

// EmitChannelKnob echoes a knob change to the channel surfaces, if bound.
func (e StateEmitter) EmitChannelKnob(idx int, v number.Unipolar) {
	if e.Channel != nil {
		e.Channel.EmitKnob(idx, v)
	}
}
