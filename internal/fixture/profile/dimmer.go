package profile

import (
	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

func init() {
	fixture.Register("dimmer", func(opts fixture.Options) (fixture.Profile, error) {
		return fixture.Profile{Fixture: NewDimmer(), ChannelCount: 1}, nil
	})
}

// Dimmer animation targets.
const (
	dimmerTargetLevel = iota
)

var dimmerTargets = []string{"Level"}

// Dimmer is a single-channel dimmable fixture.
type Dimmer struct {
	level    number.Unipolar
	controls *ControlMap
}

// NewDimmer creates a dimmer at zero.
func NewDimmer() *Dimmer {
	d := &Dimmer{}
	d.controls = NewControlMap()
	d.controls.AddUnipolar("Level", func(v number.Unipolar, e fixture.StateEmitter) {
		d.setLevel(v, e)
	})
	return d
}

func (d *Dimmer) setLevel(v number.Unipolar, e fixture.StateEmitter) {
	d.level = v
	e.Osc.EmitFloat("Level", v.Float())
	e.EmitChannelLevel(v)
}

func (d *Dimmer) Update(ctx fixture.UpdateContext) {}

func (d *Dimmer) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return d.controls.Handle(msg, e)
}

func (d *Dimmer) ControlFromChannel(msg fixture.ChannelControl, e fixture.StateEmitter) bool {
	if lv, ok := msg.(fixture.ChannelLevel); ok {
		d.setLevel(lv.Value, e)
		return true
	}
	return false
}

func (d *Dimmer) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Level", d.level.Float())
	e.EmitChannelLevel(d.level)
}

func (d *Dimmer) StrobeResponse() fixture.StrobeResponse {
	return fixture.StrobeShort
}

func (d *Dimmer) AnimationTargets() []string {
	return dimmerTargets
}

func (d *Dimmer) RenderWithAnimations(ctx fixture.RenderContext, anims []animation.TargetedValue, buf []byte) {
	level := d.level.Float()
	for _, a := range anims {
		if a.Target == dimmerTargetLevel {
			level += a.Value
		}
	}
	out := ctx.Strobe.Level(fixture.StrobeShort, number.UnipolarFromFloat(level))
	buf[0] = number.UnitToByte(out)
}
