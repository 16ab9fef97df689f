package profile

import (
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

func init() {
	fixture.Register("uv_led_brick", func(opts fixture.Options) (fixture.Profile, error) {
		return fixture.Profile{Fixture: NewUvLedBrick(), ChannelCount: 3}, nil
	})
}

// Level slew rate in full-scale units per second. The brick's LED driver
// steps harshly on abrupt level changes.
const uvLedBrickRampRate = 2.0

// UvLedBrick is a UV wash brick: master level plus a hardware program
// channel that must be pinned to manual mode. The output level slews toward
// the fader setpoint rather than snapping.
type UvLedBrick struct {
	level    *number.RampingParameter
	controls *ControlMap
}

// NewUvLedBrick creates a brick at zero.
func NewUvLedBrick() *UvLedBrick {
	u := &UvLedBrick{level: number.NewRampingParameter(0, uvLedBrickRampRate)}
	u.controls = NewControlMap()
	u.controls.AddUnipolar("Level", func(v number.Unipolar, e fixture.StateEmitter) {
		u.setLevel(v, e)
	})
	return u
}

func (u *UvLedBrick) setLevel(v number.Unipolar, e fixture.StateEmitter) {
	u.level.Target = v.Float()
	e.Osc.EmitFloat("Level", v.Float())
	e.EmitChannelLevel(v)
}

func (u *UvLedBrick) Update(ctx fixture.UpdateContext) {
	u.level.Update(ctx.Dt)
}

func (u *UvLedBrick) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return u.controls.Handle(msg, e)
}

func (u *UvLedBrick) ControlFromChannel(msg fixture.ChannelControl, e fixture.StateEmitter) bool {
	if lv, ok := msg.(fixture.ChannelLevel); ok {
		u.setLevel(lv.Value, e)
		return true
	}
	return false
}

func (u *UvLedBrick) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Level", u.level.Target)
	e.EmitChannelLevel(number.UnipolarFromFloat(u.level.Target))
}

func (u *UvLedBrick) StrobeResponse() fixture.StrobeResponse {
	return fixture.StrobeLong
}

func (u *UvLedBrick) Render(ctx fixture.RenderContext, buf []byte) {
	out := ctx.Strobe.Level(fixture.StrobeLong, number.UnipolarFromFloat(u.level.Current()))
	buf[0] = number.UnitToByte(out)
	buf[1] = 0
	// Manual mode on the program channel.
	buf[2] = 255
}
