package profile

import (
	"math"

	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

func init() {
	fixture.Register("color", func(opts fixture.Options) (fixture.Profile, error) {
		return fixture.Profile{
			Fixture:      NewColor(),
			ChannelCount: 3,
			RenderModes: []fixture.RenderMode{
				{Name: "rgb", ChannelCount: 3},
				{Name: "rgbw", ChannelCount: 4},
				{Name: "hsv", ChannelCount: 3},
				{Name: "dimmer_rgb", ChannelCount: 4},
			},
		}, nil
	})
}

// Color animation targets.
const (
	colorTargetHue = iota
	colorTargetSat
	colorTargetVal
)

var colorTargets = []string{"Hue", "Sat", "Val"}

// Color render mode indexes, matching the registered mode order.
const (
	colorModeRGB = iota
	colorModeRGBW
	colorModeHSV
	colorModeDimmerRGB
)

// Color is an HSV color fixture rendered to one of several channel
// layouts. Defaults are hue 0, full saturation, zero value, so a freshly
// patched fixture is dark.
type Color struct {
	hue      number.Phase
	sat      number.Unipolar
	val      number.Unipolar
	controls *ControlMap
}

// NewColor creates a color fixture at defaults.
func NewColor() *Color {
	c := &Color{sat: 1}
	c.controls = NewControlMap()
	c.controls.AddPhase("Hue", func(v number.Phase, e fixture.StateEmitter) {
		c.hue = v
		e.Osc.EmitFloat("Hue", v.Float())
	})
	c.controls.AddUnipolar("Sat", func(v number.Unipolar, e fixture.StateEmitter) {
		c.sat = v
		e.Osc.EmitFloat("Sat", v.Float())
	})
	c.controls.AddUnipolar("Val", func(v number.Unipolar, e fixture.StateEmitter) {
		c.setVal(v, e)
	})
	return c
}

func (c *Color) setVal(v number.Unipolar, e fixture.StateEmitter) {
	c.val = v
	e.Osc.EmitFloat("Val", v.Float())
	e.EmitChannelLevel(v)
}

func (c *Color) Update(ctx fixture.UpdateContext) {}

func (c *Color) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return c.controls.Handle(msg, e)
}

func (c *Color) ControlFromChannel(msg fixture.ChannelControl, e fixture.StateEmitter) bool {
	switch m := msg.(type) {
	case fixture.ChannelLevel:
		c.setVal(m.Value, e)
		return true
	case fixture.ChannelKnob:
		switch m.Index {
		case 0:
			c.hue = number.PhaseFromFloat(m.Value.Float())
			e.Osc.EmitFloat("Hue", c.hue.Float())
			e.EmitChannelKnob(0, m.Value)
			return true
		case 1:
			c.sat = m.Value
			e.Osc.EmitFloat("Sat", c.sat.Float())
			e.EmitChannelKnob(1, m.Value)
			return true
		}
	}
	return false
}

func (c *Color) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Hue", c.hue.Float())
	e.Osc.EmitFloat("Sat", c.sat.Float())
	e.Osc.EmitFloat("Val", c.val.Float())
	e.EmitChannelLevel(c.val)
}

func (c *Color) AnimationTargets() []string {
	return colorTargets
}

func (c *Color) RenderWithAnimations(ctx fixture.RenderContext, anims []animation.TargetedValue, buf []byte) {
	hue := c.hue.Float()
	sat := c.sat.Float()
	val := c.val.Float()
	for _, a := range anims {
		switch a.Target {
		case colorTargetHue:
			hue += a.Value
		case colorTargetSat:
			sat += a.Value
		case colorTargetVal:
			val += a.Value
		}
	}
	h := number.PhaseFromFloat(hue)
	s := number.UnipolarFromFloat(sat)
	v := number.UnipolarFromFloat(val)

	mode := colorModeRGB
	if ctx.RenderMode != nil {
		mode = *ctx.RenderMode
	}
	switch mode {
	case colorModeRGBW:
		r, g, b := HsvToRgb(h, s, v)
		// Drain the common component into the white channel.
		w := math.Min(r, math.Min(g, b))
		buf[0] = unitByte(r - w)
		buf[1] = unitByte(g - w)
		buf[2] = unitByte(b - w)
		buf[3] = unitByte(w)
	case colorModeHSV:
		buf[0] = number.UnitToByte(number.Unipolar(h.Float()))
		buf[1] = number.UnitToByte(s)
		buf[2] = number.UnitToByte(v)
	case colorModeDimmerRGB:
		r, g, b := HsvToRgb(h, s, 1)
		buf[0] = number.UnitToByte(v)
		buf[1] = unitByte(r)
		buf[2] = unitByte(g)
		buf[3] = unitByte(b)
	default:
		r, g, b := HsvToRgb(h, s, v)
		buf[0] = unitByte(r)
		buf[1] = unitByte(g)
		buf[2] = unitByte(b)
	}
}

// HsvToRgb converts an HSV color to RGB components in [0, 1]. Hue zero is
// the green primary; the wheel proceeds green, blue, red.
func HsvToRgb(h number.Phase, s, v number.Unipolar) (r, g, b float64) {
	// Rotate so the standard red-at-zero wheel puts green at zero.
	hue := math.Mod(h.Float()+1.0/3.0, 1.0)
	i := int(hue * 6)
	f := hue*6 - float64(i)
	p := v.Float() * (1 - s.Float())
	q := v.Float() * (1 - f*s.Float())
	t := v.Float() * (1 - (1-f)*s.Float())
	switch i % 6 {
	case 0:
		return v.Float(), t, p
	case 1:
		return q, v.Float(), p
	case 2:
		return p, v.Float(), t
	case 3:
		return p, q, v.Float()
	case 4:
		return t, p, v.Float()
	default:
		return v.Float(), p, q
	}
}

func unitByte(v float64) byte {
	return number.UnitToByte(number.UnipolarFromFloat(v))
}
