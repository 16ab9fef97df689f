package profile

import (
	"testing"

	"github.com/scgolang/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	oscctl "github.com/generalelectrix/showrunner/internal/osc"
)

type nullEmitter struct{}

func (nullEmitter) EmitOsc(oscctl.Talkback, osc.Message) {}

func emitter(entity string) fixture.StateEmitter {
	return fixture.StateEmitter{Osc: oscctl.ScopedEmitter{Entity: entity, Out: nullEmitter{}}}
}

func msg(t *testing.T, addr string, arg osc.Argument) *oscctl.ControlMessage {
	t.Helper()
	m, err := oscctl.ParseControlMessage(
		osc.Message{Address: addr, Arguments: osc.Arguments{arg}},
		oscctl.ClientID("127.0.0.1:9000"),
	)
	require.NoError(t, err)
	return m
}

func TestHsvGreenAtZero(t *testing.T) {
	r, g, b := HsvToRgb(0, 1, 1)
	assert.InDelta(t, 0, r, 1e-9)
	assert.InDelta(t, 1, g, 1e-9)
	assert.InDelta(t, 0, b, 1e-9)

	// The wheel proceeds green, blue, red.
	r, g, b = HsvToRgb(number.Phase(1.0/3.0), 1, 1)
	assert.InDelta(t, 0, r, 1e-9)
	assert.InDelta(t, 0, g, 1e-9)
	assert.InDelta(t, 1, b, 1e-9)

	r, g, b = HsvToRgb(number.Phase(2.0/3.0), 1, 1)
	assert.InDelta(t, 1, r, 1e-9)
	assert.InDelta(t, 0, g, 1e-9)
	assert.InDelta(t, 0, b, 1e-9)

	// Zero saturation is white regardless of hue.
	r, g, b = HsvToRgb(number.Phase(0.42), 0, 1)
	assert.InDelta(t, 1, r, 1e-9)
	assert.InDelta(t, 1, g, 1e-9)
	assert.InDelta(t, 1, b, 1e-9)
}

func TestColorDefaultRendersDark(t *testing.T) {
	c := NewColor()
	buf := make([]byte, 3)
	c.RenderWithAnimations(fixture.RenderContext{}, nil, buf)
	assert.Equal(t, []byte{0, 0, 0}, buf)
}

func TestColorFullLevelRendersGreen(t *testing.T) {
	c := NewColor()
	require.True(t, c.ControlFromChannel(fixture.ChannelLevel{Value: 1}, emitter("Color")))
	buf := make([]byte, 3)
	c.RenderWithAnimations(fixture.RenderContext{}, nil, buf)
	assert.Equal(t, []byte{0, 255, 0}, buf)
}

func TestColorRenderModes(t *testing.T) {
	c := NewColor()
	handled, err := c.Control(msg(t, "/Color/Val", osc.Float(1)), emitter("Color"))
	require.NoError(t, err)
	require.True(t, handled)
	_, err = c.Control(msg(t, "/Color/Sat", osc.Float(0)), emitter("Color"))
	require.NoError(t, err)

	// Desaturated white drains fully into the white channel in rgbw.
	rgbw := colorModeRGBW
	buf := make([]byte, 4)
	c.RenderWithAnimations(fixture.RenderContext{RenderMode: &rgbw}, nil, buf)
	assert.Equal(t, []byte{0, 0, 0, 255}, buf)

	dimmerRGB := colorModeDimmerRGB
	c.RenderWithAnimations(fixture.RenderContext{RenderMode: &dimmerRGB}, nil, buf)
	assert.Equal(t, byte(255), buf[0])
}

func TestColorHueAnimation(t *testing.T) {
	c := NewColor()
	require.True(t, c.ControlFromChannel(fixture.ChannelLevel{Value: 1}, emitter("Color")))
	buf := make([]byte, 3)
	anims := []animation.TargetedValue{{Value: 1.0 / 3.0, Target: colorTargetHue}}
	c.RenderWithAnimations(fixture.RenderContext{}, anims, buf)
	assert.Equal(t, []byte{0, 0, 255}, buf)
}

func TestDimmerStrobeOverride(t *testing.T) {
	d := NewDimmer()
	require.True(t, d.ControlFromChannel(fixture.ChannelLevel{Value: 0.5}, emitter("Dimmer")))
	buf := make([]byte, 1)

	// No strobe: the fader value passes through.
	d.RenderWithAnimations(fixture.RenderContext{}, nil, buf)
	assert.Equal(t, byte(128), buf[0])

	// Strobing, inside the short flash window: master intensity.
	strobing := fixture.StrobeState{On: true, ShortFlashOn: true, Intensity: 1}
	d.RenderWithAnimations(fixture.RenderContext{Strobe: strobing}, nil, buf)
	assert.Equal(t, byte(255), buf[0])

	// Strobing, between flashes: dark.
	between := fixture.StrobeState{On: true, LongFlashOn: true, Intensity: 1}
	d.RenderWithAnimations(fixture.RenderContext{Strobe: between}, nil, buf)
	assert.Equal(t, byte(0), buf[0])
}

func TestDimmerLevelAnimation(t *testing.T) {
	d := NewDimmer()
	buf := make([]byte, 1)
	anims := []animation.TargetedValue{{Value: 0.5, Target: dimmerTargetLevel}}
	d.RenderWithAnimations(fixture.RenderContext{}, anims, buf)
	assert.Equal(t, byte(128), buf[0])

	// Animation output clamps at the unipolar bounds.
	anims[0].Value = 2
	d.RenderWithAnimations(fixture.RenderContext{}, anims, buf)
	assert.Equal(t, byte(255), buf[0])
}

func TestUvLedBrickLevelRamps(t *testing.T) {
	u := NewUvLedBrick()
	require.True(t, u.ControlFromChannel(fixture.ChannelLevel{Value: 1}, emitter("UvLedBrick")))
	buf := make([]byte, 3)

	// The output slews toward the setpoint instead of snapping.
	u.Render(fixture.RenderContext{}, buf)
	assert.Equal(t, byte(0), buf[0])

	u.Update(fixture.UpdateContext{Dt: 0.25})
	u.Render(fixture.RenderContext{}, buf)
	assert.Equal(t, byte(128), buf[0])

	for i := 0; i < 4; i++ {
		u.Update(fixture.UpdateContext{Dt: 0.25})
	}
	u.Render(fixture.RenderContext{}, buf)
	assert.Equal(t, byte(255), buf[0])
	// Manual mode stays pinned on the program channel.
	assert.Equal(t, byte(255), buf[2])
}

func TestStrobeBarChase(t *testing.T) {
	s := NewStrobeBar(4)
	strobe := fixture.StrobeState{On: true, Intensity: 1}
	buf := make([]byte, 2+4)

	flash := strobe
	flash.FlashNow = true
	s.Update(fixture.UpdateContext{Dt: 0.0253, Strobe: flash})
	s.Render(fixture.RenderContext{Strobe: strobe}, buf)
	assert.Equal(t, byte(255), buf[2])
	assert.Equal(t, byte(0), buf[3])

	// Next flash advances the chase to the second cell.
	s.Update(fixture.UpdateContext{Dt: 0.0253, Strobe: flash})
	s.Render(fixture.RenderContext{Strobe: strobe}, buf)
	assert.Equal(t, byte(255), buf[3])

	// With no further flashes every cell decays dark.
	for i := 0; i < strobeBarFlashTicks; i++ {
		s.Update(fixture.UpdateContext{Dt: 0.0253, Strobe: strobe})
	}
	s.Render(fixture.RenderContext{Strobe: strobe}, buf)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[2:])
}

func TestStrobeBarMirror(t *testing.T) {
	s := NewStrobeBar(4)
	flash := fixture.StrobeState{On: true, Intensity: 1, FlashNow: true}
	s.Update(fixture.UpdateContext{Dt: 0.0253, Strobe: flash})

	buf := make([]byte, 2+4)
	s.Render(fixture.RenderContext{Strobe: fixture.StrobeState{On: true, Intensity: 1}, Mirror: true}, buf)
	assert.Equal(t, byte(255), buf[5])
	assert.Equal(t, byte(0), buf[2])
}

func TestStrobeBarCellOption(t *testing.T) {
	_, err := fixture.PatchAll([]fixture.GroupConfig{{
		Fixture: "strobe_bar",
		Options: fixture.Options{"cells": 100},
		Patches: []fixture.PatchConfig{{Addr: 1}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cells")
}

func TestSmokeTimer(t *testing.T) {
	s := NewSmoke()
	e := emitter("Smoke")
	_, err := s.Control(msg(t, "/Smoke/TimerOn", osc.Float(1)), e)
	require.NoError(t, err)
	_, err = s.Control(msg(t, "/Smoke/TimerPeriod", osc.Float(0.5)), e)
	require.NoError(t, err)
	_, err = s.Control(msg(t, "/Smoke/TimerDuration", osc.Float(0.1)), e)
	require.NoError(t, err)

	buf := make([]byte, 1)
	// Puff window: one second at the start of each minute-long period.
	s.Render(fixture.RenderContext{}, buf)
	assert.Equal(t, byte(255), buf[0])

	for i := 0; i < 80; i++ {
		s.Update(fixture.UpdateContext{Dt: 0.0253})
	}
	s.Render(fixture.RenderContext{}, buf)
	assert.Equal(t, byte(0), buf[0])
}
