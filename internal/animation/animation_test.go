package animation

import (
	"math"
	"testing"

	"github.com/scgolang/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/number"
	oscctl "github.com/generalelectrix/showrunner/internal/osc"
)

type nullEmitter struct{}

func (nullEmitter) EmitOsc(oscctl.Talkback, osc.Message) {}

func animMsg(t *testing.T, addr string, arg osc.Argument) *oscctl.ControlMessage {
	t.Helper()
	m, err := oscctl.ParseControlMessage(
		osc.Message{Address: addr, Arguments: osc.Arguments{arg}},
		oscctl.ClientID("127.0.0.1:9000"),
	)
	require.NoError(t, err)
	return m
}

func emitter() oscctl.ScopedEmitter {
	return oscctl.ScopedEmitter{Entity: "Animation", Out: nullEmitter{}}
}

func TestWaveformShapes(t *testing.T) {
	assert.InDelta(t, 0, Sine.Eval(0, 0, 1), 1e-9)
	assert.InDelta(t, 1, Sine.Eval(0.25, 0, 1), 1e-9)
	assert.InDelta(t, -1, Sine.Eval(0.75, 0, 1), 1e-9)

	assert.InDelta(t, 0, Triangle.Eval(0, 0, 1), 1e-9)
	assert.InDelta(t, 1, Triangle.Eval(0.25, 0, 1), 1e-9)
	assert.InDelta(t, -1, Triangle.Eval(0.75, 0, 1), 1e-9)

	assert.Equal(t, 1.0, Square.Eval(0.1, 0, 1))
	assert.Equal(t, -1.0, Square.Eval(0.9, 0, 1))

	assert.InDelta(t, -1, Sawtooth.Eval(0, 0, 1), 1e-9)
	assert.InDelta(t, 0, Sawtooth.Eval(0.5, 0, 1), 1e-9)
}

func TestWaveformSmoothingIsContinuous(t *testing.T) {
	for _, w := range []Waveform{Square, Sawtooth} {
		prev := w.Eval(0, 1, 1)
		for p := 0.001; p <= 1.0; p += 0.001 {
			v := w.Eval(p, 1, 1)
			assert.Less(t, math.Abs(v-prev), 0.02, "waveform %v discontinuous at %v", w, p)
			prev = v
		}
	}
}

func TestWaveformDutyCycle(t *testing.T) {
	// Waveform is compressed into the leading half and silent after.
	assert.InDelta(t, 1, Sine.Eval(0.125, 0, 0.5), 1e-9)
	assert.Equal(t, 0.0, Sine.Eval(0.75, 0, 0.5))
	assert.Equal(t, 0.0, Sine.Eval(0.25, 0, 0))
}

func TestAnimatorDefaultIsSilent(t *testing.T) {
	a := New()
	snap := &clocks.Snapshot{}
	assert.Equal(t, 0.0, a.Value(0, 0, snap))
}

func TestAnimatorValueAndSpread(t *testing.T) {
	a := New()
	e := emitter()
	_, err := a.Control(animMsg(t, "/Animation/Size", osc.Float(1)), e)
	require.NoError(t, err)
	_, err = a.Control(animMsg(t, "/Animation/Waveform/Sine", osc.Float(1)), e)
	require.NoError(t, err)

	snap := &clocks.Snapshot{}
	// Quarter-phase instance offset shifts the sine by a quarter period.
	assert.InDelta(t, 0, a.Value(0, 0, snap), 1e-9)
	assert.InDelta(t, 1, a.Value(number.Phase(0.25), 1, snap), 1e-9)
}

func TestAnimatorClockSource(t *testing.T) {
	a := New()
	e := emitter()
	_, err := a.Control(animMsg(t, "/Animation/Size", osc.Float(1)), e)
	require.NoError(t, err)
	_, err = a.Control(animMsg(t, "/Animation/ClockSource/Clock1", osc.Float(1)), e)
	require.NoError(t, err)

	snap := &clocks.Snapshot{}
	snap.Clocks[1].Phase = number.Phase(0.25)
	assert.InDelta(t, 1, a.Value(0, 0, snap), 1e-9)

	// Internal phasor updates do not move a clock-driven animator.
	a.Update(1)
	assert.InDelta(t, 1, a.Value(0, 0, snap), 1e-9)
}

func TestClipboardRoundTrip(t *testing.T) {
	src := New()
	e := emitter()
	_, err := src.Control(animMsg(t, "/Animation/Size", osc.Float(0.7)), e)
	require.NoError(t, err)
	_, err = src.Control(animMsg(t, "/Animation/Waveform/Square", osc.Float(1)), e)
	require.NoError(t, err)

	dst := New()
	dst.SetState(src.State())
	assert.Equal(t, src.State(), dst.State())

	dst.Reset()
	assert.Equal(t, DefaultState(), dst.State())
}

func TestParseIndex(t *testing.T) {
	m := animMsg(t, "/Animation/Select/2", osc.Float(1))
	i, err := ParseIndex(m, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = ParseIndex(animMsg(t, "/Animation/Select/4", osc.Float(1)), 4)
	assert.Error(t, err)
	_, err = ParseIndex(animMsg(t, "/Animation/Select/x", osc.Float(1)), 4)
	assert.Error(t, err)
}
