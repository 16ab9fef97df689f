package clocks

import (
	"testing"

	"github.com/scgolang/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/internal/number"
	oscctl "github.com/generalelectrix/showrunner/internal/osc"
)

type nullEmitter struct{}

func (nullEmitter) EmitOsc(oscctl.Talkback, osc.Message) {}

func clockEmitter() oscctl.ScopedEmitter {
	return oscctl.ScopedEmitter{Entity: "Clock", Out: nullEmitter{}}
}

func clockMsg(t *testing.T, addr string, arg osc.Argument) *oscctl.ControlMessage {
	t.Helper()
	m, err := oscctl.ParseControlMessage(
		osc.Message{Address: addr, Arguments: osc.Arguments{arg}},
		oscctl.ClientID("127.0.0.1:9000"),
	)
	require.NoError(t, err)
	return m
}

func TestPhasorWrapsAndTicks(t *testing.T) {
	p := Phasor{Rate: 1.0}
	p.Update(0.25)
	assert.False(t, p.Ticked())
	assert.InDelta(t, 0.25, p.Phase().Float(), 1e-9)

	p.Update(0.8)
	assert.True(t, p.Ticked())
	assert.InDelta(t, 0.05, p.Phase().Float(), 1e-9)

	p.Update(0.1)
	assert.False(t, p.Ticked())
}

func TestBankRateControl(t *testing.T) {
	b := NewBank(nil)
	handled, err := b.Control(clockMsg(t, "/Clock/Rate/2", osc.Float(1)), clockEmitter())
	require.NoError(t, err)
	assert.True(t, handled)

	b.Update(0.05)
	snap := b.Current()
	assert.InDelta(t, maxClockRate*0.05, snap.Clock(2).Phase.Float(), 1e-6)
	// Untouched clocks creep along at the minimum rate.
	assert.InDelta(t, minClockRate*0.05, snap.Clock(0).Phase.Float(), 1e-6)
}

func TestBankRejectsBadClockIndex(t *testing.T) {
	b := NewBank(nil)
	_, err := b.Control(clockMsg(t, "/Clock/Rate/9", osc.Float(0.5)), clockEmitter())
	assert.Error(t, err)
	_, err = b.Control(clockMsg(t, "/Clock/Rate/x", osc.Float(0.5)), clockEmitter())
	assert.Error(t, err)
}

func TestRemoteSnapshotWins(t *testing.T) {
	slot := &RemoteSlot{}
	b := NewBank(slot)
	want := Snapshot{AudioEnvelope: number.Unipolar(0.75)}
	want.Clocks[1] = ClockState{Phase: number.Phase(0.5), Rate: 2, Ticked: true}
	slot.Set(want)

	b.Update(0.025)
	assert.Equal(t, want, b.Current())

	// The slot is drained; the next update falls back to local clocks.
	b.Update(0.025)
	assert.NotEqual(t, want, b.Current())
}

func TestRemoteSlotLatestValue(t *testing.T) {
	slot := &RemoteSlot{}
	_, ok := slot.Take()
	assert.False(t, ok)

	slot.Set(Snapshot{AudioEnvelope: number.Unipolar(0.25)})
	slot.Set(Snapshot{AudioEnvelope: number.Unipolar(0.5)})
	got, ok := slot.Take()
	require.True(t, ok)
	assert.Equal(t, number.Unipolar(0.5), got.AudioEnvelope)

	_, ok = slot.Take()
	assert.False(t, ok)
}

func TestEnvelopeFollowsInput(t *testing.T) {
	var env Envelope
	env.ensureControls()
	env.SetInput(number.Unipolar(1))
	for i := 0; i < 200; i++ {
		env.Update(0.0253)
	}
	assert.Greater(t, env.Value().Float(), 0.99)

	env.SetInput(number.Unipolar(0))
	for i := 0; i < 200; i++ {
		env.Update(0.0253)
	}
	assert.Less(t, env.Value().Float(), 0.01)
}
