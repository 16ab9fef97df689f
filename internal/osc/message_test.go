package osc

import (
	"testing"

	"github.com/scgolang/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/internal/number"
)

const testClient = ClientID("127.0.0.1:9000")

func parse(t *testing.T, addr string, args ...osc.Argument) *ControlMessage {
	t.Helper()
	m, err := ParseControlMessage(osc.Message{Address: addr, Arguments: args}, testClient)
	require.NoError(t, err)
	return m
}

func TestParseControlMessageAddress(t *testing.T) {
	tests := []struct {
		addr    string
		group   string
		control string
		payload string
	}{
		{"/Color/Hue", "Color", "Hue", ""},
		{"/Dimmer/Level", "Dimmer", "Level", ""},
		{"/Animation/Waveform/Sine", "Animation", "Waveform", "/Sine"},
		{"/Channels/Knob/2/Value", "Channels", "Knob", "/2/Value"},
	}
	for _, tc := range tests {
		m := parse(t, tc.addr, osc.Float(1))
		assert.Equal(t, tc.group, m.Group(), tc.addr)
		assert.Equal(t, tc.control, m.Control(), tc.addr)
		assert.Equal(t, tc.payload, m.AddrPayload(), tc.addr)
	}
}

func TestParseControlMessageRejectsBadAddresses(t *testing.T) {
	bad := []string{"", "NoSlash/Level", "/OnlyGroup", "//Level", "/Group/"}
	for _, addr := range bad {
		_, err := ParseControlMessage(osc.Message{
			Address:   addr,
			Arguments: osc.Arguments{osc.Float(1)},
		}, testClient)
		assert.Error(t, err, "address %q", addr)
	}
}

func TestParseControlMessageRequiresOneArg(t *testing.T) {
	_, err := ParseControlMessage(osc.Message{Address: "/Color/Hue"}, testClient)
	assert.Error(t, err)

	_, err = ParseControlMessage(osc.Message{
		Address:   "/Color/Hue",
		Arguments: osc.Arguments{osc.Float(1), osc.Float(2)},
	}, testClient)
	assert.Error(t, err)
}

func TestFloatCoercion(t *testing.T) {
	v, err := parse(t, "/Color/Hue", osc.Float(0.25)).Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-7)

	v, err = parse(t, "/Color/Hue", osc.Int(1)).Float()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = parse(t, "/Color/Hue", osc.String("nope")).Float()
	assert.Error(t, err)
}

func TestBoolCoercion(t *testing.T) {
	tests := []struct {
		arg  osc.Argument
		want bool
	}{
		{osc.Bool(true), true},
		{osc.Bool(false), false},
		{osc.Int(1), true},
		{osc.Int(0), false},
		{osc.Float(0.5), true},
		{osc.Float(0), false},
	}
	for _, tc := range tests {
		v, err := parse(t, "/Dimmer/Strobe", tc.arg).Bool()
		require.NoError(t, err)
		assert.Equal(t, tc.want, v)
	}
}

func TestUnipolarClamps(t *testing.T) {
	v, err := parse(t, "/Dimmer/Level", osc.Float(1.5)).Unipolar()
	require.NoError(t, err)
	assert.Equal(t, number.Unipolar(1), v)

	v, err = parse(t, "/Dimmer/Level", osc.Float(-0.5)).Unipolar()
	require.NoError(t, err)
	assert.Equal(t, number.Unipolar(0), v)
}
