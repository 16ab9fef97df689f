package dmx

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/pkg/artnet"
)

func TestNewBuffers(t *testing.T) {
	buffers := NewBuffers(3)
	require.Len(t, buffers, 3)
	for _, buf := range buffers {
		assert.Len(t, buf, UniverseSize)
	}
}

func TestArtNetPortWrite(t *testing.T) {
	receiver, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer receiver.Close()

	port, err := NewArtNetPort(ArtNetConfig{
		BroadcastAddr: "127.0.0.1",
		Port:          receiver.LocalAddr().(*net.UDPAddr).Port,
	})
	require.NoError(t, err)
	defer port.Close()

	channels := make([]byte, UniverseSize)
	channels[0] = 0xAA
	channels[511] = 0x55
	require.NoError(t, port.Write(2, channels))

	buf := make([]byte, 1024)
	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := receiver.Read(buf)
	require.NoError(t, err)
	require.Equal(t, int(artnet.PacketSize), n)

	assert.Equal(t, artnet.ArtNetID, buf[0:8])
	assert.Equal(t, byte(1), buf[12], "first packet carries sequence 1")
	assert.Equal(t, byte(2), buf[14], "universe low byte")
	assert.Equal(t, byte(0xAA), buf[18])
	assert.Equal(t, byte(0x55), buf[18+511])
}

func TestArtNetSequenceIncrementsPerUniverse(t *testing.T) {
	receiver, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer receiver.Close()

	port, err := NewArtNetPort(ArtNetConfig{
		BroadcastAddr: "127.0.0.1",
		Port:          receiver.LocalAddr().(*net.UDPAddr).Port,
	})
	require.NoError(t, err)
	defer port.Close()

	channels := make([]byte, UniverseSize)
	require.NoError(t, port.Write(0, channels))
	require.NoError(t, port.Write(1, channels))
	require.NoError(t, port.Write(0, channels))

	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(time.Second)))
	var seqs []byte
	var universes []byte
	buf := make([]byte, 1024)
	for i := 0; i < 3; i++ {
		_, err := receiver.Read(buf)
		require.NoError(t, err)
		seqs = append(seqs, buf[12])
		universes = append(universes, buf[14])
	}
	assert.Equal(t, []byte{0, 1, 0}, universes)
	// Universes sequence independently.
	assert.Equal(t, []byte{1, 1, 2}, seqs)
}
