// Package dmx writes rendered universe buffers to DMX output ports. The
// show loop owns the port handles and pushes every universe once per tick;
// ports carry no state beyond what the wire protocol needs.
package dmx

import (
	"net"
	"strconv"

	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/pkg/artnet"
)

// UniverseSize is the number of channels per DMX universe.
const UniverseSize = 512

// Port is one DMX output destination.
type Port interface {
	// Write sends one universe's channel buffer. Errors are reported but
	// non-fatal; the next tick re-attempts.
	Write(universe int, channels []byte) error
	Close() error
}

// NewBuffers allocates one zeroed channel buffer per universe.
func NewBuffers(universeCount int) [][]byte {
	buffers := make([][]byte, universeCount)
	for i := range buffers {
		buffers[i] = make([]byte, UniverseSize)
	}
	return buffers
}

// ArtNetConfig holds Art-Net output configuration.
type ArtNetConfig struct {
	BroadcastAddr string
	Port          int
}

// DefaultArtNetConfig returns the standard local-network broadcast setup.
func DefaultArtNetConfig() ArtNetConfig {
	return ArtNetConfig{
		BroadcastAddr: "255.255.255.255",
		Port:          artnet.DefaultPort,
	}
}

// ArtNetPort broadcasts universes as Art-Net DMX packets over UDP. Each
// universe keeps its own wrapping sequence number so receivers can detect
// out-of-order packets per stream.
type ArtNetPort struct {
	conn      *net.UDPConn
	addr      *net.UDPAddr
	sequences map[int]byte
}

// NewArtNetPort opens a UDP socket aimed at the configured broadcast
// address.
func NewArtNetPort(cfg ArtNetConfig) (*ArtNetPort, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.BroadcastAddr, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, errors.Wrap(err, "resolving Art-Net broadcast address")
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, errors.Wrap(err, "opening Art-Net socket")
	}
	return &ArtNetPort{
		conn:      conn,
		addr:      addr,
		sequences: make(map[int]byte),
	}, nil
}

// Write broadcasts one universe.
func (p *ArtNetPort) Write(universe int, channels []byte) error {
	seq := p.sequences[universe] + 1
	if seq == 0 {
		// The Art-Net sequence field reserves zero for "disabled".
		seq = 1
	}
	p.sequences[universe] = seq
	packet := artnet.BuildDMXPacket(universe, channels, seq)
	if _, err := p.conn.WriteToUDP(packet, p.addr); err != nil {
		return errors.Wrapf(err, "writing universe %d", universe)
	}
	return nil
}

// Close releases the socket.
func (p *ArtNetPort) Close() error {
	return p.conn.Close()
}

// OfflinePort discards frames, for running a show with no output hardware
// attached.
type OfflinePort struct{}

func (OfflinePort) Write(int, []byte) error { return nil }
func (OfflinePort) Close() error            { return nil }
