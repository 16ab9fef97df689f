package artnet

import (
	"encoding/binary"
	"testing"
)

func TestBuildDMXPacket(t *testing.T) {
	tests := []struct {
		name         string
		universe     int
		channels     []byte
		wantUniverse uint16
	}{
		{name: "universe 0", universe: 0, channels: make([]byte, 512), wantUniverse: 0},
		{name: "universe 3", universe: 3, channels: make([]byte, 512), wantUniverse: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := BuildDMXPacket(tt.universe, tt.channels, 123)

			if len(packet) != int(PacketSize) {
				t.Errorf("packet size = %d, want %d", len(packet), PacketSize)
			}
			if gotID := string(packet[0:8]); gotID != "Art-Net\x00" {
				t.Errorf("ID = %q, want %q", gotID, "Art-Net\x00")
			}
			if gotOpCode := binary.LittleEndian.Uint16(packet[8:10]); gotOpCode != OpCodeDMX {
				t.Errorf("OpCode = 0x%04x, want 0x%04x", gotOpCode, OpCodeDMX)
			}
			if gotVersion := binary.BigEndian.Uint16(packet[10:12]); gotVersion != ProtocolVersion {
				t.Errorf("protocol version = %d, want %d", gotVersion, ProtocolVersion)
			}
			if packet[12] != 123 {
				t.Errorf("sequence = %d, want 123", packet[12])
			}
			if gotUniverse := binary.LittleEndian.Uint16(packet[14:16]); gotUniverse != tt.wantUniverse {
				t.Errorf("universe = %d, want %d", gotUniverse, tt.wantUniverse)
			}
			if gotLength := binary.BigEndian.Uint16(packet[16:18]); gotLength != DMXDataLength {
				t.Errorf("data length = %d, want %d", gotLength, DMXDataLength)
			}
		})
	}
}

func TestBuildDMXPacketData(t *testing.T) {
	channels := make([]byte, 512)
	channels[0] = 255
	channels[511] = 42

	packet := BuildDMXPacket(0, channels, 0)

	if packet[18] != 255 {
		t.Errorf("first channel = %d, want 255", packet[18])
	}
	if packet[529] != 42 {
		t.Errorf("last channel = %d, want 42", packet[529])
	}
}

func TestBuildDMXPacketShortBuffer(t *testing.T) {
	packet := BuildDMXPacket(0, []byte{1, 2, 3}, 0)

	if len(packet) != int(PacketSize) {
		t.Fatalf("packet size = %d, want %d", len(packet), PacketSize)
	}
	for i, want := range []byte{1, 2, 3} {
		if packet[18+i] != want {
			t.Errorf("channel %d = %d, want %d", i, packet[18+i], want)
		}
	}
	if packet[21] != 0 {
		t.Errorf("padding byte = %d, want 0", packet[21])
	}
}
