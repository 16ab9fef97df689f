// Package osc implements the OSC side of the control fabric: inbound message
// decoding and routing metadata, the per-group control maps used to bind
// addresses to typed handlers, and the listener/sender threads that own the
// UDP sockets.
package osc

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"

	"github.com/generalelectrix/showrunner/internal/number"
)

// ClientID identifies an OSC client by its remote UDP address.
type ClientID string

// UDPAddr resolves the client ID back into a UDP address.
func (c ClientID) UDPAddr() (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", string(c))
}

func (c ClientID) String() string { return string(c) }

// ControlMessage wraps an inbound OSC message with pre-parsed routing
// metadata. The address is split once, up front, into group and control
// substrings; downstream code consumes slices and never re-parses.
type ControlMessage struct {
	// ClientID identifies the client that originated this message.
	ClientID ClientID
	// Arg is the single payload argument extracted from the message.
	Arg osc.Argument

	addr string
	// Byte index of the leading slash of the control portion.
	controlStart int
	// Byte index of the first character after the control key. May equal
	// len(addr) for addresses with no payload.
	controlEnd int
}

// ParseControlMessage validates an inbound OSC message and wraps it with
// routing metadata. Messages must have an address of at least two non-empty
// components and exactly one argument.
func ParseControlMessage(m osc.Message, client ClientID) (*ControlMessage, error) {
	controlStart, controlEnd, err := parseAddress(m.Address)
	if err != nil {
		return nil, errors.Wrap(err, m.Address)
	}
	if len(m.Arguments) != 1 {
		return nil, errors.Errorf("%s: message has %d args (expected one)", m.Address, len(m.Arguments))
	}
	return &ControlMessage{
		ClientID:     client,
		Arg:          m.Arguments[0],
		addr:         m.Address,
		controlStart: controlStart,
		controlEnd:   controlEnd,
	}, nil
}

// Group returns the first address component, excluding the leading slash.
func (c *ControlMessage) Group() string {
	return c.addr[1:c.controlStart]
}

// Control returns the second address component.
func (c *ControlMessage) Control() string {
	return c.addr[c.controlStart+1 : c.controlEnd]
}

// AddrPayload returns the portion of the address following the control key,
// including a leading slash if non-empty.
func (c *ControlMessage) AddrPayload() string {
	if c.controlEnd == len(c.addr) {
		return ""
	}
	return c.addr[c.controlEnd:]
}

// Addr returns the full raw address.
func (c *ControlMessage) Addr() string { return c.addr }

// Err creates an error tagged with this message's address.
func (c *ControlMessage) Err(format string, args ...interface{}) error {
	return errors.Errorf(c.addr+": "+format, args...)
}

// Float extracts a single float argument, accepting float or int payloads.
// The wire library has no typetag reader for OSC doubles, so surfaces must
// send float32; a double-typed message fails decode upstream and never
// reaches this accessor.
func (c *ControlMessage) Float() (float64, error) {
	if v, err := c.Arg.ReadFloat32(); err == nil {
		return float64(v), nil
	}
	if v, err := c.Arg.ReadInt32(); err == nil {
		return float64(v), nil
	}
	return 0, c.Err("expected a single float argument")
}

// Unipolar extracts a unipolar float argument.
func (c *ControlMessage) Unipolar() (number.Unipolar, error) {
	v, err := c.Float()
	if err != nil {
		return 0, err
	}
	return number.UnipolarFromFloat(v), nil
}

// Bipolar extracts a bipolar float argument.
func (c *ControlMessage) Bipolar() (number.Bipolar, error) {
	v, err := c.Float()
	if err != nil {
		return 0, err
	}
	return number.BipolarFromFloat(v), nil
}

// Phase extracts a phase argument.
func (c *ControlMessage) Phase() (number.Phase, error) {
	v, err := c.Float()
	if err != nil {
		return 0, err
	}
	return number.PhaseFromFloat(v), nil
}

// Bool extracts a boolean argument, coercing ints and floats via != 0.
func (c *ControlMessage) Bool() (bool, error) {
	if v, err := c.Arg.ReadBool(); err == nil {
		return v, nil
	}
	if v, err := c.Arg.ReadInt32(); err == nil {
		return v != 0, nil
	}
	if v, err := c.Arg.ReadFloat32(); err == nil {
		return v != 0, nil
	}
	return false, c.Err("expected a single bool argument")
}

// String extracts a string argument.
func (c *ControlMessage) String() (string, error) {
	if v, err := c.Arg.ReadString(); err == nil {
		return v, nil
	}
	return "", c.Err("expected a single string argument")
}

func parseAddress(addr string) (controlStart, controlEnd int, err error) {
	if !strings.HasPrefix(addr, "/") {
		return 0, 0, errors.New("OSC address did not start with a slash")
	}
	controlStart = strings.IndexByte(addr[1:], '/')
	if controlStart < 0 {
		return 0, 0, errors.New("OSC address only had one path component")
	}
	controlStart++
	if controlStart < 2 {
		return 0, 0, errors.New("OSC address has empty group")
	}
	controlEnd = strings.IndexByte(addr[controlStart+1:], '/')
	if controlEnd < 0 {
		controlEnd = len(addr)
	} else {
		controlEnd += controlStart + 1
	}
	if controlEnd <= controlStart+1 {
		return 0, 0, errors.New("OSC address has empty control")
	}
	return controlStart, controlEnd, nil
}
