package midi

import (
	"log"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters the rtmidi driver
)

// DeviceEvent is a raw message tagged with the device it arrived from.
// Interpretation happens on the show thread so all state mutation stays
// single-threaded.
type DeviceEvent struct {
	Device Device
	Msg    midi.Message
}

// EventSink consumes raw device events from the manager's listen callbacks.
type EventSink interface {
	MidiMessage(e DeviceEvent)
}

type openDevice struct {
	spec Device
	stop func()
	send func(midi.Message) error
}

// Manager owns the MIDI device connections. The underlying library runs its
// own I/O threading; the manager only adapts its callbacks onto the control
// queue and fans feedback out to the connected surfaces.
type Manager struct {
	mu      sync.Mutex
	devices []*openDevice
}

// NewManager creates a manager with no devices attached.
func NewManager() *Manager {
	return &Manager{}
}

// Open connects a device, matching in and out ports by the device's port
// name. Inbound messages are forwarded to the sink as raw device events.
func (m *Manager) Open(spec Device, sink EventSink) error {
	in, err := midi.FindInPort(spec.PortName())
	if err != nil {
		return errors.Wrapf(err, "MIDI input %q not found", spec.PortName())
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		sink.MidiMessage(DeviceEvent{Device: spec, Msg: msg})
	})
	if err != nil {
		return errors.Wrapf(err, "unable to listen to MIDI input %q", spec.PortName())
	}

	dev := &openDevice{spec: spec, stop: stop}
	out, err := midi.FindOutPort(spec.PortName())
	if err != nil {
		// Input-only operation is fine, we just lose LED feedback.
		log.Printf("MIDI output %q not found, feedback disabled", spec.PortName())
	} else {
		send, err := midi.SendTo(out)
		if err != nil {
			stop()
			return errors.Wrapf(err, "unable to open MIDI output %q", spec.PortName())
		}
		dev.send = send
	}

	m.mu.Lock()
	m.devices = append(m.devices, dev)
	m.mu.Unlock()
	log.Printf("Connected MIDI device %q", spec.PortName())
	return nil
}

// Emit renders a show state change to every connected surface.
func (m *Manager) Emit(e Event) {
	m.mu.Lock()
	devices := m.devices
	m.mu.Unlock()
	for _, dev := range devices {
		if dev.send == nil {
			continue
		}
		for _, msg := range dev.spec.Render(e) {
			if err := dev.send(msg); err != nil {
				log.Printf("MIDI send error to %q: %v", dev.spec.PortName(), err)
			}
		}
	}
}

// Close detaches all devices and shuts down the driver.
func (m *Manager) Close() {
	m.mu.Lock()
	devices := m.devices
	m.devices = nil
	m.mu.Unlock()
	for _, dev := range devices {
		dev.stop()
	}
	midi.CloseDriver()
}
