package midi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/generalelectrix/showrunner/internal/number"
)

// Device interprets raw MIDI traffic from one control surface and renders
// show state changes back to it. Interpreters are pure so they can run on
// the show thread and be tested without hardware.
type Device interface {
	// PortName is the substring used to match the device's in/out ports.
	PortName() string
	// Interpret translates one inbound message into show control events.
	// Unmapped messages return nil.
	Interpret(msg midi.Message) []Event
	// Render translates a show state change into feedback messages for
	// this surface. Unmapped events return nil.
	Render(e Event) []midi.Message
}

// LaunchControlXL maps a Novation Launch Control XL in its factory template:
// eight channel strips (three knob rows, a fader, focus and control buttons)
// plus the right-hand side buttons for master strobe controls.
type LaunchControlXL struct{}

const (
	lcxlFaderBase    = 77
	lcxlKnobRowABase = 13
	lcxlKnobRowBBase = 29
	lcxlKnobRowCBase = 49
	lcxlSideDevice   = 105
	lcxlSideMute     = 106
	lcxlSideSolo     = 107
	lcxlSideRecord   = 108

	lcxlLEDOff   = 12
	lcxlLEDAmber = 63
)

// Focus and control button notes are laid out in two split rows of four.
var lcxlFocusNotes = [8]uint8{41, 42, 43, 44, 57, 58, 59, 60}
var lcxlControlNotes = [8]uint8{73, 74, 75, 76, 89, 90, 91, 92}

func (LaunchControlXL) PortName() string { return "Launch Control XL" }

func (LaunchControlXL) Interpret(msg midi.Message) []Event {
	var ch, key, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		switch key {
		case lcxlSideDevice:
			if vel == 0 {
				return nil
			}
			return []Event{AnimationAdvance{}}
		case lcxlSideMute:
			return []Event{MasterStrobeToggle{On: vel > 0}}
		case lcxlSideSolo:
			return []Event{TapSync{}}
		case lcxlSideRecord:
			return []Event{FlashNow{}}
		}
		for i, n := range lcxlFocusNotes {
			if key == n {
				return []Event{ChannelSelect{Channel: i}}
			}
		}
		for i, n := range lcxlControlNotes {
			if key == n {
				return []Event{ChannelStrobeToggle{Channel: i}}
			}
		}
		return nil
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		v := unipolarFromCC(val)
		switch {
		case cc >= lcxlFaderBase && cc < lcxlFaderBase+8:
			// Physical faders get a detent so the bottom of the throw is a
			// hard blackout.
			return []Event{ChannelLevel{Channel: int(cc - lcxlFaderBase), Value: number.UnipolarFaderWithDetent(v)}}
		case cc >= lcxlKnobRowABase && cc < lcxlKnobRowABase+8:
			return []Event{ChannelKnob{Channel: int(cc - lcxlKnobRowABase), Knob: 0, Value: v}}
		case cc >= lcxlKnobRowBBase && cc < lcxlKnobRowBBase+8:
			return []Event{ChannelKnob{Channel: int(cc - lcxlKnobRowBBase), Knob: 1, Value: v}}
		case cc >= lcxlKnobRowCBase && cc < lcxlKnobRowCBase+8:
			return []Event{ChannelKnob{Channel: int(cc - lcxlKnobRowCBase), Knob: 2, Value: v}}
		}
	}
	return nil
}

func (LaunchControlXL) Render(e Event) []midi.Message {
	switch ev := e.(type) {
	case ChannelSelect:
		if ev.Channel < 0 || ev.Channel >= 8 {
			return nil
		}
		return []midi.Message{midi.NoteOn(0, lcxlFocusNotes[ev.Channel], ledVelocity(ev.Selected))}
	case ChannelStrobeToggle:
		if ev.Channel < 0 || ev.Channel >= 8 {
			return nil
		}
		return []midi.Message{midi.NoteOn(0, lcxlControlNotes[ev.Channel], ledVelocity(ev.On))}
	case MasterStrobeToggle:
		return []midi.Message{midi.NoteOn(0, lcxlSideMute, ledVelocity(ev.On))}
	case TickIndicator:
		return []midi.Message{midi.NoteOn(0, lcxlSideSolo, ledVelocity(ev.On))}
	}
	return nil
}

func unipolarFromCC(val uint8) number.Unipolar {
	return number.UnipolarFromFloat(float64(val) / 127.0)
}

func ledVelocity(on bool) uint8 {
	if on {
		return lcxlLEDAmber
	}
	return lcxlLEDOff
}
