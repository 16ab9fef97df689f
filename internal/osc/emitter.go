package osc

import "github.com/scgolang/osc"

// Talkback selects which clients receive an outbound control response.
type Talkback int

const (
	// TalkbackAll sends the response to every registered client, including
	// the originator of the message being responded to.
	TalkbackAll Talkback = iota
	// TalkbackOff suppresses the echo to the originator. Used for
	// continuous controls where the originating surface already displays
	// the value it sent.
	TalkbackOff
)

// Response is an outbound control message plus fan-out metadata.
type Response struct {
	// SenderID identifies the client that triggered this response, if any.
	// Nil for unprompted state emission such as a full talkback refresh.
	SenderID *ClientID
	Talkback Talkback
	Msg      osc.Message
}

// MessageEmitter consumes outbound OSC state messages.
type MessageEmitter interface {
	EmitOsc(talkback Talkback, m osc.Message)
}

// ScopedEmitter emits control state for a single entity, prefixing every
// address with the entity name.
type ScopedEmitter struct {
	Entity   string
	Talkback Talkback
	Out      MessageEmitter
}

// WithTalkback returns a copy of this emitter using the provided talkback
// mode for subsequent emissions.
func (s ScopedEmitter) WithTalkback(t Talkback) ScopedEmitter {
	s.Talkback = t
	return s
}

// Emit sends a single-argument message for the named control.
func (s ScopedEmitter) Emit(control string, arg osc.Argument) {
	s.Out.EmitOsc(s.Talkback, osc.Message{
		Address:   "/" + s.Entity + "/" + control,
		Arguments: osc.Arguments{arg},
	})
}

// EmitFloat sends a float-valued control message.
func (s ScopedEmitter) EmitFloat(control string, v float64) {
	s.Emit(control, osc.Float(float32(v)))
}

// EmitBool sends a boolean control message as 1.0 or 0.0, matching the
// encoding touch surfaces expect for toggle buttons.
func (s ScopedEmitter) EmitBool(control string, v bool) {
	f := float32(0)
	if v {
		f = 1
	}
	s.Emit(control, osc.Float(f))
}

// EmitString sends a string-valued control message.
func (s ScopedEmitter) EmitString(control string, v string) {
	s.Emit(control, osc.String(v))
}

// EmitLabeled sends a message for a labeled sub-address of a control, used
// by radio-button style selectors where each option is its own address.
func (s ScopedEmitter) EmitLabeled(control, label string, on bool) {
	f := float32(0)
	if on {
		f = 1
	}
	s.Out.EmitOsc(s.Talkback, osc.Message{
		Address:   "/" + s.Entity + "/" + control + "/" + label,
		Arguments: osc.Arguments{osc.Float(f)},
	})
}
