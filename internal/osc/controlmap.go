package osc

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/number"
)

// TalkbackScoper is the emitter capability a control map needs: applying
// the talkback mode registered for a control before its handler runs.
// ScopedEmitter satisfies it directly; higher layers wrap it with their own
// emitter types.
type TalkbackScoper[E any] interface {
	WithTalkback(t Talkback) E
}

// Handler processes a control message scoped to a single control key.
type Handler[E TalkbackScoper[E]] func(msg *ControlMessage, e E) error

type mapEntry[E TalkbackScoper[E]] struct {
	fn       Handler[E]
	talkback Talkback
}

// ControlMap routes control messages for one group to typed handlers, keyed
// by the control component of the address. Registration happens once at
// construction time; duplicate registration is a programming error and
// panics.
type ControlMap[E TalkbackScoper[E]] struct {
	handlers map[string]mapEntry[E]
}

// NewControlMap creates an empty control map.
func NewControlMap[E TalkbackScoper[E]]() *ControlMap[E] {
	return &ControlMap[E]{handlers: make(map[string]mapEntry[E])}
}

// Handle dispatches a message to the handler registered for its control key.
// Returns false if no handler is registered. The handler runs with the
// talkback mode registered for the control.
func (m *ControlMap[E]) Handle(msg *ControlMessage, e E) (bool, error) {
	entry, ok := m.handlers[msg.Control()]
	if !ok {
		return false, nil
	}
	return true, entry.fn(msg, e.WithTalkback(entry.talkback))
}

// Add registers a raw handler for a control key.
func (m *ControlMap[E]) Add(control string, talkback Talkback, fn Handler[E]) {
	if _, ok := m.handlers[control]; ok {
		panic(errors.Errorf("duplicate control handler registered for %q", control))
	}
	m.handlers[control] = mapEntry[E]{fn: fn, talkback: talkback}
}

// AddUnipolar registers a handler for a unipolar fader. Faders default to
// talkback off since the originating surface already shows the value.
func (m *ControlMap[E]) AddUnipolar(control string, fn func(v number.Unipolar, e E)) {
	m.Add(control, TalkbackOff, func(msg *ControlMessage, e E) error {
		v, err := msg.Unipolar()
		if err != nil {
			return err
		}
		fn(v, e)
		return nil
	})
}

// AddBipolar registers a handler for a bipolar fader.
func (m *ControlMap[E]) AddBipolar(control string, fn func(v number.Bipolar, e E)) {
	m.Add(control, TalkbackOff, func(msg *ControlMessage, e E) error {
		v, err := msg.Bipolar()
		if err != nil {
			return err
		}
		fn(v, e)
		return nil
	})
}

// AddPhase registers a handler for a phase fader.
func (m *ControlMap[E]) AddPhase(control string, fn func(v number.Phase, e E)) {
	m.Add(control, TalkbackOff, func(msg *ControlMessage, e E) error {
		v, err := msg.Phase()
		if err != nil {
			return err
		}
		fn(v, e)
		return nil
	})
}

// AddBool registers a handler for a toggle button.
func (m *ControlMap[E]) AddBool(control string, fn func(v bool, e E)) {
	m.Add(control, TalkbackAll, func(msg *ControlMessage, e E) error {
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		fn(v, e)
		return nil
	})
}

// AddTrigger registers a handler for a momentary button, firing only on
// press and ignoring the release message.
func (m *ControlMap[E]) AddTrigger(control string, fn func(e E)) {
	m.Add(control, TalkbackAll, func(msg *ControlMessage, e E) error {
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if v {
			fn(e)
		}
		return nil
	})
}

// AddSelector registers a radio-button style selector where each option is a
// labeled sub-address of the control. Only the press message fires.
func (m *ControlMap[E]) AddSelector(control string, labels []string, fn func(idx int, e E)) {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	m.Add(control, TalkbackAll, func(msg *ControlMessage, e E) error {
		label := strings.TrimPrefix(msg.AddrPayload(), "/")
		idx, ok := index[label]
		if !ok {
			return msg.Err("unknown option %q", label)
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if v {
			fn(idx, e)
		}
		return nil
	})
}

// EmitSelector emits the full state of a labeled selector, lighting the
// selected option and clearing the rest.
func EmitSelector(e ScopedEmitter, control string, labels []string, selected int) {
	for i, l := range labels {
		e.EmitLabeled(control, l, i == selected)
	}
}
