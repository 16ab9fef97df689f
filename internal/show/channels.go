package show

import (
	"strconv"

	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// ChannelGroup is the reserved OSC group for the channel bank.
const ChannelGroup = "Channel"

// ChannelOutOfRangeError reports a channel index beyond the bound bank.
type ChannelOutOfRangeError struct {
	Index int
	Count int
}

func (e ChannelOutOfRangeError) Error() string {
	return "channel " + strconv.Itoa(e.Index) + " out of range, " +
		strconv.Itoa(e.Count) + " channels bound"
}

// Channels binds an ordered list of group keys to the logical channel bank
// and tracks the current selection.
type Channels struct {
	keys    []fixture.GroupKey
	current int
}

// NewChannels binds the initial key list. The first channel starts
// selected when any exist.
func NewChannels(keys []fixture.GroupKey) *Channels {
	c := &Channels{keys: keys, current: -1}
	if len(keys) > 0 {
		c.current = 0
	}
	return c
}

// Rebuild rebinds the bank after a repatch. The selection survives iff its
// key does.
func (c *Channels) Rebuild(keys []fixture.GroupKey) {
	prev, hadPrev := c.CurrentKey()
	c.keys = keys
	c.current = -1
	if len(keys) == 0 {
		return
	}
	c.current = 0
	if !hadPrev {
		return
	}
	for i, k := range keys {
		if k == prev {
			c.current = i
			return
		}
	}
}

// Count returns the number of bound channels.
func (c *Channels) Count() int { return len(c.keys) }

// Current returns the selected channel index, or -1 when none are bound.
func (c *Channels) Current() int { return c.current }

// CurrentKey returns the selected channel's group key.
func (c *Channels) CurrentKey() (fixture.GroupKey, bool) {
	if c.current < 0 || c.current >= len(c.keys) {
		return fixture.GroupKey{}, false
	}
	return c.keys[c.current], true
}

// ValidateChannel bounds-checks a channel index.
func (c *Channels) ValidateChannel(idx int) error {
	if idx < 0 || idx >= len(c.keys) {
		return ChannelOutOfRangeError{Index: idx, Count: len(c.keys)}
	}
	return nil
}

// ChannelForKey returns the channel a group key is bound to.
func (c *Channels) ChannelForKey(key fixture.GroupKey) (int, bool) {
	for i, k := range c.keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// channelEmitter relays a group's channel-scoped state changes back to the
// surfaces: OSC only when the channel is the current selection (the OSC
// surface shows one channel at a time), MIDI always with the channel index.
type channelEmitter struct {
	channel  int
	selected bool
	osc      osc.ScopedEmitter
	midi     func(midi.Event)
}

func (e channelEmitter) EmitLevel(v number.Unipolar) {
	if e.selected {
		e.osc.EmitFloat("Level", v.Float())
	}
	e.midi(midi.ChannelLevel{Channel: e.channel, Value: v})
}

func (e channelEmitter) EmitKnob(idx int, v number.Unipolar) {
	if e.selected {
		e.osc.EmitFloat("Knob/"+strconv.Itoa(idx), v.Float())
	}
	e.midi(midi.ChannelKnob{Channel: e.channel, Knob: idx, Value: v})
}

// GroupEmitter builds the state emitter for a group, wiring the channel
// echo path when the group is bound to a channel.
func (c *Channels) GroupEmitter(key fixture.GroupKey, s Surfaces) fixture.StateEmitter {
	e := fixture.StateEmitter{Osc: s.Entity(key.Display())}
	if ch, ok := c.ChannelForKey(key); ok {
		e.Channel = channelEmitter{
			channel:  ch,
			selected: ch == c.current,
			osc:      s.Entity(ChannelGroup),
			midi:     s.Midi,
		}
	}
	return e
}

// SelectChannel moves the selection. Selecting the current channel is a
// no-op; otherwise the newly selected group's state and the channel-scoped
// animation editor state are re-emitted.
func (c *Channels) SelectChannel(idx int, patch *fixture.Patch, anim *AnimationUI, s Surfaces) error {
	if err := c.ValidateChannel(idx); err != nil {
		return err
	}
	if idx == c.current {
		return nil
	}
	prev := c.current
	c.current = idx

	e := s.Entity(ChannelGroup).WithTalkback(osc.TalkbackAll)
	e.EmitBool("Select/"+strconv.Itoa(prev), false)
	e.EmitBool("Select/"+strconv.Itoa(idx), true)
	if prev >= 0 {
		s.Midi(midi.ChannelSelect{Channel: prev, Selected: false})
	}
	s.Midi(midi.ChannelSelect{Channel: idx, Selected: true})

	key := c.keys[idx]
	group, err := patch.Get(key)
	if err != nil {
		return err
	}
	group.EmitState(c.GroupEmitter(key, s).WithTalkback(osc.TalkbackAll))
	anim.EmitState(patch, c, s)
	return nil
}

// Control routes a channel-addressed OSC message. Level and knob moves go
// to the currently selected group; selection changes use the address
// payload as the channel index.
func (c *Channels) Control(msg *osc.ControlMessage, patch *fixture.Patch, anim *AnimationUI, s Surfaces) error {
	switch msg.Control() {
	case "Select":
		idx, err := animation.ParseIndex(msg, len(c.keys))
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if !v {
			// Radio button release.
			return nil
		}
		return c.SelectChannel(idx, patch, anim, s)
	case "Level":
		v, err := msg.Unipolar()
		if err != nil {
			return err
		}
		return c.controlCurrent(fixture.ChannelLevel{Value: v}, patch, s)
	case "Knob":
		knob, err := animation.ParseIndex(msg, maxChannelKnobs)
		if err != nil {
			return err
		}
		v, err := msg.Unipolar()
		if err != nil {
			return err
		}
		return c.controlCurrent(fixture.ChannelKnob{Index: knob, Value: v}, patch, s)
	case "ToggleStrobe":
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if !v {
			return nil
		}
		return c.controlCurrent(fixture.ChannelToggleStrobe{}, patch, s)
	}
	return msg.Err("no channel control matching %s", msg.Addr())
}

// The channel surface exposes three knob rows per column.
const maxChannelKnobs = 3

func (c *Channels) controlCurrent(cm fixture.ChannelControl, patch *fixture.Patch, s Surfaces) error {
	return c.controlChannel(c.current, cm, patch, s)
}

func (c *Channels) controlChannel(idx int, cm fixture.ChannelControl, patch *fixture.Patch, s Surfaces) error {
	if err := c.ValidateChannel(idx); err != nil {
		return err
	}
	key := c.keys[idx]
	group, err := patch.Get(key)
	if err != nil {
		return err
	}
	// Models may decline channel messages they have no use for.
	group.ControlFromChannel(cm, c.GroupEmitter(key, s))
	return nil
}

// HandleMidi applies a channel-scoped MIDI event.
func (c *Channels) HandleMidi(ev midi.Event, patch *fixture.Patch, anim *AnimationUI, s Surfaces) (bool, error) {
	switch v := ev.(type) {
	case midi.ChannelSelect:
		if err := c.ValidateChannel(v.Channel); err != nil {
			// Surfaces have more columns than most rigs have channels.
			return true, nil
		}
		return true, c.SelectChannel(v.Channel, patch, anim, s)
	case midi.ChannelLevel:
		if c.ValidateChannel(v.Channel) != nil {
			return true, nil
		}
		return true, c.controlChannel(v.Channel, fixture.ChannelLevel{Value: v.Value}, patch, s)
	case midi.ChannelKnob:
		if c.ValidateChannel(v.Channel) != nil {
			return true, nil
		}
		return true, c.controlChannel(v.Channel, fixture.ChannelKnob{Index: v.Knob, Value: v.Value}, patch, s)
	case midi.ChannelStrobeToggle:
		if c.ValidateChannel(v.Channel) != nil {
			return true, nil
		}
		err := c.controlChannel(v.Channel, fixture.ChannelToggleStrobe{}, patch, s)
		if err == nil {
			if g, gerr := patch.Get(c.keys[v.Channel]); gerr == nil {
				s.Midi(midi.ChannelStrobeToggle{Channel: v.Channel, On: g.StrobeEnabled()})
			}
		}
		return true, err
	}
	return false, nil
}

// EmitState sends the channel labels, the selection, and the selected
// group's channel-scoped state.
func (c *Channels) EmitState(patch *fixture.Patch, s Surfaces) {
	e := s.Entity(ChannelGroup).WithTalkback(osc.TalkbackAll)
	for i, key := range c.keys {
		e.EmitString("Label/"+strconv.Itoa(i), key.Display())
		e.EmitBool("Select/"+strconv.Itoa(i), i == c.current)
		s.Midi(midi.ChannelSelect{Channel: i, Selected: i == c.current})
	}
	key, ok := c.CurrentKey()
	if !ok {
		return
	}
	if group, err := patch.Get(key); err == nil {
		group.EmitState(c.GroupEmitter(key, s).WithTalkback(osc.TalkbackAll))
	}
}
