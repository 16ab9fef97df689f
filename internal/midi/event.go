// Package midi connects physical MIDI control surfaces to the show. The
// manager owns device I/O via gomidi; per-device interpreters translate raw
// MIDI messages into the same show-level control events that OSC surfaces
// produce, and render show state changes back to the surface as LED feedback.
package midi

import "github.com/generalelectrix/showrunner/internal/number"

// Event is a show-level control event, produced by device interpreters and
// consumed by the show dispatcher. The same vocabulary flows back out for
// LED feedback.
type Event interface {
	isEvent()
}

// ChannelSelect selects a channel on the channel bank.
type ChannelSelect struct {
	Channel int
	// Selected is only meaningful on the feedback path.
	Selected bool
}

// ChannelLevel sets the level fader of a channel.
type ChannelLevel struct {
	Channel int
	Value   number.Unipolar
}

// ChannelKnob sets one of the per-channel knobs.
type ChannelKnob struct {
	Channel int
	Knob    int
	Value   number.Unipolar
}

// ChannelStrobeToggle toggles strobe participation for a channel. On the
// feedback path, On carries the resulting state.
type ChannelStrobeToggle struct {
	Channel int
	On      bool
}

// MasterStrobeToggle toggles the master strobe.
type MasterStrobeToggle struct {
	On bool
}

// MasterStrobeRate sets the master strobe rate fader.
type MasterStrobeRate struct {
	Value number.Unipolar
}

// TapSync is a tap on the strobe tap-sync button.
type TapSync struct{}

// FlashNow queues a manual strobe flash.
type FlashNow struct{}

// AnimationSelect selects an animator on the animation editor.
type AnimationSelect struct {
	Index int
	// Selected is only meaningful on the feedback path.
	Selected bool
}

// AnimationAdvance steps animator selection to the next slot, for surfaces
// with a single animator button instead of a radio bank.
type AnimationAdvance struct{}

// TickIndicator is feedback-only: the short-lived tap sync beat light.
type TickIndicator struct {
	On bool
}

func (ChannelSelect) isEvent()       {}
func (ChannelLevel) isEvent()        {}
func (ChannelKnob) isEvent()         {}
func (ChannelStrobeToggle) isEvent() {}
func (MasterStrobeToggle) isEvent()  {}
func (MasterStrobeRate) isEvent()    {}
func (TapSync) isEvent()             {}
func (FlashNow) isEvent()            {}
func (AnimationSelect) isEvent()     {}
func (AnimationAdvance) isEvent()    {}
func (TickIndicator) isEvent()       {}
