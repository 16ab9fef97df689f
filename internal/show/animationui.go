package show

import (
	"fmt"
	"strconv"

	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// AnimationGroup is the reserved OSC group for the animation editor.
const AnimationGroup = "Animation"

// TargetOutOfRangeError reports an animation target index that the current
// model does not define.
type TargetOutOfRangeError struct {
	Index int
	Count int
}

func (e TargetOutOfRangeError) Error() string {
	return fmt.Sprintf("animation target %d out of range, model has %d targets", e.Index, e.Count)
}

// AnimationUI is the animation editor: it remembers which of a group's
// animators each channel was last editing, and forwards editor controls to
// that animator.
type AnimationUI struct {
	selected  map[fixture.GroupKey]int
	clipboard *animation.State
}

// NewAnimationUI creates an empty editor.
func NewAnimationUI() *AnimationUI {
	return &AnimationUI{selected: make(map[fixture.GroupKey]int)}
}

// currentAnimator resolves the animator under edit: the current channel's
// group, at that channel's remembered animator slot.
func (a *AnimationUI) currentAnimator(patch *fixture.Patch, channels *Channels) (*fixture.Group, *animation.Targeted, error) {
	key, ok := channels.CurrentKey()
	if !ok {
		return nil, nil, fmt.Errorf("no channel selected")
	}
	group, err := patch.Get(key)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsAnimated() {
		return nil, nil, fmt.Errorf("%s is not animated", key.Display())
	}
	return group, group.Animator(a.selected[key]), nil
}

// SelectAnimator changes which animator slot the current channel edits.
func (a *AnimationUI) SelectAnimator(idx int, patch *fixture.Patch, channels *Channels, s Surfaces) error {
	if idx < 0 || idx >= fixture.NAnimators {
		return fmt.Errorf("animator %d out of range [0, %d)", idx, fixture.NAnimators)
	}
	key, ok := channels.CurrentKey()
	if !ok {
		return fmt.Errorf("no channel selected")
	}
	if a.selected[key] == idx {
		return nil
	}
	a.selected[key] = idx
	a.EmitState(patch, channels, s)
	return nil
}

// Advance steps the current channel to its next animator slot, for surfaces
// with a single advance button instead of a radio bank.
func (a *AnimationUI) Advance(patch *fixture.Patch, channels *Channels, s Surfaces) error {
	key, ok := channels.CurrentKey()
	if !ok {
		return fmt.Errorf("no channel selected")
	}
	a.selected[key] = (a.selected[key] + 1) % fixture.NAnimators
	a.EmitState(patch, channels, s)
	return nil
}

// SetTarget points the current animator at a model parameter.
func (a *AnimationUI) SetTarget(idx int, patch *fixture.Patch, channels *Channels, s Surfaces) error {
	group, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return err
	}
	targets := group.AnimationTargets()
	if idx < 0 || idx >= len(targets) {
		return TargetOutOfRangeError{Index: idx, Count: len(targets)}
	}
	ta.Target = idx
	e := s.Entity(AnimationGroup).WithTalkback(osc.TalkbackAll)
	osc.EmitSelector(e, "Target", targets, idx)
	return nil
}

// Control routes an animation-editor OSC message. Unrecognized controls
// forward to the current animator.
func (a *AnimationUI) Control(msg *osc.ControlMessage, patch *fixture.Patch, channels *Channels, s Surfaces) error {
	switch msg.Control() {
	case "Select":
		idx, err := animation.ParseIndex(msg, fixture.NAnimators)
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if !v {
			return nil
		}
		return a.SelectAnimator(idx, patch, channels, s)
	case "Target":
		idx, err := animation.ParseIndex(msg, maxAnimationTargets)
		if err != nil {
			return err
		}
		v, err := msg.Bool()
		if err != nil {
			return err
		}
		if !v {
			return nil
		}
		return a.SetTarget(idx, patch, channels, s)
	case "Copy":
		return a.copy(msg, patch, channels)
	case "Paste":
		return a.paste(msg, patch, channels, s)
	}
	_, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return err
	}
	handled, err := ta.Animator.Control(msg, s.Entity(AnimationGroup))
	if err != nil {
		return err
	}
	if !handled {
		return msg.Err("no animation control matching %s", msg.Addr())
	}
	return nil
}

// Upper bound on the target radio size, well past any model's target count.
const maxAnimationTargets = 64

func (a *AnimationUI) copy(msg *osc.ControlMessage, patch *fixture.Patch, channels *Channels) error {
	if v, err := msg.Bool(); err != nil || !v {
		return err
	}
	_, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return err
	}
	state := ta.Animator.State()
	a.clipboard = &state
	return nil
}

func (a *AnimationUI) paste(msg *osc.ControlMessage, patch *fixture.Patch, channels *Channels, s Surfaces) error {
	if v, err := msg.Bool(); err != nil || !v {
		return err
	}
	if a.clipboard == nil {
		return nil
	}
	_, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return err
	}
	ta.Animator.SetState(*a.clipboard)
	a.EmitState(patch, channels, s)
	return nil
}

// HandleMidi applies an animation-editor MIDI event.
func (a *AnimationUI) HandleMidi(ev midi.Event, patch *fixture.Patch, channels *Channels, s Surfaces) (bool, error) {
	switch v := ev.(type) {
	case midi.AnimationSelect:
		return true, a.SelectAnimator(v.Index, patch, channels, s)
	case midi.AnimationAdvance:
		return true, a.Advance(patch, channels, s)
	}
	return false, nil
}

// EmitState sends the full editor state for the current channel: the
// animator radio, the target radio with the model's labels, and the
// animator's own controls.
func (a *AnimationUI) EmitState(patch *fixture.Patch, channels *Channels, s Surfaces) {
	key, ok := channels.CurrentKey()
	if !ok {
		return
	}
	e := s.Entity(AnimationGroup).WithTalkback(osc.TalkbackAll)
	idx := a.selected[key]
	for i := 0; i < fixture.NAnimators; i++ {
		e.EmitBool("Select/"+strconv.Itoa(i), i == idx)
		s.Midi(midi.AnimationSelect{Index: i, Selected: i == idx})
	}
	group, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return
	}
	osc.EmitSelector(e, "Target", group.AnimationTargets(), ta.Target)
	ta.Animator.EmitState(e)
}

// Snapshot captures the editor view published to external observers each
// tick: the channel under edit, the animator slot, and its state.
type Snapshot struct {
	Channel  int             `json:"channel"`
	Animator int             `json:"animator"`
	State    animation.State `json:"state"`
}

// CurrentSnapshot builds the per-tick publication, or false when nothing is
// under edit.
func (a *AnimationUI) CurrentSnapshot(patch *fixture.Patch, channels *Channels) (Snapshot, bool) {
	key, ok := channels.CurrentKey()
	if !ok {
		return Snapshot{}, false
	}
	_, ta, err := a.currentAnimator(patch, channels)
	if err != nil {
		return Snapshot{}, false
	}
	return Snapshot{
		Channel:  channels.Current(),
		Animator: a.selected[key],
		State:    ta.Animator.State(),
	}, true
}
