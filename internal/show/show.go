// Package show runs the live control loop: it drains the unified control
// queue, advances the patch on a fixed tick, and renders DMX frames to the
// output ports. The loop is single-threaded and is the sole mutator of
// patch, channel, master, and animation editor state.
package show

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/control"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/osc"
	"github.com/generalelectrix/showrunner/internal/services/dmx"
)

const (
	// UpdateInterval is the canonical tick. The value was determined
	// empirically as the interval yielding the most consistent DMX frame
	// spacing on real output hardware.
	UpdateInterval = 25300 * time.Microsecond
	// ControlTimeout bounds the control dequeue so ticks never starve.
	ControlTimeout = 500 * time.Microsecond
)

// MetaGroup is the reserved OSC group for show-level operations.
const MetaGroup = "Meta"

// Reserved OSC groups for the clock and audio subsystems.
const (
	ClockGroup = "Clock"
	AudioGroup = "Audio"
)

// Surfaces bundles the outbound control paths for one dispatch: OSC fan-out
// carrying the originating client for talkback, plus MIDI LED feedback.
// Rebuilt per dispatch; never cached in fields.
type Surfaces struct {
	out  osc.MessageEmitter
	midi func(midi.Event)
}

// Entity returns an OSC emitter scoped to the named control surface group.
func (s Surfaces) Entity(name string) osc.ScopedEmitter {
	return osc.ScopedEmitter{Entity: name, Out: s.out}
}

// Midi sends an event to the MIDI surfaces.
func (s Surfaces) Midi(ev midi.Event) {
	if s.midi != nil {
		s.midi(ev)
	}
}

// Publisher receives the per-tick animation editor snapshot, best-effort.
type Publisher interface {
	Publish(Snapshot)
}

// PatchLoader re-reads the patch description for live reload.
type PatchLoader func() ([]fixture.GroupConfig, error)

// flashDistributor deals master strobe flashes round-robin across the
// strobing groups.
type flashDistributor struct {
	next int
}

// draw picks which of n strobing groups receives this flash.
func (d *flashDistributor) draw(n int) int {
	if n <= 0 {
		return -1
	}
	idx := d.next % n
	d.next = idx + 1
	return idx
}

// Show owns all live state.
type Show struct {
	patch      *fixture.Patch
	channels   *Channels
	master     *Master
	animations *AnimationUI
	clocks     *clocks.Bank
	controller *control.Controller

	buffers     [][]byte
	ports       []dmx.Port
	publisher   Publisher
	loadPatch   PatchLoader
	distributor flashDistributor
}

// New assembles a show around an already constructed patch. The publisher,
// loader, and port list may be nil or empty.
func New(patch *fixture.Patch, bank *clocks.Bank, controller *control.Controller, ports []dmx.Port, publisher Publisher, loader PatchLoader) *Show {
	return &Show{
		patch:      patch,
		channels:   NewChannels(patch.ChannelKeys()),
		master:     NewMaster(),
		animations: NewAnimationUI(),
		clocks:     bank,
		controller: controller,
		buffers:    dmx.NewBuffers(patch.UniverseCount()),
		ports:      ports,
		publisher:  publisher,
		loadPatch:  loader,
	}
}

// Run executes the show loop until the control queue disconnects. Control
// messages interleave with ticks only at iteration boundaries; when the
// loop falls behind it catches up with multiple fixed-step updates but
// renders at most once per wake.
func (sh *Show) Run() error {
	last := time.Now()
	for {
		msg, err := sh.controller.Recv(ControlTimeout)
		if err != nil {
			return errors.Wrap(err, "control queue disconnected")
		}
		if msg != nil {
			if derr := sh.dispatch(msg); derr != nil {
				log.Printf("control error: %v", derr)
			}
		}
		now := time.Now()
		rendered := false
		for now.Sub(last) > UpdateInterval {
			sh.update(UpdateInterval.Seconds())
			last = last.Add(UpdateInterval)
			rendered = true
			now = time.Now()
		}
		if rendered {
			sh.render()
			sh.writePorts()
		}
	}
}

func (sh *Show) dispatch(msg control.Message) error {
	switch m := msg.(type) {
	case control.RegisterClient:
		if sh.controller.Sender != nil {
			sh.controller.Sender.Register(m.ID)
		}
		// Bring the new surface up to date.
		sh.refresh(sh.surfaces(nil))
		return nil
	case control.DeregisterClient:
		if sh.controller.Sender != nil {
			sh.controller.Sender.Deregister(m.ID)
		}
		return nil
	case control.OscMessage:
		return sh.dispatchOsc(m.Msg)
	case control.MidiMessage:
		return sh.dispatchMidi(m.Event)
	case control.WledResponse:
		if m.Err != nil {
			log.Printf("wled %s: %v", m.Instance, m.Err)
		}
		return nil
	}
	return errors.Errorf("unhandled control message %T", msg)
}

func (sh *Show) surfaces(senderID *osc.ClientID) Surfaces {
	return Surfaces{
		out:  sh.controller.SenderWithMetadata(senderID),
		midi: sh.controller.EmitMidi,
	}
}

func (sh *Show) dispatchOsc(msg *osc.ControlMessage) error {
	id := msg.ClientID
	s := sh.surfaces(&id)
	switch msg.Group() {
	case MetaGroup:
		return sh.metaControl(msg, s)
	case MasterGroup:
		handled, err := sh.master.Control(msg, s.Entity(MasterGroup))
		if err != nil {
			return err
		}
		if !handled {
			return msg.Err("no master control matching %s", msg.Addr())
		}
		return nil
	case ChannelGroup:
		return sh.channels.Control(msg, sh.patch, sh.animations, s)
	case AnimationGroup:
		return sh.animations.Control(msg, sh.patch, sh.channels, s)
	case ClockGroup:
		handled, err := sh.clocks.Control(msg, s.Entity(ClockGroup))
		if err != nil {
			return err
		}
		if !handled {
			return msg.Err("no clock control matching %s", msg.Addr())
		}
		return nil
	case AudioGroup:
		handled, err := sh.clocks.AudioControl(msg, s.Entity(AudioGroup))
		if err != nil {
			return err
		}
		if !handled {
			return msg.Err("no audio control matching %s", msg.Addr())
		}
		return nil
	}
	// Everything else is a fixture group key.
	group, ok := sh.patch.ByName(msg.Group())
	if !ok {
		return msg.Err("no group matching %q", msg.Group())
	}
	return group.Control(msg, sh.channels.GroupEmitter(group.Key(), s))
}

func (sh *Show) metaControl(msg *osc.ControlMessage, s Surfaces) error {
	v, err := msg.Bool()
	if err != nil {
		return err
	}
	if !v {
		return nil
	}
	switch msg.Control() {
	case "ReloadPatch":
		return sh.reloadPatch(s)
	case "RefreshUI":
		sh.refresh(s)
		return nil
	case "ResetAnimations":
		for _, g := range sh.patch.Groups() {
			g.ResetAnimations()
		}
		sh.animations.EmitState(sh.patch, sh.channels, s)
		return nil
	}
	return msg.Err("no meta control matching %s", msg.Addr())
}

func (sh *Show) dispatchMidi(ev midi.DeviceEvent) error {
	s := sh.surfaces(nil)
	var firstErr error
	for _, event := range ev.Device.Interpret(ev.Msg) {
		if err := sh.handleMidiEvent(event, s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (sh *Show) handleMidiEvent(ev midi.Event, s Surfaces) error {
	if sh.master.HandleMidi(ev, s.Entity(MasterGroup), s.Midi) {
		return nil
	}
	if handled, err := sh.channels.HandleMidi(ev, sh.patch, sh.animations, s); handled {
		return err
	}
	if handled, err := sh.animations.HandleMidi(ev, sh.patch, sh.channels, s); handled {
		return err
	}
	return errors.Errorf("unhandled midi event %T", ev)
}

// reloadPatch re-reads the patch description and applies it atomically. A
// failed reload leaves the running patch untouched.
func (sh *Show) reloadPatch(s Surfaces) error {
	if sh.loadPatch == nil {
		return errors.New("no patch loader configured")
	}
	cfgs, err := sh.loadPatch()
	if err != nil {
		return errors.Wrap(err, "reloading patch description")
	}
	if err := sh.patch.Repatch(cfgs); err != nil {
		return errors.Wrap(err, "repatching")
	}
	sh.channels.Rebuild(sh.patch.ChannelKeys())
	sh.refresh(s)
	return nil
}

// refresh re-emits the entire show state to the control surfaces.
func (sh *Show) refresh(s Surfaces) {
	sh.master.EmitState(s.Entity(MasterGroup).WithTalkback(osc.TalkbackAll))
	sh.clocks.EmitState(s.Entity(ClockGroup).WithTalkback(osc.TalkbackAll))
	sh.clocks.EmitAudioState(s.Entity(AudioGroup).WithTalkback(osc.TalkbackAll))
	sh.channels.EmitState(sh.patch, s)
	sh.animations.EmitState(sh.patch, sh.channels, s)
	for _, g := range sh.patch.Groups() {
		g.EmitState(sh.channels.GroupEmitter(g.Key(), s).WithTalkback(osc.TalkbackAll))
	}
}

// update advances all show state by one fixed tick.
func (sh *Show) update(dt float64) {
	sh.clocks.Update(dt)
	snap := sh.clocks.Current()

	state, indicatorChanged := sh.master.Update(dt)
	if indicatorChanged {
		sh.controller.EmitMidi(midi.TickIndicator{On: sh.master.Indicator()})
	}

	pick := -1
	if state.FlashNow {
		pick = sh.distributor.draw(sh.patch.StroberCount())
	}

	driveColorOrgans(sh.patch, snap.AudioEnvelope)

	strober := 0
	for _, g := range sh.patch.Groups() {
		ctx := fixture.UpdateContext{Dt: dt, Strobe: state, Clocks: &snap}
		ctx.Strobe.FlashNow = false
		if g.StrobeEnabled() {
			ctx.Strobe.FlashNow = state.FlashNow && strober == pick
			strober++
		}
		g.Update(ctx)
	}

	if sh.publisher != nil {
		if frame, ok := sh.animations.CurrentSnapshot(sh.patch, sh.channels); ok {
			sh.publisher.Publish(frame)
		}
	}
}

// render writes every group into the universe buffers, in insertion order.
// Buffers are not zeroed between frames: patched slices never overlap and
// every slice is fully overwritten.
func (sh *Show) render() {
	state := sh.master.State()
	snap := sh.clocks.Current()
	for _, g := range sh.patch.Groups() {
		if err := g.Render(state, &snap, sh.buffers); err != nil {
			log.Printf("render error: %v", err)
		}
	}
}

func (sh *Show) writePorts() {
	for u, buf := range sh.buffers {
		for _, port := range sh.ports {
			if err := port.Write(u, buf); err != nil {
				log.Printf("dmx write error: %v", err)
			}
		}
	}
}

// Buffers exposes the universe buffers for observability surfaces.
func (sh *Show) Buffers() [][]byte { return sh.buffers }
