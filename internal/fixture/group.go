package fixture

import (
	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/animation"
	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// NAnimators is the number of animators owned by every animated group.
const NAnimators = 4

// GroupKey uniquely identifies a fixture group: the fixture type plus an
// optional group name for rigs with several independently controlled groups
// of the same model.
type GroupKey struct {
	FixtureType string
	Name        string
}

// Display returns the name clients address the group by.
func (k GroupKey) Display() string {
	if k.Name != "" {
		return k.Name
	}
	return k.FixtureType
}

// InstanceConfig describes one physical fixture in a group.
type InstanceConfig struct {
	// DMXIndex is the 0-based index into the universe buffer, nil for
	// non-DMX instances.
	DMXIndex     *int
	Universe     int
	ChannelCount int
	Mirror       bool
	RenderMode   *int
}

// Strober is implemented by fixture models that participate in master
// strobing.
type Strober interface {
	StrobeResponse() StrobeResponse
}

// ChannelControlled is implemented by fixture models that accept
// channel-scoped controls (level, knobs).
type ChannelControlled interface {
	// ControlFromChannel reports whether the model claimed the message.
	ControlFromChannel(msg ChannelControl, e StateEmitter) bool
}

// ChannelToggleStrobe flips the group's strobe participation. Handled by the
// group itself, not the model.
type ChannelToggleStrobe struct{}

func (ChannelToggleStrobe) isChannelControl() {}

// Group binds one fixture model to its physical instances and animators.
type Group struct {
	key       GroupKey
	model     Fixture
	instances []InstanceConfig

	animators     [NAnimators]*animation.Targeted
	animated      Animated
	strober       Strober
	strobeEnabled bool
}

// NewGroup wraps a model. Animators are allocated only for animated models.
func NewGroup(key GroupKey, model Fixture) *Group {
	g := &Group{key: key, model: model}
	if a, ok := model.(Animated); ok {
		g.animated = a
		for i := range g.animators {
			g.animators[i] = &animation.Targeted{Animator: animation.New()}
		}
	}
	if s, ok := model.(Strober); ok && s.StrobeResponse() != StrobeNone {
		g.strober = s
		g.strobeEnabled = true
	}
	return g
}

// Key returns the group's key.
func (g *Group) Key() GroupKey { return g.key }

// Patch appends a physical instance.
func (g *Group) Patch(cfg InstanceConfig) {
	g.instances = append(g.instances, cfg)
}

// Instances returns the physical instance configs in patch order.
func (g *Group) Instances() []InstanceConfig { return g.instances }

// IsAnimated reports whether the group carries animators.
func (g *Group) IsAnimated() bool { return g.animated != nil }

// Animator returns animator i, or nil for non-animated groups.
func (g *Group) Animator(i int) *animation.Targeted {
	if g.animated == nil || i < 0 || i >= NAnimators {
		return nil
	}
	return g.animators[i]
}

// AnimationTargets lists the model's animatable parameters, nil for
// non-animated groups.
func (g *Group) AnimationTargets() []string {
	if g.animated == nil {
		return nil
	}
	return g.animated.AnimationTargets()
}

// ResetAnimations returns every animator to defaults.
func (g *Group) ResetAnimations() {
	for _, ta := range g.animators {
		if ta != nil {
			ta.Animator.Reset()
			ta.Target = 0
		}
	}
}

// IsStrober reports whether the model participates in master strobing.
func (g *Group) IsStrober() bool { return g.strober != nil }

// StrobeEnabled reports whether strobe participation is currently on.
func (g *Group) StrobeEnabled() bool { return g.strober != nil && g.strobeEnabled }

// Update advances the model and animators by one tick. The caller has
// already masked FlashNow via the flash distributor; the group additionally
// masks the whole strobe state if it is not participating.
func (g *Group) Update(ctx UpdateContext) {
	if !g.StrobeEnabled() {
		ctx.Strobe = StrobeState{Rate: ctx.Strobe.Rate}
	}
	for _, ta := range g.animators {
		if ta != nil {
			ta.Animator.Update(ctx.Dt)
		}
	}
	g.model.Update(ctx)
}

// Render writes every DMX-addressed instance into its universe buffer
// slice. Instance i of N renders with phase offset i/N.
func (g *Group) Render(strobe StrobeState, snap *clocks.Snapshot, buffers [][]byte) error {
	if !g.StrobeEnabled() {
		strobe = StrobeState{Rate: strobe.Rate}
	}
	n := len(g.instances)
	for i, cfg := range g.instances {
		if cfg.DMXIndex == nil {
			continue
		}
		if cfg.Universe >= len(buffers) {
			return errors.Errorf("%s: instance %d patched in unallocated universe %d", g.key.Display(), i, cfg.Universe)
		}
		buf := buffers[cfg.Universe][*cfg.DMXIndex : *cfg.DMXIndex+cfg.ChannelCount]
		ctx := RenderContext{
			PhaseOffset: number.PhaseFromFloat(float64(i) / float64(n)),
			Instance:    i,
			Mirror:      cfg.Mirror,
			RenderMode:  cfg.RenderMode,
			Strobe:      strobe,
		}
		if g.animated != nil {
			anims := animation.TargetedValues(g.animators[:], ctx.PhaseOffset, i, snap)
			g.animated.RenderWithAnimations(ctx, anims, buf)
		} else if na, ok := g.model.(NonAnimated); ok {
			na.Render(ctx, buf)
		}
	}
	return nil
}

// Control routes a group-addressed control message to the model. An
// unclaimed message is an error, with the group key as context.
func (g *Group) Control(msg *osc.ControlMessage, e StateEmitter) error {
	if msg.Control() == "StrobeEnabled" {
		v, err := msg.Bool()
		if err != nil {
			return errors.Wrap(err, g.key.Display())
		}
		g.setStrobeEnabled(v, e)
		return nil
	}
	handled, err := g.model.Control(msg, e)
	if err != nil {
		return errors.Wrap(err, g.key.Display())
	}
	if !handled {
		return errors.Errorf("%s: no control matching %s", g.key.Display(), msg.Addr())
	}
	return nil
}

// ControlFromChannel forwards a channel-scoped message, reporting whether
// anything claimed it.
func (g *Group) ControlFromChannel(msg ChannelControl, e StateEmitter) bool {
	if _, ok := msg.(ChannelToggleStrobe); ok {
		if g.strober == nil {
			return false
		}
		g.setStrobeEnabled(!g.strobeEnabled, e)
		return true
	}
	if cc, ok := g.model.(ChannelControlled); ok {
		return cc.ControlFromChannel(msg, e)
	}
	return false
}

// EmitState sends the full control state of the group.
func (g *Group) EmitState(e StateEmitter) {
	if g.strober != nil {
		e.Osc.EmitBool("StrobeEnabled", g.strobeEnabled)
	}
	g.model.EmitState(e)
}

// AdoptState carries the runtime state of a surviving group across a
// repatch: the model itself plus animators and strobe participation. The
// fresh instance configs stay.
func (g *Group) AdoptState(old *Group) {
	g.model = old.model
	g.animated = old.animated
	g.strober = old.strober
	g.strobeEnabled = old.strobeEnabled
	g.animators = old.animators
}

func (g *Group) setStrobeEnabled(v bool, e StateEmitter) {
	g.strobeEnabled = v
	e.Osc.EmitBool("StrobeEnabled", v)
}
