package profile

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
	"github.com/generalelectrix/showrunner/internal/services/wled"
)

func init() {
	fixture.Register("wled", func(opts fixture.Options) (fixture.Profile, error) {
		url, ok := opts.String("url")
		if !ok {
			return fixture.Profile{}, fixture.RejectedOptionError{
				FixtureType: "wled",
				Option:      "url",
				Err:         errors.New("a WLED instance url is required"),
			}
		}
		presets := defaultWledPresets
		if v, ok := opts.Float("presets"); ok {
			if v < 1 || v > 250 {
				return fixture.Profile{}, fixture.RejectedOptionError{
					FixtureType: "wled",
					Option:      "presets",
					Err:         errors.Errorf("preset count %v out of range [1, 250]", v),
				}
			}
			presets = int(v)
		}
		client, err := wled.NewClient(url, url, wled.Defaults())
		if err != nil {
			return fixture.Profile{}, fixture.RejectedOptionError{
				FixtureType: "wled",
				Option:      "url",
				Err:         err,
			}
		}
		return fixture.Profile{Fixture: NewWled(client, presets)}, nil
	})
}

const defaultWledPresets = 8

// Wled drives a WLED pixel controller over its HTTP API instead of DMX. It
// consumes no DMX channels; level, effect speed, and effect size are pushed
// to the instance whenever they change.
type Wled struct {
	level        number.Unipolar
	speed        number.Unipolar
	size         number.Unipolar
	preset       int
	presetLabels []string
	client       *wled.Client
	controls     *ControlMap
}

// NewWled creates the model around a running client.
func NewWled(client *wled.Client, presets int) *Wled {
	w := &Wled{client: client}
	w.presetLabels = make([]string, presets)
	for i := range w.presetLabels {
		w.presetLabels[i] = strconv.Itoa(i)
	}
	w.controls = NewControlMap()
	w.controls.AddUnipolar("Level", func(v number.Unipolar, e fixture.StateEmitter) {
		w.setLevel(v, e)
	})
	w.controls.AddUnipolar("Speed", func(v number.Unipolar, e fixture.StateEmitter) {
		w.setSpeed(v, e)
	})
	w.controls.AddUnipolar("Size", func(v number.Unipolar, e fixture.StateEmitter) {
		w.setSize(v, e)
	})
	w.controls.AddSelector("Preset", w.presetLabels, func(idx int, e fixture.StateEmitter) {
		w.setPreset(idx, e)
	})
	return w
}

func (w *Wled) setLevel(v number.Unipolar, e fixture.StateEmitter) {
	w.level = v
	e.Osc.EmitFloat("Level", v.Float())
	e.EmitChannelLevel(v)
	w.push()
}

func (w *Wled) setSpeed(v number.Unipolar, e fixture.StateEmitter) {
	w.speed = v
	e.Osc.EmitFloat("Speed", v.Float())
	e.EmitChannelKnob(0, v)
	w.push()
}

func (w *Wled) setSize(v number.Unipolar, e fixture.StateEmitter) {
	w.size = v
	e.Osc.EmitFloat("Size", v.Float())
	e.EmitChannelKnob(1, v)
	w.push()
}

func (w *Wled) setPreset(idx int, e fixture.StateEmitter) {
	w.preset = idx
	osc.EmitSelector(e.Osc, "Preset", w.presetLabels, idx)
	var s wled.State
	s.SetPreset(idx)
	w.applyEffect(&s)
	w.client.SetState(s)
}

// push sends the current level and effect parameters to the instance.
func (w *Wled) push() {
	var s wled.State
	s.SetBrightness(int(number.UnipolarToRange(0, 255, w.level)))
	w.applyEffect(&s)
	w.client.SetState(s)
}

func (w *Wled) applyEffect(s *wled.State) {
	s.SetSpeed(int(number.UnipolarToRange(0, 255, w.speed)))
	s.SetSize(int(number.UnipolarToRange(0, 255, w.size)))
}

func (w *Wled) Update(ctx fixture.UpdateContext) {}

func (w *Wled) Control(msg *osc.ControlMessage, e fixture.StateEmitter) (bool, error) {
	return w.controls.Handle(msg, e)
}

func (w *Wled) ControlFromChannel(msg fixture.ChannelControl, e fixture.StateEmitter) bool {
	switch m := msg.(type) {
	case fixture.ChannelLevel:
		w.setLevel(m.Value, e)
		return true
	case fixture.ChannelKnob:
		switch m.Index {
		case 0:
			w.setSpeed(m.Value, e)
			return true
		case 1:
			w.setSize(m.Value, e)
			return true
		}
	}
	return false
}

func (w *Wled) EmitState(e fixture.StateEmitter) {
	e.Osc.EmitFloat("Level", w.level.Float())
	e.EmitChannelLevel(w.level)
	e.Osc.EmitFloat("Speed", w.speed.Float())
	e.EmitChannelKnob(0, w.speed)
	e.Osc.EmitFloat("Size", w.size.Float())
	e.EmitChannelKnob(1, w.size)
	osc.EmitSelector(e.Osc, "Preset", w.presetLabels, w.preset)
}

func (w *Wled) Render(ctx fixture.RenderContext, buf []byte) {}
