package show

import (
	scosc "github.com/scgolang/osc"

	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// discardEmitter swallows state emission. Color organ level writes happen
// every tick; echoing them would flood every surface.
type discardEmitter struct{}

func (discardEmitter) EmitOsc(osc.Talkback, scosc.Message) {}

func silentEmitter(entity string) fixture.StateEmitter {
	return fixture.StateEmitter{Osc: osc.ScopedEmitter{Entity: entity, Out: discardEmitter{}}}
}

// driveColorOrgans pipes the audio envelope into the level of every group
// flagged as a color organ.
func driveColorOrgans(patch *fixture.Patch, level number.Unipolar) {
	for _, key := range patch.ColorOrganKeys() {
		group, err := patch.Get(key)
		if err != nil {
			continue
		}
		group.ControlFromChannel(fixture.ChannelLevel{Value: level}, silentEmitter(key.Display()))
	}
}
