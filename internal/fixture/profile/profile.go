// Package profile contains the fixture model library: thin per-model DMX
// translations built on the shared control and render primitives. Each
// model registers its constructor from init, so patching a type only
// requires importing this package.
package profile

import (
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// ControlMap is the control map type used by fixture models, dispatching
// with the full state emitter so handlers can echo to both the OSC and
// channel surfaces.
type ControlMap = osc.ControlMap[fixture.StateEmitter]

// NewControlMap creates an empty fixture control map.
func NewControlMap() *ControlMap {
	return osc.NewControlMap[fixture.StateEmitter]()
}
