package fixture

import (
	"fmt"

	"github.com/pkg/errors"
)

// Options holds group- or instance-level option values from the patch file.
type Options map[string]interface{}

// String reads a string option.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float reads a numeric option.
func (o Options) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// RenderMode is one alternate output layout of a fixture model. Mode
// indexes are positions in the profile's mode slice, derived at startup;
// config files select modes by name only.
type RenderMode struct {
	Name         string
	ChannelCount int
}

// Profile is a constructed fixture model plus its channel layout.
type Profile struct {
	Fixture Fixture
	// ChannelCount is the DMX footprint in the default render mode. Zero
	// means the model consumes no DMX channels.
	ChannelCount int
	// RenderModes lists alternate layouts, if the model has any.
	RenderModes []RenderMode
}

// ModeIndex resolves a render mode name to its index.
func (p Profile) ModeIndex(name string) (int, bool) {
	for i, m := range p.RenderModes {
		if m.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ModeChannelCount returns the footprint for a mode index, nil meaning the
// default.
func (p Profile) ModeChannelCount(mode *int) int {
	if mode == nil || *mode < 0 || *mode >= len(p.RenderModes) {
		return p.ChannelCount
	}
	return p.RenderModes[*mode].ChannelCount
}

// Constructor builds a fixture model from its group options.
type Constructor func(opts Options) (Profile, error)

var registry = make(map[string]Constructor)

// Register installs a fixture constructor under its type name. Profiles
// call this from init; registering the same name twice panics.
func Register(name string, ctor Constructor) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("fixture type %q registered twice", name))
	}
	registry[name] = ctor
}

// IsRegisteredType reports whether a fixture type name is known.
func IsRegisteredType(name string) bool {
	_, ok := registry[name]
	return ok
}

// RegisteredTypes returns the known fixture type names.
func RegisteredTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func construct(name string, opts Options) (Profile, error) {
	ctor, ok := registry[name]
	if !ok {
		return Profile{}, UnknownFixtureTypeError{FixtureType: name}
	}
	p, err := ctor(opts)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "constructing fixture %s", name)
	}
	return p, nil
}
