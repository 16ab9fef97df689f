package fixture

import "fmt"

// DuplicateKeyError reports two patch entries sharing a group key.
type DuplicateKeyError struct {
	Key GroupKey
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate fixture group key %q", e.Key.Display())
}

// GroupKeyShadowsFixtureTypeError reports a group name colliding with a
// registered fixture type name, which would make OSC group addressing
// ambiguous.
type GroupKeyShadowsFixtureTypeError struct {
	Name string
}

func (e GroupKeyShadowsFixtureTypeError) Error() string {
	return fmt.Sprintf("group name %q shadows a fixture type of the same name", e.Name)
}

// AddressCollisionError reports two instances claiming overlapping address
// ranges in the same universe. Both fixtures are named with their start
// addresses, not the conflicting cell.
type AddressCollisionError struct {
	Universe    int
	FixtureType string
	Start       int
	OtherType   string
	OtherStart  int
}

func (e AddressCollisionError) Error() string {
	return fmt.Sprintf(
		"DMX address collision in universe %d: %s at %d overlaps %s at %d",
		e.Universe, e.FixtureType, e.Start, e.OtherType, e.OtherStart)
}

// InvalidAddressError reports an address outside [1, 512] or a footprint
// running past the end of the universe.
type InvalidAddressError struct {
	FixtureType  string
	Start        int
	ChannelCount int
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf(
		"invalid DMX address for %s: start %d with %d channels (must fit in [1, 512])",
		e.FixtureType, e.Start, e.ChannelCount)
}

// MissingAddressError reports a DMX-consuming fixture patched without an
// address.
type MissingAddressError struct {
	FixtureType string
}

func (e MissingAddressError) Error() string {
	return fmt.Sprintf("fixture %s requires a DMX address", e.FixtureType)
}

// UnexpectedAddressError reports a zero-channel fixture given an address.
type UnexpectedAddressError struct {
	FixtureType string
	Start       int
}

func (e UnexpectedAddressError) Error() string {
	return fmt.Sprintf("fixture %s uses no DMX channels but was given address %d", e.FixtureType, e.Start)
}

// EmptyPatchesError reports a patch entry listing no instances.
type EmptyPatchesError struct {
	Key GroupKey
}

func (e EmptyPatchesError) Error() string {
	return fmt.Sprintf("fixture group %q lists no patches", e.Key.Display())
}

// UnknownFixtureTypeError reports a fixture type with no registered
// constructor.
type UnknownFixtureTypeError struct {
	FixtureType string
}

func (e UnknownFixtureTypeError) Error() string {
	return fmt.Sprintf("unknown fixture type %q", e.FixtureType)
}

// RejectedOptionError wraps a fixture constructor's complaint about an
// option value.
type RejectedOptionError struct {
	FixtureType string
	Option      string
	Err         error
}

func (e RejectedOptionError) Error() string {
	return fmt.Sprintf("fixture %s rejected option %q: %v", e.FixtureType, e.Option, e.Err)
}

func (e RejectedOptionError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup for a group key that is not patched.
type NotFoundError struct {
	Key GroupKey
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no fixture group with key %q", e.Key.Display())
}
