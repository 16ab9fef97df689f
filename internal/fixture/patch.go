package fixture

import "github.com/pkg/errors"

// UniverseSize is the number of DMX channels in one universe.
const UniverseSize = 512

// GroupConfig is one parsed patch-file entry.
type GroupConfig struct {
	Fixture    string
	Group      string
	Channel    bool
	ColorOrgan bool
	Options    Options
	Patches    []PatchConfig
}

// Key returns the group key this entry creates.
func (c GroupConfig) Key() GroupKey {
	return GroupKey{FixtureType: c.Fixture, Name: c.Group}
}

// PatchConfig is one physical instance (or a consecutive run of them).
type PatchConfig struct {
	// Addr is the 1-based DMX start address, 0 for non-DMX instances.
	Addr int
	// Count patches this many instances at consecutive addresses.
	Count    int
	Universe int
	Mirror   bool
	// Mode selects a render mode by name for this instance.
	Mode string
}

type allocCell struct {
	fixtureType string
	start       int
}

// Patch owns every fixture group, in insertion order, plus the address
// allocation table used to detect collisions at patch time.
type Patch struct {
	groups []*Group
	index  map[GroupKey]int
	byName map[string]int

	// alloc maps universe → 0-based channel index → occupying fixture.
	alloc         map[int]map[int]allocCell
	universeCount int

	channels    []GroupKey
	colorOrgans []GroupKey
}

// PatchAll constructs a patch atomically from parsed config entries. Any
// error leaves no partial state: the patch under construction is discarded.
func PatchAll(cfgs []GroupConfig) (*Patch, error) {
	p := &Patch{
		index:  make(map[GroupKey]int),
		byName: make(map[string]int),
		alloc:  make(map[int]map[int]allocCell),
	}
	for _, cfg := range cfgs {
		if err := p.patchGroup(cfg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Patch) patchGroup(cfg GroupConfig) error {
	key := cfg.Key()
	if cfg.Group != "" && IsRegisteredType(cfg.Group) {
		return GroupKeyShadowsFixtureTypeError{Name: cfg.Group}
	}
	if _, ok := p.index[key]; ok {
		return DuplicateKeyError{Key: key}
	}
	if _, ok := p.byName[key.Display()]; ok {
		return DuplicateKeyError{Key: key}
	}
	if len(cfg.Patches) == 0 {
		return EmptyPatchesError{Key: key}
	}
	profile, err := construct(cfg.Fixture, cfg.Options)
	if err != nil {
		return err
	}
	group := NewGroup(key, profile.Fixture)
	for _, pc := range cfg.Patches {
		if err := p.patchInstances(group, profile, cfg.Fixture, pc); err != nil {
			return err
		}
	}
	p.index[key] = len(p.groups)
	p.byName[key.Display()] = len(p.groups)
	p.groups = append(p.groups, group)
	if cfg.Channel {
		p.channels = append(p.channels, key)
	}
	if cfg.ColorOrgan {
		p.colorOrgans = append(p.colorOrgans, key)
	}
	return nil
}

func (p *Patch) patchInstances(group *Group, profile Profile, fixtureType string, pc PatchConfig) error {
	var mode *int
	if pc.Mode != "" {
		idx, ok := profile.ModeIndex(pc.Mode)
		if !ok {
			return RejectedOptionError{
				FixtureType: fixtureType,
				Option:      "mode",
				Err:         errors.Errorf("unknown render mode %q", pc.Mode),
			}
		}
		mode = &idx
	}
	channelCount := profile.ModeChannelCount(mode)
	count := pc.Count
	if count < 1 {
		count = 1
	}

	if channelCount == 0 {
		if pc.Addr != 0 {
			return UnexpectedAddressError{FixtureType: fixtureType, Start: pc.Addr}
		}
		for i := 0; i < count; i++ {
			group.Patch(InstanceConfig{Universe: pc.Universe, Mirror: pc.Mirror, RenderMode: mode})
		}
		return nil
	}
	if pc.Addr == 0 {
		return MissingAddressError{FixtureType: fixtureType}
	}

	for i := 0; i < count; i++ {
		start := pc.Addr + i*channelCount
		if err := p.allocate(pc.Universe, start, channelCount, fixtureType); err != nil {
			return err
		}
		idx := start - 1
		group.Patch(InstanceConfig{
			DMXIndex:     &idx,
			Universe:     pc.Universe,
			ChannelCount: channelCount,
			Mirror:       pc.Mirror,
			RenderMode:   mode,
		})
		if pc.Universe+1 > p.universeCount {
			p.universeCount = pc.Universe + 1
		}
	}
	return nil
}

// allocate claims [start, start+count) in the universe, probing every cell
// before inserting any.
func (p *Patch) allocate(universe, start, count int, fixtureType string) error {
	if start < 1 || start+count-1 > UniverseSize {
		return InvalidAddressError{FixtureType: fixtureType, Start: start, ChannelCount: count}
	}
	cells := p.alloc[universe]
	if cells == nil {
		cells = make(map[int]allocCell)
		p.alloc[universe] = cells
	}
	for i := start - 1; i < start-1+count; i++ {
		if occ, ok := cells[i]; ok {
			return AddressCollisionError{
				Universe:    universe,
				FixtureType: fixtureType,
				Start:       start,
				OtherType:   occ.fixtureType,
				OtherStart:  occ.start,
			}
		}
	}
	for i := start - 1; i < start-1+count; i++ {
		cells[i] = allocCell{fixtureType: fixtureType, start: start}
	}
	return nil
}

// Repatch builds a new patch from cfgs and swaps it in, adopting the
// runtime state of every group whose key survives. All-or-nothing: on error
// the receiver is untouched. Fails if the new patch needs strictly more
// universes than currently allocated, since the output buffers are sized at
// startup.
func (p *Patch) Repatch(cfgs []GroupConfig) error {
	np, err := PatchAll(cfgs)
	if err != nil {
		return err
	}
	if np.universeCount > p.universeCount {
		return errors.Errorf(
			"repatch needs %d universes but only %d are allocated",
			np.universeCount, p.universeCount)
	}
	for _, g := range np.groups {
		if old, err := p.Get(g.Key()); err == nil {
			g.AdoptState(old)
		}
	}
	*p = *np
	return nil
}

// Get returns the group with the given key.
func (p *Patch) Get(key GroupKey) (*Group, error) {
	i, ok := p.index[key]
	if !ok {
		return nil, NotFoundError{Key: key}
	}
	return p.groups[i], nil
}

// ByName returns the group whose display name matches, as used for OSC
// group dispatch.
func (p *Patch) ByName(name string) (*Group, bool) {
	i, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	return p.groups[i], true
}

// Groups returns all groups in insertion order.
func (p *Patch) Groups() []*Group { return p.groups }

// UniverseCount returns the number of universes the patch spans.
func (p *Patch) UniverseCount() int { return p.universeCount }

// ChannelKeys returns the keys assigned to logical channels, in insertion
// order.
func (p *Patch) ChannelKeys() []GroupKey { return p.channels }

// ColorOrganKeys returns the keys flagged for a color organ sidecar.
func (p *Patch) ColorOrganKeys() []GroupKey { return p.colorOrgans }

// StroberCount returns the number of groups currently participating in
// master strobing, sizing the flash distributor.
func (p *Patch) StroberCount() int {
	n := 0
	for _, g := range p.groups {
		if g.StrobeEnabled() {
			n++
		}
	}
	return n
}
