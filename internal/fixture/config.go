package fixture

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// LoadPatchFile reads and parses a YAML patch file. Validation beyond basic
// shape happens in PatchAll.
func LoadPatchFile(path string) ([]GroupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read patch file")
	}
	cfgs, err := ParsePatchConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing patch file %s", path)
	}
	return cfgs, nil
}

// ParsePatchConfig parses the YAML patch description: an ordered list of
// entries with a handful of reserved keys; every other key is passed to the
// fixture constructor as an option.
func ParsePatchConfig(data []byte) ([]GroupConfig, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "invalid YAML")
	}
	cfgs := make([]GroupConfig, 0, len(raw))
	for i, entry := range raw {
		cfg, err := parseEntry(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "patch entry %d", i)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func parseEntry(entry map[string]interface{}) (GroupConfig, error) {
	cfg := GroupConfig{Channel: true, Options: Options{}}
	var ok bool
	cfg.Fixture, ok = asString(entry["fixture"])
	if !ok || cfg.Fixture == "" {
		return cfg, errors.New("missing fixture type")
	}
	for key, val := range entry {
		switch key {
		case "fixture":
		case "group":
			name, ok := asString(val)
			if !ok {
				return cfg, errors.New("group must be a string")
			}
			cfg.Group = name
		case "channel":
			b, ok := asBool(val)
			if !ok {
				return cfg, errors.New("channel must be a bool")
			}
			cfg.Channel = b
		case "color_organ":
			b, ok := asBool(val)
			if !ok {
				return cfg, errors.New("color_organ must be a bool")
			}
			cfg.ColorOrgan = b
		case "patches":
			items, ok := val.([]interface{})
			if !ok {
				return cfg, errors.New("patches must be a list")
			}
			for j, item := range items {
				pc, err := parsePatch(item)
				if err != nil {
					return cfg, errors.Wrapf(err, "patch %d", j)
				}
				cfg.Patches = append(cfg.Patches, pc)
			}
		default:
			cfg.Options[key] = val
		}
	}
	return cfg, nil
}

func parsePatch(item interface{}) (PatchConfig, error) {
	pc := PatchConfig{Count: 1}
	fields, ok := item.(map[string]interface{})
	if !ok {
		return pc, errors.New("patch must be a mapping")
	}
	for key, val := range fields {
		switch key {
		case "addr":
			switch addr := val.(type) {
			case map[string]interface{}:
				start, ok := asInt(addr["start"])
				if !ok {
					return pc, errors.New("addr.start must be an int")
				}
				count, ok := asInt(addr["count"])
				if !ok || count < 1 {
					return pc, errors.New("addr.count must be a positive int")
				}
				pc.Addr = start
				pc.Count = count
			default:
				a, ok := asInt(val)
				if !ok {
					return pc, errors.New("addr must be an int or {start, count}")
				}
				pc.Addr = a
			}
		case "universe":
			u, ok := asInt(val)
			if !ok || u < 0 {
				return pc, errors.New("universe must be a non-negative int")
			}
			pc.Universe = u
		case "mirror":
			b, ok := asBool(val)
			if !ok {
				return pc, errors.New("mirror must be a bool")
			}
			pc.Mirror = b
		case "mode":
			m, ok := asString(val)
			if !ok {
				return pc, errors.New("mode must be a string")
			}
			pc.Mode = m
		default:
			// Options are group-level; a misplaced or misspelled key here
			// must not vanish silently.
			return pc, errors.Errorf("unknown patch key %q", key)
		}
	}
	return pc, nil
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v interface{}) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
