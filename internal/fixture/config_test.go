package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePatch = `
- fixture: test_triple
  group: walls
  channel: true
  color_organ: true
  kind: rgbw
  patches:
    - addr: 1
    - addr: { start: 17, count: 2 }
      universe: 1
      mirror: true
      mode: rgb
- fixture: test_single
  channel: false
  patches:
    - addr: 100
`

func TestParsePatchConfig(t *testing.T) {
	cfgs, err := ParsePatchConfig([]byte(samplePatch))
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	walls := cfgs[0]
	assert.Equal(t, "test_triple", walls.Fixture)
	assert.Equal(t, "walls", walls.Group)
	assert.True(t, walls.Channel)
	assert.True(t, walls.ColorOrgan)
	kind, ok := walls.Options.String("kind")
	require.True(t, ok)
	assert.Equal(t, "rgbw", kind)

	require.Len(t, walls.Patches, 2)
	assert.Equal(t, PatchConfig{Addr: 1, Count: 1}, walls.Patches[0])
	assert.Equal(t, PatchConfig{
		Addr: 17, Count: 2, Universe: 1, Mirror: true, Mode: "rgb",
	}, walls.Patches[1])

	// channel defaults to true; here it is explicitly off.
	assert.False(t, cfgs[1].Channel)
}

func TestParsePatchConfigDefaults(t *testing.T) {
	cfgs, err := ParsePatchConfig([]byte("- fixture: test_single\n  patches:\n    - addr: 5\n"))
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.True(t, cfgs[0].Channel)
	assert.False(t, cfgs[0].ColorOrgan)
	assert.Equal(t, PatchConfig{Addr: 5, Count: 1}, cfgs[0].Patches[0])
}

func TestParsePatchConfigErrors(t *testing.T) {
	_, err := ParsePatchConfig([]byte("- group: nameless\n  patches: []\n"))
	assert.Error(t, err)

	_, err = ParsePatchConfig([]byte("- fixture: test_single\n  patches:\n    - addr: {start: 1}\n"))
	assert.Error(t, err)

	_, err = ParsePatchConfig([]byte("not yaml: ["))
	assert.Error(t, err)
}

func TestParsePatchConfigRejectsUnknownPatchKey(t *testing.T) {
	// A group option misplaced on a patch entry must error, not vanish.
	_, err := ParsePatchConfig([]byte("- fixture: test_single\n  patches:\n    - addr: 1\n      kind: rgbw\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown patch key "kind"`)
}
