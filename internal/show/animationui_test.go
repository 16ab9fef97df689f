package show

import (
	"testing"

	scosc "github.com/scgolang/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/midi"
)

func TestAnimatorSelectionPerChannel(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	_, _, s := recordingSurfaces()

	require.NoError(t, anim.SelectAnimator(2, patch, channels, s))
	require.NoError(t, channels.SelectChannel(1, patch, anim, s))
	require.NoError(t, anim.SelectAnimator(1, patch, channels, s))

	// Each channel remembers its own slot.
	require.NoError(t, channels.SelectChannel(0, patch, anim, s))
	snap, ok := anim.CurrentSnapshot(patch, channels)
	require.True(t, ok)
	assert.Equal(t, 2, snap.Animator)
	assert.Equal(t, 0, snap.Channel)
}

func TestAnimatorSelectOutOfRange(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	_, _, s := recordingSurfaces()

	assert.Error(t, anim.SelectAnimator(fixture.NAnimators, patch, channels, s))
}

func TestSetTargetValidatesBound(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	out, _, s := recordingSurfaces()

	// The color model has three targets.
	require.NoError(t, anim.SetTarget(2, patch, channels, s))
	assert.True(t, out.contains("/Animation/Target/Val"))

	err := anim.SetTarget(3, patch, channels, s)
	require.Error(t, err)
	assert.IsType(t, TargetOutOfRangeError{}, err)
}

func TestAnimationControlForwardsToCurrentAnimator(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	_, _, s := recordingSurfaces()

	require.NoError(t, anim.Control(controlMsg(t, "/Animation/Size", scosc.Float(0.8)), patch, channels, s))
	snap, ok := anim.CurrentSnapshot(patch, channels)
	require.True(t, ok)
	assert.InDelta(t, 0.8, snap.State.Size.Float(), 1e-6)

	err := anim.Control(controlMsg(t, "/Animation/Nonsense", scosc.Float(1)), patch, channels, s)
	assert.Error(t, err)
}

func TestAnimationClipboard(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	_, _, s := recordingSurfaces()

	require.NoError(t, anim.Control(controlMsg(t, "/Animation/Size", scosc.Float(0.8)), patch, channels, s))
	require.NoError(t, anim.Control(controlMsg(t, "/Animation/Copy", scosc.Float(1)), patch, channels, s))

	require.NoError(t, anim.SelectAnimator(3, patch, channels, s))
	require.NoError(t, anim.Control(controlMsg(t, "/Animation/Paste", scosc.Float(1)), patch, channels, s))

	snap, ok := anim.CurrentSnapshot(patch, channels)
	require.True(t, ok)
	assert.Equal(t, 3, snap.Animator)
	assert.InDelta(t, 0.8, snap.State.Size.Float(), 1e-6)
}

func TestAnimationAdvanceWraps(t *testing.T) {
	patch, channels, anim := twoChannelSetup(t)
	_, _, s := recordingSurfaces()

	for i := 1; i <= fixture.NAnimators; i++ {
		handled, err := anim.HandleMidi(midi.AnimationAdvance{}, patch, channels, s)
		require.True(t, handled)
		require.NoError(t, err)
		snap, ok := anim.CurrentSnapshot(patch, channels)
		require.True(t, ok)
		assert.Equal(t, i%fixture.NAnimators, snap.Animator)
	}
}

func TestResetAnimationsRestoresDefaults(t *testing.T) {
	sh := newTestShow(t, colorConfig(""), nil)
	require.NoError(t, sh.dispatchOsc(controlMsg(t, "/Animation/Size", scosc.Float(0.8))))
	require.NoError(t, sh.dispatchOsc(controlMsg(t, "/Meta/ResetAnimations", scosc.Float(1))))

	snap, ok := sh.animations.CurrentSnapshot(sh.patch, sh.channels)
	require.True(t, ok)
	assert.Zero(t, snap.State.Size.Float())
}
