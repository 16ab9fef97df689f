package show

import (
	"math"
	"time"

	"github.com/generalelectrix/showrunner/internal/clocks"
	"github.com/generalelectrix/showrunner/internal/fixture"
	"github.com/generalelectrix/showrunner/internal/number"
)

// Strobe rate fader endpoints in Hz.
const (
	strobeRateMin = 0.5
	strobeRateMax = 40.0
)

// Flash window widths in ticks.
const (
	shortFlashFrames = 1
	longFlashFrames  = 3
)

var strobeMultipliers = []int{1, 2, 3, 4, 8}

var strobeMultiplierLabels = []string{"1", "2", "3", "4", "8"}

// rateFromUnipolar maps the rate fader onto Hz with a quartic curve, giving
// most of the throw to slow rates.
func rateFromUnipolar(v number.Unipolar) float64 {
	f := v.Float()
	sq := f * f
	return strobeRateMin + sq*sq*(strobeRateMax-strobeRateMin)
}

// unipolarFromRate inverts rateFromUnipolar.
func unipolarFromRate(rate float64) number.Unipolar {
	f := (rate - strobeRateMin) / (strobeRateMax - strobeRateMin)
	return number.UnipolarFromFloat(math.Sqrt(math.Sqrt(f)))
}

// quantizeRate coerces a rate to a whole number of ticks per flash, so that
// flashes land on consistent frame boundaries. Rates faster than one flash
// per tick collapse to one flash per tick.
func quantizeRate(rate, dt float64) float64 {
	frames := math.Round(1 / rate / dt)
	if frames < 1 {
		frames = 1
	}
	return 1 / (frames * dt)
}

// tapTempo estimates a rate from the cadence of tap events. Taps more than
// two seconds apart start a fresh estimate.
type tapTempo struct {
	last  time.Time
	sum   float64
	count int
}

const tapResetInterval = 2 * time.Second

// Tap records a tap at time t and returns the current rate estimate in Hz,
// or false if this tap only starts a new cadence.
func (tt *tapTempo) Tap(t time.Time) (float64, bool) {
	defer func() { tt.last = t }()
	interval := t.Sub(tt.last)
	if tt.last.IsZero() || interval > tapResetInterval || interval <= 0 {
		tt.sum = 0
		tt.count = 0
		return 0, false
	}
	tt.sum += interval.Seconds()
	tt.count++
	return float64(tt.count) / tt.sum, true
}

// StrobeClock schedules master strobe flashes. Flashes start when the phase
// clock wraps while the strobe is on, or one tick after a manual flash is
// queued. An active flash exposes short and long windows that subscribing
// fixtures use to gate their level channel.
type StrobeClock struct {
	phase      clocks.Phasor
	rateVal    number.Unipolar
	multiplier int
	setFromTap bool
	tap        tapTempo
	now        func() time.Time

	on        bool
	resync    bool
	intensity number.Unipolar

	flashQueued  bool
	flashActive  bool
	flashCounter int
	frameCounter int

	indicator      bool
	indicatorTicks int
}

// NewStrobeClock creates a strobe clock at the slowest rate, strobe off.
func NewStrobeClock() *StrobeClock {
	return &StrobeClock{multiplier: 1, intensity: 1, now: time.Now}
}

func (s *StrobeClock) appliedRate(dt float64) float64 {
	rate := rateFromUnipolar(s.rateVal) * float64(s.multiplier)
	if s.setFromTap {
		// Tap cadence fidelity beats frame alignment.
		return rate
	}
	return quantizeRate(rate, dt)
}

// advanceClock moves the flash cadence forward one tick and reports whether
// it wrapped. Quantized rates count whole frames so flashes land exactly on
// frame boundaries; tap-derived rates accumulate phase.
func (s *StrobeClock) advanceClock(dt float64) bool {
	if s.setFromTap {
		s.phase.Rate = s.appliedRate(dt)
		s.phase.Update(dt)
		return s.phase.Ticked()
	}
	frames := int(math.Round(1 / s.appliedRate(dt) / dt))
	if frames < 1 {
		frames = 1
	}
	s.frameCounter++
	if s.frameCounter >= frames {
		s.frameCounter = 0
		return true
	}
	return false
}

// SetOn turns master strobing on or off. Turning it on restarts the flash
// cadence with a flash on the next tick.
func (s *StrobeClock) SetOn(on bool) {
	if on && !s.on {
		s.resync = true
	}
	s.on = on
}

// On reports whether master strobing is on.
func (s *StrobeClock) On() bool { return s.on }

// SetRate positions the rate fader, discarding any tap-derived rate.
func (s *StrobeClock) SetRate(v number.Unipolar) {
	s.rateVal = v
	s.setFromTap = false
}

// Rate returns the current rate fader position.
func (s *StrobeClock) Rate() number.Unipolar { return s.rateVal }

// SetIntensity sets the master flash intensity.
func (s *StrobeClock) SetIntensity(v number.Unipolar) { s.intensity = v }

// Intensity returns the master flash intensity.
func (s *StrobeClock) Intensity() number.Unipolar { return s.intensity }

// SetMultiplier selects a rate multiplier by index into the multiplier
// menu.
func (s *StrobeClock) SetMultiplier(idx int) {
	if idx >= 0 && idx < len(strobeMultipliers) {
		s.multiplier = strobeMultipliers[idx]
	}
}

// MultiplierIndex returns the selected position in the multiplier menu.
func (s *StrobeClock) MultiplierIndex() int {
	for i, m := range strobeMultipliers {
		if m == s.multiplier {
			return i
		}
	}
	return 0
}

// Tap records a tap sync event. When the tap cadence yields a rate, the
// fader position moves to match and the rate is applied unquantized. The
// boolean reports whether the fader position changed.
func (s *StrobeClock) Tap() bool {
	rate, ok := s.tap.Tap(s.now())
	if !ok {
		return false
	}
	if rate < strobeRateMin {
		rate = strobeRateMin
	}
	if rate > strobeRateMax {
		rate = strobeRateMax
	}
	s.rateVal = unipolarFromRate(rate)
	s.setFromTap = true
	return true
}

// QueueFlash requests a single flash on the next tick, regardless of
// whether the strobe is on.
func (s *StrobeClock) QueueFlash() { s.flashQueued = true }

// Indicator reports the short-lived beat light state for tap sync feedback.
func (s *StrobeClock) Indicator() bool { return s.indicator }

// Update advances the clock by one tick and returns the strobe snapshot.
// The second return reports whether the beat indicator changed.
func (s *StrobeClock) Update(dt float64) (fixture.StrobeState, bool) {
	ticked := s.advanceClock(dt)
	if s.resync {
		// The enable tick is the downbeat of the new cadence.
		s.phase.Reset()
		s.frameCounter = 0
		ticked = true
		s.resync = false
	}

	flashNow := false
	if (s.on && ticked) || s.flashQueued {
		s.flashActive = true
		s.flashCounter = 0
		s.flashQueued = false
		flashNow = true
	}

	state := fixture.StrobeState{
		On:        s.on,
		FlashNow:  flashNow,
		Intensity: s.intensity,
		Rate:      s.rateVal,
	}
	if s.flashActive {
		state.ShortFlashOn = s.flashCounter < shortFlashFrames
		state.LongFlashOn = s.flashCounter < longFlashFrames
		s.flashCounter++
		if s.flashCounter >= longFlashFrames {
			s.flashActive = false
		}
	}

	indicatorChanged := s.updateIndicator(flashNow)
	return state, indicatorChanged
}

// The beat light holds for two ticks so it is visible at fast rates.
const indicatorHoldTicks = 2

func (s *StrobeClock) updateIndicator(flashNow bool) bool {
	if flashNow {
		s.indicatorTicks = indicatorHoldTicks
	} else if s.indicatorTicks > 0 {
		s.indicatorTicks--
	}
	on := s.indicatorTicks > 0
	changed := on != s.indicator
	s.indicator = on
	return changed
}
