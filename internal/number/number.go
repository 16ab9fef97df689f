// Package number provides the bounded scalar types used by control and
// rendering code: unipolar values in [0, 1], bipolar values in [-1, 1],
// and phases that wrap on [0, 1).
package number

import "math"

// Unipolar is a float constrained to [0, 1].
type Unipolar float64

// UnipolarFromFloat clamps v into the unipolar range.
func UnipolarFromFloat(v float64) Unipolar {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return Unipolar(v)
}

// Float returns the value as a float64.
func (u Unipolar) Float() float64 { return float64(u) }

// Invert returns 1 - u.
func (u Unipolar) Invert() Unipolar { return 1 - u }

// Bipolar is a float constrained to [-1, 1].
type Bipolar float64

// BipolarFromFloat clamps v into the bipolar range.
func BipolarFromFloat(v float64) Bipolar {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return Bipolar(v)
}

// Float returns the value as a float64.
func (b Bipolar) Float() float64 { return float64(b) }

// Abs returns the magnitude of the value as a unipolar float.
func (b Bipolar) Abs() Unipolar { return Unipolar(math.Abs(float64(b))) }

// Phase is a float that wraps on [0, 1).
type Phase float64

// PhaseFromFloat wraps v onto [0, 1).
func PhaseFromFloat(v float64) Phase {
	v = v - math.Floor(v)
	// Floor of a negative value epsilon-close to an integer can round up to
	// exactly 1.0.
	if v >= 1 {
		v = 0
	}
	return Phase(v)
}

// Float returns the value as a float64.
func (p Phase) Float() float64 { return float64(p) }

// Add returns the phase advanced by v, wrapped.
func (p Phase) Add(v float64) Phase { return PhaseFromFloat(float64(p) + v) }

// UnipolarToRange scales a unipolar value into an inclusive byte range.
// If end < start, the scale runs downward.
func UnipolarToRange(start, end byte, v Unipolar) byte {
	if end > start {
		return byte(float64(end-start)*v.Float()) + start
	}
	return byte(float64(start-end)*v.Invert().Float()) + end
}

// UnitToByte scales the unipolar range onto [0, 255], rounding to nearest.
func UnitToByte(v Unipolar) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(math.Round(255 * float64(v)))
}

// UnipolarFaderWithDetent coerces the bottom 5% of a fader's throw to a hard
// zero and rescales the rest of the range.
func UnipolarFaderWithDetent(v Unipolar) Unipolar {
	if v.Float() < 0.05 {
		return 0
	}
	return UnipolarFromFloat((v.Float() - 0.05) / 0.95)
}

// BipolarFaderWithDetent coerces the center 5% of a fader's throw to a hard
// zero and rescales both halves of the range.
func BipolarFaderWithDetent(v Bipolar) Bipolar {
	f := v.Float()
	switch {
	case f < -0.05:
		return BipolarFromFloat((f + 0.05) / 0.95)
	case f > 0.05:
		return BipolarFromFloat((f - 0.05) / 0.95)
	default:
		return 0
	}
}

// RampingParameter is a setpoint that approaches its target at a finite rate,
// in units per second.
type RampingParameter struct {
	Target   float64
	current  float64
	rampRate float64
}

// NewRampingParameter creates a parameter at an initial value with the
// provided ramp rate.
func NewRampingParameter(initial, rampRate float64) *RampingParameter {
	return &RampingParameter{Target: initial, current: initial, rampRate: rampRate}
}

// Update advances the current value toward the target by dt seconds.
func (r *RampingParameter) Update(dt float64) {
	delta := r.Target - r.current
	step := r.rampRate * dt
	if math.Abs(step) >= math.Abs(delta) {
		r.current = r.Target
		return
	}
	r.current += math.Copysign(step, delta)
}

// Current returns the present value of the parameter.
func (r *RampingParameter) Current() float64 { return r.current }
