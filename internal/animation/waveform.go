// Package animation implements the per-group animators: waveform generators
// driven by the internal phasor or a bank clock, targeting a parameter of an
// animated fixture model.
package animation

import "math"

// Waveform selects the shape of an animator's output.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Sawtooth
)

// WaveformLabels lists the selectable waveforms in control-surface order.
var WaveformLabels = []string{"Sine", "Triangle", "Square", "Sawtooth"}

// Eval computes the waveform value at the given phase, in [-1, 1].
// Smoothing softens the discontinuities of square and sawtooth by converting
// the jumps into linear ramps occupying up to a quarter period each. Duty
// cycle compresses the waveform into the leading fraction of the period,
// outputting zero for the remainder.
func (w Waveform) Eval(phase, smoothing, duty float64) float64 {
	phase = wrap(phase)
	if duty <= 0 {
		return 0
	}
	if duty < 1 {
		if phase >= duty {
			return 0
		}
		phase = phase / duty
	}
	switch w {
	case Sine:
		return math.Sin(2 * math.Pi * phase)
	case Triangle:
		return triangle(phase)
	case Square:
		return square(phase, smoothing*0.25)
	case Sawtooth:
		return sawtooth(phase, smoothing*0.25)
	default:
		return 0
	}
}

func triangle(p float64) float64 {
	if p < 0.25 {
		return 4 * p
	}
	if p < 0.75 {
		return 2 - 4*p
	}
	return 4*p - 4
}

// square is +1 for the first half period and -1 for the second, with ramped
// transitions of width 2*ramp centered on the edges.
func square(p, ramp float64) float64 {
	if ramp <= 0 {
		if p < 0.5 {
			return 1
		}
		return -1
	}
	switch {
	case p < ramp:
		return p / ramp
	case p < 0.5-ramp:
		return 1
	case p < 0.5+ramp:
		return (0.5 - p) / ramp
	case p < 1-ramp:
		return -1
	default:
		return (p - 1) / ramp
	}
}

// sawtooth rises linearly from -1 to 1, with the reset smeared over 2*ramp.
func sawtooth(p, ramp float64) float64 {
	if ramp <= 0 {
		return 2*p - 1
	}
	if p < 1-2*ramp {
		return (2*p - (1 - 2*ramp)) / (1 - 2*ramp)
	}
	// Ramp back down from +1 to -1 so the wrap is continuous.
	return 1 - (p-(1-2*ramp))/ramp
}

func wrap(p float64) float64 {
	p = math.Mod(p, 1)
	if p < 0 {
		p += 1
	}
	return p
}
