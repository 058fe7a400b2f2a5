package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/orbits/internal/physics"
	"github.com/san-kum/orbits/internal/sim"
)

// Spectrum is a one-sided power spectrum. Frequencies are in cycles per
// sample.
type Spectrum struct {
	Power     []float64
	Frequency []float64
}

// Peak returns the strongest non-DC bin, or false when there is none.
func (s Spectrum) Peak() (freq, power float64, ok bool) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power, ok = s.Frequency[i], s.Power[i], true
		}
	}
	return freq, power, ok
}

// PowerSpectrum transforms data after removing its mean.
func PowerSpectrum(data []float64) Spectrum {
	n := len(data)
	if n < 2 {
		return Spectrum{}
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	half := n/2 + 1
	s := Spectrum{Power: make([]float64, half), Frequency: make([]float64, half)}
	for i := 0; i < half; i++ {
		a := cmplx.Abs(coeffs[i])
		s.Power[i] = a * a / float64(n)
		s.Frequency[i] = float64(i) / float64(n)
	}
	return s
}

// EnergySpectrum is the power spectrum of the total kinetic energy over a
// recorded trace.
func EnergySpectrum(trace []sim.Sample) Spectrum {
	ke := make([]float64, len(trace))
	for i, s := range trace {
		ke[i] = physics.KineticEnergy(s.Nodes)
	}
	return PowerSpectrum(ke)
}
