package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided power spectrum of series sampled every dt
// time units, after removing its mean. Frequencies are in cycles per time
// unit, starting at zero.
func Spectrum(series []float64, dt float64) (freqs, power []float64, err error) {
	n := len(series)
	if n < 2 {
		return nil, nil, fmt.Errorf("spectrum needs at least 2 samples, got %d", n)
	}
	if dt <= 0 {
		return nil, nil, fmt.Errorf("sample interval must be positive, got %g", dt)
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		a := cmplx.Abs(c)
		power[i] = a * a / float64(n)
	}
	return freqs, power, nil
}

// Dominant returns the frequency with the largest power, ignoring the zero
// bin. It returns 0 when the spectrum has no non-zero bin.
func Dominant(freqs, power []float64) float64 {
	best, at := 0.0, 0.0
	for i := 1; i < len(power) && i < len(freqs); i++ {
		if power[i] > best {
			best, at = power[i], freqs[i]
		}
	}
	return at
}

// Autocorrelation returns the normalized autocorrelation of series for lags
// 0..maxLag. A constant series has no fluctuations and yields nil.
func Autocorrelation(series []float64, maxLag int) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean, variance := stat.MeanVariance(series, nil)
	if n < 2 || variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < n; i++ {
			sum += (series[i] - mean) * (series[i+lag] - mean)
		}
		acf[lag] = sum / (float64(n-1) * variance)
	}
	return acf
}
