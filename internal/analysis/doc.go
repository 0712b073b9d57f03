// Package analysis provides post-run analysis of sampled series.
//
//   - [Spectrum]: one-sided power spectrum of a uniformly sampled series
//   - [Autocorrelation]: normalized autocorrelation of fluctuations
//   - [Dominant]: strongest non-zero frequency of a spectrum
//
// Temperature fluctuations of a Langevin run decay on the 1/γ time scale;
// their autocorrelation and spectrum show whether the thermostat or lattice
// vibrations dominate.
package analysis
