// Package measurement simulates single-outcome measurement and
// decoherence of amplitude vectors.
//
// Measure draws one stochastic sample from the |amplitude|^2 distribution;
// Collapse deterministically projects onto a basis state; and
// MeasureWithDecoherence perturbs a vector with Gaussian noise scaled by a
// rate, reporting the coherence lost. The random source is injectable for
// test determinism.
package measurement
