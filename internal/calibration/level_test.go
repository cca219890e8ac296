// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_calibration

import "testing"

func TestVolumeFromMeanBounds(t *testing.T) {
	if v := VolumeFromMean(0); v != 0 {
		t.Errorf("silence must read as 0, got %f", v)
	}
	if v := VolumeFromMean(255); v != 100 {
		t.Errorf("full-scale energy must saturate at 100, got %f", v)
	}
	// Dense spectra saturate quickly on this scale.
	if v := VolumeFromMean(128); v != 100 {
		t.Errorf("half-scale mean still saturates, got %f", v)
	}
}

func TestVolumeFromMeanIntermediate(t *testing.T) {
	// Sparse spectra (mean bin value below ~0.5) land strictly between the
	// rails; that is the regime calibration thresholds operate in.
	for _, mean := range []float64{0.01, 0.0625, 0.25} {
		v := VolumeFromMean(mean)
		if v <= 0 || v >= 100 {
			t.Errorf("mean %f: expected volume strictly inside (0, 100), got %f", mean, v)
		}
	}
}

func TestVolumeFromMeanMonotonic(t *testing.T) {
	means := []float64{0, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 10, 255}
	prev := -1.0
	for _, mean := range means {
		v := VolumeFromMean(mean)
		if v < prev {
			t.Fatalf("volume must be non-decreasing in mean energy: mean %f gave %f after %f", mean, v, prev)
		}
		prev = v
	}
}

func TestVolumeFromBins(t *testing.T) {
	bins := make([]byte, 1024)
	if v := VolumeFromBins(bins); v != 0 {
		t.Errorf("all-zero bins must read as 0, got %f", v)
	}

	bins[10] = 64 // mean 0.0625
	v := VolumeFromBins(bins)
	if v <= 0 || v >= 100 {
		t.Errorf("single active bin must land between the rails, got %f", v)
	}

	if v := VolumeFromBins(nil); v != 0 {
		t.Errorf("empty snapshot must read as 0, got %f", v)
	}
}
