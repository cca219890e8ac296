// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_portaudio

import (
	"math"
	"sync"

	"github.com/rapidaai/capture/pkg/utils"
)

// Decibel rails for byte scaling, matching the browser analyzer the widget
// originally ran against.
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// analyzer converts the most recent fftSize PCM samples into byte-valued
// frequency bins: windowed FFT, per-bin magnitude, exponential smoothing,
// then a dB mapping onto 0–255.
type analyzer struct {
	mu        sync.Mutex
	fftSize   int
	smoothing float64
	window    []float32
	hann      []float64
	smoothed  []float64
	released  bool
}

func newAnalyzer(fftSize int, smoothing float64) *analyzer {
	return &analyzer{
		fftSize:   fftSize,
		smoothing: utils.Clamp(smoothing, 0, 0.99),
		hann:      hannWindow(fftSize),
		smoothed:  make([]float64, fftSize/2),
	}
}

func (a *analyzer) FFTSize() int { return a.fftSize }

// push appends captured samples, keeping only the newest fftSize of them.
func (a *analyzer) push(samples []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return
	}
	a.window = append(a.window, samples...)
	if len(a.window) > a.fftSize {
		a.window = a.window[len(a.window)-a.fftSize:]
	}
}

// ByteFrequencyData fills dst with the current bins and returns how many
// were written (at most fftSize/2). A short window is zero-padded.
func (a *analyzer) ByteFrequencyData(dst []byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.fftSize / 2
	if len(dst) < n {
		n = len(dst)
	}
	if a.released {
		for i := 0; i < n; i++ {
			dst[i] = 0
		}
		return n
	}

	x := make([]complex128, a.fftSize)
	for i, s := range a.window {
		x[i] = complex(float64(s)*a.hann[i], 0)
	}
	fftRadix2(x)

	for k := 0; k < n; k++ {
		mag := cmplxAbs(x[k]) / float64(a.fftSize)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag

		db := 20 * math.Log10(math.Max(a.smoothed[k], 1e-12))
		scaled := (db - minDecibels) / (maxDecibels - minDecibels) * 255
		dst[k] = byte(utils.Clamp(scaled, 0, 255))
	}
	return n
}

func (a *analyzer) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = true
	a.window = nil
	return nil
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
