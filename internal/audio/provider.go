// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import "context"

// ContextState describes whether an analysis context is delivering data.
type ContextState string

const (
	ContextRunning   ContextState = "running"
	ContextSuspended ContextState = "suspended"
	ContextClosed    ContextState = "closed"
)

// ContextOptions configure analysis context creation. SampleRate 0 asks the
// capture subsystem for its default rate.
type ContextOptions struct {
	SampleRate  int
	LatencyHint string
}

// InputSource is an opaque handle to a live audio input (a device name, a
// stream, a scripted test source). The provider decides what it accepts.
type InputSource interface{}

// Analyzer exposes frequency-domain energy snapshots of whatever source is
// connected to it.
type Analyzer interface {
	// FFTSize returns the configured resolution. ByteFrequencyData fills
	// at most FFTSize/2 bins.
	FFTSize() int

	// ByteFrequencyData copies the current byte-valued frequency bins into
	// dst and returns the number of bins written.
	ByteFrequencyData(dst []byte) int

	// Release frees the analyzer. Safe to call more than once.
	Release() error
}

// SourceNode is a connectable wrapper around a live input.
type SourceNode interface {
	Connect(analyzer Analyzer) error
	// Disconnect detaches the source. Safe to call more than once.
	Disconnect() error
}

// AnalysisContext owns the capture-subsystem resources for one analysis
// session: a negotiated sample rate, source wrapping and analyzer creation.
type AnalysisContext interface {
	// SampleRate returns the granted rate, which may differ from the
	// requested one after fallback negotiation.
	SampleRate() int

	State() ContextState

	// Resume activates a suspended context. A no-op when already running.
	Resume(ctx context.Context) error

	NewSource(input InputSource) (SourceNode, error)

	NewAnalyzer(fftSize int, smoothing float64) (Analyzer, error)

	// Close releases the context. Safe to call more than once.
	Close() error
}

// AnalysisProvider creates analysis contexts. A rejected sample rate must
// fail cleanly: the caller retries with the subsystem default and the
// provider must not be corrupted by the earlier failure.
type AnalysisProvider interface {
	NewContext(ctx context.Context, opts ContextOptions) (AnalysisContext, error)
}
