// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_calibration

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	internal_audio "github.com/rapidaai/capture/internal/audio"
	internal_environment "github.com/rapidaai/capture/internal/environment"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/rapidaai/capture/pkg/utils"
)

// Telemetry event names emitted through the environment provider.
const (
	eventSampleRateFallback = "calibration_sample_rate_fallback"
	eventCalibrationFailed  = "calibration_failed"
)

// Result is the terminal value of one calibration run. It is created once,
// immutable, and handed to the caller; the engine keeps no reference.
type Result struct {
	Complete         bool
	Tier             Tier
	Gain             float64
	SpeechLevel      float64
	NoiseFloor       float64
	DynamicRange     float64
	SignalToNoise    float64
	SampleCount      int
	DurationMs       int
	PhaseCount       int
	ActualSampleRate int
	Quality          Quality
	Recommendations  []string
}

// Update is one progress callback payload. Result is non-nil only on the
// final call, which always carries Done=true.
type Update struct {
	Message     string
	Volume      float64
	Done        bool
	Phase       int
	TotalPhases int
	Progress    float64
	Tier        Tier
	Result      *Result
}

// UpdateFunc receives progress updates. Calls are strictly sequential and
// monotonically increasing in elapsed time within one run.
type UpdateFunc func(Update)

// Engine runs tiered, phase-based microphone calibration: it samples live
// audio energy against an analysis provider, classifies noise vs. speech
// per phase, and derives an optimal gain and quality verdict.
//
// The engine exclusively owns the analysis resources it creates for a run
// and releases them on every exit path before Start returns.
type Engine struct {
	logger   commons.Logger
	provider internal_audio.AnalysisProvider
	clock    internal_audio.Clock
	env      internal_environment.Provider
}

// NewEngine wires an engine. The clock decides the sampling cadence; pass
// audio.NewFrameClock() for the display-refresh default.
func NewEngine(
	logger commons.Logger,
	provider internal_audio.AnalysisProvider,
	clock internal_audio.Clock,
	env internal_environment.Provider,
) *Engine {
	return &Engine{
		logger:   logger,
		provider: provider,
		clock:    clock,
		env:      env,
	}
}

// run bundles the per-invocation analysis resources. cleanup is once-only
// and never throws: release errors are logged and swallowed.
type run struct {
	actx     internal_audio.AnalysisContext
	source   internal_audio.SourceNode
	analyzer internal_audio.Analyzer
	once     sync.Once
}

func (r *run) cleanup(logger commons.Logger) {
	r.once.Do(func() {
		defer func() {
			if p := recover(); p != nil && logger != nil {
				logger.Errorf("calibration cleanup panicked: %v", p)
			}
		}()
		if r.source != nil {
			if err := r.source.Disconnect(); err != nil && logger != nil {
				logger.Warnf("failed to disconnect calibration source: %v", err)
			}
		}
		if r.analyzer != nil {
			if err := r.analyzer.Release(); err != nil && logger != nil {
				logger.Warnf("failed to release calibration analyzer: %v", err)
			}
		}
		if r.actx != nil && r.actx.State() != internal_audio.ContextClosed {
			if err := r.actx.Close(); err != nil && logger != nil {
				logger.Warnf("failed to close analysis context: %v", err)
			}
		}
	})
}

// Start runs a full calibration for the tier against the given input and
// returns the result. onUpdate (optional) receives one update per sampling
// tick and a final Done update carrying the result. Cancellation via ctx is
// consumed at tick boundaries; a cancelled run releases its resources and
// returns ctx's error.
func (e *Engine) Start(ctx context.Context, tier Tier, input internal_audio.InputSource, onUpdate UpdateFunc) (*Result, error) {
	settings := SettingsFor(tier)

	r, err := e.setup(ctx, tier, settings, input)
	if err != nil {
		e.reportFatal(tier, err)
		return nil, err
	}
	defer r.cleanup(e.logger)

	result, err := e.sample(ctx, tier, settings, r, onUpdate)
	if err != nil {
		e.reportFatal(tier, err)
		r.cleanup(e.logger)
		return nil, err
	}
	return result, nil
}

// setup acquires the analysis context, source and analyzer. A rejected
// preferred sample rate is recoverable: telemetry is emitted and the run
// proceeds at the subsystem's default rate. Anything else is fatal and
// leaves no resources behind.
func (e *Engine) setup(ctx context.Context, tier Tier, settings TierSettings, input internal_audio.InputSource) (*run, error) {
	actx, err := e.provider.NewContext(ctx, internal_audio.ContextOptions{
		SampleRate:  settings.SampleRateHz,
		LatencyHint: "interactive",
	})
	if err != nil {
		e.report(eventSampleRateFallback, map[string]interface{}{
			"requested_rate": settings.SampleRateHz,
			"tier":           tier,
			"error":          err.Error(),
		})
		e.logger.Warnf("analysis context rejected %d Hz, retrying at default rate: %v", settings.SampleRateHz, err)

		actx, err = e.provider.NewContext(ctx, internal_audio.ContextOptions{
			SampleRate:  0,
			LatencyHint: "interactive",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis context: %w", err)
		}
	}

	r := &run{actx: actx}

	if actx.State() == internal_audio.ContextSuspended {
		if err := actx.Resume(ctx); err != nil {
			r.cleanup(e.logger)
			return nil, fmt.Errorf("failed to resume analysis context: %w", err)
		}
	}

	source, err := actx.NewSource(input)
	if err != nil {
		r.cleanup(e.logger)
		return nil, fmt.Errorf("failed to create audio source: %w", err)
	}
	r.source = source

	analyzer, err := actx.NewAnalyzer(settings.FFTSize, settings.Smoothing)
	if err != nil {
		r.cleanup(e.logger)
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	r.analyzer = analyzer

	if err := source.Connect(analyzer); err != nil {
		r.cleanup(e.logger)
		return nil, fmt.Errorf("failed to connect source to analyzer: %w", err)
	}

	if granted := actx.SampleRate(); granted != settings.SampleRateHz {
		e.logger.Debugf("calibration running at %d Hz (requested %d Hz)", granted, settings.SampleRateHz)
	}
	return r, nil
}

// sample is the cooperative loop: one energy reading per clock tick until
// the tier's duration has elapsed, then scoring.
func (e *Engine) sample(ctx context.Context, tier Tier, settings TierSettings, r *run, onUpdate UpdateFunc) (*Result, error) {
	total := time.Duration(settings.DurationMs) * time.Millisecond
	phaseDuration := total / time.Duration(settings.PhaseCount)

	var (
		sampleCount int
		maxVolume   float64
		minVolume   = math.Inf(1)
		avgVolume   float64
		lastVolume  float64
		noiseFloor  float64
		speechPeaks []float64
	)

	bins := make([]byte, settings.FFTSize/2)
	start := e.clock.Now()

	for {
		elapsed := e.clock.Now().Sub(start)
		if elapsed >= total {
			break
		}

		n := r.analyzer.ByteFrequencyData(bins)
		volume := VolumeFromBins(bins[:n])
		lastVolume = volume

		sampleCount++
		if volume > maxVolume {
			maxVolume = volume
		}
		if volume < minVolume {
			minVolume = volume
		}
		// Incremental mean; no sample history is kept.
		avgVolume += (volume - avgVolume) / float64(sampleCount)

		phase := int(elapsed / phaseDuration)
		switch {
		case phase == 0:
			// Noise floor is the loudest quiet reading, not the average.
			if volume < settings.NoiseThreshold && volume > noiseFloor {
				noiseFloor = volume
			}
		case phase == 1:
			if volume > settings.SpeechThreshold {
				speechPeaks = append(speechPeaks, volume)
			}
		}

		if onUpdate != nil {
			onUpdate(Update{
				Message:     phaseMessage(phase, settings),
				Volume:      volume,
				Phase:       phase,
				TotalPhases: settings.PhaseCount,
				Progress:    math.Min(float64(elapsed)/float64(total)*100, 100),
				Tier:        tier,
			})
		}

		if err := e.clock.NextTick(ctx); err != nil {
			return nil, fmt.Errorf("calibration interrupted: %w", err)
		}
	}

	avgSpeechLevel := utils.AverageFloat64(speechPeaks)
	if len(speechPeaks) == 0 {
		avgSpeechLevel = maxVolume
	}
	dynamicRange := maxVolume - noiseFloor
	signalToNoise := avgSpeechLevel / math.Max(noiseFloor, 1)

	var envData internal_environment.EnvironmentData
	if e.env != nil {
		envData = e.env.GetEnvironmentData()
	}
	result := &Result{
		Complete:         true,
		Tier:             tier,
		Gain:             OptimalGain(settings, envData, avgSpeechLevel, noiseFloor),
		SpeechLevel:      avgSpeechLevel,
		NoiseFloor:       noiseFloor,
		DynamicRange:     dynamicRange,
		SignalToNoise:    signalToNoise,
		SampleCount:      sampleCount,
		DurationMs:       settings.DurationMs,
		PhaseCount:       settings.PhaseCount,
		ActualSampleRate: r.actx.SampleRate(),
		Quality:          QualityFor(tier, dynamicRange, signalToNoise),
		Recommendations:  Recommendations(tier, settings, envData, dynamicRange, signalToNoise),
	}

	e.logger.Infow("calibration complete",
		"tier", tier,
		"gain", result.Gain,
		"quality", result.Quality,
		"samples", result.SampleCount,
		"noise_floor", result.NoiseFloor,
		"dynamic_range", result.DynamicRange,
	)

	if onUpdate != nil {
		onUpdate(Update{
			Message:     "Calibration complete",
			Volume:      lastVolume,
			Done:        true,
			Phase:       settings.PhaseCount,
			TotalPhases: settings.PhaseCount,
			Progress:    100,
			Tier:        tier,
			Result:      result,
		})
	}
	return result, nil
}

func phaseMessage(phase int, settings TierSettings) string {
	switch {
	case phase == 0:
		return "Measuring background noise, please stay quiet"
	case phase == 1:
		return "Now speak normally into your microphone"
	case phase == 2 && settings.PhaseCount > 2:
		return "Optimizing input levels"
	default:
		return "Finishing up"
	}
}

func (e *Engine) report(event string, payload map[string]interface{}) {
	if e.env != nil {
		e.env.ReportError(event, payload)
	}
}

func (e *Engine) reportFatal(tier Tier, err error) {
	e.logger.Errorf("calibration failed for tier %s: %v", tier, err)
	e.report(eventCalibrationFailed, map[string]interface{}{
		"tier":  tier,
		"error": err.Error(),
	})
}
