// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_calibration

import (
	internal_environment "github.com/rapidaai/capture/internal/environment"
)

// Tier selects the calibration parameter set. It is the environment
// classification: A is the best device/network class, C the most
// constrained.
type Tier = internal_environment.Tier

// TierSettings is the fixed parameter record for one tier. Instances are
// immutable constants; SettingsFor returns copies.
type TierSettings struct {
	DurationMs      int
	PhaseCount      int
	NoiseThreshold  float64
	SpeechThreshold float64
	SampleRateHz    int
	FFTSize         int
	Smoothing       float64
	GainRange       [2]float64
	AutoGainControl bool
}

// tierSettings maps each tier to its calibration parameters. Tier A runs the
// longest with a third optimization phase and full spectral resolution; tier
// C keeps the run short and coarse for constrained devices.
var tierSettings = map[Tier]TierSettings{
	internal_environment.TierA: {
		DurationMs:      9000,
		PhaseCount:      3,
		NoiseThreshold:  15,
		SpeechThreshold: 30,
		SampleRateHz:    48000,
		FFTSize:         2048,
		Smoothing:       0.8,
		GainRange:       [2]float64{0.5, 2.0},
		AutoGainControl: false,
	},
	internal_environment.TierB: {
		DurationMs:      6000,
		PhaseCount:      2,
		NoiseThreshold:  12,
		SpeechThreshold: 25,
		SampleRateHz:    44100,
		FFTSize:         1024,
		Smoothing:       0.7,
		GainRange:       [2]float64{0.6, 1.5},
		AutoGainControl: true,
	},
	internal_environment.TierC: {
		DurationMs:      4000,
		PhaseCount:      2,
		NoiseThreshold:  10,
		SpeechThreshold: 20,
		SampleRateHz:    16000,
		FFTSize:         512,
		Smoothing:       0.5,
		GainRange:       [2]float64{0.8, 1.2},
		AutoGainControl: true,
	},
}

// SettingsFor returns the parameter record for the tier. Unknown tiers get
// the tier C record so a corrupt classification degrades conservatively.
func SettingsFor(tier Tier) TierSettings {
	if settings, ok := tierSettings[tier]; ok {
		return settings
	}
	return tierSettings[internal_environment.TierC]
}
