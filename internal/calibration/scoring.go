// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_calibration

import (
	"math"

	internal_environment "github.com/rapidaai/capture/internal/environment"
	"github.com/rapidaai/capture/pkg/utils"
)

// Quality is the overall verdict of a calibration run.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// Rank orders qualities: poor < fair < good < excellent.
func (q Quality) Rank() int {
	switch q {
	case QualityExcellent:
		return 3
	case QualityGood:
		return 2
	case QualityFair:
		return 1
	default:
		return 0
	}
}

// qualityMaxPoints is the tier-dependent score denominator. Higher tiers
// are graded against a stricter ceiling.
var qualityMaxPoints = map[Tier]float64{
	internal_environment.TierA: 6,
	internal_environment.TierB: 5,
	internal_environment.TierC: 4,
}

// OptimalGain derives the gain for the measured speech level and noise
// floor. The base gain is clamped into the tier's range; the noise and
// network multipliers are applied afterwards and the final value is NOT
// re-clamped, matching the shipped widget's behavior.
func OptimalGain(settings TierSettings, env internal_environment.EnvironmentData, avgSpeechLevel, noiseFloor float64) float64 {
	base := targetSpeechLevel / math.Max(avgSpeechLevel, 1)
	gain := utils.Clamp(base, settings.GainRange[0], settings.GainRange[1])

	if noiseFloor > 15 {
		gain *= 0.9
	}
	if noiseFloor < 5 {
		gain *= 1.1
	}
	if env.Network.Type.IsLowest() {
		gain *= 0.8
	}

	return utils.Round2(gain)
}

// QualityFor scores a run from its dynamic range and signal-to-noise ratio.
// Each metric contributes up to 3 points; the sum is graded against the
// tier's ceiling.
func QualityFor(tier Tier, dynamicRange, signalToNoise float64) Quality {
	points := dynamicRangePoints(dynamicRange) + signalToNoisePoints(signalToNoise)

	max, ok := qualityMaxPoints[tier]
	if !ok {
		max = qualityMaxPoints[internal_environment.TierC]
	}
	pct := points / max * 100

	switch {
	case pct >= 80:
		return QualityExcellent
	case pct >= 60:
		return QualityGood
	case pct >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

func dynamicRangePoints(dynamicRange float64) float64 {
	switch {
	case dynamicRange > 40:
		return 3
	case dynamicRange > 20:
		return 2
	case dynamicRange > 10:
		return 1
	default:
		return 0
	}
}

func signalToNoisePoints(signalToNoise float64) float64 {
	switch {
	case signalToNoise > 5:
		return 3
	case signalToNoise > 3:
		return 2
	case signalToNoise > 2:
		return 1
	default:
		return 0
	}
}

// Recommendations returns the user-facing suggestions for a run. Order is
// fixed and significant.
func Recommendations(tier Tier, settings TierSettings, env internal_environment.EnvironmentData, dynamicRange, signalToNoise float64) []string {
	var recs []string
	if dynamicRange < 15 {
		recs = append(recs, "Consider moving to a quieter location for better recording quality")
	}
	if signalToNoise < 2 {
		recs = append(recs, "Try speaking closer to the microphone")
	}
	if tier == internal_environment.TierC && env.Network.Type.IsLowest() {
		recs = append(recs, "Recording has been optimized for limited network conditions")
	}
	if settings.AutoGainControl && dynamicRange > 50 {
		recs = append(recs, "Automatic gain control will help even out your recording level")
	}
	return recs
}
