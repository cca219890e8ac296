// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_calibration

import (
	"math"

	"github.com/rapidaai/capture/pkg/utils"
)

const (
	// micSensitivityDBV is the assumed microphone sensitivity used to map
	// analyzer energy onto the SPL scale.
	micSensitivityDBV = -50.0

	// splReference is the standard 94 dB SPL / 1 Pa reference point.
	splReference = 94.0

	// minVoltageRatio floors the log argument for silent input.
	minVoltageRatio = 1e-6

	// volumeFloorDB and volumeScale map dB SPL onto the 0–100 volume
	// scale: 30 dB SPL reads as 0, ~90 dB SPL saturates at 100.
	volumeFloorDB = 30.0
	volumeScale   = 1.67

	// targetSpeechLevel is the volume the derived gain aims speech at.
	targetSpeechLevel = 60.0
)

// VolumeFromBins reduces a byte-valued frequency snapshot to a 0–100 volume
// reading.
func VolumeFromBins(bins []byte) float64 {
	return VolumeFromMean(utils.MeanBytes(bins))
}

// VolumeFromMean converts a mean bin value (0–255) to a 0–100 volume via an
// estimated dB SPL: the mean is treated as a voltage ratio against full
// scale, shifted by the microphone sensitivity and the 94 dB reference.
func VolumeFromMean(mean float64) float64 {
	ratio := math.Max(mean/255.0, minVoltageRatio)
	dbv := 20 * math.Log10(ratio)
	dbspl := dbv - micSensitivityDBV + splReference
	return utils.Clamp((dbspl-volumeFloorDB)*volumeScale, 0, 100)
}
