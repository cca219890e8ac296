// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_environment

import "strings"

// Tier is the coarse device/network capability classification used to select
// calibration parameters. A is the best class, C the most constrained.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// NetworkType classifies the current connection.
type NetworkType string

const (
	NetworkEthernet NetworkType = "ethernet"
	NetworkWifi     NetworkType = "wifi"
	Network4G       NetworkType = "4g"
	Network3G       NetworkType = "3g"
	Network2G       NetworkType = "2g"
	NetworkUnknown  NetworkType = "unknown"
)

// IsLowest reports whether the network is in the worst classification.
// Gain derivation and recommendations treat 2g as the floor.
func (n NetworkType) IsLowest() bool {
	return n == Network2G
}

// DeviceType classifies the host device.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceUnknown DeviceType = "unknown"
)

// NetworkInfo is the network part of an environment snapshot.
type NetworkInfo struct {
	Type NetworkType
}

// DeviceInfo is the device part of an environment snapshot.
type DeviceInfo struct {
	Type DeviceType
}

// EnvironmentData is a point-in-time environment snapshot. Fields may be
// partial; consumers must treat zero values as "unknown", not as errors.
type EnvironmentData struct {
	Tier    Tier
	Network NetworkInfo
	Device  DeviceInfo
}

// Provider supplies environment snapshots and a best-effort telemetry sink.
type Provider interface {
	// GetEnvironmentData returns the current snapshot. It is synchronous
	// and may return partial data.
	GetEnvironmentData() EnvironmentData

	// IsAvailable reports whether real environment data is backing the
	// provider. When false, GetEnvironmentData returns defaults.
	IsAvailable() bool

	// ReportError emits a fire-and-forget telemetry event. It must never
	// block and must never propagate a failure into the caller.
	ReportError(eventName string, payload map[string]interface{})
}

// TierFromString parses a tier letter, defaulting to TierC for anything
// unrecognized so a bad override degrades to the most conservative settings.
func TierFromString(s string) Tier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return TierA
	case "B":
		return TierB
	case "C":
		return TierC
	}
	return TierC
}

// ClassifyTier derives a tier from network and device classifications when
// no explicit override is configured.
func ClassifyTier(network NetworkType, device DeviceType) Tier {
	switch network {
	case NetworkEthernet, NetworkWifi:
		if device == DeviceMobile {
			return TierB
		}
		return TierA
	case Network4G:
		return TierB
	default:
		return TierC
	}
}
