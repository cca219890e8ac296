// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_environment

import (
	"github.com/rapidaai/capture/pkg/commons"
)

// defaultProvider is the standard Provider: a static snapshot taken at
// construction time plus a logger-backed telemetry sink. Snapshots are
// immutable; a changed environment means constructing a new provider.
type defaultProvider struct {
	logger    commons.Logger
	data      EnvironmentData
	available bool
	telemetry bool
}

type providerOptions struct {
	tierOverride Tier
	network      NetworkType
	device       DeviceType
	telemetry    bool
}

// ProviderOption configures NewProvider.
type ProviderOption func(*providerOptions)

// WithTier forces the tier, bypassing network/device classification.
func WithTier(tier Tier) ProviderOption {
	return func(o *providerOptions) { o.tierOverride = tier }
}

// WithNetwork sets the observed network type.
func WithNetwork(network NetworkType) ProviderOption {
	return func(o *providerOptions) { o.network = network }
}

// WithDevice sets the observed device type.
func WithDevice(device DeviceType) ProviderOption {
	return func(o *providerOptions) { o.device = device }
}

// WithTelemetry toggles telemetry emission. Disabled providers drop
// ReportError events silently.
func WithTelemetry(enabled bool) ProviderOption {
	return func(o *providerOptions) { o.telemetry = enabled }
}

// NewProvider builds the default environment provider. With no options the
// snapshot is fully unknown and classifies as tier C.
func NewProvider(logger commons.Logger, opts ...ProviderOption) Provider {
	options := providerOptions{
		network:   NetworkUnknown,
		device:    DeviceUnknown,
		telemetry: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	tier := options.tierOverride
	available := true
	if tier == "" {
		tier = ClassifyTier(options.network, options.device)
		available = options.network != NetworkUnknown || options.device != DeviceUnknown
	}

	return &defaultProvider{
		logger: logger,
		data: EnvironmentData{
			Tier:    tier,
			Network: NetworkInfo{Type: options.network},
			Device:  DeviceInfo{Type: options.device},
		},
		available: available,
		telemetry: options.telemetry,
	}
}

func (p *defaultProvider) GetEnvironmentData() EnvironmentData {
	return p.data
}

func (p *defaultProvider) IsAvailable() bool {
	return p.available
}

// ReportError logs the event as a structured entry. Any panic from a
// misbehaving payload (e.g. a Stringer that panics during formatting) is
// swallowed: telemetry must never take the caller down.
func (p *defaultProvider) ReportError(eventName string, payload map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil && p.logger != nil {
			p.logger.Errorf("telemetry report panicked: %v", r)
		}
	}()
	if p.logger == nil || !p.telemetry {
		return
	}
	fields := make([]interface{}, 0, 2*len(payload)+2)
	fields = append(fields, "event", eventName)
	for k, v := range payload {
		fields = append(fields, k, v)
	}
	p.logger.Warnw("telemetry event", fields...)
}
