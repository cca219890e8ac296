// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

func TestGetCaptureConfigDefaults(t *testing.T) {
	t.Setenv("ENV_PATH", writeEnvFile(t, ""))

	vConfig, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	cfg, err := GetCaptureConfig(vConfig)
	if err != nil {
		t.Fatalf("GetCaptureConfig failed: %v", err)
	}

	if cfg.Name != "capture" {
		t.Errorf("expected default service name, got %q", cfg.Name)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if !cfg.TelemetryEnabled {
		t.Error("telemetry must default to enabled")
	}
	if cfg.Tier != "" {
		t.Errorf("tier override must default to empty, got %q", cfg.Tier)
	}
}

func TestGetCaptureConfigFromFile(t *testing.T) {
	t.Setenv("ENV_PATH", writeEnvFile(t,
		"LOG_LEVEL=debug\nTIER=B\nNETWORK_TYPE=wifi\nINPUT_DEVICE=USB Microphone\n"))

	vConfig, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	cfg, err := GetCaptureConfig(vConfig)
	if err != nil {
		t.Fatalf("GetCaptureConfig failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.LogLevel)
	}
	if cfg.Tier != "B" {
		t.Errorf("expected tier B, got %q", cfg.Tier)
	}
	if cfg.NetworkType != "wifi" {
		t.Errorf("expected wifi network, got %q", cfg.NetworkType)
	}
	if cfg.InputDevice != "USB Microphone" {
		t.Errorf("unexpected input device %q", cfg.InputDevice)
	}
}

func TestGetCaptureConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "LOG_LEVEL=loud\n"},
		{"bad tier", "TIER=D\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV_PATH", writeEnvFile(t, tt.content))
			vConfig, err := InitConfig()
			if err != nil {
				t.Fatalf("InitConfig failed: %v", err)
			}
			if _, err := GetCaptureConfig(vConfig); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
