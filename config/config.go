// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// CaptureConfig carries the runtime knobs of the capture core. Tier is an
// optional override; when empty the environment provider classifies the
// tier from network/device data.
type CaptureConfig struct {
	Name             string `mapstructure:"service_name" validate:"required"`
	LogLevel         string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogPath          string `mapstructure:"log_path"`
	Tier             string `mapstructure:"tier" validate:"omitempty,oneof=A B C a b c"`
	NetworkType      string `mapstructure:"network_type"`
	DeviceType       string `mapstructure:"device_type"`
	InputDevice      string `mapstructure:"input_device"`
	TelemetryEnabled bool   `mapstructure:"telemetry_enabled"`
}

// InitConfig reads configuration from an .env-style file (path from
// ENV_PATH, falling back to ./.env) plus process environment variables.
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	if path := os.Getenv("ENV_PATH"); path != "" {
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)

	// A missing file is fine: defaults plus environment variables apply.
	if err := vConfig.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return vConfig, nil
}

func setDefault(vConfig *viper.Viper) {
	vConfig.SetDefault("service_name", "capture")
	vConfig.SetDefault("log_level", "info")
	vConfig.SetDefault("telemetry_enabled", true)
}

// GetCaptureConfig unmarshals and validates the capture configuration.
func GetCaptureConfig(vConfig *viper.Viper) (*CaptureConfig, error) {
	var cfg CaptureConfig
	if err := vConfig.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
