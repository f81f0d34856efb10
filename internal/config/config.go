// go-ant
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ant.
//
// go-ant is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ant is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ant; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package config loads antmon settings from a YAML file and ANT_ environment
// variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ant "github.com/ZaparooProject/go-ant"
	"github.com/ZaparooProject/go-ant/polling"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ANT_DEVICE_PORT
const EnvPrefix = "ANT"

// DeviceConfig selects the radio
type DeviceConfig struct {
	Transport  string `mapstructure:"transport"` // auto, uart, spi or virtual
	Port       string `mapstructure:"port"`
	SPIBus     string `mapstructure:"spiBus"`
	ReadyPin   string `mapstructure:"readyPin"`
	RequestPin string `mapstructure:"requestPin"`
	Baud       int    `mapstructure:"baud"`
	Channels   int    `mapstructure:"channels"`
}

// ProtocolConfig tunes the Dispatcher
type ProtocolConfig struct {
	SettleTime         time.Duration `mapstructure:"settleTime"`
	ReadyTimeout       time.Duration `mapstructure:"readyTimeout"`
	NetworkKeyTimeout  time.Duration `mapstructure:"networkKeyTimeout"`
	AckRetryInterval   time.Duration `mapstructure:"ackRetryInterval"`
	SearchTimeout      time.Duration `mapstructure:"searchTimeout"`
	QuickSearchTimeout time.Duration `mapstructure:"quickSearchTimeout"`
	RxFailThreshold    int           `mapstructure:"rxFailThreshold"`
	AckQueueCapacity   int           `mapstructure:"ackQueueCapacity"`
}

// PollingConfig tunes the radio actor
type PollingConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	IdleInterval time.Duration `mapstructure:"idleInterval"`
	IdleAfter    time.Duration `mapstructure:"idleAfter"`
	StaleAfter   time.Duration `mapstructure:"staleAfter"`
}

// LumberjackConfig configures a rotating log file
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures the application logger
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// WireLogConfig configures the raw frame log
type WireLogConfig struct {
	File   LumberjackConfig `mapstructure:"file"`
	Enable bool             `mapstructure:"enable"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Addr   string `mapstructure:"addr"`
	Path   string `mapstructure:"path"`
	Enable bool   `mapstructure:"enable"`
}

// SensorConfig is a sensor to search for at startup
type SensorConfig struct {
	Type         string `mapstructure:"type"`
	DeviceNumber uint16 `mapstructure:"deviceNumber"`
	Quick        bool   `mapstructure:"quick"`
}

// Config is the top level antmon configuration
type Config struct {
	Device   DeviceConfig   `mapstructure:"device"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	WireLog  WireLogConfig  `mapstructure:"wireLog"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Sensors  []SensorConfig `mapstructure:"sensors"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Polling  PollingConfig  `mapstructure:"polling"`
}

// Load reads path, or antmon.yaml from the working directory or
// $HOME/.config/antmon when path is empty. A missing default file is not an
// error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/antmon")
		v.SetConfigName("antmon")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := ant.DefaultConfig()
	poll := polling.DefaultConfig()

	v.SetDefault("device.transport", "auto")
	v.SetDefault("device.port", "")
	v.SetDefault("device.spiBus", "")
	v.SetDefault("device.readyPin", "GPIO24")
	v.SetDefault("device.requestPin", "GPIO25")
	v.SetDefault("device.baud", 0)
	v.SetDefault("device.channels", 0)

	v.SetDefault("protocol.settleTime", defaults.SettleTime)
	v.SetDefault("protocol.readyTimeout", defaults.ReadyTimeout)
	v.SetDefault("protocol.networkKeyTimeout", defaults.NetworkKeyTimeout)
	v.SetDefault("protocol.ackRetryInterval", defaults.AckRetryInterval)
	v.SetDefault("protocol.searchTimeout", defaults.SearchTimeout)
	v.SetDefault("protocol.quickSearchTimeout", defaults.QuickSearchTimeout)
	v.SetDefault("protocol.rxFailThreshold", defaults.RxFailThreshold)
	v.SetDefault("protocol.ackQueueCapacity", defaults.AckQueueCapacity)

	v.SetDefault("polling.interval", poll.PollInterval)
	v.SetDefault("polling.idleInterval", poll.IdleInterval)
	v.SetDefault("polling.idleAfter", poll.IdleAfter)
	v.SetDefault("polling.staleAfter", poll.StaleAfter)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 7)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("wireLog.enable", false)
	v.SetDefault("wireLog.file.filename", "antmon-wire.log")
	v.SetDefault("wireLog.file.maxSize", 50)
	v.SetDefault("wireLog.file.maxBackups", 5)
	v.SetDefault("wireLog.file.maxAge", 7)
	v.SetDefault("wireLog.file.compress", true)

	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.addr", ":9100")
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks values the libraries would reject later with less context
func (c *Config) Validate() error {
	switch c.Device.Transport {
	case "auto", "uart", "spi", "virtual":
	default:
		return fmt.Errorf("%w: device.transport %q", ant.ErrInvalidParameter, c.Device.Transport)
	}
	if c.Device.Transport == "spi" && c.Device.SPIBus == "" {
		return fmt.Errorf("%w: device.spiBus is required for spi", ant.ErrInvalidParameter)
	}
	for i, s := range c.Sensors {
		if _, err := ant.ParseSensorType(s.Type); err != nil {
			return fmt.Errorf("sensors[%d]: %w", i, err)
		}
	}
	if err := c.AntConfig().Validate(); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	return nil
}

// AntConfig returns the Dispatcher configuration
func (c *Config) AntConfig() *ant.Config {
	cfg := ant.DefaultConfig()
	cfg.SettleTime = c.Protocol.SettleTime
	cfg.ReadyTimeout = c.Protocol.ReadyTimeout
	cfg.NetworkKeyTimeout = c.Protocol.NetworkKeyTimeout
	cfg.AckRetryInterval = c.Protocol.AckRetryInterval
	cfg.SearchTimeout = c.Protocol.SearchTimeout
	cfg.QuickSearchTimeout = c.Protocol.QuickSearchTimeout
	cfg.RxFailThreshold = c.Protocol.RxFailThreshold
	cfg.AckQueueCapacity = c.Protocol.AckQueueCapacity
	if c.Device.Channels > 0 {
		cfg.MaxChannels = c.Device.Channels
	}
	return cfg
}

// PollingConfig returns the radio actor configuration
func (c *Config) PollingConfig() *polling.Config {
	return &polling.Config{
		PollInterval: c.Polling.Interval,
		IdleInterval: c.Polling.IdleInterval,
		IdleAfter:    c.Polling.IdleAfter,
		StaleAfter:   c.Polling.StaleAfter,
	}
}

// WireLogFile returns the wire log rotation settings
func (c *Config) WireLogFile() ant.WireLogFile {
	return ant.WireLogFile{
		Filename:   c.WireLog.File.Filename,
		MaxSizeMB:  c.WireLog.File.MaxSizeMB,
		MaxBackups: c.WireLog.File.MaxBackups,
		MaxAgeDays: c.WireLog.File.MaxAgeDays,
		Compress:   c.WireLog.File.Compress,
	}
}
