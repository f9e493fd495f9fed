package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/opd-ai/intercom/av/audio"
	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Bounds accepted from files and environment variables.
const (
	MaxJitterPackets  = 1000
	MinTickIntervalMS = 1
	MaxTickIntervalMS = 1000
	MinSampleRate     = 8000
	MaxSampleRate     = 48000
	MaxPayloadType    = 127
)

// ErrInvalidConfig indicates a configuration value outside its accepted range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of one intercom endpoint.
type Config struct {
	// JitterPackets is the per-source jitter buffer capacity.
	JitterPackets int `yaml:"jitter_packets"`

	// TickIntervalMS is the pacing interval and the audio duration of one packet.
	TickIntervalMS int `yaml:"tick_interval_ms"`

	// Audio is the linear PCM format exchanged with the sink and source.
	Audio audio.Format `yaml:"audio"`

	// PayloadType is the RTP payload type written on sent packets (0 = PCMU).
	PayloadType uint8 `yaml:"payload_type"`

	// PlaybackGain scales received audio before it reaches the sink.
	PlaybackGain float64 `yaml:"playback_gain"`

	// EchoCancel subtracts the last captured frame from the playback mix.
	EchoCancel bool `yaml:"echo_cancel"`

	// WriteTimeoutMS bounds a single frame write; 0 disables the deadline.
	WriteTimeoutMS int `yaml:"write_timeout_ms"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration: 8 kHz 16-bit mono PCMU in
// 20 ms packets with a ten packet jitter buffer.
//
// Default Value Rationale:
//   - JitterPackets: 10 - 200ms of buffering absorbs typical LAN and VPN jitter
//   - TickIntervalMS: 20 - Standard G.711 packetization interval
//   - WriteTimeoutMS: 5000 - A stuck peer is detected well before TCP gives up
func Default() *Config {
	return &Config{
		JitterPackets:  limits.DefaultJitterPackets,
		TickIntervalMS: int(limits.DefaultTickInterval / time.Millisecond),
		Audio:          audio.DefaultFormat,
		PayloadType:    0,
		PlaybackGain:   1.0,
		EchoCancel:     false,
		WriteTimeoutMS: 5000,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load builds a configuration from the defaults, the YAML file at path (if
// path is not empty) and INTERCOM_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	ApplyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":         "config.Load",
		"path":             path,
		"jitter_packets":   cfg.JitterPackets,
		"tick_interval_ms": cfg.TickIntervalMS,
		"sample_rate":      cfg.Audio.SampleRate,
		"bits_per_sample":  cfg.Audio.BitsPerSample,
		"channels":         cfg.Audio.Channels,
		"payload_type":     cfg.PayloadType,
	}).Info("Loaded configuration")

	return cfg, nil
}

// Validate reports the first out-of-range value, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.JitterPackets < limits.MinJitterPackets || c.JitterPackets > MaxJitterPackets {
		return fmt.Errorf("%w: jitter_packets %d not in [%d, %d]", ErrInvalidConfig, c.JitterPackets, limits.MinJitterPackets, MaxJitterPackets)
	}
	if c.TickIntervalMS < MinTickIntervalMS || c.TickIntervalMS > MaxTickIntervalMS {
		return fmt.Errorf("%w: tick_interval_ms %d not in [%d, %d]", ErrInvalidConfig, c.TickIntervalMS, MinTickIntervalMS, MaxTickIntervalMS)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample_rate %d not in [%d, %d]", ErrInvalidConfig, c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.BitsPerSample != 8 && c.Audio.BitsPerSample != 16 {
		return fmt.Errorf("%w: bits_per_sample %d (want 8 or 16)", ErrInvalidConfig, c.Audio.BitsPerSample)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("%w: channels %d (want 1 or 2)", ErrInvalidConfig, c.Audio.Channels)
	}
	// One mu-law byte per sample frame per packet.
	if n := c.Audio.SamplesPerInterval(c.TickInterval()); n > limits.MaxRTPPayload {
		return fmt.Errorf("%w: %d Hz at %d ms is %d bytes per packet, limit %d",
			ErrInvalidConfig, c.Audio.SampleRate, c.TickIntervalMS, n, limits.MaxRTPPayload)
	}
	if c.PayloadType > MaxPayloadType {
		return fmt.Errorf("%w: payload_type %d exceeds %d", ErrInvalidConfig, c.PayloadType, MaxPayloadType)
	}
	if c.PlaybackGain < 0 || c.PlaybackGain > audio.MaxGain {
		return fmt.Errorf("%w: playback_gain %.2f not in [0, %.1f]", ErrInvalidConfig, c.PlaybackGain, audio.MaxGain)
	}
	if c.WriteTimeoutMS < 0 {
		return fmt.Errorf("%w: write_timeout_ms %d is negative", ErrInvalidConfig, c.WriteTimeoutMS)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// FrameBytes is the PCM size of one tick interval.
func (c *Config) FrameBytes() int {
	return c.Audio.BytesPerInterval(c.TickInterval())
}

// ConfigureLogging applies LogLevel and LogFormat to the standard logrus logger.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
