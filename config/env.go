package config

import (
	"os"
	"strconv"

	"github.com/opd-ai/intercom/av/audio"
	"github.com/opd-ai/intercom/limits"
	"github.com/sirupsen/logrus"
)

// Environment variables read by ApplyEnvironmentOverrides.
const (
	EnvJitterPackets  = "INTERCOM_JITTER_PACKETS"
	EnvTickIntervalMS = "INTERCOM_TICK_INTERVAL_MS"
	EnvSampleRate     = "INTERCOM_SAMPLE_RATE"
	EnvBitsPerSample  = "INTERCOM_BITS_PER_SAMPLE"
	EnvChannels       = "INTERCOM_CHANNELS"
	EnvPayloadType    = "INTERCOM_PAYLOAD_TYPE"
	EnvPlaybackGain   = "INTERCOM_PLAYBACK_GAIN"
	EnvEchoCancel     = "INTERCOM_ECHO_CANCEL"
	EnvLogLevel       = "INTERCOM_LOG_LEVEL"
)

// ApplyEnvironmentOverrides updates cfg from INTERCOM_* environment variables.
// A value that does not parse or is out of bounds is logged and ignored, so the
// previous setting stays in effect.
func ApplyEnvironmentOverrides(cfg *Config) {
	parseIntSetting(EnvJitterPackets, limits.MinJitterPackets, MaxJitterPackets, &cfg.JitterPackets)
	parseIntSetting(EnvTickIntervalMS, MinTickIntervalMS, MaxTickIntervalMS, &cfg.TickIntervalMS)

	rate := int(cfg.Audio.SampleRate)
	parseIntSetting(EnvSampleRate, MinSampleRate, MaxSampleRate, &rate)
	cfg.Audio.SampleRate = uint32(rate)

	parseChoiceSetting(EnvBitsPerSample, []int{8, 16}, &cfg.Audio.BitsPerSample)
	parseChoiceSetting(EnvChannels, []int{1, 2}, &cfg.Audio.Channels)

	pt := int(cfg.PayloadType)
	parseIntSetting(EnvPayloadType, 0, MaxPayloadType, &pt)
	cfg.PayloadType = uint8(pt)

	parseGainSetting(cfg)
	parseEchoSetting(cfg)
	parseLogLevelSetting(cfg)
}

// parseIntSetting stores the integer in env into target when it lies within [lo, hi].
func parseIntSetting(env string, lo, hi int, target *int) {
	str := os.Getenv(env)
	if str == "" {
		return
	}

	value, err := strconv.Atoi(str)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseIntSetting",
			"env_var":     env,
			"value":       str,
			"error":       err.Error(),
			"using_value": *target,
		}).Warn("Failed to parse environment variable, using default")
		return
	}
	if value < lo || value > hi {
		logrus.WithFields(logrus.Fields{
			"function":    "parseIntSetting",
			"env_var":     env,
			"value":       value,
			"min":         lo,
			"max":         hi,
			"using_value": *target,
		}).Warn("Environment variable out of bounds, using default")
		return
	}
	*target = value
}

// parseChoiceSetting stores the integer in env into target when it is one of choices.
func parseChoiceSetting(env string, choices []int, target *int) {
	str := os.Getenv(env)
	if str == "" {
		return
	}

	value, err := strconv.Atoi(str)
	if err == nil {
		for _, c := range choices {
			if value == c {
				*target = value
				return
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "parseChoiceSetting",
		"env_var":     env,
		"value":       str,
		"allowed":     choices,
		"using_value": *target,
	}).Warn("Unsupported environment variable value, using default")
}

func parseGainSetting(cfg *Config) {
	str := os.Getenv(EnvPlaybackGain)
	if str == "" {
		return
	}

	gain, err := strconv.ParseFloat(str, 64)
	if err != nil || gain < 0 || gain > audio.MaxGain {
		logrus.WithFields(logrus.Fields{
			"function":    "parseGainSetting",
			"env_var":     EnvPlaybackGain,
			"value":       str,
			"using_value": cfg.PlaybackGain,
		}).Warn("Invalid INTERCOM_PLAYBACK_GAIN, using default")
		return
	}
	cfg.PlaybackGain = gain
}

func parseEchoSetting(cfg *Config) {
	str := os.Getenv(EnvEchoCancel)
	if str == "" {
		return
	}

	enabled, err := strconv.ParseBool(str)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseEchoSetting",
			"env_var":     EnvEchoCancel,
			"value":       str,
			"error":       err.Error(),
			"using_value": cfg.EchoCancel,
		}).Warn("Failed to parse INTERCOM_ECHO_CANCEL, using default")
		return
	}
	cfg.EchoCancel = enabled
}

func parseLogLevelSetting(cfg *Config) {
	str := os.Getenv(EnvLogLevel)
	if str == "" {
		return
	}

	if _, err := logrus.ParseLevel(str); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseLogLevelSetting",
			"env_var":     EnvLogLevel,
			"value":       str,
			"using_value": cfg.LogLevel,
		}).Warn("Unknown INTERCOM_LOG_LEVEL, using default")
		return
	}
	cfg.LogLevel = str
}
