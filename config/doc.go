// Package config loads intercom endpoint settings.
//
// Settings are resolved in three layers: built-in defaults, an optional YAML
// file, then INTERCOM_* environment variables:
//
//	cfg, err := config.Load("intercom.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ConfigureLogging()
//
// A YAML file may set any subset of the fields:
//
//	jitter_packets: 8
//	tick_interval_ms: 20
//	audio:
//	  sample_rate: 8000
//	  bits_per_sample: 16
//	  channels: 1
//	echo_cancel: true
//
// Environment values that fail to parse or fall outside their bounds are
// logged and ignored. File values are checked by Validate and rejected with
// ErrInvalidConfig.
package config
