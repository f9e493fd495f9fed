package commands

import (
	"github.com/opd-ai/intercom/config"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../commands.Version=...".
var Version = "dev"

type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "intercom",
		Short: "Audio intercom over TCP and WebSocket",
		Long: `intercom - point-to-point audio links over framed RTP.

Audio is sent as G.711 mu-law in RTP packets, each carried in a
length-prefixed frame over a TCP or WebSocket connection.

Configuration is read from an optional YAML file (--config) and
INTERCOM_* environment variables.

Examples:
  # Wait for a caller and record what they say
  intercom answer --addr :9000 --record incoming.wav

  # Call and play a 440 Hz test tone for ten seconds
  intercom call --addr 10.0.0.2:9000 --tone 440 --duration 10s

  # Call over WebSocket and stream a WAV file
  intercom call --ws ws://10.0.0.2:9000/intercom --input greeting.wav`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newCallCmd(opts))
	root.AddCommand(newAnswerCmd(opts))
	root.AddCommand(newVersionCmd(opts))

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads configuration and applies logging settings.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.ConfigureLogging(); err != nil {
		return nil, err
	}
	return cfg, nil
}
