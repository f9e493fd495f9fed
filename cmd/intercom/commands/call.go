package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/intercom/transport"
	"github.com/spf13/cobra"
)

func newCallCmd(opts *globalOptions) *cobra.Command {
	var (
		addr        string
		wsURL       string
		dialTimeout time.Duration
	)
	lo := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Dial a peer and exchange audio",
		Long: `Dial a peer over TCP (--addr) or WebSocket (--ws) and exchange audio
until interrupted, the --duration elapses or the peer hangs up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var conn io.ReadWriteCloser
			if wsURL != "" {
				dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
				conn, err = transport.DialWebSocket(dialCtx, wsURL)
				cancel()
			} else {
				conn, err = transport.DialTCP(ctx, addr, dialTimeout)
			}
			if err != nil {
				return err
			}

			return runLink(ctx, cmd, cfg, conn, lo)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "peer TCP address (host:port)")
	cmd.Flags().StringVar(&wsURL, "ws", "", "peer WebSocket URL (ws:// or wss://)")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", transport.DefaultDialTimeout, "connection timeout")
	cmd.MarkFlagsMutuallyExclusive("addr", "ws")
	cmd.MarkFlagsOneRequired("addr", "ws")
	lo.addFlags(cmd)

	return cmd
}
