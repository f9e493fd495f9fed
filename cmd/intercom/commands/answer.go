package commands

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/opd-ai/intercom/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newAnswerCmd(opts *globalOptions) *cobra.Command {
	var (
		addr   string
		wsPath string
	)
	lo := &linkOptions{}

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Wait for one peer to connect and exchange audio",
		Long: `Listen on --addr, accept a single peer and exchange audio with it.

With --ws-path the listener serves WebSocket upgrades on that path
instead of raw TCP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", ln.Addr())

			var conn io.ReadWriteCloser
			if wsPath != "" {
				conn, err = acceptWebSocket(ctx, ln, wsPath)
			} else {
				conn, err = acceptTCP(ctx, ln)
			}
			if err != nil {
				return err
			}

			return runLink(ctx, cmd, cfg, conn, lo)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9000", "listen address")
	cmd.Flags().StringVar(&wsPath, "ws-path", "", "serve WebSocket upgrades on this path")
	lo.addFlags(cmd)

	return cmd
}

// acceptTCP returns the first connection on ln and closes the listener.
func acceptTCP(ctx context.Context, ln net.Listener) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to accept peer: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "acceptTCP",
		"remote_addr": conn.RemoteAddr().String(),
	}).Info("Peer connected")

	return conn, nil
}

// acceptWebSocket serves upgrades on path until one succeeds, then shuts
// the server down and returns the upgraded connection.
func acceptWebSocket(ctx context.Context, ln net.Listener, path string) (*transport.WebSocketConn, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	accepted := make(chan *websocket.Conn, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "acceptWebSocket",
				"remote_addr": r.RemoteAddr,
				"error":       err.Error(),
			}).Warn("WebSocket upgrade failed")
			return
		}
		select {
		case accepted <- ws:
		default:
			ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "busy"))
			ws.Close()
		}
	})

	srv := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	// Close does not touch hijacked connections.
	defer srv.Close()

	select {
	case ws := <-accepted:
		logrus.WithFields(logrus.Fields{
			"function":    "acceptWebSocket",
			"remote_addr": ws.RemoteAddr().String(),
		}).Info("Peer connected")
		return transport.NewWebSocketConn(ws), nil
	case err := <-serveErr:
		return nil, fmt.Errorf("listener stopped: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
