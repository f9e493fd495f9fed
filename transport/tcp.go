package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDialTimeout bounds connection establishment in DialTCP.
const DefaultDialTimeout = 10 * time.Second

// DialTCP connects to a peer and returns the connection for use with NewStream.
func DialTCP(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	logrus.WithFields(logrus.Fields{
		"function": "DialTCP",
		"addr":     addr,
		"timeout":  timeout.String(),
	}).Info("Dialing peer")

	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DialTCP",
			"addr":     addr,
			"error":    err.Error(),
		}).Error("Failed to dial peer")
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	// Audio frames are small and latency bound.
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "DialTCP",
				"error":    err.Error(),
			}).Warn("Failed to disable Nagle")
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "DialTCP",
		"local_addr":  conn.LocalAddr().String(),
		"remote_addr": conn.RemoteAddr().String(),
	}).Info("Connected to peer")

	return conn, nil
}
