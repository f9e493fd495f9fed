package transport

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialTCP_Exchange(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan []byte, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		server := NewStream(conn, func(msg []byte) { received <- msg })
		if err := server.Start(); err != nil {
			conn.Close()
			return
		}
		<-server.Done()
		server.Close()
	}()

	conn, err := DialTCP(context.Background(), listener.Addr().String(), time.Second)
	require.NoError(t, err)

	client := NewStream(conn, nil)
	require.NoError(t, client.Start())
	require.NoError(t, client.Write([]byte("ping")))

	select {
	case msg := <-received:
		assert.Equal(t, []byte("ping"), msg)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive message")
	}

	require.NoError(t, client.Close())
	wg.Wait()
}

func TestDialTCP_Refused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	_, err = DialTCP(context.Background(), addr, time.Second)
	assert.Error(t, err)
}

func TestDialTCP_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DialTCP(ctx, "127.0.0.1:1", 0)
	assert.Error(t, err)
}
