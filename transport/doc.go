// Package transport moves length-prefixed messages over byte streams.
//
// # Framing
//
// Every message on the wire is a 4-byte little-endian signed length followed
// by that many payload bytes. A [Framer] reassembles messages from arbitrary
// read chunks:
//
//	framer := transport.NewFramer(
//	    func(msg []byte) { handle(msg) },
//	    func(err error) { log.Println("resync:", err) },
//	)
//	framer.Feed(chunk)
//
// The accumulation buffer is capped at 10000 bytes. A buffer over the cap, a
// length prefix over the cap, or a negative prefix clears the buffer and is
// reported to the fault callback. The framer keeps working afterwards; the
// peer is never told.
//
// # Streams
//
// [Stream] runs a read loop over any io.ReadWriteCloser, feeding a Framer, and
// frames outgoing messages:
//
//	conn, err := transport.DialTCP(ctx, "10.0.0.2:9000", transport.DefaultDialTimeout)
//	stream := transport.NewStream(conn, onMessage)
//	stream.Start()
//	stream.Write(payload)
//
// [WebSocketConn] adapts a gorilla/websocket connection to io.ReadWriteCloser
// so the same Stream runs over WebSocket, with each write carried in one
// binary message.
package transport
