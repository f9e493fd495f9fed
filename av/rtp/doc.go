// Package rtp provides the RTP packet codec and receive-side pacing for the
// intercom audio path.
//
// # Architecture Overview
//
// The package consists of three components:
//
//   - Packet: Parse/Serialize of one RTP datagram
//   - Packetizer: Send-side sequence numbering and media clock
//   - JitterBuffer: Receive-side FIFO that releases one packet per clock tick
//
// # Packet Codec
//
//	pkt, err := rtp.Parse(datagram)
//	if errors.Is(err, rtp.ErrHeaderTooShort) {
//	    // pkt is the zero Packet
//	}
//	wire := pkt.Serialize()
//
// Sequence number and timestamp are big-endian in both directions. The source
// identifier is read little-endian by Parse and written big-endian by Serialize.
// Deployed peers depend on both behaviors, so Parse(Serialize(p)).SourceID is the
// byte-reversed p.SourceID. ToPion and FromPion convert to and from pion/rtp
// packets for code that works with pion based stacks.
//
// # Jitter Buffer
//
//	jb, err := rtp.NewJitterBuffer(10, 20*time.Millisecond, nil, func(p rtp.Packet) {
//	    play(p.Payload)
//	})
//	jb.Start()
//	defer jb.Stop()
//	jb.AddData(pkt)
//
// The buffer is driven by a TickSource. TickerSource uses the wall clock;
// ManualTicker is advanced explicitly and makes the state machine testable
// without sleeping:
//
//	ticker := rtp.NewManualTicker()
//	jb, _ := rtp.NewJitterBuffer(4, 20*time.Millisecond, ticker, onData)
//	jb.Start()
//	ticker.Tick()
//
// Packets are released strictly in arrival order. The buffer does not reorder by
// sequence number and does not remove duplicates.
//
// # Thread Safety
//
// Packetizer and JitterBuffer are safe for concurrent use. AddData never blocks on
// the consumer; when the buffer is full packets are dropped. The onData callback
// runs on the tick goroutine without the buffer lock held.
package rtp
