// Package session runs one intercom link: the send and receive audio paths
// between a local sound device and a remote peer.
//
//	conn, err := transport.DialTCP(ctx, peer, transport.DefaultDialTimeout)
//	s, err := session.New(cfg, conn, speaker)
//	s.Start(ctx)
//	defer s.Close()
//
//	for {
//	    pcm, err := mic.Capture()
//	    if err != nil {
//	        break
//	    }
//	    s.SendPCM(pcm)
//	}
//
// Every remote RTP source gets its own jitter buffer, so a relay forwarding
// several speakers over one connection is mixed into a single playback stream.
// With echo cancellation enabled the most recent captured frame is subtracted
// from the mix before playback.
package session
