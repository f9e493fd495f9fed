package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/opd-ai/intercom/av/audio"
	"github.com/opd-ai/intercom/av/wav"
	"github.com/opd-ai/intercom/config"
	"github.com/opd-ai/intercom/interfaces"
	"github.com/opd-ai/intercom/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// linkOptions are the audio flags shared by call and answer.
type linkOptions struct {
	tone     float64
	input    string
	record   string
	duration time.Duration
	muted    bool
}

func (lo *linkOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&lo.tone, "tone", 0, "send a sine tone at this frequency in Hz")
	f.StringVar(&lo.input, "input", "", "send audio from a PCM WAV file")
	f.StringVar(&lo.record, "record", "", "record received audio to a WAV file")
	f.DurationVar(&lo.duration, "duration", 0, "hang up after this long (0 runs until interrupted)")
	f.BoolVar(&lo.muted, "mute", false, "start with sending muted")
	cmd.MarkFlagsMutuallyExclusive("tone", "input")
}

func (lo *linkOptions) openSource(cfg *config.Config) (interfaces.AudioSource, func() error, error) {
	noop := func() error { return nil }

	switch {
	case lo.input != "":
		src, err := wav.Open(lo.input, cfg.TickInterval())
		if err != nil {
			return nil, noop, err
		}
		if src.Format() != cfg.Audio {
			src.Close()
			return nil, noop, fmt.Errorf("input %s is %d Hz/%d bit/%d ch, configured %d Hz/%d bit/%d ch",
				lo.input,
				src.Format().SampleRate, src.Format().BitsPerSample, src.Format().Channels,
				cfg.Audio.SampleRate, cfg.Audio.BitsPerSample, cfg.Audio.Channels)
		}
		return src, src.Close, nil
	case lo.tone != 0:
		src, err := audio.NewToneSource(cfg.Audio, lo.tone, cfg.TickInterval())
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	default:
		return nil, noop, nil
	}
}

func (lo *linkOptions) openSink(cfg *config.Config) (interfaces.AudioSink, func() error, error) {
	if lo.record == "" {
		return interfaces.SinkFunc(func([]byte) {}), func() error { return nil }, nil
	}
	sink, err := wav.Create(lo.record, cfg.Audio)
	if err != nil {
		return nil, nil, err
	}
	return sink, sink.Close, nil
}

// runLink exchanges audio over conn until ctx is cancelled, the duration
// elapses or the peer hangs up. It takes ownership of conn.
func runLink(ctx context.Context, cmd *cobra.Command, cfg *config.Config, conn io.ReadWriteCloser, lo *linkOptions) (err error) {
	src, closeSource, err := lo.openSource(cfg)
	if err != nil {
		conn.Close()
		return err
	}
	defer closeSource()

	sink, closeSink, err := lo.openSink(cfg)
	if err != nil {
		conn.Close()
		return err
	}
	defer func() {
		if cerr := closeSink(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to finish recording: %w", cerr)
		}
	}()

	sess, err := session.New(cfg, conn, sink)
	if err != nil {
		conn.Close()
		return err
	}
	defer sess.Close()

	sess.SetMuted(lo.muted)
	if err := sess.Start(ctx); err != nil {
		return err
	}

	var deadline <-chan time.Time
	if lo.duration > 0 {
		timer := time.NewTimer(lo.duration)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()

	var sendErr error
	fields := logrus.Fields{
		"function":   "runLink",
		"session_id": sess.ID(),
	}

loop:
	for {
		select {
		case <-ctx.Done():
			logrus.WithFields(fields).Info("Interrupted, hanging up")
			break loop
		case <-deadline:
			logrus.WithFields(fields).Info("Duration elapsed, hanging up")
			break loop
		case <-sess.Done():
			if perr := sess.Err(); perr != nil {
				logrus.WithFields(fields).WithField("error", perr.Error()).Info("Peer hung up")
			}
			break loop
		case <-ticker.C:
			if src == nil {
				continue
			}
			pcm, cerr := src.Capture()
			if errors.Is(cerr, io.EOF) {
				logrus.WithFields(fields).Info("Input exhausted, listening only")
				src = nil
				continue
			}
			if cerr != nil {
				return fmt.Errorf("failed to capture audio: %w", cerr)
			}
			if serr := sess.SendPCM(pcm); serr != nil {
				select {
				case <-sess.Done():
					// Peer hung up mid write.
				default:
					if !errors.Is(serr, session.ErrSessionClosed) {
						logrus.WithFields(fields).WithField("error", serr.Error()).Error("Failed to send frame")
						sendErr = serr
					}
				}
				break loop
			}
		}
	}

	if err := sess.Close(); err != nil {
		logrus.WithFields(fields).WithField("error", err.Error()).Debug("Close reported error")
	}
	printStats(cmd.OutOrStdout(), sess.Stats())
	return sendErr
}

func printStats(w io.Writer, st session.Stats) {
	fmt.Fprintf(w, "session %s\n", st.ID)
	fmt.Fprintf(w, "  sent:      %d packets (%d muted frames)\n", st.PacketsSent, st.FramesMuted)
	fmt.Fprintf(w, "  received:  %d packets from %d sources\n", st.PacketsReceived, len(st.Sources))
	fmt.Fprintf(w, "  mixed:     %d frames, last peak %d\n", st.FramesMixed, st.LastPeak)
	fmt.Fprintf(w, "  errors:    %d parse, %d framing, %d dropped\n", st.ParseErrors, st.FramingFaults, st.PendingDropped)
	for id, js := range st.Sources {
		fmt.Fprintf(w, "  source %08x: accepted %d, dropped %d, emitted %d\n", id, js.Accepted, js.Dropped, js.Emitted)
	}
}
