// Command voicedemo is a headless reference host for the voiceengine
// package: it drives microphone capture and speaker playback through
// PortAudio, ships encoded frames over WebTransport (or, with -webrtc, a
// WebRTC DataChannel signalled over WebSocket), and logs engine log lines
// and connection, speaking and error events through the standard log
// package. PCM frame events are not logged; decoded audio reaches the
// speaker through MixOutput.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gordonklaus/portaudio"

	"voiceengine"
	"voiceengine/internal/eventqueue"
)

func main() {
	var (
		relayAddr = flag.String("relay", "127.0.0.1:4443", "WebTransport relay address (host:port)")
		signalURL = flag.String("signal", "ws://127.0.0.1:8080/signal", "WebRTC signalling WebSocket URL")
		useWebRTC = flag.Bool("webrtc", false, "use the WebRTC DataChannel transport instead of WebTransport")
		sessionID = flag.Uint64("session", 1, "session id to join")
		playerID  = flag.Uint("player", 1, "local player id")
		pttDown   = flag.Bool("ptt", true, "hold PTT down for the duration of the demo")
		alwaysOn  = flag.Bool("always-on", false, "use ALWAYS_ON capture mode instead of PTT_ONLY")
	)
	flag.Parse()

	if err := portaudio.Initialize(); err != nil {
		log.Fatalf("portaudio init: %v", err)
	}
	defer portaudio.Terminate()

	cfg := voiceengine.DefaultSessionConfig()
	if *alwaysOn {
		cfg.CaptureMode = voiceengine.CaptureAlwaysOn
	}

	engine, err := voiceengine.New(cfg, engineLogger, nil, nil)
	if err != nil {
		log.Fatalf("engine init: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var transport Transporter
	if *useWebRTC {
		transport, err = DialWebRTC(ctx, *signalURL)
	} else {
		transport, err = DialWebTransport(ctx, *relayAddr)
	}
	if err != nil {
		log.Fatalf("transport dial: %v", err)
	}
	defer transport.Close()

	if err := engine.Connect(voiceengine.ConnectInfo{
		SessionID: *sessionID,
		PlayerID:  uint16(*playerID),
	}); err != nil {
		log.Fatalf("engine connect: %v", err)
	}

	if err := engine.SetLocalState(voiceengine.LocalState{
		Forward: voiceengine.Vec3{Z: 1},
		PTTDown: *pttDown,
	}); err != nil {
		log.Fatalf("set local state: %v", err)
	}

	frameSize := int(cfg.SampleRateHz * cfg.FrameMs / 1000)

	capture, err := newCapturePipeline(engine, frameSize)
	if err != nil {
		log.Fatalf("capture pipeline: %v", err)
	}
	if err := capture.Start(); err != nil {
		log.Fatalf("capture start: %v", err)
	}
	defer capture.Close()

	playback, err := newPlaybackPipeline(frameSize)
	if err != nil {
		log.Fatalf("playback pipeline: %v", err)
	}
	if err := playback.Start(); err != nil {
		log.Fatalf("playback start: %v", err)
	}
	defer playback.Close()

	go captureLoop(ctx, capture)
	go recvLoop(ctx, engine, transport)
	go sendLoop(ctx, engine, transport)

	tickLoop(ctx, engine, playback)
}

func engineLogger(level eventqueue.Level, msg string) {
	switch level {
	case eventqueue.LevelWarn:
		log.Printf("[warn] %s", msg)
	case eventqueue.LevelError:
		log.Printf("[error] %s", msg)
	default:
		log.Printf("[info] %s", msg)
	}
}

func captureLoop(ctx context.Context, capture *capturePipeline) {
	for ctx.Err() == nil {
		if err := capture.ReadOnce(); err != nil {
			log.Printf("[audio] capture read: %v", err)
			return
		}
	}
}

func sendLoop(ctx context.Context, engine *voiceengine.Engine, transport Transporter) {
	buf := make([]byte, 1500)
	for ctx.Err() == nil {
		n, err := engine.PollOutgoing(buf)
		if err != nil {
			log.Printf("[net] poll outgoing: %v", err)
			continue
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		if err := transport.Send(buf[:n]); err != nil {
			log.Printf("[net] send: %v", err)
		}
	}
}

func recvLoop(ctx context.Context, engine *voiceengine.Engine, transport Transporter) {
	for ctx.Err() == nil {
		data, err := transport.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[net] recv: %v", err)
			}
			return
		}
		nowMs := uint32(time.Now().UnixMilli())
		if err := engine.IngestPacket(data, nowMs); err != nil {
			log.Printf("[net] ingest: %v", err)
		}
	}
}

func tickLoop(ctx context.Context, engine *voiceengine.Engine, playback *playbackPipeline) {
	frameDur := 20 * time.Millisecond
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		nowMs := uint32(time.Since(start).Milliseconds())
		if err := engine.Tick(nowMs); err != nil {
			log.Printf("[engine] tick: %v", err)
			continue
		}

		for {
			ev, ok := engine.PollEvent()
			if !ok {
				break
			}
			handleEvent(ev)
		}

		engine.MixOutput(playback.i16buf)
		if err := playback.WriteMixed(); err != nil {
			log.Printf("[audio] playback write: %v", err)
		}
	}
}

func handleEvent(ev eventqueue.Event) {
	switch ev.Kind {
	case eventqueue.KindConnected:
		log.Println("[engine] connected")
	case eventqueue.KindDisconnected:
		log.Println("[engine] disconnected")
	case eventqueue.KindSpeaking:
		log.Printf("[engine] speaker %d speaking=%v", ev.SpeakerID, ev.IsSpeaking)
	case eventqueue.KindError:
		log.Printf("[engine] error %d: %s", ev.ErrCode, ev.Message)
	case eventqueue.KindLog:
		// already surfaced via engineLogger
	case eventqueue.KindPCMFrame:
		// mixed into output PCM by MixOutput; nothing to do per-frame here
	}
}
