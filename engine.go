// Package voiceengine implements an embeddable, transport-agnostic
// realtime voice engine for multiplayer games: microphone PCM in, Opus
// encode, binary datagrams out; datagrams in, per-speaker jitter buffers,
// Opus decode, PCM/event callbacks out. The engine owns no sockets and no
// audio device — a host drives it by calling SubmitCapturePCM with mic
// frames, IngestPacket with received datagrams, Tick once per game update,
// and PollOutgoing/PollEvent/MixOutput to read results back out.
package voiceengine

import (
	"voiceengine/internal/capturering"
	"voiceengine/internal/eventqueue"
	"voiceengine/internal/jitter"
	"voiceengine/internal/opuscodec"
	"voiceengine/internal/outqueue"
	"voiceengine/internal/wire"
)

// LogFunc receives the engine's own diagnostic log lines. It must not
// block and must not call back into the Engine.
type LogFunc func(level eventqueue.Level, message string)

// speakingTimeoutMs is how long a per-speaker slot is held "speaking"
// after its last ingested packet before Tick emits a SPEAKING(false) event.
const speakingTimeoutMs = 250

type speakerSlot struct {
	dec       opuscodec.Decoder
	jb        *jitter.Buffer
	pcm       []int16
	pcmCount  int
	speaking  bool
	lastRxMs  uint32
	lastFlags uint8
}

// Engine is the engine instance a host creates with New. It is not safe
// for concurrent use except where individually documented (SubmitCapturePCM
// and its alias SubmitCapturePCMAsync are the SPSC-safe entry points,
// callable from one separate audio thread while Tick runs elsewhere).
type Engine struct {
	cfg     SessionConfig
	log     LogFunc
	msgBufs eventqueue.MsgBuffers

	initialized bool
	connected   bool

	sessionID uint64
	playerID  uint16

	frameSamples uint32

	enc opuscodec.Encoder

	speakers []speakerSlot

	localState    LocalState
	hasLocalState bool

	capQ *capturering.Ring
	outQ *outqueue.Queue
	evQ  *eventqueue.Queue

	seq uint16
}

// New validates cfg, allocates per-player decoders and jitter buffers, and
// returns a ready-to-use Engine. It returns an error if cfg names an
// incompatible API version, zero MaxPlayers, or a frame size the codec
// can't support.
//
// newDecoder lets callers (tests, or a host wiring a fake codec) supply an
// opuscodec.Decoder factory instead of a real libopus decoder; pass nil in
// production to use opuscodec.NewDecoder.
func New(cfg SessionConfig, log LogFunc, newEncoder func() (opuscodec.Encoder, error), newDecoder func() (opuscodec.Decoder, error)) (*Engine, error) {
	if cfg.APIVersionMajor != APIVersionMajor {
		return nil, newErr(ErrInvalidArgument, "unsupported API major version")
	}
	if cfg.APIVersionMinor > APIVersionMinor {
		return nil, newErr(ErrInvalidArgument, "unsupported API minor version")
	}
	if cfg.MaxPlayers == 0 {
		return nil, newErr(ErrInvalidArgument, "max players must be > 0")
	}
	if cfg.CaptureMode != CapturePTTOnly && cfg.CaptureMode != CaptureAlwaysOn {
		cfg.CaptureMode = CapturePTTOnly
	}

	frameSamples := cfg.SampleRateHz * cfg.FrameMs / 1000
	if frameSamples == 0 || frameSamples > capturering.MaxSamples {
		return nil, newErr(ErrInvalidArgument, "frame_ms/sample_rate_hz produce an invalid frame size")
	}

	if newEncoder == nil {
		newEncoder = func() (opuscodec.Encoder, error) {
			return opuscodec.NewEncoder(int(cfg.SampleRateHz), 1)
		}
	}
	if newDecoder == nil {
		newDecoder = func() (opuscodec.Decoder, error) {
			return opuscodec.NewDecoder(int(cfg.SampleRateHz), 1)
		}
	}

	enc, err := newEncoder()
	if err != nil {
		return nil, newErr(ErrInternal, "failed to create encoder: "+err.Error())
	}
	enc.SetBitrate(20000)
	enc.SetInBandFEC(false)

	e := &Engine{
		cfg:          cfg,
		log:          log,
		frameSamples: frameSamples,
		enc:          enc,
		speakers:     make([]speakerSlot, cfg.MaxPlayers),
		capQ:         capturering.New(16),
		outQ:         outqueue.New(),
		evQ:          eventqueue.New(),
	}

	for i := range e.speakers {
		dec, err := newDecoder()
		if err != nil {
			return nil, newErr(ErrInternal, "failed to create decoder: "+err.Error())
		}
		e.speakers[i] = speakerSlot{
			dec: dec,
			jb:  jitter.New(),
			pcm: make([]int16, frameSamples),
		}
	}

	e.initialized = true
	e.emitLog(eventqueue.LevelInfo, "voiceengine: initialized")
	return e, nil
}

// Close marks the engine as closed: afterwards Connect, Tick, IngestPacket
// and SubmitCapturePCM return ErrNotInitialized. It frees nothing itself;
// the garbage collector reclaims the engine's memory. The Engine must not be
// used afterward.
func (e *Engine) Close() {
	e.initialized = false
}

func (e *Engine) emitLog(level eventqueue.Level, msg string) {
	text := e.msgBufs.Next(msg)
	if e.log != nil {
		e.log(level, text)
	}
	e.evQ.Push(eventqueue.Event{Kind: eventqueue.KindLog, Level: level, Message: text})
}

func (e *Engine) emitError(code Result, msg string) {
	text := e.msgBufs.Next(msg)
	e.evQ.Push(eventqueue.Event{Kind: eventqueue.KindError, ErrCode: int(code), Message: text})
}

// Connect records the session/player identity, queues a JOIN packet for
// the host's transport to send, and emits a CONNECTED event.
func (e *Engine) Connect(info ConnectInfo) error {
	if !e.initialized {
		return newErr(ErrNotInitialized, "engine not initialized")
	}

	e.sessionID = info.SessionID
	e.playerID = info.PlayerID

	buf := make([]byte, 64)
	n, ok := wire.BuildJoin(buf, info.SessionID, info.PlayerID)
	if !ok {
		e.emitError(ErrInternal, "connect: failed to build join packet")
		return newErr(ErrInternal, "failed to build join packet")
	}
	if !e.outQ.Push(buf[:n]) {
		e.emitError(ErrInternal, "connect: outgoing queue full")
		return newErr(ErrInternal, "outgoing queue full")
	}

	e.connected = true
	e.evQ.Push(eventqueue.Event{Kind: eventqueue.KindConnected})
	return nil
}

// Disconnect marks the engine as no longer connected and emits a
// DISCONNECTED event. It is always safe to call, even if never connected.
func (e *Engine) Disconnect() error {
	e.connected = false
	e.evQ.Push(eventqueue.Event{Kind: eventqueue.KindDisconnected})
	return nil
}

// SetLocalState updates the local player's transmit-relevant state. It
// takes effect at the next Tick, for every frame that Tick drains from the
// capture ring, including frames submitted before this call.
func (e *Engine) SetLocalState(st LocalState) error {
	e.localState = st
	e.hasLocalState = true
	return nil
}

// Connected reports whether Connect has been called without an intervening
// Disconnect.
func (e *Engine) Connected() bool { return e.connected }
