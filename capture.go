package voiceengine

import (
	"voiceengine/internal/eventqueue"
	"voiceengine/internal/wire"
)

// SubmitCapturePCM and SubmitCapturePCMAsync both route through the same
// SPSC ring so capture behaves identically regardless of which the host
// calls; the distinction exists for API parity with hosts that call one
// from an audio callback thread and the other from the game thread.
// Either is safe to call concurrently with Tick, provided all submissions
// come from a single goroutine.

// SubmitCapturePCMAsync enqueues one frame of mono PCM samples for
// encoding on the next Tick. samples must have exactly the engine's
// configured frame length. Safe to call from a dedicated audio thread
// while Tick runs on another goroutine — this is the engine's one
// producer/consumer concurrency boundary.
func (e *Engine) SubmitCapturePCMAsync(samples []int16) error {
	if len(samples) == 0 {
		return newErr(ErrInvalidArgument, "empty sample buffer")
	}
	if !e.initialized {
		return newErr(ErrNotInitialized, "engine not initialized")
	}
	if !e.connected {
		return newErr(ErrNotConnected, "engine not connected")
	}
	if uint32(len(samples)) != e.frameSamples {
		return newErr(ErrInvalidArgument, "sample count does not match configured frame size")
	}
	e.capQ.Push(samples) // drops silently if full; realtime capture must never block
	return nil
}

// SubmitCapturePCM is an alias for SubmitCapturePCMAsync.
func (e *Engine) SubmitCapturePCM(samples []int16) error {
	return e.SubmitCapturePCMAsync(samples)
}

// txFlags derives the outgoing packet's routing flags from local state.
func (e *Engine) txFlags() uint8 {
	if !e.hasLocalState {
		return 0
	}
	return wire.MakeFlags(e.localState.RadioEnabled, e.localState.RadioChannel, e.localState.PTTDown)
}

// captureShouldTransmit is the capture policy: a pure function of
// CaptureMode and local state.
//
//   - PTTOnly:   transmit only while PTTDown.
//   - AlwaysOn:  proximity audio always transmits; radio audio still
//     requires PTTDown.
func (e *Engine) captureShouldTransmit() bool {
	if e.cfg.CaptureMode == CapturePTTOnly {
		return e.hasLocalState && e.localState.PTTDown
	}
	if e.hasLocalState && e.localState.RadioEnabled {
		return e.localState.PTTDown
	}
	return true
}

// encodeAndQueueVoice Opus-encodes one captured frame (if the capture
// policy allows transmitting it) and queues the resulting VOICE packet for
// PollOutgoing.
func (e *Engine) encodeAndQueueVoice(samples []int16) {
	if !e.captureShouldTransmit() {
		return
	}

	opusBuf := make([]byte, opusMaxPacketBytes)
	n, err := e.enc.Encode(samples, opusBuf)
	if err != nil || n <= 0 {
		msg := "opus encode failed"
		if err != nil {
			msg += ": " + err.Error()
		}
		e.emitError(ErrInternal, msg)
		return
	}

	flags := e.txFlags()
	seq := e.seq
	e.seq++

	pkt := make([]byte, wireMaxPacketBytes)
	pktLen, ok := wire.BuildVoice(pkt, e.playerID, seq, flags, opusBuf[:n])
	if !ok {
		e.emitError(ErrInternal, "build voice packet failed")
		return
	}

	if !e.outQ.Push(pkt[:pktLen]) {
		// Dropping is expected under congestion; keep the engine realtime.
		e.emitLog(eventqueue.LevelWarn, "outgoing queue full (dropping voice)")
	}
}

const (
	opusMaxPacketBytes = 1275
	wireMaxPacketBytes = 1400
)
