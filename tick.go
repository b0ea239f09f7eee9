package voiceengine

import (
	"voiceengine/internal/capturering"
	"voiceengine/internal/eventqueue"
	"voiceengine/internal/wire"
)

// Tick advances the engine by one game-loop step: it drains and encodes
// any frames submitted via SubmitCapturePCM, then for each speaker slot
// checks the speaking timeout, pops the jitter buffer, decodes (running
// packet-loss concealment on a miss), and emits a PCM_FRAME event for
// whatever was produced. nowMs is the host's monotonic clock in
// milliseconds, used only for the speaking timeout.
func (e *Engine) Tick(nowMs uint32) error {
	if !e.initialized {
		return newErr(ErrNotInitialized, "engine not initialized")
	}

	e.drainCapture()
	e.tickSpeakers(nowMs)
	return nil
}

func (e *Engine) drainCapture() {
	dst := make([]int16, capturering.MaxSamples)
	for {
		n, ok := e.capQ.Pop(dst)
		if !ok {
			return
		}
		if uint32(n) != e.frameSamples {
			continue
		}
		e.encodeAndQueueVoice(dst[:n])
	}
}

func (e *Engine) tickSpeakers(nowMs uint32) {
	for i := range e.speakers {
		slot := &e.speakers[i]
		slot.pcmCount = 0

		if slot.speaking && nowMs-slot.lastRxMs > speakingTimeoutMs {
			slot.speaking = false
			e.pushSpeaking(uint16(i+1), false)
		}

		payload, ok := slot.jb.Pop()
		if !ok {
			continue
		}

		// A nil payload means PLC: nothing arrived for this sequence slot.
		n, err := slot.dec.Decode(payload, slot.pcm)
		if err != nil || n <= 0 {
			continue
		}
		slot.pcmCount = n

		e.evQ.Push(pcmFrameEvent(uint16(i+1), e.cfg.SampleRateHz, slot.lastFlags, slot.pcm[:n]))
	}
}

func pcmFrameEvent(speakerID uint16, sampleRateHz uint32, flags uint8, samples []int16) eventqueue.Event {
	return eventqueue.Event{
		Kind:         eventqueue.KindPCMFrame,
		SpeakerID:    speakerID,
		SampleRate:   sampleRateHz,
		Channels:     1,
		Flags:        flags,
		RadioChannel: wire.FlagChannel(flags),
		Samples:      samples,
	}
}

// MixOutput additively mixes every speaker's most recently decoded frame
// (from the last Tick) into out, clamping to int16 range, and returns the
// number of samples written. It returns 0 if no speaker produced audio
// this tick, filling out with silence either way.
func (e *Engine) MixOutput(out []int16) int {
	for i := range out {
		out[i] = 0
	}

	any := false
	for i := range e.speakers {
		slot := &e.speakers[i]
		if slot.pcmCount == 0 {
			continue
		}
		any = true
		n := slot.pcmCount
		if n > len(out) {
			n = len(out)
		}
		for s := 0; s < n; s++ {
			out[s] = clamp16(int32(out[s]) + int32(slot.pcm[s]))
		}
	}

	if !any {
		return 0
	}
	return len(out)
}

func clamp16(x int32) int16 {
	const maxI16 = 32767
	const minI16 = -32768
	if x > maxI16 {
		return maxI16
	}
	if x < minI16 {
		return minI16
	}
	return int16(x)
}
