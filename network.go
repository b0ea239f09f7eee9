package voiceengine

import "voiceengine/internal/wire"

// IngestPacket parses one received datagram and, if it's a VOICE packet
// from a valid speaker slot, pushes its payload into that speaker's jitter
// buffer. Malformed packets, JOIN packets, and packets from an
// out-of-range speaker_id are silently ignored — ingest never fails loudly
// for data a misbehaving or lagging peer might send.
func (e *Engine) IngestPacket(data []byte, nowMs uint32) error {
	if len(data) == 0 {
		return newErr(ErrInvalidArgument, "empty packet")
	}
	if !e.initialized {
		return newErr(ErrNotInitialized, "engine not initialized")
	}

	hdr, ok := wire.ParseHeader(data)
	if !ok || hdr.Type != wire.TypeVoice {
		return nil
	}

	payload, ok := wire.ParseVoice(data, hdr)
	if !ok {
		return nil
	}

	if hdr.SpeakerID == 0 || int(hdr.SpeakerID) > len(e.speakers) {
		return nil
	}
	idx := hdr.SpeakerID - 1

	payloadCopy := append([]byte(nil), payload...)

	slot := &e.speakers[idx]
	slot.lastFlags = hdr.Flags
	slot.jb.Push(hdr.Seq, payloadCopy)
	slot.lastRxMs = nowMs

	if !slot.speaking {
		slot.speaking = true
		e.pushSpeaking(hdr.SpeakerID, true)
	}

	return nil
}

// PollOutgoing copies the oldest queued outgoing packet into dst and
// returns its length in bytes. It returns (0, nil) if nothing is queued,
// and a non-nil error if dst is too small for the next packet — in which
// case the packet remains queued for a retried call with a larger buffer.
func (e *Engine) PollOutgoing(dst []byte) (int, error) {
	n, ok := e.outQ.Pop(dst)
	if !ok {
		return 0, newErr(ErrInvalidArgument, "destination buffer too small for next outgoing packet")
	}
	return n, nil
}
