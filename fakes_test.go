package voiceengine

import "voiceengine/internal/opuscodec"

// fakeEncoder/fakeDecoder stand in for libopus in engine-level tests: the
// encoder stamps the first sample's low byte into the payload, and the
// decoder echoes that byte back into every output sample (or writes -1 for
// every sample on a PLC call), so round trips and concealment are easy to
// assert on without a real Opus codec.
type fakeEncoder struct{}

func (fakeEncoder) Encode(pcm []int16, data []byte) (int, error) {
	if len(pcm) == 0 || len(data) == 0 {
		return 0, nil
	}
	data[0] = byte(pcm[0])
	return 1, nil
}
func (fakeEncoder) SetBitrate(int) error        { return nil }
func (fakeEncoder) SetInBandFEC(bool) error     { return nil }
func (fakeEncoder) SetPacketLossPerc(int) error { return nil }

type fakeDecoder struct{}

func (fakeDecoder) Decode(data []byte, pcm []int16) (int, error) {
	var v int16 = -1
	if len(data) > 0 {
		v = int16(data[0])
	}
	for i := range pcm {
		pcm[i] = v
	}
	return len(pcm), nil
}
func (fakeDecoder) DecodeFEC(data []byte, pcm []int16) error { return nil }

func newTestEngine(t interface{ Fatal(...any) }, mode CaptureMode) *Engine {
	cfg := DefaultSessionConfig()
	cfg.MaxPlayers = 4
	cfg.CaptureMode = mode
	e, err := New(cfg, nil,
		func() (opuscodec.Encoder, error) { return fakeEncoder{}, nil },
		func() (opuscodec.Decoder, error) { return fakeDecoder{}, nil },
	)
	if err != nil {
		t.Fatal(err)
	}
	return e
}
