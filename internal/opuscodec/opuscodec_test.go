package opuscodec

import "testing"

// fakeEncoder/fakeDecoder stand in for libopus in tests so the engine's
// encode/decode call sites can be exercised without cgo.
type fakeEncoder struct {
	lastPCM  []int16
	bitrate  int
	fec      bool
	lossPerc int
}

func (f *fakeEncoder) Encode(pcm []int16, data []byte) (int, error) {
	f.lastPCM = append([]int16(nil), pcm...)
	n := copy(data, []byte{0xAB, 0xCD})
	return n, nil
}
func (f *fakeEncoder) SetBitrate(b int) error        { f.bitrate = b; return nil }
func (f *fakeEncoder) SetInBandFEC(v bool) error     { f.fec = v; return nil }
func (f *fakeEncoder) SetPacketLossPerc(p int) error { f.lossPerc = p; return nil }

type fakeDecoder struct {
	plcCalls int
	fecCalls int
}

func (f *fakeDecoder) Decode(data []byte, pcm []int16) (int, error) {
	if len(data) == 0 {
		f.plcCalls++
		for i := range pcm {
			pcm[i] = 0 // synthesize silence as a stand-in for real PLC
		}
		return len(pcm), nil
	}
	for i := range pcm {
		pcm[i] = int16(data[0])
	}
	return len(pcm), nil
}

func (f *fakeDecoder) DecodeFEC(data []byte, pcm []int16) error {
	f.fecCalls++
	return nil
}

func TestEncoderInterfaceSatisfiedByFake(t *testing.T) {
	var e Encoder = &fakeEncoder{}
	data := make([]byte, MaxPacketBytes)
	n, err := e.Encode([]int16{1, 2, 3}, data)
	if err != nil || n != 2 {
		t.Fatalf("Encode: n=%d err=%v", n, err)
	}
	if err := e.SetBitrate(32000); err != nil {
		t.Fatal(err)
	}
}

func TestDecodePLCCallsDecodeWithNilData(t *testing.T) {
	dec := &fakeDecoder{}
	pcm := make([]int16, 10)
	n, err := DecodePLC(dec, pcm)
	if err != nil || n != len(pcm) {
		t.Fatalf("DecodePLC: n=%d err=%v", n, err)
	}
	if dec.plcCalls != 1 {
		t.Fatalf("expected exactly one PLC-shaped Decode call, got %d", dec.plcCalls)
	}
}

func TestDecoderNormalPathPreservesPayload(t *testing.T) {
	dec := &fakeDecoder{}
	pcm := make([]int16, 4)
	n, err := dec.Decode([]byte{7}, pcm)
	if err != nil || n != len(pcm) {
		t.Fatalf("Decode: n=%d err=%v", n, err)
	}
	for _, s := range pcm {
		if s != 7 {
			t.Fatalf("expected decoded samples to reflect payload, got %d", s)
		}
	}
}
