// Package opuscodec adapts gopkg.in/hraban/opus.v2 behind small interfaces
// so the engine's encode/decode paths can be exercised without linking the
// real cgo-backed libopus at test time.
package opuscodec

import "gopkg.in/hraban/opus.v2"

// MaxPacketBytes is the largest Opus packet RFC 6716 allows.
const MaxPacketBytes = 1275

// Encoder abstracts Opus encoding.
type Encoder interface {
	Encode(pcm []int16, data []byte) (int, error)
	SetBitrate(bitrate int) error
	SetInBandFEC(fec bool) error
	SetPacketLossPerc(lossPerc int) error
}

// Decoder abstracts Opus decoding, including packet-loss concealment and
// forward error correction. A nil or empty data slice passed to Decode
// triggers libopus's built-in PLC.
type Decoder interface {
	Decode(data []byte, pcm []int16) (int, error)
	DecodeFEC(data []byte, pcm []int16) error
}

// NewEncoder constructs a real libopus encoder for VoIP at the given sample
// rate and channel count.
func NewEncoder(sampleRateHz, channels int) (Encoder, error) {
	enc, err := opus.NewEncoder(sampleRateHz, channels, opus.AppVoIP)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// NewDecoder constructs a real libopus decoder at the given sample rate and
// channel count.
func NewDecoder(sampleRateHz, channels int) (Decoder, error) {
	dec, err := opus.NewDecoder(sampleRateHz, channels)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// DecodePLC runs packet-loss concealment: it asks dec to synthesize a
// frame of frameSamples in place of a genuinely missing packet.
func DecodePLC(dec Decoder, pcm []int16) (int, error) {
	return dec.Decode(nil, pcm)
}
