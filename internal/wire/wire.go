// Package wire implements the engine's binary datagram protocol: a fixed
// 14-byte big-endian header shared by JOIN and VOICE packets, followed by a
// type-specific payload. Every multi-byte field is encoded big-endian.
package wire

import "encoding/binary"

// PacketType identifies the packet kind carried in the header.
type PacketType uint8

const (
	TypeJoin  PacketType = 1
	TypeVoice PacketType = 2
)

const (
	// Magic is the fixed 4-byte packet tag, ASCII "RVVC".
	Magic uint32 = 0x52565643
	// Version is the only wire format version this package emits or accepts.
	Version uint8 = 1

	headerLen      = 14
	joinPayloadLen = 12

	// Flag bit layout within the header's flags byte.
	flagRadio   = 0x01
	flagChShift = 1
	flagChMask  = 0x0F << flagChShift
	flagPTT     = 0x20
)

// Header is the 14-byte fixed header shared by all packet types, already
// decoded to host byte order.
type Header struct {
	Type       PacketType
	Flags      uint8
	SpeakerID  uint16
	Seq        uint16
	PayloadLen uint16
}

// MakeFlags packs routing state into the single flags byte: bit0 radio,
// bits1-4 channel (0..15), bit5 PTT.
func MakeFlags(radio bool, channel uint8, ptt bool) uint8 {
	var f uint8
	if radio {
		f |= flagRadio
	}
	f |= (channel & 0x0F) << flagChShift
	if ptt {
		f |= flagPTT
	}
	return f
}

// FlagIsRadio reports whether the radio bit is set.
func FlagIsRadio(f uint8) bool { return f&flagRadio != 0 }

// FlagChannel extracts the 4-bit channel number (0..15).
func FlagChannel(f uint8) uint8 { return (f & flagChMask) >> flagChShift }

// FlagPTT reports whether the PTT bit is set.
func FlagPTT(f uint8) bool { return f&flagPTT != 0 }

// BuildJoin writes a JOIN packet (header + 12-byte payload) into dst and
// returns the number of bytes written, or false if dst is too small.
func BuildJoin(dst []byte, sessionID uint64, playerID uint16) (int, bool) {
	need := headerLen + joinPayloadLen
	if len(dst) < need {
		return 0, false
	}
	writeHeader(dst, TypeJoin, 0, 0, 0, joinPayloadLen)
	body := dst[headerLen:need]
	binary.BigEndian.PutUint64(body[0:8], sessionID)
	binary.BigEndian.PutUint16(body[8:10], playerID)
	binary.BigEndian.PutUint16(body[10:12], 0)
	return need, true
}

// ParseJoin parses a JOIN packet's payload, assuming ParseHeader already
// validated the header and confirmed Type == TypeJoin.
func ParseJoin(data []byte, hdr Header) (sessionID uint64, playerID uint16, ok bool) {
	if hdr.PayloadLen != joinPayloadLen || len(data) < headerLen+joinPayloadLen {
		return 0, 0, false
	}
	body := data[headerLen : headerLen+joinPayloadLen]
	sessionID = binary.BigEndian.Uint64(body[0:8])
	playerID = binary.BigEndian.Uint16(body[8:10])
	return sessionID, playerID, true
}

// BuildVoice writes a VOICE packet (header + opaque Opus payload) into dst
// and returns the number of bytes written, or false if dst is too small or
// payload is empty.
func BuildVoice(dst []byte, speakerID, seq uint16, flags uint8, payload []byte) (int, bool) {
	if len(payload) == 0 {
		return 0, false
	}
	need := headerLen + len(payload)
	if len(dst) < need {
		return 0, false
	}
	writeHeader(dst, TypeVoice, speakerID, seq, flags, uint16(len(payload)))
	copy(dst[headerLen:need], payload)
	return need, true
}

// ParseVoice parses a VOICE packet's payload, assuming ParseHeader already
// validated the header and confirmed Type == TypeVoice. The returned slice
// aliases data; callers that retain it beyond the current call must copy.
func ParseVoice(data []byte, hdr Header) (payload []byte, ok bool) {
	need := headerLen + int(hdr.PayloadLen)
	if hdr.PayloadLen == 0 || len(data) < need {
		return nil, false
	}
	return data[headerLen:need], true
}

// ParseHeader validates and decodes the fixed header. It rejects a wrong
// magic, a wrong version, a VOICE payload_len of zero, and a buffer shorter
// than header+payload.
func ParseHeader(data []byte) (Header, bool) {
	if len(data) < headerLen {
		return Header{}, false
	}
	if binary.BigEndian.Uint32(data[0:4]) != Magic {
		return Header{}, false
	}
	if data[4] != Version {
		return Header{}, false
	}
	hdr := Header{
		Type:       PacketType(data[5]),
		Flags:      data[6],
		SpeakerID:  binary.BigEndian.Uint16(data[8:10]),
		Seq:        binary.BigEndian.Uint16(data[10:12]),
		PayloadLen: binary.BigEndian.Uint16(data[12:14]),
	}
	if hdr.Type == TypeVoice && hdr.PayloadLen == 0 {
		return Header{}, false
	}
	if len(data) < headerLen+int(hdr.PayloadLen) {
		return Header{}, false
	}
	return hdr, true
}

func writeHeader(dst []byte, typ PacketType, speakerID, seq uint16, flags uint8, payloadLen uint16) {
	binary.BigEndian.PutUint32(dst[0:4], Magic)
	dst[4] = Version
	dst[5] = uint8(typ)
	dst[6] = flags
	dst[7] = 0 // reserved0
	binary.BigEndian.PutUint16(dst[8:10], speakerID)
	binary.BigEndian.PutUint16(dst[10:12], seq)
	binary.BigEndian.PutUint16(dst[12:14], payloadLen)
}
