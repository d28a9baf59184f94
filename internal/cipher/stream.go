package cipher

import (
	"crypto/aes"

	"github.com/taida957789/maplesniffer/internal/bytespool"
	"github.com/taida957789/maplesniffer/internal/bytesx"
	"github.com/taida957789/maplesniffer/internal/model"
)

// Transform selects the per-direction decryption algorithm: aes_xor is the
// chained AES-256-ECB keystream cipher used everywhere by default;
// data_shift is the simpler subtract-IV cipher used inbound on the game
// port under locale 6.
type Transform uint8

const (
	TransformAESXOR Transform = iota
	TransformDataShift
)

const (
	defaultExpectedSize = 4
	aesXORTableBlocks   = 92
	aesXORFirstChunk    = 1456
	aesXORBigPacketCut  = 4
	aesXORLaterChunk    = 1460
	bigPacketSentinel   = 0xFF00
	maxPayloadLen       = 16 * 1024 * 1024
	maxBufferBytes      = 16 * 1024 * 1024
)

// Stream is one direction's decoder: header validation, length framing,
// payload decryption, IV morphing, and opcode remap application, all
// serialized behind the owning Session's single mutation sequence (there
// is no internal locking here — see the session table's concurrency
// model).
type Stream struct {
	direction model.Direction
	transform Transform
	iv        [4]byte
	key       [32]byte
	block     interface {
		Encrypt(dst, src []byte)
	}

	versionForKey uint16

	buf              []byte
	expectedNextSize int

	dead           bool
	desyncNotified bool

	opcodeRemapEnabled bool
	opcodeRemapTable   map[uint16]uint16
	opcodeKey          []byte
}

// StreamOption configures a Stream at construction time, the same
// functional-options shape used by this module's config layer.
type StreamOption func(*Stream)

// WithOpcodeKey overrides the 3DES key string used to decrypt an inbound
// opcode-0x46 bootstrap packet. This is the one externally tunable
// parameter of the opcode remap bootstrap (§6); callers that don't set it
// get DefaultOpcodeKey.
func WithOpcodeKey(key string) StreamOption {
	return func(s *Stream) { s.opcodeKey = []byte(key) }
}

// NewStream constructs a cipher stream for one direction. versionForKey is
// the same value used for header validation and key derivation: plain
// version for outbound, 0xFFFF-version for inbound (§4.5/§4.6).
func NewStream(direction model.Direction, iv [4]byte, versionForKey uint16, locale uint8, transform Transform, opts ...StreamOption) *Stream {
	key := DeriveKey(versionForKey, locale)
	block, _ := aes.NewCipher(key[:]) // a 32-byte key is always valid for AES-256
	s := &Stream{
		direction:        direction,
		transform:        transform,
		iv:               iv,
		key:              key,
		block:            block,
		versionForKey:    versionForKey,
		expectedNextSize: defaultExpectedSize,
		opcodeKey:        []byte(DefaultOpcodeKey),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IV reports the stream's current 4-byte IV.
func (s *Stream) IV() [4]byte { return s.iv }

// Key reports the stream's 32-byte AES key.
func (s *Stream) Key() [32]byte { return s.key }

// Dead reports whether the stream has desynchronized and stopped framing.
func (s *Stream) Dead() bool { return s.dead }

// SetOpcodeRemap installs a remap table built by the inbound stream and
// activates it on this (outbound) stream.
func (s *Stream) SetOpcodeRemap(table map[uint16]uint16) {
	s.opcodeRemapTable = table
	s.opcodeRemapEnabled = true
}

// Feed appends drained TCP bytes and decodes as many complete packets as
// the buffer now contains. sessionID and timestamp are stamped onto every
// emitted DecodedPacket; onOpcodeRemap, if non-nil, is called with a
// bootstrapped remap table whenever an inbound opcode-0x46 packet arrives
// (the caller installs it on the paired outbound stream).
func (s *Stream) Feed(data []byte, sessionID uint32, timestamp float64, onOpcodeRemap func(map[uint16]uint16)) []model.DecodedPacket {
	if s.dead {
		return nil
	}
	s.appendBuffer(data)

	var out []model.DecodedPacket
	for !s.dead && len(s.buf) >= s.expectedNextSize {
		pkt, ok := s.tryDecodeOne(sessionID, timestamp, onOpcodeRemap)
		if !ok {
			break
		}
		out = append(out, pkt)
	}
	if s.dead && !s.desyncNotified {
		s.desyncNotified = true
		out = append(out, model.DecodedPacket{
			Timestamp:      timestamp,
			SessionID:      sessionID,
			Direction:      s.direction,
			IsDesyncNotice: true,
		})
	}
	return out
}

func (s *Stream) appendBuffer(data []byte) {
	if len(s.buf)+len(data) > maxBufferBytes {
		s.dead = true
		return
	}
	if cap(s.buf)-len(s.buf) < len(data) {
		grown := bytespool.Default.Get(len(s.buf) + len(data))
		copy(grown, s.buf)
		s.buf = grown[:len(s.buf)]
	}
	s.buf = append(s.buf, data...)
}

// tryDecodeOne attempts to decode exactly one packet from the front of the
// buffer. It returns ok=false when more bytes are needed (expectedNextSize
// is updated so the caller knows how much more to wait for) or when the
// stream has just gone dead.
func (s *Stream) tryDecodeOne(sessionID uint32, timestamp float64, onOpcodeRemap func(map[uint16]uint16)) (model.DecodedPacket, bool) {
	buf := s.buf

	versionLow := byte(s.versionForKey)
	versionHigh := byte(s.versionForKey >> 8)
	if (buf[0]^s.iv[2]) != versionLow || (buf[1]^s.iv[3]) != versionHigh {
		s.dead = true
		return model.DecodedPacket{}, false
	}

	ivBytes := bytesx.ReadUint16LE(buf[0:2])
	xorred := bytesx.ReadUint16LE(buf[2:4])
	length := xorred ^ ivBytes

	headerLen := 4
	if length == bigPacketSentinel {
		headerLen = 8
	}
	if len(buf) < headerLen {
		s.expectedNextSize = headerLen
		return model.DecodedPacket{}, false
	}

	var payloadLen int
	if headerLen == 8 {
		big := bytesx.ReadInt32LE(buf[4:8])
		payloadLen = int((uint32(big) ^ uint32(ivBytes)) & 0x7FFFFFFF)
	} else {
		payloadLen = int(length)
	}
	if payloadLen < 0 || payloadLen > maxPayloadLen {
		s.dead = true
		return model.DecodedPacket{}, false
	}

	total := headerLen + payloadLen
	if len(buf) < total {
		s.expectedNextSize = total
		return model.DecodedPacket{}, false
	}

	payload := make([]byte, payloadLen)
	copy(payload, buf[headerLen:total])

	s.decrypt(payload)
	s.iv = shiftIV(s.iv)

	s.advanceBuffer(total)
	s.expectedNextSize = defaultExpectedSize

	return s.emit(payload, sessionID, timestamp, onOpcodeRemap), true
}

func (s *Stream) advanceBuffer(n int) {
	remaining := len(s.buf) - n
	copy(s.buf, s.buf[n:])
	s.buf = s.buf[:remaining]
}

func (s *Stream) decrypt(payload []byte) {
	switch s.transform {
	case TransformDataShift:
		iv0 := s.iv[0]
		for i := range payload {
			payload[i] -= iv0
		}
	default:
		s.decryptAESXOR(payload)
	}
}

// decryptAESXOR builds a keystream by chaining AES-256-ECB encryptions
// starting from the 16-byte IV block, then XORs it into payload in chunks
// (§4.7 step 6).
func (s *Stream) decryptAESXOR(payload []byte) {
	var ivBlock [16]byte
	for i := range ivBlock {
		ivBlock[i] = s.iv[i%4]
	}

	dataSize := len(payload)
	requiredBlocks := dataSize/16 + 1
	if requiredBlocks > aesXORTableBlocks {
		requiredBlocks = aesXORTableBlocks
	}

	xorTable := make([]byte, aesXORTableBlocks*16)
	s.block.Encrypt(xorTable[0:16], ivBlock[:])
	for i := 0; i < requiredBlocks-1; i++ {
		s.block.Encrypt(xorTable[(i+1)*16:(i+2)*16], xorTable[i*16:(i+1)*16])
	}

	startOffset := aesXORFirstChunk
	if dataSize >= bigPacketSentinel {
		startOffset -= aesXORBigPacketCut
	}

	chunkSize := startOffset
	if chunkSize > dataSize {
		chunkSize = dataSize
	}
	pos := 0
	for pos < dataSize {
		for i := 0; i < chunkSize; i++ {
			payload[pos+i] ^= xorTable[i]
		}
		pos += chunkSize
		chunkSize = aesXORLaterChunk
		if rem := dataSize - pos; chunkSize > rem {
			chunkSize = rem
		}
	}
}

func (s *Stream) emit(payload []byte, sessionID uint32, timestamp float64, onOpcodeRemap func(map[uint16]uint16)) model.DecodedPacket {
	var opcode uint16
	if len(payload) >= 2 {
		opcode = bytesx.ReadUint16LE(payload[0:2])
	}
	after := payload
	if len(payload) > 2 {
		after = payload[2:]
	} else {
		after = nil
	}

	if s.direction == model.DirectionInbound && opcode == 0x46 && len(after) >= 4 {
		bufferSize := bytesx.ReadInt32LE(after[0:4])
		table := ParseOpcodeRemap(after[4:], bufferSize, s.opcodeKey)
		if onOpcodeRemap != nil {
			onOpcodeRemap(table)
		}
	}

	if s.opcodeRemapEnabled && s.direction == model.DirectionOutbound {
		if real, ok := s.opcodeRemapTable[opcode]; ok {
			opcode = real
		}
	}

	return model.DecodedPacket{
		Timestamp: timestamp,
		SessionID: sessionID,
		Direction: s.direction,
		Opcode:    opcode,
		Payload:   after,
		Length:    uint32(len(payload)),
	}
}
