// Package bytesx collects the small byte-order helpers the frame, handshake
// and cipher packages need. The wire formats here mix big-endian (network
// byte order, used by the IPv4/TCP header fields) and little-endian (used
// throughout the MapleStory application-layer framing), so every helper
// names its endianness explicitly rather than assuming one.
package bytesx

import "encoding/binary"

// ReadUint16LE reads a little-endian u16 at offset 0 of b.
func ReadUint16LE(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// ReadUint32LE reads a little-endian u32 at offset 0 of b.
func ReadUint32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// ReadInt32LE reads a little-endian i32 at offset 0 of b.
func ReadInt32LE(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// PutUint16LE writes v as a little-endian u16 at offset 0 of b.
func PutUint16LE(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// ReadUint16BE reads a big-endian u16 at offset 0 of b (network byte order).
func ReadUint16BE(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// ReadUint32BE reads a big-endian u32 at offset 0 of b (network byte order).
func ReadUint32BE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// Int32Diff returns a-b as a signed 32-bit difference over the wrap-around
// uint32 sequence space. Used to compare TCP sequence numbers and other
// mod-2^32 counters safely across wraps: a "comes after" b iff the result
// is positive.
func Int32Diff(a, b uint32) int32 {
	return int32(a - b)
}
