// Package frame extracts IPv4/TCP fields from a raw Ethernet-II frame.
// Parsing is manual, byte-offset based, and fails silently on anything that
// is not a plain IPv4-over-Ethernet TCP segment. It is a stage of the core
// pipeline and does not use a general-purpose packet decoding library.
package frame

import (
	"errors"

	"github.com/taida957789/maplesniffer/internal/bytesx"
)

// ErrUnsupportedFrame means the frame is not an Ethernet-II/IPv4/TCP frame
// this parser understands. Callers should skip the frame, not log it as an
// error — unrelated traffic on the capture interface is routine.
var ErrUnsupportedFrame = errors.New("frame: unsupported link, network, or transport layer")

const (
	etherTypeIPv4  = 0x0800
	protocolTCP    = 6
	ethHeaderLen   = 14
	minIPv4HeaderLen = 20
	minTCPHeaderLen  = 20

	// FlagFIN, FlagSYN, FlagRST, FlagACK are the TCP control bits this
	// parser exposes; the rest of the flags byte is ignored.
	FlagFIN = 0x01
	FlagSYN = 0x02
	FlagRST = 0x04
	FlagACK = 0x10
)

// Segment is the set of IPv4/TCP fields the rest of the engine needs from
// one captured frame.
type Segment struct {
	SrcIP   uint32
	DstIP   uint32
	SrcPort uint16
	DstPort uint16
	Seq     uint32
	Flags   uint8
	Payload []byte
}

// HasFlag reports whether all bits of flag are set.
func (s Segment) HasFlag(flag uint8) bool {
	return s.Flags&flag == flag
}

// Parse extracts a Segment from a raw Ethernet-II frame. It returns
// ErrUnsupportedFrame for anything that is not IPv4-over-Ethernet TCP; the
// caller is expected to discard the frame in that case, per the silent-skip
// policy for unrecognized layers.
func Parse(raw []byte) (Segment, error) {
	if len(raw) < ethHeaderLen {
		return Segment{}, ErrUnsupportedFrame
	}
	etherType := bytesx.ReadUint16BE(raw[12:14])
	if etherType != etherTypeIPv4 {
		return Segment{}, ErrUnsupportedFrame
	}

	ip := raw[ethHeaderLen:]
	if len(ip) < minIPv4HeaderLen {
		return Segment{}, ErrUnsupportedFrame
	}
	version := ip[0] >> 4
	if version != 4 {
		return Segment{}, ErrUnsupportedFrame
	}
	ihl := int(ip[0]&0x0F) * 4
	if ihl < minIPv4HeaderLen || len(ip) < ihl {
		return Segment{}, ErrUnsupportedFrame
	}
	protocol := ip[9]
	if protocol != protocolTCP {
		return Segment{}, ErrUnsupportedFrame
	}
	srcIP := bytesx.ReadUint32BE(ip[12:16])
	dstIP := bytesx.ReadUint32BE(ip[16:20])

	tcp := ip[ihl:]
	if len(tcp) < minTCPHeaderLen {
		return Segment{}, ErrUnsupportedFrame
	}
	dataOffset := int(tcp[12]>>4) * 4
	if dataOffset < minTCPHeaderLen || len(tcp) < dataOffset {
		return Segment{}, ErrUnsupportedFrame
	}
	srcPort := bytesx.ReadUint16BE(tcp[0:2])
	dstPort := bytesx.ReadUint16BE(tcp[2:4])
	seq := bytesx.ReadUint32BE(tcp[4:8])
	flags := tcp[13]

	return Segment{
		SrcIP:   srcIP,
		DstIP:   dstIP,
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     seq,
		Flags:   flags,
		Payload: tcp[dataOffset:],
	}, nil
}
