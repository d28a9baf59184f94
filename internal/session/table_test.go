package session

import (
	"testing"

	"github.com/taida957789/maplesniffer/internal/frame"
)

func seg(srcIP, dstIP uint32, srcPort, dstPort uint16, seq uint32, flags uint8, payload []byte) frame.Segment {
	return frame.Segment{
		SrcIP:   srcIP,
		DstIP:   dstIP,
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     seq,
		Flags:   flags,
		Payload: payload,
	}
}

const (
	clientIP       = 0x0A000001
	serverIPAddr   = 0x0A000002
	clientPortTest = 51000
	serverPortTest = 8484
)

func TestTableHandshakeAndFraming(t *testing.T) {
	table := NewTable()

	// Client SYN.
	out := table.HandleSegment(seg(clientIP, serverIPAddr, clientPortTest, serverPortTest, 1000, frame.FlagSYN, nil), 0)
	if len(out) != 0 {
		t.Fatalf("SYN should not emit packets, got %v", out)
	}

	// Server SYN-ACK.
	out = table.HandleSegment(seg(serverIPAddr, clientIP, serverPortTest, clientPortTest, 5000, frame.FlagSYN|frame.FlagACK, nil), 0)
	if len(out) != 0 {
		t.Fatalf("SYN-ACK should not emit packets, got %v", out)
	}

	handshakeBytes := []byte{
		0x0E, 0x00,
		0x55, 0x00,
		0x07, 0x00,
		'1', '2', '3', '4', '5', '6', '7',
		0x46, 0x72, 0xEE, 0x4D,
		0x5C, 0xB6, 0x7D, 0xA3,
		0x21,
		0x06,
	}
	out = table.HandleSegment(seg(serverIPAddr, clientIP, serverPortTest, clientPortTest, 5001, frame.FlagACK, handshakeBytes), 1.0)
	if len(out) != 1 {
		t.Fatalf("expected exactly one decoded packet (the handshake), got %d: %+v", len(out), out)
	}
	if !out[0].IsHandshake {
		t.Fatalf("expected IsHandshake=true, got %+v", out[0])
	}
	if out[0].Handshake == nil || out[0].Handshake.Version != 0x0055 {
		t.Fatalf("unexpected handshake fields: %+v", out[0].Handshake)
	}
	if out[0].Length != 16 {
		t.Fatalf("length = %d, want 16", out[0].Length)
	}

	if table.Len() == 0 {
		t.Fatalf("expected the table to retain at least one key for the now-initialized session")
	}
}

func TestTableFinRemovesSession(t *testing.T) {
	table := NewTable()
	table.HandleSegment(seg(clientIP, serverIPAddr, clientPortTest, serverPortTest, 1000, frame.FlagSYN, nil), 0)
	before := table.Len()
	if before == 0 {
		t.Fatalf("expected the SYN to register a session key")
	}
	table.HandleSegment(seg(clientIP, serverIPAddr, clientPortTest, serverPortTest, 1001, frame.FlagFIN, nil), 0)
	if table.Len() != 0 {
		t.Fatalf("expected FIN to remove all keys for the session, got %d remaining", table.Len())
	}
}

func TestTableDropsEmptyPayloadAck(t *testing.T) {
	table := NewTable()
	table.HandleSegment(seg(clientIP, serverIPAddr, clientPortTest, serverPortTest, 1000, frame.FlagSYN, nil), 0)
	out := table.HandleSegment(seg(clientIP, serverIPAddr, clientPortTest, serverPortTest, 1001, frame.FlagACK, nil), 0)
	if len(out) != 0 {
		t.Fatalf("expected a pure ACK to be dropped, got %v", out)
	}
}
