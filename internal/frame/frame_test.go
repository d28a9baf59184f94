package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildEthIPv4TCP(t *testing.T, etherType uint16, payload []byte, flags uint8, seq uint32) []byte {
	t.Helper()
	tcpHeaderLen := 20
	ipLen := 20 + tcpHeaderLen + len(payload)
	buf := make([]byte, 14+ipLen)

	// Ethernet header: dst(6) src(6) ethertype(2)
	buf[12] = byte(etherType >> 8)
	buf[13] = byte(etherType)

	ip := buf[14:]
	ip[0] = 0x45 // version 4, IHL 5
	ip[9] = 6    // TCP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	tcp := ip[20:]
	tcp[0], tcp[1] = 0x1F, 0x90 // src port 8080
	tcp[2], tcp[3] = 0x00, 0x50 // dst port 80
	tcp[4] = byte(seq >> 24)
	tcp[5] = byte(seq >> 16)
	tcp[6] = byte(seq >> 8)
	tcp[7] = byte(seq)
	tcp[12] = byte((tcpHeaderLen / 4) << 4)
	tcp[13] = flags
	copy(tcp[20:], payload)

	return buf
}

func TestParseAcceptsIPv4TCP(t *testing.T) {
	payload := []byte("hello")
	raw := buildEthIPv4TCP(t, 0x0800, payload, FlagSYN, 1000)

	seg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := Segment{
		SrcIP:   0x0A000001,
		DstIP:   0x0A000002,
		SrcPort: 8080,
		DstPort: 80,
		Seq:     1000,
		Flags:   FlagSYN,
		Payload: payload,
	}
	if diff := cmp.Diff(want, seg); diff != "" {
		t.Fatalf("unexpected segment (-want +got):\n%s", diff)
	}
}

func TestParseRejectsNonIPv4EtherType(t *testing.T) {
	raw := buildEthIPv4TCP(t, 0x86DD, nil, 0, 0) // IPv6 ethertype, length 14 header still present
	if _, err := Parse(raw); err != ErrUnsupportedFrame {
		t.Fatalf("got %v, want ErrUnsupportedFrame", err)
	}
}

func TestParseRejectsShortFrame(t *testing.T) {
	raw := make([]byte, 13)
	if _, err := Parse(raw); err != ErrUnsupportedFrame {
		t.Fatalf("got %v, want ErrUnsupportedFrame", err)
	}
}

func TestParseExactly14BytesNonIPv4(t *testing.T) {
	raw := make([]byte, 14)
	raw[12], raw[13] = 0x08, 0x06 // ARP ethertype
	if _, err := Parse(raw); err != ErrUnsupportedFrame {
		t.Fatalf("got %v, want ErrUnsupportedFrame", err)
	}
}

func TestParseEmptyPayloadIsStillParsed(t *testing.T) {
	// Frame parsing itself does not drop empty-payload ACKs; that policy
	// lives in the session table (§4.2 step 5), not here.
	raw := buildEthIPv4TCP(t, 0x0800, nil, FlagACK, 5)
	seg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(seg.Payload) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(seg.Payload))
	}
}
