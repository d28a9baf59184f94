package analyzer

import "testing"

func buildFrame(srcIP, dstIP [4]byte, srcPort, dstPort uint16, seq uint32, flags uint8, payload []byte) []byte {
	tcpHeaderLen := 20
	ipLen := 20 + tcpHeaderLen + len(payload)
	buf := make([]byte, 14+ipLen)

	buf[12], buf[13] = 0x08, 0x00 // IPv4

	ip := buf[14:]
	ip[0] = 0x45
	ip[9] = 6
	copy(ip[12:16], srcIP[:])
	copy(ip[16:20], dstIP[:])

	tcp := ip[20:]
	tcp[0], tcp[1] = byte(srcPort>>8), byte(srcPort)
	tcp[2], tcp[3] = byte(dstPort>>8), byte(dstPort)
	tcp[4], tcp[5], tcp[6], tcp[7] = byte(seq>>24), byte(seq>>16), byte(seq>>8), byte(seq)
	tcp[12] = byte((tcpHeaderLen / 4) << 4)
	tcp[13] = flags
	copy(tcp[20:], payload)

	return buf
}

var (
	clientAddr = [4]byte{10, 0, 0, 1}
	serverAddr = [4]byte{10, 0, 0, 2}
)

const (
	clientPort = 51000
	serverPort = 8484
)

// TestEngineProcessFrameThroughHandshake feeds a SYN, a SYN-ACK, and the
// inbound handshake segment from the end-to-end handshake scenario through
// ProcessFrame and checks that the handshake surfaces as a decoded packet.
func TestEngineProcessFrameThroughHandshake(t *testing.T) {
	e := New()

	synFrame := buildFrame(clientAddr, serverAddr, clientPort, serverPort, 1000, 0x02, nil)
	if out := e.ProcessFrame(synFrame, 0); len(out) != 0 {
		t.Fatalf("SYN produced output: %+v", out)
	}

	synAckFrame := buildFrame(serverAddr, clientAddr, serverPort, clientPort, 5000, 0x02|0x10, nil)
	if out := e.ProcessFrame(synAckFrame, 0); len(out) != 0 {
		t.Fatalf("SYN-ACK produced output: %+v", out)
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
	dataFrame := buildFrame(serverAddr, clientAddr, serverPort, clientPort, 5001, 0x10, handshakeBytes)
	out := e.ProcessFrame(dataFrame, 1.0)
	if len(out) != 1 {
		t.Fatalf("expected one decoded packet, got %d: %+v", len(out), out)
	}
	if !out[0].IsHandshake {
		t.Fatalf("expected a handshake packet, got %+v", out[0])
	}
	if e.SessionCount() == 0 {
		t.Fatalf("expected the engine to retain a session key after the handshake")
	}
}

// TestEngineProcessFrameSkipsUnsupportedFrames exercises the silent-skip
// path for frames that aren't Ethernet-II/IPv4/TCP.
func TestEngineProcessFrameSkipsUnsupportedFrames(t *testing.T) {
	e := New()
	if out := e.ProcessFrame([]byte{0x00, 0x01}, 0); out != nil {
		t.Fatalf("expected nil for a too-short frame, got %+v", out)
	}
}
