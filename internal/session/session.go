package session

import (
	"github.com/taida957789/maplesniffer/internal/cipher"
	"github.com/taida957789/maplesniffer/internal/handshake"
	"github.com/taida957789/maplesniffer/internal/model"
	"github.com/taida957789/maplesniffer/internal/reassembly"
)

// State is a Session's lifecycle position (§3's Nascent/Initialized/Terminated).
type State uint8

const (
	StateNascent State = iota
	StateInitialized
	StateTerminated
)

// Session is the unit of cipher state for one logical client-server
// connection. It is owned exclusively by the Table that created it and
// is mutated only from within a single call to Dispatch at a time — see
// the package-level concurrency note on Table.
type Session struct {
	ID    uint32
	State State

	ServerIP   uint32
	ServerPort uint16
	ClientIP   uint32
	ClientPort uint16

	pendingInbound  []byte
	pendingOutbound []byte

	lastServerSeqEnd uint32
	lastClientSeqEnd uint32

	inboundReasm  *reassembly.Reassembler
	outboundReasm *reassembly.Reassembler

	inboundStream  *cipher.Stream
	outboundStream *cipher.Stream

	streamOpts []cipher.StreamOption

	// handshakeEmission holds the synthetic handshake DecodedPacket between
	// completeHandshake and the drain calls that follow it in the same
	// Dispatch call, so it is always the first packet returned.
	handshakeEmission *model.DecodedPacket
}

// NewSession creates a fresh, Nascent Session. opts are forwarded to both
// cipher streams once the handshake completes (e.g. a non-default opcode
// remap key).
func NewSession(id uint32, opts ...cipher.StreamOption) *Session {
	return &Session{
		ID:            id,
		State:         StateNascent,
		inboundReasm:  reassembly.NewReassembler(),
		outboundReasm: reassembly.NewReassembler(),
		streamOpts:    opts,
	}
}

// Dispatch feeds one TCP segment's payload into the session per §4.4 and
// returns whatever DecodedPackets that produced. fromClient is true for
// client→server segments, false for server→client. It reports whether
// this call transitioned the Session from Nascent to Initialized, so the
// caller can register the now-known server-side key.
func (s *Session) Dispatch(payload []byte, seq uint32, fromClient bool, serverIP, clientIP uint32, serverPort, clientPort uint16, timestamp float64) (out []model.DecodedPacket, becameInitialized bool) {
	if s.State == StateTerminated {
		return nil, false
	}

	if s.State == StateNascent {
		return s.dispatchPreHandshake(payload, seq, fromClient, serverIP, clientIP, serverPort, clientPort, timestamp)
	}
	return s.dispatchPostHandshake(payload, seq, fromClient, timestamp), false
}

func (s *Session) dispatchPreHandshake(payload []byte, seq uint32, fromClient bool, serverIP, clientIP uint32, serverPort, clientPort uint16, timestamp float64) (out []model.DecodedPacket, becameInitialized bool) {
	if !fromClient {
		if s.ServerPort == 0 {
			s.ServerIP = serverIP
			s.ServerPort = serverPort
			s.ClientIP = clientIP
			s.ClientPort = clientPort
		}
		s.pendingInbound = append(s.pendingInbound, payload...)
		s.lastServerSeqEnd = seq + uint32(len(payload))

		parsed, ok := handshake.Detect(s.pendingInbound, s.ServerPort)
		if !ok {
			return nil, false
		}
		s.completeHandshake(parsed, timestamp)
		becameInitialized = true

		out = s.drainPostHandshakeInbound(timestamp)
		out = append(out, s.drainPostHandshakeOutbound(timestamp)...)
		return out, becameInitialized
	}

	s.pendingOutbound = append(s.pendingOutbound, payload...)
	s.lastClientSeqEnd = seq + uint32(len(payload))
	return nil, false
}

func (s *Session) completeHandshake(parsed handshake.Parsed, timestamp float64) {
	s.outboundStream, s.inboundStream = handshake.NewStreams(parsed, s.streamOpts...)
	// Pre-handshake payloads bypass the reassemblers, so the stream
	// position they reached replaces any SYN/SYN-ACK seed (Init only
	// honors its first call, hence the fresh reassemblers).
	s.inboundReasm = reassembly.NewReassembler()
	s.inboundReasm.Init(s.lastServerSeqEnd)
	if len(s.pendingOutbound) > 0 {
		s.outboundReasm = reassembly.NewReassembler()
	}
	s.outboundReasm.Init(s.lastClientSeqEnd)
	s.pendingInbound = s.pendingInbound[parsed.Consumed:]
	s.State = StateInitialized

	out := model.DecodedPacket{
		Timestamp:   timestamp,
		SessionID:   s.ID,
		Direction:   model.DirectionInbound,
		Opcode:      model.HandshakeOpcode,
		IsHandshake: true,
		Length:      uint32(parsed.Consumed),
		Handshake:   &parsed.Fields,
	}
	s.handshakeEmission = &out
}

func (s *Session) drainPostHandshakeInbound(timestamp float64) []model.DecodedPacket {
	out := make([]model.DecodedPacket, 0, 1)
	if s.handshakeEmission != nil {
		out = append(out, *s.handshakeEmission)
		s.handshakeEmission = nil
	}
	if len(s.pendingInbound) > 0 {
		out = append(out, s.inboundStream.Feed(s.pendingInbound, s.ID, timestamp, s.installOpcodeRemap)...)
		s.pendingInbound = nil
	}
	return out
}

func (s *Session) drainPostHandshakeOutbound(timestamp float64) []model.DecodedPacket {
	if len(s.pendingOutbound) == 0 {
		return nil
	}
	out := s.outboundStream.Feed(s.pendingOutbound, s.ID, timestamp, nil)
	s.pendingOutbound = nil
	return out
}

func (s *Session) dispatchPostHandshake(payload []byte, seq uint32, fromClient bool, timestamp float64) []model.DecodedPacket {
	if fromClient {
		s.outboundReasm.AddSegment(seq, payload)
		drained := s.outboundReasm.Drain(false)
		if len(drained) == 0 {
			return nil
		}
		return s.outboundStream.Feed(drained, s.ID, timestamp, nil)
	}

	s.inboundReasm.AddSegment(seq, payload)
	drained := s.inboundReasm.Drain(true)
	if len(drained) == 0 {
		return nil
	}
	return s.inboundStream.Feed(drained, s.ID, timestamp, s.installOpcodeRemap)
}

func (s *Session) installOpcodeRemap(table map[uint16]uint16) {
	if s.outboundStream != nil {
		s.outboundStream.SetOpcodeRemap(table)
	}
}

// Terminate moves the Session to its terminal state; further Dispatch
// calls become no-ops.
func (s *Session) Terminate() {
	s.State = StateTerminated
}

// outboundReasmInit and inboundReasmInit seed a reassembler's next_seq
// from the SYN/SYN-ACK exchange (§4.2 steps 3-4). completeHandshake
// replaces that seed with the end of the last pre-handshake segment of a
// direction whenever that direction carried payload before the handshake.
func (s *Session) outboundReasmInit(nextSeq uint32) { s.outboundReasm.Init(nextSeq) }
func (s *Session) inboundReasmInit(nextSeq uint32)  { s.inboundReasm.Init(nextSeq) }
