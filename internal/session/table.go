package session

import (
	"sync"

	"github.com/taida957789/maplesniffer/internal/cipher"
	"github.com/taida957789/maplesniffer/internal/frame"
	"github.com/taida957789/maplesniffer/internal/model"
)

// Table maps a ConnectionKey and its reverse to the Session handling that
// connection, and guards every lookup/insert/erase and the per-segment
// Session dispatch behind a single mutex (§5): the lock is held for the
// whole of one segment's processing so mutations on a Session never
// interleave, and is released before the caller sees the decoded
// packets it produced.
type Table struct {
	mu       sync.Mutex
	sessions map[ConnectionKey]*Session
	nextID   uint32

	streamOpts []cipher.StreamOption
}

// NewTable constructs an empty Table. opts are forwarded to every
// Session created by it (and from there to its cipher streams).
func NewTable(opts ...cipher.StreamOption) *Table {
	return &Table{
		sessions:   make(map[ConnectionKey]*Session),
		streamOpts: opts,
	}
}

// HandleSegment implements §4.2's per-segment Session Table logic and
// returns whatever DecodedPackets fell out of it.
func (t *Table) HandleSegment(seg frame.Segment, timestamp float64) []model.DecodedPacket {
	t.mu.Lock()
	defer t.mu.Unlock()

	fwd := forwardKey(seg)
	rev := fwd.Reverse()

	sess, fromClient := t.lookupLocked(fwd, rev)

	switch {
	case seg.HasFlag(frame.FlagFIN) || seg.HasFlag(frame.FlagRST):
		if sess != nil {
			t.removeLocked(sess)
		}
		return nil

	case seg.HasFlag(frame.FlagSYN) && !seg.HasFlag(frame.FlagACK):
		if sess != nil {
			t.removeLocked(sess)
		}
		sess = t.newSessionLocked()
		sess.ClientPort = seg.SrcPort
		sess.outboundReasmInit(seg.Seq + 1)
		t.sessions[fwd] = sess
		return nil

	case seg.HasFlag(frame.FlagSYN) && seg.HasFlag(frame.FlagACK):
		if sess != nil {
			sess.inboundReasmInit(seg.Seq + 1)
		}
		return nil

	case len(seg.Payload) == 0:
		return nil

	case sess != nil && sess.State == StateTerminated:
		return nil
	}

	if sess == nil {
		sess = t.newSessionLocked()
		fromClient = true
		t.sessions[fwd] = sess
	}
	// Once Initialized, both 4-tuples are registered as keys, so which key
	// matched no longer tells the direction; the known server endpoint does.
	if sess.ServerPort != 0 {
		fromClient = seg.SrcIP != sess.ServerIP || seg.SrcPort != sess.ServerPort
	}

	var serverIP, clientIP uint32
	var serverPort, clientPort uint16
	if fromClient {
		serverIP, serverPort = seg.DstIP, seg.DstPort
		clientIP, clientPort = seg.SrcIP, seg.SrcPort
	} else {
		serverIP, serverPort = seg.SrcIP, seg.SrcPort
		clientIP, clientPort = seg.DstIP, seg.DstPort
	}

	out, becameInitialized := sess.Dispatch(seg.Payload, seg.Seq, fromClient, serverIP, clientIP, serverPort, clientPort, timestamp)
	if becameInitialized {
		serverKey := ConnectionKey{SrcIP: sess.ServerIP, DstIP: sess.ClientIP, SrcPort: sess.ServerPort, DstPort: sess.ClientPort}
		t.sessions[serverKey] = sess
		t.sessions[serverKey.Reverse()] = sess
	}
	return out
}

func (t *Table) lookupLocked(fwd, rev ConnectionKey) (sess *Session, fromClient bool) {
	if s, ok := t.sessions[fwd]; ok {
		return s, true
	}
	if s, ok := t.sessions[rev]; ok {
		return s, false
	}
	return nil, false
}

func (t *Table) removeLocked(sess *Session) {
	sess.Terminate()
	for k, v := range t.sessions {
		if v == sess {
			delete(t.sessions, k)
		}
	}
}

func (t *Table) newSessionLocked() *Session {
	t.nextID++
	return NewSession(t.nextID, t.streamOpts...)
}

func forwardKey(seg frame.Segment) ConnectionKey {
	return ConnectionKey{
		SrcIP:   seg.SrcIP,
		DstIP:   seg.DstIP,
		SrcPort: seg.SrcPort,
		DstPort: seg.DstPort,
	}
}

// Len reports the number of keys currently registered (each Session is
// registered under at least one, and two once Initialized).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
