// Package reassembly implements the per-direction TCP byte-stream
// reassembler: ordering, deduplication with keep-longer replacement, and an
// optional "hold the newest segment" policy that absorbs a probe segment
// being replaced by its full-data retransmission.
package reassembly

import (
	"github.com/taida957789/maplesniffer/internal/bytespool"
	"github.com/taida957789/maplesniffer/internal/bytesx"
)

// Reassembler stages out-of-order TCP segments for one direction of one
// Session and drains them in sequence order. Sequence comparisons are done
// in signed 32-bit space so a stream that wraps past 0xFFFFFFFF is still
// ordered correctly.
type Reassembler struct {
	nextSeq     uint32
	staged      map[uint32][]byte
	initialized bool
}

// NewReassembler returns a Reassembler with no staged segments; Init must
// be called once the stream's starting sequence number is known.
func NewReassembler() *Reassembler {
	return &Reassembler{staged: make(map[uint32][]byte)}
}

// Init sets the sequence number the next drained byte must start at. Only
// the first call takes effect — re-synchronizing mid-stream is not
// supported, matching the reference behavior of rebuilding the Session
// from scratch on a superseding SYN rather than adjusting an existing
// reassembler.
func (r *Reassembler) Init(nextSeq uint32) {
	if r.initialized {
		return
	}
	r.nextSeq = nextSeq
	r.initialized = true
}

// NextSeq reports the sequence number the reassembler currently expects.
func (r *Reassembler) NextSeq() uint32 {
	return r.nextSeq
}

// AddSegment stages bytes observed at seq. If a segment is already staged
// at the same seq, the longer of the two wins — this implements
// replacement for the common "probe, then full data at the same seq"
// pattern without a separate "duplicate" code path.
func (r *Reassembler) AddSegment(seq uint32, payload []byte) {
	if len(payload) == 0 {
		return
	}
	existing, ok := r.staged[seq]
	if ok && len(existing) >= len(payload) {
		return
	}
	if ok {
		bytespool.Default.Put(existing)
	}
	buf := bytespool.Default.Get(len(payload))
	copy(buf, payload)
	r.staged[seq] = buf
}

// Drain emits the longest contiguous prefix of the stream starting at
// nextSeq. When holdLast is true and only one staged segment remains after
// discarding fully-delivered ones, draining stops one segment early so that
// segment can still be replaced by AddSegment before being emitted.
func (r *Reassembler) Drain(holdLast bool) []byte {
	var out []byte
	for {
		r.discardDelivered()
		if holdLast && len(r.staged) <= 1 {
			return out
		}
		seq, data, ok := r.selectCovering()
		if !ok {
			return out
		}
		start := bytesx.Int32Diff(r.nextSeq, seq)
		// start >= 0 is guaranteed by selectCovering (seq <= nextSeq).
		out = append(out, data[start:]...)
		r.nextSeq = seq + uint32(len(data))
		bytespool.Default.Put(data)
		delete(r.staged, seq)
	}
}

// discardDelivered removes staged segments that end at or before nextSeq —
// bytes already emitted by a previous drain, or fully superseded.
func (r *Reassembler) discardDelivered() {
	for seq, data := range r.staged {
		end := seq + uint32(len(data))
		if bytesx.Int32Diff(end, r.nextSeq) <= 0 {
			bytespool.Default.Put(data)
			delete(r.staged, seq)
		}
	}
}

// selectCovering finds the first staged segment whose start is at or
// before nextSeq, i.e. a segment covering the next byte the caller expects.
func (r *Reassembler) selectCovering() (uint32, []byte, bool) {
	for seq, data := range r.staged {
		if bytesx.Int32Diff(seq, r.nextSeq) <= 0 {
			return seq, data, true
		}
	}
	return 0, nil, false
}

// Pending reports how many segments are currently staged, useful for
// diagnostics and for the hold-last "only one left" check in callers that
// want to observe it without draining.
func (r *Reassembler) Pending() int {
	return len(r.staged)
}
