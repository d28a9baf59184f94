package session

// ConnectionKey is the 4-tuple a Session is looked up by. Both the
// forward and reverse key resolve to the same Session; the table stores
// it under both.
type ConnectionKey struct {
	SrcIP   uint32
	DstIP   uint32
	SrcPort uint16
	DstPort uint16
}

// Reverse swaps src/dst so the opposite direction's segments resolve to
// the same key.
func (k ConnectionKey) Reverse() ConnectionKey {
	return ConnectionKey{
		SrcIP:   k.DstIP,
		DstIP:   k.SrcIP,
		SrcPort: k.DstPort,
		DstPort: k.SrcPort,
	}
}
