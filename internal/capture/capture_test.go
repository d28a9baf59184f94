package capture

import (
	"testing"

	"github.com/taida957789/maplesniffer/internal/analyzer"
	"github.com/taida957789/maplesniffer/internal/model"
)

// TestStopWithoutStartIsSafe constructs a Capture with options and confirms
// that Stop is safe to call without a prior successful Start (e.g. a caller
// that constructs a Capture, fails to find the interface, and tears down
// unconditionally).
func TestStopWithoutStartIsSafe(t *testing.T) {
	engine := analyzer.New()
	var got []model.DecodedPacket
	sink := func(p model.DecodedPacket) { got = append(got, p) }

	c := New("lo", engine, sink, WithBPFFilter("tcp"), WithSnapLen(9000))
	c.Stop() // must not block or panic: no workers were ever started
}
