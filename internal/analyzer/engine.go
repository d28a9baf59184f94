// Package analyzer implements the analyzer's external interface (§6): one
// function that takes a raw captured frame and a timestamp and returns
// every packet the frame caused to become decodable.
package analyzer

import (
	"github.com/taida957789/maplesniffer/internal/cipher"
	"github.com/taida957789/maplesniffer/internal/frame"
	"github.com/taida957789/maplesniffer/internal/model"
	"github.com/taida957789/maplesniffer/internal/session"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the Engine's logger. The default is model.NopLogger.
func WithLogger(logger model.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStreamOptions forwards cipher.StreamOption values to every cipher
// stream the Engine's sessions construct (see internal/cipher.StreamOption,
// e.g. WithOpcodeKey for a non-default opcode-table decryption key).
func WithStreamOptions(opts ...cipher.StreamOption) Option {
	return func(e *Engine) {
		e.streamOpts = append(e.streamOpts, opts...)
	}
}

// Engine is the analyzer's entry point: ProcessFrame is the process_frame
// operation of §6. It owns one Session Table and is safe for concurrent
// use, since the Table already serializes access behind its own mutex
// (§5) — the Engine itself holds no additional state that needs guarding.
type Engine struct {
	table      *session.Table
	logger     model.Logger
	streamOpts []cipher.StreamOption
}

// New constructs an Engine with an empty Session Table.
func New(opts ...Option) *Engine {
	e := &Engine{logger: model.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	e.table = session.NewTable(e.streamOpts...)
	return e
}

// ProcessFrame parses raw as an Ethernet-II/IPv4/TCP frame and hands the
// resulting segment to the Session Table. A frame this parser does not
// understand (non-IPv4, non-TCP, truncated) is logged at debug level and
// skipped, per §4.1's "fail silently, do not treat as an error" policy —
// the caller never sees an error return for this routine reason.
func (e *Engine) ProcessFrame(raw []byte, timestamp float64) []model.DecodedPacket {
	seg, err := frame.Parse(raw)
	if err != nil {
		e.logger.Debugf("analyzer: skipping frame: %s", err)
		return nil
	}
	return e.table.HandleSegment(seg, timestamp)
}

// SessionCount reports how many connection keys the Engine's Session
// Table currently tracks. Exposed for tests and diagnostics.
func (e *Engine) SessionCount() int {
	return e.table.Len()
}
