// Package model holds the small set of types shared across the decryption
// engine: the directions a packet can travel, the logging interface every
// package depends on instead of a concrete logging library, and the record
// the engine hands back to its caller.
package model

import "fmt"

// Direction identifies which peer sent the bytes that produced a packet.
type Direction uint8

const (
	// DirectionInbound marks bytes traveling server to client.
	DirectionInbound Direction = iota
	// DirectionOutbound marks bytes traveling client to server.
	DirectionOutbound
)

func (d Direction) String() string {
	if d == DirectionOutbound {
		return "out"
	}
	return "in"
}

// HandshakeOpcode is the sentinel opcode stamped on synthetic handshake
// packets; it is never produced by the wire framing itself.
const HandshakeOpcode = 0xFFFF

// DynamicOpcodeBase is added to a remap table's positional index to produce
// the real opcode a ciphered value stands for.
const DynamicOpcodeBase = 0xCC

// Logger is the subset of github.com/apex/log's Interface this module
// depends on. Any *apex/log.Logger, or the package-level apex/log.Log,
// satisfies it without an adapter.
type Logger interface {
	Debug(msg string)
	Debugf(msg string, v ...interface{})
	Info(msg string)
	Infof(msg string, v ...interface{})
	Warn(msg string)
	Warnf(msg string, v ...interface{})
	Error(msg string)
	Errorf(msg string, v ...interface{})
}

// NopLogger discards everything. Useful as a zero-value-safe default so
// callers that never configure a logger do not crash on a nil interface.
type NopLogger struct{}

func (NopLogger) Debug(string)                 {}
func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Info(string)                  {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warn(string)                  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Error(string)                 {}
func (NopLogger) Errorf(string, ...interface{}) {}

// HandshakeFields carries the parameters extracted from a session's
// cleartext handshake; present on a DecodedPacket only when IsHandshake.
type HandshakeFields struct {
	Version           uint16
	SubVersionString  string
	SubVersion        uint8
	Locale            uint8
	ServerPort        uint16
	IsLogin           bool
	ExtraCipherActive bool
}

// DecodedPacket is the uniform record the engine emits for every handshake,
// decrypted game packet, and desync notice it produces.
type DecodedPacket struct {
	Timestamp       float64
	SessionID       uint32
	Direction       Direction
	Opcode          uint16
	IsHandshake     bool
	IsDesyncNotice  bool
	Payload         []byte
	Length          uint32
	Handshake       *HandshakeFields
}

// HexDump renders Payload as a 16-bytes-per-line hex dump, grouped by
// byte with a newline every 16 bytes.
func (p DecodedPacket) HexDump() string {
	var out []byte
	for i, b := range p.Payload {
		if i > 0 {
			if i%16 == 0 {
				out = append(out, '\n')
			} else {
				out = append(out, ' ')
			}
		}
		out = append(out, []byte(fmt.Sprintf("%02X", b))...)
	}
	return string(out)
}
