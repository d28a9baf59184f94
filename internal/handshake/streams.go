package handshake

import (
	"github.com/taida957789/maplesniffer/internal/cipher"
	"github.com/taida957789/maplesniffer/internal/model"
)

// NewStreams constructs the outbound and inbound cipher streams a
// successful Detect result implies (§4.5's last paragraph): outbound
// keys off the plain version, inbound keys off 0xFFFF-version, and an
// active extra cipher swaps the inbound transform from aes_xor to
// data_shift.
func NewStreams(p Parsed, opts ...cipher.StreamOption) (outbound, inbound *cipher.Stream) {
	inboundTransform := cipher.TransformAESXOR
	if p.ExtraCipher {
		inboundTransform = cipher.TransformDataShift
	}

	outbound = cipher.NewStream(
		model.DirectionOutbound,
		p.LocalIV,
		p.Fields.Version,
		p.Fields.Locale,
		cipher.TransformAESXOR,
		opts...,
	)
	inbound = cipher.NewStream(
		model.DirectionInbound,
		p.RemoteIV,
		0xFFFF-p.Fields.Version,
		p.Fields.Locale,
		inboundTransform,
		opts...,
	)
	return outbound, inbound
}
