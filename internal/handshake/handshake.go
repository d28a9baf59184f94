// Package handshake parses the cleartext frame a MapleStory server sends a
// client before any cipher state exists: protocol version, patch
// information, the two per-direction IV seeds, and the server's locale.
package handshake

import (
	"strconv"
	"strings"

	"github.com/taida957789/maplesniffer/internal/bytesx"
	"github.com/taida957789/maplesniffer/internal/model"
)

const (
	maxPatchLocationLen = 100
	maxLocale           = 0x12
	loginPort           = 8484
	legacyFormLen       = 2 + 2 + 2 + 4 + 4 + 1
)

// Parsed is everything the handshake detector extracts from the
// pre-handshake byte buffer, plus how many bytes of that buffer it
// consumed.
type Parsed struct {
	Fields      model.HandshakeFields
	LocalIV     [4]byte
	RemoteIV    [4]byte
	ExtraCipher bool
	Consumed    int
}

// Detect attempts to parse a handshake from the front of buf. It returns
// ok=false when there are not yet enough bytes (buf is a strict prefix of
// a real handshake) or when the parsed fields fail validation — callers
// should keep accumulating bytes in either case, per §7's "handshake
// malformed" policy: the Session stays Nascent, not Terminated.
//
// The declared size field bounds how many bytes get removed from the
// pending buffer, not how many bytes field-parsing is allowed to read:
// some captured clients declare a size shorter than the fields that
// actually follow it, so the two forms are disambiguated by trying the
// variable-length (standard) layout against the bytes available after
// the size field first, falling back to the fixed-length (legacy) one
// only when the standard layout doesn't fit.
func Detect(buf []byte, serverPort uint16) (Parsed, bool) {
	if len(buf) < 2 {
		return Parsed{}, false
	}
	size := int(bytesx.ReadUint16LE(buf[0:2]))
	if len(buf) < 2+size {
		return Parsed{}, false
	}
	rest := buf[2:]

	version, patchLocation, localIV, remoteIV, locale, ok := parseStandardForm(rest)
	if !ok {
		version, patchLocation, localIV, remoteIV, locale, ok = parseLegacyForm(rest)
	}
	if !ok {
		return Parsed{}, false
	}
	if locale == 0 || locale > maxLocale {
		return Parsed{}, false
	}

	subVersion := deriveSubVersion(patchLocation)
	extraCipher := locale == 6 && !strings.Contains(patchLocation, ":")
	isLogin := serverPort == loginPort

	return Parsed{
		Fields: model.HandshakeFields{
			Version:           version,
			SubVersionString:  patchLocation,
			SubVersion:        subVersion,
			Locale:            locale,
			ServerPort:        serverPort,
			IsLogin:           isLogin,
			ExtraCipherActive: extraCipher,
		},
		LocalIV:     localIV,
		RemoteIV:    remoteIV,
		ExtraCipher: extraCipher,
		Consumed:    2 + size,
	}, true
}

// parseStandardForm reads: u16 version, u16 str_len, str_len UTF-8 bytes,
// 4 bytes local_iv, 4 bytes remote_iv, 1 reserved byte, u8 locale.
func parseStandardForm(body []byte) (version uint16, patchLocation string, localIV, remoteIV [4]byte, locale uint8, ok bool) {
	if len(body) < 4 {
		return
	}
	version = bytesx.ReadUint16LE(body[0:2])
	strLen := int(bytesx.ReadUint16LE(body[2:4]))
	if strLen > maxPatchLocationLen {
		return
	}
	off := 4
	if len(body) < off+strLen+4+4+1+1 {
		return
	}
	patchLocation = string(body[off : off+strLen])
	off += strLen
	copy(localIV[:], body[off:off+4])
	off += 4
	copy(remoteIV[:], body[off:off+4])
	off += 4
	off++ // reserved byte, observed but unused
	locale = body[off]
	ok = true
	return
}

// parseLegacyForm reads: u16 version, 2 bytes skipped, u16 patch_value
// (rendered as decimal text of patch_value+1), 4 bytes local_iv, 4 bytes
// remote_iv, u8 locale.
func parseLegacyForm(body []byte) (version uint16, patchLocation string, localIV, remoteIV [4]byte, locale uint8, ok bool) {
	if len(body) < legacyFormLen {
		return
	}
	version = bytesx.ReadUint16LE(body[0:2])
	patchValue := bytesx.ReadUint16LE(body[4:6])
	patchLocation = strconv.Itoa(int(patchValue) + 1)
	off := 6
	copy(localIV[:], body[off:off+4])
	off += 4
	copy(remoteIV[:], body[off:off+4])
	off += 4
	locale = body[off]
	ok = true
	return
}

// deriveSubVersion parses patchLocation as a decimal integer modulo 256
// when it consists entirely of digits; otherwise it is 1.
func deriveSubVersion(patchLocation string) uint8 {
	if patchLocation == "" {
		return 1
	}
	for _, r := range patchLocation {
		if r < '0' || r > '9' {
			return 1
		}
	}
	n, err := strconv.Atoi(patchLocation)
	if err != nil {
		return 1
	}
	return uint8(n % 256)
}
