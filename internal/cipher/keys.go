package cipher

// LocaleTaiwan is the server_locale value that selects the version-derived
// key table instead of the default key.
const LocaleTaiwan = 6

// DeriveKey returns the 32-byte AES key for version/locale, resolving the
// negative-version encoding the inbound cipher stream uses to signal "this
// is the inbound direction's version_for_key" before deriving.
func DeriveKey(versionForKey uint16, locale uint8) [32]byte {
	version := resolveVersion(versionForKey)
	if locale == LocaleTaiwan {
		return deriveTaiwanKey(version)
	}
	return defaultSecretKey
}

// resolveVersion undoes the inbound stream's 0xFFFF-version encoding: the
// stored value is treated as signed 16-bit, and if negative, the real
// version is recovered as 0xFFFF minus the stored value.
func resolveVersion(stored uint16) uint16 {
	if int16(stored) < 0 {
		return 0xFFFF - stored
	}
	return stored
}

// deriveTaiwanKey picks one of the 20 locale-6 secrets by version%20,
// decodes its 32 raw bytes, takes every 4th byte as an 8-byte seed, and
// places seed[i] at key offset i*4 (all other key bytes stay zero).
func deriveTaiwanKey(version uint16) [32]byte {
	hexStr := twSecrets[int(version)%len(twSecrets)]

	var raw [32]byte
	for i := 0; i < 32; i++ {
		raw[i] = hexByte(hexStr[i*2], hexStr[i*2+1])
	}

	var seed [8]byte
	for i := 0; i < 32; i += 4 {
		seed[i/4] = raw[i]
	}

	var key [32]byte
	for i, b := range seed {
		key[i*4] = b
	}
	return key
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return 0
	}
}

func hexByte(hi, lo byte) byte {
	return hexNibble(hi)<<4 | hexNibble(lo)
}
