package cipher

import (
	"crypto/des"
	"strconv"
	"strings"

	"github.com/taida957789/maplesniffer/internal/model"
)

// DefaultOpcodeKey is the 16-byte ASCII key used to decrypt the inbound
// opcode-encryption bootstrap packet when no override is configured.
const DefaultOpcodeKey = "BrN=r54jQp2@yP6G"

// ParseOpcodeRemap decrypts the 3DES-EDE-ECB ciphertext following an
// inbound opcode-0x46 packet's buffer_size field and builds the resulting
// {ciphered opcode -> real opcode} mapping (§4.9). On any failure — a bad
// key length, a non-numeric token, a duplicate key, or truncated
// ciphertext — it returns whatever entries were parsed before the
// failure, possibly none; the caller must keep framing normally either
// way (§4.10).
func ParseOpcodeRemap(ciphertext []byte, bufferSize int32, key []byte) map[uint16]uint16 {
	result := make(map[uint16]uint16)
	if bufferSize <= 0 {
		return result
	}

	decryptLen := int(bufferSize)
	if decryptLen > len(ciphertext) {
		decryptLen = len(ciphertext)
	}
	decryptLen -= decryptLen % des.BlockSize
	if decryptLen <= 0 {
		return result
	}

	block, err := des.NewTripleDESCipher(expandDESKey(key))
	if err != nil {
		return result
	}

	plain := make([]byte, decryptLen)
	for off := 0; off < decryptLen; off += des.BlockSize {
		block.Decrypt(plain[off:off+des.BlockSize], ciphertext[off:off+des.BlockSize])
	}

	tokens := strings.Split(string(plain), "|")
	index := 0
	for _, tok := range tokens {
		if tok == "" {
			break
		}
		encrypted, err := strconv.Atoi(cleanToken(tok))
		if err != nil {
			break
		}
		encOp := uint16(encrypted)
		if _, dup := result[encOp]; dup {
			break
		}
		result[encOp] = uint16(index) + model.DynamicOpcodeBase
		index++
	}
	return result
}

// cleanToken drops any trailing NUL or non-digit bytes left over from the
// fixed-size decrypted buffer's final, partial token.
func cleanToken(tok string) string {
	end := len(tok)
	for end > 0 && (tok[end-1] < '0' || tok[end-1] > '9') {
		end--
	}
	return tok[:end]
}

// expandDESKey turns a 16-byte ASCII key into the 24 bytes
// crypto/des.NewTripleDESCipher requires by appending the key's own first
// 8 bytes (K || K[0:8]), so a single 16-byte secret can drive 3DES-EDE.
func expandDESKey(key []byte) []byte {
	out := make([]byte, 24)
	copy(out, key)
	if len(key) >= 8 {
		copy(out[16:], key[:8])
	}
	return out
}
