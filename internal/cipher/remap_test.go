package cipher

import "testing"

func TestParseOpcodeRemap(t *testing.T) {
	// 3DES-EDE-ECB ciphertext of "5|9|17|33\x00\x00\x00\x00\x00\x00\x00"
	// (padded to 16 bytes) under the default opcode key, computed
	// independently with openssl des-ede3-ecb against the same K||K[0:8]
	// expansion this package uses.
	ciphertext := []byte{
		0x1d, 0x52, 0xa7, 0x21, 0x71, 0x81, 0xf2, 0xf9,
		0x09, 0x59, 0x9a, 0x97, 0x4f, 0xb6, 0xb6, 0x53,
	}

	got := ParseOpcodeRemap(ciphertext, 16, []byte(DefaultOpcodeKey))
	want := map[uint16]uint16{
		5:  0xCC,
		9:  0xCD,
		17: 0xCE,
		33: 0xCF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("remap[%d] = %#x, want %#x", k, got[k], v)
		}
	}
}

func TestParseOpcodeRemapEmptyOnNonPositiveBufferSize(t *testing.T) {
	got := ParseOpcodeRemap([]byte{1, 2, 3, 4}, 0, []byte(DefaultOpcodeKey))
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %v", got)
	}
}

func TestParseOpcodeRemapTruncatedCiphertextIsSafe(t *testing.T) {
	// bufferSize claims more than is actually available; must not panic
	// and must not read past the slice.
	got := ParseOpcodeRemap([]byte{1, 2, 3}, 16, []byte(DefaultOpcodeKey))
	if got == nil {
		t.Fatalf("expected a non-nil (possibly empty) map")
	}
}
