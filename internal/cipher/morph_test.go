package cipher

import "testing"

func TestShiftIVIsDeterministic(t *testing.T) {
	iv := [4]byte{0x46, 0x72, 0xEE, 0x4D}
	a := shiftIV(iv)
	b := shiftIV(iv)
	if a != b {
		t.Fatalf("shiftIV is not purely functional: %v != %v", a, b)
	}
}

func TestShiftIVChangesState(t *testing.T) {
	for _, iv := range [][4]byte{
		{0, 0, 0, 0},
		{0x46, 0x72, 0xEE, 0x4D},
		{0x5C, 0xB6, 0x7D, 0xA3},
		{0xFF, 0xFF, 0xFF, 0xFF},
	} {
		next := shiftIV(iv)
		if next == [4]byte{0xF2, 0x53, 0x50, 0xC6} && iv == [4]byte{0, 0, 0, 0} {
			// Morphing all-zero bytes through an all-zero IV could in
			// principle reach the seed value unchanged; document rather
			// than fail if it ever does.
			t.Logf("shiftIV(%v) reached the seed value unchanged", iv)
		} else if next == [4]byte{0xF2, 0x53, 0x50, 0xC6} {
			t.Errorf("shiftIV(%v) left the seed value unchanged", iv)
		}
	}
}

func TestMorphSingleStep(t *testing.T) {
	// Exercise morph directly against the literal arithmetic it's grounded
	// on: shuffle[0] = 0xEC, so morphing v=0 against an all-zero IV is
	// fully computable by hand.
	iv := [4]byte{0, 0, 0, 0}
	morph(&iv, 0)

	t0 := shuffleTable[0] // 0xEC
	var want [4]byte
	want[0] = 0 + shuffleTable[0] - 0 // iv1=0 so shuffle[iv1]=shuffle[0]
	want[1] = 0 - (0 ^ t0)
	want[2] = 0 ^ (shuffleTable[0] + 0)
	want[3] = 0 - (want[0] - t0)
	val := uint32(want[0]) | uint32(want[1])<<8 | uint32(want[2])<<16 | uint32(want[3])<<24
	val = (val << 3) | (val >> 29)
	want[0] = byte(val)
	want[1] = byte(val >> 8)
	want[2] = byte(val >> 16)
	want[3] = byte(val >> 24)

	if iv != want {
		t.Fatalf("morph(0,0,0,0; v=0) = %v, want %v", iv, want)
	}
}
