package ie32vm

import "testing"

func TestDeriveFlagsZero(t *testing.T) {
	af := deriveFlags(0, false, false)
	want := FlagZero | FlagEven | FlagZeroUpper | FlagZeroLower
	if af != want {
		t.Fatalf("af = %#010b, want %#010b", af, want)
	}
}

func TestDeriveFlagsSignBit(t *testing.T) {
	af := deriveFlags(0x80000001, false, false)
	if af&FlagSign == 0 {
		t.Fatalf("expected Sign flag set for 0x80000001")
	}
	if af&FlagZero != 0 {
		t.Fatalf("did not expect Zero flag set for 0x80000001")
	}
	if af&FlagEven != 0 {
		t.Fatalf("did not expect Even flag for an odd result")
	}
}

func TestDeriveFlagsZeroUpperLower(t *testing.T) {
	af := deriveFlags(0x1234, false, false)
	if af&FlagZeroUpper == 0 {
		t.Fatalf("expected ZeroUpper for a result fitting in 16 bits")
	}
	if af&FlagZeroLower != 0 {
		t.Fatalf("did not expect ZeroLower: low bits are nonzero")
	}

	af = deriveFlags(0x12340000, false, false)
	if af&FlagZeroLower == 0 {
		t.Fatalf("expected ZeroLower: low 16 bits are zero")
	}
	if af&FlagZeroUpper != 0 {
		t.Fatalf("did not expect ZeroUpper: upper bits are nonzero")
	}
}

func TestAddCarryOverflow(t *testing.T) {
	carry, _ := addCarryOverflow(0xFFFFFFFF, 1, 0)
	if !carry {
		t.Fatalf("expected unsigned carry on wraparound add")
	}

	r := uint32(0x7FFFFFFF) + 1
	_, overflow := addCarryOverflow(0x7FFFFFFF, 1, r)
	if !overflow {
		t.Fatalf("expected signed overflow adding 1 to INT_MAX")
	}
}

func TestSubCarryOverflow(t *testing.T) {
	var zero uint32
	r := zero - 1
	carry, _ := subCarryOverflow(0, 1, r)
	if !carry {
		t.Fatalf("expected unsigned borrow on 0-1")
	}
}
