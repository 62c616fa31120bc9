package fpp

import "testing"

func TestLdcifZeroGivesCanonicalZero(t *testing.T) {
	s, _ := newTestFPPState()
	ac := Number{0x1234, 0x5678, 0, 0}
	trap := s.ldcif(&ac, 0, false, 2)
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if ac != (Number{}) {
		t.Fatalf("ac = %v, want canonical zero", ac)
	}
}

func TestLdcifPositiveShort(t *testing.T) {
	s, _ := newTestFPPState()
	var ac Number
	trap := s.ldcif(&ac, 4, false, 2)
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if ac != (Number{0x4180, 0, 0, 0}) {
		t.Fatalf("ac = %v, want {0x4180 0 0 0}", ac)
	}
}

func TestLdcifNegativeSetsSign(t *testing.T) {
	s, _ := newTestFPPState()
	var ac Number
	neg := int16(-4)
	trap := s.ldcif(&ac, uint32(uint16(neg)), false, 2)
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if ac[0]&signBit == 0 {
		t.Fatalf("ac[0] = %#x, sign bit not set for a negative operand", ac[0])
	}
}

func TestStcfiRoundTripsLdcif(t *testing.T) {
	s, _ := newTestFPPState()
	ac := Number{0x4180, 0, 0, 0} // ldcif's encoding of 4, see TestLdcifPositiveShort
	val, trap := s.stcfi(&ac, 2, false)
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if val != 4 {
		t.Fatalf("val = %d, want 4", val)
	}
}

func TestStcfiZeroExponentGivesZero(t *testing.T) {
	s, _ := newTestFPPState()
	ac := Number{}
	val, trap := s.stcfi(&ac, 2, false)
	if trap != 0 || val != 0 {
		t.Fatalf("val=%d trap=%d, want 0 0", val, trap)
	}
	if s.FPS&fpsFZ == 0 {
		t.Fatalf("FZ not set")
	}
}

func TestStcfiOverflowSetsVAndC(t *testing.T) {
	s, _ := newTestFPPState()
	// Stored exponent 150 (unbiased shift 22): magnitude 2^21 exceeds the
	// 16-bit signed range.
	ac := Number{0x4B00, 0, 0, 0}
	_, trap := s.stcfi(&ac, 2, false)
	if trap != 0 {
		t.Fatalf("trap = %d, want 0 (FIC not enabled)", trap)
	}
	if s.FPS&fpsFV == 0 || s.FPS&fpsFC == 0 {
		t.Fatalf("FPS = %#x, want V and C set on overflow", s.FPS)
	}
}

func TestStcfiOverflowTrapsWhenFICEnabled(t *testing.T) {
	s, _ := newTestFPPState()
	s.FPS |= fpsFIC
	ac := Number{0x4B00, 0, 0, 0}
	_, trap := s.stcfi(&ac, 2, false)
	if trap != fecIntConv {
		t.Fatalf("trap = %d, want fecIntConv", trap)
	}
}

func TestWidenFloatToDoubleZeroExtends(t *testing.T) {
	n := Number{0x4080, 0x1234, 0x9999, 0x8888}
	got := widenFloatToDouble(&n)
	if got != (Number{0x4080, 0x1234, 0, 0}) {
		t.Fatalf("got %v, want upper words cleared", got)
	}
}

func TestNarrowDoubleToFloatRoundsUpOnGuardBit(t *testing.T) {
	s := newTestState()
	n := Number{0x4080, 0x0000, 0x8000, 0}
	got := s.narrowDoubleToFloat(&n)
	if got != (Number{0x4080, 1, 0, 0}) {
		t.Fatalf("got %v, want {0x4080 1 0 0}", got)
	}
}

func TestNarrowDoubleToFloatTruncates(t *testing.T) {
	s := newTestState()
	s.FPS |= fpsFT
	n := Number{0x4080, 0x0000, 0x8000, 0}
	got := s.narrowDoubleToFloat(&n)
	if got != (Number{0x4080, 0, 0, 0}) {
		t.Fatalf("got %v, want no rounding in truncate mode", got)
	}
}

func TestStcfdWidensWhenSinglePrecisionActive(t *testing.T) {
	s := newTestState()
	ac := Number{0x4080, 0x1234, 0x9999, 0x8888}
	got := s.stcfd(&ac)
	if got != (Number{0x4080, 0x1234, 0, 0}) {
		t.Fatalf("got %v, want widened with upper words cleared", got)
	}
}

func TestStcfdNarrowsWhenDoublePrecisionActive(t *testing.T) {
	s := newTestState()
	s.FPS |= fpsFD
	ac := Number{0x4080, 0x0000, 0x8000, 0}
	got := s.stcfd(&ac)
	if got != (Number{0x4080, 1, 0, 0}) {
		t.Fatalf("got %v, want narrowed and rounded", got)
	}
}

func TestLdcdfWidensWhenDoublePrecisionActive(t *testing.T) {
	s := newTestState()
	s.FPS |= fpsFD
	var ac Number
	s.ldcdf(&ac, Number{0x4080, 0x1234, 0, 0})
	if ac != (Number{0x4080, 0x1234, 0, 0}) {
		t.Fatalf("ac = %v, want widened source", ac)
	}
}

func TestLdcdfNarrowsWhenSinglePrecisionActive(t *testing.T) {
	s := newTestState()
	var ac Number
	s.ldcdf(&ac, Number{0x4080, 0x0000, 0x8000, 0})
	if ac != (Number{0x4080, 1, 0, 0}) {
		t.Fatalf("ac = %v, want narrowed and rounded source", ac)
	}
}
