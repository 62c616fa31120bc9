package fpp

import "testing"

func newTestState() *State {
	return &State{}
}

func TestUnpackMaterializesHiddenBit(t *testing.T) {
	n := Number{0x4080, 0x0000, 0, 0} // sign=0 exp=129 frac7=0
	work, exponent, sign := unpack(&n, 2)
	if sign {
		t.Fatalf("sign = true, want false")
	}
	if exponent != 129 {
		t.Fatalf("exponent = %d, want 129", exponent)
	}
	if work[0] != hiddenBit {
		t.Fatalf("work[0] = %#x, want hidden bit only", work[0])
	}
}

func TestUnpackZeroExponentNoHiddenBit(t *testing.T) {
	n := Number{0x0000, 0x0000, 0, 0}
	work, exponent, _ := unpack(&n, 2)
	if exponent != 0 {
		t.Fatalf("exponent = %d, want 0", exponent)
	}
	if work[0] != 0 {
		t.Fatalf("work[0] = %#x, want 0 (no hidden bit on a true zero)", work[0])
	}
}

func TestPackRoundTrip(t *testing.T) {
	s := newTestState()
	var n Number
	work := []uint16{hiddenBit, 0}
	err := s.pack(&n, 2, work, 129, false)
	if err != 0 {
		t.Fatalf("pack returned trap %d", err)
	}
	if n[0] != 0x4080 {
		t.Fatalf("n[0] = %#x, want 0x4080", n[0])
	}
	if s.FPS&fpsFZ != 0 {
		t.Fatalf("FZ set on a non-zero result")
	}
	if s.FPS&fpsFN != 0 {
		t.Fatalf("FN set on a positive result")
	}
}

func TestPackUnderflowMaskedClearsToZero(t *testing.T) {
	s := newTestState()
	var n Number
	work := []uint16{hiddenBit, 0}
	err := s.pack(&n, 2, work, 0, true)
	if err != 0 {
		t.Fatalf("pack returned trap %d, want 0 (underflow masked)", err)
	}
	if n != (Number{}) {
		t.Fatalf("n = %v, want canonical zero", n)
	}
	if s.FPS&fpsFZ == 0 {
		t.Fatalf("FZ not set")
	}
	if s.FPS&fpsFN != 0 {
		t.Fatalf("FN set despite forcing sign to false on underflow")
	}
}

func TestPackUnderflowTrapEnabled(t *testing.T) {
	s := newTestState()
	s.FPS |= fpsFIU
	var n Number
	work := []uint16{hiddenBit, 0}
	err := s.pack(&n, 2, work, 0, true)
	if err != fecUnderflow {
		t.Fatalf("pack returned trap %d, want fecUnderflow", err)
	}
	if s.FEC != fecUnderflow {
		t.Fatalf("FEC = %d, want fecUnderflow", s.FEC)
	}
	if s.FPS&fpsFER == 0 {
		t.Fatalf("FER not set after trap")
	}
}

func TestPackOverflowTrapEnabled(t *testing.T) {
	s := newTestState()
	s.FPS |= fpsFIV
	var n Number
	work := []uint16{hiddenBit, 0}
	err := s.pack(&n, 2, work, 256, false)
	if err != fecOverflow {
		t.Fatalf("pack returned trap %d, want fecOverflow", err)
	}
	if s.FPS&fpsFV == 0 {
		t.Fatalf("FV not set on overflow")
	}
}

func TestPackOverflowMaskedClearsToZero(t *testing.T) {
	s := newTestState()
	var n Number
	work := []uint16{hiddenBit, 0}
	err := s.pack(&n, 2, work, 300, true)
	if err != 0 {
		t.Fatalf("pack returned trap %d, want 0 (overflow masked)", err)
	}
	if n != (Number{}) {
		t.Fatalf("n = %v, want canonical zero", n)
	}
}

func TestSetCanonicalZero(t *testing.T) {
	s := newTestState()
	n := Number{0x8080, 1, 2, 3}
	s.setCanonicalZero(&n)
	if n != (Number{}) {
		t.Fatalf("n = %v, want all-zero", n)
	}
	if s.FPS&fpsFZ == 0 {
		t.Fatalf("FZ not set")
	}
	if s.FPS&fpsFN != 0 {
		t.Fatalf("FN set on canonical zero")
	}
}

func TestIsUndefinedVariable(t *testing.T) {
	undef := Number{0x8000, 0, 0, 0}
	if !isUndefinedVariable(&undef) {
		t.Fatalf("expected undefined variable encoding to be recognized")
	}
	normal := Number{0x4080, 0, 0, 0}
	if isUndefinedVariable(&normal) {
		t.Fatalf("normal encoding misclassified as undefined variable")
	}
	negZero := Number{0x8000 | 0, 0, 0, 0} // exponent 0, same as undef - by definition
	_ = negZero
}

func TestLdexpRepacksWithNewExponent(t *testing.T) {
	s := newTestState()
	ac := Number{0x4080, 0x0000, 0, 0} // exponent 129
	trap := s.ldexp(&ac, 2, 2)         // unbiased exponent argument 2 -> stored 130
	if trap != 0 {
		t.Fatalf("ldexp trap = %d", trap)
	}
	_, exponent, _ := unpack(&ac, 2)
	if exponent != excessBias+2 {
		t.Fatalf("exponent = %d, want %d", exponent, excessBias+2)
	}
}
