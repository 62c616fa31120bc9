/*
   Pack / unpack: reassemble a working fraction field plus a sign and an
   adjusted exponent back into packed Number words, handling overflow and
   underflow per the FPS trap-enable bits and updating N/Z.
*/

package fpp

// unpack splits the active P words of a packed Number into a working copy
// whose word 0 holds the hidden bit and the seven stored fraction bits in
// bits 7-0 (the hidden bit is only materialized when the exponent is
// non-zero), plus the sign and the unbiased-but-still-offset exponent.
func unpack(n *Number, precision int) (work []uint16, exponent int, sign bool) {
	work = make([]uint16, precision)
	copy(work, n[:precision])
	exponent = int((work[0] & expMask) >> expShift)
	sign = work[0]&signBit != 0
	work[0] &= fracMask7
	if exponent != 0 {
		work[0] |= hiddenBit
	}
	return work, exponent, sign
}

// pack stores sign/exponent/fraction back into n, applying the overflow and
// underflow policy of §4.B and updating the N and Z condition codes. work[0]
// must hold the hidden bit (if any) plus fraction in bits 7-0; work[1:] hold
// the remaining fraction words. Returns the FEC trap raised, or 0.
func (s *State) pack(n *Number, precision int, work []uint16, exponent int, sign bool) uint16 {
	frac0 := work[0] & fracMask7
	var err uint16
	storedExp := exponent

	switch {
	case exponent <= 0:
		if s.FPS&fpsFIU != 0 {
			err = fecUnderflow
			storedExp = exponent & 0xff
		} else {
			clear(work)
			frac0 = 0
			sign = false
			storedExp = 0
		}
	case exponent >= 256:
		if s.FPS&fpsFIV != 0 {
			err = fecOverflow
			storedExp = exponent & 0xff
		} else {
			clear(work)
			frac0 = 0
			sign = false
			storedExp = 0
		}
	}

	work[0] = frac0
	work[0] |= uint16(storedExp<<expShift) & expMask
	if sign {
		work[0] |= signBit
	}
	copy(n[:precision], work)
	for i := precision; i < len(n); i++ {
		n[i] = 0
	}

	s.FPS &^= fpsFN | fpsFZ | fpsFV | fpsFC
	if sign {
		s.FPS |= fpsFN
	}
	if storedExp == 0 {
		s.FPS |= fpsFZ
	}
	if exponent <= 0 || exponent >= 256 {
		s.FPS |= fpsFV
	}
	if err != 0 {
		s.raiseTrap(err)
	}
	return err
}

// setCanonicalZero stores the canonical all-zero encoding and sets Z, N=0.
func (s *State) setCanonicalZero(n *Number) {
	*n = Number{}
	s.FPS &^= fpsFN
	s.FPS |= fpsFZ
}

// isUndefinedVariable reports whether a packed Number carries the reserved
// sign=1/exponent=0 "undefined variable" encoding.
func isUndefinedVariable(n *Number) bool {
	return n[0]&signBit != 0 && n[0]&expMask == 0
}

// ldexp combines a signed exponent operand with the bias and repacks it
// with ac's existing fraction, leaving the fraction itself untouched. It
// implements the LDEXP instruction; an argument of 0 stores the biased
// exponent 128, replacing ac's previous exponent.
func (s *State) ldexp(ac *Number, precision int, arg int16) uint16 {
	work, _, sign := unpack(ac, precision)
	exponent := int(arg) + excessBias
	return s.pack(ac, precision, work, exponent, sign)
}
