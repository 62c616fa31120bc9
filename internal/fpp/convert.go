/*
   Conversion kernels: integer<->float (LDCIF, STCFI) and float<->double
   precision change (STCFD, LDCDF), per §4.E.
*/

package fpp

// ldcif converts a two's-complement integer (16-bit short, or 32-bit long
// when isLong) into ac at the active precision.
func (s *State) ldcif(ac *Number, raw uint32, isLong bool, precision int) uint16 {
	var sign bool
	var mag uint32
	if isLong {
		v := int32(raw)
		if v < 0 {
			sign = true
			mag = uint32(-v)
		} else {
			mag = uint32(v)
		}
	} else {
		v := int16(uint16(raw))
		if v < 0 {
			sign = true
			mag = uint32(uint16(-v))
		} else {
			mag = uint32(uint16(v))
		}
	}

	if mag == 0 {
		s.setCanonicalZero(ac)
		return 0
	}

	bitLen := 32
	for bitLen > 0 && mag&(1<<uint(bitLen-1)) == 0 {
		bitLen--
	}
	exponent := excessBias + bitLen

	buf := make([]uint16, precision)
	if precision >= 2 {
		buf[precision-1] = uint16(mag)
		buf[precision-2] = uint16(mag >> 16)
	} else {
		buf[precision-1] = uint16(mag)
	}

	shiftAmt := (16*precision - bitLen) - 8
	var guard uint16
	if shiftAmt >= 0 {
		shiftLeft(buf, uint(shiftAmt))
	} else {
		guard = shiftRight(buf, uint(-shiftAmt))
	}
	if guard == 1 && s.FPS&fpsFT == 0 {
		exponent = increment(buf, exponent)
	}

	return s.pack(ac, precision, buf, exponent, sign)
}

// stcfi converts ac (at the active precision) to a two's-complement
// integer, short (16-bit) or long (32-bit) per isLong. Returns the integer
// value and the FEC trap raised (0 if none); overflow always yields 0 with
// V and C set regardless of whether FIC made it trap.
func (s *State) stcfi(ac *Number, precision int, isLong bool) (uint32, uint16) {
	work, exponent, sign := unpack(ac, precision)
	shift := exponent - excessBias

	s.FPS &^= fpsFN | fpsFZ | fpsFV | fpsFC
	if shift <= 0 {
		s.FPS |= fpsFZ
		s.Bus.SetFlags(0xf, uint8(s.FPS)&0xf)
		return 0, 0
	}

	frac := uint64(work[0])<<48 | uint64(work[1])<<32
	if precision > 2 {
		frac |= uint64(work[2]) << 16
		frac |= uint64(work[3])
	}
	const fracBits = 56
	shiftDown := fracBits - shift
	var mag uint64
	if shiftDown >= 0 && shiftDown < 64 {
		mag = frac >> uint(shiftDown)
	} else if shiftDown < 0 && -shiftDown < 64 {
		mag = frac << uint(-shiftDown)
	}

	width := 16
	if isLong {
		width = 32
	}
	limit := uint64(1) << uint(width-1)

	var overflow bool
	var val uint32
	if sign {
		if mag > limit {
			overflow = true
		}
		val = uint32(-int64(mag))
	} else {
		if mag >= limit {
			overflow = true
		}
		val = uint32(mag)
	}

	var trap uint16
	if overflow {
		s.FPS |= fpsFV | fpsFC
		val = 0
		if s.FPS&fpsFIC != 0 {
			trap = fecIntConv
		}
	} else {
		if sign {
			s.FPS |= fpsFN
		}
		if val == 0 {
			s.FPS |= fpsFZ
		}
	}
	s.Bus.SetFlags(0xf, uint8(s.FPS)&0xf)
	if trap != 0 {
		s.raiseTrap(trap)
	}
	return val, trap
}

// widenFloatToDouble zero-extends a float-precision Number's low two words
// into a double-precision one; exact, no rounding possible.
func widenFloatToDouble(n *Number) Number {
	return Number{n[0], n[1], 0, 0}
}

// narrowDoubleToFloat truncates a double-precision Number to float
// precision, rounding up by one ulp (with renormalization) when not
// truncating and the first discarded word's top bit is set.
func (s *State) narrowDoubleToFloat(n *Number) Number {
	work, exponent, sign := unpack(n, 4)
	narrow := append([]uint16(nil), work[:2]...)
	if s.FPS&fpsFT == 0 && n[2]&0x8000 != 0 {
		exponent = increment(narrow, exponent)
	}
	var out Number
	s.pack(&out, 2, narrow, exponent, sign)
	return out
}

// stcfd implements STCFD: produces ac's value at the opposite of the
// active precision, for storage to memory.
func (s *State) stcfd(ac *Number) Number {
	if s.precision() == 4 {
		return s.narrowDoubleToFloat(ac)
	}
	return widenFloatToDouble(ac)
}

// ldcdf implements LDCDF: converts a value stored at the opposite of the
// active precision into ac at the active precision.
func (s *State) ldcdf(ac *Number, src Number) {
	if s.precision() == 4 {
		*ac = widenFloatToDouble(&src)
	} else {
		*ac = s.narrowDoubleToFloat(&src)
	}
}
