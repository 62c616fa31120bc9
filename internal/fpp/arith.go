/*
   Arithmetic kernels: add/subtract, multiply, the Brinch Hansen "minefield"
   divide, MODF and increment (LDEXP lives in pack.go). Each kernel works on unpacked fraction
   fields (hidden bit exposed in bit 7 of word 0) produced by unpack, and
   finishes by handing the result to pack.
*/

package fpp

import "github.com/rcornwell/fp11pp/internal/fpptrace"

// addSub computes ac <- ac + operand (subtract == false) or ac <- ac -
// operand (subtract == true), per §4.D. Returns the FEC trap raised, or 0.
func (s *State) addSub(ac *Number, operand Number, precision int, subtract bool) uint16 {
	work, exponent, sign, zero := s.addSubCompute(ac, operand, precision, subtract)
	if zero {
		s.setCanonicalZero(ac)
		s.FPS &^= fpsFV | fpsFC
		s.trace(fpptrace.TraceArith, "addSub subtract=%v operand=%v result=%v", subtract, operand, *ac)
		return 0
	}
	trap := s.pack(ac, precision, work, exponent, sign)
	s.trace(fpptrace.TraceArith, "addSub subtract=%v operand=%v result=%v", subtract, operand, *ac)
	return trap
}

// addSubCompute runs the alignment/add-or-subtract/normalize steps of §4.D
// without packing, so both addSub and compareFloat (CMPF) can share it.
func (s *State) addSubCompute(ac *Number, operand Number, precision int, subtract bool) (work []uint16, exponent int, sign bool, zero bool) {
	workA, expA, signA := unpack(ac, precision)
	workB, expB, signB := unpack(&operand, precision)
	if subtract {
		signB = !signB
	}

	switch {
	case expA == 0 && expB == 0:
		return nil, 0, false, true
	case expA == 0:
		return workB, expB, signB, false
	case expB == 0:
		return workA, expA, signA, false
	}

	diff := expA - expB
	truncate := s.FPS&fpsFT != 0

	if signA == signB {
		big, small, resultExp := workA, workB, expA
		if diff < 0 {
			big, small, resultExp = workB, workA, expB
			diff = -diff
		}
		guard := shiftRight(small, uint(diff))
		if truncate {
			guard = 0
		}
		addWords(big, small, guard)
		if big[0] > workMask8 {
			roundUp := !truncate && big[len(big)-1]&1 != 0
			if roundUp {
				addSmall(big, 1)
			}
			shiftRight(big, 1)
			resultExp++
		}
		return big, resultExp, signA, false
	}

	big, small, resultExp, resultSign := workA, workB, expA, signA
	if diff < 0 {
		big, small, resultExp, resultSign = workB, workA, expB, signB
		diff = -diff
	}
	guard := shiftRight(small, uint(diff))
	_ = guard // single guard bit is discarded for the differing-sign path in this core

	switch compareFraction(big, small) {
	case 0:
		return nil, 0, false, true
	case -1:
		big, small = small, big
		resultSign = !resultSign
	}
	subWords(big, small, 0)

	pos := findFirstOne(big, 9)
	if pos == -1 {
		return big, 0, false, false
	}
	shiftAmt := uint(pos - 8)
	shiftLeft(big, shiftAmt)
	resultExp -= int(shiftAmt)
	return big, resultExp, resultSign, false
}

// compareFloat implements CMPF: sets N/Z from operand-minus-ac without
// storing a result or touching V/C.
func (s *State) compareFloat(ac *Number, operand Number, precision int) {
	work, exponent, sign, zero := s.addSubCompute(&operand, *ac, precision, true)
	s.FPS &^= fpsFN | fpsFZ
	if zero {
		s.FPS |= fpsFZ
		return
	}
	if exponent <= 0 {
		s.FPS |= fpsFZ
		return
	}
	if sign {
		s.FPS |= fpsFN
	}
	_ = work
}

// multiplyWords computes the 2P-word product of two P-word fraction arrays
// (both MSB-first), via schoolbook long multiplication over base 2^16.
func multiplyWords(a, b []uint16) []uint16 {
	p := len(a)
	result := make([]uint16, 2*p)
	for i := p - 1; i >= 0; i-- {
		if a[i] == 0 {
			continue
		}
		var carry uint32
		for j := p - 1; j >= 0; j-- {
			k := i + j + 1
			prod := uint32(a[i])*uint32(b[j]) + uint32(result[k]) + carry
			result[k] = uint16(prod)
			carry = prod >> 16
		}
		k := i
		for carry != 0 {
			sum := uint32(result[k]) + carry
			result[k] = uint16(sum)
			carry = sum >> 16
			k--
		}
	}
	return result
}

// multiply computes ac <- ac * operand per §4.D.
func (s *State) multiply(ac *Number, operand Number, precision int) uint16 {
	workA, expA, signA := unpack(ac, precision)
	workB, expB, signB := unpack(&operand, precision)

	if expA == 0 || expB == 0 {
		s.setCanonicalZero(ac)
		s.FPS &^= fpsFV | fpsFC
		s.trace(fpptrace.TraceArith, "multiply operand=%v result=%v", operand, *ac)
		return 0
	}

	sign := signA != signB
	exponent := expA + expB - excessBias

	// Both fractions are below 2^(16P-8), so word 0 of the 2P-word product
	// is always zero and the hidden-bit-squared term sits in word 1.
	result := multiplyWords(workA[:precision], workB[:precision])
	work, resultExponent := s.roundMultiplyResult(result[1:], precision, exponent)
	trap := s.pack(ac, precision, work, resultExponent, sign)
	s.trace(fpptrace.TraceArith, "multiply operand=%v result=%v", operand, *ac)
	return trap
}

// roundMultiplyResult normalizes and (if not truncating) rounds a 2P-word
// raw product down to P words, per the rounding rule of §4.D step 4-5: the
// hidden-bit-squared term lands either at bit 15 or bit 14 of the product's
// first word depending on how the two input mantissas combined, selecting
// a final realignment shift of 8 or 7 bits.
func (s *State) roundMultiplyResult(result []uint16, precision, exponent int) (work []uint16, newExponent int) {
	shiftAmt := 8
	if result[0]&0x8000 == 0 {
		shiftAmt = 7
		exponent--
	}
	window := result[:precision+1]
	guard := shiftRight(window, uint(shiftAmt))
	if s.FPS&fpsFT == 0 && guard == 1 {
		addSmall(result[:precision], 1)
	}
	return result[:precision], exponent
}

// mulSubAt subtracts qhat*m from result in place, m aligned at word offset
// o, propagating the multiply carry and the subtraction borrow one word
// further left into result[o-1]. Returns 1 if the final borrow went
// negative (qhat was one too large), else 0.
func mulSubAt(result []uint16, m []uint16, o int, qhat uint32) uint16 {
	p := len(m)
	var carry, borrow uint64
	for i := p - 1; i >= 0; i-- {
		prod := uint64(qhat)*uint64(m[i]) + carry
		carry = prod >> 16
		piece := prod & 0xffff
		idx := o + i
		diff := int64(result[idx]) - int64(piece) - int64(borrow)
		if diff < 0 {
			diff += 0x10000
			borrow = 1
		} else {
			borrow = 0
		}
		result[idx] = uint16(diff)
	}
	idx := o - 1
	if idx < 0 {
		if carry != 0 || borrow != 0 {
			return 1
		}
		return 0
	}
	diff := int64(result[idx]) - int64(carry) - int64(borrow)
	if diff < 0 {
		diff += 0x10000
		borrow = 1
	} else {
		borrow = 0
	}
	result[idx] = uint16(diff)
	return uint16(borrow)
}

// addBackAt undoes a single one-multiple over-subtraction of mulSubAt: adds
// m back into result at word offset o, the central single-step correction
// of the minefield algorithm.
func addBackAt(result []uint16, m []uint16, o int) {
	p := len(m)
	var carry uint64
	for i := p - 1; i >= 0; i-- {
		idx := o + i
		sum := uint64(result[idx]) + uint64(m[i]) + carry
		result[idx] = uint16(sum)
		carry = sum >> 16
	}
	for idx := o - 1; idx >= 0 && carry != 0; idx-- {
		sum := uint64(result[idx]) + carry
		result[idx] = uint16(sum)
		carry = sum >> 16
	}
}

// quotientDigit computes one quotient digit per §4.D step 6, clamped to
// 0xffff.
func quotientDigit(result []uint16, o int, divisor uint32) uint32 {
	var num uint64
	if o == 0 {
		num = uint64(result[0])<<16 | uint64(result[1])
	} else {
		num = (uint64(result[o-1])<<16|uint64(result[o]))<<16 | uint64(result[o+1])
	}
	qhat := num / uint64(divisor)
	if qhat > 0xffff {
		qhat = 0xffff
	}
	return uint32(qhat)
}

// divide computes ac <- ac / operand using the Brinch Hansen "minefield"
// algorithm of §4.D.
func (s *State) divide(ac *Number, operand Number, precision int) uint16 {
	workN, expN, signN := unpack(ac, precision)
	workM, expM, signM := unpack(&operand, precision)

	if expM == 0 {
		s.raiseTrap(fecDivZero)
		return fecDivZero
	}
	if expN == 0 {
		s.setCanonicalZero(ac)
		s.FPS &^= fpsFV | fpsFC
		s.trace(fpptrace.TraceArith, "divide operand=%v result=%v", operand, *ac)
		return 0
	}

	sign := signN != signM
	exponent := expN - expM + excessBias

	p := precision
	result := make([]uint16, 2*p)
	copy(result[:p], workN[:p])
	if compareFraction(workN[:p], workM[:p]) < 0 {
		shiftLeft(result, 8)
	} else {
		shiftLeft(result, 7)
		exponent++
	}

	divisor := uint32(workM[0])<<16 | uint32(workM[1])
	quot := make([]uint16, p)
	for o := 0; o < p; o++ {
		qhat := quotientDigit(result, o, divisor)
		if mulSubAt(result, workM[:p], o, qhat) != 0 {
			qhat--
			addBackAt(result, workM[:p], o)
		}
		quot[o] = uint16(qhat)
	}

	if s.FPS&fpsFT == 0 {
		extra := quotientDigit(result, p, divisor)
		if extra&0x8000 != 0 {
			addSmall(quot, 1)
		}
	}

	trap := s.pack(ac, precision, quot, exponent, sign)
	s.trace(fpptrace.TraceArith, "divide operand=%v result=%v", operand, *ac)
	return trap
}

// modf computes ac*operand and splits the product into an integer part
// (written to whole, when non-nil) and a fractional part (written back to
// ac), per §4.D. Rounding of the fraction is only attempted when the
// integer part fits in fewer than 8 bits beyond the normal point - beyond
// that the FP11 itself lacks the guard bits to round faithfully.
func (s *State) modf(ac *Number, whole *Number, operand Number, precision int) uint16 {
	workA, expA, signA := unpack(ac, precision)
	workB, expB, signB := unpack(&operand, precision)

	if expA == 0 || expB == 0 {
		s.setCanonicalZero(ac)
		if whole != nil {
			s.setCanonicalZero(whole)
		}
		s.FPS &^= fpsFV | fpsFC
		s.trace(fpptrace.TraceArith, "modf operand=%v result=%v", operand, *ac)
		return 0
	}

	sign := signA != signB
	productExponent := expA + expB - excessBias

	product := multiplyWords(workA[:precision], workB[:precision])
	work, exponent := s.roundMultiplyResultForModf(product[1:], precision, productExponent)

	intBits := exponent - excessBias
	if whole != nil {
		intWork := make([]uint16, precision)
		copy(intWork, work)
		if intBits > 0 {
			shiftRight(intWork, uint(len(intWork)*16-(7+intBits)))
		}
		s.pack(whole, precision, intWork, exponent, sign)
	}

	if intBits < 0 {
		s.setCanonicalZero(ac)
		return 0
	}
	pos := findFirstOne(work, 8+intBits+1)
	if pos == -1 {
		s.setCanonicalZero(ac)
		return 0
	}
	fracExponent := exponent - (pos - 8)
	shiftLeft(work, uint(pos-8))
	return s.pack(ac, precision, work, fracExponent, sign)
}

// roundMultiplyResultForModf mirrors roundMultiplyResult but only rounds
// when the product's integer part is narrow, per the historical FP11
// guard-bit limitation §4.D documents for MODF.
func (s *State) roundMultiplyResultForModf(result []uint16, precision, exponent int) (work []uint16, newExponent int) {
	shiftAmt := 8
	if result[0]&0x8000 == 0 {
		shiftAmt = 7
		exponent--
	}
	window := result[:precision+1]
	guard := shiftRight(window, uint(shiftAmt))
	if s.FPS&fpsFT == 0 && guard == 1 && exponent-excessBias < 8 {
		addSmall(result[:precision], 1)
	}
	return result[:precision], exponent
}

// increment adds one ulp to an unpacked fraction field, renormalizing by a
// single right shift if the hidden-bit region overflowed. Returns the
// (possibly adjusted) exponent.
func increment(work []uint16, exponent int) int {
	addSmall(work, 1)
	if work[0] > workMask8 {
		shiftRight(work, 1)
		exponent++
	}
	return exponent
}
