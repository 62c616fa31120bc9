/*
   Instruction dispatch: decode the opcode family/AC/mode fields of §4.F and
   invoke the addressing, arithmetic and conversion kernels. Execute is the
   sole entry point a caller needs - it captures FEA, decodes, and returns
   the FEC trap raised (0 if none) or FaultAbort if a Bus access failed.
*/

package fpp

import "github.com/rcornwell/fp11pp/internal/fpptrace"

// Execute decodes and runs one FPP instruction. The caller is expected to
// have already recognized bits 15-12 as the FPP opcode class.
func (s *State) Execute(instruction uint16) uint16 {
	s.FEA = uint32(s.Bus.Reg(7)) - 2

	family := (instruction >> familyShift) & familyMask
	ac := int((instruction >> acShift) & acMask)
	mode := uint8(instruction & modeMask)

	s.trace(fpptrace.TraceDispatch, "dispatch instr=%#o family=%#o ac=%d mode=%#o", instruction, family, ac, mode)

	switch family {
	case famZeroOperand:
		return s.dispatchControl(ac, mode)
	case famSingle:
		return s.dispatchSingle(ac, mode)
	case famMULF:
		return s.dispatchBinary(ac, mode, s.multiply)
	case famMODF:
		return s.dispatchModf(ac, mode)
	case famADDF:
		return s.dispatchBinary(ac, mode, func(dst *Number, op Number, p int) uint16 {
			return s.addSub(dst, op, p, false)
		})
	case famLDF:
		return s.dispatchLoad(ac, mode)
	case famSUBF:
		return s.dispatchBinary(ac, mode, func(dst *Number, op Number, p int) uint16 {
			return s.addSub(dst, op, p, true)
		})
	case famCMPF:
		return s.dispatchCompare(ac, mode)
	case famSTF:
		return s.dispatchStore(ac, mode)
	case famDIVF:
		return s.dispatchBinary(ac, mode, s.divide)
	case famSTEXP:
		return s.dispatchStexp(ac, mode)
	case famSTCFI:
		return s.dispatchStcfi(ac, mode)
	case famSTCFD:
		return s.dispatchStcfd(ac, mode)
	case famLDEXP:
		return s.dispatchLdexp(ac, mode)
	case famLDCIF:
		return s.dispatchLdcif(ac, mode)
	case famLDCDF:
		return s.dispatchLdcdf(ac, mode)
	}

	s.raiseTrap(fecIllegalOp)
	return fecIllegalOp
}

// setLogicalFlags refreshes N/Z from an already-unpacked sign/exponent,
// the shared tail of LDF/STF/TSTF.
func (s *State) setLogicalFlags(exponent int, sign bool) {
	s.FPS &^= fpsFN | fpsFZ
	if sign {
		s.FPS |= fpsFN
	}
	if exponent == 0 {
		s.FPS |= fpsFZ
	}
}

// checkUndef turns a deferred undefined-variable read into a trap when
// FIUV is enabled, returning the FEC to report (0 if none applies).
func (s *State) checkUndef(undef bool) uint16 {
	if undef && s.FPS&fpsFIUV != 0 {
		s.raiseTrap(fecUndefVar)
		return fecUndefVar
	}
	return 0
}

func (s *State) dispatchControl(group int, mode uint8) uint16 {
	switch group {
	case ctrlGroupBasic:
		return s.dispatchBasicControl(mode)
	case ctrlGroupLDFPS:
		return s.dispatchLdfps(mode)
	case ctrlGroupSTFPS:
		return s.dispatchStfps(mode)
	case ctrlGroupSTST:
		return s.dispatchStst(mode)
	}
	s.raiseTrap(fecIllegalOp)
	return fecIllegalOp
}

func (s *State) dispatchBasicControl(sub uint8) uint16 {
	switch sub {
	case ctrlCFCC:
		s.Bus.SetFlags(0xf, uint8(s.FPS)&0xf)
		return 0
	case ctrlSETF:
		s.FPS &^= fpsFD
		return 0
	case ctrlSETD:
		s.FPS |= fpsFD
		return 0
	case ctrlSETI:
		s.FPS &^= fpsFL
		return 0
	case ctrlSETL:
		s.FPS |= fpsFL
		return 0
	}
	s.raiseTrap(fecIllegalOp)
	return fecIllegalOp
}

func (s *State) dispatchLdfps(mode uint8) uint16 {
	loc, fault := s.resolveInt(mode, false, 2)
	if fault {
		return FaultAbort
	}
	v, ok := s.readInt16(loc)
	if !ok {
		return FaultAbort
	}
	s.FPS = v
	return 0
}

func (s *State) dispatchStfps(mode uint8) uint16 {
	loc, fault := s.resolveInt(mode, true, 2)
	if fault {
		return FaultAbort
	}
	if !s.writeInt16(loc, s.FPS) {
		return FaultAbort
	}
	return 0
}

// dispatchStst stores the diagnostic maintenance status word (here, the
// last error kind recorded in FEC) - KFPA/KFPB use STST only to probe for
// a maintenance trap condition, never the arithmetic result itself.
func (s *State) dispatchStst(mode uint8) uint16 {
	loc, fault := s.resolveInt(mode, true, 2)
	if fault {
		return FaultAbort
	}
	if !s.writeInt16(loc, s.FEC) {
		return FaultAbort
	}
	return 0
}

func (s *State) dispatchSingle(sub int, mode uint8) uint16 {
	write := sub != subTSTF
	loc, trap, fault := s.resolveFloat(mode, write)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}

	switch sub {
	case subCLRF:
		var zero Number
		s.setCanonicalZero(&zero)
		if s.writeFloat(loc, zero) {
			return FaultAbort
		}
		return 0

	case subTSTF:
		n, undef, fault := s.readFloat(loc)
		if fault {
			return FaultAbort
		}
		if trap := s.checkUndef(undef); trap != 0 {
			return trap
		}
		_, exponent, sign := unpack(&n, s.precision())
		s.setLogicalFlags(exponent, sign)
		return 0

	case subABSF, subNEGF:
		s.captureModifyHandle(loc)
		n, undef, fault := s.readFloat(loc)
		if fault {
			return FaultAbort
		}
		precision := s.precision()
		work, exponent, sign := unpack(&n, precision)
		if exponent != 0 {
			if sub == subABSF {
				sign = false
			} else {
				sign = !sign
			}
		}
		s.pack(&n, precision, work, exponent, sign)
		if s.writeFloat(loc, n) {
			return FaultAbort
		}
		return s.checkUndef(undef)
	}

	s.raiseTrap(fecIllegalOp)
	return fecIllegalOp
}

// dispatchBinary implements the shared shape of ADDF/SUBF/MULF/DIVF: fetch
// the addressed operand into a scratch Number, then hand it and the AC
// destination to kernel.
func (s *State) dispatchBinary(ac int, mode uint8, kernel func(dst *Number, operand Number, precision int) uint16) uint16 {
	loc, trap, fault := s.resolveFloat(mode, false)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	operand, undef, fault := s.readFloat(loc)
	if fault {
		return FaultAbort
	}
	if trap := s.checkUndef(undef); trap != 0 {
		return trap
	}
	return kernel(&s.AC[ac], operand, s.precision())
}

func (s *State) dispatchLoad(ac int, mode uint8) uint16 {
	loc, trap, fault := s.resolveFloat(mode, false)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	operand, undef, fault := s.readFloat(loc)
	if fault {
		return FaultAbort
	}
	if trap := s.checkUndef(undef); trap != 0 {
		return trap
	}
	s.AC[ac] = operand
	_, exponent, sign := unpack(&operand, s.precision())
	s.setLogicalFlags(exponent, sign)
	return 0
}

func (s *State) dispatchStore(ac int, mode uint8) uint16 {
	loc, trap, fault := s.resolveFloat(mode, true)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	if s.writeFloat(loc, s.AC[ac]) {
		return FaultAbort
	}
	_, exponent, sign := unpack(&s.AC[ac], s.precision())
	s.setLogicalFlags(exponent, sign)
	return 0
}

func (s *State) dispatchCompare(ac int, mode uint8) uint16 {
	loc, trap, fault := s.resolveFloat(mode, false)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	operand, undef, fault := s.readFloat(loc)
	if fault {
		return FaultAbort
	}
	if trap := s.checkUndef(undef); trap != 0 {
		return trap
	}
	s.compareFloat(&s.AC[ac], operand, s.precision())
	return 0
}

// dispatchModf implements MODF; an even AC receives the integer part in
// AC+1, an odd AC discards it, per §4.F.
func (s *State) dispatchModf(ac int, mode uint8) uint16 {
	loc, trap, fault := s.resolveFloat(mode, false)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	operand, undef, fault := s.readFloat(loc)
	if fault {
		return FaultAbort
	}
	if trap := s.checkUndef(undef); trap != 0 {
		return trap
	}
	var whole *Number
	if ac%2 == 0 && ac+1 < numAccumulators {
		whole = &s.AC[ac+1]
	}
	return s.modf(&s.AC[ac], whole, operand, s.precision())
}

// dispatchStexp stores the accumulator's unbiased exponent as a 16-bit
// integer; STEXP is always a word-sized destination regardless of FL.
func (s *State) dispatchStexp(ac int, mode uint8) uint16 {
	loc, fault := s.resolveInt(mode, true, 2)
	if fault {
		return FaultAbort
	}
	exponent := int((s.AC[ac][0] & expMask) >> expShift)
	var v int16
	if exponent != 0 {
		v = int16(exponent - excessBias)
	}
	if !s.writeInt16(loc, uint16(v)) {
		return FaultAbort
	}
	return 0
}

func isImmediateMode(mode uint8) bool {
	return (mode>>3)&0x7 == 2 && mode&0x7 == 7
}

func (s *State) dispatchStcfi(ac int, mode uint8) uint16 {
	isLong := s.FPS&fpsFL != 0 && !isImmediateMode(mode)
	length := 2
	if isLong {
		length = 4
	}
	loc, fault := s.resolveInt(mode, true, length)
	if fault {
		return FaultAbort
	}
	val, trap := s.stcfi(&s.AC[ac], s.precision(), isLong)
	var ok bool
	if isLong {
		ok = s.writeInt32(loc, val)
	} else {
		ok = s.writeInt16(loc, uint16(val))
	}
	if !ok {
		return FaultAbort
	}
	return trap
}

func (s *State) dispatchLdcif(ac int, mode uint8) uint16 {
	isLong := s.FPS&fpsFL != 0 && !isImmediateMode(mode)
	length := 2
	if isLong {
		length = 4
	}
	loc, fault := s.resolveInt(mode, false, length)
	if fault {
		return FaultAbort
	}
	var raw uint32
	var ok bool
	if isLong {
		raw, ok = s.readInt32(loc)
	} else {
		var v uint16
		v, ok = s.readInt16(loc)
		raw = uint32(v)
	}
	if !ok {
		return FaultAbort
	}
	return s.ldcif(&s.AC[ac], raw, isLong, s.precision())
}

func (s *State) dispatchLdexp(ac int, mode uint8) uint16 {
	loc, fault := s.resolveInt(mode, false, 2)
	if fault {
		return FaultAbort
	}
	raw, ok := s.readInt16(loc)
	if !ok {
		return FaultAbort
	}
	return s.ldexp(&s.AC[ac], s.precision(), int16(raw))
}

func (s *State) otherPrecision() int {
	if s.precision() == 2 {
		return 4
	}
	return 2
}

func (s *State) dispatchStcfd(ac int, mode uint8) uint16 {
	other := s.otherPrecision()
	loc, trap, fault := s.resolveFloatAt(mode, true, other)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	value := s.stcfd(&s.AC[ac])
	if s.writeFloatAt(loc, value, other) {
		return FaultAbort
	}
	return 0
}

func (s *State) dispatchLdcdf(ac int, mode uint8) uint16 {
	other := s.otherPrecision()
	loc, trap, fault := s.resolveFloatAt(mode, false, other)
	if fault {
		return FaultAbort
	}
	if trap != 0 {
		s.raiseTrap(trap)
		return trap
	}
	src, undef, fault := s.readFloatAt(loc, other)
	if fault {
		return FaultAbort
	}
	if trap := s.checkUndef(undef); trap != 0 {
		return trap
	}
	s.ldcdf(&s.AC[ac], src)
	return 0
}
