/*
   Operand addressing: resolve a 6-bit PDP-11 addressing mode to either an
   accumulator or a Bus-backed memory location, then assemble/disassemble
   the P-word FPP value through the Bus's word-at-a-time transfers.

   The addressing-mode decode itself (register selection, auto-increment
   and auto-decrement stepping, index-word fetch, I/D virtual address
   formation) is the Bus's job per the §6 collaborator contract - this file
   only adds the FPP-specific layer on top: accumulator vs general-register
   register mode, the byte length the active precision demands, the
   PC-relative immediate short-literal quirk, and the undefined-variable
   read check.
*/

package fpp

// operandLoc is the resolved handle for an FPP operand: either one of the
// six accumulators, or a Bus virtual address. Opaque to the arithmetic
// kernels, which only ever call readFloat/writeFloat on it.
type operandLoc struct {
	isAccum bool
	acIndex int
	addr    uint32
	// immediate marks the PC-relative "(PC)+" short-literal form: only one
	// word was fetched and it occupies word 0, words 1-3 are zero.
	immediate bool
}

// resolveFloat decodes a 6-bit addressing mode for a floating operand of
// the active precision. trap is fecIllegalOp if the mode names register 6
// or 7; fault is a Bus-level failure (index word fetch, etc).
func (s *State) resolveFloat(mode uint8, write bool) (loc operandLoc, trap uint16, fault bool) {
	return s.resolveFloatAt(mode, write, s.precision())
}

// resolveFloatAt is resolveFloat parameterized on an explicit precision,
// used by STCFD/LDCDF to address an operand at the precision opposite the
// currently active one.
func (s *State) resolveFloatAt(mode uint8, write bool, precision int) (loc operandLoc, trap uint16, fault bool) {
	length := precision * 2

	// PC-relative immediate "(PC)+" is mode bits 010, register 111: a
	// short literal, always 2 bytes regardless of active precision.
	if (mode>>3)&0x7 == 2 && mode&0x7 == 7 {
		length = 2
	}

	addr, isReg, busFault := s.Bus.VirtualForMode(mode, AccessKind{Write: write, Length: length})
	if busFault {
		return operandLoc{}, 0, true
	}
	if isReg {
		reg := int(addr)
		if reg >= destOnlyThreshold+2 { // 6, 7
			return operandLoc{}, fecIllegalOp, false
		}
		if reg >= destOnlyThreshold && !write { // AC4, AC5 are destination-only
			return operandLoc{}, fecIllegalOp, false
		}
		return operandLoc{isAccum: true, acIndex: reg}, 0, false
	}
	return operandLoc{addr: addr, immediate: length == 2}, 0, false
}

// readFloat fetches the operand's P words into a Number. If the stored
// encoding is the reserved undefined-variable value, undef reports it but
// does not itself raise a trap - most callers turn that into fecUndefVar
// immediately, ABS/NEG defer it until after their side effect runs.
func (s *State) readFloat(loc operandLoc) (n Number, undef bool, fault bool) {
	return s.readFloatAt(loc, s.precision())
}

// readFloatAt is readFloat parameterized on an explicit precision.
func (s *State) readFloatAt(loc operandLoc, precision int) (n Number, undef bool, fault bool) {
	if loc.isAccum {
		n = s.AC[loc.acIndex]
		return n, isUndefinedVariable(&n), false
	}

	if loc.immediate {
		w, ok := s.Bus.ReadWord(loc.addr)
		if !ok {
			return Number{}, false, true
		}
		n[0] = w
		return n, isUndefinedVariable(&n), false
	}

	for i := 0; i < precision; i++ {
		w, ok := s.Bus.ReadWord(loc.addr + uint32(2*i))
		if !ok {
			return Number{}, false, true
		}
		n[i] = w
	}
	return n, isUndefinedVariable(&n), false
}

// writeFloat stores a Number's active-precision words back through loc.
func (s *State) writeFloat(loc operandLoc, n Number) (fault bool) {
	return s.writeFloatAt(loc, n, s.precision())
}

// writeFloatAt is writeFloat parameterized on an explicit precision.
func (s *State) writeFloatAt(loc operandLoc, n Number, precision int) (fault bool) {
	if loc.isAccum {
		s.AC[loc.acIndex] = n
		return false
	}
	if loc.immediate {
		precision = 1
	}
	for i := 0; i < precision; i++ {
		if !s.Bus.WriteWord(loc.addr+uint32(2*i), n[i]) {
			return true
		}
	}
	return false
}

// captureModifyHandle tells the Bus where a read-modify-write operand
// (ABS, NEG) came from, so it can be re-used for the write-back without
// re-resolving the addressing mode.
func (s *State) captureModifyHandle(loc operandLoc) {
	if loc.isAccum {
		s.Bus.ModifyRegister(loc.acIndex)
	} else {
		s.Bus.ModifyAddress(loc.addr)
	}
}

// intLoc is the resolved handle for a plain integer operand used by the
// conversion kernels (LDCIF, STCFI, STEXP, LDEXP): a general CPU register
// or a Bus virtual address - unlike operandLoc, register mode here names
// any of R0-R7, never an accumulator.
type intLoc struct {
	isReg bool
	reg   int
	addr  uint32
}

// resolveInt decodes a 6-bit addressing mode for an integer operand of the
// given byte length.
func (s *State) resolveInt(mode uint8, write bool, length int) (loc intLoc, fault bool) {
	addr, isReg, busFault := s.Bus.VirtualForMode(mode, AccessKind{Write: write, Length: length})
	if busFault {
		return intLoc{}, true
	}
	if isReg {
		return intLoc{isReg: true, reg: int(addr)}, false
	}
	return intLoc{addr: addr}, false
}

func (s *State) readInt16(loc intLoc) (uint16, bool) {
	if loc.isReg {
		return s.Bus.Reg(loc.reg), true
	}
	v, ok := s.Bus.ReadWord(loc.addr)
	return v, ok
}

func (s *State) writeInt16(loc intLoc, v uint16) bool {
	if loc.isReg {
		s.Bus.SetReg(loc.reg, v)
		return true
	}
	return s.Bus.WriteWord(loc.addr, v)
}

// readInt32 reads a 32-bit integer. In register mode the value spans the
// named register and its successor (wrapping R7 to R0), since no single
// PDP-11 general register holds 32 bits.
func (s *State) readInt32(loc intLoc) (uint32, bool) {
	if loc.isReg {
		hi := uint32(s.Bus.Reg(loc.reg))
		lo := uint32(s.Bus.Reg((loc.reg + 1) & 7))
		return hi<<16 | lo, true
	}
	hi, ok1 := s.Bus.ReadWord(loc.addr)
	lo, ok2 := s.Bus.ReadWord(loc.addr + 2)
	return uint32(hi)<<16 | uint32(lo), ok1 && ok2
}

func (s *State) writeInt32(loc intLoc, v uint32) bool {
	if loc.isReg {
		s.Bus.SetReg(loc.reg, uint16(v>>16))
		s.Bus.SetReg((loc.reg+1)&7, uint16(v))
		return true
	}
	if !s.Bus.WriteWord(loc.addr, uint16(v>>16)) {
		return false
	}
	return s.Bus.WriteWord(loc.addr+2, uint16(v))
}
