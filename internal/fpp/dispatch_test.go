package fpp

import "testing"

// instr assembles an FPP opcode from its family, AC and mode fields.
func instr(family, ac int, mode uint8) uint16 {
	return uint16(family<<familyShift) | uint16(ac<<acShift) | uint16(mode)
}

func TestExecuteCLRFRegisterDirect(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x4080, 0x1234, 0, 0}
	trap := s.Execute(instr(famSingle, subCLRF, 0))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0] != (Number{}) {
		t.Fatalf("AC0 = %v, want canonical zero", s.AC[0])
	}
}

func TestExecuteTSTFSetsFlagsWithoutModifying(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x8080, 0, 0, 0} // negative (sign bit set)
	original := s.AC[0]
	trap := s.Execute(instr(famSingle, subTSTF, 0))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0] != original {
		t.Fatalf("AC0 modified by TSTF: %v", s.AC[0])
	}
	if s.FPS&fpsFN == 0 {
		t.Fatalf("FN not set for a negative operand")
	}
}

func TestExecuteABSFClearsSign(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x8080, 0, 0, 0}
	trap := s.Execute(instr(famSingle, subABSF, 0))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0][0]&signBit != 0 {
		t.Fatalf("AC0 = %v, sign bit still set after ABSF", s.AC[0])
	}
}

func TestExecuteNEGFTogglesSign(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x4080, 0, 0, 0}
	trap := s.Execute(instr(famSingle, subNEGF, 0))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0][0]&signBit == 0 {
		t.Fatalf("AC0 = %v, sign bit not set after NEGF", s.AC[0])
	}
}

func TestExecuteADDFRegisterToRegister(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x4080, 0, 0, 0}
	s.AC[1] = Number{0x4080, 0, 0, 0}
	trap := s.Execute(instr(famADDF, 0, 1)) // AC0 += AC1
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0] != (Number{0x4100, 0, 0, 0}) {
		t.Fatalf("AC0 = %v, want {0x4100 0 0 0}", s.AC[0])
	}
}

func TestExecuteLDFLoadsAccumulatorAndSetsFlags(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[1] = Number{0x8080, 0, 0, 0}
	trap := s.Execute(instr(famLDF, 0, 1)) // AC0 <- AC1
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0] != (Number{0x8080, 0, 0, 0}) {
		t.Fatalf("AC0 = %v, want {0x8080 0 0 0}", s.AC[0])
	}
	if s.FPS&fpsFN == 0 {
		t.Fatalf("FN not set for a negative load")
	}
}

func TestExecuteSTFStoresAccumulator(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x4080, 0, 0, 0}
	trap := s.Execute(instr(famSTF, 0, 1)) // store AC0 into AC1
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[1] != (Number{0x4080, 0, 0, 0}) {
		t.Fatalf("AC1 = %v, want {0x4080 0 0 0}", s.AC[1])
	}
}

func TestExecuteCMPFSetsZOnEqual(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[0] = Number{0x4080, 0, 0, 0}
	s.AC[1] = Number{0x4080, 0, 0, 0}
	trap := s.Execute(instr(famCMPF, 0, 1))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.FPS&fpsFZ == 0 {
		t.Fatalf("FZ not set for equal operands")
	}
}

func TestExecuteRejectsRegister6And7(t *testing.T) {
	s, _ := newTestFPPState()
	trap := s.Execute(instr(famLDF, 0, 6))
	if trap != fecIllegalOp {
		t.Fatalf("trap = %d, want fecIllegalOp", trap)
	}
	trap = s.Execute(instr(famLDF, 0, 7))
	if trap != fecIllegalOp {
		t.Fatalf("register 7: trap = %d, want fecIllegalOp", trap)
	}
}

func TestExecuteSETDAndSETFToggleFD(t *testing.T) {
	s, _ := newTestFPPState()
	trap := s.Execute(instr(famZeroOperand, ctrlGroupBasic, ctrlSETD))
	if trap != 0 || s.FPS&fpsFD == 0 {
		t.Fatalf("SETD did not set FD: trap=%d FPS=%#x", trap, s.FPS)
	}
	trap = s.Execute(instr(famZeroOperand, ctrlGroupBasic, ctrlSETF))
	if trap != 0 || s.FPS&fpsFD != 0 {
		t.Fatalf("SETF did not clear FD: trap=%d FPS=%#x", trap, s.FPS)
	}
}

func TestExecuteCFCCMirrorsConditionCodes(t *testing.T) {
	s, b := newTestFPPState()
	s.FPS |= fpsFN | fpsFZ
	trap := s.Execute(instr(famZeroOperand, ctrlGroupBasic, ctrlCFCC))
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if b.flags&0xf != uint8(s.FPS)&0xf {
		t.Fatalf("bus flags = %#x, want %#x", b.flags, uint8(s.FPS)&0xf)
	}
}

func TestExecuteModfOddAccumulatorDiscardsWhole(t *testing.T) {
	s, _ := newTestFPPState()
	s.AC[1] = Number{0x4080, 0, 0, 0}
	s.AC[2] = Number{0x4080, 0, 0, 0}
	trap := s.Execute(instr(famMODF, 1, 2)) // AC1 *= AC2, odd AC -> no whole part
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[2] != (Number{0x4080, 0, 0, 0}) {
		t.Fatalf("AC2 = %v, want unchanged: odd AC must not store a whole part in AC+1", s.AC[2])
	}
}

func TestExecuteStexpReadsUnbiasedExponent(t *testing.T) {
	s, b := newTestFPPState()
	s.AC[0] = Number{0x4080, 0, 0, 0} // stored exponent 129 -> unbiased 1
	trap := s.Execute(instr(famSTEXP, 0, 3)) // register destination R3
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if b.regs[3] != 1 {
		t.Fatalf("R3 = %d, want 1", b.regs[3])
	}
}

func TestExecuteLdcifConvertsIntegerOperand(t *testing.T) {
	s, b := newTestFPPState()
	b.regs[3] = 4
	trap := s.Execute(instr(famLDCIF, 0, 3)) // AC0 <- (int)R3
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if s.AC[0] != (Number{0x4180, 0, 0, 0}) {
		t.Fatalf("AC0 = %v, want {0x4180 0 0 0}", s.AC[0])
	}
}

func TestExecuteRaisesUndefVarTrapEndToEnd(t *testing.T) {
	s, _ := newTestFPPState()
	s.FPS |= fpsFIUV
	s.AC[1] = Number{0x8000, 0, 0, 0} // sign=1, exponent=0: undefined variable
	trap := s.Execute(instr(famLDF, 0, 1))
	if trap != fecUndefVar {
		t.Fatalf("trap = %d, want fecUndefVar", trap)
	}
	if s.FPS&fpsFER == 0 {
		t.Fatalf("FER not set")
	}
	if s.FEC != fecUndefVar {
		t.Fatalf("FEC = %d, want fecUndefVar", s.FEC)
	}
}

func TestExecuteStcfiConvertsFloatOperand(t *testing.T) {
	s, b := newTestFPPState()
	s.AC[0] = Number{0x4180, 0, 0, 0}
	trap := s.Execute(instr(famSTCFI, 0, 3)) // R3 <- (int)AC0
	if trap != 0 {
		t.Fatalf("trap = %d", trap)
	}
	if b.regs[3] != 4 {
		t.Fatalf("R3 = %d, want 4", b.regs[3])
	}
}
