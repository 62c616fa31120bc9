/*
   Package fpp implements the FP11 floating point coprocessor core: a
   synchronous, single-threaded state machine invoked once per FPP opcode.
   It owns the status register, error registers and the six accumulators,
   and consumes a Bus collaborator for operand addressing and memory
   transfers. It never runs concurrently with itself - see §5 of the design
   for the ownership rules the caller must respect.
*/
package fpp

import (
	"fmt"

	"github.com/rcornwell/fp11pp/internal/fpptrace"
)

// AccessKind describes a requested operand transfer: direction and byte
// length, exactly the parameters virtual_for_mode needs per §6.
type AccessKind struct {
	Write  bool
	Length int // bytes: 2 for immediate mode regardless of operand size
}

// Bus is the external collaborator contract of §6: CPU register file,
// address resolution and word-at-a-time memory transfers. The FPP core
// never touches memory or general registers except through this interface.
type Bus interface {
	// Reg reads general register n (0-7); register 7 is the PC.
	Reg(n int) uint16
	// SetReg writes general register n (0-7).
	SetReg(n int, v uint16)
	// VirtualForMode resolves a 6-bit addressing mode field to a 17-bit
	// I/D virtual address, advancing the named register for
	// auto-increment/decrement modes by access.Length bytes (the FPP core
	// passes 2 for PC-relative immediate regardless of operand size).
	// Register mode returns isReg=true with the register number in
	// addr; the caller is responsible for treating that as an
	// accumulator/register access rather than a memory access.
	VirtualForMode(mode uint8, access AccessKind) (addr uint32, isReg bool, fault bool)
	// ReadWord reads one 16-bit word at an I/D virtual address.
	ReadWord(addr uint32) (uint16, bool)
	// WriteWord writes one 16-bit word at an I/D virtual address.
	WriteWord(addr uint32, v uint16) bool
	// SetFlags copies the low 4 condition-code bits into the CPU's flag
	// register, masked by mask.
	SetFlags(mask, value uint8)
	// RaiseTrapMask signals the CPU that an FPP trap is pending
	// (cpu.trap_mask |= 8). Idempotent within an instruction.
	RaiseTrapMask()
	// ModifyRegister and ModifyAddress record where a read-modify-write
	// operand came from, for ABS/NEG write-back.
	ModifyRegister(n int)
	ModifyAddress(addr uint32)
}

// State is the FPP's entire architectural state: FPS, the error registers,
// and the six accumulators. The zero value is a valid reset state.
type State struct {
	FPS uint16 // status register
	FEC uint16 // error kind of the last trap
	FEA uint32 // virtual PC of the last trapping instruction

	AC [numAccumulators]Number

	Bus Bus

	// Trace, if non-nil, receives a human-readable line for every traced
	// event whose category is set in TraceMask. Pure observer - it never
	// affects FPS, FEC or an accumulator.
	Trace func(string)

	// TraceMask selects which categories of event reach Trace. The zero
	// value traces nothing even when Trace is set.
	TraceMask fpptrace.Mask
}

// NewState returns a State reset to power-up defaults: FPS, FEC, FEA and
// all accumulators zero (single precision, round-to-nearest, every
// trap-enable bit clear; FID is clear too, so unmaskable traps still
// raise the trap-mask bit).
func NewState(bus Bus) *State {
	return &State{Bus: bus}
}

// precision returns the active word count: 4 in double mode (FPS.FD set),
// else 2.
func (s *State) precision() int {
	if s.FPS&fpsFD != 0 {
		return 4
	}
	return 2
}

func (s *State) trace(cat fpptrace.Mask, format string, a ...any) {
	if s.Trace == nil || s.TraceMask&cat == 0 {
		return
	}
	s.Trace(fmt.Sprintf(format, a...))
}

// raiseTrap records FER/FEC/FEA for the given FEC kind and, unless FID is
// set, asks the bus to raise the CPU trap-mask bit. The caller's partial
// result is still committed to the destination - trap delivery never
// unwinds an in-progress FPP instruction, only a Bus fault does that.
func (s *State) raiseTrap(fec uint16) {
	s.FPS |= fpsFER
	s.FEC = fec
	if s.FPS&fpsFID == 0 && s.Bus != nil {
		s.Bus.RaiseTrapMask()
	}
	s.trace(fpptrace.TraceTrap, "trap fec=%d fea=%#o", fec, s.FEA)
}
