/*
   FP11 floating point coprocessor: register layout and opcode constants.

   Adapted from the IBM 370 floating point coprocessor emulator.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package fpp

// Number is an FPP value: four 16-bit words, index 0 most significant.
// Word 0 holds sign (bit 15), 8-bit biased exponent (bits 14-7) and the
// top 7 fraction bits (bits 6-0). Words 1-3 hold successively lower
// fraction bits. Only words 0-1 are significant in float precision.
type Number [4]uint16

// Word 0 field layout of a packed Number.
const (
	signBit   uint16 = 0x8000 // sign
	expMask   uint16 = 0x7f80 // biased exponent, bits 14-7
	expShift         = 7
	fracMask7 uint16 = 0x007f // stored fraction bits 6-0
	hiddenBit uint16 = 0x0080 // implicit leading 1, bit 7
	workMask8 uint16 = 0x00ff // hidden + stored fraction while unpacked

	excessBias = 128 // exponent bias
)

// FPS status register bit positions.
const (
	fpsFER  uint16 = 1 << 15 // floating error
	fpsFID  uint16 = 1 << 14 // interrupts disabled
	fpsFIUV uint16 = 1 << 11 // trap on undefined variable
	fpsFIU  uint16 = 1 << 10 // trap on underflow
	fpsFIV  uint16 = 1 << 9  // trap on overflow
	fpsFIC  uint16 = 1 << 8  // trap on integer conversion failure
	fpsFD   uint16 = 1 << 7  // double precision mode
	fpsFL   uint16 = 1 << 6  // long integer mode
	fpsFT   uint16 = 1 << 5  // truncate, else round to nearest
	fpsFN   uint16 = 1 << 3  // negative
	fpsFZ   uint16 = 1 << 2  // zero
	fpsFV   uint16 = 1 << 1  // overflow
	fpsFC   uint16 = 1 << 0  // carry
)

// FEC error kinds. Even values only; odd values are unused reserved slots
// in the real FP11, kept here only as documentation.
const (
	fecIllegalOp   uint16 = 2  // decode failure, or register mode hit r6/r7
	fecDivZero     uint16 = 4  // DIVF with a zero divisor
	fecIntConv     uint16 = 6  // STCFI result exceeds target width
	fecOverflow    uint16 = 8  // pack saw exponent >= 256
	fecUnderflow   uint16 = 10 // pack saw exponent <= 0 in a non-zero result
	fecUndefVar    uint16 = 12 // operand read hit sign=1, exponent=0
	fecMaintenance uint16 = 14 // diagnostic-only, never raised by this core
)

// trapMaskBit is the CPU trap-mask bit an enabled trap asks the caller to
// raise, per the §6 collaborator contract (cpu.trap_mask |= 8).
const trapMaskBit uint8 = 0x08

// FaultAbort is the value Execute returns when a collaborator (Bus) memory
// access failed: the instruction is aborted cleanly, FPS/FEC/FEA are left
// untouched, and no trap-mask bit is raised - distinct from every real FEC
// code, all of which are small even numbers.
const FaultAbort uint16 = 0xffff

// Accumulator count and addressing-mode legality.
const (
	numAccumulators   = 6 // AC0..AC5
	destOnlyThreshold = 4 // AC4, AC5 are destination-only in register mode
)

// Opcode decode: the 16-bit instruction's family occupies bits 11-8 (the
// CPU has already recognized bits 15-12 as the FPP opcode class), the AC
// field occupies bits 7-6, and the low 6 bits select an addressing mode
// (source/destination instructions) or a sub-opcode (family 0).
const (
	familyShift = 8
	familyMask  = 0xf
	acShift     = 6
	acMask      = 0x3
	modeMask    = 0x3f
)

const (
	famZeroOperand = 0x0
	famSingle      = 0x1
	famMULF        = 0x2
	famMODF        = 0x3
	famADDF        = 0x4
	famLDF         = 0x5
	famSUBF        = 0x6
	famCMPF        = 0x7
	famSTF         = 0x8
	famDIVF        = 0x9
	famSTEXP       = 0xa
	famSTCFI       = 0xb
	famSTCFD       = 0xc
	famLDEXP       = 0xd
	famLDCIF       = 0xe
	famLDCDF       = 0xf
)

// Single-operand sub-opcodes within family 1: the AC field selects the
// operation, the low 6 bits are the operand's addressing mode.
const (
	subCLRF = 0
	subTSTF = 1
	subABSF = 2
	subNEGF = 3
)

// Family 0 (control/zero-operand) uses the AC field as a sub-group selector:
// group 0 uses the low 6 bits to pick a fixed-form control op, groups 1-3
// take the low 6 bits as the addressing mode of their single memory operand.
const (
	ctrlGroupBasic = 0 // CFCC, SETF, SETD, SETI, SETL
	ctrlGroupLDFPS = 1 // LDFPS src
	ctrlGroupSTFPS = 2 // STFPS dst
	ctrlGroupSTST  = 3 // STST dst
)

// Basic control sub-opcodes, selected by the low 6 bits when the AC field
// is ctrlGroupBasic.
const (
	ctrlCFCC = 0
	ctrlSETF = 1
	ctrlSETD = 2
	ctrlSETI = 3
	ctrlSETL = 4
)
