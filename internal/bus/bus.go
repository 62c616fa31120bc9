/*
   Reference bus: a minimal stand-in for the CPU instruction dispatcher and
   MMU the FP11 core treats as an external collaborator. It implements
   fpp.Bus over a flat word-addressable memory and an 8-register general
   register file, exactly the virtual_for_mode/read_word/write_word/
   cpu_regs/set_cpu_flags/trap-mask contract of §6.

   Modeled on a package-global flat-memory emulator core recast as an
   owned struct (no package-level state), with a register file folded in
   alongside it since the FPP core's Bus needs both.
*/

package bus

import "github.com/rcornwell/fp11pp/internal/fpp"

const (
	// virtualBits is the width of the I/D virtual address space the FPP
	// core addresses; no MMU is modeled, so I and D space are collapsed
	// into a single flat array.
	virtualBits = 17
	virtualMask = (1 << virtualBits) - 1
	wordCount   = (1 << virtualBits) / 2
)

// Registers is the 8-element PDP-11 general register file plus the 4-bit
// condition-code nibble FPP instructions like CFCC and STCFI write.
type Registers struct {
	R     [8]uint16
	Flags uint8 // low 4 bits: N Z V C
}

// Memory is a flat word-addressable store, indexed by the low virtualBits
// bits of a byte address (word-aligned).
type Memory struct {
	words []uint16
}

// NewMemory returns a Memory sized to the full 17-bit I/D virtual space.
func NewMemory() *Memory {
	return &Memory{words: make([]uint16, wordCount)}
}

func (m *Memory) index(addr uint32) int {
	return int((addr & virtualMask) >> 1)
}

// Read returns the word at addr, or ok=false if addr is odd (unaligned
// access is a bus error on the real hardware).
func (m *Memory) Read(addr uint32) (uint16, bool) {
	if addr&1 != 0 {
		return 0, false
	}
	return m.words[m.index(addr)], true
}

// Write stores v at addr, or reports ok=false on an unaligned address.
func (m *Memory) Write(addr uint32, v uint16) bool {
	if addr&1 != 0 {
		return false
	}
	m.words[m.index(addr)] = v
	return true
}

// Bus ties Registers and Memory together and implements fpp.Bus.
type Bus struct {
	Regs     Registers
	Mem      *Memory
	trap     bool
	modReg   int
	modAddr  uint32
	modIsReg bool
}

// New returns a Bus over a freshly allocated Memory.
func New() *Bus {
	return &Bus{Mem: NewMemory()}
}

func (b *Bus) Reg(n int) uint16 {
	return b.Regs.R[n&7]
}

func (b *Bus) SetReg(n int, v uint16) {
	b.Regs.R[n&7] = v
}

func (b *Bus) ReadWord(addr uint32) (uint16, bool) {
	return b.Mem.Read(addr)
}

func (b *Bus) WriteWord(addr uint32, v uint16) bool {
	return b.Mem.Write(addr, v)
}

func (b *Bus) SetFlags(mask, value uint8) {
	b.Regs.Flags = (b.Regs.Flags &^ mask) | (value & mask)
}

// TrapPending reports whether an FPP trap was raised since the last clear,
// standing in for the CPU's cpu.trap_mask bit 3.
func (b *Bus) TrapPending() bool {
	return b.trap
}

// ClearTrap resets the pending-trap signal; the reference CLI calls this
// once it has acted on a trap between instructions.
func (b *Bus) ClearTrap() {
	b.trap = false
}

func (b *Bus) RaiseTrapMask() {
	b.trap = true
}

func (b *Bus) ModifyRegister(n int) {
	b.modIsReg = true
	b.modReg = n
}

func (b *Bus) ModifyAddress(addr uint32) {
	b.modIsReg = false
	b.modAddr = addr
}

// VirtualForMode resolves a 6-bit PDP-11 addressing mode field against
// this bus's register file and memory, per §4.C: auto-increment/decrement
// step the register by access.Length bytes, index modes fetch their offset
// word from the location named by R7 (the PC) and advance it by 2.
func (b *Bus) VirtualForMode(mode uint8, access fpp.AccessKind) (addr uint32, isReg bool, fault bool) {
	reg := int(mode & 0x7)
	modeBits := (mode >> 3) & 0x7
	length := uint16(access.Length)

	switch modeBits {
	case 0:
		return uint32(reg), true, false

	case 1:
		return uint32(b.Regs.R[reg]) & virtualMask, false, false

	case 2:
		a := uint32(b.Regs.R[reg]) & virtualMask
		b.Regs.R[reg] += length
		return a, false, false

	case 3:
		ptr := uint32(b.Regs.R[reg]) & virtualMask
		b.Regs.R[reg] += 2
		w, ok := b.Mem.Read(ptr)
		if !ok {
			return 0, false, true
		}
		return uint32(w) & virtualMask, false, false

	case 4:
		b.Regs.R[reg] -= length
		return uint32(b.Regs.R[reg]) & virtualMask, false, false

	case 5:
		b.Regs.R[reg] -= 2
		w, ok := b.Mem.Read(uint32(b.Regs.R[reg]) & virtualMask)
		if !ok {
			return 0, false, true
		}
		return uint32(w) & virtualMask, false, false

	case 6:
		pc := uint32(b.Regs.R[7]) & virtualMask
		idx, ok := b.Mem.Read(pc)
		if !ok {
			return 0, false, true
		}
		b.Regs.R[7] += 2
		a := (uint32(idx) + uint32(b.Regs.R[reg])) & virtualMask
		return a, false, false

	case 7:
		pc := uint32(b.Regs.R[7]) & virtualMask
		idx, ok := b.Mem.Read(pc)
		if !ok {
			return 0, false, true
		}
		b.Regs.R[7] += 2
		ptr := (uint32(idx) + uint32(b.Regs.R[reg])) & virtualMask
		w, ok := b.Mem.Read(ptr)
		if !ok {
			return 0, false, true
		}
		return uint32(w) & virtualMask, false, false
	}

	return 0, false, true
}
