/*
   Debug trace mask: selects which categories of FPP core events get
   written to the structured logger. Independent of FPS - a pure observer,
   never part of architectural state.
*/

package fpptrace

// Mask is a bitmask of trace categories, modeled on the per-module/per-level
// debug masks common to emulator cores with multiple subsystems to trace.
type Mask int

const (
	// TraceDispatch logs every decoded opcode (family, AC, mode).
	TraceDispatch Mask = 1 << iota
	// TraceArith logs arithmetic kernel entry/exit (operands, result).
	TraceArith
	// TraceTrap logs every FEC trap raised and its FEA.
	TraceTrap

	// TraceAll enables every category.
	TraceAll = TraceDispatch | TraceArith | TraceTrap
)

// Named maps trace category names, as they would appear in a diagnostic
// config file's `trace <NAME>` line, to their Mask bit.
var Named = map[string]Mask{
	"dispatch": TraceDispatch,
	"arith":    TraceArith,
	"trap":     TraceTrap,
	"all":      TraceAll,
}
