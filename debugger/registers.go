package debugger

import (
	"github.com/kestrel-security/machtool/arm64"
	"github.com/kestrel-security/machtool/pkg/machkernel"
)

// Registers is the portable ARM64 general-register snapshot spec.md's data
// model names: x0..x30, sp, pc, and the cpsr flags word. Index 31 reads as
// the zero register and is ignored on write.
type Registers struct {
	X    [31]uint64
	SP   uint64
	PC   uint64
	CPSR uint32
}

// cpsrSingleStepBit is PSTATE.SS, the architectural single-step enable bit
// in the saved condition-flags register (SPSR_EL1 bit 21). Step sets it
// before resuming and the exception server clears it once the resulting
// single-step trap is observed.
const cpsrSingleStepBit uint32 = 1 << 21

// SetSingleStep sets or clears PSTATE.SS in CPSR.
func (r *Registers) SetSingleStep(enabled bool) {
	if enabled {
		r.CPSR |= cpsrSingleStepBit
	} else {
		r.CPSR &^= cpsrSingleStepBit
	}
}

// SingleStepEnabled reports whether PSTATE.SS is currently set.
func (r Registers) SingleStepEnabled() bool {
	return r.CPSR&cpsrSingleStepBit != 0
}

// FP and LR are the conventional aliases for x29/x30.
func (r Registers) FP() uint64 { return r.X[29] }
func (r Registers) LR() uint64 { return r.X[30] }

// Get returns register n (0..31); 31 always reads as zero.
func (r Registers) Get(n int) uint64 {
	if n == 31 {
		return 0
	}
	return r.X[n]
}

// Set writes register n (0..30); writes to 31 are silently ignored, per
// spec.md's "index 31 ... ignored on write" rule.
func (r *Registers) Set(n int, v uint64) {
	if n < 0 || n > 30 {
		return
	}
	r.X[n] = v
}

// Name renders the conventional display name for register n, aliasing
// x29/x30 to fp/lr the way a register dump or backtrace does; 31 is the
// dedicated SP field rather than a slot in X, so it aliases separately.
func Name(n int) string {
	if n == 31 {
		return "sp"
	}
	return arm64.GPRegAliased(uint32(n), true)
}

func fromKernelState(s machkernel.ThreadState64) Registers {
	var r Registers
	copy(r.X[:29], s.X[:])
	r.X[29] = s.FP
	r.X[30] = s.LR
	r.SP = s.SP
	r.PC = s.PC
	r.CPSR = s.CPSR
	return r
}

func toKernelState(r Registers) machkernel.ThreadState64 {
	var s machkernel.ThreadState64
	copy(s.X[:], r.X[:29])
	s.FP = r.X[29]
	s.LR = r.X[30]
	s.SP = r.SP
	s.PC = r.PC
	s.CPSR = r.CPSR
	return s
}
