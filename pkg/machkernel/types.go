// Package machkernel binds the small set of Mach/task-port kernel calls the
// debugger needs directly, via dlopen + purego rather than cgo: task-port
// acquisition, virtual-memory read/write/protect, thread enumeration and
// register access, and exception-port wiring.
package machkernel

// Mach's own integer typedefs, declared as aliases of the plain integer
// types so call sites read the way the kernel headers do; values of these
// types are interchangeable with uint32/uint64/int32 without conversion.
type (
	MachPort            = uint32
	KernReturn          = int32
	NaturalT            = uint32
	MachMsgTypeNumber   = uint32
	VMAddress           = uint64
	VMSize              = uint64
	VMProt              = int32
	TaskFlavor          = uint32
	ThreadStateFlavor   = int32
	ExceptionMask       = uint32
	ExceptionBehavior   = int32
)

// KERN_SUCCESS and the handful of failure codes the debugger distinguishes.
const (
	KernSuccess           KernReturn = 0
	KernInvalidAddress    KernReturn = 1
	KernProtectionFailure KernReturn = 2
	KernNoSpace           KernReturn = 3
	KernInvalidArgument   KernReturn = 4
	KernFailure           KernReturn = 5
	KernNoAccess          KernReturn = 8
	KernInvalidTask       KernReturn = 21
)

const (
	VMProtNone  VMProt = 0x0
	VMProtRead  VMProt = 0x1
	VMProtWrite VMProt = 0x2
	VMProtExec  VMProt = 0x4
)

// ThreadState64 mirrors xnu's arm_thread_state64_t: 29 callee/caller GP
// registers plus fp, lr, sp, pc, and the cpsr flags word. Kernel
// thread_get_state/thread_set_state exchange this as a flat uint32 array;
// ARM64ThreadStateCount is its length in 4-byte units.
const (
	ARM64ThreadStateFlavor ThreadStateFlavor = 6 // ARM_THREAD_STATE64
	ARM64ThreadStateCount                    = 68
)

// ThreadState64 is the decoded form of the raw state array exchanged with
// thread_get_state/thread_set_state.
type ThreadState64 struct {
	X    [29]uint64
	FP   uint64
	LR   uint64
	SP   uint64
	PC   uint64
	CPSR uint32
}

// ToWords packs the struct back into the flat array the kernel expects.
func (s ThreadState64) ToWords() [ARM64ThreadStateCount]uint32 {
	var words [ARM64ThreadStateCount]uint32
	put64 := func(off int, v uint64) {
		words[off] = uint32(v)
		words[off+1] = uint32(v >> 32)
	}
	for i, x := range s.X {
		put64(i*2, x)
	}
	put64(58, s.FP)
	put64(60, s.LR)
	put64(62, s.SP)
	put64(64, s.PC)
	words[66] = s.CPSR
	return words
}

// ThreadStateFromWords unpacks the flat array returned by thread_get_state.
func ThreadStateFromWords(words [ARM64ThreadStateCount]uint32) ThreadState64 {
	get64 := func(off int) uint64 {
		return uint64(words[off]) | uint64(words[off+1])<<32
	}
	var s ThreadState64
	for i := range s.X {
		s.X[i] = get64(i * 2)
	}
	s.FP = get64(58)
	s.LR = get64(60)
	s.SP = get64(62)
	s.PC = get64(64)
	s.CPSR = words[66]
	return s
}
