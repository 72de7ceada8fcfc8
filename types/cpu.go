package types

import "github.com/kestrel-security/machtool/internal/intname"

// CPU is a Mach-O cpu_type_t.
type CPU uint32

const (
	cpuArchMask = 0xff000000
	cpuArch64   = 0x01000000 // 64-bit ABI
)

const (
	CPUi386   CPU = 7
	CPUX8664  CPU = CPUi386 | cpuArch64
	CPUArm    CPU = 12
	CPUArm64  CPU = CPUArm | cpuArch64
	CPUPowerPC   CPU = 18
)

var cpuNames = []intname.Pair{
	{Value: uint32(CPUi386), Name: "i386"},
	{Value: uint32(CPUX8664), Name: "x86_64"},
	{Value: uint32(CPUArm), Name: "arm"},
	{Value: uint32(CPUArm64), Name: "arm64"},
	{Value: uint32(CPUPowerPC), Name: "powerpc"},
}

func (c CPU) String() string { return intname.Lookup(uint32(c), cpuNames, false) }

// CPUSubtype is a Mach-O cpu_subtype_t. Its meaning is CPU-dependent.
type CPUSubtype uint32

const (
	CPUSubtypeMask    CPUSubtype = 0x00ffffff
	CPUSubtypeFeature CPUSubtype = 0xff000000

	CPUSubtypeArm64All CPUSubtype = 0
	CPUSubtypeArm64V8  CPUSubtype = 1
	CPUSubtypeArm64E   CPUSubtype = 2

	CPUSubtypeX8664All CPUSubtype = 3
)

var arm64SubtypeNames = []intname.Pair{
	{Value: uint32(CPUSubtypeArm64All), Name: "ARM64"},
	{Value: uint32(CPUSubtypeArm64V8), Name: "ARM64 (ARMv8)"},
	{Value: uint32(CPUSubtypeArm64E), Name: "ARM64e"},
}

// String renders the subtype, which is only meaningful alongside its CPU.
func (s CPUSubtype) String(cpu CPU) string {
	switch cpu {
	case CPUArm64:
		return intname.Lookup(uint32(s&CPUSubtypeMask), arm64SubtypeNames, false)
	case CPUX8664:
		if s&CPUSubtypeMask == CPUSubtypeX8664All {
			return "x86_64"
		}
	}
	return intname.Lookup(uint32(s&CPUSubtypeMask), nil, false)
}
