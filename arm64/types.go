// Package arm64 decodes fixed-width AArch64 instruction encodings into a
// typed Instruction value. Decode is a pure, total function: it never
// errors, and every 32-bit input produces some Instruction — unrecognized
// patterns fall back to mnemonic ".word" with category Unknown.
package arm64

import "fmt"

// Category classifies an Instruction into one of the six buckets the
// disassembler's formatting and filtering logic keys off of.
type Category int

const (
	CategoryDataProcessing Category = iota
	CategoryBranch
	CategoryLoadStore
	CategorySystem
	CategorySIMD
	CategoryPAC
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryDataProcessing:
		return "dataProcessing"
	case CategoryBranch:
		return "branch"
	case CategoryLoadStore:
		return "loadStore"
	case CategorySystem:
		return "system"
	case CategorySIMD:
		return "simd"
	case CategoryPAC:
		return "pac"
	default:
		return "unknown"
	}
}

// OperandKind identifies which fields of an Operand are meaningful.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandPCAddress
	OperandMemoryOffset
	OperandMemoryExtended
	OperandShiftedRegister
	OperandExtendedRegister
	OperandCondition
	OperandLabel
	OperandSystemRegister
	OperandBarrierOption
	OperandPrefetchOp
)

// Operand is a tagged union covering every operand shape spec.md's data
// model enumerates. Only the fields relevant to Kind are populated.
type Operand struct {
	Kind OperandKind

	Reg string // OperandRegister / base of Memory*

	Imm int64 // OperandImmediate

	Address uint64 // OperandPCAddress / OperandLabel

	// OperandMemoryOffset: Base [+ Disp], optional writeback.
	Disp      int64
	PreIndex  bool
	PostIndex bool

	// OperandMemoryExtended: Base + Index, extended/shifted.
	Index     string
	Extend    string
	Shift     uint32
	HasShift  bool

	// OperandShiftedRegister / OperandExtendedRegister: Reg is the source
	// register, ShiftOp/Extend + Shift describe the modifier.
	ShiftOp string

	Cond string // OperandCondition

	SysReg string // OperandSystemRegister

	Barrier string // OperandBarrierOption

	Prefetch string // OperandPrefetchOp
}

// String renders an operand the way the disassembler would print it —
// used by tests and by any caller that wants a quick textual form without
// pulling in a full formatter.
func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return o.Reg
	case OperandImmediate:
		return fmt.Sprintf("#%#x", o.Imm)
	case OperandPCAddress, OperandLabel:
		return fmt.Sprintf("%#x", o.Address)
	case OperandMemoryOffset:
		if o.Disp == 0 {
			return fmt.Sprintf("[%s]", o.Reg)
		}
		return fmt.Sprintf("[%s, #%#x]", o.Reg, o.Disp)
	case OperandMemoryExtended:
		if o.HasShift {
			return fmt.Sprintf("[%s, %s, %s #%d]", o.Reg, o.Index, o.Extend, o.Shift)
		}
		return fmt.Sprintf("[%s, %s, %s]", o.Reg, o.Index, o.Extend)
	case OperandShiftedRegister:
		if o.ShiftOp == "" {
			return o.Reg
		}
		return fmt.Sprintf("%s, %s #%d", o.Reg, o.ShiftOp, o.Shift)
	case OperandExtendedRegister:
		return fmt.Sprintf("%s, %s #%d", o.Reg, o.Extend, o.Shift)
	case OperandCondition:
		return o.Cond
	case OperandSystemRegister:
		return o.SysReg
	case OperandBarrierOption:
		return o.Barrier
	case OperandPrefetchOp:
		return o.Prefetch
	default:
		return ""
	}
}

// Instruction is a single decoded 32-bit AArch64 instruction.
type Instruction struct {
	Address    uint64
	Encoding   uint32
	Mnemonic   string
	Operands   []Operand
	Category   Category
	Annotation string

	// TargetAddress is set only for PC-relative branches/loads/ADR(P);
	// nil otherwise.
	TargetAddress *uint64

	// SymbolName is never populated by Decode itself — it is filled in by
	// a caller's post-pass once a Binary's symbol table is available.
	SymbolName string
}

func regOperand(name string) Operand { return Operand{Kind: OperandRegister, Reg: name} }

func immOperand(v int64) Operand { return Operand{Kind: OperandImmediate, Imm: v} }

func condOperand(cond string) Operand { return Operand{Kind: OperandCondition, Cond: cond} }

func labelOperand(addr uint64) Operand { return Operand{Kind: OperandLabel, Address: addr} }

func wordInstruction(address uint64, encoding uint32) Instruction {
	mnemonic := ".word"
	if encoding == 0 {
		mnemonic = "udf"
	}
	return Instruction{
		Address:  address,
		Encoding: encoding,
		Mnemonic: mnemonic,
		Operands: []Operand{immOperand(int64(encoding))},
		Category: CategoryUnknown,
	}
}
