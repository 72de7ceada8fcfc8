package arm64

// decodeBranchSystem handles the branch/exception-generating/system group
// (op0 = 1010/1011): unconditional and conditional branches, compare- and
// test-and-branch, exception generation, system register access, hints,
// barriers, and the PAC-authenticated register branches.
func decodeBranchSystem(enc uint32, addr uint64) Instruction {
	switch {
	case extract(enc, 30, 26) == 0b00101: // B / BL (bit31 selects which)
		return decodeUnconditionalBranchImm(enc, addr)
	case extract(enc, 30, 25) == 0b011010: // CBZ/CBNZ (bit31 is sf, free)
		return decodeCompareBranch(enc, addr)
	case extract(enc, 30, 25) == 0b011011: // TBZ/TBNZ (bit31 is b5, free)
		return decodeTestBranch(enc, addr)
	case extract(enc, 31, 25) == 0b0101010: // B.cond
		return decodeConditionalBranchImm(enc, addr)
	case extract(enc, 31, 25) == 0b1101011: // unconditional branch (register)
		return decodeUnconditionalBranchReg(enc, addr)
	case extract(enc, 31, 25) == 0b1101010:
		if extract(enc, 24, 24) == 0 {
			return decodeExceptionGeneration(enc, addr)
		}
		return decodeHintsBarriersSystem(enc, addr)
	}

	return wordInstruction(addr, enc)
}

func decodeUnconditionalBranchImm(enc uint32, addr uint64) Instruction {
	op := extract(enc, 31, 31)
	imm26 := extract(enc, 25, 0)
	simm := signExtend(imm26, 26) * 4
	target := uint64(int64(addr) + simm)

	mnemonic := "b"
	if op == 1 {
		mnemonic = "bl"
	}

	inst := Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryBranch,
		Operands: []Operand{labelOperand(target)},
	}
	inst.TargetAddress = &target
	return inst
}

func decodeConditionalBranchImm(enc uint32, addr uint64) Instruction {
	imm19 := extract(enc, 23, 5)
	cond := extract(enc, 3, 0)
	simm := signExtend(imm19, 19) * 4
	target := uint64(int64(addr) + simm)

	inst := Instruction{
		Address: addr, Encoding: enc, Mnemonic: "b." + conditionName(cond), Category: CategoryBranch,
		Operands: []Operand{labelOperand(target)},
	}
	inst.TargetAddress = &target
	return inst
}

func decodeCompareBranch(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op := extract(enc, 24, 24)
	imm19 := extract(enc, 23, 5)
	rt := extract(enc, 4, 0)
	simm := signExtend(imm19, 19) * 4
	target := uint64(int64(addr) + simm)

	mnemonic := "cbz"
	if op == 1 {
		mnemonic = "cbnz"
	}

	inst := Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryBranch,
		Operands: []Operand{regOperand(gpReg(rt, sf, false)), labelOperand(target)},
	}
	inst.TargetAddress = &target
	return inst
}

func decodeTestBranch(enc uint32, addr uint64) Instruction {
	b5 := extract(enc, 31, 31)
	op := extract(enc, 24, 24)
	b40 := extract(enc, 23, 19)
	imm14 := extract(enc, 18, 5)
	rt := extract(enc, 4, 0)

	bitNum := (b5 << 5) | b40
	simm := signExtend(imm14, 14) * 4
	target := uint64(int64(addr) + simm)

	mnemonic := "tbz"
	if op == 1 {
		mnemonic = "tbnz"
	}

	inst := Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryBranch,
		Operands: []Operand{regOperand(gpReg(rt, b5 == 1, false)), immOperand(int64(bitNum)), labelOperand(target)},
	}
	inst.TargetAddress = &target
	return inst
}

func decodeExceptionGeneration(enc uint32, addr uint64) Instruction {
	opc := extract(enc, 23, 21)
	imm16 := extract(enc, 20, 5)
	ll := extract(enc, 1, 0)

	var mnemonic string
	switch {
	case opc == 0b000 && ll == 0b01:
		mnemonic = "svc"
	case opc == 0b000 && ll == 0b10:
		mnemonic = "hvc"
	case opc == 0b000 && ll == 0b11:
		mnemonic = "smc"
	case opc == 0b001 && ll == 0b00:
		mnemonic = "brk"
	case opc == 0b010 && ll == 0b00:
		mnemonic = "hlt"
	case opc == 0b101 && ll == 0b01:
		mnemonic = "dcps1"
	case opc == 0b101 && ll == 0b10:
		mnemonic = "dcps2"
	case opc == 0b101 && ll == 0b11:
		mnemonic = "dcps3"
	default:
		return wordInstruction(addr, enc)
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategorySystem,
		Operands: []Operand{immOperand(int64(imm16))},
	}
}

var sysRegNames = map[uint32]string{
	0b011_011_0100_0010_000: "nzcv",
	0b011_011_0100_0010_001: "daif",
	0b011_011_0100_0100_000: "fpcr",
	0b011_011_0100_0100_001: "fpsr",
	0b011_011_1101_0000_010: "tpidr_el0",
	0b011_011_1110_0000_000: "cntfrq_el0",
	0b011_011_1101_0000_011: "tpidrro_el0",
}

func sysRegName(op0, op1, crn, crm, op2 uint32) string {
	key := (op0 << 14) | (op1 << 11) | (crn << 7) | (crm << 3) | op2
	if name, ok := sysRegNames[key]; ok {
		return name
	}
	return formatSysReg(op0, op1, crn, crm, op2)
}

func formatSysReg(op0, op1, crn, crm, op2 uint32) string {
	// s<op0>_<op1>_c<crn>_c<crm>_<op2>, the generic fallback name used when
	// no architectural register alias is known.
	return "s" + itoa(op0) + "_" + itoa(op1) + "_c" + itoa(crn) + "_c" + itoa(crm) + "_" + itoa(op2)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := [10]byte{}
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[i:])
}

var hintMnemonics = map[uint32]string{
	0: "nop", 1: "yield", 2: "wfe", 3: "wfi", 4: "sev", 5: "sevl",
	// Other named hints in the CRm=2 space: ESB (#16), PSB (#17), CSDB (#20).
	0x10: "esb", 0x11: "psb", 0x14: "csdb",
}

// pacHintMnemonics is keyed by CRm:op2 like hintMnemonics: XPACLRI is
// HINT #7 and the *Z/*SP forms occupy CRm=3 (HINT #24-31).
var pacHintMnemonics = map[uint32]string{
	7:  "xpaclri",
	24: "paciaz", 25: "paciasp", 26: "pacibz", 27: "pacibsp",
	28: "autiaz", 29: "autiasp", 30: "autibz", 31: "autibsp",
}

var barrierOptionNames = [16]string{
	"#0x0", "oshld", "oshst", "osh", "#0x4", "nshld", "nshst", "nsh",
	"#0x8", "ishld", "ishst", "ish", "#0xc", "ld", "st", "sy",
}

func decodeHintsBarriersSystem(enc uint32, addr uint64) Instruction {
	l := extract(enc, 21, 21)
	op0 := extract(enc, 20, 19)
	op1 := extract(enc, 18, 16)
	crn := extract(enc, 15, 12)
	crm := extract(enc, 11, 8)
	op2 := extract(enc, 7, 5)
	rt := extract(enc, 4, 0)

	if crn == 0b0010 && rt == 31 { // hints
		key := crm<<3 | op2
		if name, ok := pacHintMnemonics[key]; ok {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: name, Category: CategoryPAC}
		}
		if name, ok := hintMnemonics[key]; ok {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: name, Category: CategorySystem}
		}
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "hint", Category: CategorySystem,
			Operands: []Operand{immOperand(int64(crm<<3 | op2))}}
	}

	if crn == 0b0011 && rt == 31 { // barriers
		switch op2 {
		case 0b100: // DSB
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "dsb", Category: CategorySystem,
				Operands: []Operand{{Kind: OperandBarrierOption, Barrier: barrierOptionNames[crm]}}}
		case 0b101: // DMB
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "dmb", Category: CategorySystem,
				Operands: []Operand{{Kind: OperandBarrierOption, Barrier: barrierOptionNames[crm]}}}
		case 0b110: // ISB
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "isb", Category: CategorySystem}
		case 0b010: // CLREX
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "clrex", Category: CategorySystem}
		case 0b111: // SB
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "sb", Category: CategorySystem}
		}
	}

	if crn == 0b0100 && rt == 31 { // MSR (immediate) to PSTATE fields
		pstateNames := map[uint32]string{0b000: "spsel", 0b011: "uao", 0b100: "pan", 0b101: "allint", 0b110: "daifset", 0b111: "daifclr"}
		if name, ok := pstateNames[op1]; ok {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "msr", Category: CategorySystem,
				Operands: []Operand{{Kind: OperandSystemRegister, SysReg: name}, immOperand(int64(crm))}}
		}
	}

	// MRS/MSR (register).
	reg := sysRegName(op0, op1, crn, crm, op2)
	if l == 1 {
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "mrs", Category: CategorySystem,
			Operands: []Operand{regOperand(gpReg(rt, true, false)), {Kind: OperandSystemRegister, SysReg: reg}}}
	}
	return Instruction{Address: addr, Encoding: enc, Mnemonic: "msr", Category: CategorySystem,
		Operands: []Operand{{Kind: OperandSystemRegister, SysReg: reg}, regOperand(gpReg(rt, true, false))}}
}

func decodeUnconditionalBranchReg(enc uint32, addr uint64) Instruction {
	opc := extract(enc, 24, 21)
	op2 := extract(enc, 20, 16)
	op3 := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	op4 := extract(enc, 4, 0)

	rnReg := gpReg(rn, true, false)

	switch {
	case opc == 0b0000 && op2 == 0b11111 && op3 == 0b000000 && op4 == 0b00000:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "br", Category: CategoryBranch,
			Operands: []Operand{regOperand(rnReg)}}
	case opc == 0b0001 && op2 == 0b11111 && op3 == 0b000000 && op4 == 0b00000:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "blr", Category: CategoryBranch,
			Operands: []Operand{regOperand(rnReg)}}
	case opc == 0b0010 && op2 == 0b11111 && op3 == 0b000000 && op4 == 0b00000:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "ret", Category: CategoryBranch,
			Operands: []Operand{regOperand(rnReg)}}
	case opc == 0b0100 && op2 == 0b11111 && op3 == 0b000000 && rn == 0b11111 && op4 == 0b00000:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "eret", Category: CategoryBranch}
	case opc == 0b0101 && op2 == 0b11111 && op3 == 0b000000 && rn == 0b11111 && op4 == 0b00000:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "drps", Category: CategoryBranch}

	// PAC-authenticated register branches (FEAT_PAuth): op3 bit0 selects key
	// A/B.
	case opc == 0b1000 && op2 == 0b11111 && (op3 == 0b000010 || op3 == 0b000011):
		return pacBranch(enc, addr, "braa", "brab", op3, rn, op4)
	case opc == 0b1001 && op2 == 0b11111 && (op3 == 0b000010 || op3 == 0b000011):
		return pacBranch(enc, addr, "blraa", "blrab", op3, rn, op4)
	case opc == 0b0010 && op2 == 0b11111 && op3 == 0b000010 && rn == 0b11111:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "retaa", Category: CategoryPAC}
	case opc == 0b0010 && op2 == 0b11111 && op3 == 0b000011 && rn == 0b11111:
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "retab", Category: CategoryPAC}
	case opc == 0b1000 && op2 == 0b11111 && (op3 == 0b000000 || op3 == 0b000001) && op4 == 0b11111:
		name := "braaz"
		if op3 == 0b000001 {
			name = "brabz"
		}
		return Instruction{Address: addr, Encoding: enc, Mnemonic: name, Category: CategoryPAC,
			Operands: []Operand{regOperand(rnReg)}}
	case opc == 0b1001 && op2 == 0b11111 && (op3 == 0b000000 || op3 == 0b000001) && op4 == 0b11111:
		name := "blraaz"
		if op3 == 0b000001 {
			name = "blrabz"
		}
		return Instruction{Address: addr, Encoding: enc, Mnemonic: name, Category: CategoryPAC,
			Operands: []Operand{regOperand(rnReg)}}
	}

	return wordInstruction(addr, enc)
}

func pacBranch(enc uint32, addr uint64, nameA, nameB string, op3, rn, rm uint32) Instruction {
	name := nameA
	if op3 == 0b000011 {
		name = nameB
	}
	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: name, Category: CategoryPAC,
		Operands: []Operand{regOperand(gpReg(rn, true, false)), regOperand(gpReg(rm, true, false))},
	}
}
