package arm64

// decodeDataProcessingRegister handles the data-processing-register group
// (op0 = 0101/1101): logical/add-sub shifted or extended register, 2- and
// 3-source register ops, and conditional select.
func decodeDataProcessingRegister(enc uint32, addr uint64) Instruction {
	top := extract(enc, 28, 24)
	bit21 := extract(enc, 21, 21)

	switch top {
	case 0b01010:
		return decodeLogicalShifted(enc, addr)
	case 0b01011:
		if bit21 == 0 {
			return decodeAddSubShifted(enc, addr)
		}
		return decodeAddSubExtended(enc, addr)
	}

	top8 := extract(enc, 28, 21)
	switch top8 {
	case 0b11010110:
		return decode2Source(enc, addr)
	case 0b11010100:
		return decodeConditionalSelect(enc, addr)
	}
	if extract(enc, 28, 24) == 0b11011 {
		return decode3Source(enc, addr)
	}

	return wordInstruction(addr, enc)
}

var shiftNames = [4]string{"lsl", "lsr", "asr", "ror"}

func decodeLogicalShifted(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	opc := extract(enc, 30, 29)
	shiftType := extract(enc, 23, 22)
	n := extract(enc, 21, 21)
	rm := extract(enc, 20, 16)
	imm6 := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	names := [4]string{"and", "orr", "eor", "ands"}
	negNames := [4]string{"bic", "orn", "eon", "bics"}
	mnemonic := names[opc]
	if n == 1 {
		mnemonic = negNames[opc]
	}

	shiftOperand := func() []Operand {
		rmOp := regOperand(gpReg(rm, sf, false))
		if imm6 != 0 {
			rmOp.Kind = OperandShiftedRegister
			rmOp.ShiftOp = shiftNames[shiftType]
			rmOp.Shift = imm6
		}
		return []Operand{rmOp}
	}

	// MVN alias: ORN with Rn == XZR/WZR.
	if opc == 1 && n == 1 && rn == 31 {
		ops := append([]Operand{regOperand(gpReg(rd, sf, false))}, shiftOperand()...)
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "mvn", Category: CategoryDataProcessing, Operands: ops}
	}
	// MOV alias: ORR with Rn == XZR/WZR, no shift.
	if opc == 1 && n == 0 && rn == 31 && imm6 == 0 {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "mov", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rm, sf, false))},
		}
	}
	// TST alias: ANDS with Rd == XZR/WZR.
	if opc == 3 && n == 0 && rd == 31 {
		ops := append([]Operand{regOperand(gpReg(rn, sf, false))}, shiftOperand()...)
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "tst", Category: CategoryDataProcessing, Operands: ops}
	}

	ops := append([]Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false))}, shiftOperand()...)
	return Instruction{Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing, Operands: ops}
}

func decodeAddSubShifted(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op := extract(enc, 30, 30)
	setFlags := extract(enc, 29, 29) == 1
	shiftType := extract(enc, 23, 22)
	rm := extract(enc, 20, 16)
	imm6 := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	mnemonic := "add"
	if op == 1 {
		mnemonic = "sub"
	}
	if setFlags {
		mnemonic += "s"
	}

	rmOp := regOperand(gpReg(rm, sf, false))
	if imm6 != 0 {
		rmOp.Kind = OperandShiftedRegister
		rmOp.ShiftOp = shiftNames[shiftType]
		rmOp.Shift = imm6
	}

	if setFlags && rd == 31 {
		mnemonic = "cmn"
		if op == 1 {
			mnemonic = "cmp"
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rn, sf, false)), rmOp},
		}
	}
	if op == 1 && rn == 31 {
		mnemonic = "neg"
		if setFlags {
			mnemonic = "negs"
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rd, sf, false)), rmOp},
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), rmOp},
	}
}

var extendNames = [8]string{"uxtb", "uxth", "uxtw", "uxtx", "sxtb", "sxth", "sxtw", "sxtx"}

func decodeAddSubExtended(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op := extract(enc, 30, 30)
	setFlags := extract(enc, 29, 29) == 1
	rm := extract(enc, 20, 16)
	option := extract(enc, 15, 13)
	imm3 := extract(enc, 12, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	mnemonic := "add"
	if op == 1 {
		mnemonic = "sub"
	}
	if setFlags {
		mnemonic += "s"
	}

	extendWidth := option&0b011 == 0b011 // uxtx/sxtx operate on x registers
	rmOp := Operand{Kind: OperandExtendedRegister, Reg: gpReg(rm, extendWidth, false), Extend: extendNames[option], Shift: imm3}

	if setFlags && rd == 31 {
		mnemonic = "cmn"
		if op == 1 {
			mnemonic = "cmp"
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rn, sf, true)), rmOp},
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(gpReg(rd, sf, true)), regOperand(gpReg(rn, sf, true)), rmOp},
	}
}

func decode2Source(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	rm := extract(enc, 20, 16)
	opcode := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	var mnemonic string
	switch opcode {
	case 0b000010:
		mnemonic = "udiv"
	case 0b000011:
		mnemonic = "sdiv"
	case 0b001000:
		mnemonic = "lslv"
	case 0b001001:
		mnemonic = "lsrv"
	case 0b001010:
		mnemonic = "asrv"
	case 0b001011:
		mnemonic = "rorv"
	default:
		return wordInstruction(addr, enc)
	}

	// Spec alias names: LSL/LSR/ASR/ROR rather than the raw *V mnemonics.
	switch mnemonic {
	case "lslv":
		mnemonic = "lsl"
	case "lsrv":
		mnemonic = "lsr"
	case "asrv":
		mnemonic = "asr"
	case "rorv":
		mnemonic = "ror"
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), regOperand(gpReg(rm, sf, false))},
	}
}

func decode3Source(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op31 := extract(enc, 23, 21)
	rm := extract(enc, 20, 16)
	o0 := extract(enc, 15, 15)
	ra := extract(enc, 14, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	rdReg := gpReg(rd, sf, false)
	rnReg := gpReg(rn, sf, false)
	rmReg := gpReg(rm, sf, false)
	raReg := gpReg(ra, sf, false)

	switch {
	case op31 == 0 && o0 == 0: // MADD, alias MUL when Ra==XZR
		if ra == 31 {
			return Instruction{
				Address: addr, Encoding: enc, Mnemonic: "mul", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg)},
			}
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "madd", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg), regOperand(raReg)},
		}
	case op31 == 0 && o0 == 1: // MSUB, alias MNEG when Ra==XZR
		if ra == 31 {
			return Instruction{
				Address: addr, Encoding: enc, Mnemonic: "mneg", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg)},
			}
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "msub", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg), regOperand(raReg)},
		}
	case op31 == 1: // SMADDL/SMSUBL, alias SMULL when Ra==XZR
		rn32, rm32 := gpReg(rn, false, false), gpReg(rm, false, false)
		if o0 == 0 {
			if ra == 31 {
				return Instruction{Address: addr, Encoding: enc, Mnemonic: "smull", Category: CategoryDataProcessing,
					Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32)}}
			}
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "smaddl", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32), regOperand(raReg)}}
		}
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "smsubl", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32), regOperand(raReg)}}
	case op31 == 2 && o0 == 0: // SMULH
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "smulh", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg)}}
	case op31 == 5: // UMADDL/UMSUBL, alias UMULL when Ra==XZR
		rn32, rm32 := gpReg(rn, false, false), gpReg(rm, false, false)
		if o0 == 0 {
			if ra == 31 {
				return Instruction{Address: addr, Encoding: enc, Mnemonic: "umull", Category: CategoryDataProcessing,
					Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32)}}
			}
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "umaddl", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32), regOperand(raReg)}}
		}
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "umsubl", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rn32), regOperand(rm32), regOperand(raReg)}}
	case op31 == 6 && o0 == 0: // UMULH
		return Instruction{Address: addr, Encoding: enc, Mnemonic: "umulh", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg)}}
	}

	return wordInstruction(addr, enc)
}

func decodeConditionalSelect(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op := extract(enc, 30, 30)
	rm := extract(enc, 20, 16)
	cond := extract(enc, 15, 12)
	op2 := extract(enc, 10, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	rdReg := gpReg(rd, sf, false)
	rnReg := gpReg(rn, sf, false)
	rmReg := gpReg(rm, sf, false)

	// CSET/CSETM: Rn==Rm==XZR, using the inverted condition.
	if rn == 31 && rm == 31 && cond != 14 && cond != 15 {
		invCond := conditionName(invertCondition(cond))
		if op == 0 && op2 == 1 {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "cset", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), condOperand(invCond)}}
		}
		if op == 1 && op2 == 0 {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "csetm", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), condOperand(invCond)}}
		}
	}
	// CINC/CINV/CNEG: Rn==Rm, using the inverted condition.
	if rn == rm && cond != 14 && cond != 15 {
		invCond := conditionName(invertCondition(cond))
		if op == 0 && op2 == 1 {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "cinc", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rnReg), condOperand(invCond)}}
		}
		if op == 1 && op2 == 0 {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "cinv", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rnReg), condOperand(invCond)}}
		}
		if op == 1 && op2 == 1 {
			return Instruction{Address: addr, Encoding: enc, Mnemonic: "cneg", Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(rdReg), regOperand(rnReg), condOperand(invCond)}}
		}
	}

	var mnemonic string
	switch {
	case op == 0 && op2 == 0:
		mnemonic = "csel"
	case op == 0 && op2 == 1:
		mnemonic = "csinc"
	case op == 1 && op2 == 0:
		mnemonic = "csinv"
	default:
		mnemonic = "csneg"
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(rdReg), regOperand(rnReg), regOperand(rmReg), condOperand(conditionName(cond))},
	}
}
