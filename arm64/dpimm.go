package arm64

// decodeDataProcessingImmediate handles the data-processing-immediate top
// level group (op0 = 1000/1001): PC-relative addressing, add/sub
// immediate, logical immediate, move-wide, bitfield, and extract.
func decodeDataProcessingImmediate(enc uint32, addr uint64) Instruction {
	top := extract(enc, 28, 23)

	switch {
	case top&0b111110 == 0b100000: // 10000x -> PC-relative (ADR/ADRP)
		return decodePCRelative(enc, addr)
	case top == 0b100010 || top == 0b100011: // add/sub immediate
		return decodeAddSubImmediate(enc, addr)
	case top == 0b100100: // logical immediate
		return decodeLogicalImmediate(enc, addr)
	case top == 0b100101: // move wide
		return decodeMoveWide(enc, addr)
	case top == 0b100110: // bitfield
		return decodeBitfield(enc, addr)
	case top == 0b100111: // extract
		return decodeExtractImm(enc, addr)
	default:
		return wordInstruction(addr, enc)
	}
}

func decodePCRelative(enc uint32, addr uint64) Instruction {
	op := extract(enc, 31, 31)
	immlo := extract(enc, 30, 29)
	immhi := extract(enc, 23, 5)
	rd := extract(enc, 4, 0)

	imm := (immhi << 2) | immlo
	simm := signExtend(imm, 21)

	inst := Instruction{Address: addr, Encoding: enc, Category: CategoryDataProcessing}
	var target uint64
	if op == 0 {
		inst.Mnemonic = "adr"
		target = uint64(int64(addr) + simm)
	} else {
		inst.Mnemonic = "adrp"
		pageBase := addr &^ 0xfff
		target = uint64(int64(pageBase) + simm*4096)
	}
	inst.Operands = []Operand{regOperand(gpReg(rd, true, false)), labelOperand(target)}
	inst.TargetAddress = &target
	return inst
}

func decodeAddSubImmediate(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	op := extract(enc, 30, 30)
	setFlags := extract(enc, 29, 29) == 1
	shift := extract(enc, 23, 22)
	imm12 := extract(enc, 21, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	imm := int64(imm12)
	if shift == 1 {
		imm <<= 12
	}

	mnemonic := "add"
	if op == 1 {
		mnemonic = "sub"
	}
	if setFlags {
		mnemonic += "s"
	}

	// CMP/CMN aliases: SUBS/ADDS with Rd == XZR/WZR and result discarded.
	if setFlags && rd == 31 {
		if op == 1 {
			mnemonic = "cmp"
		} else {
			mnemonic = "cmn"
		}
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rn, sf, true)), immOperand(imm)},
		}
	}
	// MOV alias: ADD (immediate) with shift=0, imm12=0, and Rn or Rd == SP.
	if mnemonic == "add" && imm12 == 0 && shift == 0 && (rn == 31 || rd == 31) {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "mov", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rd, sf, true)), regOperand(gpReg(rn, sf, true))},
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(gpReg(rd, sf, true)), regOperand(gpReg(rn, sf, true)), immOperand(imm)},
	}
}

var logicalOpNames = [4]string{"and", "orr", "eor", "ands"}

func decodeLogicalImmediate(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	opc := extract(enc, 30, 29)
	n := uint8(extract(enc, 22, 22))
	immr := uint8(extract(enc, 21, 16))
	imms := uint8(extract(enc, 15, 10))
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	wmask, _, ok := decodeBitMasks(n, imms, immr, true)
	if !ok {
		return wordInstruction(addr, enc)
	}
	imm := int64(wmask)
	if !sf {
		imm = int64(uint32(wmask))
	}

	mnemonic := logicalOpNames[opc]

	// TST alias: ANDS with Rd == XZR/WZR.
	if opc == 3 && rd == 31 {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "tst", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rn, sf, false)), immOperand(imm)},
		}
	}
	// MOV alias: ORR with Rn == XZR/WZR.
	if opc == 1 && rn == 31 {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "mov", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rd, sf, true)), immOperand(imm)},
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
		Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), immOperand(imm)},
	}
}

func decodeMoveWide(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	opc := extract(enc, 30, 29)
	hw := extract(enc, 22, 21)
	imm16 := extract(enc, 20, 5)
	rd := extract(enc, 4, 0)

	shiftAmt := hw * 16
	var mnemonic string
	switch opc {
	case 0:
		mnemonic = "movn"
	case 2:
		mnemonic = "movz"
	case 3:
		mnemonic = "movk"
	default:
		return wordInstruction(addr, enc)
	}

	ops := []Operand{regOperand(gpReg(rd, sf, false)), immOperand(int64(imm16))}
	if shiftAmt != 0 {
		ops = append(ops, Operand{Kind: OperandShiftedRegister, ShiftOp: "lsl", Shift: shiftAmt})
	}

	return Instruction{Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing, Operands: ops}
}

func decodeBitfield(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	opc := extract(enc, 30, 29)
	immr := extract(enc, 21, 16)
	imms := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	var base string
	switch opc {
	case 0:
		base = "sbfm"
	case 1:
		base = "bfm"
	case 2:
		base = "ubfm"
	default:
		return wordInstruction(addr, enc)
	}

	bits := uint32(32)
	if sf {
		bits = 64
	}

	// Alias recognition per spec.md: ASR/LSR/LSL (immr/imms relationship),
	// and sign/zero-extend forms for SBFM/UBFM on byte/half/word widths.
	if opc == 0 || opc == 2 {
		mnemonic := "asr"
		if opc == 2 {
			mnemonic = "lsr"
		}
		if imms == bits-1 {
			return Instruction{
				Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), immOperand(int64(immr))},
			}
		}
		if imms+1 == immr {
			shiftMn := "lsl"
			amt := bits - immr
			return Instruction{
				Address: addr, Encoding: enc, Mnemonic: shiftMn, Category: CategoryDataProcessing,
				Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), immOperand(int64(amt))},
			}
		}
		if immr == 0 {
			ext := extendAliasName(opc, imms)
			if ext != "" {
				return Instruction{
					Address: addr, Encoding: enc, Mnemonic: ext, Category: CategoryDataProcessing,
					Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, false, false))},
				}
			}
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: base, Category: CategoryDataProcessing,
		Operands: []Operand{
			regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)),
			immOperand(int64(immr)), immOperand(int64(imms)),
		},
	}
}

func extendAliasName(opc, imms uint32) string {
	signed := opc == 0
	switch imms {
	case 7:
		if signed {
			return "sxtb"
		}
		return "uxtb"
	case 15:
		if signed {
			return "sxth"
		}
		return "uxth"
	case 31:
		if signed {
			return "sxtw"
		}
		return ""
	default:
		return ""
	}
}

func decodeExtractImm(enc uint32, addr uint64) Instruction {
	sf := extract(enc, 31, 31) == 1
	rm := extract(enc, 20, 16)
	imms := extract(enc, 15, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)

	if rn == rm {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "ror", Category: CategoryDataProcessing,
			Operands: []Operand{regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)), immOperand(int64(imms))},
		}
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: "extr", Category: CategoryDataProcessing,
		Operands: []Operand{
			regOperand(gpReg(rd, sf, false)), regOperand(gpReg(rn, sf, false)),
			regOperand(gpReg(rm, sf, false)), immOperand(int64(imms)),
		},
	}
}
