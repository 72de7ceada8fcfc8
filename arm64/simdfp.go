package arm64

// decodeSIMDFP handles the SIMD&FP group (op0 = 0111/1111). Only the
// floating-point data-processing subset named for this decoder is
// recognized: FMOV (register), FABS, FNEG, two-source FADD/FSUB/FMUL, and
// the three-source FMADD family. Everything else in this very large group
// (vector arithmetic, FP<->integer conversions, FP compares and loads)
// falls back to the unknown-encoding path.
func decodeSIMDFP(enc uint32, addr uint64) Instruction {
	if extract(enc, 28, 24) == 0b11110 && extract(enc, 21, 21) == 1 {
		if inst, ok := decodeFPDataProcessing2Source(enc, addr); ok {
			return inst
		}
		if inst, ok := decodeFPDataProcessing1Source(enc, addr); ok {
			return inst
		}
	}
	if extract(enc, 28, 24) == 0b11111 {
		if inst, ok := decodeFP3Source(enc, addr); ok {
			return inst
		}
	}
	return wordInstruction(addr, enc)
}

func fpSizeField(ftype uint32) uint32 {
	switch ftype {
	case 0b00:
		return 2 // single
	case 0b01:
		return 3 // double
	case 0b11:
		return 1 // half
	default:
		return 4
	}
}

func decodeFPDataProcessing1Source(enc uint32, addr uint64) (Instruction, bool) {
	if extract(enc, 31, 29) != 0 || extract(enc, 14, 10) != 0b10000 {
		return Instruction{}, false
	}
	ftype := extract(enc, 23, 22)
	opcode := extract(enc, 20, 15)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)
	size := fpSizeField(ftype)
	if size == 4 {
		return Instruction{}, false
	}

	var mnemonic string
	switch opcode {
	case 0b000000:
		mnemonic = "fmov"
	case 0b000001:
		mnemonic = "fabs"
	case 0b000010:
		mnemonic = "fneg"
	default:
		return Instruction{}, false
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategorySIMD,
		Operands: []Operand{regOperand(fpReg(rd, size)), regOperand(fpReg(rn, size))},
	}, true
}

func decodeFPDataProcessing2Source(enc uint32, addr uint64) (Instruction, bool) {
	if extract(enc, 31, 29) != 0 || extract(enc, 11, 10) != 0b10 {
		return Instruction{}, false
	}
	ftype := extract(enc, 23, 22)
	rm := extract(enc, 20, 16)
	opcode := extract(enc, 15, 12)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)
	size := fpSizeField(ftype)
	if size == 4 {
		return Instruction{}, false
	}

	var mnemonic string
	switch opcode {
	case 0b0010:
		mnemonic = "fadd"
	case 0b0011:
		mnemonic = "fsub"
	case 0b0000:
		mnemonic = "fmul"
	default:
		return Instruction{}, false
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategorySIMD,
		Operands: []Operand{regOperand(fpReg(rd, size)), regOperand(fpReg(rn, size)), regOperand(fpReg(rm, size))},
	}, true
}

func decodeFP3Source(enc uint32, addr uint64) (Instruction, bool) {
	if extract(enc, 31, 29) != 0 {
		return Instruction{}, false
	}
	ftype := extract(enc, 23, 22)
	o1 := extract(enc, 21, 21)
	rm := extract(enc, 20, 16)
	o0 := extract(enc, 15, 15)
	ra := extract(enc, 14, 10)
	rn := extract(enc, 9, 5)
	rd := extract(enc, 4, 0)
	size := fpSizeField(ftype)
	if size == 4 || o1 != 0 {
		return Instruction{}, false
	}

	mnemonic := "fmadd"
	if o0 == 1 {
		mnemonic = "fmsub"
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategorySIMD,
		Operands: []Operand{
			regOperand(fpReg(rd, size)), regOperand(fpReg(rn, size)),
			regOperand(fpReg(rm, size)), regOperand(fpReg(ra, size)),
		},
	}, true
}
