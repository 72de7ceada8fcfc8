package arm64

// decodeLoadStore handles the loads-and-stores group (op0 = 0100/0110/1100/1110):
// literal loads, register pairs, unsigned-immediate and unscaled forms, and
// register-offset addressing. The encodings this decoder recognizes cover
// the integer GPR forms; SIMD&FP load/store variants fall through to the
// unknown-encoding path, same as the rest of the SIMD&FP space.
func decodeLoadStore(enc uint32, addr uint64) Instruction {
	op2 := extract(enc, 29, 28)

	if extract(enc, 26, 26) == 1 { // SIMD&FP variant
		return wordInstruction(addr, enc)
	}

	if op2 == 0b01 && extract(enc, 25, 24) == 0b00 { // load register (literal)
		return decodeLoadLiteral(enc, addr)
	}

	if op2 == 0b10 { // load/store pair
		return decodeLoadStorePair(enc, addr)
	}

	if op2 == 0b11 {
		if extract(enc, 24, 24) == 1 { // unsigned immediate
			return decodeLoadStoreUnsignedImm(enc, addr)
		}
		if extract(enc, 21, 21) == 1 && extract(enc, 11, 10) == 0b10 { // register offset
			return decodeLoadStoreRegOffset(enc, addr)
		}
		if extract(enc, 21, 21) == 0 { // unscaled / immediate pre/post-index
			return decodeLoadStoreImmediate(enc, addr)
		}
	}

	return wordInstruction(addr, enc)
}

func decodeLoadLiteral(enc uint32, addr uint64) Instruction {
	opc := extract(enc, 31, 30)
	imm19 := extract(enc, 23, 5)
	rt := extract(enc, 4, 0)
	simm := signExtend(imm19, 19) * 4
	target := uint64(int64(addr) + simm)

	var mnemonic string
	sf := true
	switch opc {
	case 0b00:
		mnemonic, sf = "ldr", false
	case 0b01:
		mnemonic = "ldr"
	case 0b10:
		mnemonic = "ldrsw"
	default:
		return wordInstruction(addr, enc)
	}

	inst := Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryLoadStore,
		Operands: []Operand{regOperand(gpReg(rt, sf, false)), labelOperand(target)},
	}
	inst.TargetAddress = &target
	return inst
}

func decodeLoadStorePair(enc uint32, addr uint64) Instruction {
	opc := extract(enc, 31, 30)
	l := extract(enc, 22, 22)
	imm7 := extract(enc, 21, 15)
	rt2 := extract(enc, 14, 10)
	rn := extract(enc, 9, 5)
	rt := extract(enc, 4, 0)
	indexMode := extract(enc, 24, 23) // 01 post, 11 pre, 10 signed offset

	sf := opc == 0b10
	scale := uint(2)
	if sf {
		scale = 3
	}
	disp := signExtend(imm7, 7) << scale

	mnemonic := "stp"
	if l == 1 {
		mnemonic = "ldp"
	}
	if opc == 0b01 && l == 1 {
		mnemonic = "ldpsw"
		sf = true
	}

	memOp := Operand{Kind: OperandMemoryOffset, Reg: gpReg(rn, true, true), Disp: disp}
	switch indexMode {
	case 0b01:
		memOp.PostIndex = true
	case 0b11:
		memOp.PreIndex = true
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryLoadStore,
		Operands: []Operand{regOperand(gpReg(rt, sf, false)), regOperand(gpReg(rt2, sf, false)), memOp},
	}
}

// loadStoreUnsignedMnemonics maps (size, opc, v=0) to mnemonic and the
// register width (sf) / sign-extend flag for the unsigned-immediate form.
type lsUnsignedEntry struct {
	mnemonic string
	sf       bool
}

var loadStoreUnsignedMnemonics = map[uint32]lsUnsignedEntry{
	// size<<2 | opc
	0b00_00: {"strb", false},
	0b00_01: {"ldrb", false},
	0b00_10: {"ldrsb", true}, // 64-bit destination
	0b00_11: {"ldrsb", false},
	0b01_00: {"strh", false},
	0b01_01: {"ldrh", false},
	0b01_10: {"ldrsh", true},
	0b01_11: {"ldrsh", false},
	0b10_00: {"str", false},
	0b10_01: {"ldr", false},
	0b10_10: {"ldrsw", true},
	0b11_00: {"str", true},
	0b11_01: {"ldr", true},
	0b11_11: {"prfm", false},
}

func decodeLoadStoreUnsignedImm(enc uint32, addr uint64) Instruction {
	size := extract(enc, 31, 30)
	v := extract(enc, 26, 26)
	opc := extract(enc, 23, 22)
	imm12 := extract(enc, 21, 10)
	rn := extract(enc, 9, 5)
	rt := extract(enc, 4, 0)

	if v == 1 { // SIMD&FP unsigned-immediate, not in the supported subset
		return wordInstruction(addr, enc)
	}

	key := size<<2 | opc
	entry, ok := loadStoreUnsignedMnemonics[key]
	if !ok {
		return wordInstruction(addr, enc)
	}

	disp := int64(imm12) << size
	memOp := Operand{Kind: OperandMemoryOffset, Reg: gpReg(rn, true, true), Disp: disp}

	if entry.mnemonic == "prfm" {
		return Instruction{
			Address: addr, Encoding: enc, Mnemonic: "prfm", Category: CategoryLoadStore,
			Operands: []Operand{{Kind: OperandPrefetchOp, Prefetch: prefetchName(rt)}, memOp},
		}
	}

	// ldrsb/ldrsh/ldrsw destination width: opc==0b10 variants target X
	// registers regardless of the transfer size; other loads follow the
	// entry's sf, and strb/strh/str take X only when size == 0b11.
	destSF := entry.sf
	if entry.mnemonic == "str" || entry.mnemonic == "strb" || entry.mnemonic == "strh" {
		destSF = size == 0b11
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: entry.mnemonic, Category: CategoryLoadStore,
		Operands: []Operand{regOperand(gpReg(rt, destSF, false)), memOp},
	}
}

func prefetchName(rt uint32) string {
	types := [4]string{"pld", "pli", "pst", "#0x3"}
	targets := [4]string{"l1", "l2", "l3", "#0x3"}
	policies := [2]string{"keep", "strm"}
	t := types[(rt>>3)&0x3]
	target := targets[(rt>>1)&0x3]
	policy := policies[rt&0x1]
	return t + target + policy
}

func decodeLoadStoreImmediate(enc uint32, addr uint64) Instruction {
	size := extract(enc, 31, 30)
	v := extract(enc, 26, 26)
	opc := extract(enc, 23, 22)
	imm9 := extract(enc, 20, 12)
	indexMode := extract(enc, 11, 10) // 00 unscaled, 01 post, 11 pre
	rn := extract(enc, 9, 5)
	rt := extract(enc, 4, 0)

	if v == 1 {
		return wordInstruction(addr, enc)
	}

	key := size<<2 | opc
	entry, ok := loadStoreUnsignedMnemonics[key]
	if !ok {
		return wordInstruction(addr, enc)
	}
	mnemonic := entry.mnemonic
	if indexMode == 0b00 && mnemonic != "prfm" {
		mnemonic = unscaledName(mnemonic)
	}

	disp := signExtend(imm9, 9)
	memOp := Operand{Kind: OperandMemoryOffset, Reg: gpReg(rn, true, true), Disp: disp}
	switch indexMode {
	case 0b01:
		memOp.PostIndex = true
	case 0b11:
		memOp.PreIndex = true
	}

	destSF := entry.sf
	if mnemonic == "str" || mnemonic == "stur" || mnemonic == "strb" || mnemonic == "sturb" || mnemonic == "strh" || mnemonic == "sturh" {
		destSF = size == 0b11
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: mnemonic, Category: CategoryLoadStore,
		Operands: []Operand{regOperand(gpReg(rt, destSF, false)), memOp},
	}
}

// unscaledName renders the *UR form of a load/store mnemonic (LDR -> LDUR,
// STR -> STUR, LDRSB -> LDURSB, ...) for the unscaled-immediate index mode.
func unscaledName(mnemonic string) string {
	switch mnemonic {
	case "ldr":
		return "ldur"
	case "str":
		return "stur"
	case "ldrb":
		return "ldurb"
	case "strb":
		return "sturb"
	case "ldrh":
		return "ldurh"
	case "strh":
		return "sturh"
	case "ldrsb":
		return "ldursb"
	case "ldrsh":
		return "ldursh"
	case "ldrsw":
		return "ldursw"
	default:
		return mnemonic
	}
}

func decodeLoadStoreRegOffset(enc uint32, addr uint64) Instruction {
	size := extract(enc, 31, 30)
	v := extract(enc, 26, 26)
	opc := extract(enc, 23, 22)
	rm := extract(enc, 20, 16)
	option := extract(enc, 15, 13)
	s := extract(enc, 12, 12)
	rn := extract(enc, 9, 5)
	rt := extract(enc, 4, 0)

	if v == 1 {
		return wordInstruction(addr, enc)
	}

	key := size<<2 | opc
	entry, ok := loadStoreUnsignedMnemonics[key]
	if !ok || entry.mnemonic == "prfm" {
		return wordInstruction(addr, enc)
	}

	extendName := extendNames[option]
	if option == 0b011 {
		extendName = "lsl"
	}
	shift := uint32(0)
	hasShift := s == 1
	if hasShift {
		shift = size
	}

	indexReg := gpReg(rm, option&0b1 == 1, false)
	memOp := Operand{
		Kind: OperandMemoryExtended, Reg: gpReg(rn, true, true),
		Index: indexReg, Extend: extendName, Shift: shift, HasShift: hasShift,
	}

	destSF := entry.sf
	if entry.mnemonic == "str" || entry.mnemonic == "strb" || entry.mnemonic == "strh" {
		destSF = size == 0b11
	}

	return Instruction{
		Address: addr, Encoding: enc, Mnemonic: entry.mnemonic, Category: CategoryLoadStore,
		Operands: []Operand{regOperand(gpReg(rt, destSF, false)), memOp},
	}
}
