package arm64

// Decode disassembles a single 32-bit AArch64 instruction encoding at the
// given address. It is pure and total: the same encoding decodes the same
// way regardless of address, aside from the Address/TargetAddress fields
// carrying the PC-relative computation itself, and an encoding this package
// does not recognize produces a ".word"/"udf" Instruction with
// Category == CategoryUnknown rather than an error.
func Decode(encoding uint32, address uint64) Instruction {
	op0 := extract(encoding, 28, 25)

	switch {
	case op0 == 0b1000 || op0 == 0b1001:
		return decodeDataProcessingImmediate(encoding, address)
	case op0 == 0b1010 || op0 == 0b1011:
		return decodeBranchSystem(encoding, address)
	case op0 == 0b0100 || op0 == 0b0110 || op0 == 0b1100 || op0 == 0b1110:
		return decodeLoadStore(encoding, address)
	case op0 == 0b0101 || op0 == 0b1101:
		return decodeDataProcessingRegister(encoding, address)
	case op0 == 0b0111 || op0 == 0b1111:
		return decodeSIMDFP(encoding, address)
	default:
		return wordInstruction(address, encoding)
	}
}
