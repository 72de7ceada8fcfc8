package arm64

// extract pulls bits [hi:lo] (inclusive) out of v.
func extract(v uint32, hi, lo uint) uint32 {
	width := hi - lo + 1
	return (v >> lo) & ((1 << width) - 1)
}

// signExtend sign-extends the low `bits` bits of v to a 64-bit signed value.
func signExtend(v uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(v<<shift)) >> shift
}

// signExtend64 sign-extends a wider (>32 bit source) field already
// widened into a uint64, from `bits` significant bits.
func signExtend64(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}
