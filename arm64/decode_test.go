package arm64

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecodeUnknownEncodingFallsBackToWord(t *testing.T) {
	inst := Decode(0x00000001, 0x100000000) // reserved op0 = 0000
	require.Equal(t, ".word", inst.Mnemonic)
	require.Equal(t, CategoryUnknown, inst.Category)
	require.Len(t, inst.Operands, 1)
	require.Equal(t, int64(0x00000001), inst.Operands[0].Imm)
}

func TestDecodeZeroEncodingIsUDF(t *testing.T) {
	inst := Decode(0x00000000, 0x100000000)
	require.Equal(t, "udf", inst.Mnemonic)
	require.Equal(t, CategoryUnknown, inst.Category)
}

func TestDecodeRecognizedNeverEmitsWordMnemonic(t *testing.T) {
	inst := Decode(0x94000013, 0x100003f54) // bl
	require.NotEqual(t, CategoryUnknown, inst.Category)
	require.NotEqual(t, ".word", inst.Mnemonic)
}

func TestDecodeIsAddressIndependentExceptForTargets(t *testing.T) {
	enc := uint32(0x8b020020) // add x0, x1, x2
	a := Decode(enc, 0x100000000)
	b := Decode(enc, 0x200000000)
	require.Equal(t, a.Mnemonic, b.Mnemonic)
	require.Equal(t, a.Category, b.Category)
	if diff := cmp.Diff(a.Operands, b.Operands); diff != "" {
		t.Fatalf("operands differ by address only (-a +b):\n%s", diff)
	}
	require.Nil(t, a.TargetAddress)
	require.Nil(t, b.TargetAddress)
}

func TestDecodeBLComputesTarget(t *testing.T) {
	// bl 0x100003fa0, encoded at 0x100003f54.
	inst := Decode(0x94000013, 0x100003f54)
	require.Equal(t, "bl", inst.Mnemonic)
	require.Equal(t, CategoryBranch, inst.Category)
	require.NotNil(t, inst.TargetAddress)
	require.Equal(t, uint64(0x100003fa0), *inst.TargetAddress)
}

func TestDecodeADRPPageAligns(t *testing.T) {
	// adrp x0, #0x10000 encoded with address not page-aligned; target must
	// be computed from the page base (addr &^ 0xfff), not from addr itself.
	// op=1, immlo=0, immhi=4, so imm = immhi:immlo = 16 and the offset is
	// 16*4096 == 0x10000, rd=0.
	enc := uint32(0x90000080)
	addr := uint64(0x100003f64)
	inst := Decode(enc, addr)
	require.Equal(t, "adrp", inst.Mnemonic)
	require.NotNil(t, inst.TargetAddress)
	wantPageBase := addr &^ 0xfff
	require.Equal(t, wantPageBase+0x10000, *inst.TargetAddress)
}

func TestDecodeSUBSWithZeroDestinationAliasesToCmp(t *testing.T) {
	// subs xzr, x1, x2 -> cmp x1, x2 (sf=1, op=1, S=1, shift=0, Rm in x2 via
	// add/sub shifted register encoding, Rd=31).
	// encoding: sf(1) op(1) S(1) 01011 shift(00) 0 Rm(00010) imm6(000000) Rn(00001) Rd(11111)
	enc := uint32(0xeb02003f)
	inst := Decode(enc, 0x100000000)
	require.Equal(t, "cmp", inst.Mnemonic)
	require.Len(t, inst.Operands, 2)
	require.Equal(t, "x1", inst.Operands[0].Reg)
	require.Equal(t, "x2", inst.Operands[1].Reg)
}

func TestDecodeCBZTarget(t *testing.T) {
	// cbz x0, #8 at address 0x1000. sf=1, fixed 011010, op=0, imm19=2, rt=0.
	enc := uint32(0xb4000040)
	inst := Decode(enc, 0x1000)
	require.Equal(t, "cbz", inst.Mnemonic)
	require.NotNil(t, inst.TargetAddress)
	require.Equal(t, uint64(0x1008), *inst.TargetAddress)
}

func TestDecodeMovzImmediate(t *testing.T) {
	// movz x0, #0x1234
	enc := uint32(0xd2824680)
	inst := Decode(enc, 0x1000)
	require.Equal(t, "movz", inst.Mnemonic)
	require.Equal(t, int64(0x1234), inst.Operands[1].Imm)
}

func TestDecodeRetDefaultsToX30(t *testing.T) {
	// ret (implicit x30): opc=0010, op2=11111, op3=000000, Rn=30, op4=00000
	enc := uint32(0xd65f03c0)
	inst := Decode(enc, 0x1000)
	require.Equal(t, "ret", inst.Mnemonic)
	require.Equal(t, "x30", inst.Operands[0].Reg)
}
