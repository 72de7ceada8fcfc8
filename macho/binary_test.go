package macho

import (
	"testing"

	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderAndSegment(t *testing.T) {
	b := newMachoBuilder(uint32(types.CPUArm64), uint32(types.CPUSubtypeArm64All), 2 /* MH_EXECUTE */, uint32(types.FlagPIE))
	b.addSegment64("__TEXT", 0x100000000, 0x4000, 0, 0x4000, 5, 5)
	data := b.finish()

	bin, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, types.CPUArm64, bin.Header.CPU)
	require.True(t, bin.Header.Flags.Has(types.FlagPIE))
	require.Len(t, bin.Loads, 1)

	seg := bin.Segment("__TEXT")
	require.NotNil(t, seg)
	require.Equal(t, uint64(0x100000000), seg.VMAddr)
	require.False(t, seg.IsWritable())
}

func TestParseSymtab(t *testing.T) {
	b := newMachoBuilder(uint32(types.CPUArm64), uint32(types.CPUSubtypeArm64All), 2, 0)
	b.addSegment64("__TEXT", 0x100000000, 0x4000, 0, 0x4000, 5, 5)
	b.addSymtab(map[string]uint64{"_main": 0x100003f9c})
	data := b.finish()

	bin, err := Parse(data)
	require.NoError(t, err)

	sym, err := bin.Symbol("_main")
	require.NoError(t, err)
	require.Equal(t, uint64(0x100003f9c), sym.Value)
	require.Equal(t, types.SymSection, sym.Type)
}

func TestParseSymtabFlagsAndResolveAddress(t *testing.T) {
	b := newMachoBuilder(uint32(types.CPUArm64), uint32(types.CPUSubtypeArm64All), 2, 0)
	b.addSegment64("__TEXT", 0x100000000, 0x4000, 0, 0x4000, 5, 5)
	b.addSymtab(map[string]uint64{
		"_main":   0x100003f9c,
		"_helper": 0x100003f00,
	})
	data := b.finish()

	bin, err := Parse(data)
	require.NoError(t, err)

	sym, err := bin.Symbol("_main")
	require.NoError(t, err)
	require.True(t, sym.External, "n_type 0x0f sets N_EXT")
	require.True(t, sym.Defined)
	require.False(t, sym.PrivateExternal)

	// An address between _helper and _main resolves to the nearest
	// preceding symbol, _helper, per the L2 resolution law.
	name, ok := bin.ResolveAddress(0x100003f80)
	require.True(t, ok)
	require.Equal(t, "_helper", name)

	name, ok = bin.ResolveAddress(0x100003f9c)
	require.True(t, ok)
	require.Equal(t, "_main", name)

	_, ok = bin.ResolveAddress(0x100000000)
	require.False(t, ok, "address before every symbol resolves to nothing")
}

func TestParseTruncatedHeaderRejected(t *testing.T) {
	_, err := Parse([]byte{0xcf, 0xfa, 0xed})
	require.Error(t, err)

	var insufficient *boundsreader.InsufficientDataError
	require.ErrorAs(t, err, &insufficient, "InsufficientDataError detail must survive through ErrTruncatedHeader")
}

func TestParseBadMagicRejected(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
	var bad *ErrInvalidMagic
	require.ErrorAs(t, err, &bad)
	require.Equal(t, int64(0), bad.At)
}

func TestParseInvalidLoadCommandSizeRejected(t *testing.T) {
	b := newMachoBuilder(uint32(types.CPUArm64), uint32(types.CPUSubtypeArm64All), 2, 0)
	b.putU32(0x19) // LC_SEGMENT_64
	b.putU32(5)    // not 8-byte aligned, below minimum
	b.ncmds++
	data := b.finish()

	_, err := Parse(data)
	require.Error(t, err)
	var bad *ErrInvalidLoadCommandSize
	require.ErrorAs(t, err, &bad)
}
