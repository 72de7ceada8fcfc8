package types

import "github.com/kestrel-security/machtool/internal/intname"

// Magic identifies the byte layout of a Mach-O (or fat) image.
type Magic uint32

const (
	Magic32     Magic = 0xfeedface // 32-bit Mach-O, native byte order
	Magic64     Magic = 0xfeedfacf // 64-bit Mach-O, native byte order
	Magic32Swap Magic = 0xcefaedfe // 32-bit Mach-O, opposite byte order
	Magic64Swap Magic = 0xcffaedfe // 64-bit Mach-O, opposite byte order
	MagicFat    Magic = 0xcafebabe // fat/universal binary, big-endian count
	MagicFat64  Magic = 0xcafebabf // fat/universal binary with 64-bit arch records
)

var magicNames = []intname.Pair{
	{Value: uint32(Magic32), Name: "32-bit MachO"},
	{Value: uint32(Magic64), Name: "64-bit MachO"},
	{Value: uint32(Magic32Swap), Name: "32-bit MachO (byte-swapped)"},
	{Value: uint32(Magic64Swap), Name: "64-bit MachO (byte-swapped)"},
	{Value: uint32(MagicFat), Name: "Fat MachO"},
	{Value: uint32(MagicFat64), Name: "Fat MachO (64-bit)"},
}

func (m Magic) String() string { return intname.Lookup(uint32(m), magicNames, false) }

// IsFat reports whether m identifies a universal/fat container.
func (m Magic) IsFat() bool { return m == MagicFat || m == MagicFat64 }
