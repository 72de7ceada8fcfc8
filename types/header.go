package types

import "github.com/kestrel-security/machtool/internal/intname"

// FileHeaderSize32/64 are the on-disk sizes of the 32- and 64-bit headers.
const (
	FileHeaderSize32 = 7 * 4
	FileHeaderSize64 = 8 * 4
)

// HeaderFileType is the Mach-O file type (mach_header.filetype).
type HeaderFileType uint32

const (
	MHObject     HeaderFileType = 0x1
	MHExecute    HeaderFileType = 0x2
	MHFvmlib     HeaderFileType = 0x3
	MHCore       HeaderFileType = 0x4
	MHPreload    HeaderFileType = 0x5
	MHDylib      HeaderFileType = 0x6
	MHDylinker   HeaderFileType = 0x7
	MHBundle     HeaderFileType = 0x8
	MHDylibStub  HeaderFileType = 0x9
	MHDsym       HeaderFileType = 0xa
	MHKextBundle HeaderFileType = 0xb
	MHFileset    HeaderFileType = 0xc
)

var fileTypeNames = []intname.Pair{
	{Value: uint32(MHObject), Name: "object"},
	{Value: uint32(MHExecute), Name: "executable"},
	{Value: uint32(MHFvmlib), Name: "fvmlib"},
	{Value: uint32(MHCore), Name: "core"},
	{Value: uint32(MHPreload), Name: "preload"},
	{Value: uint32(MHDylib), Name: "dylib"},
	{Value: uint32(MHDylinker), Name: "dylinker"},
	{Value: uint32(MHBundle), Name: "bundle"},
	{Value: uint32(MHDylibStub), Name: "dylib-stub"},
	{Value: uint32(MHDsym), Name: "dsym"},
	{Value: uint32(MHKextBundle), Name: "kext-bundle"},
	{Value: uint32(MHFileset), Name: "fileset"},
}

func (t HeaderFileType) String() string { return intname.Lookup(uint32(t), fileTypeNames, false) }

// HeaderFlag is the mach_header.flags bitmask.
type HeaderFlag uint32

const (
	FlagNoUndefs                HeaderFlag = 0x1
	FlagDyldLink                HeaderFlag = 0x4
	FlagTwoLevel                HeaderFlag = 0x80
	FlagBindAtLoad              HeaderFlag = 0x8
	FlagPIE                     HeaderFlag = 0x200000
	FlagWeakDefines             HeaderFlag = 0x8000
	FlagHasTLVDescriptors       HeaderFlag = 0x800000
	FlagAppExtensionSafe        HeaderFlag = 0x2000000
	FlagSubsectionsViaSymbols   HeaderFlag = 0x2000
)

// Has reports whether flag bit f is set.
func (h HeaderFlag) Has(f HeaderFlag) bool { return h&f != 0 }

// Header is the parsed 64-bit Mach-O header (mach_header_64). 32-bit headers
// are rejected per spec (UnsupportedCPUType) except while reading the fat
// wrapper, which carries its own record format.
type Header struct {
	Magic        Magic
	CPU          CPU
	SubCPU       CPUSubtype
	Type         HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        HeaderFlag
	Reserved     uint32
}
