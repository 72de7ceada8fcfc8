package types

import "github.com/kestrel-security/machtool/internal/intname"

// LoadCmd is a Mach-O load command type (load_command.cmd).
type LoadCmd uint32

const (
	reqDyld LoadCmd = 0x80000000

	LCSegment             LoadCmd = 0x1
	LCSymtab              LoadCmd = 0x2
	LCDysymtab            LoadCmd = 0xb
	LCLoadDylib           LoadCmd = 0xc
	LCIDDylib             LoadCmd = 0xd
	LCLoadDylinker        LoadCmd = 0xe
	LCSegment64           LoadCmd = 0x19
	LCUUID                LoadCmd = 0x1b
	LCCodeSignature       LoadCmd = 0x1d
	LCSegmentSplitInfo    LoadCmd = 0x1e
	LCReexportDylib       LoadCmd = 0x1f | reqDyld
	LCEncryptionInfo      LoadCmd = 0x21
	LCDyldInfo            LoadCmd = 0x22
	LCDyldInfoOnly        LoadCmd = 0x22 | reqDyld
	LCLoadWeakDylib       LoadCmd = 0x18 | reqDyld
	LCLoadUpwardDylib     LoadCmd = 0x23 | reqDyld
	LCVersionMinMacOSX    LoadCmd = 0x24
	LCFunctionStarts      LoadCmd = 0x26
	LCMain                LoadCmd = 0x28 | reqDyld
	LCDataInCode          LoadCmd = 0x29
	LCSourceVersion       LoadCmd = 0x2a
	LCDylibCodeSignDRs    LoadCmd = 0x2b
	LCEncryptionInfo64    LoadCmd = 0x2c
	LCLinkerOption        LoadCmd = 0x2d
	LCLinkerOptimizeHint  LoadCmd = 0x2e
	LCBuildVersion        LoadCmd = 0x32
	LCDyldExportsTrie     LoadCmd = 0x33 | reqDyld
	LCDyldChainedFixups   LoadCmd = 0x34 | reqDyld
	LCFilesetEntry        LoadCmd = 0x35 | reqDyld
)

var loadCmdNames = []intname.Pair{
	{Value: uint32(LCSegment), Name: "LC_SEGMENT"},
	{Value: uint32(LCSymtab), Name: "LC_SYMTAB"},
	{Value: uint32(LCDysymtab), Name: "LC_DYSYMTAB"},
	{Value: uint32(LCLoadDylib), Name: "LC_LOAD_DYLIB"},
	{Value: uint32(LCIDDylib), Name: "LC_ID_DYLIB"},
	{Value: uint32(LCLoadDylinker), Name: "LC_LOAD_DYLINKER"},
	{Value: uint32(LCSegment64), Name: "LC_SEGMENT_64"},
	{Value: uint32(LCUUID), Name: "LC_UUID"},
	{Value: uint32(LCCodeSignature), Name: "LC_CODE_SIGNATURE"},
	{Value: uint32(LCSegmentSplitInfo), Name: "LC_SEGMENT_SPLIT_INFO"},
	{Value: uint32(LCReexportDylib), Name: "LC_REEXPORT_DYLIB"},
	{Value: uint32(LCEncryptionInfo), Name: "LC_ENCRYPTION_INFO"},
	{Value: uint32(LCDyldInfo), Name: "LC_DYLD_INFO"},
	{Value: uint32(LCDyldInfoOnly), Name: "LC_DYLD_INFO_ONLY"},
	{Value: uint32(LCLoadWeakDylib), Name: "LC_LOAD_WEAK_DYLIB"},
	{Value: uint32(LCLoadUpwardDylib), Name: "LC_LOAD_UPWARD_DYLIB"},
	{Value: uint32(LCVersionMinMacOSX), Name: "LC_VERSION_MIN_MACOSX"},
	{Value: uint32(LCFunctionStarts), Name: "LC_FUNCTION_STARTS"},
	{Value: uint32(LCMain), Name: "LC_MAIN"},
	{Value: uint32(LCDataInCode), Name: "LC_DATA_IN_CODE"},
	{Value: uint32(LCSourceVersion), Name: "LC_SOURCE_VERSION"},
	{Value: uint32(LCDylibCodeSignDRs), Name: "LC_DYLIB_CODE_SIGN_DRS"},
	{Value: uint32(LCEncryptionInfo64), Name: "LC_ENCRYPTION_INFO_64"},
	{Value: uint32(LCLinkerOption), Name: "LC_LINKER_OPTION"},
	{Value: uint32(LCLinkerOptimizeHint), Name: "LC_LINKER_OPTIMIZATION_HINT"},
	{Value: uint32(LCBuildVersion), Name: "LC_BUILD_VERSION"},
	{Value: uint32(LCDyldExportsTrie), Name: "LC_DYLD_EXPORTS_TRIE"},
	{Value: uint32(LCDyldChainedFixups), Name: "LC_DYLD_CHAINED_FIXUPS"},
	{Value: uint32(LCFilesetEntry), Name: "LC_FILESET_ENTRY"},
}

func (c LoadCmd) String() string { return intname.Lookup(uint32(c), loadCmdNames, false) }
