package types

import "github.com/kestrel-security/machtool/internal/intname"

// SectionFlag is the section_64.flags field: the low 8 bits are the section
// type, the upper 24 bits are the attributes bitmask.
type SectionFlag uint32

const sectionTypeMask SectionFlag = 0xff

// SectionType enumerates the low-8-bits kind of a section.
type SectionType uint8

const (
	SRegular                   SectionType = 0x0
	SZeroFill                  SectionType = 0x1
	SCStringLiterals           SectionType = 0x2
	S4ByteLiterals             SectionType = 0x3
	S8ByteLiterals             SectionType = 0x4
	SLiteralPointers           SectionType = 0x5
	SNonLazySymbolPointers     SectionType = 0x6
	SLazySymbolPointers        SectionType = 0x7
	SSymbolStubs               SectionType = 0x8
	SModInitFuncPointers       SectionType = 0x9
	SModTermFuncPointers       SectionType = 0xa
	SCoalesced                 SectionType = 0xb
	SGBZeroFill                SectionType = 0xc
	SInterposing               SectionType = 0xd
	S16ByteLiterals            SectionType = 0xe
	SDtraceDOF                 SectionType = 0xf
	SLazyDylibSymbolPointers   SectionType = 0x10
	SThreadLocalRegular        SectionType = 0x11
	SThreadLocalZeroFill       SectionType = 0x12
	SThreadLocalVariables      SectionType = 0x13
	SThreadLocalVariablePtrs   SectionType = 0x14
	SThreadLocalInitFuncPtrs   SectionType = 0x15
	SInitFuncOffsets           SectionType = 0x16
)

var sectionTypeNames = []intname.Pair{
	{Value: uint32(SRegular), Name: "regular"},
	{Value: uint32(SZeroFill), Name: "zerofill"},
	{Value: uint32(SCStringLiterals), Name: "cstring-literals"},
	{Value: uint32(S4ByteLiterals), Name: "4byte-literals"},
	{Value: uint32(S8ByteLiterals), Name: "8byte-literals"},
	{Value: uint32(SLiteralPointers), Name: "literal-pointers"},
	{Value: uint32(SNonLazySymbolPointers), Name: "non-lazy-symbol-pointers"},
	{Value: uint32(SLazySymbolPointers), Name: "lazy-symbol-pointers"},
	{Value: uint32(SSymbolStubs), Name: "symbol-stubs"},
	{Value: uint32(SModInitFuncPointers), Name: "mod-init-func-pointers"},
	{Value: uint32(SModTermFuncPointers), Name: "mod-term-func-pointers"},
	{Value: uint32(SCoalesced), Name: "coalesced"},
	{Value: uint32(SGBZeroFill), Name: "gb-zerofill"},
	{Value: uint32(SInterposing), Name: "interposing"},
	{Value: uint32(S16ByteLiterals), Name: "16byte-literals"},
	{Value: uint32(SDtraceDOF), Name: "dtrace-dof"},
	{Value: uint32(SLazyDylibSymbolPointers), Name: "lazy-dylib-symbol-pointers"},
	{Value: uint32(SThreadLocalRegular), Name: "thread-local-regular"},
	{Value: uint32(SThreadLocalZeroFill), Name: "thread-local-zerofill"},
	{Value: uint32(SThreadLocalVariables), Name: "thread-local-variables"},
	{Value: uint32(SThreadLocalVariablePtrs), Name: "thread-local-variable-pointers"},
	{Value: uint32(SThreadLocalInitFuncPtrs), Name: "thread-local-init-function-pointers"},
	{Value: uint32(SInitFuncOffsets), Name: "init-func-offsets"},
}

func (t SectionType) String() string { return intname.Lookup(uint32(t), sectionTypeNames, false) }

// SectionAttr is the upper-24-bits attribute bitmask of a section's flags.
type SectionAttr uint32

const (
	AttrPureInstructions   SectionAttr = 0x80000000
	AttrNoTOC              SectionAttr = 0x40000000
	AttrStripStaticSyms    SectionAttr = 0x20000000
	AttrNoDeadStrip        SectionAttr = 0x10000000
	AttrLiveSupport        SectionAttr = 0x08000000
	AttrSelfModifyingCode  SectionAttr = 0x04000000
	AttrDebug              SectionAttr = 0x02000000
	AttrSomeInstructions   SectionAttr = 0x00000400
	AttrExtReloc           SectionAttr = 0x00000200
	AttrLocReloc           SectionAttr = 0x00000100
)

func (a SectionAttr) Has(f SectionAttr) bool { return a&f != 0 }

// Type splits off the low 8 bits identifying the section's kind.
func (f SectionFlag) Type() SectionType { return SectionType(f & sectionTypeMask) }

// Attributes splits off the upper 24 bits of attribute flags.
func (f SectionFlag) Attributes() SectionAttr { return SectionAttr(f &^ sectionTypeMask) }
