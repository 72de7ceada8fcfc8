package types

import "github.com/kestrel-security/machtool/internal/intname"

// CSMagic is a code-signature blob magic number. Every code-signature
// structure is big-endian, unlike the rest of the Mach-O file.
type CSMagic uint32

const (
	CSMagicRequirement             CSMagic = 0xfade0c00
	CSMagicRequirements            CSMagic = 0xfade0c01
	CSMagicCodeDirectory           CSMagic = 0xfade0c02
	CSMagicEmbeddedSignature       CSMagic = 0xfade0cc0
	CSMagicDetachedSignature       CSMagic = 0xfade0cc1
	CSMagicBlobWrapper             CSMagic = 0xfade0b01
	CSMagicEmbeddedEntitlements    CSMagic = 0xfade7171
	CSMagicEmbeddedEntitlementsDER CSMagic = 0xfade7172
)

var csMagicNames = []intname.Pair{
	{Value: uint32(CSMagicRequirement), Name: "requirement"},
	{Value: uint32(CSMagicRequirements), Name: "requirements"},
	{Value: uint32(CSMagicCodeDirectory), Name: "code-directory"},
	{Value: uint32(CSMagicEmbeddedSignature), Name: "embedded-signature"},
	{Value: uint32(CSMagicDetachedSignature), Name: "detached-signature"},
	{Value: uint32(CSMagicBlobWrapper), Name: "cms-blob-wrapper"},
	{Value: uint32(CSMagicEmbeddedEntitlements), Name: "embedded-entitlements"},
	{Value: uint32(CSMagicEmbeddedEntitlementsDER), Name: "embedded-entitlements-der"},
}

func (m CSMagic) String() string { return intname.Lookup(uint32(m), csMagicNames, false) }

// CSSlotType identifies an index entry's purpose within a SuperBlob.
type CSSlotType uint32

const (
	CSSlotCodeDirectory CSSlotType = 0
	CSSlotInfoSlot      CSSlotType = 1
	CSSlotRequirements  CSSlotType = 2
	CSSlotResourceDir   CSSlotType = 3
	CSSlotApplication   CSSlotType = 4
	CSSlotEntitlements  CSSlotType = 5
	CSSlotEntitlementsDER CSSlotType = 7
	CSSlotCMSSignature  CSSlotType = 0x10000
)

// CSHashType identifies the hash algorithm used for a CodeDirectory's page
// hashes.
type CSHashType uint8

const (
	CSHashNone             CSHashType = 0
	CSHashSHA1             CSHashType = 1
	CSHashSHA256           CSHashType = 2
	CSHashSHA256Truncated  CSHashType = 3
	CSHashSHA384           CSHashType = 4
)

func (h CSHashType) String() string {
	switch h {
	case CSHashSHA1:
		return "sha1"
	case CSHashSHA256:
		return "sha256"
	case CSHashSHA256Truncated:
		return "sha256-truncated"
	case CSHashSHA384:
		return "sha384"
	default:
		return "none"
	}
}

// CSFlags is the CodeDirectory flags bitmask.
type CSFlags uint32

const (
	CSFlagValid         CSFlags = 0x00000001
	CSFlagAdhoc         CSFlags = 0x00000002
	CSFlagGetTaskAllow  CSFlags = 0x00000004
	CSFlagRuntime       CSFlags = 0x00010000
	CSFlagLinkerSigned  CSFlags = 0x00020000
)

func (f CSFlags) Has(bit CSFlags) bool { return f&bit != 0 }

// IsAdhoc reports whether the binary was signed without an identity
// (locally, e.g. by the linker or codesign --sign -).
func (f CSFlags) IsAdhoc() bool { return f.Has(CSFlagAdhoc) }

// IsLinkerSigned reports whether the signature was produced automatically
// by the linker rather than explicitly by codesign(1).
func (f CSFlags) IsLinkerSigned() bool { return f.Has(CSFlagLinkerSigned) }

// HasHardenedRuntime reports whether the hardened-runtime policy applies.
func (f CSFlags) HasHardenedRuntime() bool { return f.Has(CSFlagRuntime) }

// SuperBlobHeader is the big-endian on-disk header of a code-signature
// container (CS_SuperBlob).
type SuperBlobHeader struct {
	Magic  CSMagic
	Length uint32
	Count  uint32
}

// BlobIndexEntry is one CS_BlobIndex record following a SuperBlobHeader.
type BlobIndexEntry struct {
	Type   CSSlotType
	Offset uint32
}

// BlobHeader is the generic big-endian (magic, length) preamble shared by
// every blob kind inside a SuperBlob.
type BlobHeader struct {
	Magic  CSMagic
	Length uint32
}

// CodeDirectoryHeader is the fixed portion of CS_CodeDirectory, common to
// every version. Fields introduced by later versions (team id, exec-segment
// flags, ...) are read conditionally based on Version by the decoder,
// since this struct only covers the always-present prefix.
type CodeDirectoryHeader struct {
	Magic         CSMagic
	Length        uint32
	Version       uint32
	Flags         CSFlags
	HashOffset    uint32
	IdentOffset   uint32
	NSpecialSlots uint32
	NCodeSlots    uint32
	CodeLimit     uint32
	HashSize      uint8
	HashType      CSHashType
	Platform      uint8
	PageSize      uint8
	Spare2        uint32
}

const (
	CDVersionSupportsScatter     = 0x20100
	CDVersionSupportsTeamID      = 0x20200
	CDVersionSupportsCodeLimit64 = 0x20300
	CDVersionSupportsExecSeg     = 0x20400
)
