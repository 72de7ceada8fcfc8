package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// Load is satisfied by every parsed load command, known or not. Command
// identifies the concrete cmd value; Raw returns the command's bytes
// exactly as they appear in the file, preamble included.
type Load interface {
	Command() types.LoadCmd
	Raw() []byte
}

// LoadCmdUnknown preserves a load command this parser does not interpret.
// Per spec.md, an unrecognized command is never fatal: it is kept as an
// opaque blob and a warning is logged.
type LoadCmdUnknown struct {
	Type types.LoadCmd
	Raw_ []byte
}

func (u *LoadCmdUnknown) Command() types.LoadCmd { return u.Type }
func (u *LoadCmdUnknown) Raw() []byte            { return u.Raw_ }

// UUID is LC_UUID: the 16-byte build UUID.
type UUID struct {
	raw []byte
	ID  [16]byte
}

func (u *UUID) Command() types.LoadCmd { return types.LCUUID }
func (u *UUID) Raw() []byte            { return u.raw }

// BuildVersion is LC_BUILD_VERSION: target platform and min/sdk versions.
type BuildVersion struct {
	raw      []byte
	Platform uint32
	MinOS    uint32
	SDK      uint32
	NTools   uint32
}

func (b *BuildVersion) Command() types.LoadCmd { return types.LCBuildVersion }
func (b *BuildVersion) Raw() []byte            { return b.raw }

// SourceVersion is LC_SOURCE_VERSION, an A.B.C.D.E packed version.
type SourceVersion struct {
	raw     []byte
	Version uint64
}

func (s *SourceVersion) Command() types.LoadCmd { return types.LCSourceVersion }
func (s *SourceVersion) Raw() []byte            { return s.raw }

// EntryPoint is LC_MAIN: the file offset of main() relative to __TEXT and
// the requested stack size.
type EntryPoint struct {
	raw        []byte
	EntryOff   uint64
	StackSize  uint64
}

func (e *EntryPoint) Command() types.LoadCmd { return types.LCMain }
func (e *EntryPoint) Raw() []byte            { return e.raw }

// CodeSignature is LC_CODE_SIGNATURE: only the offset/size descriptor of
// the embedded signature SuperBlob, not its decoded contents. Decoding is
// pkg/codesign's job, invoked lazily against the bytes this points at.
type CodeSignature struct {
	raw    []byte
	Offset uint32
	Size   uint32
}

func (c *CodeSignature) Command() types.LoadCmd { return types.LCCodeSignature }
func (c *CodeSignature) Raw() []byte            { return c.raw }

// LinkEditData covers the family of load commands shaped like
// linkedit_data_command: LC_FUNCTION_STARTS, LC_DATA_IN_CODE,
// LC_SEGMENT_SPLIT_INFO, LC_DYLIB_CODE_SIGN_DRS, LC_LINKER_OPTIMIZATION_HINT,
// LC_DYLD_EXPORTS_TRIE and LC_DYLD_CHAINED_FIXUPS.
type LinkEditData struct {
	cmd    types.LoadCmd
	raw    []byte
	Offset uint32
	Size   uint32
}

func (l *LinkEditData) Command() types.LoadCmd { return l.cmd }
func (l *LinkEditData) Raw() []byte            { return l.raw }

// EncryptionInfo64 is LC_ENCRYPTION_INFO_64: the DRM-encrypted range of a
// binary shipped through the App Store, if any.
type EncryptionInfo64 struct {
	raw      []byte
	CryptOff uint32
	CryptSize uint32
	CryptID  uint32
}

func (e *EncryptionInfo64) Command() types.LoadCmd { return types.LCEncryptionInfo64 }
func (e *EncryptionInfo64) Raw() []byte            { return e.raw }

// LinkerOption is LC_LINKER_OPTION: a count of NUL-separated strings
// concatenated after the command's fixed fields. This parser preserves the
// raw bytes and count without decoding the string run, matching spec.md's
// minimal-surface-for-rarely-consumed-commands Non-goal.
type LinkerOption struct {
	raw   []byte
	Count uint32
}

func (l *LinkerOption) Command() types.LoadCmd { return types.LCLinkerOption }
func (l *LinkerOption) Raw() []byte            { return l.raw }

// DyldInfo covers LC_DYLD_INFO and LC_DYLD_INFO_ONLY: the five linkedit
// regions dyld uses to bind and rebase a loaded image.
type DyldInfo struct {
	cmd            types.LoadCmd
	raw            []byte
	RebaseOff      uint32
	RebaseSize     uint32
	BindOff        uint32
	BindSize       uint32
	WeakBindOff    uint32
	WeakBindSize   uint32
	LazyBindOff    uint32
	LazyBindSize   uint32
	ExportOff      uint32
	ExportSize     uint32
}

func (d *DyldInfo) Command() types.LoadCmd { return d.cmd }
func (d *DyldInfo) Raw() []byte            { return d.raw }

func parseUUID(r *boundsreader.BoundsReader, off int64, size uint32) (*UUID, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	idBytes, err := r.ReadBytes(off+8, 16)
	if err != nil {
		return nil, err
	}
	var id [16]byte
	copy(id[:], idBytes)
	return &UUID{raw: raw, ID: id}, nil
}

func parseBuildVersion(r *boundsreader.BoundsReader, off int64, size uint32) (*BuildVersion, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	platform, err := r.ReadU32(off + 8)
	if err != nil {
		return nil, err
	}
	minOS, err := r.ReadU32(off + 12)
	if err != nil {
		return nil, err
	}
	sdk, err := r.ReadU32(off + 16)
	if err != nil {
		return nil, err
	}
	nTools, err := r.ReadU32(off + 20)
	if err != nil {
		return nil, err
	}
	return &BuildVersion{raw: raw, Platform: platform, MinOS: minOS, SDK: sdk, NTools: nTools}, nil
}

func parseSourceVersion(r *boundsreader.BoundsReader, off int64, size uint32) (*SourceVersion, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	version, err := r.ReadU64(off + 8)
	if err != nil {
		return nil, err
	}
	return &SourceVersion{raw: raw, Version: version}, nil
}

func parseEntryPoint(r *boundsreader.BoundsReader, off int64, size uint32) (*EntryPoint, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	entryOff, err := r.ReadU64(off + 8)
	if err != nil {
		return nil, err
	}
	stackSize, err := r.ReadU64(off + 16)
	if err != nil {
		return nil, err
	}
	return &EntryPoint{raw: raw, EntryOff: entryOff, StackSize: stackSize}, nil
}

func parseCodeSignatureCmd(r *boundsreader.BoundsReader, off int64, size uint32) (*CodeSignature, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	dataOff, err := r.ReadU32(off + 8)
	if err != nil {
		return nil, err
	}
	dataSize, err := r.ReadU32(off + 12)
	if err != nil {
		return nil, err
	}
	return &CodeSignature{raw: raw, Offset: dataOff, Size: dataSize}, nil
}

func parseLinkEditData(r *boundsreader.BoundsReader, cmd types.LoadCmd, off int64, size uint32) (*LinkEditData, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	dataOff, err := r.ReadU32(off + 8)
	if err != nil {
		return nil, err
	}
	dataSize, err := r.ReadU32(off + 12)
	if err != nil {
		return nil, err
	}
	return &LinkEditData{cmd: cmd, raw: raw, Offset: dataOff, Size: dataSize}, nil
}

func parseEncryptionInfo64(r *boundsreader.BoundsReader, off int64, size uint32) (*EncryptionInfo64, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	cryptOff, err := r.ReadU32(off + 8)
	if err != nil {
		return nil, err
	}
	cryptSize, err := r.ReadU32(off + 12)
	if err != nil {
		return nil, err
	}
	cryptID, err := r.ReadU32(off + 16)
	if err != nil {
		return nil, err
	}
	return &EncryptionInfo64{raw: raw, CryptOff: cryptOff, CryptSize: cryptSize, CryptID: cryptID}, nil
}

func parseLinkerOption(r *boundsreader.BoundsReader, off int64, size uint32) (*LinkerOption, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	count, err := r.ReadU32(off + 8)
	if err != nil {
		return nil, err
	}
	return &LinkerOption{raw: raw, Count: count}, nil
}

func parseDyldInfo(r *boundsreader.BoundsReader, cmd types.LoadCmd, off int64, size uint32) (*DyldInfo, error) {
	raw, err := r.ReadBytes(off, int64(size))
	if err != nil {
		return nil, err
	}
	fields := make([]uint32, 10)
	for i := range fields {
		v, err := r.ReadU32(off + 8 + int64(i)*4)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return &DyldInfo{
		cmd:          cmd,
		raw:          raw,
		RebaseOff:    fields[0],
		RebaseSize:   fields[1],
		BindOff:      fields[2],
		BindSize:     fields[3],
		WeakBindOff:  fields[4],
		WeakBindSize: fields[5],
		LazyBindOff:  fields[6],
		LazyBindSize: fields[7],
		ExportOff:    fields[8],
		ExportSize:   fields[9],
	}, nil
}
