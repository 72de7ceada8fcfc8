package codesign

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// CodeDirectory is the decoded CS_CodeDirectory blob: identity, hash
// parameters, and the per-page hash arrays it commits to.
type CodeDirectory struct {
	types.CodeDirectoryHeader

	Identifier  string
	TeamID      string
	CodeLimit64 uint64

	ExecSegBase  uint64
	ExecSegLimit uint64
	ExecSegFlags uint64

	SpecialSlotHashes [][]byte
	CodeSlotHashes    [][]byte

	raw []byte
}

func parseCodeDirectory(blob []byte) (*CodeDirectory, error) {
	r := boundsreader.New(blob)

	magic, err := r.ReadU32BE(0)
	if err != nil {
		return nil, err
	}
	length, err := r.ReadU32BE(4)
	if err != nil {
		return nil, err
	}
	version, err := r.ReadU32BE(8)
	if err != nil {
		return nil, err
	}
	flags, err := r.ReadU32BE(12)
	if err != nil {
		return nil, err
	}
	hashOffset, err := r.ReadU32BE(16)
	if err != nil {
		return nil, err
	}
	identOffset, err := r.ReadU32BE(20)
	if err != nil {
		return nil, err
	}
	nSpecialSlots, err := r.ReadU32BE(24)
	if err != nil {
		return nil, err
	}
	nCodeSlots, err := r.ReadU32BE(28)
	if err != nil {
		return nil, err
	}
	codeLimit, err := r.ReadU32BE(32)
	if err != nil {
		return nil, err
	}
	hashSize, err := r.ReadU8(36)
	if err != nil {
		return nil, err
	}
	hashType, err := r.ReadU8(37)
	if err != nil {
		return nil, err
	}
	platform, err := r.ReadU8(38)
	if err != nil {
		return nil, err
	}
	pageSize, err := r.ReadU8(39)
	if err != nil {
		return nil, err
	}
	spare2, err := r.ReadU32BE(40)
	if err != nil {
		return nil, err
	}

	cd := &CodeDirectory{
		CodeDirectoryHeader: types.CodeDirectoryHeader{
			Magic:         types.CSMagic(magic),
			Length:        length,
			Version:       version,
			Flags:         types.CSFlags(flags),
			HashOffset:    hashOffset,
			IdentOffset:   identOffset,
			NSpecialSlots: nSpecialSlots,
			NCodeSlots:    nCodeSlots,
			CodeLimit:     codeLimit,
			HashSize:      hashSize,
			HashType:      types.CSHashType(hashType),
			Platform:      platform,
			PageSize:      pageSize,
			Spare2:        spare2,
		},
		CodeLimit64: uint64(codeLimit),
		raw:         blob,
	}

	if version >= types.CDVersionSupportsTeamID {
		teamOffset, err := r.ReadU32BE(48)
		if err != nil {
			return nil, err
		}
		if teamOffset != 0 {
			name, err := r.ReadFixedString(int64(teamOffset), int64(length)-int64(teamOffset))
			if err == nil {
				cd.TeamID = name
			}
		}
	}
	if version >= types.CDVersionSupportsCodeLimit64 {
		limit64, err := r.ReadU64BE(56)
		if err == nil && limit64 != 0 {
			cd.CodeLimit64 = limit64
		}
	}
	if version >= types.CDVersionSupportsExecSeg {
		base, err := r.ReadU64BE(64)
		if err == nil {
			cd.ExecSegBase = base
		}
		limit, err := r.ReadU64BE(72)
		if err == nil {
			cd.ExecSegLimit = limit
		}
		flags, err := r.ReadU64BE(80)
		if err == nil {
			cd.ExecSegFlags = flags
		}
	}

	if identOffset != 0 {
		name, err := r.ReadFixedString(int64(identOffset), int64(length)-int64(identOffset))
		if err == nil {
			cd.Identifier = name
		}
	}

	hashSz := int64(hashSize)
	for i := uint32(0); i < nSpecialSlots; i++ {
		off := int64(hashOffset) - int64(i+1)*hashSz
		h, err := r.ReadBytes(off, hashSz)
		if err != nil {
			break
		}
		cd.SpecialSlotHashes = append(cd.SpecialSlotHashes, h)
	}
	for i := uint32(0); i < nCodeSlots; i++ {
		off := int64(hashOffset) + int64(i)*hashSz
		h, err := r.ReadBytes(off, hashSz)
		if err != nil {
			break
		}
		cd.CodeSlotHashes = append(cd.CodeSlotHashes, h)
	}

	return cd, nil
}
