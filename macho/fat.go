package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// fatArch is one architecture record out of a fat header's array, always
// big-endian on disk regardless of the slice it describes.
type fatArch struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype
	Offset uint32
	Size   uint32
	Align  uint32
}

// FatArchitecture is the public, read-only view of one slice inside a
// universal binary, returned by Binary.Architectures.
type FatArchitecture struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype
	Offset uint32
	Size   uint32
}

// readFatArches parses the fat_header + fat_arch array at the front of r.
// Both known fat magics (32-bit fat_arch and the 64-bit fat_arch_64 variant
// used by arm64e binaries with more than four slices) are handled; spec.md
// only requires the former but the latter costs nothing extra here.
func readFatArches(r *boundsreader.BoundsReader) ([]fatArch, bool, error) {
	magic, err := r.ReadU32BE(0)
	if err != nil {
		return nil, false, &ErrTruncatedHeader{Err: err}
	}

	switch types.Magic(magic) {
	case types.MagicFat:
		return readFatArch32(r)
	case types.MagicFat64:
		return readFatArch64(r)
	default:
		return nil, false, &ErrInvalidFatMagic{Found: magic}
	}
}

func readFatArch32(r *boundsreader.BoundsReader) ([]fatArch, bool, error) {
	count, err := r.ReadU32BE(4)
	if err != nil {
		return nil, true, &ErrTruncatedHeader{Err: err}
	}
	if count == 0 {
		return nil, true, &ErrEmptyFatBinary{}
	}

	arches := make([]fatArch, 0, count)
	const recordSize = 20
	for i := uint32(0); i < count; i++ {
		base := int64(8 + i*recordSize)
		cpu, err := r.ReadU32BE(base)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		subCPU, err := r.ReadU32BE(base + 4)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		offset, err := r.ReadU32BE(base + 8)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		size, err := r.ReadU32BE(base + 12)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		align, err := r.ReadU32BE(base + 16)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		arches = append(arches, fatArch{
			CPU:    types.CPU(cpu),
			SubCPU: types.CPUSubtype(subCPU),
			Offset: offset,
			Size:   size,
			Align:  align,
		})
	}
	return arches, true, nil
}

func readFatArch64(r *boundsreader.BoundsReader) ([]fatArch, bool, error) {
	count, err := r.ReadU32BE(4)
	if err != nil {
		return nil, true, &ErrTruncatedHeader{Err: err}
	}
	if count == 0 {
		return nil, true, &ErrEmptyFatBinary{}
	}

	arches := make([]fatArch, 0, count)
	const recordSize = 32
	for i := uint32(0); i < count; i++ {
		base := int64(8 + i*recordSize)
		cpu, err := r.ReadU32BE(base)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		subCPU, err := r.ReadU32BE(base + 4)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		offset64, err := r.ReadU64BE(base + 8)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		size64, err := r.ReadU64BE(base + 16)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		align, err := r.ReadU32BE(base + 24)
		if err != nil {
			return nil, true, &ErrTruncatedHeader{Err: err}
		}
		arches = append(arches, fatArch{
			CPU:    types.CPU(cpu),
			SubCPU: types.CPUSubtype(subCPU),
			Offset: uint32(offset64),
			Size:   uint32(size64),
			Align:  align,
		})
	}
	return arches, true, nil
}

// selectArch picks the fat-arch record matching want, or the first record
// when want is the zero value (meaning "host/default").
func selectArch(arches []fatArch, want types.CPU) (fatArch, error) {
	if want == 0 {
		return arches[0], nil
	}
	for _, a := range arches {
		if a.CPU == want {
			return a, nil
		}
	}
	return fatArch{}, &ErrArchitectureNotFound{Requested: want.String()}
}
