package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// parseHeader reads the 32-byte 64-bit Mach-O header at the front of r and
// validates its magic. Byte order within a single-architecture slice is
// always little-endian once the fat wrapper (if any) has been peeled off.
func parseHeader(r *boundsreader.BoundsReader) (types.Header, error) {
	magic, err := r.ReadU32(0)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	if types.Magic(magic) != types.Magic64 {
		return types.Header{}, &ErrInvalidMagic{Found: magic, At: 0}
	}

	cpu, err := r.ReadU32(4)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	subCPU, err := r.ReadU32(8)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	fileType, err := r.ReadU32(12)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	nCmds, err := r.ReadU32(16)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	sizeCmds, err := r.ReadU32(20)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	flags, err := r.ReadU32(24)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}
	reserved, err := r.ReadU32(28)
	if err != nil {
		return types.Header{}, &ErrTruncatedHeader{Err: err}
	}

	return types.Header{
		Magic:        types.Magic(magic),
		CPU:          types.CPU(cpu),
		SubCPU:       types.CPUSubtype(subCPU),
		Type:         types.HeaderFileType(fileType),
		NCommands:    nCmds,
		SizeCommands: sizeCmds,
		Flags:        types.HeaderFlag(flags),
		Reserved:     reserved,
	}, nil
}
