package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// Section is one section_64 entry, always nested inside a Segment. Data
// reads lazily from the slice's BoundsReader; a zero-fill section has no
// file backing and Data returns a zeroed buffer of Size bytes without
// touching the image.
type Section struct {
	Name        string
	SegmentName string
	Addr        uint64
	Size        uint64
	Offset      uint32
	Align       uint32
	RelOff      uint32
	NReloc      uint32
	Flags       types.SectionFlag
	Reserved1   uint32
	Reserved2   uint32
	Reserved3   uint32

	r *boundsreader.BoundsReader
}

// IsZeroFill reports whether this section occupies no space in the file
// (S_ZEROFILL / S_THREAD_LOCAL_ZEROFILL / S_GB_ZEROFILL).
func (s *Section) IsZeroFill() bool {
	switch s.Flags.Type() {
	case types.SZeroFill, types.SThreadLocalZeroFill, types.SGBZeroFill:
		return true
	default:
		return false
	}
}

// IsDebug reports whether S_ATTR_DEBUG is set.
func (s *Section) IsDebug() bool { return s.Flags.Attributes().Has(types.AttrDebug) }

// Data returns the section's raw bytes. Zero-fill sections synthesize a
// zeroed buffer; everything else is read from the image at Offset.
func (s *Section) Data() ([]byte, error) {
	if s.IsZeroFill() {
		return make([]byte, s.Size), nil
	}
	b, err := s.r.ReadBytes(int64(s.Offset), int64(s.Size))
	if err != nil {
		return nil, &ErrSectionOutOfBounds{
			Segment: s.SegmentName,
			Section: s.Name,
			Offset:  s.Offset,
			Size:    s.Size,
			Image:   s.r.Size(),
		}
	}
	return b, nil
}

const sectionRecordSize64 = 80

func parseSection64(r *boundsreader.BoundsReader, base int64, image *boundsreader.BoundsReader) (*Section, error) {
	name, err := r.ReadFixedString(base, 16)
	if err != nil {
		return nil, err
	}
	segName, err := r.ReadFixedString(base+16, 16)
	if err != nil {
		return nil, err
	}
	addr, err := r.ReadU64(base + 32)
	if err != nil {
		return nil, err
	}
	size, err := r.ReadU64(base + 40)
	if err != nil {
		return nil, err
	}
	offset, err := r.ReadU32(base + 48)
	if err != nil {
		return nil, err
	}
	align, err := r.ReadU32(base + 52)
	if err != nil {
		return nil, err
	}
	relOff, err := r.ReadU32(base + 56)
	if err != nil {
		return nil, err
	}
	nReloc, err := r.ReadU32(base + 60)
	if err != nil {
		return nil, err
	}
	flags, err := r.ReadU32(base + 64)
	if err != nil {
		return nil, err
	}
	res1, err := r.ReadU32(base + 68)
	if err != nil {
		return nil, err
	}
	res2, err := r.ReadU32(base + 72)
	if err != nil {
		return nil, err
	}
	res3, err := r.ReadU32(base + 76)
	if err != nil {
		return nil, err
	}

	return &Section{
		Name:        name,
		SegmentName: segName,
		Addr:        addr,
		Size:        size,
		Offset:      offset,
		Align:       align,
		RelOff:      relOff,
		NReloc:      nReloc,
		Flags:       types.SectionFlag(flags),
		Reserved1:   res1,
		Reserved2:   res2,
		Reserved3:   res3,
		r:           image,
	}, nil
}
