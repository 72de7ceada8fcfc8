package macho

import (
	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
)

// Segment is a parsed LC_SEGMENT_64 command together with the Section
// records nested inside it.
type Segment struct {
	Name      string
	VMAddr    uint64
	VMSize    uint64
	FileOff   uint64
	FileSize  uint64
	MaxProt   types.VMProt
	InitProt  types.VMProt
	NSects    uint32
	CmdFlags  uint32
	sections  []*Section
	raw       []byte
	r         *boundsreader.BoundsReader
}

func (s *Segment) Command() types.LoadCmd { return types.LCSegment64 }
func (s *Segment) Raw() []byte            { return s.raw }

// Sections returns the sections nested in this segment, in file order.
func (s *Segment) Sections() []*Section { return s.sections }

// Section looks up a nested section by name.
func (s *Segment) Section(name string) *Section {
	for _, sec := range s.sections {
		if sec.Name == name {
			return sec
		}
	}
	return nil
}

// IsWritable reports whether the segment's initial protection grants
// write access.
func (s *Segment) IsWritable() bool { return s.InitProt&types.ProtWrite != 0 }

// Data reads the segment's raw file bytes (the union of its sections'
// storage plus any padding between them).
func (s *Segment) Data() ([]byte, error) {
	b, err := s.r.ReadBytes(int64(s.FileOff), int64(s.FileSize))
	if err != nil {
		return nil, &ErrSegmentOutOfBounds{
			Name:   s.Name,
			Offset: s.FileOff,
			Size:   s.FileSize,
			Image:  s.r.Size(),
			Err:    err,
		}
	}
	return b, nil
}

const segmentCommandHeaderSize64 = 72

// parseSegment64 parses an LC_SEGMENT_64 command (including its nested
// section_64 array) starting at the command's own cmd/cmdsize preamble.
func parseSegment64(r *boundsreader.BoundsReader, cmdOffset int64, cmdSize uint32, image *boundsreader.BoundsReader) (*Segment, error) {
	raw, err := r.ReadBytes(cmdOffset, int64(cmdSize))
	if err != nil {
		return nil, err
	}

	name, err := r.ReadFixedString(cmdOffset+8, 16)
	if err != nil {
		return nil, err
	}
	vmAddr, err := r.ReadU64(cmdOffset + 24)
	if err != nil {
		return nil, err
	}
	vmSize, err := r.ReadU64(cmdOffset + 32)
	if err != nil {
		return nil, err
	}
	fileOff, err := r.ReadU64(cmdOffset + 40)
	if err != nil {
		return nil, err
	}
	fileSize, err := r.ReadU64(cmdOffset + 48)
	if err != nil {
		return nil, err
	}
	maxProt, err := r.ReadU32(cmdOffset + 56)
	if err != nil {
		return nil, err
	}
	initProt, err := r.ReadU32(cmdOffset + 60)
	if err != nil {
		return nil, err
	}
	nSects, err := r.ReadU32(cmdOffset + 64)
	if err != nil {
		return nil, err
	}
	flags, err := r.ReadU32(cmdOffset + 68)
	if err != nil {
		return nil, err
	}

	seg := &Segment{
		Name:     name,
		VMAddr:   vmAddr,
		VMSize:   vmSize,
		FileOff:  fileOff,
		FileSize: fileSize,
		MaxProt:  types.VMProt(maxProt),
		InitProt: types.VMProt(initProt),
		NSects:   nSects,
		CmdFlags: flags,
		raw:      raw,
		r:        image,
	}

	sectBase := cmdOffset + segmentCommandHeaderSize64
	for i := uint32(0); i < nSects; i++ {
		sec, err := parseSection64(r, sectBase+int64(i)*sectionRecordSize64, image)
		if err != nil {
			return nil, err
		}
		seg.sections = append(seg.sections, sec)
	}

	return seg, nil
}
