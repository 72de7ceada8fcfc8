package macho

import (
	"testing"

	"github.com/kestrel-security/machtool/boundsreader"
	"github.com/kestrel-security/machtool/types"
	"github.com/stretchr/testify/require"
)

// A segment whose file_offset/file_size range lies beyond the end of the
// image parses successfully (the segment command itself is well-formed);
// only a later Data() read discovers the range is unreadable.
func TestSegmentOutOfBoundsDataWrapsInsufficientData(t *testing.T) {
	b := newMachoBuilder(uint32(types.CPUArm64), uint32(types.CPUSubtypeArm64All), 2, 0)
	b.addSegment64("__TEXT", 0x100000000, 0x4000, 0x10000, 0x4000, 5, 5)
	data := b.finish()

	bin, err := Parse(data)
	require.NoError(t, err)

	seg := bin.Segment("__TEXT")
	require.NotNil(t, seg)

	_, err = seg.Data()
	require.Error(t, err)

	var oob *ErrSegmentOutOfBounds
	require.ErrorAs(t, err, &oob)

	var insufficient *boundsreader.InsufficientDataError
	require.ErrorAs(t, err, &insufficient, "InsufficientData detail must survive through ErrSegmentOutOfBounds")
}
