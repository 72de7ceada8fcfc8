// Package boundsreader implements the byte-image abstraction every other
// component in this module is built on: a borrowed, immutable view over a
// Mach-O image with checked reads. It never panics — every out-of-range
// access returns an *InsufficientDataError naming the offset, the size that
// was needed, and the size that was actually available.
package boundsreader

import "encoding/binary"

// image is the minimal backing-store contract a BoundsReader needs,
// satisfied by both the fully-buffered and the memory-mapped variants.
type image interface {
	ReadAt(p []byte, off int64) (int, error)
	Len() int64
}

// byteImage backs small files: the whole file is read into memory once at
// open time, mirroring the teacher's default io.ReaderAt-over-os.File path
// for anything that doesn't opt into memory mapping.
type byteImage []byte

func (b byteImage) Len() int64 { return int64(len(b)) }

func (b byteImage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, &InsufficientDataError{Offset: off, Needed: int64(len(p)), Available: 0}
	}
	n := copy(p, b[off:])
	return n, nil
}

// BoundsReader is a cheaply-clonable, read-only view over a contiguous
// byte image (or a sub-range of one, produced by Slice). Multiple readers
// may share the same backing image concurrently; none of them mutate it.
type BoundsReader struct {
	img  image
	base int64 // offset into img where this reader's window begins
	size int64 // length of this reader's window
}

// New wraps an already-loaded byte slice.
func New(data []byte) *BoundsReader {
	return &BoundsReader{img: byteImage(data), base: 0, size: int64(len(data))}
}

func newFromImage(img image, base, size int64) *BoundsReader {
	return &BoundsReader{img: img, base: base, size: size}
}

// Size returns the number of bytes visible through this reader.
func (r *BoundsReader) Size() int64 { return r.size }

// check validates that [offset, offset+needed) lies entirely within the
// reader's window, returning the equivalent error spec.md requires.
func (r *BoundsReader) check(offset, needed int64) error {
	if offset < 0 || needed < 0 || offset > r.size || needed > r.size-offset {
		avail := int64(0)
		if offset >= 0 && offset <= r.size {
			avail = r.size - offset
		}
		return &InsufficientDataError{Offset: offset, Needed: needed, Available: avail}
	}
	return nil
}

// ReadBytes returns a fresh copy of count bytes starting at offset.
func (r *BoundsReader) ReadBytes(offset, count int64) ([]byte, error) {
	if err := r.check(offset, count); err != nil {
		return nil, err
	}
	buf := make([]byte, count)
	if _, err := r.img.ReadAt(buf, r.base+offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU8 reads a single byte at offset.
func (r *BoundsReader) ReadU8(offset int64) (uint8, error) {
	b, err := r.ReadBytes(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16 at offset.
func (r *BoundsReader) ReadU16(offset int64) (uint16, error) {
	b, err := r.ReadBytes(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32 at offset.
func (r *BoundsReader) ReadU32(offset int64) (uint32, error) {
	b, err := r.ReadBytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64 at offset.
func (r *BoundsReader) ReadU64(offset int64) (uint64, error) {
	b, err := r.ReadBytes(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadU16BE reads a big-endian uint16 at offset (code-signature blobs, fat
// headers).
func (r *BoundsReader) ReadU16BE(offset int64) (uint16, error) {
	b, err := r.ReadBytes(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32BE reads a big-endian uint32 at offset.
func (r *BoundsReader) ReadU32BE(offset int64) (uint32, error) {
	b, err := r.ReadBytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU64BE reads a big-endian uint64 at offset.
func (r *BoundsReader) ReadU64BE(offset int64) (uint64, error) {
	b, err := r.ReadBytes(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadFixedString reads length bytes at offset and returns the ASCII prefix
// up to the first NUL (or the whole run, if unterminated) — the layout used
// by segment and section names.
func (r *BoundsReader) ReadFixedString(offset, length int64) (string, error) {
	b, err := r.ReadBytes(offset, length)
	if err != nil {
		return "", err
	}
	if i := indexNUL(b); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// Slice produces a new reader restricted to [offset, offset+count) of this
// reader's window — used for fat-binary architecture-slice selection and
// for handing isolated sub-readers to the code-signature decoder.
func (r *BoundsReader) Slice(offset, count int64) (*BoundsReader, error) {
	if err := r.check(offset, count); err != nil {
		return nil, err
	}
	return newFromImage(r.img, r.base+offset, count), nil
}
