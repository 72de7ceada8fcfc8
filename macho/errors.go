package macho

import "fmt"

// ErrFileNotFound wraps the error boundsreader.Open returns for a binary
// path: the file does not exist, cannot be read, or is shorter than four
// bytes (the wrapped error is then a boundsreader.InsufficientDataError).
type ErrFileNotFound struct {
	Path string
	Err  error
}

func (e *ErrFileNotFound) Error() string { return fmt.Sprintf("file not found: %s: %v", e.Path, e.Err) }
func (e *ErrFileNotFound) Unwrap() error { return e.Err }

// ErrInvalidMagic is returned when the first four bytes do not match any
// known Mach-O or fat magic.
type ErrInvalidMagic struct {
	Found uint32
	At    int64
}

func (e *ErrInvalidMagic) Error() string {
	return fmt.Sprintf("invalid magic %#x at offset %#x", e.Found, e.At)
}

// ErrInvalidFatMagic is returned when a fat header's magic fails to match
// either big-endian fat magic.
type ErrInvalidFatMagic struct{ Found uint32 }

func (e *ErrInvalidFatMagic) Error() string { return fmt.Sprintf("invalid fat magic %#x", e.Found) }

// ErrEmptyFatBinary is returned when a fat header's architecture count is 0.
type ErrEmptyFatBinary struct{}

func (e *ErrEmptyFatBinary) Error() string { return "fat binary has no architecture records" }

// ErrArchitectureNotFound is returned when no fat-arch record matches the
// requested CPU type.
type ErrArchitectureNotFound struct {
	Requested string
}

func (e *ErrArchitectureNotFound) Error() string {
	return fmt.Sprintf("architecture %s not found in fat binary", e.Requested)
}

// ErrUnsupportedCPUType is returned for 32-bit Mach-O magics, which this
// parser does not support (spec.md targets 64-bit arm64/x86_64 only).
type ErrUnsupportedCPUType struct {
	Magic uint32
}

func (e *ErrUnsupportedCPUType) Error() string {
	return fmt.Sprintf("unsupported cpu type for magic %#x", e.Magic)
}

// ErrTruncatedHeader is returned when the image is too small to contain a
// full 64-bit Mach-O header. It wraps the boundsreader.InsufficientDataError
// that triggered it so callers can recover the offset/needed/available
// detail via errors.As.
type ErrTruncatedHeader struct{ Err error }

func (e *ErrTruncatedHeader) Error() string { return fmt.Sprintf("truncated mach-o header: %v", e.Err) }
func (e *ErrTruncatedHeader) Unwrap() error { return e.Err }

// ErrInvalidLoadCommandSize is returned when a load command's cmdsize is
// smaller than 8 bytes or not 8-byte aligned.
type ErrInvalidLoadCommandSize struct {
	Offset int64
	Size   uint32
}

func (e *ErrInvalidLoadCommandSize) Error() string {
	return fmt.Sprintf("invalid load command size %d at offset %#x", e.Size, e.Offset)
}

// ErrLoadCommandSizeMismatch is returned when the sum of parsed load-command
// sizes does not match header.SizeCommands, or the next command's 8-byte
// cmd/cmdsize preamble would run past the end of the image.
type ErrLoadCommandSizeMismatch struct {
	Computed uint32
	Declared uint32
}

func (e *ErrLoadCommandSizeMismatch) Error() string {
	return fmt.Sprintf("load command size mismatch: computed %d, declared %d", e.Computed, e.Declared)
}

// ErrSegmentOutOfBounds is returned when a segment's file range extends
// past the end of the image. It wraps the boundsreader.InsufficientDataError
// that triggered it so errors.As can still recover the read's offset/needed/
// available detail.
type ErrSegmentOutOfBounds struct {
	Name   string
	Offset uint64
	Size   uint64
	Image  int64
	Err    error
}

func (e *ErrSegmentOutOfBounds) Error() string {
	return fmt.Sprintf("segment %s [%#x, %#x) exceeds image size %#x: %v", e.Name, e.Offset, e.Offset+e.Size, e.Image, e.Err)
}
func (e *ErrSegmentOutOfBounds) Unwrap() error { return e.Err }

// ErrSectionOutOfBounds is returned when a non-zero-fill section's file
// range extends past the end of the image.
type ErrSectionOutOfBounds struct {
	Segment string
	Section string
	Offset  uint32
	Size    uint64
	Image   int64
}

func (e *ErrSectionOutOfBounds) Error() string {
	return fmt.Sprintf("section %s.%s [%#x, %#x) exceeds image size %#x",
		e.Segment, e.Section, e.Offset, uint64(e.Offset)+e.Size, e.Image)
}

// ErrSymbolNotFound is returned when a lookup by name (Binary.Symbol) finds
// no symbol. Address lookups (Binary.ResolveAddress) report a miss with a
// false result instead.
type ErrSymbolNotFound struct{ Query string }

func (e *ErrSymbolNotFound) Error() string { return fmt.Sprintf("symbol not found: %s", e.Query) }
