package boundsreader

import (
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// mmapThreshold is the file-size cutoff above which Open maps the file
// read-only instead of buffering it; the choice is transparent to callers,
// matching spec.md's BoundsReader contract.
const mmapThreshold = 10 << 20 // 10 MiB

// mappedImage adapts golang.org/x/exp/mmap.ReaderAt to the image interface.
type mappedImage struct {
	r *mmap.ReaderAt
}

func (m mappedImage) Len() int64 { return int64(m.r.Len()) }

func (m mappedImage) ReadAt(p []byte, off int64) (int, error) {
	n, err := m.r.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

// Opened wraps a BoundsReader together with whatever close action is needed
// to release its backing image (unmap, or nothing for an in-memory buffer).
type Opened struct {
	*BoundsReader
	closer io.Closer
}

// Close releases the underlying image. For a memory-mapped image this
// unmaps it exactly once; for a buffered image it is a no-op.
func (o *Opened) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open opens path and returns a BoundsReader over its full contents,
// choosing a memory-mapped or fully-buffered backing store based on file
// size. Mapping is cheap to request for every call; size is what decides.
func Open(path string) (*Opened, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() < 4 {
		return nil, &InsufficientDataError{Offset: 0, Needed: 4, Available: info.Size()}
	}

	if info.Size() > mmapThreshold {
		ra, err := mmap.Open(path)
		if err != nil {
			return nil, err
		}
		img := mappedImage{r: ra}
		return &Opened{
			BoundsReader: newFromImage(img, 0, img.Len()),
			closer:       ra,
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Opened{BoundsReader: New(data), closer: nopCloser{}}, nil
}
