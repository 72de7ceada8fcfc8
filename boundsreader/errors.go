package boundsreader

import "fmt"

// InsufficientDataError is returned whenever a requested range is not
// entirely contained within the underlying image, including negative or
// overflowing offsets.
type InsufficientDataError struct {
	Offset    int64
	Needed    int64
	Available int64
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data at offset %#x: needed %d bytes, %d available",
		e.Offset, e.Needed, e.Available)
}
