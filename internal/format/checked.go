package format

import (
	"fmt"

	"github.com/jmpare/reghive/internal/buf"
)

// CheckedReadU16 reads a little-endian uint16 at off, returning ErrTruncated
// if the field would run past the end of b.
func CheckedReadU16(b []byte, off int) (uint16, error) {
	s, ok := buf.Slice(b, off, 2)
	if !ok {
		return 0, fmt.Errorf("%w: u16 at %#x (len %d)", ErrTruncated, off, len(b))
	}
	return buf.U16LE(s), nil
}

// CheckedReadU32 reads a little-endian uint32 at off, returning ErrTruncated
// if the field would run past the end of b.
func CheckedReadU32(b []byte, off int) (uint32, error) {
	s, ok := buf.Slice(b, off, 4)
	if !ok {
		return 0, fmt.Errorf("%w: u32 at %#x (len %d)", ErrTruncated, off, len(b))
	}
	return buf.U32LE(s), nil
}

// CheckedReadU64 reads a little-endian uint64 at off, returning ErrTruncated
// if the field would run past the end of b.
func CheckedReadU64(b []byte, off int) (uint64, error) {
	s, ok := buf.Slice(b, off, 8)
	if !ok {
		return 0, fmt.Errorf("%w: u64 at %#x (len %d)", ErrTruncated, off, len(b))
	}
	return buf.U64LE(s), nil
}
