package format

import "fmt"

// The errors below carry structured context (offsets, expected/found values)
// the way original_source/src/error.rs's RegistryError enum does with its
// thiserror variants. Each wraps a category sentinel from errors.go so callers
// can still branch with errors.Is against the coarse category.

// ChecksumMismatchError reports a base-block checksum that does not match the
// checksum computed over the header bytes.
type ChecksumMismatchError struct {
	Expected   uint32
	Calculated uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("base block checksum mismatch: stored %#08x, calculated %#08x", e.Expected, e.Calculated)
}

func (e *ChecksumMismatchError) Unwrap() error { return ErrChecksumMismatch }

// UnsupportedVersionError reports a hive format version this module does not
// implement (major must be 1, minor must be one of 3..6).
type UnsupportedVersionError struct {
	Major uint32
	Minor uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported hive version %d.%d", e.Major, e.Minor)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// OffsetOutOfRangeError reports a cell offset that falls outside the mapped
// hive data or outside the HBIN it was expected to belong to.
type OffsetOutOfRangeError struct {
	Offset uint32
	Size   int
}

func (e *OffsetOutOfRangeError) Error() string {
	return fmt.Sprintf("cell offset %#x out of range (hive data size %d)", e.Offset, e.Size)
}

func (e *OffsetOutOfRangeError) Unwrap() error { return ErrBoundsCheck }

// NotFoundError reports a missing named subkey or value.
type NotFoundError struct {
	Kind string // "subkey" or "value"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CellSizeError reports a cell whose declared size is implausible: smaller
// than the mandatory header, or large enough to indicate a corrupt or hostile
// hive rather than a legitimate allocation.
type CellSizeError struct {
	Offset uint32
	Size   int
}

func (e *CellSizeError) Error() string {
	return fmt.Sprintf("implausible cell size %d at offset %#x", e.Size, e.Offset)
}

func (e *CellSizeError) Unwrap() error { return ErrSanityLimit }

// InvalidFormatError reports a structural validity failure with a
// human-readable descriptor, for cases that don't fit one of the narrower
// categories above (spec §7 *InvalidFormat*) — e.g. a transaction-log dirty
// page whose offset/size would overflow, exceed the maximum hive size, or
// extend the hive further than a single page application may.
type InvalidFormatError struct {
	Descriptor string
}

func (e *InvalidFormatError) Error() string { return e.Descriptor }

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }
