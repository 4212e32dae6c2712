package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrFreeCell indicates a cell marked free was encountered where allocation was required.
	ErrFreeCell = errors.New("format: cell not in use")
	// ErrNotFound indicates a requested subkey or value was missing.
	ErrNotFound = errors.New("format: not found")
	// ErrUnsupported indicates the structure or feature is not yet supported.
	ErrUnsupported = errors.New("format: unsupported feature")

	// ErrBoundsCheck indicates a buffer access exceeded bounds.
	// OffsetOutOfRangeError (a cell offset outside the hive data) unwraps
	// to it; the Checked* read helpers report a short buffer as
	// ErrTruncated instead.
	ErrBoundsCheck = errors.New("format: buffer bounds exceeded")

	// ErrSanityLimit indicates a parsed value exceeded sanity limits.
	// This prevents integer overflow attacks and excessive allocations
	// from malformed hive files.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")

	// ErrIntegerOverflow indicates an integer operation would overflow.
	// No function in this module returns it; the list decoders report a
	// count that does not fit the buffer as ErrTruncated.
	ErrIntegerOverflow = errors.New("format: integer overflow")

	// ErrChecksumMismatch indicates the base block's stored checksum does not
	// match the checksum computed over the header bytes.
	ErrChecksumMismatch = errors.New("format: checksum mismatch")

	// ErrUnsupportedVersion indicates the hive's major/minor version is
	// outside the range this module understands (major=1, minor 3..6).
	ErrUnsupportedVersion = errors.New("format: unsupported hive version")

	// ErrInvalidFormat is the catch-all structural validity failure (spec §7
	// *InvalidFormat*): raised where no narrower category (bounds, checksum,
	// version, signature) applies, e.g. a transaction-log dirty page whose
	// declared offset/size would overflow or exceed a hive's maximum size.
	ErrInvalidFormat = errors.New("format: invalid format")
)
