package format

// Sanity limits guard against hostile or corrupt hives driving allocations or
// recursion far past anything Windows itself would ever produce. They mirror
// the constants the teacher kept in pkg/types (WindowsMax*), folded directly
// into the decoders that need them since this module has no public "limits"
// configuration surface of its own.
const (
	// MaxSubkeyCount bounds NKRecord.SubkeyCount. Windows registry keys in
	// practice never exceed a few tens of thousands of direct subkeys.
	MaxSubkeyCount = 1 << 20

	// MaxValueCount bounds NKRecord.ValueCount.
	MaxValueCount = 1 << 20

	// MaxNameLen bounds key/value name length in bytes. The Windows API caps
	// key and value names at 255 UTF-16 code units; double it generously for
	// the UTF-16LE byte encoding and leave headroom for ASCII-encoded names.
	MaxNameLen = 1 << 16

	// MaxClassLen bounds NKRecord.ClassLength in bytes.
	MaxClassLen = 1 << 16

	// MaxValueDataLen bounds a VK record's declared data length, including
	// values reassembled from DB (big-data) chunks. DBMaxBlockCount *
	// DBChunkSize is 1,071,104,040 bytes, just under 1 GiB; 1 GiB is the next
	// power of two above it.
	MaxValueDataLen = 1 << 30
)
