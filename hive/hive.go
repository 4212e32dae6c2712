// Package hive implements a read-only navigator over the Windows Registry
// hive on-disk format: the base block, hive bins (HBINs), and the cell graph
// of key nodes (NK), value keys (VK), subkey lists, and big-data records they
// contain. It never mutates a hive's structure; the only "write" operation is
// Save, which persists an in-memory buffer (e.g. one produced by replaying
// transaction logs via OpenWithLogs) back to disk with a refreshed checksum.
package hive

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/jmpare/reghive/internal/format"
	"github.com/jmpare/reghive/hive/txlog"
)

// Hive is a parsed, navigable Windows Registry hive image. A Hive is safe for
// concurrent read access from multiple goroutines: the key-node cache is
// guarded by an RWMutex, following a read-lock-probe / parse-outside-lock /
// write-lock-insert pattern so concurrent lookups of the same key never block
// each other on the slow path, and a losing racer's parse is simply discarded
// ("last writer wins", which is safe because decoding is a pure function of
// the immutable underlying buffer).
type Hive struct {
	data    []byte
	unmap   func() error
	opts    openOptions
	base    BaseBlock
	hbins   []hbinSpan

	mu    sync.RWMutex
	cache map[uint32]format.NKRecord

	closed bool
}

// hbinSpan records the absolute byte range, in the mapped buffer, occupied by
// one HBIN (header included), used to resolve cells that may straddle a bin
// boundary without re-scanning from the start of the file on every access.
type hbinSpan struct {
	start, end int
}

// Open maps the hive file at path read-only and validates its base block and
// hive-bin structure. The returned Hive keeps the file mapped until Close is
// called.
func Open(path string, opts ...OpenOption) (*Hive, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("hive: open %s: %w", path, err)
	}
	h, err := newHive(data, unmap, opts)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	return h, nil
}

// FromBytes builds a Hive over an owned, already-in-memory buffer (no mmap,
// no backing file). Used for synthetic hives in tests; OpenWithLogs builds
// its Hive over the replayed buffer the same way.
func FromBytes(buf []byte, opts ...OpenOption) (*Hive, error) {
	return newHive(buf, nil, opts)
}

// OpenWithLogs reads the hive at path fully into memory, merges and replays
// any of the given transaction-log files that parse successfully (a log that
// fails to open or parse is silently skipped, per spec; a log that fails
// during *application* is fatal), recomputes the base-block checksum if any
// page was modified, and returns the resulting Hive as an owned buffer.
func OpenWithLogs(path string, logPaths ...string) (*Hive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hive: open %s: %w", path, err)
	}
	orig := bytes.Clone(raw)
	applied, err := txlog.MergeAndApply(raw, logPaths)
	if err != nil {
		return nil, fmt.Errorf("hive: replay transaction logs: %w", err)
	}
	if len(applied) >= format.REGFChecksumRegionLen+4 && !bytes.Equal(orig, applied) {
		format.PutU32(applied, format.REGFCheckSumOffset, CalculateChecksum(applied))
	}
	return newHive(applied, nil, nil)
}

func newHive(data []byte, unmap func() error, opts []OpenOption) (*Hive, error) {
	o := defaultOpenOptions()
	for _, opt := range opts {
		opt(&o)
	}

	head, err := format.ParseHeader(data)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	if err := validateVersion(head); err != nil {
		return nil, err
	}
	if err := validateChecksum(data); err != nil {
		return nil, err
	}

	h := &Hive{
		data:  data,
		unmap: unmap,
		opts:  o,
		base:  BaseBlock{head: head},
		cache: make(map[uint32]format.NKRecord, 64),
	}
	if h.hbins, err = scanHBins(data, head); err != nil {
		return nil, err
	}
	return h, nil
}

func validateVersion(head format.Header) error {
	if head.MajorVersion != 1 || head.MinorVersion < 3 || head.MinorVersion > 6 {
		return &format.UnsupportedVersionError{Major: head.MajorVersion, Minor: head.MinorVersion}
	}
	return nil
}

func validateChecksum(data []byte) error {
	if len(data) < format.REGFChecksumRegionLen+4 {
		return fmt.Errorf("hive: %w", format.ErrTruncated)
	}
	stored := format.ReadU32(data, format.REGFCheckSumOffset)
	calc := CalculateChecksum(data)
	if stored != calc {
		return &format.ChecksumMismatchError{Expected: stored, Calculated: calc}
	}
	return nil
}

// CalculateChecksum XORs the first REGFChecksumRegionLen bytes of the base
// block as 32-bit little-endian words, the algorithm Windows itself uses to
// validate (and, on write, stamp) the base block.
func CalculateChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < format.REGFChecksumRegionLen; i += 4 {
		sum ^= format.ReadU32(data, i)
	}
	return sum
}

// scanHBins walks the hive-bin chain starting right after the 4096-byte base
// block, validating each HBIN header in turn. A non-"hbin" signature marks
// the end of data (padding, or simply the last real bin) rather than an
// error, mirroring original_source/src/hive.rs's HbinIterator.
func scanHBins(data []byte, head format.Header) ([]hbinSpan, error) {
	var spans []hbinSpan
	offset := format.HeaderSize
	end := format.HeaderSize + int(head.HiveBinsDataSize)
	if end > len(data) {
		end = len(data)
	}
	for offset < end {
		hb, next, err := format.NextHBIN(data, offset)
		if err != nil {
			break // end of valid hbin data; not an error per spec
		}
		spans = append(spans, hbinSpan{start: offset, end: next})
		if next <= offset {
			return nil, fmt.Errorf("hive: hbin at %#x failed to advance", offset)
		}
		offset = next
		_ = hb
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("hive: no valid hive bins found")
	}
	return spans, nil
}

// Close unmaps the underlying file, if any. Safe to call multiple times and
// on a Hive built from an owned buffer (FromBytes/OpenWithLogs), where it is
// a no-op.
func (h *Hive) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.unmap != nil {
		return h.unmap()
	}
	return nil
}

// BaseBlock returns the parsed base block (REGF header).
func (h *Hive) BaseBlock() BaseBlock { return h.base }

// RootKey returns the hive's root key.
func (h *Hive) RootKey() (*Key, error) {
	return h.GetKey(h.base.head.RootCellOffset)
}

// GetKey resolves the key node at the given cell offset, probing the cache
// under a read lock, parsing outside any lock on a miss, then inserting under
// a write lock. A race between two goroutines parsing the same offset is
// resolved "last writer wins": both parses are identical given the same
// immutable buffer, so neither needs to be discarded for correctness.
func (h *Hive) GetKey(offset uint32) (*Key, error) {
	h.mu.RLock()
	nk, ok := h.cache[offset]
	h.mu.RUnlock()
	if ok {
		return &Key{h: h, offset: offset, nk: nk}, nil
	}

	cell, err := h.ReadCell(offset)
	if err != nil {
		return nil, err
	}
	if cell.Free {
		return nil, fmt.Errorf("hive: key at %#x: %w", offset, format.ErrFreeCell)
	}
	parsed, err := format.DecodeNK(cell.Data)
	if err != nil {
		return nil, fmt.Errorf("hive: decode key at %#x: %w", offset, err)
	}

	h.mu.Lock()
	h.cache[offset] = parsed
	h.mu.Unlock()

	return &Key{h: h, offset: offset, nk: parsed}, nil
}

// ReadCell reads and validates the cell at the given HCELL offset (relative
// to the start of hive-bin data, i.e. HCELL_INDEX as Windows defines it).
func (h *Hive) ReadCell(offset uint32) (format.Cell, error) {
	abs := format.HeaderSize + int(offset)
	if abs < format.HeaderSize || abs >= len(h.data) {
		return format.Cell{}, &format.OffsetOutOfRangeError{Offset: offset, Size: len(h.data)}
	}
	span, err := h.findHBIN(abs)
	if err != nil {
		return format.Cell{}, err
	}
	raw, err := h.readCellBytes(abs, span)
	if err != nil {
		return format.Cell{}, err
	}
	cell, err := format.ParseCell(raw)
	if err != nil {
		return format.Cell{}, fmt.Errorf("hive: parse cell at %#x: %w", offset, err)
	}
	cell.Offset = int(offset)
	if cell.Size > h.opts.maxCellSize {
		return format.Cell{}, &format.CellSizeError{Offset: offset, Size: cell.Size}
	}
	return cell, nil
}

func (h *Hive) findHBIN(abs int) (hbinSpan, error) {
	for _, s := range h.hbins {
		if abs >= s.start && abs < s.end {
			return s, nil
		}
	}
	return hbinSpan{}, fmt.Errorf("hive: offset %#x not within any hive bin", abs)
}

// readCellBytes returns the raw cell bytes (header + payload) starting at
// abs, copying across an HBIN boundary (skipping the next bin's header) if
// the cell's declared size runs past the end of its starting bin. The common
// case - a cell fully inside one bin - returns a zero-copy slice.
func (h *Hive) readCellBytes(abs int, span hbinSpan) ([]byte, error) {
	if abs+4 > len(h.data) {
		return nil, fmt.Errorf("hive: %w", format.ErrTruncated)
	}
	size := int(format.ReadI32(h.data, abs))
	if size < 0 {
		size = -size
	}
	if size < format.CellHeaderSize {
		return nil, &format.CellSizeError{Offset: uint32(abs - format.HeaderSize), Size: size}
	}
	if abs+size <= span.end {
		return h.data[abs : abs+size], nil
	}

	out := make([]byte, size)
	copied := 0
	cur := abs
	for copied < size {
		curSpan, err := h.findHBIN(cur)
		if err != nil {
			return nil, fmt.Errorf("hive: cell at %#x crosses an invalid hbin boundary", abs)
		}
		avail := curSpan.end - cur
		need := size - copied
		take := avail
		if take > need {
			take = need
		}
		if cur+take > len(h.data) {
			return nil, fmt.Errorf("hive: cell at %#x: %w", abs, format.ErrTruncated)
		}
		copy(out[copied:], h.data[cur:cur+take])
		copied += take
		cur += take
		if copied < size {
			cur += format.HBINHeaderSize
		}
		if take == 0 {
			return nil, fmt.Errorf("hive: cell at %#x made no progress crossing hbins", abs)
		}
	}
	return out, nil
}

// HBinCount reports the number of hive bins discovered at open time.
func (h *Hive) HBinCount() int { return len(h.hbins) }

// Save recomputes the base-block checksum and writes the hive's current
// in-memory image to path. This is the one write path this package supports:
// it persists the effect of transaction-log replay (OpenWithLogs), not
// arbitrary structural edits.
func (h *Hive) Save(path string) error {
	out := make([]byte, len(h.data))
	copy(out, h.data)
	format.PutU32(out, format.REGFCheckSumOffset, CalculateChecksum(out))
	return os.WriteFile(path, out, 0o600)
}

func wrapFormatErr(err error) error {
	return fmt.Errorf("hive: %w", err)
}
