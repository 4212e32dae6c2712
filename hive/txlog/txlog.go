// Package txlog replays Windows Registry transaction logs (.LOG1/.LOG2)
// against a hive's in-memory image. A transaction log holds the dirty pages
// a hive had queued for writeback when the system stopped flushing them to
// the primary file (a crash, a forced shutdown) — replaying them recovers
// changes the primary file alone would not reflect.
package txlog

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/jmpare/reghive/internal/format"
)

const (
	pageSize = 0x1000

	// maxHiveSize bounds how large a hive this package will grow via log
	// replay, guarding against a crafted log driving unbounded allocation.
	maxHiveSize = 512 << 20

	// maxPageExtension bounds how far a single dirty page may extend the
	// hive past its current length.
	maxPageExtension = 16 << 20

	// maxDirtyPagesPerLog bounds how many dirty pages one DIRT vector may
	// declare, and maxDirtyVectorsTotal bounds how many dirty pages,
	// accumulated across all DIRT vectors, Parse collects before it stops
	// probing a log file, mirroring the original implementation's hard
	// caps against runaway or hostile logs.
	maxDirtyPagesPerLog  = 1000
	maxDirtyVectorsTotal = 10000
)

var (
	hvleSignature = []byte("HvLE")
	dirtSignature = []byte("DIRT")
)

// DirtyPage is one page of hive data a log says must be written back to a
// given offset in the primary hive image.
type DirtyPage struct {
	Offset uint32
	Size   uint32
	Data   []byte
}

// Log is a parsed transaction log file.
type Log struct {
	Sequence   uint32
	DirtyPages []DirtyPage
}

// Open reads and parses the transaction log at path.
func Open(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a transaction log from raw bytes: the "HvLE" base block plus
// every "DIRT" dirty-page vector found at subsequent page-aligned offsets.
func Parse(data []byte) (*Log, error) {
	if len(data) < pageSize {
		return nil, fmt.Errorf("txlog: %w (log too small)", format.ErrTruncated)
	}
	if !bytes.Equal(data[:4], hvleSignature) {
		return nil, fmt.Errorf("txlog: %w", format.ErrSignatureMismatch)
	}
	sequence := format.ReadU32(data, 0x04)

	var pages []DirtyPage
	for offset := pageSize; offset+4 <= len(data) && len(pages) <= maxDirtyVectorsTotal; offset += pageSize {
		if !bytes.Equal(data[offset:offset+4], dirtSignature) {
			continue
		}
		vecPages, err := parseDirtyVector(data[offset:])
		if err != nil {
			continue // a malformed DIRT vector is skipped, not fatal to the log
		}
		pages = append(pages, vecPages...)
	}

	return &Log{Sequence: sequence, DirtyPages: pages}, nil
}

// parseDirtyVector decodes one DIRT vector: a page count at offset 0x08
// followed by that many (offset, size, data) entries starting at 0x10.
func parseDirtyVector(data []byte) ([]DirtyPage, error) {
	if len(data) < 16 {
		return nil, nil
	}
	numPages := int(format.ReadU32(data, 0x08))
	if numPages <= 0 || numPages > maxDirtyPagesPerLog {
		return nil, nil
	}

	var pages []DirtyPage
	offset := 0x10
	for i := 0; i < numPages; i++ {
		if offset+8 > len(data) {
			break
		}
		pageOffset := format.ReadU32(data, offset)
		pageSz := format.ReadU32(data, offset+4)
		offset += 8

		if pageSz == 0 || pageSz > pageSize*16 {
			continue
		}
		if offset+int(pageSz) > len(data) {
			break
		}
		pageData := make([]byte, pageSz)
		copy(pageData, data[offset:offset+int(pageSz)])
		pages = append(pages, DirtyPage{Offset: pageOffset, Size: pageSz, Data: pageData})
		offset += int(pageSz)
	}
	return pages, nil
}

// Apply writes this log's dirty pages into hiveData, growing it as needed.
// It returns the number of pages applied. Every validation failure here is
// fatal: unlike a log that fails to open or parse at all (silently skipped
// by MergeAndApply), a log that parsed but cannot be cleanly applied
// indicates a hive image that would be corrupted by proceeding.
func (l *Log) Apply(hiveData []byte) ([]byte, int, error) {
	applied := 0
	for i, page := range l.DirtyPages {
		start := int(page.Offset)
		end := start + int(page.Size)
		if end < start {
			return nil, applied, fmt.Errorf("txlog: %w", &format.InvalidFormatError{
				Descriptor: fmt.Sprintf("dirty page %d offset overflow: %#x + %#x", i, page.Offset, page.Size),
			})
		}
		if end > maxHiveSize {
			return nil, applied, fmt.Errorf("txlog: %w", &format.InvalidFormatError{
				Descriptor: fmt.Sprintf("dirty page %d would extend hive beyond %#x", i, maxHiveSize),
			})
		}
		if len(page.Data) != int(page.Size) {
			return nil, applied, fmt.Errorf("txlog: %w", &format.InvalidFormatError{
				Descriptor: fmt.Sprintf("dirty page %d data size mismatch: %d != %d", i, len(page.Data), page.Size),
			})
		}

		if end > len(hiveData) {
			extension := end - len(hiveData)
			if extension > maxPageExtension {
				return nil, applied, fmt.Errorf("txlog: %w", &format.InvalidFormatError{
					Descriptor: fmt.Sprintf("dirty page %d would extend hive by %d bytes (max %d)", i, extension, maxPageExtension),
				})
			}
			grown := make([]byte, end)
			copy(grown, hiveData)
			hiveData = grown
		}

		copy(hiveData[start:end], page.Data)
		applied++
	}
	return hiveData, applied, nil
}

// ApplyAll applies multiple logs to hiveData in ascending sequence-number
// order, the order Windows itself replays .LOG1/.LOG2 in when both carry
// pending writes.
func ApplyAll(hiveData []byte, logs []*Log) ([]byte, int, error) {
	sorted := make([]*Log, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	total := 0
	for _, log := range sorted {
		var n int
		var err error
		hiveData, n, err = log.Apply(hiveData)
		if err != nil {
			return nil, total, err
		}
		total += n
	}
	return hiveData, total, nil
}

// MergeAndApply reads raw as the base hive image, opens and parses each log
// path that exists and parses cleanly (a missing file or a parse failure is
// silently skipped - the hive may simply have no pending logs), and applies
// them in sequence order. It returns the resulting hive image.
func MergeAndApply(raw []byte, logPaths []string) ([]byte, error) {
	var logs []*Log
	for _, p := range logPaths {
		log, err := Open(p)
		if err != nil {
			continue
		}
		logs = append(logs, log)
	}
	if len(logs) == 0 {
		return raw, nil
	}
	out, _, err := ApplyAll(raw, logs)
	if err != nil {
		return nil, err
	}
	return out, nil
}
