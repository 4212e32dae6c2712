package hive

import (
	"fmt"

	"github.com/jmpare/reghive/internal/format"
)

// HBinStats summarizes cell allocation within one hive bin.
type HBinStats struct {
	Offset        uint32
	Size          uint32
	AllocatedCells int
	FreeCells      int
	AllocatedBytes int
	FreeBytes      int
}

// HBinIterator walks a Hive's bins in file order, independent of the key
// tree, the way a disk-usage or integrity-audit tool would: the key tree
// only reaches cells still referenced by some NK/VK, while an HBinIterator
// sees every cell, including ones the tree no longer points to (freed but
// not yet reclaimed space).
type HBinIterator struct {
	h   *Hive
	idx int
}

// HBins returns an iterator positioned before the first hive bin.
func (h *Hive) HBins() *HBinIterator {
	return &HBinIterator{h: h}
}

// Next advances to the next hive bin and reports whether one was available.
func (it *HBinIterator) Next() bool {
	if it.idx >= len(it.h.hbins) {
		return false
	}
	it.idx++
	return true
}

// Stats computes per-bin cell statistics for the bin the iterator currently
// sits on. Call after a successful Next.
func (it *HBinIterator) Stats() (HBinStats, error) {
	if it.idx == 0 || it.idx > len(it.h.hbins) {
		return HBinStats{}, fmt.Errorf("hive: Stats called before Next")
	}
	span := it.h.hbins[it.idx-1]
	data := it.h.data

	hb := format.HBIN{FileOffset: uint32(span.start), Size: uint32(span.end - span.start)}
	stats := HBinStats{Offset: hb.FileOffset, Size: hb.Size}

	off := span.start + format.HBINHeaderSize
	for off < span.end {
		cell, next, err := format.NextCell(data, hb, off)
		if err != nil {
			return HBinStats{}, fmt.Errorf("hive: hbin at %#x: %w", span.start, err)
		}
		if cell.Free {
			stats.FreeCells++
			stats.FreeBytes += cell.Size
		} else {
			stats.AllocatedCells++
			stats.AllocatedBytes += cell.Size
		}
		if next <= off {
			return HBinStats{}, fmt.Errorf("hive: hbin at %#x: cell at %#x failed to advance", span.start, off)
		}
		off = next
	}
	return stats, nil
}
