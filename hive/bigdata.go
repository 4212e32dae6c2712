package hive

import (
	"fmt"

	"github.com/jmpare/reghive/internal/format"
)

// readBigData reassembles a value's data from a DB (big-data) record: dbCell
// is the already-read DB cell payload, want is the VK record's declared data
// length (the concatenated blocks are truncated to this length, since a
// block's cell may carry more payload bytes than the value needs).
func (h *Hive) readBigData(dbCell []byte, want int) ([]byte, error) {
	db, err := format.DecodeDB(dbCell)
	if err != nil {
		return nil, err
	}
	if int(db.NumBlocks) < format.DBMinBlockCount {
		return nil, fmt.Errorf("db record declares %d blocks, need at least %d", db.NumBlocks, format.DBMinBlockCount)
	}

	blocklist, err := h.ReadCell(db.BlocklistOffset)
	if err != nil {
		return nil, fmt.Errorf("db blocklist: %w", err)
	}
	offsets, err := format.DecodeValueList(blocklist.Data, uint32(db.NumBlocks))
	if err != nil {
		return nil, fmt.Errorf("db blocklist: %w", err)
	}

	out := make([]byte, 0, want)
	for _, off := range offsets {
		// Each blocklist entry carries its high bit set to mark it as part of
		// a big-data chain; clear it to get the actual cell offset.
		off &= 0x7FFFFFFF
		block, err := h.ReadCell(off)
		if err != nil {
			return nil, fmt.Errorf("db block at %#x: %w", off, err)
		}
		out = append(out, block.Data...)
	}
	if len(out) < want {
		return nil, fmt.Errorf("db reassembly produced %d bytes, want %d", len(out), want)
	}
	return out[:want], nil
}
