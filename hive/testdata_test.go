package hive

import (
	"encoding/binary"

	"github.com/jmpare/reghive/internal/format"
)

// syntheticHive assembles a minimal but structurally valid hive image in
// memory: a base block, one hive bin, and a handful of cells. Tests build on
// top of this rather than shipping binary testdata fixtures, the way the
// teacher's own hive tests favor small hand-built inputs over large sample
// files whenever a test only needs a handful of cells.
type syntheticHive struct {
	buf []byte
}

func newSyntheticHive(hbinDataSize int) *syntheticHive {
	total := format.HeaderSize + hbinDataSize
	return &syntheticHive{buf: make([]byte, total)}
}

func (s *syntheticHive) writeHeader(rootOffset uint32, hbinDataSize uint32, major, minor uint32) {
	b := s.buf
	copy(b[format.REGFSignatureOffset:], format.REGFSignature)
	format.PutU32(b, format.REGFPrimarySeqOffset, 1)
	format.PutU32(b, format.REGFSecondarySeqOffset, 1)
	format.PutU64(b, format.REGFTimeStampOffset, 0)
	format.PutU32(b, format.REGFMajorVersionOffset, major)
	format.PutU32(b, format.REGFMinorVersionOffset, minor)
	format.PutU32(b, format.REGFTypeOffset, 0)
	format.PutU32(b, format.REGFRootCellOffset, rootOffset)
	format.PutU32(b, format.REGFDataSizeOffset, hbinDataSize)
	format.PutU32(b, format.REGFClusterOffset, 1)

	var sum uint32
	for i := 0; i < format.REGFChecksumRegionLen; i += 4 {
		sum ^= binary.LittleEndian.Uint32(b[i : i+4])
	}
	format.PutU32(b, format.REGFCheckSumOffset, sum)
}

func (s *syntheticHive) writeHBINHeader(off int, size uint32) {
	b := s.buf
	copy(b[off:], format.HBINSignature)
	format.PutU32(b, off+format.HBINFileOffsetField, uint32(off-format.HeaderSize))
	format.PutU32(b, off+format.HBINSizeOffset, size)
}

// writeCell writes a cell (size header + payload) at off, returns (HCELL
// offset of this cell, absolute offset of the next cell).
func (s *syntheticHive) writeCell(off int, payload []byte) (hcell uint32, next int) {
	size := format.CellHeaderSize + len(payload)
	format.PutI32(s.buf, off, int32(-size))
	copy(s.buf[off+format.CellHeaderSize:], payload)
	return uint32(off - format.HeaderSize), off + size
}

// writeFreeCell marks size bytes starting at off as one free cell (positive
// size header, zeroed payload).
func (s *syntheticHive) writeFreeCell(off, size int) {
	format.PutI32(s.buf, off, int32(size))
}

func nkPayload(flags uint16, parent, subkeyCount, subkeyListOff, valueCount, valueListOff uint32, name string) []byte {
	nameBytes := []byte(name)
	p := make([]byte, format.NKNameOffset+len(nameBytes))
	copy(p, format.NKSignature)
	binary.LittleEndian.PutUint16(p[format.NKFlagsOffset:], flags)
	binary.LittleEndian.PutUint32(p[format.NKParentOffset:], parent)
	binary.LittleEndian.PutUint32(p[format.NKSubkeyCountOffset:], subkeyCount)
	binary.LittleEndian.PutUint32(p[format.NKSubkeyListOffset:], subkeyListOff)
	binary.LittleEndian.PutUint32(p[format.NKVolSubkeyListOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(p[format.NKValueCountOffset:], valueCount)
	binary.LittleEndian.PutUint32(p[format.NKValueListOffset:], valueListOff)
	binary.LittleEndian.PutUint32(p[format.NKSecurityOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(p[format.NKClassNameOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint16(p[format.NKNameLenOffset:], uint16(len(nameBytes)))
	copy(p[format.NKNameOffset:], nameBytes)
	return p
}

// vkPayload builds a VK record. data must be at most 4 bytes; it is stored
// inline in the DataOffset field, as real hives do for small values.
func vkPayload(valType uint32, data []byte, name string) []byte {
	nameBytes := []byte(name)
	p := make([]byte, format.VKNameOffset+len(nameBytes))
	copy(p, format.VKSignature)
	binary.LittleEndian.PutUint16(p[format.VKNameLenOffset:], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint32(p[format.VKDataLenOffset:], uint32(len(data))|format.VKDataInlineBit)
	var inline [4]byte
	copy(inline[:], data)
	copy(p[format.VKDataOffOffset:format.VKDataOffOffset+4], inline[:])
	binary.LittleEndian.PutUint32(p[format.VKTypeOffset:], valType)
	binary.LittleEndian.PutUint16(p[format.VKFlagsOffset:], format.VKFlagASCIIName)
	copy(p[format.VKNameOffset:], nameBytes)
	return p
}

// vkPayloadIndirect builds a VK record whose data lives outside the VK cell
// itself: dataOffset points at a cell holding either the raw data directly
// (for a cell-sized value) or a "db" big-data record (for a value larger
// than format.DBChunkSize). The data-length high bit is left clear, marking
// the data as not inline.
func vkPayloadIndirect(valType uint32, dataLen uint32, dataOffset uint32, name string) []byte {
	nameBytes := []byte(name)
	p := make([]byte, format.VKNameOffset+len(nameBytes))
	copy(p, format.VKSignature)
	binary.LittleEndian.PutUint16(p[format.VKNameLenOffset:], uint16(len(nameBytes)))
	binary.LittleEndian.PutUint32(p[format.VKDataLenOffset:], dataLen)
	binary.LittleEndian.PutUint32(p[format.VKDataOffOffset:], dataOffset)
	binary.LittleEndian.PutUint32(p[format.VKTypeOffset:], valType)
	binary.LittleEndian.PutUint16(p[format.VKFlagsOffset:], format.VKFlagASCIIName)
	copy(p[format.VKNameOffset:], nameBytes)
	return p
}

// dbPayload builds a "db" (big-data) record header.
func dbPayload(numBlocks uint16, blocklistOffset uint32) []byte {
	p := make([]byte, format.DBHeaderSize)
	copy(p, format.DBSignature)
	binary.LittleEndian.PutUint16(p[format.DBNumBlocksOffset:], numBlocks)
	binary.LittleEndian.PutUint32(p[format.DBBlocklistOffset:], blocklistOffset)
	return p
}

// blocklistPayload builds a db record's block list: each offset carries its
// high bit set, the convention original_source/src/hive.rs's read_big_data
// masks off before dereferencing.
func blocklistPayload(offsets ...uint32) []byte {
	p := make([]byte, len(offsets)*format.OffsetFieldSize)
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(p[i*format.OffsetFieldSize:], off|0x80000000)
	}
	return p
}

func repeatByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func liPayload(offsets ...uint32) []byte {
	p := make([]byte, format.ListHeaderSize+len(offsets)*format.OffsetFieldSize)
	copy(p, format.LISignature)
	binary.LittleEndian.PutUint16(p[format.IdxCountOffset:], uint16(len(offsets)))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(p[format.ListHeaderSize+i*format.OffsetFieldSize:], off)
	}
	return p
}

func valueListPayload(offsets ...uint32) []byte {
	p := make([]byte, len(offsets)*format.OffsetFieldSize)
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(p[i*format.OffsetFieldSize:], off)
	}
	return p
}

func utf16Bytes(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	return out
}

// buildBasicHive produces a hive with a root key "ROOT" holding one subkey
// "Child" and one value "Greeting" = REG_SZ "hi". Cells are written in
// dependency order (children before their referencing parents) so every
// offset a payload needs is already known when that payload is built.
func buildBasicHive() []byte {
	const hbinSize = 0x2000
	s := newSyntheticHive(hbinSize)
	hbinStart := format.HeaderSize
	s.writeHBINHeader(hbinStart, hbinSize)

	cursor := hbinStart + format.HBINHeaderSize

	var childOff, vkOff, valueListOff, subkeyListOff, rootOff uint32

	childOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 0, format.InvalidOffset, 0, format.InvalidOffset, "Child"))

	vkOff, cursor = s.writeCell(cursor, vkPayload(format.RegSz, utf16Bytes("hi"), "Greeting"))

	valueListOff, cursor = s.writeCell(cursor, valueListPayload(vkOff))

	subkeyListOff, cursor = s.writeCell(cursor, liPayload(childOff))

	rootOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0 /*filled below*/, 1, subkeyListOff, 1, valueListOff, "ROOT"))

	// Fill the remainder of the hive bin with a single free cell, the way a
	// real hive bin always ends in free space rather than raw zero bytes;
	// an all-zero tail would look like a zero-length cell to NextCell.
	s.writeFreeCell(cursor, hbinStart+hbinSize-cursor)

	s.writeHeader(rootOff, hbinSize, 1, 5)

	// Patch the root NK's parent field to point at itself now that rootOff
	// is known (IsRoot checks ParentOffset == its own offset).
	rootCellAbs := format.HeaderSize + int(rootOff)
	format.PutU32(s.buf, rootCellAbs+format.CellHeaderSize+format.NKParentOffset, rootOff)

	return s.buf
}

// buildCyclicHive produces a hive where root's one subkey "Loop" has a
// subkey list that cycles back to root itself, modeling a corrupt hive that
// violates the tree invariant the on-disk format does not enforce (spec
// "Cyclic references"). Loop's subkey fields are patched after the fact,
// once rootOff is known, since root and Loop reference each other.
func buildCyclicHive() []byte {
	const hbinSize = 0x2000
	s := newSyntheticHive(hbinSize)
	hbinStart := format.HeaderSize
	s.writeHBINHeader(hbinStart, hbinSize)
	cursor := hbinStart + format.HBINHeaderSize

	var loopOff, rootListOff, rootOff, loopListOff uint32

	loopOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 0, format.InvalidOffset, 0, format.InvalidOffset, "Loop"))
	rootListOff, cursor = s.writeCell(cursor, liPayload(loopOff))
	rootOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 1, rootListOff, 0, format.InvalidOffset, "ROOT"))
	loopListOff, cursor = s.writeCell(cursor, liPayload(rootOff))

	s.writeFreeCell(cursor, hbinStart+hbinSize-cursor)
	s.writeHeader(rootOff, hbinSize, 1, 5)

	rootCellAbs := format.HeaderSize + int(rootOff)
	format.PutU32(s.buf, rootCellAbs+format.CellHeaderSize+format.NKParentOffset, rootOff)

	loopCellAbs := format.HeaderSize + int(loopOff)
	format.PutU32(s.buf, loopCellAbs+format.CellHeaderSize+format.NKSubkeyCountOffset, 1)
	format.PutU32(s.buf, loopCellAbs+format.CellHeaderSize+format.NKSubkeyListOffset, loopListOff)

	return s.buf
}

// buildChainHive produces a hive with a single linear subkey chain four
// levels deep (ROOT -> L1 -> L2 -> L3), used to exercise WithMaxSubkeyDepth.
func buildChainHive() []byte {
	const hbinSize = 0x2000
	s := newSyntheticHive(hbinSize)
	hbinStart := format.HeaderSize
	s.writeHBINHeader(hbinStart, hbinSize)
	cursor := hbinStart + format.HBINHeaderSize

	var l3Off, l2ListOff, l2Off, l1ListOff, l1Off, rootListOff, rootOff uint32

	l3Off, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 0, format.InvalidOffset, 0, format.InvalidOffset, "L3"))
	l2ListOff, cursor = s.writeCell(cursor, liPayload(l3Off))
	l2Off, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 1, l2ListOff, 0, format.InvalidOffset, "L2"))
	l1ListOff, cursor = s.writeCell(cursor, liPayload(l2Off))
	l1Off, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 1, l1ListOff, 0, format.InvalidOffset, "L1"))
	rootListOff, cursor = s.writeCell(cursor, liPayload(l1Off))
	rootOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 1, rootListOff, 0, format.InvalidOffset, "ROOT"))

	s.writeFreeCell(cursor, hbinStart+hbinSize-cursor)
	s.writeHeader(rootOff, hbinSize, 1, 5)

	rootCellAbs := format.HeaderSize + int(rootOff)
	format.PutU32(s.buf, rootCellAbs+format.CellHeaderSize+format.NKParentOffset, rootOff)

	return s.buf
}

// bigDataBlock1 and bigDataBlock2 are the two segments buildBigDataHive's
// value is split across, sized to match spec Scenario C exactly: a full
// 16344-byte chunk followed by a 552-byte remainder (16344+552 = 16896 =
// 0x4200 total).
var (
	bigDataBlock1 = repeatByte(0xAA, format.DBChunkSize)
	bigDataBlock2 = repeatByte(0xBB, 552)
)

// buildBigDataHive produces a hive with a root key "ROOT" holding one
// REG_BINARY value "Big" whose 16896 octets are stored as a db (big-data)
// chain: a blocklist cell with two high-bit-tagged offsets pointing at two
// data-block cells (spec Scenario C).
func buildBigDataHive() []byte {
	const hbinSize = 0x5000
	s := newSyntheticHive(hbinSize)
	hbinStart := format.HeaderSize
	s.writeHBINHeader(hbinStart, hbinSize)

	cursor := hbinStart + format.HBINHeaderSize

	var block1Off, block2Off, blocklistOff, dbOff, vkOff, valueListOff, rootOff uint32

	block1Off, cursor = s.writeCell(cursor, bigDataBlock1)
	block2Off, cursor = s.writeCell(cursor, bigDataBlock2)

	blocklistOff, cursor = s.writeCell(cursor, blocklistPayload(block1Off, block2Off))

	dbOff, cursor = s.writeCell(cursor, dbPayload(2, blocklistOff))

	wantLen := uint32(len(bigDataBlock1) + len(bigDataBlock2)) // 0x4200
	vkOff, cursor = s.writeCell(cursor, vkPayloadIndirect(format.RegBinary, wantLen, dbOff, "Big"))

	valueListOff, cursor = s.writeCell(cursor, valueListPayload(vkOff))

	rootOff, cursor = s.writeCell(cursor, nkPayload(format.NKFlagCompressedName, 0, 0, format.InvalidOffset, 1, valueListOff, "ROOT"))

	s.writeFreeCell(cursor, hbinStart+hbinSize-cursor)

	s.writeHeader(rootOff, hbinSize, 1, 5)

	rootCellAbs := format.HeaderSize + int(rootOff)
	format.PutU32(s.buf, rootCellAbs+format.CellHeaderSize+format.NKParentOffset, rootOff)

	return s.buf
}
