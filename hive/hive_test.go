package hive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmpare/reghive/internal/format"
)

func TestFromBytesRootKey(t *testing.T) {
	h, err := FromBytes(buildBasicHive())
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)
	assert.Equal(t, "ROOT", root.Name())
	assert.True(t, root.IsRoot())
	assert.Equal(t, 1, root.SubkeyCount())
	assert.Equal(t, 1, root.ValueCount())
}

func TestSubkeyLookup(t *testing.T) {
	h, err := FromBytes(buildBasicHive())
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)

	child, err := root.Subkey("child") // case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "Child", child.Name())

	_, err = root.Subkey("missing")
	assert.Error(t, err)
	var nf *format.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestValueLookupAndDecode(t *testing.T) {
	h, err := FromBytes(buildBasicHive())
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)

	v, err := root.Value("greeting") // case-insensitive
	require.NoError(t, err)
	assert.Equal(t, TypeString, v.Type())

	data, err := v.Data()
	require.NoError(t, err)
	assert.Equal(t, "hi", data.Str)
	assert.Equal(t, "hi", data.String())
}

func TestOpenRejectsBadSignature(t *testing.T) {
	buf := buildBasicHive()
	copy(buf[:4], []byte("XXXX"))
	_, err := FromBytes(buf)
	assert.Error(t, err)
}

func TestOpenRejectsChecksumMismatch(t *testing.T) {
	buf := buildBasicHive()
	buf[0x100] ^= 0xFF // corrupt header byte inside the checksum region
	_, err := FromBytes(buf)
	require.Error(t, err)
	var mismatch *format.ChecksumMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestOpenRejectsUnsupportedVersion(t *testing.T) {
	s := &syntheticHive{buf: buildBasicHive()}
	root := format.ReadU32(s.buf, format.REGFRootCellOffset)
	dataSize := format.ReadU32(s.buf, format.REGFDataSizeOffset)
	s.writeHeader(root, dataSize, 1, 9) // minor=9 is out of range
	_, err := FromBytes(s.buf)
	require.Error(t, err)
	var unsupported *format.UnsupportedVersionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestHBinStats(t *testing.T) {
	h, err := FromBytes(buildBasicHive())
	require.NoError(t, err)
	defer h.Close()

	it := h.HBins()
	require.True(t, it.Next())
	stats, err := it.Stats()
	require.NoError(t, err)
	assert.True(t, stats.AllocatedCells > 0)
	assert.False(t, it.Next())
}

// TestValueDataInlineDword covers spec Scenario B: a vk cell with
// name_length=0, data_length_raw=0x80000004, data_offset=0x04030201,
// data_type=4 (REG_DWORD). is_inline_data() must be true, raw_data() must
// return the little-endian bytes of the offset field, and Data() must decode
// them as Dword(0x04030201).
func TestValueDataInlineDword(t *testing.T) {
	payload := vkPayload(format.RegDword, []byte{0x01, 0x02, 0x03, 0x04}, "")
	vk, err := format.DecodeVK(payload)
	require.NoError(t, err)
	require.True(t, vk.DataInline())

	v := &Value{vk: vk}
	raw, err := v.RawData()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, raw)

	data, err := v.Data()
	require.NoError(t, err)
	assert.Equal(t, TypeDword, data.Type)
	assert.Equal(t, uint32(0x04030201), data.Dword)
}

// TestValueDataBigDataChain covers spec Scenario C: a value whose 16896
// octets of data are stored across a two-segment db chain (a full
// DBChunkSize block plus a 552-byte remainder), with each blocklist entry
// carrying its high bit set. Data() must return the two blocks concatenated
// and truncated to the declared length, not an error.
func TestValueDataBigDataChain(t *testing.T) {
	h, err := FromBytes(buildBigDataHive())
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)

	v, err := root.Value("Big")
	require.NoError(t, err)
	assert.Equal(t, TypeBinary, v.Type())

	data, err := v.Data()
	require.NoError(t, err)
	require.Len(t, data.Bytes, len(bigDataBlock1)+len(bigDataBlock2))
	assert.Equal(t, bigDataBlock1, data.Bytes[:len(bigDataBlock1)])
	assert.Equal(t, bigDataBlock2, data.Bytes[len(bigDataBlock1):])
}

// TestWalkBreaksCycle covers spec §9 "Cyclic references": root's only
// subkey ("Loop") has a subkey list that points back to root. Walk's
// visited-offset set must stop the second visit to root rather than
// recursing forever.
func TestWalkBreaksCycle(t *testing.T) {
	h, err := FromBytes(buildCyclicHive())
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)

	var visited []string
	err = root.Walk(func(k *Key, depth int) error {
		visited = append(visited, k.Name())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ROOT", "Loop"}, visited)
}

// TestWalkRespectsMaxDepth covers the WithMaxSubkeyDepth option: a linear
// four-level chain (ROOT -> L1 -> L2 -> L3) walked with a configured max
// depth of 2 must visit ROOT/L1/L2 and then fail once it would descend to
// L3 at depth 3, rather than silently ignoring the configured limit.
func TestWalkRespectsMaxDepth(t *testing.T) {
	h, err := FromBytes(buildChainHive(), WithMaxSubkeyDepth(2))
	require.NoError(t, err)
	defer h.Close()

	root, err := h.RootKey()
	require.NoError(t, err)

	var visited []string
	err = root.Walk(func(k *Key, depth int) error {
		visited = append(visited, k.Name())
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrSanityLimit)
	assert.Equal(t, []string{"ROOT", "L1", "L2"}, visited)
}

func TestReadCellOutOfRange(t *testing.T) {
	h, err := FromBytes(buildBasicHive())
	require.NoError(t, err)
	defer h.Close()

	_, err = h.ReadCell(0xFFFFFFF0)
	require.Error(t, err)
	var oor *format.OffsetOutOfRangeError
	assert.ErrorAs(t, err, &oor)
}
