package hive

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jmpare/reghive/internal/format"
)

// ValueType identifies how a Value's raw bytes should be interpreted. The
// numeric codes match the registry's REG_* constants exactly; a code outside
// the range this package knows about decodes as Unknown rather than an
// error, since corrupt or future hive versions may carry types this package
// has never seen.
type ValueType uint32

const (
	TypeNone                     ValueType = 0
	TypeString                   ValueType = 1 // REG_SZ
	TypeExpandString             ValueType = 2 // REG_EXPAND_SZ
	TypeBinary                   ValueType = 3
	TypeDword                    ValueType = 4
	TypeDwordBigEndian           ValueType = 5
	TypeLink                     ValueType = 6
	TypeMultiString              ValueType = 7
	TypeResourceList             ValueType = 8
	TypeFullResourceDescriptor   ValueType = 9
	TypeResourceRequirementsList ValueType = 10
	TypeQword                    ValueType = 11
)

// Name returns the REG_* constant name for known types, or
// "REG_UNKNOWN_0x<code>" for anything else.
func (t ValueType) Name() string {
	switch t {
	case TypeNone:
		return "REG_NONE"
	case TypeString:
		return "REG_SZ"
	case TypeExpandString:
		return "REG_EXPAND_SZ"
	case TypeBinary:
		return "REG_BINARY"
	case TypeDword:
		return "REG_DWORD"
	case TypeDwordBigEndian:
		return "REG_DWORD_BIG_ENDIAN"
	case TypeLink:
		return "REG_LINK"
	case TypeMultiString:
		return "REG_MULTI_SZ"
	case TypeResourceList:
		return "REG_RESOURCE_LIST"
	case TypeFullResourceDescriptor:
		return "REG_FULL_RESOURCE_DESCRIPTOR"
	case TypeResourceRequirementsList:
		return "REG_RESOURCE_REQUIREMENTS_LIST"
	case TypeQword:
		return "REG_QWORD"
	default:
		return fmt.Sprintf("REG_UNKNOWN_0x%x", uint32(t))
	}
}

func (t ValueType) String() string { return t.Name() }

// Value is a navigable handle to one value key (VK cell) within a Hive.
type Value struct {
	h      *Hive
	offset uint32
	vk     format.VKRecord
}

// getValue resolves the VK record at offset, bypassing the key-node cache
// (values are cheap enough, and numerous enough per key, that caching them
// individually would cost more memory than the repeat decode it would save).
func (h *Hive) getValue(offset uint32) (*Value, error) {
	cell, err := h.ReadCell(offset)
	if err != nil {
		return nil, err
	}
	if cell.Free {
		return nil, fmt.Errorf("hive: value at %#x: %w", offset, format.ErrFreeCell)
	}
	vk, err := format.DecodeVK(cell.Data)
	if err != nil {
		return nil, fmt.Errorf("hive: decode value at %#x: %w", offset, err)
	}
	return &Value{h: h, offset: offset, vk: vk}, nil
}

// Name returns the value's name. The nameless "default" value of a key
// decodes to the empty string.
func (v *Value) Name() string {
	if v.vk.NameLength == 0 {
		return ""
	}
	return decodeName(v.vk.NameRaw, v.vk.NameIsASCII())
}

// Type returns the value's declared data type.
func (v *Value) Type() ValueType { return ValueType(v.vk.Type) }

// RawData returns the value's raw, untyped data bytes: inline data decoded
// straight out of the VK record, direct cell data, or the reassembled
// contents of a DB (big-data) chain, depending on how the VK record stores
// it.
func (v *Value) RawData() ([]byte, error) {
	if v.vk.DataInline() {
		n := v.vk.InlineLength()
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, v.vk.DataOffset)
		if n > 4 {
			n = 4
		}
		return buf[:n], nil
	}

	want := v.vk.InlineLength()
	if want == 0 {
		return nil, nil
	}
	cell, err := v.h.ReadCell(v.vk.DataOffset)
	if err != nil {
		return nil, fmt.Errorf("hive: data of value %q: %w", v.Name(), err)
	}
	if format.IsDBRecord(cell.Data) {
		data, err := v.h.readBigData(cell.Data, want)
		if err != nil {
			return nil, fmt.Errorf("hive: big data of value %q: %w", v.Name(), err)
		}
		return data, nil
	}
	if want > len(cell.Data) {
		want = len(cell.Data)
	}
	return cell.Data[:want], nil
}

// ValueData is the typed, decoded form of a value's raw bytes.
type ValueData struct {
	Type     ValueType
	Str      string   // String, ExpandString
	Strs     []string // MultiString
	Dword    uint32   // Dword, DwordBigEndian
	Qword    uint64   // Qword
	Bytes    []byte   // Binary, Link, the three resource types, Unknown
}

// Data decodes the value's raw bytes according to its declared type.
func (v *Value) Data() (ValueData, error) {
	raw, err := v.RawData()
	if err != nil {
		return ValueData{}, err
	}
	t := v.Type()
	d := ValueData{Type: t}
	switch t {
	case TypeString, TypeExpandString:
		d.Str = decodeUTF16LE(trimTrailingNUL16(raw))
	case TypeMultiString:
		d.Strs = decodeMultiString(raw)
	case TypeDword:
		d.Dword = readDwordLE(raw)
	case TypeDwordBigEndian:
		d.Dword = readDwordBE(raw)
	case TypeQword:
		d.Qword = readQwordLE(raw)
	default:
		d.Bytes = raw
	}
	return d, nil
}

// String renders the value data in a human-readable form, used by the CLI's
// text and export output.
func (d ValueData) String() string {
	switch d.Type {
	case TypeString, TypeExpandString:
		return d.Str
	case TypeMultiString:
		return strings.Join(d.Strs, "\\0")
	case TypeDword, TypeDwordBigEndian:
		return fmt.Sprintf("0x%08x (%d)", d.Dword, d.Dword)
	case TypeQword:
		return fmt.Sprintf("0x%016x (%d)", d.Qword, d.Qword)
	default:
		return fmt.Sprintf("(%d bytes)", len(d.Bytes))
	}
}

func trimTrailingNUL16(b []byte) []byte {
	for len(b) >= 2 && b[len(b)-2] == 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-2]
	}
	return b
}

// decodeMultiString splits a REG_MULTI_SZ's UTF-16LE bytes on NUL-terminated
// strings, dropping only the trailing empty strings produced by the (one or
// two) terminating NULs: a REG_MULTI_SZ may legitimately contain an embedded
// empty string between two real entries, and that one must survive.
func decodeMultiString(raw []byte) []string {
	full := decodeUTF16LE(raw)
	parts := strings.Split(full, "\x00")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func readDwordLE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func readDwordBE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func readQwordLE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
