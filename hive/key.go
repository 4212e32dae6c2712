package hive

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmpare/reghive/internal/format"
)

// Key is a navigable handle to one key node (NK cell) within a Hive. A Key is
// a thin, immutable view over the hive's cell data plus the hive it came
// from; resolving children always goes back through the Hive's cache.
type Key struct {
	h      *Hive
	offset uint32
	nk     format.NKRecord
}

// Name returns the key's name, decoded from ASCII (Windows-1252) or
// UTF-16LE depending on the NK record's compressed-name flag.
func (k *Key) Name() string {
	return decodeName(k.nk.NameRaw, k.nk.NameIsCompressed())
}

// LastWritten returns the key's last-write FILETIME converted to UTC.
func (k *Key) LastWritten() time.Time {
	return format.FiletimeToTime(k.nk.LastWriteRaw)
}

// SubkeyCount returns the number of direct subkeys the NK record declares.
func (k *Key) SubkeyCount() int { return int(k.nk.SubkeyCount) }

// ValueCount returns the number of values the NK record declares.
func (k *Key) ValueCount() int { return int(k.nk.ValueCount) }

// IsRoot reports whether this key's parent offset points back to itself, the
// convention the root key node uses in place of a sentinel.
func (k *Key) IsRoot() bool { return k.nk.ParentOffset == k.offset }

// ClassName returns the key's associated class name string, if any (the
// class-name cell referenced by NK.ClassNameOffset). Most keys have none.
func (k *Key) ClassName() (string, error) {
	if k.nk.ClassNameOffset == format.InvalidOffset || k.nk.ClassLength == 0 {
		return "", nil
	}
	cell, err := k.h.ReadCell(k.nk.ClassNameOffset)
	if err != nil {
		return "", fmt.Errorf("hive: class name of %q: %w", k.Name(), err)
	}
	n := int(k.nk.ClassLength)
	if n > len(cell.Data) {
		n = len(cell.Data)
	}
	return decodeUTF16LE(cell.Data[:n]), nil
}

// Subkeys returns all direct child keys, resolving the (possibly indirect,
// RI-chained) subkey list. Depth of the RI indirection chain itself is
// inherently bounded by the list format; the configured max subkey depth
// instead bounds recursive tree walks performed by callers such as Walk.
func (k *Key) Subkeys() ([]*Key, error) {
	if k.nk.SubkeyCount == 0 || k.nk.SubkeyListOffset == format.InvalidOffset {
		return nil, nil
	}
	offsets, err := k.h.subkeyOffsets(k.nk.SubkeyListOffset, k.nk.SubkeyCount)
	if err != nil {
		return nil, fmt.Errorf("hive: subkeys of %q: %w", k.Name(), err)
	}
	out := make([]*Key, 0, len(offsets))
	for _, off := range offsets {
		child, err := k.h.GetKey(off)
		if err != nil {
			return nil, fmt.Errorf("hive: subkeys of %q: %w", k.Name(), err)
		}
		out = append(out, child)
	}
	return out, nil
}

// Subkey looks up a direct child key by name, case-insensitively, per
// Windows registry naming semantics.
func (k *Key) Subkey(name string) (*Key, error) {
	children, err := k.Subkeys()
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, &format.NotFoundError{Kind: "subkey", Name: name}
}

// Values returns all values directly attached to this key.
func (k *Key) Values() ([]*Value, error) {
	if k.nk.ValueCount == 0 || k.nk.ValueListOffset == format.InvalidOffset {
		return nil, nil
	}
	cell, err := k.h.ReadCell(k.nk.ValueListOffset)
	if err != nil {
		return nil, fmt.Errorf("hive: value list of %q: %w", k.Name(), err)
	}
	offsets, err := format.DecodeValueList(cell.Data, k.nk.ValueCount)
	if err != nil {
		return nil, fmt.Errorf("hive: value list of %q: %w", k.Name(), err)
	}
	out := make([]*Value, 0, len(offsets))
	for _, off := range offsets {
		v, err := k.h.getValue(off)
		if err != nil {
			return nil, fmt.Errorf("hive: values of %q: %w", k.Name(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Value looks up a directly attached value by name, case-insensitively. The
// nameless "default" value is addressed with the empty string.
func (k *Key) Value(name string) (*Value, error) {
	values, err := k.Values()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if strings.EqualFold(v.Name(), name) {
			return v, nil
		}
	}
	return nil, &format.NotFoundError{Kind: "value", Name: name}
}

// Walk calls fn for this key and then, depth-first, for every descendant
// reachable through the subkey tree. Key parents form a tree by contract, but
// the on-disk format does not enforce it (spec "Cyclic references"
// hardening): a corrupt or hostile hive could present a subkey list offset
// that cycles back to an ancestor. Walk guards against this with both a
// visited-offset set (a key is never visited twice across the whole walk)
// and the Hive's configured maximum depth (WithMaxSubkeyDepth), returning a
// sanity-limit error rather than recursing without bound.
func (k *Key) Walk(fn func(key *Key, depth int) error) error {
	return k.walk(fn, 0, make(map[uint32]bool))
}

func (k *Key) walk(fn func(*Key, int) error, depth int, visited map[uint32]bool) error {
	if depth > k.h.opts.maxSubkeyDepth {
		return fmt.Errorf("hive: walk of %q: depth %d exceeds max subkey depth %d: %w",
			k.Name(), depth, k.h.opts.maxSubkeyDepth, format.ErrSanityLimit)
	}
	if visited[k.offset] {
		return nil
	}
	visited[k.offset] = true

	if err := fn(k, depth); err != nil {
		return err
	}

	children, err := k.Subkeys()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := c.walk(fn, depth+1, visited); err != nil {
			return err
		}
	}
	return nil
}

// subkeyOffsets resolves the subkey list at offset, transparently following
// one level of RI indirection (a list of LF/LH/LI sub-lists) when present.
func (h *Hive) subkeyOffsets(offset uint32, expected uint32) ([]uint32, error) {
	cell, err := h.ReadCell(offset)
	if err != nil {
		return nil, err
	}
	if format.IsRIList(cell.Data) {
		subLists, err := format.DecodeRIList(cell.Data)
		if err != nil {
			return nil, err
		}
		var out []uint32
		for _, subOff := range subLists {
			subCell, err := h.ReadCell(subOff)
			if err != nil {
				return nil, err
			}
			offs, err := format.DecodeSubkeyList(subCell.Data, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, offs...)
		}
		return out, nil
	}
	return format.DecodeSubkeyList(cell.Data, expected)
}
