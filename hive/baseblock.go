package hive

import (
	"time"

	"github.com/jmpare/reghive/internal/format"
)

// BaseBlock exposes the parsed REGF header (the hive's first 4096 bytes).
type BaseBlock struct {
	head format.Header
}

// MajorVersion returns the hive format major version (always 1 for hives this
// package accepts).
func (b BaseBlock) MajorVersion() uint32 { return b.head.MajorVersion }

// MinorVersion returns the hive format minor version (3 through 6 for hives
// this package accepts).
func (b BaseBlock) MinorVersion() uint32 { return b.head.MinorVersion }

// PrimarySequence and SecondarySequence are incremented together on each
// successful flush; a primary/secondary mismatch (checked separately from the
// checksum) signals a hive that crashed mid-write and needs log replay.
func (b BaseBlock) PrimarySequence() uint32   { return b.head.PrimarySequence }
func (b BaseBlock) SecondarySequence() uint32 { return b.head.SecondarySequence }

// SequencesMatch reports whether the primary and secondary sequence numbers
// agree, the cheap pre-check Windows itself uses before trusting a hive
// without consulting its transaction logs.
func (b BaseBlock) SequencesMatch() bool {
	return b.head.PrimarySequence == b.head.SecondarySequence
}

// LastWrittenTime returns the hive's last-write FILETIME converted to UTC.
func (b BaseBlock) LastWrittenTime() time.Time {
	return format.FiletimeToTime(b.head.LastWriteRaw)
}

// RootCellOffset returns the HCELL offset of the root key node.
func (b BaseBlock) RootCellOffset() uint32 { return b.head.RootCellOffset }

// HiveBinsDataSize returns the declared total size, in bytes, of all hive
// bins following the base block.
func (b BaseBlock) HiveBinsDataSize() uint32 { return b.head.HiveBinsDataSize }

// ClusteringFactor returns the base block's clustering factor field, carried
// through unmodified; modern Windows hives do not use it.
func (b BaseBlock) ClusteringFactor() uint32 { return b.head.ClusteringFactor }
