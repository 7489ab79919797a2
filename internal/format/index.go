package format

import (
	"fmt"

	"github.com/jcarver/mftkit/internal/buf"
)

// IndexRootHeader is the view over the resident value of an $INDEX_ROOT
// attribute. The index node header follows the fixed prefix at 0x10.
//
//	Offset  Size  Field
//	0x00    4     Indexed attribute type
//	0x04    4     Collation rule
//	0x08    4     Index record size in bytes
//	0x0C    1     Index record size in clusters
//	0x0D    3     Unused
type IndexRootHeader struct {
	raw []byte

	Type               uint32
	CollationRule      uint32
	RecordSizeBytes    uint32
	RecordSizeClusters uint8
}

// DecodeIndexRootHeader decodes the index root header at the start of b.
func DecodeIndexRootHeader(b []byte) (IndexRootHeader, error) {
	typ, err := buf.Dword(b, IndexRootTypeOffset)
	if err != nil {
		return IndexRootHeader{}, fmt.Errorf("index root type: %w", err)
	}
	collation, err := buf.Dword(b, IndexRootCollationOffset)
	if err != nil {
		return IndexRootHeader{}, fmt.Errorf("index root collation: %w", err)
	}
	recBytes, err := buf.Dword(b, IndexRootRecordSizeOffset)
	if err != nil {
		return IndexRootHeader{}, fmt.Errorf("index root record size: %w", err)
	}
	recClusters, err := buf.Byte(b, IndexRootClusterSizeOffset)
	if err != nil {
		return IndexRootHeader{}, fmt.Errorf("index root cluster size: %w", err)
	}
	return IndexRootHeader{
		raw:                b,
		Type:               typ,
		CollationRule:      collation,
		RecordSizeBytes:    recBytes,
		RecordSizeClusters: recClusters,
	}, nil
}

// Node returns the index node that starts immediately after the root header.
func (h IndexRootHeader) Node() (IndexNode, error) {
	return DecodeIndexNode(h.raw, IndexRootNodeOffset)
}

// IndexRecordHeader is the view over one INDX allocation block. Decoding
// applies USA fixup to the block in place.
//
//	Offset  Size  Field
//	0x00    4     Magic "INDX"
//	0x04    2     Update sequence array offset
//	0x06    2     Update sequence array count
//	0x08    8     $LogFile sequence number
//	0x10    8     VCN of this record within the allocation
type IndexRecordHeader struct {
	raw []byte

	Magic     uint32
	USAOffset uint16
	USACount  uint16
	LSN       uint64
	VCN       uint64
}

// DecodeIndexRecordHeader decodes the INDX block in b, applying fixup in
// place. Callers that need the original bytes must copy first.
func DecodeIndexRecordHeader(b []byte) (IndexRecordHeader, error) {
	magic, err := buf.Dword(b, IndexRecordMagicOffset)
	if err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record magic: %w", err)
	}
	if magic != IndexRecordMagic {
		return IndexRecordHeader{}, fmt.Errorf("index record magic %#x: %w", magic, ErrSignatureMismatch)
	}
	usaOffset, err := buf.Word(b, IndexRecordUSAOffsetOffset)
	if err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record usa offset: %w", err)
	}
	usaCount, err := buf.Word(b, IndexRecordUSACountOffset)
	if err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record usa count: %w", err)
	}
	if err := Fixup(b, int(usaCount), int(usaOffset)); err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record fixup: %w", err)
	}
	lsn, err := buf.Qword(b, IndexRecordLSNOffset)
	if err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record lsn: %w", err)
	}
	vcn, err := buf.Qword(b, IndexRecordVCNOffset)
	if err != nil {
		return IndexRecordHeader{}, fmt.Errorf("index record vcn: %w", err)
	}
	return IndexRecordHeader{
		raw:       b,
		Magic:     magic,
		USAOffset: usaOffset,
		USACount:  usaCount,
		LSN:       lsn,
		VCN:       vcn,
	}, nil
}

// Node returns the index node that starts immediately after the INDX header.
func (h IndexRecordHeader) Node() (IndexNode, error) {
	return DecodeIndexNode(h.raw, IndexRecordNodeOffset)
}

// IndexNode is the view over an index node header and its entry list. All
// entry list offsets are relative to the node header itself.
//
//	Offset  Size  Field
//	0x00    4     Entry list start
//	0x04    4     Entry list end
//	0x08    4     Entry list allocation end
//	0x0C    4     Flags
type IndexNode struct {
	raw  []byte
	base int // offset of the node header within raw

	EntryListStart    uint32
	EntryListEnd      uint32
	EntryListAllocEnd uint32
	Flags             uint32
}

// DecodeIndexNode decodes the index node header at base within b.
func DecodeIndexNode(b []byte, base int) (IndexNode, error) {
	start, err := buf.Dword(b, base+NodeEntryListStartOffset)
	if err != nil {
		return IndexNode{}, fmt.Errorf("node entry list start: %w", err)
	}
	end, err := buf.Dword(b, base+NodeEntryListEndOffset)
	if err != nil {
		return IndexNode{}, fmt.Errorf("node entry list end: %w", err)
	}
	alloc, err := buf.Dword(b, base+NodeEntryListAllocOffset)
	if err != nil {
		return IndexNode{}, fmt.Errorf("node entry list allocation end: %w", err)
	}
	flags, err := buf.Dword(b, base+NodeFlagsOffset)
	if err != nil {
		return IndexNode{}, fmt.Errorf("node flags: %w", err)
	}
	if start > end || end > alloc {
		return IndexNode{}, fmt.Errorf("node entry list %d/%d/%d: %w", start, end, alloc, ErrParse)
	}
	return IndexNode{
		raw:               b,
		base:              base,
		EntryListStart:    start,
		EntryListEnd:      end,
		EntryListAllocEnd: alloc,
		Flags:             flags,
	}, nil
}
