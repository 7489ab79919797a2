package format

import (
	"fmt"
	"time"

	"github.com/jcarver/mftkit/internal/buf"
	"github.com/jcarver/mftkit/internal/logging"
)

// TimeWindow bounds the timestamps a recovered slack entry may carry and
// still be considered plausible. Both bounds are exclusive.
type TimeWindow struct {
	Min time.Time
	Max time.Time
}

// DefaultSlackWindow is the recovery filter applied to slack entries when the
// caller does not supply one. It is a heuristic, not a property of NTFS.
var DefaultSlackWindow = TimeWindow{
	Min: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	Max: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
}

// Contains reports whether t lies strictly inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return t.After(w.Min) && t.Before(w.Max)
}

// MFTIndexEntry is one directory index entry: the shared 16-byte header with
// an MFT reference prefix, followed by a FilenameAttribute key and, for
// sub-node entries, an aligned child VCN.
//
//	Offset  Size  Field
//	0x00    8     MFT reference
//	0x08    2     Entry length
//	0x0A    2     Filename information length
//	0x0C    4     Flags
//	0x10    n     FilenameAttribute view
//	        8     Child VCN, 8-byte aligned, when the node flag is set
type MFTIndexEntry struct {
	// NodeOffset is where the entry starts, relative to its index node
	// header. Slack entries carry the offset they were recovered from.
	NodeOffset int

	MFTReference       Reference
	Length             uint16
	FilenameInfoLength uint16
	Flags              uint32
	Filename           FilenameAttribute
	ChildVCN           uint64
	HasChildVCN        bool
}

// DecodeMFTIndexEntry decodes the index entry at off within b. off is
// node-relative; b is the node's backing buffer starting at the node header.
func DecodeMFTIndexEntry(b []byte, off int) (MFTIndexEntry, error) {
	ref, err := buf.Qword(b, off+EntryMFTReferenceOffset)
	if err != nil {
		return MFTIndexEntry{}, fmt.Errorf("entry reference: %w", err)
	}
	length, err := buf.Word(b, off+EntryLengthOffset)
	if err != nil {
		return MFTIndexEntry{}, fmt.Errorf("entry length: %w", err)
	}
	fnLen, err := buf.Word(b, off+EntryKeyLengthOffset)
	if err != nil {
		return MFTIndexEntry{}, fmt.Errorf("entry key length: %w", err)
	}
	flags, err := buf.Dword(b, off+EntryFlagsOffset)
	if err != nil {
		return MFTIndexEntry{}, fmt.Errorf("entry flags: %w", err)
	}
	fn, err := DecodeFilenameAttribute(b, off+EntryFilenameOffset)
	if err != nil {
		return MFTIndexEntry{}, fmt.Errorf("entry filename: %w", err)
	}

	e := MFTIndexEntry{
		NodeOffset:         off,
		MFTReference:       Reference(ref),
		Length:             length,
		FilenameInfoLength: fnLen,
		Flags:              flags,
		Filename:           fn,
	}
	if flags&EntryFlagNode != 0 {
		vcnOff := align8(EntryFilenameOffset + int(fnLen))
		vcn, err := buf.Qword(b, off+vcnOff)
		if err != nil {
			return MFTIndexEntry{}, fmt.Errorf("entry child vcn: %w", err)
		}
		e.ChildVCN = vcn
		e.HasChildVCN = true
	}
	return e, nil
}

// IsPlausible applies the slack recovery heuristic: the embedded filename
// must have parsed and all four of its timestamps must lie strictly inside
// the window. Timestamp conversion errors mark the entry implausible.
func (e MFTIndexEntry) IsPlausible(w TimeWindow) bool {
	for _, raw := range [4]uint64{
		e.Filename.CreatedRaw,
		e.Filename.ModifiedRaw,
		e.Filename.ChangedRaw,
		e.Filename.AccessedRaw,
	} {
		t, err := FiletimeToTime(raw)
		if err != nil || !w.Contains(t) {
			return false
		}
	}
	return true
}

func align8(v int) int {
	return (v + 7) &^ 7
}

// SecureIndexEntry is the shared shape of the $SECURE file's $SII and $SDH
// index entries: a data locator prefix over the common 16-byte header, plus a
// variant suffix.
//
//	Offset  Size  Field
//	0x00    2     Data offset
//	0x02    2     Data length
//	0x04    4     Reserved
//	0x08    2     Entry length
//	0x0A    2     Key length
//	0x0C    2     Flags
//	0x0E    2     Reserved
//	0x10    ...   Variant: $SII security id; $SDH hash then security id
type SecureIndexEntry struct {
	NodeOffset int

	DataOffset uint16
	DataLength uint16
	Length     uint16
	KeyLength  uint16
	Flags      uint16

	// SecurityID is present in both variants; Hash only in $SDH.
	SecurityID uint32
	Hash       uint32
}

// SecureIndexKind selects which $SECURE index entry variant to decode. The
// containing attribute identifies the variant; nothing in the entry itself
// does.
type SecureIndexKind int

const (
	// KindSII is the $SII (security id) index.
	KindSII SecureIndexKind = iota
	// KindSDH is the $SDH (security descriptor hash) index.
	KindSDH
)

// DecodeSecureIndexEntry decodes a $SII or $SDH entry at off within b.
func DecodeSecureIndexEntry(b []byte, off int, kind SecureIndexKind) (SecureIndexEntry, error) {
	dataOff, err := buf.Word(b, off+EntryDataOffsetOffset)
	if err != nil {
		return SecureIndexEntry{}, fmt.Errorf("secure entry data offset: %w", err)
	}
	dataLen, err := buf.Word(b, off+EntryDataLengthOffset)
	if err != nil {
		return SecureIndexEntry{}, fmt.Errorf("secure entry data length: %w", err)
	}
	length, err := buf.Word(b, off+EntryLengthOffset)
	if err != nil {
		return SecureIndexEntry{}, fmt.Errorf("secure entry length: %w", err)
	}
	keyLen, err := buf.Word(b, off+EntryKeyLengthOffset)
	if err != nil {
		return SecureIndexEntry{}, fmt.Errorf("secure entry key length: %w", err)
	}
	flags, err := buf.Word(b, off+EntryFlagsOffset)
	if err != nil {
		return SecureIndexEntry{}, fmt.Errorf("secure entry flags: %w", err)
	}

	e := SecureIndexEntry{
		NodeOffset: off,
		DataOffset: dataOff,
		DataLength: dataLen,
		Length:     length,
		KeyLength:  keyLen,
		Flags:      flags,
	}
	switch kind {
	case KindSII:
		id, err := buf.Dword(b, off+EntrySIISecurityID)
		if err != nil {
			return SecureIndexEntry{}, fmt.Errorf("sii security id: %w", err)
		}
		e.SecurityID = id
	case KindSDH:
		hash, err := buf.Dword(b, off+EntrySDHHashOffset)
		if err != nil {
			return SecureIndexEntry{}, fmt.Errorf("sdh hash: %w", err)
		}
		id, err := buf.Dword(b, off+EntrySDHSecurityID)
		if err != nil {
			return SecureIndexEntry{}, fmt.Errorf("sdh security id: %w", err)
		}
		e.Hash = hash
		e.SecurityID = id
	}
	return e, nil
}

// IsValid applies the structural sanity bounds for $SECURE entries.
func (e SecureIndexEntry) IsValid() bool {
	return e.Length > 1 && e.Length < 0x30 && e.KeyLength > 1 && e.KeyLength < 0x20
}

// Entries walks the live entry list of the node. The cursor starts at
// EntryListStart and yields entries while it stays at or below
// EntryListEnd - EntryMinSize, advancing by each entry's declared length. A
// zero-length or malformed entry ends the walk.
func (n IndexNode) Entries() []MFTIndexEntry {
	var entries []MFTIndexEntry
	off := int(n.EntryListStart)
	if off == 0 {
		logging.Debug("index node has no entries")
		return nil
	}
	for off <= int(n.EntryListEnd)-EntryMinSize {
		e, err := DecodeMFTIndexEntry(n.raw, n.base+off)
		if err != nil {
			logging.Debug("live index entry malformed", "offset", off, "err", err)
			return entries
		}
		if e.Length == 0 {
			return entries
		}
		e.NodeOffset = off
		entries = append(entries, e)
		off += int(e.Length)
	}
	return entries
}

// SlackEntries scans the deallocated region between EntryListEnd and
// EntryListAllocEnd for recoverable entries. At each offset it attempts a
// decode and keeps the entry when the window heuristic passes, advancing by
// the entry's length (at least one byte); otherwise it slides forward a
// single byte and retries. Corrupt bytes between valid residuals are skipped
// and a zero-length field cannot stall the scan. The scan ends at the region
// bound or on buffer overrun.
func (n IndexNode) SlackEntries(w TimeWindow) []MFTIndexEntry {
	var entries []MFTIndexEntry
	for off := int(n.EntryListEnd); off <= int(n.EntryListAllocEnd)-EntryMinSize; {
		if !buf.Has(n.raw, n.base+off, EntryHeaderSize) {
			logging.Debug("slack scan overran buffer", "offset", off)
			return entries
		}
		e, err := DecodeMFTIndexEntry(n.raw, n.base+off)
		if err != nil || !e.IsPlausible(w) {
			off++
			continue
		}
		logging.Debug("slack entry recovered", "offset", off)
		e.NodeOffset = off
		entries = append(entries, e)
		off += max(int(e.Length), 1)
	}
	return entries
}

// SecureEntries walks the live entry list of a $SII or $SDH node. The walk
// stops on a malformed, invalid, or zero-length entry.
func (n IndexNode) SecureEntries(kind SecureIndexKind) []SecureIndexEntry {
	var entries []SecureIndexEntry
	off := int(n.EntryListStart)
	if off == 0 {
		return nil
	}
	for off <= int(n.EntryListEnd)-EntryHeaderSize {
		e, err := DecodeSecureIndexEntry(n.raw, n.base+off, kind)
		if err != nil {
			logging.Debug("secure index entry malformed", "offset", off, "err", err)
			return entries
		}
		if e.Length == 0 || !e.IsValid() {
			return entries
		}
		e.NodeOffset = off
		entries = append(entries, e)
		off += int(e.Length)
	}
	return entries
}
