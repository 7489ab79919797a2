package format

import (
	"fmt"

	"github.com/jcarver/mftkit/internal/buf"
	"github.com/jcarver/mftkit/internal/logging"
)

// Record is a decoded 1024-byte MFT record. The header fields are parsed
// eagerly; attributes are walked on demand over the backing buffer, which has
// already had its update sequence fixup applied.
//
//	Offset  Size  Field
//	0x00    4     Magic "FILE"
//	0x04    2     Update sequence array offset
//	0x06    2     Update sequence array count
//	0x08    8     $LogFile sequence number
//	0x10    2     Sequence number
//	0x12    2     Hard-link count
//	0x14    2     Offset to first attribute
//	0x16    2     Flags (bit 0 in use, bit 1 directory)
//	0x18    4     Bytes in use
//	0x1C    4     Bytes allocated
//	0x20    8     Base MFT record reference
//	0x28    2     Next attribute instance
//	0x2C    4     MFT record number
type Record struct {
	raw []byte

	// Inode is the position of this record in its stream, assigned by the
	// caller; it is not an on-disk field.
	Inode uint64

	Magic            uint32
	USAOffset        uint16
	USACount         uint16
	LSN              uint64
	SequenceNumber   uint16
	LinkCount        uint16
	AttrsOffset      uint16
	Flags            uint16
	BytesInUse       uint32
	BytesAllocated   uint32
	BaseRecord       Reference
	NextAttrInstance uint16
	RecordNumber     uint32
}

// ParseRecord decodes the MFT record in b, applying USA fixup in place. The
// record borrows b; callers that need the pre-fixup bytes must use
// ParseRecordCopy. inode is the caller-assigned stream position.
func ParseRecord(b []byte, inode uint64) (*Record, error) {
	magic, err := buf.Dword(b, RecordMagicOffset)
	if err != nil {
		return nil, fmt.Errorf("record magic: %w", err)
	}
	if magic != RecordMagic {
		return nil, fmt.Errorf("record magic %#x: %w", magic, ErrSignatureMismatch)
	}
	usaOffset, err := buf.Word(b, RecordUSAOffsetOffset)
	if err != nil {
		return nil, fmt.Errorf("record usa offset: %w", err)
	}
	usaCount, err := buf.Word(b, RecordUSACountOffset)
	if err != nil {
		return nil, fmt.Errorf("record usa count: %w", err)
	}
	if err := Fixup(b, int(usaCount), int(usaOffset)); err != nil {
		return nil, fmt.Errorf("record fixup: %w", err)
	}

	lsn, err := buf.Qword(b, RecordLSNOffset)
	if err != nil {
		return nil, fmt.Errorf("record lsn: %w", err)
	}
	seq, err := buf.Word(b, RecordSeqNumberOffset)
	if err != nil {
		return nil, fmt.Errorf("record sequence: %w", err)
	}
	links, err := buf.Word(b, RecordLinkCountOffset)
	if err != nil {
		return nil, fmt.Errorf("record link count: %w", err)
	}
	attrsOff, err := buf.Word(b, RecordAttrsOffset)
	if err != nil {
		return nil, fmt.Errorf("record attrs offset: %w", err)
	}
	flags, err := buf.Word(b, RecordFlagsOffset)
	if err != nil {
		return nil, fmt.Errorf("record flags: %w", err)
	}
	inUse, err := buf.Dword(b, RecordBytesInUseOffset)
	if err != nil {
		return nil, fmt.Errorf("record bytes in use: %w", err)
	}
	alloc, err := buf.Dword(b, RecordBytesAllocOffset)
	if err != nil {
		return nil, fmt.Errorf("record bytes allocated: %w", err)
	}
	base, err := buf.Qword(b, RecordBaseRefOffset)
	if err != nil {
		return nil, fmt.Errorf("record base reference: %w", err)
	}
	nextAttr, err := buf.Word(b, RecordNextAttrOffset)
	if err != nil {
		return nil, fmt.Errorf("record next attr: %w", err)
	}
	number, err := buf.Dword(b, RecordNumberOffset)
	if err != nil {
		return nil, fmt.Errorf("record number: %w", err)
	}

	return &Record{
		raw:              b,
		Inode:            inode,
		Magic:            magic,
		USAOffset:        usaOffset,
		USACount:         usaCount,
		LSN:              lsn,
		SequenceNumber:   seq,
		LinkCount:        links,
		AttrsOffset:      attrsOff,
		Flags:            flags,
		BytesInUse:       inUse,
		BytesAllocated:   alloc,
		BaseRecord:       Reference(base),
		NextAttrInstance: nextAttr,
		RecordNumber:     number,
	}, nil
}

// ParseRecordCopy decodes the record over a private copy of b, leaving the
// caller's buffer free of fixup rewrites.
func ParseRecordCopy(b []byte, inode uint64) (*Record, error) {
	dup := make([]byte, len(b))
	copy(dup, b)
	return ParseRecord(dup, inode)
}

// IsActive reports whether the record is marked in use.
func (r *Record) IsActive() bool { return r.Flags&RecordFlagInUse != 0 }

// IsDirectory reports whether the record describes a directory.
func (r *Record) IsDirectory() bool { return r.Flags&RecordFlagDirectory != 0 }

// Attributes walks the attribute list. The walk starts at AttrsOffset and
// stops at the first 0 or 0xFFFFFFFF type sentinel, or when the next
// attribute's declared size would run past BytesInUse. A malformed attribute
// also ends the walk; it is logged, not surfaced, because everything decoded
// up to that point remains valid.
func (r *Record) Attributes() []Attribute {
	var attrs []Attribute
	off := int(r.AttrsOffset)
	limit := int(r.BytesInUse)
	for {
		typ, err := buf.Dword(r.raw, off)
		if err != nil || typ == 0 || typ == AttrEndSentinel {
			return attrs
		}
		size, err := buf.Dword(r.raw, off+AttrSizeOffset)
		if err != nil || size == 0 || off+int(size) > limit {
			return attrs
		}
		a, err := DecodeAttribute(r.raw, off)
		if err != nil {
			logging.Warn("malformed attribute", "inode", r.Inode, "offset", off, "err", err)
			return attrs
		}
		attrs = append(attrs, a)
		off += int(a.Size)
	}
}

// FindAttribute returns the first attribute of the given type, or false when
// the record has none.
func (r *Record) FindAttribute(typ AttrType) (Attribute, bool) {
	for _, a := range r.Attributes() {
		if a.Type == typ {
			return a, true
		}
	}
	return Attribute{}, false
}

// Filename returns the record's primary filename view. Records may carry one
// $FILE_NAME attribute per namespace; the Win32 and Win32+DOS names win,
// otherwise the last parseable one is returned. Individual malformed
// attributes are skipped so a damaged name cannot hide a later valid one.
func (r *Record) Filename() (FilenameAttribute, bool) {
	var fallback FilenameAttribute
	found := false
	for _, a := range r.Attributes() {
		if a.Type != AttrFilenameInformation {
			continue
		}
		res, err := a.Resident()
		if err != nil {
			logging.Debug("filename attribute not resident", "inode", r.Inode, "err", err)
			continue
		}
		fn, err := DecodeFilenameAttribute(res.Value(), 0)
		if err != nil {
			logging.Debug("filename attribute malformed", "inode", r.Inode, "err", err)
			continue
		}
		if fn.IsWin32() {
			return fn, true
		}
		fallback = fn
		found = true
	}
	return fallback, found
}

// StandardInformation returns the record's $STANDARD_INFORMATION view.
// Absence is reported with ok = false, distinct from a parse error.
func (r *Record) StandardInformation() (StandardInformation, bool, error) {
	a, ok := r.FindAttribute(AttrStandardInformation)
	if !ok {
		return StandardInformation{}, false, nil
	}
	res, err := a.Resident()
	if err != nil {
		return StandardInformation{}, true, err
	}
	si, err := DecodeStandardInformation(res.Value())
	if err != nil {
		return StandardInformation{}, true, err
	}
	return si, true, nil
}

// DataAttribute returns the record's unnamed default $DATA stream, or false
// when there is none.
func (r *Record) DataAttribute() (Attribute, bool) {
	for _, a := range r.Attributes() {
		if a.Type != AttrData {
			continue
		}
		name, err := a.Name()
		if err != nil {
			continue
		}
		if name == "" {
			return a, true
		}
	}
	return Attribute{}, false
}

// IndexRoot returns the record's $INDEX_ROOT header view, or false when the
// record is not a directory root.
func (r *Record) IndexRoot() (IndexRootHeader, bool, error) {
	a, ok := r.FindAttribute(AttrIndexRoot)
	if !ok {
		return IndexRootHeader{}, false, nil
	}
	res, err := a.Resident()
	if err != nil {
		return IndexRootHeader{}, true, err
	}
	root, err := DecodeIndexRootHeader(res.Value())
	if err != nil {
		return IndexRootHeader{}, true, err
	}
	return root, true, nil
}

// Raw exposes the post-fixup backing bytes of the record.
func (r *Record) Raw() []byte { return r.raw }
