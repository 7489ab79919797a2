package reader

import (
	"encoding/binary"

	"github.com/jcarver/mftkit/internal/format"
)

// Test stream builders. Records are laid out so that a record's position in
// the stream equals its record number, which is what by-number access
// assumes.

func putW(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putD(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putQ(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:], v) }

var testFiletime = format.TimeToFiletime(format.DefaultSlackWindow.Min.AddDate(10, 0, 0))

func filenameValue(parentRecord uint64, parentSeq uint16, name string) []byte {
	enc, err := format.EncodeUTF16LE(name)
	if err != nil {
		panic(err)
	}
	b := make([]byte, format.FilenameFixedSize+len(enc))
	putQ(b, format.FilenameParentRefOffset, parentRecord|uint64(parentSeq)<<48)
	putQ(b, format.FilenameCreatedOffset, testFiletime)
	putQ(b, format.FilenameModifiedOffset, testFiletime)
	putQ(b, format.FilenameChangedOffset, testFiletime)
	putQ(b, format.FilenameAccessedOffset, testFiletime)
	b[format.FilenameLengthOffset] = byte(len(enc) / 2)
	b[format.FilenameNamespaceOffset] = format.NamespaceWin32
	copy(b[format.FilenameNameOffset:], enc)
	return b
}

func residentAttr(typ format.AttrType, value []byte) []byte {
	valueOff := format.AttrResidentHeaderLen
	size := valueOff + len(value)
	if rem := size % format.AttrAlignment; rem != 0 {
		size += format.AttrAlignment - rem
	}
	b := make([]byte, size)
	putD(b, format.AttrTypeOffset, uint32(typ))
	putD(b, format.AttrSizeOffset, uint32(size))
	putW(b, format.AttrValueOffsetOffset, uint16(valueOff))
	putD(b, format.AttrValueLengthOffset, uint32(len(value)))
	copy(b[valueOff:], value)
	return b
}

type recSpec struct {
	number   uint32
	sequence uint16
	flags    uint16
	attrs    [][]byte
}

func record(spec recSpec) []byte {
	b := make([]byte, format.RecordSize)
	putD(b, format.RecordMagicOffset, format.RecordMagic)
	putW(b, format.RecordUSAOffsetOffset, format.RecordHeaderSize)
	putW(b, format.RecordUSACountOffset, 0)
	putQ(b, format.RecordLSNOffset, 0x5000+uint64(spec.number))
	putW(b, format.RecordSeqNumberOffset, spec.sequence)
	putW(b, format.RecordLinkCountOffset, 1)
	putW(b, format.RecordFlagsOffset, spec.flags)
	putD(b, format.RecordBytesAllocOffset, format.RecordSize)
	putD(b, format.RecordNumberOffset, spec.number)

	attrsOff := format.RecordHeaderSize + 8
	putW(b, format.RecordAttrsOffset, uint16(attrsOff))
	off := attrsOff
	for _, attr := range spec.attrs {
		copy(b[off:], attr)
		off += len(attr)
	}
	putD(b, off, format.AttrEndSentinel)
	putD(b, format.RecordBytesInUseOffset, uint32(off+8))
	return b
}

// fileRecord is a convenience for an active record with a single Win32 name.
func fileRecord(number uint32, sequence uint16, parent uint64, parentSeq uint16, name string, flags uint16) []byte {
	return record(recSpec{
		number:   number,
		sequence: sequence,
		flags:    flags,
		attrs:    [][]byte{residentAttr(format.AttrFilenameInformation, filenameValue(parent, parentSeq, name))},
	})
}

// stream assembles consecutive records into one buffer. Slots left nil become
// zeroed blocks that fail the magic check.
func stream(records ...[]byte) []byte {
	out := make([]byte, len(records)*format.RecordSize)
	for i, rec := range records {
		if rec == nil {
			continue
		}
		copy(out[i*format.RecordSize:], rec)
	}
	return out
}
