package format

import (
	"encoding/binary"
	"time"
)

// Test buffer builders. All helpers write little-endian fields at the offsets
// named in consts.go so the tests stay honest about the on-disk layout.

func putW(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putD(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putQ(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:], v) }

func utc(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// validFiletime is a timestamp comfortably inside the default slack window.
var validFiletime = TimeToFiletime(utc(2005, 6, 15))

// buildFilenameValue assembles a FilenameAttribute view.
func buildFilenameValue(parent Reference, name string, namespace byte, filetime uint64) []byte {
	enc, err := EncodeUTF16LE(name)
	if err != nil {
		panic(err)
	}
	b := make([]byte, FilenameFixedSize+len(enc))
	putQ(b, FilenameParentRefOffset, uint64(parent))
	putQ(b, FilenameCreatedOffset, filetime)
	putQ(b, FilenameModifiedOffset, filetime)
	putQ(b, FilenameChangedOffset, filetime)
	putQ(b, FilenameAccessedOffset, filetime)
	putQ(b, FilenamePhysSizeOffset, 4096)
	putQ(b, FilenameLogSizeOffset, 1000)
	b[FilenameLengthOffset] = byte(len(enc) / 2)
	b[FilenameNamespaceOffset] = namespace
	copy(b[FilenameNameOffset:], enc)
	return b
}

// buildResidentAttr assembles a resident attribute with the given value.
func buildResidentAttr(typ AttrType, name string, value []byte) []byte {
	nameEnc, err := EncodeUTF16LE(name)
	if err != nil {
		panic(err)
	}
	nameOff := AttrResidentHeaderLen
	valueOff := nameOff + len(nameEnc)
	size := valueOff + len(value)
	if rem := size % AttrAlignment; rem != 0 {
		size += AttrAlignment - rem
	}
	b := make([]byte, size)
	putD(b, AttrTypeOffset, uint32(typ))
	putD(b, AttrSizeOffset, uint32(size))
	b[AttrNonResidentFlag] = 0
	b[AttrNameLengthOffset] = byte(len(nameEnc) / 2)
	putW(b, AttrNameOffsetOffset, uint16(nameOff))
	putD(b, AttrValueLengthOffset, uint32(len(value)))
	putW(b, AttrValueOffsetOffset, uint16(valueOff))
	copy(b[nameOff:], nameEnc)
	copy(b[valueOff:], value)
	return b
}

// buildNonResidentAttr assembles a non-resident attribute around a runlist.
func buildNonResidentAttr(typ AttrType, runlist []byte) []byte {
	runOff := 0x48
	size := runOff + len(runlist)
	if rem := size % AttrAlignment; rem != 0 {
		size += AttrAlignment - rem
	}
	b := make([]byte, size)
	putD(b, AttrTypeOffset, uint32(typ))
	putD(b, AttrSizeOffset, uint32(size))
	b[AttrNonResidentFlag] = 1
	putQ(b, AttrLowestVCNOffset, 0)
	putQ(b, AttrHighestVCNOffset, 7)
	putW(b, AttrRunlistOffOffset, uint16(runOff))
	putQ(b, AttrAllocSizeOffset, 8*4096)
	putQ(b, AttrDataSizeOffset, 8*4096-100)
	putQ(b, AttrInitSizeOffset, 8*4096-100)
	copy(b[runOff:], runlist)
	return b
}

// recordSpec configures buildRecord.
type recordSpec struct {
	number   uint32
	sequence uint16
	links    uint16
	flags    uint16
	attrs    [][]byte
}

// buildRecord assembles a 1024-byte MFT record with the given attributes laid
// out from RecordHeaderSize and terminated with the end sentinel. The update
// sequence count is zero so fixup is a no-op.
func buildRecord(spec recordSpec) []byte {
	b := make([]byte, RecordSize)
	putD(b, RecordMagicOffset, RecordMagic)
	putW(b, RecordUSAOffsetOffset, RecordHeaderSize)
	putW(b, RecordUSACountOffset, 0)
	putQ(b, RecordLSNOffset, 0x1000+uint64(spec.number))
	putW(b, RecordSeqNumberOffset, spec.sequence)
	putW(b, RecordLinkCountOffset, spec.links)
	putW(b, RecordFlagsOffset, spec.flags)
	putD(b, RecordBytesAllocOffset, RecordSize)
	putD(b, RecordNumberOffset, spec.number)

	attrsOff := RecordHeaderSize + 8 // leave room for the phantom USA slot
	putW(b, RecordAttrsOffset, uint16(attrsOff))
	off := attrsOff
	for _, attr := range spec.attrs {
		copy(b[off:], attr)
		off += len(attr)
	}
	putD(b, off, AttrEndSentinel)
	putD(b, RecordBytesInUseOffset, uint32(off+8))
	return b
}
