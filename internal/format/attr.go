package format

import (
	"fmt"

	"github.com/jcarver/mftkit/internal/buf"
)

// Attribute captures the header of one MFT record attribute plus the slice of
// the record that backs it. The resident value body and the non-resident
// runlist stay in the backing buffer; accessors borrow, never copy.
//
// Common header layout (little-endian):
//
//	Offset  Size  Field
//	0x00    4     Type
//	0x04    4     Size (rounded up to a multiple of 8)
//	0x08    1     Non-resident flag
//	0x09    1     Name length (UTF-16 code units)
//	0x0A    2     Name offset
//	0x0C    2     Flags
//	0x0E    2     Instance
//
// Resident variant continues with value length/offset/flags at 0x10; the
// non-resident variant with VCN bounds, runlist offset, compression unit and
// the four 64-bit sizes.
type Attribute struct {
	raw []byte // attribute header + body, sliced from the record

	Type        AttrType
	Size        uint32 // rounded up to AttrAlignment
	NonResident bool
	NameLength  uint8
	NameOffset  uint16
	Flags       uint16
	Instance    uint16
}

// ResidentAttr exposes the resident-variant fields of an attribute.
type ResidentAttr struct {
	ValueLength uint32
	ValueOffset uint16
	ValueFlags  uint8

	value []byte
}

// Value borrows the resident value body.
func (r ResidentAttr) Value() []byte { return r.value }

// NonResidentAttr exposes the non-resident-variant fields of an attribute.
type NonResidentAttr struct {
	LowestVCN       uint64
	HighestVCN      uint64
	RunlistOffset   uint16
	CompressionUnit uint8
	AllocatedSize   uint64
	DataSize        uint64
	InitializedSize uint64
	CompressedSize  uint64

	runlist []byte
}

// Runlist returns the runlist decoder positioned at the attribute's runlist
// offset.
func (n NonResidentAttr) Runlist() Runlist { return Runlist{raw: n.runlist} }

// DecodeAttribute decodes the attribute at off within record buffer b. The
// returned attribute borrows from b.
func DecodeAttribute(b []byte, off int) (Attribute, error) {
	typ, err := buf.Dword(b, off+AttrTypeOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr type: %w", err)
	}
	rawSize, err := buf.Dword(b, off+AttrSizeOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr size: %w", err)
	}
	size := rawSize
	if rem := size % AttrAlignment; rem != 0 {
		size += AttrAlignment - rem
	}
	if size == 0 || !buf.Has(b, off, int(size)) {
		return Attribute{}, fmt.Errorf("attr size %d at %#x: %w", size, off, ErrParse)
	}
	nonRes, err := buf.Byte(b, off+AttrNonResidentFlag)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr residency: %w", err)
	}
	nameLen, err := buf.Byte(b, off+AttrNameLengthOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr name length: %w", err)
	}
	nameOff, err := buf.Word(b, off+AttrNameOffsetOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr name offset: %w", err)
	}
	flags, err := buf.Word(b, off+AttrFlagsOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr flags: %w", err)
	}
	instance, err := buf.Word(b, off+AttrInstanceOffset)
	if err != nil {
		return Attribute{}, fmt.Errorf("attr instance: %w", err)
	}

	raw, err := buf.Bytes(b, off, int(size))
	if err != nil {
		return Attribute{}, fmt.Errorf("attr body: %w", err)
	}
	return Attribute{
		raw:         raw,
		Type:        AttrType(typ),
		Size:        size,
		NonResident: nonRes != 0,
		NameLength:  nameLen,
		NameOffset:  nameOff,
		Flags:       flags,
		Instance:    instance,
	}, nil
}

// Name decodes the attribute's UTF-16LE name. The unnamed default stream
// yields "".
func (a Attribute) Name() (string, error) {
	if a.NameLength == 0 {
		return "", nil
	}
	raw, err := buf.Wstring(a.raw, int(a.NameOffset), int(a.NameLength))
	if err != nil {
		return "", fmt.Errorf("attr name: %w", err)
	}
	return DecodeUTF16LE(raw)
}

// Resident returns the resident-variant view. Calling it on a non-resident
// attribute is a contract violation and reports ErrInvalidAttribute.
func (a Attribute) Resident() (ResidentAttr, error) {
	if a.NonResident {
		return ResidentAttr{}, fmt.Errorf("%w: attribute %s is non-resident", ErrInvalidAttribute, a.Type)
	}
	length, err := buf.Dword(a.raw, AttrValueLengthOffset)
	if err != nil {
		return ResidentAttr{}, fmt.Errorf("attr value length: %w", err)
	}
	off, err := buf.Word(a.raw, AttrValueOffsetOffset)
	if err != nil {
		return ResidentAttr{}, fmt.Errorf("attr value offset: %w", err)
	}
	vflags, err := buf.Byte(a.raw, AttrValueFlagsOffset)
	if err != nil {
		return ResidentAttr{}, fmt.Errorf("attr value flags: %w", err)
	}
	value, err := buf.Bytes(a.raw, int(off), int(length))
	if err != nil {
		return ResidentAttr{}, fmt.Errorf("attr value: %w", err)
	}
	return ResidentAttr{
		ValueLength: length,
		ValueOffset: off,
		ValueFlags:  vflags,
		value:       value,
	}, nil
}

// NonResidentFields returns the non-resident-variant view. Calling it on a
// resident attribute is a contract violation and reports ErrInvalidAttribute.
func (a Attribute) NonResidentFields() (NonResidentAttr, error) {
	if !a.NonResident {
		return NonResidentAttr{}, fmt.Errorf("%w: attribute %s is resident", ErrInvalidAttribute, a.Type)
	}
	if len(a.raw) < AttrNonResidentMinSize {
		return NonResidentAttr{}, fmt.Errorf("non-resident header: %w", ErrParse)
	}
	lowest, err := buf.Qword(a.raw, AttrLowestVCNOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr lowest vcn: %w", err)
	}
	highest, err := buf.Qword(a.raw, AttrHighestVCNOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr highest vcn: %w", err)
	}
	runOff, err := buf.Word(a.raw, AttrRunlistOffOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr runlist offset: %w", err)
	}
	cunit, err := buf.Byte(a.raw, AttrCompressionOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr compression unit: %w", err)
	}
	alloc, err := buf.Qword(a.raw, AttrAllocSizeOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr allocated size: %w", err)
	}
	data, err := buf.Qword(a.raw, AttrDataSizeOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr data size: %w", err)
	}
	initialized, err := buf.Qword(a.raw, AttrInitSizeOffset)
	if err != nil {
		return NonResidentAttr{}, fmt.Errorf("attr initialized size: %w", err)
	}
	// The compressed size field is only present for compressed attributes;
	// short headers leave it zero.
	compressed, _ := buf.Qword(a.raw, AttrCompressedOffset)

	runlist := a.raw[min(int(runOff), len(a.raw)):]
	return NonResidentAttr{
		LowestVCN:       lowest,
		HighestVCN:      highest,
		RunlistOffset:   runOff,
		CompressionUnit: cunit,
		AllocatedSize:   alloc,
		DataSize:        data,
		InitializedSize: initialized,
		CompressedSize:  compressed,
		runlist:         runlist,
	}, nil
}
