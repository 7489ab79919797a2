package format

import (
	"fmt"
	"time"

	"github.com/jcarver/mftkit/internal/buf"
)

// FilenameAttribute is a view over the resident value of a $FILE_NAME
// attribute (and over the key of a directory index entry, which carries the
// same layout).
//
//	Offset  Size  Field
//	0x00    8     Parent MFT reference
//	0x08    8     Created time (FILETIME)
//	0x10    8     Modified time
//	0x18    8     MFT-changed time
//	0x20    8     Accessed time
//	0x28    8     Physical (allocated) size
//	0x30    8     Logical size
//	0x38    4     Flags
//	0x3C    4     Reparse value
//	0x40    1     Filename length in UTF-16 code units
//	0x41    1     Filename namespace
//	0x42    n*2   Filename, UTF-16LE
type FilenameAttribute struct {
	ParentReference Reference
	CreatedRaw      uint64
	ModifiedRaw     uint64
	ChangedRaw      uint64
	AccessedRaw     uint64
	PhysicalSize    uint64
	LogicalSize     uint64
	Flags           uint32
	ReparseValue    uint32
	FilenameLength  uint8
	FilenameType    uint8

	nameRaw []byte
}

// DecodeFilenameAttribute decodes a filename attribute view at off within b.
func DecodeFilenameAttribute(b []byte, off int) (FilenameAttribute, error) {
	parent, err := buf.Qword(b, off+FilenameParentRefOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename parent: %w", err)
	}
	created, err := buf.Qword(b, off+FilenameCreatedOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename created: %w", err)
	}
	modified, err := buf.Qword(b, off+FilenameModifiedOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename modified: %w", err)
	}
	changed, err := buf.Qword(b, off+FilenameChangedOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename changed: %w", err)
	}
	accessed, err := buf.Qword(b, off+FilenameAccessedOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename accessed: %w", err)
	}
	physical, err := buf.Qword(b, off+FilenamePhysSizeOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename physical size: %w", err)
	}
	logical, err := buf.Qword(b, off+FilenameLogSizeOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename logical size: %w", err)
	}
	flags, err := buf.Dword(b, off+FilenameFlagsOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename flags: %w", err)
	}
	reparse, err := buf.Dword(b, off+FilenameReparseOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename reparse: %w", err)
	}
	nameLen, err := buf.Byte(b, off+FilenameLengthOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename length: %w", err)
	}
	nameType, err := buf.Byte(b, off+FilenameNamespaceOffset)
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename namespace: %w", err)
	}
	nameRaw, err := buf.Wstring(b, off+FilenameNameOffset, int(nameLen))
	if err != nil {
		return FilenameAttribute{}, fmt.Errorf("filename: %w", err)
	}
	return FilenameAttribute{
		ParentReference: Reference(parent),
		CreatedRaw:      created,
		ModifiedRaw:     modified,
		ChangedRaw:      changed,
		AccessedRaw:     accessed,
		PhysicalSize:    physical,
		LogicalSize:     logical,
		Flags:           flags,
		ReparseValue:    reparse,
		FilenameLength:  nameLen,
		FilenameType:    nameType,
		nameRaw:         nameRaw,
	}, nil
}

// StructureSize reports the total size of the filename attribute view at off
// within b: the fixed header plus the variable-width name.
func StructureSize(b []byte, off int) (int, error) {
	nameLen, err := buf.Byte(b, off+FilenameLengthOffset)
	if err != nil {
		return 0, fmt.Errorf("filename length: %w", err)
	}
	return FilenameFixedSize + 2*int(nameLen), nil
}

// Len returns the view's total size in bytes.
func (f FilenameAttribute) Len() int {
	return FilenameFixedSize + 2*int(f.FilenameLength)
}

// Filename decodes the UTF-16LE name.
func (f FilenameAttribute) Filename() (string, error) {
	return DecodeUTF16LE(f.nameRaw)
}

// IsWin32 reports whether the name lives in the Win32 or Win32+DOS
// namespace.
func (f FilenameAttribute) IsWin32() bool {
	return f.FilenameType == NamespaceWin32 || f.FilenameType == NamespaceWin32DOS
}

// CreatedTime returns the creation timestamp.
func (f FilenameAttribute) CreatedTime() (time.Time, error) {
	return FiletimeToTime(f.CreatedRaw)
}

// ModifiedTime returns the last data modification timestamp.
func (f FilenameAttribute) ModifiedTime() (time.Time, error) {
	return FiletimeToTime(f.ModifiedRaw)
}

// ChangedTime returns the MFT-entry change timestamp.
func (f FilenameAttribute) ChangedTime() (time.Time, error) {
	return FiletimeToTime(f.ChangedRaw)
}

// AccessedTime returns the last access timestamp.
func (f FilenameAttribute) AccessedTime() (time.Time, error) {
	return FiletimeToTime(f.AccessedRaw)
}
