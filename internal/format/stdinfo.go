package format

import (
	"fmt"
	"time"

	"github.com/jcarver/mftkit/internal/buf"
)

// StandardInformation is a view over the resident value of a
// $STANDARD_INFORMATION attribute.
//
//	Offset  Size  Field
//	0x00    8     Created time (FILETIME)
//	0x08    8     Modified time
//	0x10    8     MFT-changed time
//	0x18    8     Accessed time
//	0x20    4     DOS attributes
//	0x24    12    Reserved
//	0x30    4     Owner ID (Win2k+)
//	0x34    4     Security ID (Win2k+)
//	0x38    8     Quota charged (Win2k+)
//	0x40    8     USN (Win2k+)
//
// Records written before Win2k stop at 0x30. The optional accessors report
// ErrFieldAbsent for those rather than inventing zeroes.
type StandardInformation struct {
	raw []byte

	CreatedRaw  uint64
	ModifiedRaw uint64
	ChangedRaw  uint64
	AccessedRaw uint64
	Attributes  uint32
}

// DecodeStandardInformation decodes the fixed prefix of a standard
// information value.
func DecodeStandardInformation(b []byte) (StandardInformation, error) {
	created, err := buf.Qword(b, StdInfoCreatedOffset)
	if err != nil {
		return StandardInformation{}, fmt.Errorf("stdinfo created: %w", err)
	}
	modified, err := buf.Qword(b, StdInfoModifiedOffset)
	if err != nil {
		return StandardInformation{}, fmt.Errorf("stdinfo modified: %w", err)
	}
	changed, err := buf.Qword(b, StdInfoChangedOffset)
	if err != nil {
		return StandardInformation{}, fmt.Errorf("stdinfo changed: %w", err)
	}
	accessed, err := buf.Qword(b, StdInfoAccessedOffset)
	if err != nil {
		return StandardInformation{}, fmt.Errorf("stdinfo accessed: %w", err)
	}
	attrs, err := buf.Dword(b, StdInfoAttributesOffset)
	if err != nil {
		return StandardInformation{}, fmt.Errorf("stdinfo attributes: %w", err)
	}
	return StandardInformation{
		raw:         b,
		CreatedRaw:  created,
		ModifiedRaw: modified,
		ChangedRaw:  changed,
		AccessedRaw: accessed,
		Attributes:  attrs,
	}, nil
}

// CreatedTime returns the creation timestamp.
func (s StandardInformation) CreatedTime() (time.Time, error) {
	return FiletimeToTime(s.CreatedRaw)
}

// ModifiedTime returns the last data modification timestamp.
func (s StandardInformation) ModifiedTime() (time.Time, error) {
	return FiletimeToTime(s.ModifiedRaw)
}

// ChangedTime returns the MFT-entry change timestamp.
func (s StandardInformation) ChangedTime() (time.Time, error) {
	return FiletimeToTime(s.ChangedRaw)
}

// AccessedTime returns the last access timestamp.
func (s StandardInformation) AccessedTime() (time.Time, error) {
	return FiletimeToTime(s.AccessedRaw)
}

func (s StandardInformation) optionalDword(off int, name string) (uint32, error) {
	v, err := buf.Dword(s.raw, off)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrFieldAbsent, name)
	}
	return v, nil
}

func (s StandardInformation) optionalQword(off int, name string) (uint64, error) {
	v, err := buf.Qword(s.raw, off)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrFieldAbsent, name)
	}
	return v, nil
}

// OwnerID returns the Win2k+ owner id, or ErrFieldAbsent on short records.
func (s StandardInformation) OwnerID() (uint32, error) {
	return s.optionalDword(StdInfoOwnerIDOffset, "owner id")
}

// SecurityID returns the Win2k+ security id, or ErrFieldAbsent on short
// records.
func (s StandardInformation) SecurityID() (uint32, error) {
	return s.optionalDword(StdInfoSecurityIDOffset, "security id")
}

// QuotaCharged returns the Win2k+ quota charge, or ErrFieldAbsent on short
// records.
func (s StandardInformation) QuotaCharged() (uint64, error) {
	return s.optionalQword(StdInfoQuotaOffset, "quota charged")
}

// USN returns the Win2k+ update sequence number, or ErrFieldAbsent on short
// records.
func (s StandardInformation) USN() (uint64, error) {
	return s.optionalQword(StdInfoUSNOffset, "usn")
}
