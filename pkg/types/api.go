// Package types defines the public error taxonomy, configuration, and
// metadata structs of the MFT parsing toolkit. Keeping them separate from the
// facade lets internal packages return public errors without import cycles.
package types

import (
	"time"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat    ErrKind = iota // malformed headers/signatures (e.g., bad "FILE" magic)
	ErrKindOverrun                  // a field access ran past the backing buffer
	ErrKindParse                    // structural mismatch below the header level
	ErrKindAttribute                // wrong residency variant requested from an attribute
	ErrKindNotFound                 // missing record, attribute, or optional field
	ErrKindState                    // invalid operation for current state (e.g., closed handle)
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations.
var (
	// ErrNotMFTRecord indicates a block without the "FILE" magic.
	ErrNotMFTRecord = &Error{Kind: ErrKindFormat, Msg: "not an MFT record (bad FILE magic)"}
	// ErrOverrunBuffer indicates a field access past the end of its buffer.
	ErrOverrunBuffer = &Error{Kind: ErrKindOverrun, Msg: "buffer overrun"}
	// ErrParse indicates a structural mismatch while decoding.
	ErrParse = &Error{Kind: ErrKindParse, Msg: "structure parse failed"}
	// ErrInvalidAttribute indicates the wrong residency variant was requested.
	ErrInvalidAttribute = &Error{Kind: ErrKindAttribute, Msg: "wrong attribute residency"}
	// ErrInvalidRecordNumber indicates a record number outside the stream.
	ErrInvalidRecordNumber = &Error{Kind: ErrKindNotFound, Msg: "invalid MFT record number"}
	// ErrFieldNotPresent indicates an optional standard-information field
	// requested from a short record.
	ErrFieldNotPresent = &Error{Kind: ErrKindNotFound, Msg: "standard information field does not exist"}
	// ErrNotFound indicates a missing record or path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// FileType selects the shape of the input buffer.
type FileType int

const (
	// FileTypeMFT is a raw $MFT file: consecutive 1024-byte records from
	// offset 0.
	FileTypeMFT FileType = iota
	// FileTypeImage is an NTFS volume image; the MFT location is computed
	// from the boot sector.
	FileTypeImage
	// FileTypeINDX is an isolated INDX allocation record.
	FileTypeINDX
)

// String implements fmt.Stringer for FileType.
func (t FileType) String() string {
	switch t {
	case FileTypeMFT:
		return "mft"
	case FileTypeImage:
		return "image"
	case FileTypeINDX:
		return "indx"
	}
	return "unknown"
}

// ParseFileType maps the conventional flag spellings onto a FileType.
func ParseFileType(s string) (FileType, bool) {
	switch s {
	case "mft":
		return FileTypeMFT, true
	case "image":
		return FileTypeImage, true
	case "indx":
		return FileTypeINDX, true
	}
	return 0, false
}

// Options configures parsing. The zero value selects the mft shape with
// defaults applied by the opener.
type Options struct {
	// FileType selects the input shape.
	FileType FileType

	// ClusterSize is the bytes-per-cluster used to locate the MFT in image
	// mode. Default 4096.
	ClusterSize int64

	// VolumeOffset is the byte offset of the NTFS partition inside an image.
	// Default 0.
	VolumeOffset int64

	// PathPrefix is prepended to reconstructed paths. When empty the volume
	// root renders as `\.`.
	PathPrefix string

	// SlackWindowMin and SlackWindowMax bound the timestamps a recovered
	// slack entry may carry. Zero values select 1990-01-01 and 2025-01-01
	// UTC. The window is a recovery filter, not a property of NTFS.
	SlackWindowMin time.Time
	SlackWindowMax time.Time
}

// -----------------------------------------------------------------------------
// Metadata structs
// -----------------------------------------------------------------------------

// Timestamps collects the four NTFS timestamps of a record or filename.
type Timestamps struct {
	Created  time.Time
	Modified time.Time
	Changed  time.Time
	Accessed time.Time
}

// RecordMeta is a plain snapshot of an MFT record header for callers that do
// not want to hold a view over the backing buffer.
type RecordMeta struct {
	Inode          uint64
	RecordNumber   uint64
	SequenceNumber uint16
	LinkCount      uint16
	Active         bool
	Directory      bool
	BytesInUse     uint32
	BytesAllocated uint32
}

// FilenameMeta is a plain snapshot of a filename attribute.
type FilenameMeta struct {
	Name         string
	Namespace    uint8
	ParentRecord uint64
	ParentSeq    uint16
	PhysicalSize uint64
	LogicalSize  uint64
	Times        Timestamps
}

// StandardInfoMeta is a plain snapshot of a $STANDARD_INFORMATION attribute.
// The post-Win2k fields are only meaningful when HasWin2kFields is set.
type StandardInfoMeta struct {
	Times          Timestamps
	DOSAttributes  uint32
	HasWin2kFields bool
	OwnerID        uint32
	SecurityID     uint32
	QuotaCharged   uint64
	USN            uint64
}

// ClusterRun is one decoded runlist entry with its offset resolved to an
// absolute cluster number. A sparse run (zero delta, nonzero Length)
// repeats the previous run's absolute Offset.
type ClusterRun struct {
	Offset int64
	Length uint64
}

// IndexEntryMeta is a plain snapshot of a directory index entry. Slack is
// set on entries recovered from the deallocated tail of an index buffer.
type IndexEntryMeta struct {
	RecordNumber   uint64
	SequenceNumber uint16
	Filename       FilenameMeta
	Slack          bool
	NodeOffset     int
}
