package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrParse indicates a structural mismatch while decoding a record,
	// attribute, or index entry.
	ErrParse = errors.New("format: structure parse failed")
	// ErrInvalidAttribute indicates resident fields were requested from a
	// non-resident attribute or vice versa. This is a caller contract
	// violation, not on-disk corruption.
	ErrInvalidAttribute = errors.New("format: wrong attribute residency")
	// ErrFieldAbsent indicates an optional post-Win2k standard-information
	// field was requested from a record too short to contain it.
	ErrFieldAbsent = errors.New("format: standard information field does not exist")
	// ErrFiletimeRange indicates a FILETIME value outside the representable
	// calendar range.
	ErrFiletimeRange = errors.New("format: filetime out of range")
)
