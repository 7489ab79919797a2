package format

import (
	"fmt"

	"github.com/jcarver/mftkit/internal/buf"
	"github.com/jcarver/mftkit/internal/logging"
)

// Fixup applies the update sequence array to a multi-sector block in place.
// The trailing word of each 512-byte sector is compared against the sentinel
// stored at usaOffset; on a match it is replaced with the true word from the
// array at usaOffset+2+2i. A mismatched sector is logged and left in
// placeholder form; only the matching sectors are rewritten, so a torn write
// surfaces as a warning rather than an error.
//
// Fixup mutates b and is idempotent for a given record: once a sector tail
// holds its true value it no longer equals the sentinel, so a second pass
// leaves it alone. Callers that need the pre-fixup bytes must use FixupCopy.
func Fixup(b []byte, usaCount, usaOffset int) error {
	sentinel, err := buf.Word(b, usaOffset)
	if err != nil {
		return fmt.Errorf("fixup sentinel: %w", err)
	}

	for i := 0; i < usaCount-1; i++ {
		tail := SectorSize*(i+1) - 2
		check, err := buf.Word(b, tail)
		if err != nil {
			return fmt.Errorf("fixup sector %d: %w", i, err)
		}
		if check != sentinel {
			logging.Warn("bad fixup", "sector", i, "offset", tail, "want", sentinel, "got", check)
			continue
		}
		repl, err := buf.Word(b, usaOffset+2+2*i)
		if err != nil {
			return fmt.Errorf("fixup replacement %d: %w", i, err)
		}
		if err := buf.PutWord(b, tail, repl); err != nil {
			return fmt.Errorf("fixup write %d: %w", i, err)
		}
		logging.Debug("fixup patched", "sector", i, "offset", tail, "value", repl)
	}
	return nil
}

// FixupCopy returns a fixed-up private copy of b, leaving the original
// untouched.
func FixupCopy(b []byte, usaCount, usaOffset int) ([]byte, error) {
	dup := make([]byte, len(b))
	copy(dup, b)
	if err := Fixup(dup, usaCount, usaOffset); err != nil {
		return nil, err
	}
	return dup, nil
}
