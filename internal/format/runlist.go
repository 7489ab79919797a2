package format

import (
	"github.com/jcarver/mftkit/internal/buf"
	"github.com/jcarver/mftkit/internal/logging"
)

// Run is one decoded runlist entry with its offset resolved to an absolute
// cluster number. A sparse run (zero delta, nonzero Length) repeats the
// previous run's absolute Offset.
type Run struct {
	Offset int64  // absolute volume offset in clusters
	Length uint64 // run length in clusters
}

// Runlist decodes the compact run encoding of a non-resident attribute.
//
// Each entry starts with a header byte: the high nibble is the byte width of
// the signed cluster-offset delta, the low nibble the byte width of the
// unsigned cluster count. The delta is relative to the previous entry's
// absolute offset (0 for the first entry) and is sign-extended from its byte
// width. A zero header byte, or an entry with either nibble zero, ends the
// list.
type Runlist struct {
	raw []byte
}

// NewRunlist wraps raw runlist bytes.
func NewRunlist(raw []byte) Runlist { return Runlist{raw: raw} }

// Runs decodes all entries, resolving relative deltas to absolute cluster
// offsets. Malformed entries end iteration; they are never surfaced as
// errors because a truncated runlist is ordinary slack.
func (rl Runlist) Runs() []Run {
	var runs []Run
	off := 0
	prev := int64(0)
	for {
		header, err := buf.Byte(rl.raw, off)
		if err != nil || header == 0 {
			return runs
		}
		offsetLen := int(header >> 4)
		lengthLen := int(header & 0xF)
		if offsetLen == 0 || lengthLen == 0 {
			logging.Debug("runlist entry invalid", "offset", off, "header", header)
			return runs
		}
		lengthRaw, err := buf.Bytes(rl.raw, off+1, lengthLen)
		if err != nil {
			return runs
		}
		offsetRaw, err := buf.Bytes(rl.raw, off+1+lengthLen, offsetLen)
		if err != nil {
			return runs
		}
		delta := buf.SvarLE(offsetRaw)
		prev += delta
		runs = append(runs, Run{Offset: prev, Length: buf.UvarLE(lengthRaw)})
		off += 1 + lengthLen + offsetLen
	}
}

// AppendRunEntry encodes one runlist entry with the given widths onto dst.
// It exists for the encode/decode law in the tests; the parser itself never
// writes runlists.
func AppendRunEntry(dst []byte, delta int64, length uint64, offsetLen, lengthLen int) []byte {
	dst = append(dst, byte(offsetLen<<4|lengthLen))
	for i := 0; i < lengthLen; i++ {
		dst = append(dst, byte(length>>(8*i)))
	}
	for i := 0; i < offsetLen; i++ {
		dst = append(dst, byte(uint64(delta)>>(8*i)))
	}
	return dst
}
