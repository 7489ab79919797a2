// Package reader provides record traversal over the three input shapes the
// toolkit consumes: a raw $MFT extraction, an NTFS volume image, and an
// isolated INDX record. The exported entry points are used by the public
// facade to hand out parsed views without exposing the decoding machinery.
package reader

import (
	"errors"
	"fmt"

	"github.com/jcarver/mftkit/internal/buf"
	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/internal/logging"
	"github.com/jcarver/mftkit/internal/mmfile"
	"github.com/jcarver/mftkit/pkg/types"
)

// mftClusterOffset is where the boot sector stores the MFT's starting
// cluster, relative to the volume start.
const mftClusterOffset = 0x30

// defaultClusterSize is used in image mode when the options leave it zero.
const defaultClusterSize = 4096

// Stop ends a Records walk early without surfacing an error.
var Stop = errors.New("reader: stop iteration")

// Reader exposes record access over a single backing buffer. It is not safe
// for concurrent use: the path cache mutates on every lookup.
type Reader struct {
	buf    []byte
	unmap  func() error
	opts   types.Options
	window format.TimeWindow
	closed bool

	mftOffset  int64
	mftLocated bool

	paths *pathCache
}

// Open maps the file at path and returns a Reader over it.
func Open(path string, opts types.Options) (*Reader, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindState, Msg: "open input", Err: err}
	}
	r, err := New(data, opts)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	r.unmap = unmap
	return r, nil
}

// New creates a Reader backed by the provided buffer.
func New(b []byte, opts types.Options) (*Reader, error) {
	if opts.ClusterSize == 0 {
		opts.ClusterSize = defaultClusterSize
	}
	if opts.ClusterSize < 0 || opts.VolumeOffset < 0 {
		return nil, &types.Error{Kind: types.ErrKindState, Msg: "negative cluster size or volume offset"}
	}
	window := format.DefaultSlackWindow
	if !opts.SlackWindowMin.IsZero() {
		window.Min = opts.SlackWindowMin
	}
	if !opts.SlackWindowMax.IsZero() {
		window.Max = opts.SlackWindowMax
	}
	return &Reader{
		buf:    b,
		opts:   opts,
		window: window,
		paths:  newPathCache(pathCacheCapacity),
	}, nil
}

// Close releases the mapping if any. Views handed out earlier must not be
// used after Close.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.unmap != nil {
		return r.unmap()
	}
	return nil
}

func (r *Reader) ensureOpen() error {
	if r.closed {
		return &types.Error{Kind: types.ErrKindState, Msg: "reader is closed"}
	}
	return nil
}

// Options returns the effective options, defaults applied.
func (r *Reader) Options() types.Options { return r.opts }

// SlackWindow returns the effective slack recovery window.
func (r *Reader) SlackWindow() format.TimeWindow { return r.window }

// locateMFT resolves the MFT byte offset in image mode by reading the
// relative MFT cluster from the boot sector. The computation assumes a
// contiguous MFT; a fragmented one is under-read, which is warned once and
// recorded as out of scope.
func (r *Reader) locateMFT() error {
	if r.mftLocated {
		return nil
	}
	rel, err := buf.Qword(r.buf, int(r.opts.VolumeOffset)+mftClusterOffset)
	if err != nil {
		return WrapFormatErr(fmt.Errorf("boot sector mft cluster: %w", err))
	}
	r.mftOffset = r.opts.VolumeOffset + int64(rel)*r.opts.ClusterSize
	r.mftLocated = true
	logging.Debug("mft located", "offset", r.mftOffset, "cluster", rel)
	logging.Warn("reading MFT contiguously; a fragmented MFT will be under-read")
	return nil
}

// recordBase returns the byte offset of record 0 for the current shape.
func (r *Reader) recordBase() (int64, error) {
	switch r.opts.FileType {
	case types.FileTypeImage:
		if err := r.locateMFT(); err != nil {
			return 0, err
		}
		return r.mftOffset, nil
	default:
		return 0, nil
	}
}

// RecordBuf returns a private copy of the 1024-byte block for the given
// record number. The copy keeps fixup rewrites away from the shared (and
// possibly read-only mapped) backing buffer. An out-of-range number reports
// ErrInvalidRecordNumber; the indx shape has no records at all.
func (r *Reader) RecordBuf(number uint64) ([]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	if r.opts.FileType == types.FileTypeINDX {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: "indx input has no MFT records", Err: types.ErrInvalidRecordNumber}
	}
	base, err := r.recordBase()
	if err != nil {
		return nil, err
	}
	off := base + int64(number)*format.RecordSize
	raw, ok := buf.Slice(r.buf, int(off), format.RecordSize)
	if !ok {
		return nil, &types.Error{
			Kind: types.ErrKindNotFound,
			Msg:  fmt.Sprintf("record %d out of range", number),
			Err:  types.ErrInvalidRecordNumber,
		}
	}
	dup := make([]byte, format.RecordSize)
	copy(dup, raw)
	return dup, nil
}

// Record fetches and parses the record with the given number.
func (r *Reader) Record(number uint64) (*format.Record, error) {
	raw, err := r.RecordBuf(number)
	if err != nil {
		return nil, err
	}
	rec, err := format.ParseRecord(raw, number)
	if err != nil {
		return nil, WrapFormatErr(err)
	}
	return rec, nil
}

// Records walks every record in the stream in order, assigning inode numbers
// from 0. Records that fail to parse (bad magic, truncated, fixup overrun)
// are skipped and the counter still advances, so inode numbers stay aligned
// with block positions. fn may return Stop to end the walk early; any other
// error aborts and is returned.
func (r *Reader) Records(fn func(*format.Record) error) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if fn == nil {
		return errors.New("reader: nil records callback")
	}
	if r.opts.FileType == types.FileTypeINDX {
		return nil
	}
	base, err := r.recordBase()
	if err != nil {
		return err
	}
	for inode := uint64(0); ; inode++ {
		off := base + int64(inode)*format.RecordSize
		raw, ok := buf.Slice(r.buf, int(off), format.RecordSize)
		if !ok {
			return nil
		}
		dup := make([]byte, format.RecordSize)
		copy(dup, raw)
		rec, err := format.ParseRecord(dup, inode)
		if err != nil {
			logging.Debug("skipping unparseable record", "inode", inode, "err", err)
			continue
		}
		if err := fn(rec); err != nil {
			if errors.Is(err, Stop) {
				return nil
			}
			return err
		}
	}
}

// IndexNode parses the INDX allocation record at the start of the buffer and
// returns its node view. Fixup runs over a private copy.
func (r *Reader) IndexNode() (format.IndexNode, error) {
	if err := r.ensureOpen(); err != nil {
		return format.IndexNode{}, err
	}
	dup := make([]byte, len(r.buf))
	copy(dup, r.buf)
	hdr, err := format.DecodeIndexRecordHeader(dup)
	if err != nil {
		return format.IndexNode{}, WrapFormatErr(err)
	}
	node, err := hdr.Node()
	if err != nil {
		return format.IndexNode{}, WrapFormatErr(err)
	}
	return node, nil
}

// ReadRange reads length raw bytes at off from the backing image. Only the
// image shape supports raw reads; the other shapes report an empty result.
func (r *Reader) ReadRange(off, length int64) ([]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	if r.opts.FileType != types.FileTypeImage {
		return nil, nil
	}
	raw, err := buf.Bytes(r.buf, int(off), int(length))
	if err != nil {
		return nil, WrapFormatErr(err)
	}
	dup := make([]byte, len(raw))
	copy(dup, raw)
	return dup, nil
}

// WrapFormatErr converts internal decode errors into the public taxonomy.
func WrapFormatErr(err error) error {
	switch {
	case errors.Is(err, buf.ErrOverrun):
		return &types.Error{Kind: types.ErrKindOverrun, Msg: "buffer overrun", Err: err}
	case errors.Is(err, format.ErrSignatureMismatch):
		return &types.Error{Kind: types.ErrKindFormat, Msg: "signature mismatch", Err: err}
	case errors.Is(err, format.ErrInvalidAttribute):
		return &types.Error{Kind: types.ErrKindAttribute, Msg: "wrong attribute residency", Err: err}
	case errors.Is(err, format.ErrFieldAbsent):
		return &types.Error{Kind: types.ErrKindNotFound, Msg: "standard information field does not exist", Err: err}
	default:
		return &types.Error{Kind: types.ErrKindParse, Msg: err.Error(), Err: err}
	}
}
