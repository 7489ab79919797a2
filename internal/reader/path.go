package reader

import (
	"strings"

	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/internal/logging"
	"github.com/jcarver/mftkit/pkg/types"
)

// rootRecordNumber is the MFT record of the volume root directory.
const rootRecordNumber = 0x0005

// Path markers for records whose parent chain cannot be followed.
const (
	unknownPath  = `\??`
	orphanPrefix = `\$OrphanFiles\`
	cycleMarker  = `\<CYCLE>`
)

// BuildPath reconstructs the backslash-delimited path of rec by walking its
// parent references. The result is never an error: records without a usable
// filename render as `\??`, records whose parent slot has been reallocated
// land under `\$OrphanFiles\`, and a reference loop terminates with
// `\<CYCLE>`. Results are memoized per record identity.
func (r *Reader) BuildPath(rec *format.Record) string {
	return r.buildPath(rec, make(map[uint64]bool))
}

func (r *Reader) buildPath(rec *format.Record, visited map[uint64]bool) string {
	key := pathKey{
		magic:        rec.Magic,
		lsn:          rec.LSN,
		linkCount:    rec.LinkCount,
		recordNumber: rec.RecordNumber,
		flags:        rec.Flags,
	}
	if path, ok := r.paths.lookup(key); ok {
		return path
	}
	path := r.resolvePath(rec, visited)
	r.paths.store(key, path)
	return path
}

func (r *Reader) resolvePath(rec *format.Record, visited map[uint64]bool) string {
	recNum := uint64(rec.RecordNumber) & format.ReferenceMask
	if recNum == rootRecordNumber {
		if r.opts.PathPrefix != "" {
			return r.opts.PathPrefix
		}
		return `\.`
	}

	fn, ok := rec.Filename()
	if !ok {
		return unknownPath
	}
	name, err := fn.Filename()
	if err != nil {
		logging.Debug("filename decode failed", "record", recNum, "err", err)
		return unknownPath
	}

	parentNum := fn.ParentReference.RecordNumber()
	parentBuf, err := r.RecordBuf(parentNum)
	if err != nil {
		return unknownPath + `\` + name
	}
	parent, err := format.ParseRecord(parentBuf, parentNum)
	if err != nil {
		logging.Debug("parent record unparseable", "record", recNum, "parent", parentNum, "err", err)
		return unknownPath + `\` + name
	}
	if parent.SequenceNumber != fn.ParentReference.SequenceNumber() {
		return orphanPrefix + name
	}
	if visited[recNum] {
		logging.Debug("cycle detected", "record", recNum)
		return r.opts.PathPrefix + cycleMarker
	}
	visited[recNum] = true
	return r.buildPath(parent, visited) + `\` + name
}

// FindByPath scans active records for one whose reconstructed path equals
// path, compared case-insensitively. It reports types.ErrNotFound when the
// walk completes without a match.
func (r *Reader) FindByPath(path string) (*format.Record, error) {
	var found *format.Record
	err := r.Records(func(rec *format.Record) error {
		if !rec.IsActive() {
			return nil
		}
		if strings.EqualFold(r.BuildPath(rec), path) {
			found = rec
			return Stop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, types.ErrNotFound
	}
	return found, nil
}
