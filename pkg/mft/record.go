package mft

import (
	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/internal/reader"
	"github.com/jcarver/mftkit/pkg/types"
)

// Record is a parsed MFT record bound to the File it came from. The binding
// is what lets Path follow parent references back into the stream.
type Record struct {
	rec  *format.Record
	file *File
}

// Meta returns a plain snapshot of the record header.
func (r *Record) Meta() types.RecordMeta {
	return types.RecordMeta{
		Inode:          r.rec.Inode,
		RecordNumber:   uint64(r.rec.RecordNumber),
		SequenceNumber: r.rec.SequenceNumber,
		LinkCount:      r.rec.LinkCount,
		Active:         r.rec.IsActive(),
		Directory:      r.rec.IsDirectory(),
		BytesInUse:     r.rec.BytesInUse,
		BytesAllocated: r.rec.BytesAllocated,
	}
}

// Path reconstructs the record's full path by walking parent references.
func (r *Record) Path() string {
	return r.file.r.BuildPath(r.rec)
}

// Filename returns the record's primary filename, preferring the Win32
// namespace. ok is false when the record carries no parseable $FILE_NAME.
func (r *Record) Filename() (types.FilenameMeta, bool) {
	fn, ok := r.rec.Filename()
	if !ok {
		return types.FilenameMeta{}, false
	}
	return filenameMeta(fn), true
}

// StandardInformation returns the record's $STANDARD_INFORMATION snapshot.
// ok is false when the attribute is absent, which is distinct from a parse
// error.
func (r *Record) StandardInformation() (types.StandardInfoMeta, bool, error) {
	si, ok, err := r.rec.StandardInformation()
	if err != nil {
		return types.StandardInfoMeta{}, ok, reader.WrapFormatErr(err)
	}
	if !ok {
		return types.StandardInfoMeta{}, false, nil
	}
	meta := types.StandardInfoMeta{
		Times:         timestamps(si.CreatedRaw, si.ModifiedRaw, si.ChangedRaw, si.AccessedRaw),
		DOSAttributes: si.Attributes,
	}
	if owner, err := si.OwnerID(); err == nil {
		meta.HasWin2kFields = true
		meta.OwnerID = owner
		if sid, err := si.SecurityID(); err == nil {
			meta.SecurityID = sid
		}
		if quota, err := si.QuotaCharged(); err == nil {
			meta.QuotaCharged = quota
		}
		if usn, err := si.USN(); err == nil {
			meta.USN = usn
		}
	}
	return meta, true, nil
}

// DataRuns decodes the runlist of the record's unnamed $DATA stream. ok is
// false when the record has no default data stream; a resident stream yields
// ok with zero runs and its resident length in residentSize.
func (r *Record) DataRuns() (runs []types.ClusterRun, residentSize int, ok bool, err error) {
	attr, ok := r.rec.DataAttribute()
	if !ok {
		return nil, 0, false, nil
	}
	if !attr.NonResident {
		res, err := attr.Resident()
		if err != nil {
			return nil, 0, true, reader.WrapFormatErr(err)
		}
		return nil, len(res.Value()), true, nil
	}
	nr, err := attr.NonResidentFields()
	if err != nil {
		return nil, 0, true, reader.WrapFormatErr(err)
	}
	for _, run := range nr.Runlist().Runs() {
		runs = append(runs, types.ClusterRun{Offset: run.Offset, Length: run.Length})
	}
	return runs, 0, true, nil
}

// IndexEntries returns the live entries of the record's resident directory
// index, when the record is a directory with an $INDEX_ROOT attribute.
func (r *Record) IndexEntries() ([]types.IndexEntryMeta, error) {
	root, ok, err := r.rec.IndexRoot()
	if err != nil {
		return nil, reader.WrapFormatErr(err)
	}
	if !ok {
		return nil, nil
	}
	node, err := root.Node()
	if err != nil {
		return nil, reader.WrapFormatErr(err)
	}
	var out []types.IndexEntryMeta
	for _, e := range node.Entries() {
		out = append(out, indexEntryMeta(e, false))
	}
	return out, nil
}
