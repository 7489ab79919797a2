package mft

import (
	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/internal/reader"
	"github.com/jcarver/mftkit/pkg/types"
)

// Stop ends a Records walk early without surfacing an error.
var Stop = reader.Stop

// File is an open input buffer: a raw $MFT, a volume image, or an isolated
// INDX record, selected by the options. File is not safe for concurrent use.
type File struct {
	r *reader.Reader
}

// Open maps the file at path and prepares it for parsing.
func Open(path string, opts types.Options) (*File, error) {
	r, err := reader.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &File{r: r}, nil
}

// OpenBytes parses directly from an in-memory buffer.
func OpenBytes(b []byte, opts types.Options) (*File, error) {
	r, err := reader.New(b, opts)
	if err != nil {
		return nil, err
	}
	return &File{r: r}, nil
}

// Close releases the underlying mapping. Records and entries handed out
// earlier must not be used afterwards.
func (f *File) Close() error { return f.r.Close() }

// Records walks every MFT record in the stream in order. Unparseable blocks
// are skipped while the inode counter keeps advancing. The callback may
// return Stop to end the walk early.
func (f *File) Records(fn func(*Record) error) error {
	return f.r.Records(func(rec *format.Record) error {
		return fn(&Record{rec: rec, file: f})
	})
}

// Record fetches the record with the given number.
func (f *File) Record(number uint64) (*Record, error) {
	rec, err := f.r.Record(number)
	if err != nil {
		return nil, err
	}
	return &Record{rec: rec, file: f}, nil
}

// FindByPath scans active records for the one whose reconstructed path
// equals path, compared case-insensitively.
func (f *File) FindByPath(path string) (*Record, error) {
	rec, err := f.r.FindByPath(path)
	if err != nil {
		return nil, err
	}
	return &Record{rec: rec, file: f}, nil
}

// IndexEntries parses the INDX record at the start of the buffer and returns
// its live directory entries followed by the entries recovered from slack
// space. Slack recovery applies the configured timestamp window; live
// entries are never filtered.
func (f *File) IndexEntries() ([]types.IndexEntryMeta, error) {
	node, err := f.r.IndexNode()
	if err != nil {
		return nil, err
	}
	var out []types.IndexEntryMeta
	for _, e := range node.Entries() {
		out = append(out, indexEntryMeta(e, false))
	}
	for _, e := range node.SlackEntries(f.r.SlackWindow()) {
		out = append(out, indexEntryMeta(e, true))
	}
	return out, nil
}

// ReadRange reads raw bytes from a volume image. The other input shapes
// yield an empty result.
func (f *File) ReadRange(off, length int64) ([]byte, error) {
	return f.r.ReadRange(off, length)
}

func indexEntryMeta(e format.MFTIndexEntry, slack bool) types.IndexEntryMeta {
	return types.IndexEntryMeta{
		RecordNumber:   e.MFTReference.RecordNumber(),
		SequenceNumber: e.MFTReference.SequenceNumber(),
		Filename:       filenameMeta(e.Filename),
		Slack:          slack,
		NodeOffset:     e.NodeOffset,
	}
}

func filenameMeta(fn format.FilenameAttribute) types.FilenameMeta {
	name, err := fn.Filename()
	if err != nil {
		name = ""
	}
	return types.FilenameMeta{
		Name:         name,
		Namespace:    fn.FilenameType,
		ParentRecord: fn.ParentReference.RecordNumber(),
		ParentSeq:    fn.ParentReference.SequenceNumber(),
		PhysicalSize: fn.PhysicalSize,
		LogicalSize:  fn.LogicalSize,
		Times:        timestamps(fn.CreatedRaw, fn.ModifiedRaw, fn.ChangedRaw, fn.AccessedRaw),
	}
}

// timestamps converts raw FILETIME values leniently: unrepresentable values
// become the zero time so metadata snapshots never fail outright.
func timestamps(created, modified, changed, accessed uint64) types.Timestamps {
	var ts types.Timestamps
	if t, err := format.FiletimeToTime(created); err == nil {
		ts.Created = t
	}
	if t, err := format.FiletimeToTime(modified); err == nil {
		ts.Modified = t
	}
	if t, err := format.FiletimeToTime(changed); err == nil {
		ts.Changed = t
	}
	if t, err := format.FiletimeToTime(accessed); err == nil {
		ts.Accessed = t
	}
	return ts
}
