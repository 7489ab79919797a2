package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/pkg/types"
)

// treeStream builds a stream with a root at record 5 and a dir/file chain
// under it:
//
//	5  root directory (no filename attribute; renders as the prefix)
//	6  "docs" directory, parent 5
//	7  "report.txt" file, parent 6
func treeStream() []byte {
	records := make([][]byte, 8)
	records[5] = record(recSpec{number: 5, sequence: 5, flags: format.RecordFlagInUse | format.RecordFlagDirectory})
	records[6] = fileRecord(6, 6, 5, 5, "docs", format.RecordFlagInUse|format.RecordFlagDirectory)
	records[7] = fileRecord(7, 7, 6, 6, "report.txt", format.RecordFlagInUse)
	return stream(records...)
}

func TestBuildPathChain(t *testing.T) {
	r, err := New(treeStream(), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(7)
	require.NoError(t, err)
	require.Equal(t, `\.\docs\report.txt`, r.BuildPath(rec))

	dir, err := r.Record(6)
	require.NoError(t, err)
	require.Equal(t, `\.\docs`, r.BuildPath(dir))
}

func TestBuildPathPrefix(t *testing.T) {
	r, err := New(treeStream(), types.Options{PathPrefix: `C:`})
	require.NoError(t, err)

	rec, err := r.Record(7)
	require.NoError(t, err)
	require.Equal(t, `C:\docs\report.txt`, r.BuildPath(rec))
}

// The volume root reconstructs to the prefix alone, `\.` when unset.
func TestBuildPathRoot(t *testing.T) {
	r, err := New(treeStream(), types.Options{})
	require.NoError(t, err)

	root, err := r.Record(5)
	require.NoError(t, err)
	require.Equal(t, `\.`, r.BuildPath(root))
}

// A record without a usable filename renders as `\??`.
func TestBuildPathNoFilename(t *testing.T) {
	records := make([][]byte, 11)
	records[10] = record(recSpec{number: 10, sequence: 1, flags: format.RecordFlagInUse})
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(10)
	require.NoError(t, err)
	require.Equal(t, `\??`, r.BuildPath(rec))
}

// A parent whose buffer cannot be fetched yields `\??\<name>`.
func TestBuildPathMissingParent(t *testing.T) {
	records := make([][]byte, 11)
	records[10] = fileRecord(10, 1, 999, 1, "lost.txt", format.RecordFlagInUse)
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(10)
	require.NoError(t, err)
	require.Equal(t, `\??\lost.txt`, r.BuildPath(rec))
}

// A reallocated parent slot (sequence mismatch) is an orphan: the filename
// expects sequence 7 but record 42 is on sequence 9.
func TestBuildPathOrphan(t *testing.T) {
	records := make([][]byte, 43)
	records[10] = fileRecord(10, 1, 42, 7, "orphan.dat", format.RecordFlagInUse)
	records[42] = record(recSpec{number: 42, sequence: 9, flags: format.RecordFlagInUse | format.RecordFlagDirectory})
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(10)
	require.NoError(t, err)
	require.Equal(t, `\$OrphanFiles\orphan.dat`, r.BuildPath(rec))
}

// Two records pointing at each other as parents must terminate with the
// cycle marker instead of recursing forever.
func TestBuildPathCycle(t *testing.T) {
	records := make([][]byte, 22)
	records[20] = fileRecord(20, 2, 21, 3, "x", format.RecordFlagInUse|format.RecordFlagDirectory)
	records[21] = fileRecord(21, 3, 20, 2, "y", format.RecordFlagInUse|format.RecordFlagDirectory)
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(20)
	require.NoError(t, err)
	path := r.BuildPath(rec)
	require.True(t, strings.HasPrefix(path, `\<CYCLE>`), "path %q", path)

	withPrefix, err := New(stream(records...), types.Options{PathPrefix: `C:`})
	require.NoError(t, err)
	rec, err = withPrefix.Record(20)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(withPrefix.BuildPath(rec), `C:\<CYCLE>`))
}

func TestBuildPathMemoized(t *testing.T) {
	r, err := New(treeStream(), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(7)
	require.NoError(t, err)
	first := r.BuildPath(rec)
	require.Equal(t, first, r.BuildPath(rec))
	// The chain caches the file, the directory, and the root.
	require.Equal(t, 3, r.paths.len())
}

func TestFindByPath(t *testing.T) {
	r, err := New(treeStream(), types.Options{})
	require.NoError(t, err)

	rec, err := r.FindByPath(`\.\DOCS\REPORT.TXT`)
	require.NoError(t, err)
	require.EqualValues(t, 7, rec.RecordNumber)

	_, err = r.FindByPath(`\.\nope`)
	require.ErrorIs(t, err, types.ErrNotFound)
}
