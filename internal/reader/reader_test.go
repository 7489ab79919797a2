package reader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcarver/mftkit/internal/format"
	"github.com/jcarver/mftkit/pkg/types"
)

func TestRecordsWalkSkipsBadBlocks(t *testing.T) {
	records := make([][]byte, 4)
	records[0] = fileRecord(0, 1, 5, 5, "zero", format.RecordFlagInUse)
	// Slot 1 stays zeroed: bad magic, skipped, counter still advances.
	records[2] = fileRecord(2, 1, 5, 5, "two", format.RecordFlagInUse)
	records[3] = fileRecord(3, 1, 5, 5, "three", 0)

	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	var inodes []uint64
	err = r.Records(func(rec *format.Record) error {
		inodes = append(inodes, rec.Inode)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 2, 3}, inodes)
}

func TestRecordsStop(t *testing.T) {
	records := [][]byte{
		fileRecord(0, 1, 5, 5, "zero", format.RecordFlagInUse),
		fileRecord(1, 1, 5, 5, "one", format.RecordFlagInUse),
	}
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	count := 0
	err = r.Records(func(rec *format.Record) error {
		count++
		return Stop
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecordsPartialTrailingBlock(t *testing.T) {
	buf := stream(fileRecord(0, 1, 5, 5, "zero", format.RecordFlagInUse))
	buf = append(buf, make([]byte, 100)...) // torn final block

	r, err := New(buf, types.Options{})
	require.NoError(t, err)
	count := 0
	err = r.Records(func(rec *format.Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecordByNumber(t *testing.T) {
	records := make([][]byte, 3)
	records[2] = fileRecord(2, 4, 5, 5, "two", format.RecordFlagInUse)
	r, err := New(stream(records...), types.Options{})
	require.NoError(t, err)

	rec, err := r.Record(2)
	require.NoError(t, err)
	require.EqualValues(t, 2, rec.RecordNumber)
	require.EqualValues(t, 4, rec.SequenceNumber)
}

func TestRecordOutOfRange(t *testing.T) {
	r, err := New(stream(fileRecord(0, 1, 5, 5, "zero", 0)), types.Options{})
	require.NoError(t, err)

	_, err = r.RecordBuf(10)
	require.ErrorIs(t, err, types.ErrInvalidRecordNumber)
	_, err = r.Record(10)
	require.ErrorIs(t, err, types.ErrInvalidRecordNumber)
}

// RecordBuf hands out private copies: fixup rewrites during parsing must not
// leak into the shared backing buffer.
func TestRecordBufCopies(t *testing.T) {
	base := stream(fileRecord(0, 1, 5, 5, "zero", 0))
	orig := make([]byte, len(base))
	copy(orig, base)

	r, err := New(base, types.Options{})
	require.NoError(t, err)
	buf1, err := r.RecordBuf(0)
	require.NoError(t, err)
	buf1[0] = 'X'
	require.Equal(t, orig, base)

	buf2, err := r.RecordBuf(0)
	require.NoError(t, err)
	require.EqualValues(t, 'F', buf2[0])
}

// Image mode: the MFT offset comes from the boot sector's relative cluster
// field at volume_offset + 0x30; records then read from
// mft_offset + number*1024.
func TestImageModeLocatesMFT(t *testing.T) {
	const volumeOffset = 512
	const clusterSize = 4096
	const mftCluster = 2

	image := make([]byte, volumeOffset+mftCluster*clusterSize+2*format.RecordSize)
	putQ(image, volumeOffset+0x30, mftCluster)
	mftOffset := volumeOffset + mftCluster*clusterSize
	copy(image[mftOffset:], fileRecord(0, 1, 5, 5, "mft", format.RecordFlagInUse))
	copy(image[mftOffset+format.RecordSize:], fileRecord(1, 1, 5, 5, "mirror", format.RecordFlagInUse))

	r, err := New(image, types.Options{
		FileType:     types.FileTypeImage,
		VolumeOffset: volumeOffset,
		ClusterSize:  clusterSize,
	})
	require.NoError(t, err)

	rec, err := r.Record(1)
	require.NoError(t, err)
	require.EqualValues(t, 1, rec.RecordNumber)
	fn, ok := rec.Filename()
	require.True(t, ok)
	name, err := fn.Filename()
	require.NoError(t, err)
	require.Equal(t, "mirror", name)

	var count int
	require.NoError(t, r.Records(func(*format.Record) error {
		count++
		return nil
	}))
	require.Equal(t, 2, count)
}

func TestImageModeReadRange(t *testing.T) {
	image := make([]byte, 8192)
	putQ(image, 0x30, 1)
	copy(image[4096:], []byte("NTFS raw data"))
	r, err := New(image, types.Options{FileType: types.FileTypeImage})
	require.NoError(t, err)

	raw, err := r.ReadRange(4096, 13)
	require.NoError(t, err)
	require.Equal(t, "NTFS raw data", string(raw))

	_, err = r.ReadRange(int64(len(image)), 1)
	require.Error(t, err)
}

func TestReadRangeNonImage(t *testing.T) {
	r, err := New(stream(fileRecord(0, 1, 5, 5, "zero", 0)), types.Options{})
	require.NoError(t, err)
	raw, err := r.ReadRange(0, 8)
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestINDXShapeHasNoRecords(t *testing.T) {
	r, err := New(make([]byte, 4096), types.Options{FileType: types.FileTypeINDX})
	require.NoError(t, err)

	err = r.Records(func(*format.Record) error {
		t.Fatal("indx input yielded a record")
		return nil
	})
	require.NoError(t, err)

	_, err = r.RecordBuf(0)
	require.ErrorIs(t, err, types.ErrInvalidRecordNumber)
}

func TestClosedReader(t *testing.T) {
	r, err := New(stream(fileRecord(0, 1, 5, 5, "zero", 0)), types.Options{})
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Record(0)
	require.Error(t, err)
	err = r.Records(func(*format.Record) error { return nil })
	require.Error(t, err)
}

func TestSlackWindowOverride(t *testing.T) {
	min := format.DefaultSlackWindow.Min.AddDate(-5, 0, 0)
	r, err := New(nil, types.Options{SlackWindowMin: min})
	require.NoError(t, err)
	require.Equal(t, min, r.SlackWindow().Min)
	require.Equal(t, format.DefaultSlackWindow.Max, r.SlackWindow().Max)
}
