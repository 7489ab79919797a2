package format

import (
	"fmt"
	"time"
)

const (
	filetimeUnit    = 100         // FILETIME units are 100ns
	ticksPerSecond  = 10_000_000  // 1e9 / filetimeUnit
	epochDeltaSecs  = 11644473600 // seconds between 1601-01-01 and 1970-01-01
	maxFiletimeYear = 9999        // broken-down calendar ceiling
)

// FiletimeToTime converts a Windows FILETIME value (100ns intervals since
// 1601-01-01 UTC) to time.Time. Values past the year-9999 calendar ceiling
// report ErrFiletimeRange rather than panicking; the recovery heuristics
// treat such values as implausible.
func FiletimeToTime(v uint64) (time.Time, error) {
	sec := int64(v/ticksPerSecond) - epochDeltaSecs
	nsec := int64(v%ticksPerSecond) * filetimeUnit
	t := time.Unix(sec, nsec).UTC()
	if t.Year() > maxFiletimeYear {
		return time.Time{}, fmt.Errorf("%w: %#x past year %d", ErrFiletimeRange, v, maxFiletimeYear)
	}
	return t, nil
}

// TimeToFiletime converts t to a FILETIME tick count. Times before 1601
// are not representable and yield 0.
func TimeToFiletime(t time.Time) uint64 {
	sec := t.Unix() + epochDeltaSecs
	if sec < 0 {
		return 0
	}
	return uint64(sec)*ticksPerSecond + uint64(t.Nanosecond())/filetimeUnit
}
