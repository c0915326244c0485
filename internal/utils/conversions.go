package utils

import (
	"strconv"
	"time"
)

// MillisString formats a time as epoch milliseconds, the wire format used for
// the stored activity timestamp.
func MillisString(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// TimeFromMillisString parses an epoch-milliseconds string. Returns false for
// empty or unparseable input.
func TimeFromMillisString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
