package stamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ExifLayout is the date layout used by EXIF date tags.
const ExifLayout = "2006:01:02 15:04:05"

const filenameLayout = "20060102150405"

var (
	// ErrNoTimestamp means the filename has no run of 12 or more digits.
	ErrNoTimestamp = errors.New("no timestamp found in filename")
	// ErrInvalidTimestamp means the digits do not form a real date and time.
	ErrInvalidTimestamp = errors.New("filename digits are not a valid date and time")
)

// YYYYMMDD, hhmm, optional ss. The leftmost match wins.
var timestampPattern = regexp.MustCompile(`(\d{8})(\d{4})(\d{2})?`)

// Timestamp is a capture time read from a filename. It keeps the digits as
// written; inside a local DST gap the wall clock has no matching instant, so
// Exif and Time can disagree by the size of the gap.
type Timestamp struct {
	wall time.Time // components as written, in UTC
}

// Exif renders the wall clock as YYYY:MM:DD HH:MM:SS.
func (ts Timestamp) Exif() string {
	return FormatExif(ts.wall)
}

// Time returns the wall clock as an instant in time.Local, for file times.
func (ts Timestamp) Time() time.Time {
	w := ts.wall
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), 0, time.Local)
}

func (ts Timestamp) IsZero() bool {
	return ts.wall.IsZero()
}

// ParseFilename extracts the capture time embedded in a filename. Components
// outside their calendar range (month 13, Feb 30, hour 24, ...) are rejected
// rather than rolled over.
func ParseFilename(name string) (Timestamp, error) {
	m := timestampPattern.FindStringSubmatch(name)
	if m == nil {
		return Timestamp{}, ErrNoTimestamp
	}

	date, clock, secs := m[1], m[2], m[3]
	if secs == "" {
		secs = "00"
	}

	year := atoi(date[0:4])
	month := atoi(date[4:6])
	day := atoi(date[6:8])
	hour := atoi(clock[0:2])
	minute := atoi(clock[2:4])
	second := atoi(secs)

	// UTC has no DST gaps, so time.Date only normalizes here when a component
	// was out of range.
	u := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if u.Year() != year || int(u.Month()) != month || u.Day() != day ||
		u.Hour() != hour || u.Minute() != minute || u.Second() != second {
		return Timestamp{}, fmt.Errorf("%w: %s%s%s", ErrInvalidTimestamp, date, clock, m[3])
	}

	return Timestamp{wall: u}, nil
}

// FormatExif renders t as YYYY:MM:DD HH:MM:SS.
func FormatExif(t time.Time) string {
	return t.Format(ExifLayout)
}

// FilenameStamp renders t as the 14 digit YYYYMMDDhhmmss form ParseFilename
// accepts.
func FilenameStamp(t time.Time) string {
	return t.Format(filenameLayout)
}

// atoi is only fed regexp-validated digit strings.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
