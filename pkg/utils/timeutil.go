package utils

import (
	"time"
)

// EAT is East Africa Time (UTC+3), the default zone for issue dates.
var EAT *time.Location

func init() {
	var err error
	EAT, err = time.LoadLocation("Africa/Nairobi")
	if err != nil {
		// Fallback: fixed zone if tz database is not available
		EAT = time.FixedZone("EAT", 3*60*60)
	}
}

// LoadLocation resolves a configured time zone name. An empty name or
// "Local" yields time.Local; unknown names fall back to EAT.
func LoadLocation(name string) *time.Location {
	switch name {
	case "", "Local":
		return time.Local
	case "UTC":
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return EAT
	}
	return loc
}

// FormatDateIssued formats t as DD/MM/YYYY, the date printed on the debit note.
func FormatDateIssued(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatFileDate formats t as DD-MM-YYYY for use in download filenames.
func FormatFileDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatDateTime formats a timestamp for logs and status output.
func FormatDateTime(t time.Time) string {
	return t.Format("02 Jan 2006, 03:04 PM MST")
}
