package time_parser

import "time"

// Formats accepted on the query string, tried in order of preference.
var dateFormats = []string{
	time.RFC3339,          // "2006-01-02T15:04:05Z07:00"
	time.RFC3339Nano,      // "2006-01-02T15:04:05.999999999Z07:00"
	"2006-01-02T15:04:05", // ISO without timezone
	"2006-01-02 15:04:05", // Space-separated format
	"2006-01-02",          // Date only
}

// ParseDate converts a query-string date to time.Time. The second return
// value reports whether the input was parseable; callers treat false as
// "no bound", never as an error.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}
