package logs_core

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// LogQuery is the normalized representation of a caller's paging/filter
// request. All filters are combined with logical AND; a zero-value query
// matches everything and still returns newest-first pages.
type LogQuery struct {
	Page       int
	PageSize   int
	Level      string
	SearchText string
	UserName   string
	StartDate  *time.Time
	EndDate    *time.Time
}

// Normalize clamps paging values back to defaults so providers never see
// page or pageSize below 1.
func (q *LogQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
}

// Offset returns the number of matching records to skip for the requested page.
func (q *LogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// EndOfDay expands a date to the last representable second of that calendar
// day, so a single-day range query captures the whole day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// AssignRowNumbers stamps backend-independent ordinals onto a fetched page.
// Row numbers continue across pages so the UI can show absolute positions.
func AssignRowNumbers(records []LogRecord, query *LogQuery) {
	base := query.Offset()
	for i := range records {
		records[i].RowNumber = base + i + 1
	}
}

// SortByTimestampDesc orders records newest-first. The sort is stable so
// backends that return equal timestamps keep their native tie-break order.
func SortByTimestampDesc(records []LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

// Matches reports whether a record satisfies every filter of the query.
// Backends without a native query language (document store, CloudWatch
// events) evaluate this directly; SQL and search backends must translate
// the same semantics into their native filters.
func (q *LogQuery) Matches(record *LogRecord) bool {
	if q.Level != "" && !strings.EqualFold(q.Level, record.Level) {
		return false
	}
	if q.UserName != "" && !strings.EqualFold(q.UserName, record.UserName) {
		return false
	}
	if q.StartDate != nil && record.Timestamp.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && record.Timestamp.After(*q.EndDate) {
		return false
	}
	if q.SearchText != "" {
		needle := strings.ToLower(q.SearchText)
		if !strings.Contains(strings.ToLower(record.Message), needle) &&
			!strings.Contains(strings.ToLower(record.Exception), needle) &&
			!strings.Contains(strings.ToLower(record.Properties), needle) {
			return false
		}
	}
	return true
}

// Paginate applies the query's paging window to an already filtered,
// descending-ordered result set.
func Paginate(records []LogRecord, query *LogQuery) []LogRecord {
	offset := query.Offset()
	if offset >= len(records) {
		return []LogRecord{}
	}
	end := offset + query.PageSize
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}
