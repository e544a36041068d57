package logs_querying

import (
	"net/url"
	"strconv"

	logs_core "loglens/internal/features/logs/core"
	time_parser "loglens/internal/util/time"
)

// ParseLogQuery translates the inbound query-string parameter bag into a
// normalized LogQuery. Parsing is deliberately lenient: malformed or
// missing page/count values fall back to defaults and malformed dates are
// treated as "no bound". Nothing here ever produces an error.
func ParseLogQuery(values url.Values) *logs_core.LogQuery {
	query := &logs_core.LogQuery{
		Page:       parseIntOrDefault(values.Get("page"), logs_core.DefaultPage),
		PageSize:   parseIntOrDefault(values.Get("count"), logs_core.DefaultPageSize),
		Level:      values.Get("level"),
		UserName:   values.Get("user"),
		SearchText: values.Get("search"),
	}

	if startDate, ok := time_parser.ParseDate(values.Get("startDate")); ok {
		query.StartDate = &startDate
	}

	// The end bound is expanded to the last second of its calendar day so
	// a single-day range captures the whole day.
	if endDate, ok := time_parser.ParseDate(values.Get("endDate")); ok {
		endOfDay := logs_core.EndOfDay(endDate)
		query.EndDate = &endOfDay
	}

	query.Normalize()

	return query
}

func parseIntOrDefault(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
