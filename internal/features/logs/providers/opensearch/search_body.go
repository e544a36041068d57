package opensearch_provider

import (
	"strings"
	"time"

	logs_core "loglens/internal/features/logs/core"
)

// BuildSearchBody translates a LogQuery into an OpenSearch search DSL
// body: every filter lands in the bool filter clause (AND semantics),
// ordering is always timestamp descending, and from/size implement the
// paging window. track_total_hits keeps the total exact beyond 10k.
func BuildSearchBody(query *logs_core.LogQuery) map[string]any {
	filters := []any{}

	if query.Level != "" {
		filters = append(filters, caseInsensitiveTerm("level.keyword", query.Level))
	}

	if query.UserName != "" {
		filters = append(filters, caseInsensitiveTerm("user_name.keyword", query.UserName))
	}

	if query.SearchText != "" {
		filters = append(filters, map[string]any{
			"query_string": map[string]any{
				"query":            "*" + escapeQueryString(query.SearchText) + "*",
				"fields":           []any{"message", "exception", "properties"},
				"analyze_wildcard": true,
			},
		})
	}

	if query.StartDate != nil || query.EndDate != nil {
		timeRange := map[string]any{}
		if query.StartDate != nil {
			timeRange["gte"] = query.StartDate.Format(time.RFC3339Nano)
		}
		if query.EndDate != nil {
			timeRange["lte"] = query.EndDate.Format(time.RFC3339Nano)
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"timestamp": timeRange},
		})
	}

	searchBody := map[string]any{
		"query":            map[string]any{"bool": map[string]any{"filter": filters}},
		"sort":             []any{map[string]any{"timestamp": map[string]any{"order": "desc"}}},
		"size":             query.PageSize,
		"track_total_hits": true,
	}

	if offset := query.Offset(); offset > 0 {
		searchBody["from"] = offset
	}

	return searchBody
}

func caseInsensitiveTerm(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{
			field: map[string]any{
				"value":            value,
				"case_insensitive": true,
			},
		},
	}
}

// escapeQueryString neutralizes the query_string operators so user input
// is matched literally.
var queryStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`,
	`>`, ``, `<`, ``,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`,
	`[`, `\[`, `]`, `\]`, `^`, `\^`, `"`, `\"`, `~`, `\~`,
	`*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

func escapeQueryString(value string) string {
	return queryStringEscaper.Replace(value)
}
