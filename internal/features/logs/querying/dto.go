package logs_querying

import (
	logs_core "loglens/internal/features/logs/core"
)

// LogPageDTO is the response envelope for one page of logs. Count and
// CurrentPage echo the requested paging so the UI can compute page count
// from Total without re-reading its own request.
type LogPageDTO struct {
	Logs        []logs_core.LogRecord `json:"logs"`
	Total       int64                 `json:"total"`
	Count       int                   `json:"count"`
	CurrentPage int                   `json:"currentPage"`
}

type ErrorResponseDTO struct {
	ErrorMessage string `json:"errorMessage"`
}
