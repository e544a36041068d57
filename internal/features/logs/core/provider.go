package logs_core

import (
	"context"
	"fmt"
)

// LogProvider is the contract every storage backend satisfies. FetchLogs
// returns one page of records in descending timestamp order together with
// the total post-filter match count, or an error; there is no partial
// success. Implementations must be safe for concurrent use and should
// propagate ctx cancellation into the backend call.
type LogProvider interface {
	FetchLogs(ctx context.Context, query *LogQuery) ([]LogRecord, int64, error)
	Name() string
}

// ProviderError wraps a backend failure with the backend's name so the
// gateway can log which store broke without inspecting error text.
type ProviderError struct {
	Backend string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Backend, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(backend string, err error) *ProviderError {
	return &ProviderError{Backend: backend, Err: err}
}
