package logs_core

import "time"

type PropertyType string

const (
	PropertyTypeJSON PropertyType = "json"
	PropertyTypeXML  PropertyType = "xml"
)

// LogRecord is the normalized projection of one stored log entry,
// independent of which backend it came from. Records are built per
// query and discarded after serialization; nothing here is persisted.
type LogRecord struct {
	RowNumber    int          `json:"rowNo"`
	Level        string       `json:"level"`
	Message      string       `json:"message"`
	UserName     string       `json:"userName,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Exception    string       `json:"exception,omitempty"`
	Properties   string       `json:"properties,omitempty"`
	PropertyType PropertyType `json:"propertyType,omitempty"`
}
