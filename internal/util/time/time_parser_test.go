package time_parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_ParseDate_WithEmptyString_ReportsNoBound(t *testing.T) {
	_, ok := ParseDate("")

	assert.False(t, ok)
}

func Test_ParseDate_WithGarbage_ReportsNoBound(t *testing.T) {
	_, ok := ParseDate("not-a-date")

	assert.False(t, ok)
}

func Test_ParseDate_WithSupportedFormats_ParsesCorrectly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "RFC3339",
			input:    "2024-01-05T10:30:00Z",
			expected: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "ISO without timezone",
			input:    "2024-01-05T10:30:00",
			expected: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "space separated",
			input:    "2024-01-05 10:30:00",
			expected: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    "2024-01-05",
			expected: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parsed, ok := ParseDate(test.input)

			assert.True(t, ok)
			assert.True(t, test.expected.Equal(parsed), "expected %v, got %v", test.expected, parsed)
		})
	}
}
