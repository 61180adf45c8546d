package utils

import (
	"time"

	"github.com/spf13/cast"
)

// ParseDate accepts the date and timestamp layouts the API documents
// ("2024-01-31", "2024-01-31 08:00:00", RFC 3339). Zoneless values are UTC.
func ParseDate(s string) (time.Time, error) {
	return cast.ToTimeE(s)
}
