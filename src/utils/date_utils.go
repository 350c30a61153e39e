package utils

import (
	"fmt"
	"time"
)

// DateFormat is the ISO 8601 day format every date column uses.
const DateFormat = "2006-01-02"

// ValidateDate checks that a date string is a valid ISO 8601 day.
func ValidateDate(dateStr string) error {
	if _, err := time.Parse(DateFormat, dateStr); err != nil {
		return fmt.Errorf("date %q is not in YYYY-MM-DD format", dateStr)
	}
	return nil
}
