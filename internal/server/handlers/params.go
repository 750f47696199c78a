package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// dateQuery parses an optional RFC3339 or YYYY-MM-DD bound. Date-only upper bounds cover the whole day.
func dateQuery(field, value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(models.DateLayout, trimmed)
	if err != nil {
		return nil, models.Invalid(field, "must be YYYY-MM-DD or RFC3339")
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, nil
}

func dateRange(from, to string) (*time.Time, *time.Time, error) {
	start, err := dateQuery("from", from, false)
	if err != nil {
		return nil, nil, err
	}
	end, err := dateQuery("to", to, true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func boolQuery(field, value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, models.Invalid(field, "must be true or false")
	}
	return &parsed, nil
}

func intQuery(field, value string, fallback int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 {
		return 0, models.Invalid(field, "must be a positive integer")
	}
	return parsed, nil
}
