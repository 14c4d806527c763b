package posts

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
}

// ParseDate parses the date formats accepted in front matter and metadata
// blocks. Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders the canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DisplayDay returns the day of month without padding, or "" for an invalid date.
func DisplayDay(createdAt string) string {
	t, ok := ParseDate(createdAt)
	if !ok {
		return ""
	}
	return strconv.Itoa(t.Day())
}

// DisplayMonth returns the English short month name, or "" for an invalid date.
func DisplayMonth(createdAt string) string {
	t, ok := ParseDate(createdAt)
	if !ok {
		return ""
	}
	return t.Format("Jan")
}

// Timestamp returns the sort key for createdAt. Missing or invalid dates
// yield math.MinInt64 so they sort as the earliest entries.
func Timestamp(createdAt string) int64 {
	t, ok := ParseDate(createdAt)
	if !ok {
		return math.MinInt64
	}
	return t.UnixMilli()
}

// SortByCreatedAt orders list newest first in place. The sort is stable.
func SortByCreatedAt(list []Post) {
	sort.SliceStable(list, func(i, j int) bool {
		return Timestamp(list[i].CreatedAt) > Timestamp(list[j].CreatedAt)
	})
}

// Sorted returns a newest-first copy of list.
func Sorted(list []Post) []Post {
	out := make([]Post, len(list))
	copy(out, list)
	SortByCreatedAt(out)
	return out
}
