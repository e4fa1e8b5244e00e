package service

import (
	"fmt"
	"strings"
	"time"
)

func f2(v float64) string { // для красивого вывода
	return fmt.Sprintf("%.2f", v)
}

func ago(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return now.Sub(t).Truncate(time.Second).String() + " ago"
}

// isParseError: Telegram не смог разобрать MarkdownV2.
func isParseError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "can't parse entities") || strings.Contains(s, "parse_mode")
}
