package moderation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

// ParseDuration parses admin-facing duration strings like 30s, 10m, 4h,
// 3d, 2w. The day and week units are why time.ParseDuration is not enough.
func ParseDuration(s string) (time.Duration, error) {
	match := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if match == nil {
		return 0, fmt.Errorf("invalid duration format: %q", s)
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %q", s)
	}

	switch match[2] {
	case "s":
		return time.Duration(value) * time.Second, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	case "w":
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid duration unit: %q", s)
}

// HumanizeDuration renders a duration the way punishment descriptions and
// settings dumps need it: "3 days, 2 hours", "45 seconds".
func HumanizeDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total <= 0 {
		return "not set"
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	appendPart := func(value int64, unit string) {
		if value == 0 {
			return
		}
		if value == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", unit))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", value, unit))
		}
	}
	appendPart(days, "day")
	appendPart(hours, "hour")
	appendPart(minutes, "minute")
	appendPart(seconds, "second")

	return strings.Join(parts, ", ")
}
