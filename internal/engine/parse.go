package engine

import (
	"fmt"
	"strconv"
	"strings"

	"petprogress/internal/storage"
)

// ParseTimeOfDay parses user input like "9:30" or "09:30".
func ParseTimeOfDay(input string) (storage.TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(input), ":", 2)
	if len(parts) != 2 {
		return storage.TimeOfDay{}, fmt.Errorf("invalid time %q (want HH:MM)", input)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return storage.TimeOfDay{}, fmt.Errorf("invalid time %q (want HH:MM)", input)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return storage.TimeOfDay{}, fmt.Errorf("invalid time %q (want HH:MM)", input)
	}
	tod := storage.TimeOfDay{Hour: hour, Minute: minute}
	if !tod.Valid() {
		return storage.TimeOfDay{}, fmt.Errorf("time %q out of range", input)
	}
	return tod, nil
}

// ParseWeekdays parses a comma-separated weekday list. Accepts 1-7 numbers
// (Sunday=1) and day-name prefixes: "sun,mon" or "1,2".
func ParseWeekdays(input string) ([]int, error) {
	var days []int
	for _, raw := range strings.Split(input, ",") {
		tok := strings.TrimSpace(strings.ToLower(raw))
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			days = append(days, n)
			continue
		}
		d, ok := weekdayByName(tok)
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", raw)
		}
		days = append(days, d)
	}
	return normalizeWeekdays(days)
}

func weekdayByName(tok string) (int, bool) {
	names := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	for i, name := range names {
		if strings.HasPrefix(name, tok) && len(tok) >= 3 {
			return i + 1, true
		}
	}
	return 0, false
}

// WeekdayLabel renders a 1-7 weekday number as a short name.
func WeekdayLabel(d int) string {
	labels := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if d < 1 || d > 7 {
		return "?"
	}
	return labels[d-1]
}
