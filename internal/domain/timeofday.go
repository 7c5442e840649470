package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// timeOfDayPattern matches a strict 24-hour "HH:MM" value.
var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a well-formed 24-hour "HH:MM" string.
func ValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// MinutesOfDay converts an "HH:MM" string into minutes since midnight.
// Anything that is not two colon-separated integers yields 0 (00:00).
func MinutesOfDay(s string) int {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0
	}
	return h*60 + m
}
