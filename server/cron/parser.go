package cron

import (
	"errors"
	"fmt"
	"strings"
)

const scheduleSeparator = ";"

// ParseSchedules splits a schedule list into individual cron expressions.
// The format is: cron_expression;cron_expression2
//
// Example:
//
//	"*/15 8-18 * * 1-5;0 * * * 0,6"
//
// Returns an error wrapping ErrInvalidCronSpec if:
//   - The list is empty
//   - Any cron expression is invalid
//   - Any cron expression appears twice
func ParseSchedules(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: schedule cannot be empty", ErrInvalidCronSpec)
	}

	parts := strings.Split(spec, scheduleSeparator)
	schedules := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue // Skip empty entries (e.g., trailing semicolon)
		}

		if seen[part] {
			return nil, fmt.Errorf("%w: duplicate schedule '%s'", ErrInvalidCronSpec, part)
		}
		seen[part] = true

		if _, err := parser.Parse(part); err != nil {
			return nil, errors.Join(fmt.Errorf("%w: '%s'", ErrInvalidCronSpec, part), err)
		}
		schedules = append(schedules, part)
	}

	if len(schedules) == 0 {
		return nil, fmt.Errorf("%w: no schedules found in '%s'", ErrInvalidCronSpec, spec)
	}

	return schedules, nil
}
