package activity

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// dateLayouts are tried in order by ParseDate. Date-times without a zone are
// local time and bare dates are UTC, the way browsers parse ISO 8601.
var dateLayouts = []struct {
	layout string
	local  bool
}{
	{layout: time.RFC3339Nano},
	{layout: "2006-01-02T15:04:05", local: true},
	{layout: "2006-01-02T15:04", local: true},
	{layout: "2006-01-02 15:04:05", local: true},
	{layout: "2006-01-02"},
}

// ParseDate parses an activity date string.
func ParseDate(date string) (time.Time, error) {
	for _, l := range dateLayouts {
		loc := time.UTC
		if l.local {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(l.layout, date, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", date)
}

// SortByDate sorts activities in place, earliest first.
// Equal dates are ordered by ID. Activities whose date cannot be parsed
// sort after all others.
func SortByDate(activities []Activity) {
	type keyed struct {
		a     Activity
		t     time.Time
		valid bool
	}

	ks := make([]keyed, len(activities))
	for i, a := range activities {
		t, err := ParseDate(a.Date)
		ks[i] = keyed{a: a, t: t, valid: err == nil}
	}

	slices.SortStableFunc(ks, func(x, y keyed) int {
		switch {
		case x.valid && !y.valid:
			return -1
		case !x.valid && y.valid:
			return 1
		}
		if c := x.t.Compare(y.t); c != 0 {
			return c
		}
		return cmp.Compare(x.a.ID, y.a.ID)
	})

	for i, k := range ks {
		activities[i] = k.a
	}
}
