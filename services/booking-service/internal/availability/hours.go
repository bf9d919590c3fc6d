package availability

import (
	"fmt"
	"sync/atomic"
	"time"
)

const minutesPerDay = 24 * 60

// BusinessHoursRule is the weekly template entry for one day of the week.
// Open/Close are minutes from midnight in the studio's local time.
type BusinessHoursRule struct {
	Weekday     time.Weekday
	OpenMinute  int
	CloseMinute int
	Open        bool
}

type hoursTable [7]BusinessHoursRule

// Hours is the process-lifetime business-hours catalog. Reads go through an
// immutable snapshot swapped atomically on ReplaceAll, so queries in flight
// never observe a half-updated week.
type Hours struct {
	table atomic.Pointer[hoursTable]
}

// NewHours builds a catalog from the given rules. Days without a rule are
// closed. Duplicate weekdays keep the last rule given.
func NewHours(rules []BusinessHoursRule) (*Hours, error) {
	table, err := buildTable(rules)
	if err != nil {
		return nil, err
	}
	h := &Hours{}
	h.table.Store(table)
	return h, nil
}

// ReplaceAll swaps the whole weekly table in one atomic publication.
func (h *Hours) ReplaceAll(rules []BusinessHoursRule) error {
	table, err := buildTable(rules)
	if err != nil {
		return err
	}
	h.table.Store(table)
	return nil
}

func buildTable(rules []BusinessHoursRule) (*hoursTable, error) {
	var table hoursTable
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		table[wd] = BusinessHoursRule{Weekday: wd}
	}
	for _, r := range rules {
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return nil, fmt.Errorf("%w: weekday %d out of range", ErrInvalidArgument, r.Weekday)
		}
		if r.Open {
			if r.OpenMinute < 0 || r.CloseMinute > minutesPerDay || r.OpenMinute >= r.CloseMinute {
				return nil, fmt.Errorf("%w: open window %d-%d invalid for %s", ErrInvalidArgument, r.OpenMinute, r.CloseMinute, r.Weekday)
			}
		}
		table[r.Weekday] = r
	}
	return &table, nil
}

// RuleFor returns the rule for the weekday. Unconfigured days come back as
// closed rules, not an error.
func (h *Hours) RuleFor(weekday time.Weekday) (BusinessHoursRule, error) {
	if weekday < time.Sunday || weekday > time.Saturday {
		return BusinessHoursRule{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidArgument, weekday)
	}
	return h.table.Load()[weekday], nil
}

func (h *Hours) IsOpen(weekday time.Weekday) bool {
	if weekday < time.Sunday || weekday > time.Saturday {
		return false
	}
	return h.table.Load()[weekday].Open
}

// Rules returns the full weekly table in weekday order.
func (h *Hours) Rules() []BusinessHoursRule {
	table := h.table.Load()
	out := make([]BusinessHoursRule, len(table))
	copy(out, table[:])
	return out
}

// windowOn returns the open interval for the calendar day containing t,
// in t's location. ok is false on closed days.
func (h *Hours) windowOn(t time.Time) (Interval, bool) {
	rule := h.table.Load()[t.Weekday()]
	if !rule.Open {
		return Interval{}, false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Interval{
		Start: midnight.Add(time.Duration(rule.OpenMinute) * time.Minute),
		End:   midnight.Add(time.Duration(rule.CloseMinute) * time.Minute),
	}, true
}
