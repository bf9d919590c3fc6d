package availability

import (
	"errors"
	"testing"
	"time"
)

func weekdayHours(t *testing.T) *Hours {
	t.Helper()
	var rules []BusinessHoursRule
	for wd := time.Monday; wd <= time.Friday; wd++ {
		rules = append(rules, BusinessHoursRule{Weekday: wd, OpenMinute: 540, CloseMinute: 1020, Open: true})
	}
	h, err := NewHours(rules)
	if err != nil {
		t.Fatalf("NewHours failed: %v", err)
	}
	return h
}

func TestHoursUnlistedDaysClosed(t *testing.T) {
	h := weekdayHours(t)
	if h.IsOpen(time.Sunday) || h.IsOpen(time.Saturday) {
		t.Fatal("weekend should be closed")
	}
	if !h.IsOpen(time.Wednesday) {
		t.Fatal("Wednesday should be open")
	}
}

func TestHoursRejectsInvalidRule(t *testing.T) {
	_, err := NewHours([]BusinessHoursRule{{Weekday: 9, Open: true, OpenMinute: 0, CloseMinute: 60}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad weekday, got %v", err)
	}
	_, err = NewHours([]BusinessHoursRule{{Weekday: time.Monday, Open: true, OpenMinute: 600, CloseMinute: 540}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for inverted window, got %v", err)
	}
}

func TestHoursRuleForInvalidWeekday(t *testing.T) {
	h := weekdayHours(t)
	if _, err := h.RuleFor(7); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestHoursReplaceAll(t *testing.T) {
	h := weekdayHours(t)
	err := h.ReplaceAll([]BusinessHoursRule{
		{Weekday: time.Saturday, OpenMinute: 600, CloseMinute: 840, Open: true},
	})
	if err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if !h.IsOpen(time.Saturday) {
		t.Fatal("Saturday should be open after replace")
	}
	// The whole table was swapped: Monday is no longer listed, so it is closed.
	if h.IsOpen(time.Monday) {
		t.Fatal("Monday should be closed after replace")
	}
}

func TestHoursReplaceAllInvalidKeepsOldTable(t *testing.T) {
	h := weekdayHours(t)
	err := h.ReplaceAll([]BusinessHoursRule{{Weekday: time.Monday, Open: true, OpenMinute: 900, CloseMinute: 600}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !h.IsOpen(time.Monday) {
		t.Fatal("failed replace must leave the previous table visible")
	}
}

func TestWindowOn(t *testing.T) {
	h := weekdayHours(t)
	monday := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	win, open := h.windowOn(monday)
	if !open {
		t.Fatal("expected Monday open")
	}
	if !win.Start.Equal(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)) ||
		!win.End.Equal(time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("window = %v-%v, want 09:00-17:00", win.Start, win.End)
	}

	sunday := monday.AddDate(0, 0, -1)
	if _, open := h.windowOn(sunday); open {
		t.Fatal("expected Sunday closed")
	}
}
