package availability

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Policy holds the scheduling rules the studio configures rather than the
// engine hard-coding.
type Policy struct {
	MinDuration      time.Duration
	MaxDuration      time.Duration
	DefaultDuration  time.Duration
	DefaultBuffer    time.Duration
	MaxDaysToCheck   int
	MaxSearchResults int
}

func DefaultPolicy() Policy {
	return Policy{
		MinDuration:      15 * time.Minute,
		MaxDuration:      8 * time.Hour,
		DefaultDuration:  60 * time.Minute,
		DefaultBuffer:    15 * time.Minute,
		MaxDaysToCheck:   30,
		MaxSearchResults: 100,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MinDuration <= 0 {
		p.MinDuration = d.MinDuration
	}
	if p.MaxDuration <= 0 {
		p.MaxDuration = d.MaxDuration
	}
	if p.DefaultDuration <= 0 {
		p.DefaultDuration = d.DefaultDuration
	}
	if p.DefaultBuffer < 0 {
		p.DefaultBuffer = d.DefaultBuffer
	}
	if p.MaxDaysToCheck <= 0 {
		p.MaxDaysToCheck = d.MaxDaysToCheck
	}
	if p.MaxSearchResults <= 0 {
		p.MaxSearchResults = d.MaxSearchResults
	}
	return p
}

// Validation reason codes surfaced verbatim as field-level feedback.
const (
	ReasonDurationBelowMinimum = "duration_below_minimum"
	ReasonDurationAboveMaximum = "duration_above_maximum"
	ReasonOutsideBusinessHours = "outside_business_hours"
	ReasonInPast               = "in_past"
)

// ValidationResult enumerates every violated rule instead of failing on the
// first, so callers can surface all problems at once.
type ValidationResult struct {
	Valid   bool
	Reasons []string
}

// SearchRequest describes an availability query. An empty ArtistIDs set means
// every artist (narrowed by LocationID when set), never a sentinel value.
type SearchRequest struct {
	Start      time.Time
	End        time.Time
	ArtistIDs  []string
	LocationID string
	Duration   time.Duration
	Buffer     time.Duration
	MaxResults int
}

// SuggestedSlot ranks a slot by its distance from a preferred start.
type SuggestedSlot struct {
	Slot     Slot
	Distance time.Duration
}

// SuggestOptions bounds an alternative-time search.
type SuggestOptions struct {
	WithinDays     int
	MaxSuggestions int
}

// Coordinator is the façade other subsystems call. All operations are
// read-only advisory snapshots: the authoritative conflict check happens
// inside the store's write transaction, never here.
type Coordinator struct {
	hours  *Hours
	store  Store
	roster Roster
	policy Policy
	now    func() time.Time
}

func NewCoordinator(hours *Hours, store Store, roster Roster, policy Policy) *Coordinator {
	return &Coordinator{
		hours:  hours,
		store:  store,
		roster: roster,
		policy: policy.withDefaults(),
		now:    time.Now,
	}
}

// Search returns bookable slots for the request, chronologically ordered and
// deterministic for a fixed store snapshot. Slots that have already begun are
// omitted.
func (c *Coordinator) Search(ctx context.Context, req SearchRequest) ([]Slot, error) {
	if req.Duration < 0 || req.Buffer < 0 {
		return nil, fmt.Errorf("%w: negative duration or buffer", ErrInvalidArgument)
	}
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("%w: search range end is not after start", ErrInvalidArgument)
	}
	duration := req.Duration
	if duration == 0 {
		duration = c.policy.DefaultDuration
	}
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > c.policy.MaxSearchResults {
		maxResults = c.policy.MaxSearchResults
	}

	artists, err := c.resolveArtists(ctx, req.ArtistIDs, req.LocationID)
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, nil
	}

	builder := &ScheduleBuilder{Hours: c.hours, Store: c.store}
	free, err := builder.FreeIntervals(ctx, Interval{Start: req.Start, End: req.End}, artists, req.Buffer)
	if err != nil {
		return nil, err
	}

	step := duration + req.Buffer
	slots := EnumerateSlots(free, duration, step, 0)
	slots = c.dropStarted(slots)
	if len(slots) > maxResults {
		slots = slots[:maxResults]
	}
	return slots, nil
}

// IsSlotFree reports whether the interval has no conflicting booking for the
// artist. It is advisory: the write path re-checks inside its transaction.
func (c *Coordinator) IsSlotFree(ctx context.Context, iv Interval, artistID, excludeBookingID string) (bool, error) {
	detector := &ConflictDetector{Store: c.store}
	report, err := detector.Detect(ctx, iv, artistID, excludeBookingID)
	if err != nil {
		return false, err
	}
	return report.Empty(), nil
}

// DetectConflicts exposes the full conflict report for detailed feedback.
func (c *Coordinator) DetectConflicts(ctx context.Context, iv Interval, artistID, excludeBookingID string) (ConflictReport, error) {
	detector := &ConflictDetector{Store: c.store}
	return detector.Detect(ctx, iv, artistID, excludeBookingID)
}

// ValidateSchedulingRules checks duration bounds, that the whole interval
// falls inside open hours, and that the start is not in the past. It needs no
// store access and never errors; every violated rule is reported.
func (c *Coordinator) ValidateSchedulingRules(start time.Time, duration time.Duration) ValidationResult {
	if duration <= 0 {
		duration = c.policy.DefaultDuration
	}

	var reasons []string
	if duration < c.policy.MinDuration {
		reasons = append(reasons, ReasonDurationBelowMinimum)
	}
	if duration > c.policy.MaxDuration {
		reasons = append(reasons, ReasonDurationAboveMaximum)
	}
	if start.Before(c.now()) {
		reasons = append(reasons, ReasonInPast)
	}
	iv := Interval{Start: start, End: start.Add(duration)}
	if win, open := c.hours.windowOn(start); !open || !win.Contains(iv) {
		reasons = append(reasons, ReasonOutsideBusinessHours)
	}

	return ValidationResult{Valid: len(reasons) == 0, Reasons: reasons}
}

// SuggestAlternatives searches forward from the preferred start and ranks
// results by absolute distance from it, ties broken chronologically. An empty
// result within the window is a normal outcome, not an error.
func (c *Coordinator) SuggestAlternatives(ctx context.Context, preferredStart time.Time, duration time.Duration, artistID string, opts SuggestOptions) ([]SuggestedSlot, error) {
	if opts.WithinDays <= 0 {
		opts.WithinDays = 7
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 5
	}

	var artistIDs []string
	if artistID != "" {
		artistIDs = []string{artistID}
	}
	slots, err := c.Search(ctx, SearchRequest{
		Start:     preferredStart,
		End:       preferredStart.AddDate(0, 0, opts.WithinDays),
		ArtistIDs: artistIDs,
		Duration:  duration,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]SuggestedSlot, 0, len(slots))
	for _, s := range slots {
		d := s.Interval.Start.Sub(preferredStart)
		if d < 0 {
			d = -d
		}
		suggestions = append(suggestions, SuggestedSlot{Slot: s, Distance: d})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Distance != suggestions[j].Distance {
			return suggestions[i].Distance < suggestions[j].Distance
		}
		return suggestions[i].Slot.Interval.Start.Before(suggestions[j].Slot.Interval.Start)
	})
	if len(suggestions) > opts.MaxSuggestions {
		suggestions = suggestions[:opts.MaxSuggestions]
	}
	return suggestions, nil
}

// FindNextAvailable scans forward one day at a time until a slot appears or
// maxDaysToCheck days have been checked. The scan is cancellable between
// days; maxDaysToCheck == 0 returns no result without touching the store.
func (c *Coordinator) FindNextAvailable(ctx context.Context, from time.Time, duration time.Duration, artistIDs []string, maxDaysToCheck int) (*SuggestedSlot, error) {
	if maxDaysToCheck < 0 {
		maxDaysToCheck = c.policy.MaxDaysToCheck
	}

	cursor := from
	for day := 0; day < maxDaysToCheck; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dayEnd := startOfNextDay(cursor)
		slots, err := c.Search(ctx, SearchRequest{
			Start:      cursor,
			End:        dayEnd,
			ArtistIDs:  artistIDs,
			Duration:   duration,
			MaxResults: 1,
		})
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			d := slots[0].Interval.Start.Sub(from)
			if d < 0 {
				d = 0
			}
			return &SuggestedSlot{Slot: slots[0], Distance: d}, nil
		}
		cursor = dayEnd
	}
	return nil, nil
}

func (c *Coordinator) resolveArtists(ctx context.Context, artistIDs []string, locationID string) ([]string, error) {
	if len(artistIDs) > 0 {
		return artistIDs, nil
	}
	if c.roster == nil {
		return nil, fmt.Errorf("%w: no artists requested and no roster configured", ErrInvalidArgument)
	}
	ids, err := c.roster.ListArtistIDs(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ids, nil
}

func (c *Coordinator) dropStarted(slots []Slot) []Slot {
	now := c.now()
	for i, s := range slots {
		if !s.Interval.Start.Before(now) {
			return slots[i:]
		}
	}
	return nil
}

func startOfNextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
