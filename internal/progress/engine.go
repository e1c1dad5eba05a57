package progress

import (
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

const (
	// PhotoWeight and SummaryWeight split the completion score between
	// photo-slot fill rate and summary presence. They must sum to 1.0.
	PhotoWeight   = 0.8
	SummaryWeight = 0.2

	// CompleteThreshold is the score at which a day counts as
	// substantially complete. It only drives the UI suggestion to log
	// the day; streaks read the user-asserted flag.
	CompleteThreshold = 0.8

	// ChallengeLengthDays is the span of the challenge window.
	ChallengeLengthDays = 75

	// GridSlots is the fixed calendar grid size: 6 rows of 7 columns.
	GridSlots = 42
)

func init() {
	if PhotoWeight+SummaryWeight != 1.0 {
		panic("PhotoWeight and SummaryWeight must sum to 1.0")
	}
}

// EntryLookup resolves a normalized day to its entry, or nil when the
// day has none.
type EntryLookup func(day time.Time) *models.DayEntry

// Engine computes derived day-progress values. It holds no state: every
// call is a full recompute over the entries it is given, so results
// cannot drift as history is edited or backfilled.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Completion scores an entry in [0,1]: photo-slot fill rate weighted at
// 80%, summary presence at 20%. A missing entry scores 0.
func (e *Engine) Completion(entry *models.DayEntry) float64 {
	if entry == nil {
		return 0
	}

	photoPart := float64(len(entry.Photos)) / float64(models.TaskCount)
	if photoPart > 1 {
		photoPart = 1
	}

	summaryPart := 0.0
	if entry.HasSummary() {
		summaryPart = 1
	}

	return photoPart*PhotoWeight + summaryPart*SummaryWeight
}

// Streak counts consecutive logged days walking backward from asOf,
// stopping at the first day without a complete entry. Only the
// user-asserted IsComplete flag counts; the completion score does not.
func (e *Engine) Streak(asOf time.Time, lookup EntryLookup) int {
	day := dateutil.Normalize(asOf)
	streak := 0

	for {
		entry := lookup(day)
		if entry == nil || !entry.IsComplete {
			break
		}
		streak++
		day = dateutil.AddDays(day, -1)
	}

	return streak
}

// DayNumber returns the 1-based challenge day for a given date. Days
// before the challenge start clamp to 1.
func (e *Engine) DayNumber(day, challengeStart time.Time) int {
	n := dateutil.DaysBetween(challengeStart, day) + 1
	if n < 1 {
		return 1
	}
	return n
}

// ChallengeStart resolves the effective start date from the persisted
// user-chosen start and the earliest entry on record: the earlier of
// the two wins. Discovering an older entry lowers the start; nothing
// ever raises it. The second return is false when neither exists.
func (e *Engine) ChallengeStart(persisted, earliestEntry *time.Time) (time.Time, bool) {
	switch {
	case persisted == nil && earliestEntry == nil:
		return time.Time{}, false
	case persisted == nil:
		return dateutil.Normalize(*earliestEntry), true
	case earliestEntry == nil:
		return dateutil.Normalize(*persisted), true
	}

	p := dateutil.Normalize(*persisted)
	ee := dateutil.Normalize(*earliestEntry)
	if ee.Before(p) {
		return ee, true
	}
	return p, true
}

// CalendarGrid lays out the month containing the given day as exactly 42
// slots: leading nils for the weekday offset of the 1st relative to
// firstWeekday, one slot per day of the month, trailing nils to pad to
// 6 weeks. A month whose offset would push it past 42 slots is
// truncated rather than overflowing the grid.
func (e *Engine) CalendarGrid(month time.Time, firstWeekday time.Weekday) []*time.Time {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	leading := int(monthStart.Weekday()) - int(firstWeekday)
	if leading < 0 {
		leading += 7
	}

	daysInMonth := dateutil.DaysBetween(monthStart, monthStart.AddDate(0, 1, 0))

	grid := make([]*time.Time, 0, GridSlots)
	for i := 0; i < leading; i++ {
		grid = append(grid, nil)
	}
	for d := 0; d < daysInMonth && len(grid) < GridSlots; d++ {
		day := dateutil.AddDays(monthStart, d)
		grid = append(grid, &day)
	}
	for len(grid) < GridSlots {
		grid = append(grid, nil)
	}

	return grid
}

// DateRange returns the inclusive span a share range covers, anchored
// to normalized today.
func (e *Engine) DateRange(r models.ShareRange, today time.Time) (start, end time.Time) {
	end = dateutil.Normalize(today)
	start = dateutil.AddDays(end, -(r.Days() - 1))
	return start, end
}

// EarliestNavigableDate bounds backward navigation: never earlier than
// the challenge/data beginning, and never outside the hard 75-day
// window ending today.
func (e *Engine) EarliestNavigableDate(challengeStart, earliestEntry *time.Time, today time.Time) time.Time {
	windowFloor := dateutil.AddDays(today, -(ChallengeLengthDays - 1))

	start, ok := e.ChallengeStart(challengeStart, earliestEntry)
	if !ok {
		return windowFloor
	}
	if start.Before(windowFloor) {
		return windowFloor
	}
	return start
}
