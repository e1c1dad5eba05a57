// Package export renders a share report over a date range: one row per
// logged day with its challenge day number, completion score, and
// summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
	"github.com/happi2206/75progress/internal/progress"
	"github.com/happi2206/75progress/internal/storage"
)

// Report is a materialized share range ready for rendering.
type Report struct {
	Range          models.ShareRange
	Start, End     time.Time
	ChallengeStart time.Time
	Entries        []models.DayEntry
	Streak         int

	engine *progress.Engine
}

// Exporter builds reports from the durable store.
type Exporter struct {
	store  storage.Provider
	engine *progress.Engine
}

func New(store storage.Provider, engine *progress.Engine) *Exporter {
	return &Exporter{store: store, engine: engine}
}

// Build queries the store for the range ending today and computes the
// derived figures the renderers need.
func (e *Exporter) Build(r models.ShareRange, today time.Time) (*Report, error) {
	start, end := e.engine.DateRange(r, today)

	entries, err := e.store.QueryRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query range: %w", err)
	}

	persisted, err := e.store.GetChallengeStart()
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge start: %w", err)
	}
	earliest, err := e.store.EarliestDate()
	if err != nil {
		return nil, fmt.Errorf("failed to read earliest entry: %w", err)
	}
	challengeStart, ok := e.engine.ChallengeStart(persisted, earliest)
	if !ok {
		challengeStart = today
	}

	var lookupErr error
	streak := e.engine.Streak(today, func(d time.Time) *models.DayEntry {
		entry, err := e.store.GetEntry(d)
		if err != nil {
			lookupErr = err
			return nil
		}
		return entry
	})
	if lookupErr != nil {
		return nil, fmt.Errorf("failed to read history: %w", lookupErr)
	}

	return &Report{
		Range:          r,
		Start:          start,
		End:            end,
		ChallengeStart: challengeStart,
		Entries:        entries,
		Streak:         streak,
		engine:         e.engine,
	}, nil
}

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 75 Progress: %s\n\n", r.Range.Label())
	fmt.Fprintf(&b, "%s to %s\n\n", dateutil.ISO(r.Start), dateutil.ISO(r.End))
	fmt.Fprintf(&b, "Current streak: %d day(s)\n\n", r.Streak)

	if len(r.Entries) == 0 {
		b.WriteString("No days logged in this range.\n")
		return b.String()
	}

	b.WriteString("| Day | Date | Logged | Completion | Tasks | Summary |\n")
	b.WriteString("|-----|------|--------|------------|-------|---------|\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %.0f%% | %s | %s |\n",
			r.engine.DayNumber(entry.Day, r.ChallengeStart),
			dateutil.ISO(entry.Day),
			logged(entry.IsComplete),
			r.engine.Completion(&entry)*100,
			taskLabels(entry),
			markdownCell(entry.Summary))
	}

	return b.String()
}

// CSV writes the report rows to w.
func (r *Report) CSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"day_number", "date", "logged", "completion", "tasks", "summary"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, entry := range r.Entries {
		row := []string{
			fmt.Sprintf("%d", r.engine.DayNumber(entry.Day, r.ChallengeStart)),
			dateutil.ISO(entry.Day),
			fmt.Sprintf("%t", entry.IsComplete),
			fmt.Sprintf("%.2f", r.engine.Completion(&entry)),
			taskLabels(entry),
			entry.Summary,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// taskLabels lists the task slots answered by a photo, in catalog order.
func taskLabels(entry models.DayEntry) string {
	var labels []string
	for _, task := range models.AllTasks {
		if _, ok := entry.PhotoForTask(task.StorageKey()); ok {
			labels = append(labels, task.StorageKey())
		}
	}
	return strings.Join(labels, " ")
}

func logged(complete bool) string {
	if complete {
		return "yes"
	}
	return "no"
}

// markdownCell keeps multi-line summaries from breaking the table.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
