package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

func newTestProviders(t *testing.T) map[string]Provider {
	t.Helper()
	dir := t.TempDir()

	sqlite := NewSQLiteStore(filepath.Join(dir, "75progress.db"))
	if err := sqlite.Init(); err != nil {
		t.Fatalf("sqlite init failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	js := NewJSONStore(filepath.Join(dir, "75progress.json"))
	if err := js.Init(); err != nil {
		t.Fatalf("json init failed: %v", err)
	}

	return map[string]Provider{"sqlite": sqlite, "json": js}
}

func mustDay(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := dateutil.ParseISO(iso)
	if err != nil {
		t.Fatalf("bad day %s: %v", iso, err)
	}
	return d
}

func TestUpsertThenGetRoundTrip(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			day := mustDay(t, "2025-10-04")
			entry := models.DayEntry{
				Day:     day,
				Summary: "pushed hard today",
				Photos: []models.PhotoItem{
					{URL: "https://example.com/a.jpg", Label: "progress_pic"},
					{URL: "https://example.com/b.jpg", Label: "workout_1"},
				},
				Notes:      map[string]string{"reading": "chapter 4"},
				IsComplete: true,
			}

			if err := store.UpsertEntry(entry); err != nil {
				t.Fatalf("UpsertEntry failed: %v", err)
			}

			got, err := store.GetEntry(day)
			if err != nil {
				t.Fatalf("GetEntry failed: %v", err)
			}
			if got == nil {
				t.Fatal("GetEntry returned nil after upsert")
			}

			if got.Summary != entry.Summary {
				t.Errorf("summary = %q, want %q", got.Summary, entry.Summary)
			}
			if !got.IsComplete {
				t.Error("IsComplete not persisted")
			}
			if len(got.Photos) != 2 {
				t.Fatalf("photos = %d, want 2", len(got.Photos))
			}
			if got.Notes["reading"] != "chapter 4" {
				t.Errorf("notes = %v, want reading note", got.Notes)
			}
			if !dateutil.SameDay(got.Day, day) {
				t.Errorf("day = %v, want %v", got.Day, day)
			}
		})
	}
}

func TestGetEntry_MissingDayIsNil(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.GetEntry(mustDay(t, "2025-01-01"))
			if err != nil {
				t.Fatalf("GetEntry failed: %v", err)
			}
			if got != nil {
				t.Errorf("GetEntry for missing day = %+v, want nil", got)
			}
		})
	}
}

func TestUpsertEntry_IDStableAcrossEdits(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			day := mustDay(t, "2025-10-04")

			if err := store.UpsertEntry(models.DayEntry{Day: day, Summary: "first"}); err != nil {
				t.Fatalf("first upsert failed: %v", err)
			}
			first, err := store.GetEntry(day)
			if err != nil || first == nil {
				t.Fatalf("get after first upsert: %v %v", first, err)
			}

			if err := store.UpsertEntry(models.DayEntry{Day: day, Summary: "edited", IsComplete: true}); err != nil {
				t.Fatalf("second upsert failed: %v", err)
			}
			second, err := store.GetEntry(day)
			if err != nil || second == nil {
				t.Fatalf("get after second upsert: %v %v", second, err)
			}

			if first.ID != second.ID {
				t.Errorf("entry id changed across edits: %s -> %s", first.ID, second.ID)
			}
			if second.Summary != "edited" {
				t.Errorf("summary = %q, want %q", second.Summary, "edited")
			}
		})
	}
}

func TestQueryRange_SortedInclusive(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			for _, iso := range []string{"2025-10-05", "2025-10-01", "2025-10-03", "2025-09-30", "2025-10-06"} {
				if err := store.UpsertEntry(models.DayEntry{Day: mustDay(t, iso)}); err != nil {
					t.Fatalf("upsert %s failed: %v", iso, err)
				}
			}

			entries, err := store.QueryRange(mustDay(t, "2025-10-01"), mustDay(t, "2025-10-05"))
			if err != nil {
				t.Fatalf("QueryRange failed: %v", err)
			}

			want := []string{"2025-10-01", "2025-10-03", "2025-10-05"}
			if len(entries) != len(want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(want))
			}
			for i, e := range entries {
				if dateutil.ISO(e.Day) != want[i] {
					t.Errorf("entry %d = %s, want %s", i, dateutil.ISO(e.Day), want[i])
				}
			}
		})
	}
}

func TestEarliestDate(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.EarliestDate()
			if err != nil {
				t.Fatalf("EarliestDate on empty store failed: %v", err)
			}
			if got != nil {
				t.Errorf("EarliestDate on empty store = %v, want nil", got)
			}

			for _, iso := range []string{"2025-10-05", "2025-08-25", "2025-09-15"} {
				if err := store.UpsertEntry(models.DayEntry{Day: mustDay(t, iso)}); err != nil {
					t.Fatalf("upsert %s failed: %v", iso, err)
				}
			}

			got, err = store.EarliestDate()
			if err != nil {
				t.Fatalf("EarliestDate failed: %v", err)
			}
			if got == nil || dateutil.ISO(*got) != "2025-08-25" {
				t.Errorf("EarliestDate = %v, want 2025-08-25", got)
			}
		})
	}
}

func TestDeleteAndClearEntries(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			day := mustDay(t, "2025-10-04")
			if err := store.UpsertEntry(models.DayEntry{Day: day}); err != nil {
				t.Fatalf("upsert failed: %v", err)
			}

			if err := store.DeleteEntry(day); err != nil {
				t.Fatalf("DeleteEntry failed: %v", err)
			}
			if got, _ := store.GetEntry(day); got != nil {
				t.Error("entry still present after delete")
			}
			if err := store.DeleteEntry(day); err == nil {
				t.Error("deleting a missing entry should fail")
			}

			if err := store.UpsertEntry(models.DayEntry{Day: day}); err != nil {
				t.Fatalf("upsert failed: %v", err)
			}
			if err := store.ClearEntries(); err != nil {
				t.Fatalf("ClearEntries failed: %v", err)
			}
			if got, _ := store.EarliestDate(); got != nil {
				t.Error("entries remain after ClearEntries")
			}
		})
	}
}

func TestChallengeStartPersistence(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.GetChallengeStart()
			if err != nil {
				t.Fatalf("GetChallengeStart failed: %v", err)
			}
			if got != nil {
				t.Errorf("unset challenge start = %v, want nil", got)
			}

			day := mustDay(t, "2025-09-01")
			if err := store.SetChallengeStart(day); err != nil {
				t.Fatalf("SetChallengeStart failed: %v", err)
			}

			got, err = store.GetChallengeStart()
			if err != nil {
				t.Fatalf("GetChallengeStart failed: %v", err)
			}
			if got == nil || !got.Equal(day) {
				t.Errorf("challenge start = %v, want %v", got, day)
			}
		})
	}
}

func TestProfileRoundTrip(t *testing.T) {
	for name, store := range newTestProviders(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.GetProfile(); err == nil {
				t.Error("GetProfile on fresh store should fail")
			}

			profile := models.UserProfile{
				Name:      "Happiness",
				Email:     "happy@example.com",
				Goal:      "Get stronger",
				StartDate: mustDay(t, "2025-09-01"),
			}
			if err := store.SaveProfile(profile); err != nil {
				t.Fatalf("SaveProfile failed: %v", err)
			}

			got, err := store.GetProfile()
			if err != nil {
				t.Fatalf("GetProfile failed: %v", err)
			}
			if got.Name != profile.Name || got.Email != profile.Email {
				t.Errorf("profile = %+v, want %+v", got, profile)
			}
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "75progress.db")

	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	day := mustDay(t, "2025-10-04")
	if err := store.UpsertEntry(models.DayEntry{Day: day, Summary: "persisted", IsComplete: true}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetEntry(day)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if got == nil || got.Summary != "persisted" || !got.IsComplete {
		t.Errorf("reopened entry = %+v, want persisted complete entry", got)
	}
}

func TestSQLiteDeleteCascadesPhotos(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "75progress.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer store.Close()

	day := mustDay(t, "2025-10-04")
	if err := store.UpsertEntry(models.DayEntry{
		Day: day,
		Photos: []models.PhotoItem{
			{URL: "https://example.com/a.jpg", Label: "progress_pic"},
			{URL: "https://example.com/b.jpg", Label: "workout_1"},
		},
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Force fresh connections so the cascade is checked on more than
	// the connection that created the schema.
	store.GetDB().SetMaxIdleConns(0)

	if err := store.DeleteEntry(day); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	var orphans int
	if err := store.GetDB().QueryRow("SELECT COUNT(*) FROM photos").Scan(&orphans); err != nil {
		t.Fatalf("count photos failed: %v", err)
	}
	if orphans != 0 {
		t.Errorf("photos left behind after entry delete: %d", orphans)
	}
}
