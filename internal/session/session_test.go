package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
	"github.com/happi2206/75progress/internal/progress"
	"github.com/happi2206/75progress/internal/remote"
	"github.com/happi2206/75progress/internal/storage"
)

func day(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := dateutil.ParseISO(iso)
	if err != nil {
		t.Fatalf("bad day %s: %v", iso, err)
	}
	return d
}

// newTestSession builds a session over a fresh SQLite store, a disabled
// mirror, and a clock pinned to the given day.
func newTestSession(t *testing.T, today string) (*Session, storage.Provider) {
	t.Helper()

	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mirror, err := remote.New(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("mirror init failed: %v", err)
	}

	s := New(store, progress.New(), mirror, "test-user", nil)
	fixed := day(t, today)
	s.now = func() time.Time { return fixed }

	if err := s.Open(); err != nil {
		t.Fatalf("session open failed: %v", err)
	}
	return s, store
}

func TestOpen_PositionsOnToday(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	if dateutil.ISO(s.CurrentDay()) != "2025-10-10" {
		t.Errorf("current day = %s, want 2025-10-10", dateutil.ISO(s.CurrentDay()))
	}
}

func TestShowNextDay_NoOpAtToday(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	if err := s.ShowNextDay(); err != nil {
		t.Fatalf("ShowNextDay failed: %v", err)
	}
	if dateutil.ISO(s.CurrentDay()) != "2025-10-10" {
		t.Errorf("navigated into the future: %s", dateutil.ISO(s.CurrentDay()))
	}
}

func TestShowPreviousDay_BoundedByChallengeStart(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-10-08")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.ShowPreviousDay(); err != nil {
			t.Fatalf("ShowPreviousDay failed: %v", err)
		}
	}

	if dateutil.ISO(s.CurrentDay()) != "2025-10-08" {
		t.Errorf("current day = %s, want bound 2025-10-08", dateutil.ISO(s.CurrentDay()))
	}
}

func TestShowPreviousDay_BoundedBy75DayWindow(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-01-01")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}

	// Window floor is today-74 = 2025-07-28.
	for i := 0; i < 100; i++ {
		if err := s.ShowPreviousDay(); err != nil {
			t.Fatalf("ShowPreviousDay failed: %v", err)
		}
	}

	if dateutil.ISO(s.CurrentDay()) != "2025-07-28" {
		t.Errorf("current day = %s, want window floor 2025-07-28", dateutil.ISO(s.CurrentDay()))
	}
}

func TestEditsSurviveNavigation(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-10-01")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}

	s.SetSummary("draft reflection")
	s.SetNote(models.TaskReading, "chapter 9")
	s.SetPhoto(models.TaskWorkout1, "file:///w1.jpg")

	if err := s.ShowPreviousDay(); err != nil {
		t.Fatalf("ShowPreviousDay failed: %v", err)
	}
	if s.Summary() != "" {
		t.Errorf("previous day inherited summary %q", s.Summary())
	}
	if err := s.ShowNextDay(); err != nil {
		t.Fatalf("ShowNextDay failed: %v", err)
	}

	if s.Summary() != "draft reflection" {
		t.Errorf("summary lost on navigation: %q", s.Summary())
	}
	if got := s.Content(models.TaskReading); got.Kind != ContentNote || got.Note != "chapter 9" {
		t.Errorf("note lost on navigation: %+v", got)
	}
	if got := s.Content(models.TaskWorkout1); got.Kind != ContentPhoto || got.PhotoURL != "file:///w1.jpg" {
		t.Errorf("photo lost on navigation: %+v", got)
	}
}

func TestSetPhotoAndNote_ClearSlots(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	s.SetPhoto(models.TaskWater, "file:///water.jpg")
	s.SetPhoto(models.TaskWater, "")
	if got := s.Content(models.TaskWater); got.Kind != ContentNone {
		t.Errorf("empty photo did not clear slot: %+v", got)
	}

	s.SetNote(models.TaskDiet, "clean eating")
	s.SetNote(models.TaskDiet, "   ")
	if got := s.Content(models.TaskDiet); got.Kind != ContentNone {
		t.Errorf("blank note did not clear slot: %+v", got)
	}
}

func TestSetDayLogged_PersistsAndRecomputes(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")

	// Yesterday already complete.
	if err := store.UpsertEntry(models.DayEntry{Day: day(t, "2025-10-09"), IsComplete: true}); err != nil {
		t.Fatalf("seed entry failed: %v", err)
	}

	s.SetSummary("  solid day  ")
	s.SetPhoto(models.TaskProgressPic, "file:///pic.jpg")
	s.SetNote(models.TaskReading, "chapter 9")

	streak, err := s.SetDayLogged(context.Background(), true)
	if err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}
	if streak != 2 {
		t.Errorf("streak = %d, want 2", streak)
	}

	entry, err := store.GetEntry(day(t, "2025-10-10"))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry == nil || !entry.IsComplete {
		t.Fatalf("logged entry = %+v, want complete", entry)
	}
	if entry.Summary != "solid day" {
		t.Errorf("summary = %q, want trimmed %q", entry.Summary, "solid day")
	}
	if len(entry.Photos) != 1 || entry.Photos[0].Label != "progress_pic" {
		t.Errorf("photos = %+v, want one progress_pic", entry.Photos)
	}
	if entry.Notes["reading"] != "chapter 9" {
		t.Errorf("notes = %v, want reading keyed by storage key", entry.Notes)
	}

	if s.IsDirty() {
		t.Error("session dirty after logging")
	}
}

func TestSetDayLogged_OmitsPhotosWhenUnlogging(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")

	s.SetPhoto(models.TaskProgressPic, "file:///pic.jpg")
	if _, err := s.SetDayLogged(context.Background(), false); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}

	entry, err := store.GetEntry(day(t, "2025-10-10"))
	if err != nil || entry == nil {
		t.Fatalf("GetEntry failed: %v %v", entry, err)
	}
	if entry.IsComplete {
		t.Error("unlogged day stored as complete")
	}
	if len(entry.Photos) != 0 {
		t.Errorf("photos attached without logging: %+v", entry.Photos)
	}
}

func TestSetDayLogged_LowersChallengeStart(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-10-05")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}
	// Seed an earlier entry so navigation can reach it.
	if err := store.UpsertEntry(models.DayEntry{Day: day(t, "2025-10-01")}); err != nil {
		t.Fatalf("seed entry failed: %v", err)
	}

	if err := s.Goto(day(t, "2025-10-01")); err != nil {
		t.Fatalf("Goto failed: %v", err)
	}
	if _, err := s.SetDayLogged(context.Background(), true); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}

	start, err := store.GetChallengeStart()
	if err != nil {
		t.Fatalf("GetChallengeStart failed: %v", err)
	}
	if start == nil || dateutil.ISO(*start) != "2025-10-01" {
		t.Errorf("challenge start = %v, want lowered to 2025-10-01", start)
	}

	// Logging a later day must not raise it back.
	if err := s.Goto(day(t, "2025-10-10")); err != nil {
		t.Fatalf("Goto failed: %v", err)
	}
	if _, err := s.SetDayLogged(context.Background(), true); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}
	start, _ = store.GetChallengeStart()
	if start == nil || dateutil.ISO(*start) != "2025-10-01" {
		t.Errorf("challenge start raised to %v", start)
	}
}

func TestDayNumber(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-10-01")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}

	n, err := s.DayNumber()
	if err != nil {
		t.Fatalf("DayNumber failed: %v", err)
	}
	if n != 10 {
		t.Errorf("day number = %d, want 10", n)
	}
}

func TestApplyRemote_MergesStaleDayWithoutTouchingCurrent(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")
	if err := store.SetChallengeStart(day(t, "2025-10-01")); err != nil {
		t.Fatalf("set challenge start failed: %v", err)
	}

	// Visit yesterday, then come back to today.
	if err := s.ShowPreviousDay(); err != nil {
		t.Fatalf("ShowPreviousDay failed: %v", err)
	}
	stale := s.CurrentDay()
	if err := s.ShowNextDay(); err != nil {
		t.Fatalf("ShowNextDay failed: %v", err)
	}

	// A fetch for the stale day resolves after navigating away.
	s.applyRemote(RemoteResult{
		Day:  stale,
		URLs: map[string]string{"workout_1": "https://remote/w1.jpg"},
	})

	if got := s.Content(models.TaskWorkout1); got.Kind != ContentNone {
		t.Errorf("stale result leaked into current day: %+v", got)
	}

	if err := s.ShowPreviousDay(); err != nil {
		t.Fatalf("ShowPreviousDay failed: %v", err)
	}
	if got := s.Content(models.TaskWorkout1); got.Kind != ContentPhoto || got.PhotoURL != "https://remote/w1.jpg" {
		t.Errorf("stale-day merge lost: %+v", got)
	}
}

func TestApplyRemote_NeverOverwritesLocalEdit(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	s.SetNote(models.TaskReading, "my local note")
	s.applyRemote(RemoteResult{
		Day:  s.CurrentDay(),
		URLs: map[string]string{"reading": "https://remote/r.jpg"},
	})

	if got := s.Content(models.TaskReading); got.Kind != ContentNote || got.Note != "my local note" {
		t.Errorf("remote result clobbered local edit: %+v", got)
	}
}

func TestApplyRemote_UploadBackfillsURL(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")

	s.SetPhoto(models.TaskProgressPic, "file:///local.jpg")
	if _, err := s.SetDayLogged(context.Background(), true); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}

	s.applyRemote(RemoteResult{
		Day:        s.CurrentDay(),
		URLs:       map[string]string{"progress_pic": "https://remote/p.jpg"},
		fromUpload: true,
	})

	if got := s.Content(models.TaskProgressPic); got.PhotoURL != "https://remote/p.jpg" {
		t.Errorf("cache not backfilled: %+v", got)
	}

	entry, err := store.GetEntry(s.CurrentDay())
	if err != nil || entry == nil {
		t.Fatalf("GetEntry failed: %v %v", entry, err)
	}
	if url, _ := entry.PhotoForTask("progress_pic"); url.URL != "https://remote/p.jpg" {
		t.Errorf("store not backfilled: %+v", entry.Photos)
	}
	if !entry.IsComplete {
		t.Error("backfill changed completion flag")
	}
}

func TestApplyRemote_UploadDoesNotMarkDayComplete(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")

	s.SetPhoto(models.TaskProgressPic, "file:///local.jpg")
	s.applyRemote(RemoteResult{
		Day:        s.CurrentDay(),
		URLs:       map[string]string{"progress_pic": "https://remote/p.jpg"},
		fromUpload: true,
	})

	entry, err := store.GetEntry(s.CurrentDay())
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry != nil && entry.IsComplete {
		t.Error("upload backfill marked unlogged day complete")
	}
}

func TestIsDirty(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	if s.IsDirty() {
		t.Error("fresh session reports dirty")
	}
	s.SetSummary("draft")
	if !s.IsDirty() {
		t.Error("edit not detected as dirty")
	}
}

func TestCompletionReflectsSessionState(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	if got := s.Completion(); got != 0 {
		t.Errorf("empty day completion = %v, want 0", got)
	}

	for _, task := range models.AllTasks {
		s.SetPhoto(task, "file:///"+task.StorageKey()+".jpg")
	}
	s.SetSummary("all done")

	if got := s.Completion(); got != 1.0 {
		t.Errorf("full day completion = %v, want 1.0", got)
	}
}

func TestGoto_RejectsDayBeforeWindow(t *testing.T) {
	s, store := newTestSession(t, "2025-10-10")

	if err := s.Goto(day(t, "2024-01-01")); err == nil {
		t.Fatal("Goto accepted a day outside the 75-day window")
	}
	if dateutil.ISO(s.CurrentDay()) != "2025-10-10" {
		t.Errorf("current day moved to %s after rejected Goto", dateutil.ISO(s.CurrentDay()))
	}

	// A write after the rejection must land on the day the session is
	// still on, never on the window edge.
	if _, err := s.SetDayLogged(context.Background(), true); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}
	edge, err := store.GetEntry(day(t, "2025-07-28"))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if edge != nil {
		t.Errorf("entry stored at window edge: %+v", edge)
	}
	if got, err := store.GetEntry(day(t, "2025-10-10")); err != nil || got == nil {
		t.Fatalf("today's entry missing after log: %v %v", got, err)
	}
}

func TestGoto_RejectsFutureDay(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	if err := s.Goto(day(t, "2025-10-11")); err == nil {
		t.Fatal("Goto accepted a future day")
	}
	if dateutil.ISO(s.CurrentDay()) != "2025-10-10" {
		t.Errorf("current day moved to %s after rejected Goto", dateutil.ISO(s.CurrentDay()))
	}
}

func TestFlush_WaitsOutRemoteWrites(t *testing.T) {
	s, _ := newTestSession(t, "2025-10-10")

	s.SetSummary("flushed")
	if _, err := s.SetDayLogged(context.Background(), false); err != nil {
		t.Fatalf("SetDayLogged failed: %v", err)
	}
	s.FetchRemotePhotos(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if merged := s.MergePending(); merged != 0 {
		t.Errorf("results left pending after Flush: %d", merged)
	}
}
