// Package session owns the "current day" state for one run of the app:
// which day is open, the in-memory shadow of unsaved edits per day, and
// the write-through path that persists a logged day locally before
// mirroring it remotely.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"go.uber.org/zap"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
	"github.com/happi2206/75progress/internal/progress"
	"github.com/happi2206/75progress/internal/remote"
	"github.com/happi2206/75progress/internal/storage"
)

// ContentKind distinguishes the two shapes a task slot can hold.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentPhoto
	ContentNote
)

// CardContent is the session-cached content of one task slot: a photo
// URL or a note, never both.
type CardContent struct {
	Kind     ContentKind
	PhotoURL string
	Note     string
}

// dayState shadows the durable store for one visited day so edits
// survive navigating away and back before the day is logged.
type dayState struct {
	Summary    string
	IsComplete bool
	Content    map[models.Task]CardContent

	// localEdit marks slots the user touched this session; remote
	// merge results never overwrite these.
	localEdit map[models.Task]bool

	savedHash uint64
}

func (d *dayState) hash() uint64 {
	h, err := hashstructure.Hash(struct {
		Summary    string
		IsComplete bool
		Content    map[models.Task]CardContent
	}{d.Summary, d.IsComplete, d.Content}, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// RemoteResult carries the outcome of an async remote fetch back to the
// session owner. Day is the day the fetch was issued for, which may no
// longer be the current day by the time the result is consumed.
type RemoteResult struct {
	Day  time.Time
	URLs map[string]string
	Err  error

	// fromUpload marks results produced by our own photo upload; these
	// replace the local placeholder URL instead of deferring to it.
	fromUpload bool
}

// Session is the single logical owner of current-day state. All cache
// mutation happens on the caller's goroutine; background remote work
// communicates exclusively through the results channel.
type Session struct {
	store  storage.Provider
	engine *progress.Engine
	mirror *remote.Mirror
	log    *zap.Logger
	uid    string

	now func() time.Time

	currentDay time.Time
	cache      map[string]*dayState

	results  chan RemoteResult
	remoteWG sync.WaitGroup
}

func New(store storage.Provider, engine *progress.Engine, mirror *remote.Mirror, uid string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		store:   store,
		engine:  engine,
		mirror:  mirror,
		log:     log,
		uid:     uid,
		now:     time.Now,
		cache:   make(map[string]*dayState),
		results: make(chan RemoteResult, 16),
	}
}

// Open positions the session on today and loads its state.
func (s *Session) Open() error {
	return s.Goto(s.today())
}

func (s *Session) today() time.Time {
	return dateutil.Normalize(s.now())
}

// CurrentDay returns the normalized day the session is positioned on.
func (s *Session) CurrentDay() time.Time {
	return s.currentDay
}

// Goto opens an arbitrary day. Days outside the navigable window are
// rejected, never retargeted: a write that follows must land on exactly
// the day the caller asked for.
func (s *Session) Goto(day time.Time) error {
	day = dateutil.Normalize(day)

	today := s.today()
	if day.After(today) {
		return apperr.New(apperr.Validation,
			fmt.Sprintf("cannot open %s: future days are not navigable", dateutil.ISO(day)))
	}
	earliest, err := s.earliestNavigable()
	if err != nil {
		return err
	}
	if day.Before(earliest) {
		return apperr.New(apperr.Validation,
			fmt.Sprintf("cannot open %s: earliest navigable day is %s", dateutil.ISO(day), dateutil.ISO(earliest)))
	}

	return s.switchTo(day)
}

// ShowNextDay advances one day. Navigating into the future is a no-op.
func (s *Session) ShowNextDay() error {
	if !s.currentDay.Before(s.today()) {
		return nil
	}
	return s.switchTo(dateutil.AddDays(s.currentDay, 1))
}

// ShowPreviousDay steps back one day, bounded by the challenge/data
// beginning and the hard 75-day window.
func (s *Session) ShowPreviousDay() error {
	earliest, err := s.earliestNavigable()
	if err != nil {
		return err
	}
	if !s.currentDay.After(earliest) {
		return nil
	}
	return s.switchTo(dateutil.AddDays(s.currentDay, -1))
}

func (s *Session) earliestNavigable() (time.Time, error) {
	start, err := s.store.GetChallengeStart()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read challenge start: %w", err)
	}
	earliestEntry, err := s.store.EarliestDate()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read earliest entry: %w", err)
	}

	earliest := s.engine.EarliestNavigableDate(start, earliestEntry, s.today())
	// A future-dated challenge start must not lock today out.
	if today := s.today(); earliest.After(today) {
		earliest = today
	}
	return earliest, nil
}

// switchTo loads the incoming day's state. The outgoing day needs no
// explicit snapshot: its cache entry is mutated in place and stays in
// the map.
func (s *Session) switchTo(day time.Time) error {
	iso := dateutil.ISO(day)
	if _, ok := s.cache[iso]; !ok {
		state, err := s.loadDayState(day)
		if err != nil {
			return err
		}
		s.cache[iso] = state
	}
	s.currentDay = day
	return nil
}

// loadDayState builds the session shadow for a day from the durable
// store, or empty defaults when the day has no entry.
func (s *Session) loadDayState(day time.Time) (*dayState, error) {
	state := &dayState{
		Content:   make(map[models.Task]CardContent),
		localEdit: make(map[models.Task]bool),
	}

	entry, err := s.store.GetEntry(day)
	if err != nil {
		return nil, fmt.Errorf("failed to load entry for %s: %w", dateutil.ISO(day), err)
	}
	if entry != nil {
		state.Summary = entry.Summary
		state.IsComplete = entry.IsComplete
		for _, p := range entry.Photos {
			if task, ok := models.TaskByKey(p.Label); ok {
				state.Content[task] = CardContent{Kind: ContentPhoto, PhotoURL: p.URL}
			}
		}
		for key, note := range entry.Notes {
			if task, ok := models.TaskByKey(key); ok {
				if _, taken := state.Content[task]; !taken {
					state.Content[task] = CardContent{Kind: ContentNote, Note: note}
				}
			}
		}
	}

	state.savedHash = state.hash()
	return state, nil
}

func (s *Session) current() *dayState {
	return s.cache[dateutil.ISO(s.currentDay)]
}

// Summary returns the session-cached summary for the current day.
func (s *Session) Summary() string {
	return s.current().Summary
}

// SetSummary stages a summary draft for the current day.
func (s *Session) SetSummary(text string) {
	s.current().Summary = text
}

// IsComplete reports the session view of the current day's logged flag.
func (s *Session) IsComplete() bool {
	return s.current().IsComplete
}

// Content returns the cached slot content for a task on the current day.
func (s *Session) Content(task models.Task) CardContent {
	return s.current().Content[task]
}

// SetPhoto stages a photo for a task slot. An empty URL clears the slot.
func (s *Session) SetPhoto(task models.Task, url string) {
	state := s.current()
	state.localEdit[task] = true
	if url == "" {
		delete(state.Content, task)
		return
	}
	state.Content[task] = CardContent{Kind: ContentPhoto, PhotoURL: url}
}

// SetNote stages a note for a task slot. A blank note clears the slot.
func (s *Session) SetNote(task models.Task, text string) {
	state := s.current()
	state.localEdit[task] = true
	if strings.TrimSpace(text) == "" {
		delete(state.Content, task)
		return
	}
	state.Content[task] = CardContent{Kind: ContentNote, Note: text}
}

// IsDirty reports whether the current day holds edits not yet persisted
// by SetDayLogged.
func (s *Session) IsDirty() bool {
	state := s.current()
	return state.hash() != state.savedHash
}

// DayNumber returns the 1-based challenge day number of the current day.
func (s *Session) DayNumber() (int, error) {
	start, err := s.store.GetChallengeStart()
	if err != nil {
		return 0, fmt.Errorf("failed to read challenge start: %w", err)
	}
	earliestEntry, err := s.store.EarliestDate()
	if err != nil {
		return 0, fmt.Errorf("failed to read earliest entry: %w", err)
	}

	effective, ok := s.engine.ChallengeStart(start, earliestEntry)
	if !ok {
		effective = s.today()
	}
	return s.engine.DayNumber(s.currentDay, effective), nil
}

// Streak recomputes the current streak from the durable store's full
// history, ending at today.
func (s *Session) Streak() (int, error) {
	return s.streakAsOf(s.today())
}

func (s *Session) streakAsOf(day time.Time) (int, error) {
	var lookupErr error
	streak := s.engine.Streak(day, func(d time.Time) *models.DayEntry {
		entry, err := s.store.GetEntry(d)
		if err != nil {
			lookupErr = err
			return nil
		}
		return entry
	})
	if lookupErr != nil {
		return 0, fmt.Errorf("failed to read history: %w", lookupErr)
	}
	return streak, nil
}

// Completion scores the current day from its session state.
func (s *Session) Completion() float64 {
	entry := s.buildEntry(true)
	return s.engine.Completion(&entry)
}

// buildEntry materializes the current day's cache into a DayEntry.
// Photos are attached only when the day is being logged.
func (s *Session) buildEntry(withPhotos bool) models.DayEntry {
	state := s.current()
	entry := models.DayEntry{
		Day:        s.currentDay,
		Summary:    strings.TrimSpace(state.Summary),
		IsComplete: state.IsComplete,
	}

	for _, task := range models.AllTasks {
		content, ok := state.Content[task]
		if !ok {
			continue
		}
		switch content.Kind {
		case ContentPhoto:
			if withPhotos {
				entry.Photos = append(entry.Photos, models.PhotoItem{
					URL:   content.PhotoURL,
					Label: task.StorageKey(),
				})
			}
		case ContentNote:
			if entry.Notes == nil {
				entry.Notes = make(map[string]string)
			}
			// Notes key by task storage key so the association
			// survives re-saves.
			entry.Notes[task.StorageKey()] = content.Note
		}
	}

	return entry
}

// SetDayLogged is the single write-through operation: it persists the
// current day's session state, recomputes the streak, lowers the
// challenge start if this day predates it, and only then mirrors the
// same facts remotely. The local write and recompute complete before
// the remote attempt starts; a remote failure never rolls them back.
func (s *Session) SetDayLogged(ctx context.Context, logged bool) (int, error) {
	state := s.current()
	state.IsComplete = logged

	entry := s.buildEntry(logged)
	if err := s.store.UpsertEntry(entry); err != nil {
		return 0, fmt.Errorf("failed to persist day %s: %w", dateutil.ISO(s.currentDay), err)
	}
	state.savedHash = state.hash()

	if err := s.lowerChallengeStart(s.currentDay); err != nil {
		return 0, err
	}

	streak, err := s.Streak()
	if err != nil {
		return 0, err
	}

	day := s.currentDay
	summary := entry.Summary
	s.remoteWG.Add(1)
	go func() {
		defer s.remoteWG.Done()
		snapshot := streak
		if err := s.mirror.UpsertDayLog(ctx, s.uid, day, summary, logged, &snapshot); err != nil {
			s.log.Warn("day log mirror failed",
				zap.String("day", dateutil.ISO(day)),
				zap.Error(err))
		}
	}()

	return streak, nil
}

// lowerChallengeStart moves the persisted start earlier when day
// predates it. The start is never raised here.
func (s *Session) lowerChallengeStart(day time.Time) error {
	current, err := s.store.GetChallengeStart()
	if err != nil {
		return fmt.Errorf("failed to read challenge start: %w", err)
	}
	if current == nil || day.Before(*current) {
		if err := s.store.SetChallengeStart(day); err != nil {
			return fmt.Errorf("failed to lower challenge start: %w", err)
		}
	}
	return nil
}

// Results exposes the channel background remote work reports on. The
// session owner drains it via MergePending or AwaitRemote.
func (s *Session) Results() <-chan RemoteResult {
	return s.results
}

// FetchRemotePhotos dispatches an async fetch of the current day's
// remote photo URLs. The result lands on the results channel; it is
// merged only when the owner consumes it.
func (s *Session) FetchRemotePhotos(ctx context.Context) {
	day := s.currentDay
	s.remoteWG.Add(1)
	go func() {
		defer s.remoteWG.Done()
		urls, err := s.mirror.FetchPhotoURLs(ctx, s.uid, day)
		s.results <- RemoteResult{Day: day, URLs: urls, Err: err}
	}()
}

// MergePending applies every already-delivered remote result without
// blocking. Returns the number of results consumed.
func (s *Session) MergePending() int {
	n := 0
	for {
		select {
		case res := <-s.results:
			s.applyRemote(res)
			n++
		default:
			return n
		}
	}
}

// Flush blocks until every in-flight remote operation has finished,
// applying results as they arrive. Short-lived callers use it before
// exiting so background mirror writes are not cut off mid-call.
func (s *Session) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.remoteWG.Wait()
		close(done)
	}()

	for {
		select {
		case res := <-s.results:
			s.applyRemote(res)
		case <-done:
			s.MergePending()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// AwaitRemote blocks for one remote result and applies it.
func (s *Session) AwaitRemote(ctx context.Context) error {
	select {
	case res := <-s.results:
		s.applyRemote(res)
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// applyRemote merges fetched photo URLs into the cache entry of the day
// they were requested for. Stale-day results still merge into that
// day's cache (the user may navigate back), but a slot the user edited
// locally this session is never overwritten.
func (s *Session) applyRemote(res RemoteResult) {
	if res.Err != nil {
		s.log.Warn("remote fetch failed",
			zap.String("day", dateutil.ISO(res.Day)),
			zap.Error(res.Err))
		return
	}
	if len(res.URLs) == 0 {
		return
	}

	iso := dateutil.ISO(res.Day)
	state, ok := s.cache[iso]
	if !ok {
		// Day never visited this session; seed its cache entry so the
		// merge is not lost.
		loaded, err := s.loadDayState(res.Day)
		if err != nil {
			s.log.Warn("failed to load day for remote merge",
				zap.String("day", iso), zap.Error(err))
			return
		}
		state = loaded
		s.cache[iso] = state
	}

	for key, url := range res.URLs {
		task, ok := models.TaskByKey(key)
		if !ok {
			continue
		}
		if res.fromUpload {
			// Backfill from our own upload: replace the slot's local
			// placeholder, but never resurrect a slot cleared since.
			if existing, taken := state.Content[task]; taken && existing.Kind == ContentPhoto {
				state.Content[task] = CardContent{Kind: ContentPhoto, PhotoURL: url}
				s.backfillStoredURL(res.Day, task, url)
			}
			continue
		}
		if state.localEdit[task] {
			continue
		}
		if existing, taken := state.Content[task]; taken && existing.Kind == ContentNote {
			continue
		}
		state.Content[task] = CardContent{Kind: ContentPhoto, PhotoURL: url}
	}
}

// backfillStoredURL rewrites a photo URL in the durable store when the
// day was already logged. It does not mark the day complete.
func (s *Session) backfillStoredURL(day time.Time, task models.Task, url string) {
	entry, err := s.store.GetEntry(day)
	if err != nil || entry == nil || !entry.IsComplete {
		return
	}
	for i := range entry.Photos {
		if entry.Photos[i].Label == task.StorageKey() {
			entry.Photos[i].URL = url
			if err := s.store.UpsertEntry(*entry); err != nil {
				s.log.Warn("failed to backfill photo url",
					zap.String("day", dateutil.ISO(day)), zap.Error(err))
			}
			return
		}
	}
}

// UploadPhoto stages a photo locally and fires an optimistic upload. A
// later successful upload backfills the remote URL into cache and, when
// the day is already logged, into the durable store. It never marks the
// day complete by itself. An empty image clears the slot.
func (s *Session) UploadPhoto(ctx context.Context, task models.Task, localURL string, image []byte) {
	if len(image) == 0 && localURL == "" {
		s.SetPhoto(task, "")
		day := s.currentDay
		s.remoteWG.Add(1)
		go func() {
			defer s.remoteWG.Done()
			err := s.mirror.RemovePhoto(ctx, s.uid, task.StorageKey(), day)
			if err != nil {
				s.log.Warn("remote photo removal failed", zap.Error(err))
			}
			s.results <- RemoteResult{Day: day, Err: err}
		}()
		return
	}

	s.SetPhoto(task, localURL)

	if len(image) == 0 {
		return
	}

	day := s.currentDay
	s.remoteWG.Add(1)
	go func() {
		defer s.remoteWG.Done()
		url, err := s.mirror.UploadPhoto(ctx, s.uid, day, image)
		if err != nil {
			s.log.Warn("photo upload failed",
				zap.String("day", dateutil.ISO(day)),
				zap.String("task", task.StorageKey()),
				zap.Error(err))
			return
		}
		if err := s.mirror.SetPhotoURL(ctx, s.uid, task.StorageKey(), day, url); err != nil {
			s.log.Warn("photo url mirror failed",
				zap.String("day", dateutil.ISO(day)),
				zap.Error(err))
		}
		s.results <- RemoteResult{Day: day, URLs: map[string]string{task.StorageKey(): url}, fromUpload: true}
	}()
}
