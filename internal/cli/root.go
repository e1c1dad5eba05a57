package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/happi2206/75progress/internal/config"
	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
	"github.com/happi2206/75progress/internal/progress"
	"github.com/happi2206/75progress/internal/remote"
	"github.com/happi2206/75progress/internal/session"
	"github.com/happi2206/75progress/internal/storage"
)

type Context struct {
	Config *config.Config
	Store  storage.Provider
	Engine *progress.Engine
	Mirror *remote.Mirror
	Logger *zap.Logger
}

// openSession loads the store and positions a session on today.
func (ctx *Context) openSession() (*session.Session, error) {
	if err := ctx.Store.Load(); err != nil {
		return nil, err
	}
	s := session.New(ctx.Store, ctx.Engine, ctx.Mirror, ctx.Config.UserID, ctx.Logger)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseDay accepts YYYY-MM-DD, "today", or "yesterday".
func parseDay(s string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return dateutil.Normalize(time.Now()), nil
	case "yesterday":
		return dateutil.AddDays(time.Now(), -1), nil
	}
	day, err := dateutil.ParseISO(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD, 'today', or 'yesterday': %w", err)
	}
	return day, nil
}

// parseTask maps a task argument (storage key or close variant) onto
// the task catalog.
func parseTask(s string) (models.Task, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if task, ok := models.TaskByKey(key); ok {
		return task, nil
	}

	var keys []string
	for _, task := range models.AllTasks {
		keys = append(keys, task.StorageKey())
	}
	return 0, fmt.Errorf("unknown task %q, expected one of: %s", s, strings.Join(keys, ", "))
}

func parseShareRange(s string) (models.ShareRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return models.ShareToday, nil
	case "7", "week", "last7":
		return models.ShareLast7Days, nil
	case "30", "month", "last30":
		return models.ShareLast30Days, nil
	case "75", "full", "full75":
		return models.ShareFull75Days, nil
	}
	return "", fmt.Errorf("unknown range %q, expected today, 7, 30, or 75", s)
}

func syncSession(cmdCtx context.Context, s *session.Session) {
	s.FetchRemotePhotos(cmdCtx)
	waitCtx, cancel := context.WithTimeout(cmdCtx, 10*time.Second)
	defer cancel()
	if err := s.AwaitRemote(waitCtx); err != nil {
		fmt.Printf("Remote fetch failed: %v\n", err)
	}
}

// flushRemote waits out in-flight mirror writes before the process
// exits. Without it the background day-log push would be cut off.
func (ctx *Context) flushRemote(s *session.Session) {
	if !ctx.Mirror.Enabled() {
		return
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Flush(waitCtx); err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Remote mirror not confirmed: %v", err)))
	}
}
