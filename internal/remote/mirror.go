// Package remote mirrors logged days to a per-user Firestore document
// tree and uploads progress photos to Cloud Storage. Every operation is
// best-effort: callers treat failures as diagnostics, never as blocking
// errors, and local state is always written first.
package remote

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

// Mirror talks to the remote day-log backend. A Mirror built without a
// service account is disabled: every call becomes a logged no-op, so
// the rest of the app never branches on connectivity.
type Mirror struct {
	fs     *firestore.Client
	bucket string
	app    *firebase.App
	log    *zap.Logger
}

// New initializes the Firebase clients. An empty serviceAccountPath
// yields a disabled mirror (dev mode) rather than an error.
func New(ctx context.Context, serviceAccountPath, bucket string, log *zap.Logger) (*Mirror, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if serviceAccountPath == "" {
		log.Info("remote sync disabled: no service account configured")
		return &Mirror{log: log}, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket},
		option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, apperr.Wrap(apperr.Authentication, "failed to initialize firebase app", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Authentication, "failed to create firestore client", err)
	}

	log.Info("remote sync enabled", zap.String("bucket", bucket))
	return &Mirror{fs: fs, bucket: bucket, app: app, log: log}, nil
}

// Enabled reports whether remote operations will actually reach the
// backend.
func (m *Mirror) Enabled() bool {
	return m.fs != nil
}

// Close releases the Firestore client.
func (m *Mirror) Close() error {
	if m.fs != nil {
		return m.fs.Close()
	}
	return nil
}

func (m *Mirror) dayLogDoc(uid string, day time.Time) *firestore.DocumentRef {
	return m.fs.Collection("users").Doc(uid).Collection("dayLogs").Doc(dateutil.ISO(day))
}

// UpsertDayLog writes the day's summary, completion flag, and streak
// snapshot with merge semantics, leaving unrelated fields (photo URLs)
// untouched.
func (m *Mirror) UpsertDayLog(ctx context.Context, uid string, day time.Time, summary string, isComplete bool, streak *int) error {
	if !m.Enabled() {
		return nil
	}

	data := map[string]interface{}{
		"dateISO":    dateutil.ISO(day),
		"isComplete": isComplete,
		"updatedAt":  firestore.ServerTimestamp,
	}
	if summary != "" {
		data["summary"] = summary
	}
	if streak != nil {
		data["currentStreak"] = *streak
	}

	if _, err := m.dayLogDoc(uid, day).Set(ctx, data, firestore.MergeAll); err != nil {
		return apperr.Wrap(apperr.Network, fmt.Sprintf("failed to upsert day log %s", dateutil.ISO(day)), err)
	}
	return nil
}

// SetPhotoURL records the remote URL for one task slot of a day.
func (m *Mirror) SetPhotoURL(ctx context.Context, uid, taskKey string, day time.Time, url string) error {
	if !m.Enabled() {
		return nil
	}

	data := map[string]interface{}{
		"dateISO":      dateutil.ISO(day),
		"photoEntries": map[string]interface{}{taskKey: url},
		"updatedAt":    firestore.ServerTimestamp,
	}

	if _, err := m.dayLogDoc(uid, day).Set(ctx, data, firestore.MergeAll); err != nil {
		return apperr.Wrap(apperr.Network, fmt.Sprintf("failed to set photo url for %s/%s", dateutil.ISO(day), taskKey), err)
	}
	return nil
}

// RemovePhoto deletes a task slot's URL from the day's document.
func (m *Mirror) RemovePhoto(ctx context.Context, uid, taskKey string, day time.Time) error {
	if !m.Enabled() {
		return nil
	}

	data := map[string]interface{}{
		"photoEntries": map[string]interface{}{taskKey: firestore.Delete},
		"updatedAt":    firestore.ServerTimestamp,
	}

	if _, err := m.dayLogDoc(uid, day).Set(ctx, data, firestore.MergeAll); err != nil {
		return apperr.Wrap(apperr.Network, fmt.Sprintf("failed to remove photo for %s/%s", dateutil.ISO(day), taskKey), err)
	}
	return nil
}

// FetchPhotoURLs returns the remote photo URLs for a day keyed by task
// storage key. Documents written by older app versions carry a
// positional photoURLs array instead; those map onto the task catalog
// in its legacy order.
func (m *Mirror) FetchPhotoURLs(ctx context.Context, uid string, day time.Time) (map[string]string, error) {
	if !m.Enabled() {
		return nil, nil
	}

	snap, err := m.dayLogDoc(uid, day).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return map[string]string{}, nil
		}
		return nil, apperr.Wrap(apperr.Network, fmt.Sprintf("failed to fetch day log %s", dateutil.ISO(day)), err)
	}

	result := make(map[string]string)
	data := snap.Data()

	if entries, ok := data["photoEntries"].(map[string]interface{}); ok {
		for key, value := range entries {
			if url, ok := value.(string); ok && url != "" {
				result[key] = url
			}
		}
	}

	if len(result) == 0 {
		if legacy, ok := data["photoURLs"].([]interface{}); ok {
			for i, value := range legacy {
				if i >= len(models.LegacyKeyOrder) {
					break
				}
				if url, ok := value.(string); ok && url != "" {
					result[models.LegacyKeyOrder[i]] = url
				}
			}
		}
	}

	return result, nil
}

// UploadPhoto stores one photo blob under the day's path and returns
// its URL. The random suffix allows multiple photos per task per day.
func (m *Mirror) UploadPhoto(ctx context.Context, uid string, day time.Time, image []byte) (string, error) {
	if !m.Enabled() {
		return "", apperr.New(apperr.Network, "remote sync is disabled")
	}

	storageClient, err := m.app.Storage(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.Authentication, "failed to create storage client", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return "", apperr.Wrap(apperr.Network, "failed to resolve storage bucket", err)
	}

	path := fmt.Sprintf("users/%s/dayLogs/%s/progress-%s.jpg", uid, dateutil.ISO(day), uuid.NewString())

	w := bucket.Object(path).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	if _, err := w.Write(image); err != nil {
		w.Close()
		return "", apperr.Wrap(apperr.Network, "failed to upload photo", err)
	}
	if err := w.Close(); err != nil {
		return "", apperr.Wrap(apperr.Network, "failed to finalize photo upload", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", m.bucket, path)
	m.log.Info("photo uploaded", zap.String("day", dateutil.ISO(day)), zap.String("path", path))
	return url, nil
}
