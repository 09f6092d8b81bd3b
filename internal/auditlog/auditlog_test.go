package auditlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/config"
	"vigil/internal/storage"
)

func newTestRecorder(t *testing.T) (*Recorder, *storage.Storage) {
	t.Helper()

	st, err := storage.New(config.StorageConfig{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewRecorder(st), st
}

func TestRecord(t *testing.T) {
	recorder, st := newTestRecorder(t)

	userID := int64(7)
	recorder.Record(&userID, "10.0.0.5", "alert.acknowledge", "42")

	var entry storage.AuditLog
	require.NoError(t, st.DB().First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, int64(7), *entry.UserID)
	assert.Equal(t, "10.0.0.5", entry.IP)
	assert.Equal(t, "alert.acknowledge", entry.Action)
	assert.Equal(t, "42", entry.Detail)
}

func TestEventHasNoActor(t *testing.T) {
	recorder, st := newTestRecorder(t)

	recorder.Event("system.start", "started")

	var entry storage.AuditLog
	require.NoError(t, st.DB().First(&entry).Error)
	assert.Nil(t, entry.UserID)
	assert.Equal(t, "system.start", entry.Action)
}

func TestPrune(t *testing.T) {
	recorder, st := newTestRecorder(t)

	old := &storage.AuditLog{Action: "old.action", CreatedAt: time.Now().Add(-48 * time.Hour)}
	recent := &storage.AuditLog{Action: "recent.action", CreatedAt: time.Now()}
	require.NoError(t, st.DB().Create(old).Error)
	require.NoError(t, st.DB().Create(recent).Error)

	require.NoError(t, recorder.Prune(24*time.Hour))

	var remaining []storage.AuditLog
	require.NoError(t, st.DB().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent.action", remaining[0].Action)
}
