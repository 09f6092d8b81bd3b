package alerting

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/config"
	"vigil/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Storage {
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
	return st
}

func seedServer(t *testing.T, st *storage.Storage, hostname string) *storage.Server {
	t.Helper()

	server := &storage.Server{
		Hostname: hostname,
		Address:  hostname + ":22",
		Status:   storage.ServerStatusOnline,
	}
	require.NoError(t, storage.ValidateServer(server))
	require.NoError(t, st.DB().Create(server).Error)
	return server
}

func TestRaiseDeduplicatesOpenAlerts(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	input := RaiseInput{
		Severity: storage.SeverityCritical,
		Source:   "health-sampler",
		Message:  "Server web-01 is unreachable",
		ServerID: &server.ID,
	}

	first, created, err := engine.Raise(st.DB(), input)
	require.NoError(t, err)
	assert.True(t, created)

	// Repeated failures with the same signature must reuse the open row.
	for i := 0; i < 5; i++ {
		input.Message = "Server web-01 is unreachable (still)"
		alert, created, err := engine.Raise(st.DB(), input)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, alert.ID)
	}

	var count int64
	require.NoError(t, st.DB().Model(&storage.Alert{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The surviving row carries the refreshed message.
	var stored storage.Alert
	require.NoError(t, st.DB().First(&stored, first.ID).Error)
	assert.Equal(t, "Server web-01 is unreachable (still)", stored.Message)
}

func TestRaiseCreatesNewRowForDifferentDedupKey(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")
	other := seedServer(t, st, "web-02")

	base := RaiseInput{
		Severity: storage.SeverityCritical,
		Source:   "health-sampler",
		Message:  "unreachable",
		ServerID: &server.ID,
	}

	_, created, err := engine.Raise(st.DB(), base)
	require.NoError(t, err)
	assert.True(t, created)

	differentServer := base
	differentServer.ServerID = &other.ID
	_, created, err = engine.Raise(st.DB(), differentServer)
	require.NoError(t, err)
	assert.True(t, created)

	differentSeverity := base
	differentSeverity.Severity = storage.SeverityWarning
	_, created, err = engine.Raise(st.DB(), differentSeverity)
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, st.DB().Model(&storage.Alert{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestRaiseScopesDedupByContainer(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)

	containerA := int64(101)
	containerB := int64(102)

	base := RaiseInput{
		Severity: storage.SeverityWarning,
		Source:   "container-watch",
		Message:  "restart loop",
	}

	// Two alerts scoped to different containers share no dedup key even
	// with identical source and severity.
	first := base
	first.ContainerID = &containerA
	a, created, err := engine.Raise(st.DB(), first)
	require.NoError(t, err)
	assert.True(t, created)

	second := base
	second.ContainerID = &containerB
	b, created, err := engine.Raise(st.DB(), second)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, a.ID, b.ID)

	// Repeating the first container's condition reuses its open row.
	again, created, err := engine.Raise(st.DB(), first)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)

	// An unscoped alert with the same source and severity matches
	// neither container-scoped row.
	_, created, err = engine.Raise(st.DB(), base)
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, st.DB().Model(&storage.Alert{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestRaiseAfterAcknowledgmentOpensFreshAlert(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	input := RaiseInput{
		Severity: storage.SeverityCritical,
		Source:   "health-sampler",
		Message:  "unreachable",
		ServerID: &server.ID,
	}

	first, _, err := engine.Raise(st.DB(), input)
	require.NoError(t, err)
	require.NoError(t, engine.Acknowledge(first.ID, 1))

	// The acknowledged alert no longer matches the dedup key, so a
	// persisting condition opens a new row.
	second, created, err := engine.Raise(st.DB(), input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	alert, _, err := engine.Raise(st.DB(), RaiseInput{
		Severity: storage.SeverityWarning,
		Source:   "health-sampler",
		Message:  "unreachable",
		ServerID: &server.ID,
	})
	require.NoError(t, err)

	require.NoError(t, engine.Acknowledge(alert.ID, 42))

	var afterFirst storage.Alert
	require.NoError(t, st.DB().First(&afterFirst, alert.ID).Error)
	require.True(t, afterFirst.Acknowledged)
	require.NotNil(t, afterFirst.AcknowledgedAt)
	require.NotNil(t, afterFirst.AcknowledgedBy)
	assert.Equal(t, int64(42), *afterFirst.AcknowledgedBy)

	// Second acknowledgment by a different actor is a no-op success:
	// the original acknowledger and timestamp survive.
	require.NoError(t, engine.Acknowledge(alert.ID, 99))

	var afterSecond storage.Alert
	require.NoError(t, st.DB().First(&afterSecond, alert.ID).Error)
	assert.Equal(t, int64(42), *afterSecond.AcknowledgedBy)
	assert.Equal(t, afterFirst.AcknowledgedAt.Unix(), afterSecond.AcknowledgedAt.Unix())
}

func TestAcknowledgeUnknownIDReturnsNotFound(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)

	err := engine.Acknowledge(12345, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcknowledgedFlagAndTimestampStayPaired(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	alert, _, err := engine.Raise(st.DB(), RaiseInput{
		Severity: storage.SeverityInfo,
		Source:   "health-sampler",
		Message:  "unreachable",
		ServerID: &server.ID,
	})
	require.NoError(t, err)

	assertPaired := func() {
		var all []storage.Alert
		require.NoError(t, st.DB().Find(&all).Error)
		for _, a := range all {
			assert.Equal(t, a.Acknowledged, a.AcknowledgedAt != nil,
				"acknowledged flag and timestamp must be set together")
			assert.Equal(t, a.Resolved, a.ResolvedAt != nil,
				"resolved flag and timestamp must be set together")
		}
	}

	assertPaired()
	require.NoError(t, engine.Acknowledge(alert.ID, 1))
	assertPaired()
	require.NoError(t, engine.Resolve(alert.ID, 1))
	assertPaired()
}

func TestResolveImpliesAcknowledgment(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	alert, _, err := engine.Raise(st.DB(), RaiseInput{
		Severity: storage.SeverityCritical,
		Source:   "health-sampler",
		Message:  "unreachable",
		ServerID: &server.ID,
	})
	require.NoError(t, err)

	// Resolving an open alert acknowledges it in the same update, so
	// the active count drops.
	require.NoError(t, engine.Resolve(alert.ID, 7))

	var stored storage.Alert
	require.NoError(t, st.DB().First(&stored, alert.ID).Error)
	assert.True(t, stored.Resolved)
	assert.True(t, stored.Acknowledged)
	require.NotNil(t, stored.ResolvedBy)
	assert.Equal(t, int64(7), *stored.ResolvedBy)

	counts, err := engine.ActiveCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[storage.SeverityCritical])

	// Resolve is idempotent too.
	require.NoError(t, engine.Resolve(alert.ID, 9))
}

func TestActiveCountsBySeverity(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	raise := func(severity, source string) *storage.Alert {
		alert, _, err := engine.Raise(st.DB(), RaiseInput{
			Severity: severity,
			Source:   source,
			Message:  "m",
			ServerID: &server.ID,
		})
		require.NoError(t, err)
		return alert
	}

	raise(storage.SeverityCritical, "health-sampler")
	raise(storage.SeverityCritical, "disk-watch")
	warning := raise(storage.SeverityWarning, "health-sampler")

	counts, err := engine.ActiveCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[storage.SeverityCritical])
	assert.Equal(t, int64(1), counts[storage.SeverityWarning])
	assert.Equal(t, int64(0), counts[storage.SeverityInfo])

	require.NoError(t, engine.Acknowledge(warning.ID, 1))

	counts, err = engine.ActiveCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[storage.SeverityCritical])
	assert.Equal(t, int64(0), counts[storage.SeverityWarning])
}

func TestListOpenOrdersNewestFirstAndFilters(t *testing.T) {
	st := newTestStorage(t)
	engine := NewEngine(st)
	server := seedServer(t, st, "web-01")

	// Distinct sources so dedup does not merge them; staggered
	// created_at so ordering is deterministic.
	sources := []string{"source-a", "source-b", "source-c"}
	for i, source := range sources {
		alert, _, err := engine.Raise(st.DB(), RaiseInput{
			Severity: storage.SeverityWarning,
			Source:   source,
			Message:  "m",
			ServerID: &server.ID,
		})
		require.NoError(t, err)

		createdAt := time.Now().Add(time.Duration(i-len(sources)) * time.Minute)
		require.NoError(t, st.DB().Model(alert).
			Update("created_at", createdAt).Error)
	}

	open, err := engine.ListOpen("", 0)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, "source-c", open[0].Source)
	assert.Equal(t, "source-a", open[2].Source)

	limited, err := engine.ListOpen(storage.SeverityWarning, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := engine.ListOpen(storage.SeverityCritical, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = engine.ListOpen("catastrophic", 0)
	assert.Error(t, err)
}
