package cache

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendify/internal/model"
	"attendify/internal/stats"
)

var noon = time.Date(2026, 5, 21, 12, 0, 0, 0, time.UTC)

func TestMemoryDashboardExpires(t *testing.T) {
	ctx := context.Background()
	now := noon
	m := NewMemory(time.Minute, time.Minute)
	m.Now = func() time.Time { return now }

	_, ok, err := m.Dashboard(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetDashboard(ctx, "u1", stats.Dashboard{AverageAttendance: 81}))
	d, ok, err := m.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 81, d.AverageAttendance)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Dashboard(ctx, "u1")
	assert.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, 0)
	require.NoError(t, m.SetDashboard(ctx, "u1", stats.Dashboard{}))
	require.NoError(t, m.Invalidate(ctx, "u1"))
	_, ok, _ := m.Dashboard(ctx, "u1")
	assert.False(t, ok)
}

func TestMemoryActiveOwners(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, 0)
	require.NoError(t, m.TouchOwner(ctx, "old", noon.Add(-time.Hour)))
	require.NoError(t, m.TouchOwner(ctx, "a", noon.Add(-time.Minute)))
	require.NoError(t, m.TouchOwner(ctx, "b", noon))

	got, err := m.ActiveOwners(ctx, noon.Add(-10*time.Minute))
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMemoryPrompt(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, 5*time.Minute)
	m.Now = func() time.Time { return noon }

	slot := model.TimetableEntry{ID: "t1", SubjectID: "s1", SubjectName: "Physics", SubjectCode: "PH101",
		StartTime: "11:30", EndTime: "12:30", Room: "B12"}
	require.NoError(t, m.SetPrompt(ctx, "u1", PromptFor(slot, noon)))

	p, ok, err := m.Prompt(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2026-05-21", p.Date)
	assert.Equal(t, "Physics", p.SubjectName)
	assert.Equal(t, "B12", p.Room)
}

// TestRedisRoundTrip runs against a real server when REDIS_ADDR is set.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	r := NewRedis(NewRedisClient(addr), time.Minute, time.Minute)
	require.True(t, r.Healthy(ctx))
	owner := "test-" + noon.Format("150405")
	t.Cleanup(func() {
		r.Client.Del(ctx, keyDashboard+owner, keyPrompt+owner)
		r.Client.ZRem(ctx, keyActive, owner)
	})

	require.NoError(t, r.SetDashboard(ctx, owner, stats.Dashboard{ClassesThisWeek: 7}))
	d, ok, err := r.Dashboard(ctx, owner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, d.ClassesThisWeek)

	require.NoError(t, r.Invalidate(ctx, owner))
	_, ok, err = r.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, r.TouchOwner(ctx, owner, now))
	owners, err := r.ActiveOwners(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Contains(t, owners, owner)
}
