// Package cache keeps derived per-owner state that can be rebuilt at any
// time: the dashboard, the set of recently active owners and the
// in-progress class prompt raised by the worker.
package cache

import (
	"context"
	"sync"
	"time"

	"attendify/internal/model"
	"attendify/internal/stats"
)

// Prompt asks the owner to mark the class that is currently running.
type Prompt struct {
	EntryID     string    `json:"entryId"`
	SubjectID   string    `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	SubjectCode string    `json:"subjectCode"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Room        string    `json:"room,omitempty"`
	RaisedAt    time.Time `json:"raisedAt"`
}

// PromptFor builds the prompt for slot e running on now's date.
func PromptFor(e model.TimetableEntry, now time.Time) Prompt {
	return Prompt{
		EntryID:     e.ID,
		SubjectID:   e.SubjectID,
		SubjectName: e.SubjectName,
		SubjectCode: e.SubjectCode,
		Date:        model.FormatDate(now),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Room:        e.Room,
		RaisedAt:    now,
	}
}

// Cache is implemented by Redis and Memory.
type Cache interface {
	Dashboard(ctx context.Context, owner string) (stats.Dashboard, bool, error)
	SetDashboard(ctx context.Context, owner string, d stats.Dashboard) error
	Invalidate(ctx context.Context, owner string) error

	TouchOwner(ctx context.Context, owner string, now time.Time) error
	ActiveOwners(ctx context.Context, since time.Time) ([]string, error)

	SetPrompt(ctx context.Context, owner string, p Prompt) error
	Prompt(ctx context.Context, owner string) (Prompt, bool, error)
}

type item[T any] struct {
	val     T
	expires time.Time
}

func (i item[T]) live(now time.Time) bool {
	return i.expires.IsZero() || now.Before(i.expires)
}

// Memory is a process-local Cache for single-binary deployments and tests.
// The API and the worker only share it when they run in the same process.
type Memory struct {
	DashboardTTL time.Duration
	PromptTTL    time.Duration
	Now          func() time.Time

	mu         sync.Mutex
	dashboards map[string]item[stats.Dashboard]
	prompts    map[string]item[Prompt]
	active     map[string]time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory(dashboardTTL, promptTTL time.Duration) *Memory {
	return &Memory{
		DashboardTTL: dashboardTTL,
		PromptTTL:    promptTTL,
		Now:          time.Now,
		dashboards:   map[string]item[stats.Dashboard]{},
		prompts:      map[string]item[Prompt]{},
		active:       map[string]time.Time{},
	}
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.Now().Add(ttl)
}

func (m *Memory) Dashboard(_ context.Context, owner string) (stats.Dashboard, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.dashboards[owner]
	if !ok || !it.live(m.Now()) {
		return stats.Dashboard{}, false, nil
	}
	return it.val, true, nil
}

func (m *Memory) SetDashboard(_ context.Context, owner string, d stats.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboards[owner] = item[stats.Dashboard]{val: d, expires: m.expiry(m.DashboardTTL)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dashboards, owner)
	return nil
}

func (m *Memory) TouchOwner(_ context.Context, owner string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[owner] = now
	return nil
}

func (m *Memory) ActiveOwners(_ context.Context, since time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for owner, seen := range m.active {
		if seen.Before(since) {
			delete(m.active, owner)
			continue
		}
		out = append(out, owner)
	}
	return out, nil
}

func (m *Memory) SetPrompt(_ context.Context, owner string, p Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[owner] = item[Prompt]{val: p, expires: m.expiry(m.PromptTTL)}
	return nil
}

func (m *Memory) Prompt(_ context.Context, owner string) (Prompt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.prompts[owner]
	if !ok || !it.live(m.Now()) {
		return Prompt{}, false, nil
	}
	return it.val, true, nil
}
