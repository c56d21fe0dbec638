// Package attendance is the application service: it validates user input,
// keeps the stored records consistent and runs the stats engines over an
// owner's snapshot.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"attendify/internal/cache"
	"attendify/internal/metrics"
	"attendify/internal/model"
	"attendify/internal/queue"
	"attendify/internal/store"
)

// Snapshot is everything one owner has stored.
type Snapshot struct {
	Subjects   []model.Subject
	Timetable  []model.TimetableEntry
	Attendance []model.AttendanceEntry
}

// Service coordinates the store, the cache and change notifications.
type Service struct {
	store store.Backend
	cache cache.Cache
	queue queue.Queue
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the dashboard cache and active-owner tracking.
func WithCache(c cache.Cache) Option { return func(s *Service) { s.cache = c } }

// WithQueue publishes a change message after every write.
func WithQueue(q queue.Queue) Option { return func(s *Service) { s.queue = q } }

// WithClock overrides the wall clock. Its location decides calendar days.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a service over backend.
func NewService(backend store.Backend, opts ...Option) *Service {
	s := &Service{store: backend, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backend in use.
func (s *Service) Store() store.Backend { return s.store }

func (s *Service) stamp() time.Time { return s.now().UTC() }

// Snapshot loads subjects, timetable and attendance concurrently.
func (s *Service) Snapshot(ctx context.Context, owner string) (Snapshot, error) {
	start := time.Now()
	defer func() { metrics.SnapshotDuration.Observe(time.Since(start).Seconds()) }()

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Subjects, err = s.store.Subjects(gctx, owner)
		return wrap("load subjects", err)
	})
	g.Go(func() error {
		var err error
		snap.Timetable, err = s.store.Timetable(gctx, owner)
		return wrap("load timetable", err)
	})
	g.Go(func() error {
		var err error
		snap.Attendance, err = s.store.Attendance(gctx, owner, "")
		return wrap("load attendance", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// changed drops the cached dashboard and tells the worker to rebuild it.
// Neither step is allowed to fail the write that triggered it.
func (s *Service) changed(ctx context.Context, owner, kind string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, owner); err != nil {
			log.Printf("attendance: invalidate dashboard for %s: %v", owner, err)
		}
	}
	if s.queue != nil {
		if err := s.queue.Publish(ctx, queue.Changed(owner, kind, s.stamp())); err != nil {
			log.Printf("attendance: publish %s change for %s: %v", kind, owner, err)
		}
	}
}

// subject resolves a referenced subject, reporting ErrUnknownSubject when the
// owner has no such subject.
func (s *Service) subject(ctx context.Context, owner, id string) (model.Subject, error) {
	sub, err := s.store.Subject(ctx, owner, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Subject{}, fmt.Errorf("%w: %s", model.ErrUnknownSubject, id)
	}
	return sub, err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
