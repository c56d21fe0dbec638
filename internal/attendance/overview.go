package attendance

import (
	"context"
	"log"
	"time"

	"attendify/internal/cache"
	"attendify/internal/metrics"
	"attendify/internal/model"
	"attendify/internal/stats"
)

// Overview runs both engines over a fresh snapshot.
func (s *Service) Overview(ctx context.Context, owner string) (stats.Dashboard, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.BuildDashboard(snap.Subjects, snap.Timetable, snap.Attendance, s.now()), nil
}

// Dashboard serves the overview from cache when possible and marks the owner
// as active for the worker's class check.
func (s *Service) Dashboard(ctx context.Context, owner string) (stats.Dashboard, error) {
	if s.cache == nil {
		return s.Overview(ctx, owner)
	}
	if err := s.cache.TouchOwner(ctx, owner, s.now()); err != nil {
		log.Printf("attendance: touch owner %s: %v", owner, err)
	}
	d, ok, err := s.cache.Dashboard(ctx, owner)
	if err != nil {
		log.Printf("attendance: read cached dashboard for %s: %v", owner, err)
	}
	if ok {
		metrics.DashboardCache.WithLabelValues("hit").Inc()
		return d, nil
	}
	metrics.DashboardCache.WithLabelValues("miss").Inc()
	return s.RefreshDashboard(ctx, owner)
}

// RefreshDashboard rebuilds and caches the owner's dashboard.
func (s *Service) RefreshDashboard(ctx context.Context, owner string) (stats.Dashboard, error) {
	d, err := s.Overview(ctx, owner)
	if err != nil {
		return stats.Dashboard{}, err
	}
	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, owner, d); err != nil {
			log.Printf("attendance: cache dashboard for %s: %v", owner, err)
		}
	}
	return d, nil
}

// Predictions runs the prediction engine over live figures.
func (s *Service) Predictions(ctx context.Context, owner string) (stats.Predictions, error) {
	agg, err := s.SubjectsWithAttendance(ctx, owner)
	if err != nil {
		return stats.Predictions{}, err
	}
	return stats.Predict(agg), nil
}

// Stats counts the owner's entries, only those on date when it is set.
func (s *Service) Stats(ctx context.Context, owner, date string) (stats.AttendanceStats, error) {
	entries, err := s.Attendance(ctx, owner, date)
	if err != nil {
		return stats.AttendanceStats{}, err
	}
	return stats.Summarize(entries), nil
}

// Day is the calendar view of one date.
type Day struct {
	Date       string                  `json:"date"`
	Weekday    model.Day               `json:"weekday"`
	Status     stats.DayStatus         `json:"status"`
	Classes    []model.TimetableEntry  `json:"classes"`
	Attendance []model.AttendanceEntry `json:"attendance"`
}

// Calendar returns the scheduled classes and recorded attendance of date.
func (s *Service) Calendar(ctx context.Context, owner, date string) (Day, error) {
	day, err := model.ParseDate(date, nil)
	if err != nil {
		return Day{}, err
	}
	slots, err := s.store.Timetable(ctx, owner)
	if err != nil {
		return Day{}, wrap("calendar", err)
	}
	entries, err := s.store.Attendance(ctx, owner, date)
	if err != nil {
		return Day{}, wrap("calendar", err)
	}
	return Day{
		Date:       date,
		Weekday:    model.DayOf(day),
		Status:     stats.StatusForDay(slots, entries, day),
		Classes:    stats.SlotsOn(slots, day),
		Attendance: entries,
	}, nil
}

// Prompt returns the pending in-progress class prompt, if any.
func (s *Service) Prompt(ctx context.Context, owner string) (cache.Prompt, bool, error) {
	if s.cache == nil {
		return cache.Prompt{}, false, nil
	}
	if err := s.cache.TouchOwner(ctx, owner, s.now()); err != nil {
		log.Printf("attendance: touch owner %s: %v", owner, err)
	}
	return s.cache.Prompt(ctx, owner)
}

// RaisePrompts stores a prompt for every owner active within window whose
// current class has no attendance recorded today. It returns how many prompts
// were raised.
func (s *Service) RaisePrompts(ctx context.Context, window time.Duration) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	now := s.now()
	owners, err := s.cache.ActiveOwners(ctx, now.Add(-window))
	if err != nil {
		return 0, wrap("active owners", err)
	}
	raised := 0
	for _, owner := range owners {
		if ctx.Err() != nil {
			return raised, ctx.Err()
		}
		slot, ok, err := s.CurrentClass(ctx, owner)
		if err != nil {
			log.Printf("attendance: current class for %s: %v", owner, err)
			continue
		}
		if !ok {
			continue
		}
		today := model.FormatDate(now)
		entries, err := s.store.Attendance(ctx, owner, today)
		if err != nil {
			log.Printf("attendance: today's attendance for %s: %v", owner, err)
			continue
		}
		if recorded(entries, slot.SubjectID) {
			continue
		}
		if err := s.cache.SetPrompt(ctx, owner, cache.PromptFor(slot, now)); err != nil {
			log.Printf("attendance: store prompt for %s: %v", owner, err)
			continue
		}
		metrics.ClassPrompts.Inc()
		raised++
	}
	return raised, nil
}

func recorded(entries []model.AttendanceEntry, subjectID string) bool {
	for _, a := range entries {
		if a.SubjectID == subjectID {
			return true
		}
	}
	return false
}
