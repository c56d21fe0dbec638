package model

import (
	"fmt"
	"time"
)

// TimetableEntry is one weekly recurring class slot.
type TimetableEntry struct {
	ID          string    `json:"id" db:"id" firestore:"id"`
	UserID      string    `json:"userId" db:"user_id" firestore:"userId"`
	SubjectID   string    `json:"subjectId" db:"subject_id" firestore:"subjectId"`
	SubjectName string    `json:"subjectName" db:"subject_name" firestore:"subjectName"`
	SubjectCode string    `json:"subjectCode" db:"subject_code" firestore:"subjectCode"`
	Day         Day       `json:"day" db:"day" firestore:"day"`
	StartTime   string    `json:"startTime" db:"start_time" firestore:"startTime"`
	EndTime     string    `json:"endTime" db:"end_time" firestore:"endTime"`
	Room        string    `json:"room,omitempty" db:"room" firestore:"room,omitempty"`
	Instructor  string    `json:"instructor,omitempty" db:"instructor" firestore:"instructor,omitempty"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at" firestore:"updatedAt"`
}

// Interval returns the parsed start and end of the slot.
func (e TimetableEntry) Interval() (Clock, Clock, error) {
	start, err := ParseClock(e.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(e.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Check validates the slot's day and that it ends after it starts.
func (e TimetableEntry) Check() error {
	if !e.Day.Valid() {
		return fmt.Errorf("%w: day %q", ErrInvalidInput, e.Day)
	}
	start, end, err := e.Interval()
	if err != nil {
		return err
	}
	if end <= start {
		return ErrEndBeforeStart
	}
	return nil
}

// Overlaps reports whether two slots share any time on the same day. Slots are
// half-open, so one ending at 10:00 does not overlap one starting at 10:00.
func (e TimetableEntry) Overlaps(o TimetableEntry) bool {
	if e.Day != o.Day {
		return false
	}
	s1, e1, err := e.Interval()
	if err != nil {
		return false
	}
	s2, e2, err := o.Interval()
	if err != nil {
		return false
	}
	return s1 < e2 && s2 < e1
}

// Duration is the length of the slot, zero when it is malformed.
func (e TimetableEntry) Duration() time.Duration {
	start, end, err := e.Interval()
	if err != nil || end < start {
		return 0
	}
	return time.Duration(end-start) * time.Minute
}

// TimetableInput is the user supplied part of a new slot.
type TimetableInput struct {
	SubjectID string `json:"subjectId" binding:"required"`
	Day       Day    `json:"day" binding:"required,weekday"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
	Room      string `json:"room" binding:"max=64"`
}

// TimetablePatch is a partial slot update; nil fields are left unchanged.
type TimetablePatch struct {
	SubjectID *string `json:"subjectId" binding:"omitempty,min=1"`
	Day       *Day    `json:"day" binding:"omitempty,weekday"`
	StartTime *string `json:"startTime" binding:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" binding:"omitempty,hhmm"`
	Room      *string `json:"room" binding:"omitempty,max=64"`
}

// Apply merges p into e. Subject denormalization is the caller's job.
func (e *TimetableEntry) Apply(p TimetablePatch, now time.Time) {
	if p.SubjectID != nil {
		e.SubjectID = *p.SubjectID
	}
	if p.Day != nil {
		e.Day = *p.Day
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Room != nil {
		e.Room = *p.Room
	}
	e.UpdatedAt = now
}
