package model

import (
	"math"
	"math/rand"
	"time"
)

// Status is the attendance health tier of a subject.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusWarning   Status = "warning"
	StatusCritical  Status = "critical"
)

// DisplayStatus classifies a percentage on the scale used when showing live
// attendance: 90 / 75 / 60.
func DisplayStatus(percentage int) Status {
	switch {
	case percentage >= 90:
		return StatusExcellent
	case percentage >= 75:
		return StatusGood
	case percentage >= 60:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// StoredStatus classifies a percentage on the scale applied when a persisted
// subject's class counters change: 90 / 80 / 75. It intentionally differs from
// DisplayStatus in the good and warning bands; both are kept so stored records
// stay comparable with data written before the display scale existed.
func StoredStatus(percentage int) Status {
	switch {
	case percentage >= 90:
		return StatusExcellent
	case percentage >= 80:
		return StatusGood
	case percentage >= 75:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Percent returns round(part/whole*100), or 0 when whole is not positive.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Palette is the set of colors assigned to new subjects.
var Palette = []string{"blue", "green", "purple", "pink", "indigo", "yellow", "red", "teal"}

// RandomColor picks a palette color.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}

// Subject is a course the owner tracks attendance for.
type Subject struct {
	ID              string    `json:"id" db:"id" firestore:"id"`
	UserID          string    `json:"userId" db:"user_id" firestore:"userId"`
	Name            string    `json:"name" db:"name" firestore:"name"`
	Code            string    `json:"code" db:"code" firestore:"code"`
	Instructor      string    `json:"instructor,omitempty" db:"instructor" firestore:"instructor,omitempty"`
	Credit          int       `json:"credit" db:"credit" firestore:"credit"`
	TotalClasses    int       `json:"totalClasses" db:"total_classes" firestore:"totalClasses"`
	AttendedClasses int       `json:"attendedClasses" db:"attended_classes" firestore:"attendedClasses"`
	Percentage      int       `json:"percentage" db:"percentage" firestore:"percentage"`
	LastClass       string    `json:"lastClass,omitempty" db:"last_class" firestore:"lastClass,omitempty"`
	Status          Status    `json:"status" db:"status" firestore:"status"`
	Color           string    `json:"color" db:"color" firestore:"color"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at" firestore:"updatedAt"`
}

// SubjectInput is the user supplied part of a new subject.
type SubjectInput struct {
	Name       string `json:"name" binding:"required,max=120"`
	Code       string `json:"code" binding:"required,max=32"`
	Instructor string `json:"instructor" binding:"max=120"`
	Credit     int    `json:"credit" binding:"min=0,max=50"`
}

// NewSubject builds a subject with zeroed counters.
func NewSubject(id, owner string, in SubjectInput, now time.Time) Subject {
	return Subject{
		ID:         id,
		UserID:     owner,
		Name:       in.Name,
		Code:       in.Code,
		Instructor: in.Instructor,
		Credit:     in.Credit,
		Status:     StatusGood,
		Color:      RandomColor(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SubjectPatch is a partial subject update; nil fields are left unchanged.
type SubjectPatch struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=120"`
	Code            *string `json:"code" binding:"omitempty,min=1,max=32"`
	Instructor      *string `json:"instructor" binding:"omitempty,max=120"`
	Credit          *int    `json:"credit" binding:"omitempty,min=0,max=50"`
	TotalClasses    *int    `json:"totalClasses" binding:"omitempty,min=0"`
	AttendedClasses *int    `json:"attendedClasses" binding:"omitempty,min=0"`
	LastClass       *string `json:"lastClass" binding:"omitempty,ymd"`
	Color           *string `json:"color" binding:"omitempty,max=32"`
}

// Apply merges p into s. When either class counter is touched the stored
// percentage and status are recomputed.
func (s *Subject) Apply(p SubjectPatch, now time.Time) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Code != nil {
		s.Code = *p.Code
	}
	if p.Instructor != nil {
		s.Instructor = *p.Instructor
	}
	if p.Credit != nil {
		s.Credit = *p.Credit
	}
	if p.LastClass != nil {
		s.LastClass = *p.LastClass
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.TotalClasses != nil || p.AttendedClasses != nil {
		if p.TotalClasses != nil {
			s.TotalClasses = *p.TotalClasses
		}
		if p.AttendedClasses != nil {
			s.AttendedClasses = *p.AttendedClasses
		}
		s.Percentage = Percent(s.AttendedClasses, s.TotalClasses)
		s.Status = StoredStatus(s.Percentage)
	}
	s.UpdatedAt = now
}
