package model

import "time"

// AttendanceStatus is the outcome recorded for one class.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	// Off marks a holiday or cancelled class; it is excluded from the
	// attendance percentage denominator.
	Off AttendanceStatus = "off"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	return s == Present || s == Absent || s == Off
}

// AttendanceEntry is one attendance record for a subject on a date.
type AttendanceEntry struct {
	ID               string           `json:"id" db:"id" firestore:"id"`
	UserID           string           `json:"userId" db:"user_id" firestore:"userId"`
	SubjectID        string           `json:"subjectId" db:"subject_id" firestore:"subjectId"`
	SubjectName      string           `json:"subjectName" db:"subject_name" firestore:"subjectName"`
	SubjectCode      string           `json:"subjectCode" db:"subject_code" firestore:"subjectCode"`
	Date             string           `json:"date" db:"date" firestore:"date"`
	Status           AttendanceStatus `json:"status" db:"status" firestore:"status"`
	TimetableEntryID string           `json:"timetableEntryId,omitempty" db:"timetable_entry_id" firestore:"timetableEntryId,omitempty"`
	Notes            string           `json:"notes,omitempty" db:"notes" firestore:"notes,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at" firestore:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at" firestore:"updatedAt"`
}

// AttendanceInput is the user supplied part of a new attendance record.
type AttendanceInput struct {
	SubjectID        string           `json:"subjectId" binding:"required"`
	Date             string           `json:"date" binding:"required,ymd"`
	Status           AttendanceStatus `json:"status" binding:"required,oneof=present absent off"`
	TimetableEntryID string           `json:"timetableEntryId"`
	Notes            string           `json:"notes" binding:"max=500"`
}

// BulkAttendanceInput marks several subjects with one status on one date.
type BulkAttendanceInput struct {
	Date       string           `json:"date" binding:"required,ymd"`
	Status     AttendanceStatus `json:"status" binding:"required,oneof=present absent off"`
	SubjectIDs []string         `json:"subjectIds" binding:"required,min=1,dive,required"`
}

// MarkDayInput sets every class of a date to one status.
type MarkDayInput struct {
	Status AttendanceStatus `json:"status" binding:"required,oneof=present absent off"`
}

// AttendancePatch is a partial update; nil fields are left unchanged.
type AttendancePatch struct {
	Date   *string           `json:"date" binding:"omitempty,ymd"`
	Status *AttendanceStatus `json:"status" binding:"omitempty,oneof=present absent off"`
	Notes  *string           `json:"notes" binding:"omitempty,max=500"`
}

// Apply merges p into a.
func (a *AttendanceEntry) Apply(p AttendancePatch, now time.Time) {
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	a.UpdatedAt = now
}
