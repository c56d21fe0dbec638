package stats

import (
	"math"
	"time"

	"attendify/internal/model"
)

// Dashboard is everything the overview screen shows, computed in one pass.
type Dashboard struct {
	Subjects          []SubjectWithAttendance `json:"subjects"`
	Predictions       []AttendancePrediction  `json:"predictions"`
	Overall           OverallPrediction       `json:"overall"`
	AverageAttendance int                     `json:"averageAttendance"`
	ClassesThisWeek   int                     `json:"classesThisWeek"`
	BestSubject       *SubjectWithAttendance  `json:"bestSubject,omitempty"`
	AtRiskSubjects    int                     `json:"atRiskSubjects"`
	StudySchedule     []string                `json:"studySchedule"`
	GeneratedAt       time.Time               `json:"generatedAt"`
}

// BuildDashboard runs both engines over a snapshot.
func BuildDashboard(subjects []model.Subject, timetable []model.TimetableEntry, attendance []model.AttendanceEntry, now time.Time) Dashboard {
	agg := Aggregate(subjects, timetable, attendance, now)
	pred := Predict(agg)

	d := Dashboard{
		Subjects:        agg,
		Predictions:     pred.Predictions,
		Overall:         pred.Overall,
		ClassesThisWeek: len(timetable),
		StudySchedule:   StudySchedule(pred.Predictions),
		GeneratedAt:     now,
	}
	if len(agg) == 0 {
		return d
	}

	sum := 0
	best := 0
	for i, s := range agg {
		sum += s.ActualAttendancePercentage
		if s.ActualAttendancePercentage > agg[best].ActualAttendancePercentage {
			best = i
		}
		if s.ActualAttendancePercentage < targetPercent {
			d.AtRiskSubjects++
		}
	}
	d.AverageAttendance = int(math.Round(float64(sum) / float64(len(agg))))
	d.BestSubject = &agg[best]
	return d
}
