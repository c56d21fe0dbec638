package stats

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"attendify/internal/model"
)

// Trend is the direction of recent attendance relative to the overall rate.
type Trend string

const (
	Improving Trend = "improving"
	Declining Trend = "declining"
	Stable    Trend = "stable"
)

// Risk is a coarse bucket of predicted attendance health.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

const (
	recentWindow  = 10
	trendBand     = 5.0
	improveDelta  = 5
	improveCap    = 95
	declineDelta  = 10
	targetPercent = 75
	slackAbove    = 85

	remainingWeeks = 10
	semesterWeeks  = 20

	highRiskBelow   = 60
	mediumRiskBelow = 75
)

// AttendancePrediction is the forward-looking view of one subject.
type AttendancePrediction struct {
	SubjectID           string `json:"subjectId"`
	SubjectName         string `json:"subjectName"`
	CurrentPercentage   int    `json:"currentPercentage"`
	PredictedPercentage int    `json:"predictedPercentage"`
	Trend               Trend  `json:"trend"`
	Risk                Risk   `json:"risk"`
	Recommendation      string `json:"recommendation"`
	ClassesToAttend     int    `json:"classesToAttend"`
	ClassesToMiss       int    `json:"classesToMiss"`
}

// OverallPrediction summarises predictions across subjects.
type OverallPrediction struct {
	AverageAttendance float64  `json:"averageAttendance"`
	PredictedAverage  float64  `json:"predictedAverage"`
	AtRiskSubjects    int      `json:"atRiskSubjects"`
	Recommendations   []string `json:"recommendations"`
	Insights          []string `json:"insights"`
}

// Predictions is the Prediction Engine output.
type Predictions struct {
	Predictions []AttendancePrediction `json:"predictions"`
	Overall     OverallPrediction      `json:"overall"`
}

// Predict applies fixed rules to aggregated subjects. It is a heuristic
// stand-in, not a fitted model, and never fails: an empty input yields an
// empty prediction list and a zero summary.
func Predict(subjects []SubjectWithAttendance) Predictions {
	preds := make([]AttendancePrediction, 0, len(subjects))
	for _, s := range subjects {
		preds = append(preds, predictSubject(s))
	}
	return Predictions{Predictions: preds, Overall: summarise(subjects, preds)}
}

// RecentPercentage is the present rate over the latest non-off entries,
// newest first by date. Entries on the same date keep their input order.
func RecentPercentage(entries []model.AttendanceEntry) float64 {
	recent := make([]model.AttendanceEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status != model.Off {
			recent = append(recent, e)
		}
	}
	slices.SortStableFunc(recent, func(a, b model.AttendanceEntry) int {
		return strings.Compare(b.Date, a.Date)
	})
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	if len(recent) == 0 {
		return 0
	}
	present := 0
	for _, e := range recent {
		if e.Status == model.Present {
			present++
		}
	}
	return float64(present) / float64(len(recent)) * 100
}

// TrendOf compares a recent rate with the overall rate. The band is
// exclusive: exactly 5 points apart is still stable.
func TrendOf(recent float64, current int) Trend {
	switch {
	case recent > float64(current)+trendBand:
		return Improving
	case recent < float64(current)-trendBand:
		return Declining
	default:
		return Stable
	}
}

// Project returns the predicted percentage for a trend.
func Project(current int, t Trend) int {
	switch t {
	case Improving:
		return min(improveCap, current+improveDelta)
	case Declining:
		return max(0, current-declineDelta)
	default:
		return current
	}
}

// RiskOf buckets a predicted percentage.
func RiskOf(predicted int) Risk {
	switch {
	case predicted < highRiskBelow:
		return RiskHigh
	case predicted < mediumRiskBelow:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RemainingClasses estimates classes left, assuming a 20 week term with 10
// weeks to go.
func RemainingClasses(totalScheduled int) int {
	perWeek := float64(totalScheduled) / semesterWeeks
	return int(math.Ceil(remainingWeeks * perWeek))
}

// ClassesToAttend is how many more presents reach 75% over the whole term.
func ClassesToAttend(totalScheduled, present, remaining int) int {
	required := int(math.Ceil(float64(targetPercent) / 100 * float64(totalScheduled+remaining)))
	return max(0, required-present)
}

// ClassesToMiss is how many more absences still keep 75% over the whole term.
func ClassesToMiss(totalScheduled, present, remaining int) int {
	maxAbsent := int(math.Floor(float64(totalScheduled+remaining) * (1 - float64(targetPercent)/100)))
	return max(0, maxAbsent-(totalScheduled-present))
}

func predictSubject(s SubjectWithAttendance) AttendancePrediction {
	current := s.ActualAttendancePercentage
	trend := TrendOf(RecentPercentage(s.AttendanceEntries), current)
	predicted := Project(current, trend)

	p := AttendancePrediction{
		SubjectID:           s.ID,
		SubjectName:         s.Name,
		CurrentPercentage:   current,
		PredictedPercentage: predicted,
		Trend:               trend,
		Risk:                RiskOf(predicted),
	}

	remaining := RemainingClasses(s.TotalScheduledClasses)
	switch {
	case current < targetPercent:
		p.ClassesToAttend = ClassesToAttend(s.TotalScheduledClasses, s.PresentClasses, remaining)
		p.Recommendation = fmt.Sprintf("Attend %d more classes to reach 75%% attendance.", p.ClassesToAttend)
	case current > slackAbove:
		p.ClassesToMiss = ClassesToMiss(s.TotalScheduledClasses, s.PresentClasses, remaining)
		p.Recommendation = fmt.Sprintf("You can miss up to %d more classes while maintaining 75%% attendance.", p.ClassesToMiss)
	default:
		p.Recommendation = "Maintain current attendance pattern to stay above 75%."
	}
	return p
}

func summarise(subjects []SubjectWithAttendance, preds []AttendancePrediction) OverallPrediction {
	var o OverallPrediction
	if len(subjects) > 0 {
		sum := 0
		for _, s := range subjects {
			sum += s.ActualAttendancePercentage
		}
		o.AverageAttendance = float64(sum) / float64(len(subjects))
	}
	if len(preds) > 0 {
		sum := 0
		for _, p := range preds {
			sum += p.PredictedPercentage
		}
		o.PredictedAverage = float64(sum) / float64(len(preds))
	}

	improving, declining := 0, 0
	for _, p := range preds {
		if p.Risk == RiskHigh || p.Risk == RiskMedium {
			o.AtRiskSubjects++
		}
		switch p.Trend {
		case Improving:
			improving++
		case Declining:
			declining++
		}
	}

	o.Recommendations = []string{}
	if o.AverageAttendance < targetPercent {
		o.Recommendations = append(o.Recommendations,
			"Focus on improving attendance in critical subjects",
			"Set daily reminders for classes",
		)
	}
	if o.AtRiskSubjects > 0 {
		o.Recommendations = append(o.Recommendations, fmt.Sprintf("Prioritize %d at-risk subjects", o.AtRiskSubjects))
	}

	direction := "Stable"
	switch {
	case o.PredictedAverage > o.AverageAttendance:
		direction = "Improving"
	case o.PredictedAverage < o.AverageAttendance:
		direction = "Declining"
	}
	o.Insights = []string{
		fmt.Sprintf("Your average attendance is %.1f%%", o.AverageAttendance),
		"Predicted trend: " + direction,
	}
	switch {
	case improving > declining:
		o.Insights = append(o.Insights, "Overall trend is positive across subjects")
	case declining > improving:
		o.Insights = append(o.Insights, "Attendance is declining in multiple subjects")
	}
	return o
}

// StudySchedule turns predictions into a short daily plan: high risk subjects
// in the morning, medium risk in the afternoon.
func StudySchedule(preds []AttendancePrediction) []string {
	var high, medium []AttendancePrediction
	for _, p := range preds {
		switch p.Risk {
		case RiskHigh:
			high = append(high, p)
		case RiskMedium:
			medium = append(medium, p)
		}
	}

	schedule := []string{}
	if len(high) > 0 {
		schedule = append(schedule, "Morning: Focus on high-risk subjects")
		for _, p := range high {
			schedule = append(schedule, "- "+p.SubjectName+": Catch up on missed topics")
		}
	}
	if len(medium) > 0 {
		schedule = append(schedule, "Afternoon: Review medium-risk subjects")
		for _, p := range medium {
			schedule = append(schedule, "- "+p.SubjectName+": Regular revision")
		}
	}
	return append(schedule, "Evening: Prepare for tomorrow's classes")
}
