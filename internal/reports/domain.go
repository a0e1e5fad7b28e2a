// Package reports aggregates practicum progress for staff and students.
package reports

import "time"

// EvaluationStats summarises recorded evaluations.
type EvaluationStats struct {
	Count   int            `json:"count"`
	Average float64        `json:"average"`
	Grades  map[string]int `json:"grades"`
}

// Summary is the program-wide dashboard.
type Summary struct {
	Users            map[string]int  `json:"users"`
	PracticumRecords map[string]int  `json:"practicum_records"`
	LessonPlans      map[string]int  `json:"lesson_plans"`
	ApprovedHours    float64         `json:"approved_hours"`
	Evaluations      EvaluationStats `json:"evaluations"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// MonthHours is the approved hours of one calendar month (YYYY-MM).
type MonthHours struct {
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

// StudentHours is the hour ledger of one student.
type StudentHours struct {
	StudentID int64        `json:"student_id"`
	Approved  float64      `json:"approved"`
	Pending   float64      `json:"pending"`
	Draft     float64      `json:"draft"`
	Rejected  float64      `json:"rejected"`
	Records   int          `json:"records"`
	Monthly   []MonthHours `json:"monthly"`
}
