package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExamSubmission is the persisted record of one student's attempt at one
// exam. The composite unique index enforces at most one live submission
// per (student, exam); a concurrent duplicate first-submit loses on the
// database constraint rather than creating a divergent record.
type ExamSubmission struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_submission_student_exam" json:"student_id"`
	ExamID    uint `gorm:"not null;uniqueIndex:idx_submission_student_exam" json:"exam_id"`
	CourseID  uint `gorm:"index;not null" json:"course_id"`

	// Answers holds the raw map exactly as submitted, one scalar per
	// question id.
	Answers datatypes.JSONMap `gorm:"type:json" json:"answers"`

	// ResultsJSON keeps the per-question breakdown produced at grading
	// time, so the result view does not re-grade.
	ResultsJSON datatypes.JSON `gorm:"column:results;type:json" json:"-"`

	Score      int    `gorm:"not null;default:0" json:"score"`
	MaxScore   int    `gorm:"not null;default:0" json:"max_score"`
	Percentage int    `gorm:"not null;default:0" json:"percentage"`
	Grade      string `gorm:"size:8" json:"grade"`
	Level      string `gorm:"size:32" json:"level"`

	// IsEditable distinguishes Submitted(editable) from Submitted(locked).
	IsEditable  bool      `gorm:"not null;default:false" json:"is_editable"`
	SubmittedAt time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student Student `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Exam    Exam    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsLocked reports whether further submit calls must be rejected.
func (s ExamSubmission) IsLocked() bool {
	return !s.IsEditable
}
