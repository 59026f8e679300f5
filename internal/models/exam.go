package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/hikma-academy/academy-api/internal/grading"
)

// Exam represents one internal exam attached to a course. Questions are
// stored as a JSON document; their option ids are assigned at authoring
// time and never regenerated from position.
type Exam struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CourseID       uint           `gorm:"index;not null" json:"course_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	QuestionsJSON  datatypes.JSON `gorm:"column:questions;type:json" json:"-"`
	TotalMarks     int            `gorm:"not null;default:0" json:"total_marks"`
	TotalQuestions int            `gorm:"not null;default:0" json:"total_questions"`

	// AllowResubmit controls whether submissions stay editable after the
	// first grading call. Policy lives here, not in the grading core.
	AllowResubmit bool `gorm:"not null;default:false" json:"allow_resubmit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Questions decodes the stored question document.
func (e Exam) Questions() ([]grading.Question, error) {
	if len(e.QuestionsJSON) == 0 {
		return nil, nil
	}
	var questions []grading.Question
	if err := json.Unmarshal(e.QuestionsJSON, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SetQuestions encodes the question list and refreshes the denormalized
// totals.
func (e *Exam) SetQuestions(questions []grading.Question) error {
	encoded, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	e.QuestionsJSON = datatypes.JSON(encoded)
	e.TotalQuestions = len(questions)
	e.TotalMarks = 0
	for _, q := range questions {
		e.TotalMarks += q.Marks
	}
	return nil
}
