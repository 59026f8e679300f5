package dto

import (
	"time"

	"github.com/hikma-academy/academy-api/internal/grading"
	"github.com/hikma-academy/academy-api/internal/models"
)

// ExamCreateRequest is the authoring payload for a new exam.
type ExamCreateRequest struct {
	CourseID      uint                `json:"course_id" validate:"required,gt=0"`
	Title         string              `json:"title" validate:"required,min=3,max=255"`
	AllowResubmit bool                `json:"allow_resubmit"`
	Questions     []ExamQuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// ExamQuestionInput is one authored question.
type ExamQuestionInput struct {
	ID            string               `json:"id"`
	Type          string               `json:"type" validate:"required,oneof=mcq true_false essay"`
	QuestionText  string               `json:"questionText" validate:"required"`
	Options       []ExamQuestionOption `json:"options" validate:"omitempty,dive"`
	CorrectAnswer interface{}          `json:"correctAnswer"`
	Marks         int                  `json:"marks" validate:"required,gt=0"`
}

// ExamQuestionOption is one authored choice.
type ExamQuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"required"`
}

// ExamSubmitRequest carries the raw answer map: one scalar per question id.
type ExamSubmitRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required"`
}

// StudentQuestionView is a question as shown before submission. It never
// carries the answer key.
type StudentQuestionView struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	QuestionText string           `json:"questionText"`
	Options      []grading.Option `json:"options,omitempty"`
	Marks        int              `json:"marks"`
}

// ExamStudentView is the pre-submission exam payload.
type ExamStudentView struct {
	ID             uint                  `json:"id"`
	CourseID       uint                  `json:"course_id"`
	Title          string                `json:"title"`
	TotalMarks     int                   `json:"total_marks"`
	TotalQuestions int                   `json:"total_questions"`
	Questions      []StudentQuestionView `json:"questions"`
}

// NewExamStudentView builds the confidential-safe exam view: the
// correctAnswer fields are stripped here and nowhere downstream.
func NewExamStudentView(exam models.Exam, questions []grading.Question) ExamStudentView {
	view := ExamStudentView{
		ID:             exam.ID,
		CourseID:       exam.CourseID,
		Title:          exam.Title,
		TotalMarks:     exam.TotalMarks,
		TotalQuestions: exam.TotalQuestions,
		Questions:      make([]StudentQuestionView, 0, len(questions)),
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, StudentQuestionView{
			ID:           q.ID,
			Type:         string(q.Type),
			QuestionText: q.Text,
			Options:      grading.WithOptionIDs(q.ID, q.Options),
			Marks:        q.Marks,
		})
	}
	return view
}

// SubmissionResponse serializes a graded submission.
type SubmissionResponse struct {
	ID          uint                     `json:"id"`
	ExamID      uint                     `json:"exam_id"`
	StudentID   uint                     `json:"student_id"`
	Score       int                      `json:"score"`
	MaxScore    int                      `json:"max_score"`
	Percentage  int                      `json:"percentage"`
	Grade       string                   `json:"grade"`
	Level       string                   `json:"level"`
	IsEditable  bool                     `json:"is_editable"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Results     []grading.QuestionResult `json:"results,omitempty"`
}

// NewSubmissionResponse converts a submission model into a DTO. The
// breakdown is attached separately because it lives in a JSON column.
func NewSubmissionResponse(model models.ExamSubmission, results []grading.QuestionResult) SubmissionResponse {
	return SubmissionResponse{
		ID:          model.ID,
		ExamID:      model.ExamID,
		StudentID:   model.StudentID,
		Score:       model.Score,
		MaxScore:    model.MaxScore,
		Percentage:  model.Percentage,
		Grade:       model.Grade,
		Level:       model.Level,
		IsEditable:  model.IsEditable,
		SubmittedAt: model.SubmittedAt,
		Results:     results,
	}
}
