package grading

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// ExamResult aggregates one pass over every question of an exam.
type ExamResult struct {
	TotalScore int              `json:"totalScore"`
	MaxScore   int              `json:"maxScore"`
	Percentage int              `json:"percentage"`
	Grade      string           `json:"grade"`
	Level      string           `json:"level"`
	Results    []QuestionResult `json:"results"`
}

// Grader scores whole exams. It holds no mutable state and is safe for
// concurrent use.
type Grader struct {
	scale  Scale
	logger zerolog.Logger
}

// NewGrader builds a Grader with the given scale. A nil-equivalent scale
// falls back to the default threshold table.
func NewGrader(scale Scale, logger zerolog.Logger) *Grader {
	if len(scale) == 0 {
		scale = DefaultScale()
	}
	return &Grader{
		scale:  scale,
		logger: logger.With().Str("component", "grader").Logger(),
	}
}

// GradeExam grades every question in list order against the submitted
// answer map. Questions without an id are addressed by a synthesized
// q_<index> key; a genuinely absent answer grades as skipped rather than
// wrong. The computation is deterministic: identical inputs always yield
// identical results.
func (g *Grader) GradeExam(questions []Question, answers map[string]interface{}) ExamResult {
	result := ExamResult{Results: make([]QuestionResult, 0, len(questions))}

	for i, q := range questions {
		raw := lookupAnswer(answers, q.ID, i)

		qr := GradeQuestion(q, raw)
		if qr.QuestionID == "" {
			qr.QuestionID = fmt.Sprintf("q_%d", i)
		}
		if qr.Warning != "" {
			g.logger.Warn().
				Str("question_id", qr.QuestionID).
				Str("detail", string(qr.Detail)).
				Msg(qr.Warning)
		}

		result.TotalScore += qr.EarnedMarks
		result.MaxScore += qr.MaxMarks
		result.Results = append(result.Results, qr)
	}

	result.Percentage = percentage(result.TotalScore, result.MaxScore)
	result.Grade, result.Level = g.scale.Grade(result.Percentage)

	return result
}

func lookupAnswer(answers map[string]interface{}, id string, index int) interface{} {
	if id != "" {
		if raw, ok := answers[id]; ok {
			return raw
		}
	}
	if raw, ok := answers[fmt.Sprintf("q_%d", index)]; ok {
		return raw
	}
	return nil
}

func percentage(total, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(max) * 100))
}
