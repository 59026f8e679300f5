package grading

import "strings"

// QuestionType enumerates the assessable item kinds.
type QuestionType string

const (
	// TypeMCQ is a single-choice question despite the name.
	TypeMCQ QuestionType = "mcq"
	// TypeTrueFalse is a boolean statement question.
	TypeTrueFalse QuestionType = "true_false"
	// TypeEssay is free text, auto-awarded pending manual review.
	TypeEssay QuestionType = "essay"
)

// Option is one selectable choice of an mcq question. IDs are assigned at
// authoring time and treated as opaque tokens.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the grading view of one assessable item.
type Question struct {
	ID   string       `json:"id"`
	Type QuestionType `json:"type"`
	Text string       `json:"questionText"`

	Options []Option `json:"options,omitempty"`

	// CorrectAnswer is the authoritative key: an option id for mcq, a
	// boolean encoding for true_false, unused for essay.
	CorrectAnswer interface{} `json:"correctAnswer,omitempty"`

	// CorrectAnswers is a legacy multi-select field. Only its first
	// element is honoured; the system is single-choice per question.
	CorrectAnswers []interface{} `json:"correctAnswers,omitempty"`

	Marks int `json:"marks"`
}

// Detail classifies a per-question outcome beyond the correct flag so
// callers can render "not answered" distinctly from "wrong answer".
type Detail string

const (
	DetailCorrect          Detail = "correct"
	DetailIncorrect        Detail = "incorrect"
	DetailSkipped          Detail = "skipped"
	DetailNoCorrectDefined Detail = "no_correct_defined"
	DetailUnknownType      Detail = "unknown_type"
)

// QuestionResult is the outcome of grading one question.
type QuestionResult struct {
	QuestionID    string      `json:"questionId"`
	QuestionText  string      `json:"questionText"`
	IsCorrect     bool        `json:"isCorrect"`
	EarnedMarks   int         `json:"earnedMarks"`
	MaxMarks      int         `json:"maxMarks"`
	Detail        Detail      `json:"detail"`
	UserAnswer    interface{} `json:"userAnswer"`
	CorrectAnswer interface{} `json:"correctAnswer,omitempty"`

	// Warning carries a data-quality note (legacy answer key, malformed
	// payload shape) without failing the question.
	Warning string `json:"warning,omitempty"`
}

// GradeQuestion scores one question against one submitted value. It never
// returns an error: unscoreable questions degrade to zero marks with a
// diagnostic detail so one bad question cannot abort an exam.
func GradeQuestion(q Question, raw interface{}) QuestionResult {
	result := QuestionResult{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		MaxMarks:     q.Marks,
		Detail:       DetailIncorrect,
	}

	answer := Coerce(raw)
	result.UserAnswer = answer.Raw()
	if answer.Malformed {
		result.Warning = "answer payload was not a scalar; first element used"
	}

	switch q.Type {
	case TypeEssay:
		// Placeholder-scored until a human overrides through the review
		// workflow.
		result.IsCorrect = true
		result.EarnedMarks = q.Marks
		result.Detail = DetailCorrect
		return result
	case TypeTrueFalse:
		key, ok, legacy := correctKey(q)
		if !ok {
			result.Detail = DetailNoCorrectDefined
			return result
		}
		result.CorrectAnswer = key
		if legacy {
			result.Warning = "legacy correctAnswers key in use; first element honoured"
		}
		if answer.IsSkipped() {
			result.Detail = DetailSkipped
			return result
		}
		if Truthy(key) == Truthy(answer.Raw()) {
			result.IsCorrect = true
			result.EarnedMarks = q.Marks
			result.Detail = DetailCorrect
		}
		return result
	case TypeMCQ:
		key, ok, legacy := correctKey(q)
		if !ok {
			result.Detail = DetailNoCorrectDefined
			return result
		}
		result.CorrectAnswer = key
		if legacy {
			result.Warning = "legacy correctAnswers key in use; first element honoured"
		}
		if answer.IsSkipped() {
			result.Detail = DetailSkipped
			return result
		}
		// Compared by id string, deliberately not through option-text
		// resolution: submissions are expected to carry option ids.
		if Coerce(key).String() == answer.String() {
			result.IsCorrect = true
			result.EarnedMarks = q.Marks
			result.Detail = DetailCorrect
		}
		return result
	default:
		result.Detail = DetailUnknownType
		return result
	}
}

// correctKey returns the authoritative answer key, falling back to the
// first usable element of the legacy plural field. The legacy flag is set
// on every plural-fallback use, including the blank-singular case, so no
// fallback path goes unflagged.
func correctKey(q Question) (key interface{}, ok bool, legacy bool) {
	if q.CorrectAnswer != nil {
		if s, isString := q.CorrectAnswer.(string); isString && strings.TrimSpace(s) == "" {
			// blank key counts as undefined
		} else {
			return q.CorrectAnswer, true, false
		}
	}
	for _, candidate := range q.CorrectAnswers {
		if candidate == nil {
			continue
		}
		if s, isString := candidate.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return candidate, true, true
	}
	return nil, false, false
}
