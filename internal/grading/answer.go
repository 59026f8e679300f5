package grading

import (
	"strconv"
	"strings"
)

// Kind discriminates the closed set of answer representations accepted at
// the ingestion boundary.
type Kind int

const (
	// KindNull marks an absent or explicitly null answer.
	KindNull Kind = iota
	// KindNumber marks a numeric answer, typically a legacy option index.
	KindNumber
	// KindText marks a string answer: an option id or free essay text.
	KindText
	// KindBool marks a native boolean answer.
	KindBool
)

// Answer is the tagged union every submitted value is coerced into before
// grading. Exactly one of the payload fields is meaningful for a given Kind.
type Answer struct {
	Kind   Kind
	Number float64
	Text   string
	Bool   bool

	// Malformed is set when the raw payload had an unexpected shape (an
	// array where a scalar was expected) and the first element was used.
	Malformed bool
}

// Coerce maps a raw decoded JSON value into an Answer. Arrays collapse to
// their first element and are flagged malformed rather than rejected, and
// the legacy nested {"selectedAnswers": [...]} shape is unwrapped here so
// the graders only ever see the union.
func Coerce(raw interface{}) Answer {
	switch v := raw.(type) {
	case nil:
		return Answer{Kind: KindNull}
	case bool:
		return Answer{Kind: KindBool, Bool: v}
	case float64:
		return Answer{Kind: KindNumber, Number: v}
	case float32:
		return Answer{Kind: KindNumber, Number: float64(v)}
	case int:
		return Answer{Kind: KindNumber, Number: float64(v)}
	case int64:
		return Answer{Kind: KindNumber, Number: float64(v)}
	case uint:
		return Answer{Kind: KindNumber, Number: float64(v)}
	case string:
		return Answer{Kind: KindText, Text: v}
	case []interface{}:
		if len(v) == 0 {
			return Answer{Kind: KindNull, Malformed: true}
		}
		first := Coerce(v[0])
		first.Malformed = true
		return first
	case map[string]interface{}:
		if selected, ok := v["selectedAnswers"]; ok {
			return Coerce(selected)
		}
		if selected, ok := v["selected"]; ok {
			return Coerce(selected)
		}
		return Answer{Kind: KindNull, Malformed: true}
	default:
		return Answer{Kind: KindNull, Malformed: true}
	}
}

// IsSkipped reports whether the answer counts as "not answered": absent,
// null, or an empty string.
func (a Answer) IsSkipped() bool {
	switch a.Kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(a.Text) == ""
	default:
		return false
	}
}

// String renders the trimmed string form used for direct key comparison.
// Numbers render without a trailing fraction so 1 and "1" compare equal.
func (a Answer) String() string {
	switch a.Kind {
	case KindNull:
		return ""
	case KindBool:
		if a.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(a.Number)
	default:
		return strings.TrimSpace(a.Text)
	}
}

// Raw returns the value in its original JSON-friendly representation, for
// echoing back in result breakdowns.
func (a Answer) Raw() interface{} {
	switch a.Kind {
	case KindNull:
		return nil
	case KindBool:
		return a.Bool
	case KindNumber:
		return a.Number
	default:
		return a.Text
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
