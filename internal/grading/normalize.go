package grading

import (
	"fmt"
	"strings"
)

// localizedTrue is the Arabic "correct/true" token emitted by one of the
// upstream exam UIs. It must stay recognised for stored submissions to keep
// grading the same way.
const localizedTrue = "صحيح"

// NormalizeKey converts any submitted value into a canonical comparable
// key: nil becomes "", booleans become "true"/"false", numbers their
// decimal form, and everything else is trimmed and lower-cased.
func NormalizeKey(raw interface{}) string {
	a := Coerce(raw)
	switch a.Kind {
	case KindNull:
		return ""
	case KindBool, KindNumber:
		return a.String()
	default:
		return strings.ToLower(strings.TrimSpace(a.Text))
	}
}

// Truthy reports whether a value is one of the accepted "true" encodings:
// a native true, the string "true", the localized token, or the numeric
// sentinel 0 used by a legacy 0/1 encoding. Every other value reads as
// false.
func Truthy(raw interface{}) bool {
	a := Coerce(raw)
	switch a.Kind {
	case KindBool:
		return a.Bool
	case KindNumber:
		return a.Number == 0
	case KindText:
		token := strings.ToLower(strings.TrimSpace(a.Text))
		return token == "true" || token == localizedTrue
	default:
		return false
	}
}

// WithOptionIDs returns a copy of options where every blank id has been
// replaced with a deterministic synthesized one. The caller's slice is
// never mutated.
func WithOptionIDs(questionID string, options []Option) []Option {
	annotated := make([]Option, len(options))
	copy(annotated, options)
	for i := range annotated {
		if strings.TrimSpace(annotated[i].ID) == "" {
			annotated[i].ID = fmt.Sprintf("opt_%s_%d", questionID, i)
		}
	}
	return annotated
}

// ResolveOptionID maps an answer reference onto a stable option id.
// Resolution order: exact id match (trimmed, case-sensitive), numeric index
// into the option list, case-insensitive display-text match, and finally
// the trimmed string form of the reference itself. An empty string is
// returned only for a null reference.
func ResolveOptionID(ref interface{}, options []Option, questionID string) string {
	a := Coerce(ref)
	if a.Kind == KindNull {
		return ""
	}

	annotated := WithOptionIDs(questionID, options)
	trimmed := a.String()

	for _, opt := range annotated {
		if strings.TrimSpace(opt.ID) == trimmed {
			return opt.ID
		}
	}

	if a.Kind == KindNumber && a.Number == float64(int(a.Number)) {
		idx := int(a.Number)
		if idx >= 0 && idx < len(annotated) {
			return annotated[idx].ID
		}
	}

	lowered := strings.ToLower(trimmed)
	for _, opt := range annotated {
		if strings.ToLower(strings.TrimSpace(opt.Text)) == lowered {
			return opt.ID
		}
	}

	return trimmed
}
