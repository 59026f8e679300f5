package grading

import "sort"

// Band maps the lowest percentage that still earns a given letter grade
// and qualitative level.
type Band struct {
	Min   int
	Grade string
	Level string
}

// Scale is a total, monotonic step function from percentage to letter
// grade. Anything below the lowest band falls through to F.
type Scale []Band

// DefaultScale mirrors the threshold table the platform has always used.
// The boundaries are configuration, not law; construct a custom Scale to
// change them.
func DefaultScale() Scale {
	return Scale{
		{Min: 97, Grade: "A+", Level: "Excellent"},
		{Min: 93, Grade: "A", Level: "Excellent"},
		{Min: 90, Grade: "A-", Level: "Very Good"},
		{Min: 87, Grade: "B+", Level: "Very Good"},
		{Min: 83, Grade: "B", Level: "Good"},
		{Min: 80, Grade: "B-", Level: "Good"},
		{Min: 77, Grade: "C+", Level: "Satisfactory"},
		{Min: 73, Grade: "C", Level: "Satisfactory"},
		{Min: 70, Grade: "C-", Level: "Acceptable"},
		{Min: 67, Grade: "D+", Level: "Acceptable"},
		{Min: 63, Grade: "D", Level: "Acceptable"},
	}
}

// Grade resolves a percentage into its letter grade and level.
func (s Scale) Grade(percentage int) (string, string) {
	bands := make(Scale, len(s))
	copy(bands, s)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min > bands[j].Min })

	for _, band := range bands {
		if percentage >= band.Min {
			return band.Grade, band.Level
		}
	}
	return "F", "Poor"
}
