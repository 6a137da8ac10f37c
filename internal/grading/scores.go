// Package grading implements the Ghana Education Service score policy: the
// per-component caps, the 2-decimal fixed-point rules, and the tier ladder
// that turns a total score into numeric and letter grades. Everything here is
// deterministic and side-effect free.
package grading

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// GES standard component weights. Each component score is capped at its
// weight, so a full set of components sums to at most 100.
const (
	ClassworkMax = 30.0
	HomeworkMax  = 10.0
	TestMax      = 10.0
	ExamMax      = 50.0
	TotalMax     = 100.0
	PassMark     = 40.0
)

// Scores holds the four raw component scores of one grade.
type Scores struct {
	Classwork float64
	Homework  float64
	Test      float64
	Exam      float64
}

// ValidationError carries every policy violation found in a score submission,
// keyed by field name so the caller can redisplay them against a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid scores"
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "invalid scores: " + strings.Join(parts, "; ")
}

// Validate checks the component scores, the academic year, and the term
// against the grading policy. All violations are collected rather than
// stopping at the first; a nil return means every check passed.
func Validate(s Scores, academicYear string, term int) error {
	fields := map[string]string{}

	checkComponent(fields, "classwork_score", s.Classwork, ClassworkMax)
	checkComponent(fields, "homework_score", s.Homework, HomeworkMax)
	checkComponent(fields, "test_score", s.Test, TestMax)
	checkComponent(fields, "exam_score", s.Exam, ExamMax)

	if !models.ValidAcademicYear(academicYear) {
		fields["academic_year"] = "academic year must be in format YYYY/YYYY with consecutive years"
	}
	if !models.ValidTerm(term) {
		fields["term"] = "term must be 1, 2, or 3"
	}

	// The caps already bound the sum, but the total is re-checked so a cap
	// change can never silently push totals past 100.
	if len(fields) == 0 {
		if total := Total(s); total > TotalMax {
			fields["total_score"] = fmt.Sprintf("total score cannot exceed %.0f%%", TotalMax)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkComponent(fields map[string]string, name string, value, max float64) {
	switch {
	case value < 0:
		fields[name] = "score cannot be negative"
	case value > max:
		fields[name] = fmt.Sprintf("score cannot exceed %.0f%%", max)
	case math.Abs(value-Quantize(value)) > 0.001:
		fields[name] = "score must have at most 2 decimal places"
	}
}

// Quantize rounds a score to 2 decimal places, half away from zero.
func Quantize(value float64) float64 {
	return math.Round(value*100) / 100
}

// Total sums the four components and quantizes the result to 2 decimal places.
func Total(s Scores) float64 {
	return Quantize(s.Classwork + s.Homework + s.Test + s.Exam)
}
