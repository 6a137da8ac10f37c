package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptrFloat(v float64) *float64 {
	return &v
}

func TestClassifyConcreteScenarios(t *testing.T) {
	cases := []struct {
		name   string
		scores Scores
		total  float64
		ges    string
		letter string
		pass   bool
	}{
		{"strong result", Scores{Classwork: 25, Homework: 8, Test: 9, Exam: 40}, 82.00, "2", "A", true},
		{"perfect score", Scores{Classwork: 30, Homework: 10, Test: 10, Exam: 50}, 100.00, "1", "A+", true},
		{"failing result", Scores{Classwork: 5, Homework: 2, Test: 1, Exam: 5}, 13.00, "9", "F", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total := Total(tc.scores)
			require.InDelta(t, tc.total, total, 1e-9)

			ges, letter := Classify(&total)
			require.Equal(t, tc.ges, ges)
			require.Equal(t, tc.letter, letter)
			require.Equal(t, tc.pass, IsPassing(&total))
		})
	}
}

func TestClassifyNilTotal(t *testing.T) {
	ges, letter := Classify(nil)
	require.Equal(t, TierNotAvailable, ges)
	require.Equal(t, TierNotAvailable, letter)
	require.False(t, IsPassing(nil))
}

func TestClassifyLadderBoundaries(t *testing.T) {
	cases := []struct {
		total  float64
		ges    string
		letter string
	}{
		{100, "1", "A+"},
		{90, "1", "A+"},
		{89.99, "2", "A"},
		{80, "2", "A"},
		{70, "3", "B+"},
		{60, "4", "B"},
		{50, "5", "C+"},
		{40, "6", "C"},
		{39.99, "7", "D+"},
		{30, "7", "D+"},
		{20, "8", "D"},
		{19.99, "9", "F"},
		{0, "9", "F"},
	}

	for _, tc := range cases {
		ges, letter := Classify(ptrFloat(tc.total))
		require.Equal(t, tc.ges, ges, "total %.2f", tc.total)
		require.Equal(t, tc.letter, letter, "total %.2f", tc.total)
	}
}

// Every half-point step of the 0-100 range must land in exactly one band, and
// a higher score must never map to a weaker tier.
func TestClassifyLadderIsExhaustiveAndMonotonic(t *testing.T) {
	rank := map[string]int{"1": 1, "2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9}

	previous := 10
	for total := 0.0; total <= 100.0; total += 0.5 {
		score := total
		ges, letter := Classify(&score)
		require.NotEqual(t, TierNotAvailable, ges)
		require.NotEqual(t, TierNotAvailable, letter)

		current, ok := rank[ges]
		require.True(t, ok, "unexpected tier %q for total %.2f", ges, total)
		require.LessOrEqual(t, current, previous, "tier regressed at total %.2f", total)
		previous = current
	}
}

func TestIsPassingAtPassMark(t *testing.T) {
	require.True(t, IsPassing(ptrFloat(40)))
	require.False(t, IsPassing(ptrFloat(39.99)))
}

func TestOverallGradeLadder(t *testing.T) {
	require.Equal(t, "A+", OverallGrade(95))
	require.Equal(t, "B", OverallGrade(65))
	require.Equal(t, "C", OverallGrade(40))
	require.Equal(t, "D", OverallGrade(20))
	require.Equal(t, "E", OverallGrade(13))
	require.Equal(t, "", OverallGrade(0))
}
