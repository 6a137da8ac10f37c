package grading

// TierNotAvailable is reported for both tiers when no total score exists.
const TierNotAvailable = "N/A"

type band struct {
	floor  float64
	ges    string
	letter string
}

// The GES ladder, descending. Both tiers share the same thresholds.
var ladder = []band{
	{90, "1", "A+"},
	{80, "2", "A"},
	{70, "3", "B+"},
	{60, "4", "B"},
	{50, "5", "C+"},
	{40, "6", "C"},
	{30, "7", "D+"},
	{20, "8", "D"},
	{0, "9", "F"},
}

// Classify maps a total score to its GES tier and letter tier. A nil total
// yields "N/A" for both.
func Classify(total *float64) (gesTier, letterTier string) {
	if total == nil {
		return TierNotAvailable, TierNotAvailable
	}
	for _, b := range ladder {
		if *total >= b.floor {
			return b.ges, b.letter
		}
	}
	return "9", "F"
}

// IsPassing reports whether the total meets the GES pass mark of 40%.
func IsPassing(total *float64) bool {
	return total != nil && *total >= PassMark
}

// OverallGrade maps a report-card average to its overall letter. Report cards
// keep the legacy tail of the ladder: averages under 20 map to "E", and a
// missing or zero average yields an empty grade.
func OverallGrade(average float64) string {
	if average <= 0 {
		return ""
	}
	switch {
	case average >= 90:
		return "A+"
	case average >= 80:
		return "A"
	case average >= 70:
		return "B+"
	case average >= 60:
		return "B"
	case average >= 50:
		return "C+"
	case average >= 40:
		return "C"
	case average >= 30:
		return "D+"
	case average >= 20:
		return "D"
	default:
		return "E"
	}
}
