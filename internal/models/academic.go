package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Class levels recognised by the school, nursery through senior high.
const (
	ClassLevelNursery  = "NURSERY"
	ClassLevelKG       = "KG"
	ClassLevelPrimary1 = "PRIMARY_1"
	ClassLevelPrimary2 = "PRIMARY_2"
	ClassLevelPrimary3 = "PRIMARY_3"
	ClassLevelPrimary4 = "PRIMARY_4"
	ClassLevelPrimary5 = "PRIMARY_5"
	ClassLevelPrimary6 = "PRIMARY_6"
	ClassLevelJHS1     = "JHS_1"
	ClassLevelJHS2     = "JHS_2"
	ClassLevelJHS3     = "JHS_3"
	ClassLevelSHS1     = "SHS_1"
	ClassLevelSHS2     = "SHS_2"
	ClassLevelSHS3     = "SHS_3"
)

var classLevels = []string{
	ClassLevelNursery,
	ClassLevelKG,
	ClassLevelPrimary1,
	ClassLevelPrimary2,
	ClassLevelPrimary3,
	ClassLevelPrimary4,
	ClassLevelPrimary5,
	ClassLevelPrimary6,
	ClassLevelJHS1,
	ClassLevelJHS2,
	ClassLevelJHS3,
	ClassLevelSHS1,
	ClassLevelSHS2,
	ClassLevelSHS3,
}

var classLevelDisplay = map[string]string{
	ClassLevelNursery:  "Nursery",
	ClassLevelKG:       "Kindergarten",
	ClassLevelPrimary1: "Primary 1",
	ClassLevelPrimary2: "Primary 2",
	ClassLevelPrimary3: "Primary 3",
	ClassLevelPrimary4: "Primary 4",
	ClassLevelPrimary5: "Primary 5",
	ClassLevelPrimary6: "Primary 6",
	ClassLevelJHS1:     "JHS 1",
	ClassLevelJHS2:     "JHS 2",
	ClassLevelJHS3:     "JHS 3",
	ClassLevelSHS1:     "SHS 1",
	ClassLevelSHS2:     "SHS 2",
	ClassLevelSHS3:     "SHS 3",
}

// ClassLevels returns every recognised class level in ladder order.
func ClassLevels() []string {
	levels := make([]string, len(classLevels))
	copy(levels, classLevels)
	return levels
}

// ValidClassLevel reports whether level is one of the recognised class levels.
func ValidClassLevel(level string) bool {
	_, ok := classLevelDisplay[level]
	return ok
}

// ClassLevelDisplay returns the human readable name for a class level code.
func ClassLevelDisplay(level string) string {
	if display, ok := classLevelDisplay[level]; ok {
		return display
	}
	return level
}

var academicYearPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// ValidAcademicYear reports whether year is in the canonical YYYY/YYYY form
// with the second year exactly one after the first.
func ValidAcademicYear(year string) bool {
	if !academicYearPattern.MatchString(year) {
		return false
	}
	parts := strings.SplitN(year, "/", 2)
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	second, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return second == first+1
}

// CurrentAcademicYear derives the academic year containing the given instant.
// The school year runs September through August.
func CurrentAcademicYear(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.September {
		return fmt.Sprintf("%d/%d", year, year+1)
	}
	return fmt.Sprintf("%d/%d", year-1, year)
}

// AcademicYearBounds splits a canonical academic year into its calendar
// years. The caller is expected to have validated the year.
func AcademicYearBounds(year string) (int, int) {
	parts := strings.SplitN(year, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	first, _ := strconv.Atoi(parts[0])
	second, _ := strconv.Atoi(parts[1])
	return first, second
}
