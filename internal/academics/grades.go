package academics

import (
	"strconv"
	"strings"
)

// BaselineGrade is assumed for missing or unrecognised grades so in-progress
// students still get a usable estimate.
const BaselineGrade = "C"

// LetterGrades is the fixed grade scale, best first.
var LetterGrades = []string{"A*", "A", "B", "C", "D", "E", "U"}

var gradeAliases = map[string]string{
	"A-STAR": "A*",
	"ASTAR":  "A*",
	"F":      "U",
	"G":      "U",
}

// percentThresholds buckets percentage marks into letters.
var percentThresholds = []struct {
	min   float64
	grade string
}{
	{90, "A*"},
	{80, "A"},
	{70, "B"},
	{60, "C"},
	{50, "D"},
	{40, "E"},
}

// NormalizeGrade maps free-typed input onto LetterGrades.
func NormalizeGrade(raw string) string {
	g := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if g == "" {
		return BaselineGrade
	}
	if alias, ok := gradeAliases[g]; ok {
		return alias
	}
	if gradeRank(g) >= 0 {
		return g
	}
	if pct, ok := parsePercent(g); ok {
		for _, t := range percentThresholds {
			if pct >= t.min {
				return t.grade
			}
		}
		return "U"
	}
	return BaselineGrade
}

// GradeRank orders normalized grades; higher is better.
func GradeRank(raw string) int {
	return gradeRank(NormalizeGrade(raw))
}

func gradeRank(letter string) int {
	for i, g := range LetterGrades {
		if g == letter {
			return len(LetterGrades) - 1 - i
		}
	}
	return -1
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}
