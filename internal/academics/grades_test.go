package academics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGrade(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"A*", "A*"},
		{"a*", "A*"},
		{" a - star", "A*"},
		{"astar", "A*"},
		{"A", "A"},
		{"b", "B"},
		{"U", "U"},
		{"f", "U"},
		{"", "C"},
		{"   ", "C"},
		{"distinction", "C"},
		{"95", "A*"},
		{"90", "A*"},
		{"85%", "A"},
		{"79.9", "B"},
		{"60", "C"},
		{"50 %", "D"},
		{"40", "E"},
		{"12", "U"},
		{"150", "C"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeGrade(tt.input))
		})
	}
}

func TestGradeRank_Ordering(t *testing.T) {
	for i := 0; i < len(LetterGrades)-1; i++ {
		assert.Greater(t, GradeRank(LetterGrades[i]), GradeRank(LetterGrades[i+1]),
			"%s should outrank %s", LetterGrades[i], LetterGrades[i+1])
	}
	assert.Equal(t, GradeRank("C"), GradeRank(""), "missing grade ranks as baseline")
}
