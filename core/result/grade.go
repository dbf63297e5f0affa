package result

import "math"

const (
	MinScore = 0
	MaxScore = 100
)

var gradeScale = []struct {
	min   float64
	grade string
}{
	{90, "A"},
	{80, "B"},
	{70, "C"},
	{60, "D"},
	{50, "E"},
}

// GradeFor returns the letter grade of a score.
func GradeFor(score float64) string {
	for _, g := range gradeScale {
		if score >= g.min {
			return g.grade
		}
	}
	return "F"
}

func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// ValidScorePrecision reports whether score has at most 2 decimals, the precision stored by Postgres.
func ValidScorePrecision(score float64) bool {
	return math.Round(score*100)/100 == score
}
