package models

import (
	"fmt"
	"strings"
)

// Grade is the closed letter-grade scale on a 10-point system.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

var gradePoints = map[Grade]float64{
	GradeS: 10,
	GradeA: 9,
	GradeB: 8,
	GradeC: 7,
	GradeD: 6,
	GradeE: 5,
	GradeF: 0,
}

// AllGrades lists every grade from best to worst.
var AllGrades = []Grade{GradeS, GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}

// ParseGrade validates a raw letter grade, accepting either case.
func ParseGrade(raw string) (Grade, error) {
	g := Grade(strings.ToUpper(raw))
	if _, ok := gradePoints[g]; !ok {
		return "", fmt.Errorf("invalid grade %q", raw)
	}
	return g, nil
}

// Points returns the grade-point value.
func (g Grade) Points() float64 {
	return gradePoints[g]
}

// IsPassing reports whether the grade passes. Only F fails.
func (g Grade) IsPassing() bool {
	return g != GradeF
}

// Valid reports whether g is a member of the scale.
func (g Grade) Valid() bool {
	_, ok := gradePoints[g]
	return ok
}

// GradeFromPercentage maps a 0-100 score onto the letter scale.
func GradeFromPercentage(percentage float64) Grade {
	switch {
	case percentage >= 90:
		return GradeS
	case percentage >= 80:
		return GradeA
	case percentage >= 70:
		return GradeB
	case percentage >= 60:
		return GradeC
	case percentage >= 50:
		return GradeD
	case percentage >= 40:
		return GradeE
	default:
		return GradeF
	}
}
