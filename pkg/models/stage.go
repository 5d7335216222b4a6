package models

import "fmt"

// Stage is the review box a learner card currently sits in
type Stage string

const (
	StageNew      Stage = "new"
	StageDay1     Stage = "1_day"
	StageDays3    Stage = "3_days"
	StageDays7    Stage = "7_days"
	StageMastered Stage = "mastered"
)

// Stages lists every stage in progression order
var Stages = []Stage{StageNew, StageDay1, StageDays3, StageDays7, StageMastered}

// Valid reports whether s is one of the known stages
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStage converts a stored or user supplied value into a Stage
func ParseStage(v string) (Stage, error) {
	s := Stage(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid stage: %q", v)
	}
	return s, nil
}
