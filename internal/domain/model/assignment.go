// Package model contains domain models passed between layers.
package model

// Priority is the urgency level attached to a task.
type Priority string

// Known priority levels.
const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Weight maps the priority to its ordinal feature value.
// Unrecognized values map to 0, same as LOW.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Task describes the work to be assigned.
type Task struct {
	ID             string
	Title          string
	RequiredSkills []string // treated as a set
	Priority       Priority
	DeadlineHours  float64
}

// Candidate is an employee that may receive the task.
type Candidate struct {
	ID                 string
	Skills             []string // treated as a set
	AvailableBandwidth float64
}

// Feature names in canonical vector order.
const (
	FeaturePriorityWeight         = "priority_weight"
	FeatureDeadlineHours          = "deadline_hours"
	FeatureRequiredSkillCount     = "required_skill_count"
	FeatureMatchedSkillCount      = "matched_skill_count"
	FeatureAvailableBandwidth     = "available_bandwidth"
	FeatureMatchedSkillPercentage = "matched_skill_percentage"
)

// FeatureNames lists feature names in the order returned by FeatureVector.Values.
var FeatureNames = []string{
	FeaturePriorityWeight,
	FeatureDeadlineHours,
	FeatureRequiredSkillCount,
	FeatureMatchedSkillCount,
	FeatureAvailableBandwidth,
	FeatureMatchedSkillPercentage,
}

// FeatureVector is the fixed-shape numeric input of a scorer, one per candidate.
type FeatureVector struct {
	PriorityWeight         float64
	DeadlineHours          float64
	RequiredSkillCount     float64
	MatchedSkillCount      float64
	AvailableBandwidth     float64
	MatchedSkillPercentage float64
}

// Values returns the vector fields in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.PriorityWeight,
		v.DeadlineHours,
		v.RequiredSkillCount,
		v.MatchedSkillCount,
		v.AvailableBandwidth,
		v.MatchedSkillPercentage,
	}
}

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	values := v.Values()
	m := make(map[string]float64, len(values))
	for i, name := range FeatureNames {
		m[name] = values[i]
	}
	return m
}
