// Package features turns a task and its candidates into scorer inputs.
package features

import (
	"fmt"
	"math"

	"github.com/okian/assigner/internal/domain/model"
)

// Build returns one feature vector per candidate, in candidate order.
// An empty candidate list yields an empty, non-nil slice.
func Build(task model.Task, candidates []model.Candidate) ([]model.FeatureVector, error) {
	required := skillSet(task.RequiredSkills)
	if len(required) == 0 {
		return nil, fmt.Errorf("%w: no required skills", ErrInvalidTask)
	}
	if math.IsNaN(task.DeadlineHours) || math.IsInf(task.DeadlineHours, 0) || task.DeadlineHours <= 0 {
		return nil, fmt.Errorf("%w: deadline_hours must be positive, got %v", ErrInvalidTask, task.DeadlineHours)
	}

	requiredCount := float64(len(required))
	priority := task.Priority.Weight()

	vectors := make([]model.FeatureVector, len(candidates))
	for i, c := range candidates {
		matched := float64(matchCount(required, c.Skills))
		vectors[i] = model.FeatureVector{
			PriorityWeight:         priority,
			DeadlineHours:          task.DeadlineHours,
			RequiredSkillCount:     requiredCount,
			MatchedSkillCount:      matched,
			AvailableBandwidth:     c.AvailableBandwidth,
			MatchedSkillPercentage: matched / requiredCount * 100,
		}
	}
	return vectors, nil
}

// matchCount returns |required ∩ skills|, counting each skill once.
func matchCount(required map[string]struct{}, skills []string) int {
	seen := make(map[string]struct{}, len(skills))
	n := 0
	for _, s := range skills {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := required[s]; ok {
			n++
		}
	}
	return n
}

func skillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}
