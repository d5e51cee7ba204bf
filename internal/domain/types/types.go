// Package types contains the JSON wire types of the assignment API and their
// mapping onto the domain model.
package types

import (
	"bytes"
	"encoding/json"

	"github.com/okian/assigner/internal/domain/model"
)

// Defaults fills optional request fields before the request reaches the core.
type Defaults struct {
	Priority      model.Priority
	DeadlineHours float64
}

// DefaultDefaults returns LOW priority and a 24 hour deadline.
func DefaultDefaults() Defaults {
	return Defaults{Priority: model.PriorityLow, DeadlineHours: 24}
}

// Employee is one entry of candidate_employees.
type Employee struct {
	// UserID is echoed back verbatim, so numeric and string ids both round-trip.
	UserID             json.RawMessage `json:"user_id"`
	Skills             []string        `json:"skills"`
	AvailableBandwidth float64         `json:"available_bandwidth"`
}

// AssignmentRequest is the body of POST /predict-assignment.
type AssignmentRequest struct {
	TaskID             json.RawMessage `json:"task_id"`
	TaskTitle          string          `json:"task_title"`
	SkillsRequired     []string        `json:"skills_required"`
	// Priority is any JSON value. Absent or null selects the default; other
	// non-string values are kept as text and weigh 0.
	Priority           json.RawMessage `json:"priority,omitempty"`
	DeadlineHours      *float64        `json:"deadline_hours,omitempty"`
	CandidateEmployees []Employee      `json:"candidate_employees"`
}

// AssignmentResponse describes the selected employee.
type AssignmentResponse struct {
	AssignedEmployeeID     json.RawMessage `json:"assigned_employee_id"`
	AssignedEmployeeName   string          `json:"assigned_employee_name"`
	AssignedEmployeeSkills []string        `json:"assigned_employee_skills"`
	AvailableBandwidth     float64         `json:"available_bandwidth"`
	Score                  float64         `json:"score"`
}

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// BulkAssignmentRequest is the body of POST /predict-assignments. Items are
// kept raw so each one is validated on its own.
type BulkAssignmentRequest struct {
	Requests []json.RawMessage `json:"requests"`
}

// BulkResult is the outcome of one bulk item, in request order.
type BulkResult struct {
	Index      int                 `json:"index"`
	Status     int                 `json:"status"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
	Error      *ErrorResponse      `json:"error,omitempty"`
}

// BulkAssignmentResponse is the body returned by POST /predict-assignments.
type BulkAssignmentResponse struct {
	Results []BulkResult `json:"results"`
}

// DisplayID renders a raw JSON id the way it reads to a person: strings
// unquoted, anything else as written.
func DisplayID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' && json.Unmarshal(trimmed, &s) == nil {
		return s
	}
	return string(trimmed)
}

// ToDomain applies defaults and converts the request into core values.
// Candidate order is preserved so results can be mapped back by index.
func (r AssignmentRequest) ToDomain(d Defaults) (model.Task, []model.Candidate) {
	task := model.Task{
		ID:             DisplayID(r.TaskID),
		Title:          r.TaskTitle,
		RequiredSkills: r.SkillsRequired,
		Priority:       d.Priority,
		DeadlineHours:  d.DeadlineHours,
	}
	if p, ok := priorityOf(r.Priority); ok {
		task.Priority = p
	}
	if r.DeadlineHours != nil {
		task.DeadlineHours = *r.DeadlineHours
	}

	candidates := make([]model.Candidate, len(r.CandidateEmployees))
	for i, e := range r.CandidateEmployees {
		candidates[i] = model.Candidate{
			ID:                 DisplayID(e.UserID),
			Skills:             e.Skills,
			AvailableBandwidth: e.AvailableBandwidth,
		}
	}
	return task, candidates
}

func priorityOf(raw json.RawMessage) (model.Priority, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	return model.Priority(DisplayID(trimmed)), true
}

// NewAssignmentResponse describes employee e as the selected candidate.
func NewAssignmentResponse(e Employee, score float64) AssignmentResponse {
	skills := e.Skills
	if skills == nil {
		skills = []string{}
	}
	return AssignmentResponse{
		AssignedEmployeeID:     e.UserID,
		AssignedEmployeeName:   "Employee " + DisplayID(e.UserID),
		AssignedEmployeeSkills: skills,
		AvailableBandwidth:     e.AvailableBandwidth,
		Score:                  score,
	}
}
