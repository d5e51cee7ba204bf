// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/types"
	"github.com/okian/assigner/pkg/logger"
)

// Assigner ranks candidates for one or many tasks.
type Assigner interface {
	Assign(ctx context.Context, task model.Task, candidates []model.Candidate) (service.Assignment, error)
	AssignBatch(ctx context.Context, items []service.BatchItem) []service.BatchOutcome
}

// AssignHandler serves the prediction endpoints.
type AssignHandler struct {
	assigner      Assigner
	defaults      types.Defaults
	maxCandidates int
	maxBodyBytes  int64
	maxBulk       int
	log           logger.Logger
}

// NewAssignHandler creates a new assignment handler.
func NewAssignHandler(assigner Assigner, opts ...Option) *AssignHandler {
	h := &AssignHandler{
		assigner:      assigner,
		defaults:      types.DefaultDefaults(),
		maxCandidates: defaultMaxCandidates,
		maxBodyBytes:  defaultMaxBodyBytes,
		maxBulk:       defaultMaxBulkRequests,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleAssign handles POST /predict-assignment requests.
func (h *AssignHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_assignment"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	req, err := h.decode(body)
	if err != nil {
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	task, candidates := req.ToDomain(h.defaults)
	a, err := h.assigner.Assign(r.Context(), task, candidates)
	if err != nil {
		h.fail(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewAssignmentResponse(req.CandidateEmployees[a.Index], a.Score))
}

// HandleBulk handles POST /predict-assignments requests. Every item is
// validated and ranked independently; the response is 200 with one result
// per item carrying its own status.
func (h *AssignHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_assignments"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var envelope types.BulkAssignmentRequest
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, err))
		return
	}
	switch n := len(envelope.Requests); {
	case n == 0:
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, errors.New("requests must not be empty")))
		return
	case n > h.maxBulk:
		h.fail(r.Context(), w, WrapKind(op, ErrBadRequest, fmt.Errorf("%d requests exceed the limit of %d", n, h.maxBulk)))
		return
	}

	results := make([]types.BulkResult, len(envelope.Requests))
	reqs := make([]types.AssignmentRequest, 0, len(envelope.Requests))
	items := make([]service.BatchItem, 0, len(envelope.Requests))
	positions := make([]int, 0, len(envelope.Requests))

	for i, raw := range envelope.Requests {
		results[i].Index = i
		req, err := h.decode(raw)
		if err != nil {
			failResult(&results[i], WrapKind(op, ErrBadRequest, err))
			continue
		}
		task, candidates := req.ToDomain(h.defaults)
		reqs = append(reqs, req)
		items = append(items, service.BatchItem{Task: task, Candidates: candidates})
		positions = append(positions, i)
	}

	for j, outcome := range h.assigner.AssignBatch(r.Context(), items) {
		res := &results[positions[j]]
		if outcome.Err != nil {
			failResult(res, outcome.Err)
			continue
		}
		resp := types.NewAssignmentResponse(reqs[j].CandidateEmployees[outcome.Assignment.Index], outcome.Assignment.Score)
		res.Status = http.StatusOK
		res.Assignment = &resp
	}

	writeJSON(w, http.StatusOK, types.BulkAssignmentResponse{Results: results})
}

func (h *AssignHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
		}
		return nil, err
	}
	return body, nil
}

// decode validates one assignment request against the schema and the
// candidate limit.
func (h *AssignHandler) decode(raw []byte) (types.AssignmentRequest, error) {
	req, err := types.DecodeAssignmentRequest(raw)
	if err != nil {
		return req, err
	}
	if n := len(req.CandidateEmployees); n > h.maxCandidates {
		return req, fmt.Errorf("%d candidate_employees exceed the limit of %d", n, h.maxCandidates)
	}
	return req, nil
}

func (h *AssignHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := classify(err)
	fields := []logger.Field{
		logger.String("request_id", RequestIDFromContext(ctx)),
		logger.Int("status", status),
		logger.String("code", code),
		logger.Error(err),
	}
	if status >= statusInternalError {
		h.log.Error(ctx, "assignment request failed", fields...)
	} else {
		h.log.Warn(ctx, "assignment request rejected", fields...)
	}
	writeError(w, status, code, err)
}

func failResult(res *types.BulkResult, err error) {
	status, code := classify(err)
	res.Status = status
	res.Error = &types.ErrorResponse{Code: code, Message: err.Error()}
}
