package types

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/assignment_request.json
var assignmentRequestSchema []byte

var loadRequestSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(assignmentRequestSchema))
})

// ValidateAssignmentRequest checks a raw request body against the embedded
// JSON schema and reports every violation in one error.
func ValidateAssignmentRequest(body []byte) error {
	schema, err := loadRequestSchema()
	if err != nil {
		return fmt.Errorf("load request schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed json: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return errors.New(strings.Join(msgs, "; "))
}

// DecodeAssignmentRequest validates body against the schema and decodes it.
func DecodeAssignmentRequest(body []byte) (AssignmentRequest, error) {
	var req AssignmentRequest
	if err := ValidateAssignmentRequest(body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	return req, nil
}
