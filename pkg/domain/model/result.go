package model

import (
	"errors"

	"github.com/m-mizutani/actsync/pkg/domain/types"
)

// UpsertResult is the catalog's answer to an upsert
type UpsertResult struct {
	Created bool `json:"created"`
	Updated bool `json:"updated"`
}

// UploadResult is the outcome of one processed candidate
type UploadResult struct {
	Success           bool            `json:"success"`
	Action            types.ActionKey `json:"action"`
	Created           *bool           `json:"created,omitempty"`
	Updated           *bool           `json:"updated,omitempty"`
	SkippedNotUpdated bool            `json:"skippedNotUpdated,omitempty"`
	Error             string          `json:"error,omitempty"`
	StatusCode        int             `json:"statusCode,omitempty"`
	CorrelationID     string          `json:"correlationId,omitempty"`
}

// NewUploadedResult records a submitted action
func NewUploadedResult(key types.ActionKey, resp *UpsertResult) *UploadResult {
	created, updated := resp.Created, resp.Updated
	return &UploadResult{
		Success: true,
		Action:  key,
		Created: &created,
		Updated: &updated,
	}
}

// NewSkippedResult records an action left out because its upstream
// timestamp did not change
func NewSkippedResult(key types.ActionKey) *UploadResult {
	return &UploadResult{
		Success:           true,
		Action:            key,
		SkippedNotUpdated: true,
	}
}

// NewFailedResult records a failed action with a readable summary of err
func NewFailedResult(key types.ActionKey, err error) *UploadResult {
	result := &UploadResult{
		Success: false,
		Action:  key,
		Error:   err.Error(),
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		result.Error = apiErr.Error()
		result.StatusCode = apiErr.StatusCode
		result.CorrelationID = apiErr.CorrelationID
	}
	if result.Error == "" {
		result.Error = "unknown error"
	}

	return result
}

// Outcome labels a processed action
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Outcome classifies the result
func (r *UploadResult) Outcome() Outcome {
	switch {
	case !r.Success:
		return OutcomeFailed
	case r.SkippedNotUpdated:
		return OutcomeSkipped
	case r.Created != nil && *r.Created:
		return OutcomeCreated
	case r.Updated != nil && *r.Updated:
		return OutcomeUpdated
	default:
		return OutcomeUnchanged
	}
}

// RunStatistics summarizes one sync run
type RunStatistics struct {
	Existing          int `json:"existing"`
	Uploaded          int `json:"uploaded"`
	SkippedNotUpdated int `json:"skippedNotUpdated"`
	Created           int `json:"created"`
	Updated           int `json:"updated"`
	Failed            int `json:"failed"`
	Dropped           int `json:"dropped"`
}

// SyncReport is the output of a sync run. Results follow candidate order.
type SyncReport struct {
	Results []*UploadResult `json:"results"`
	Stats   RunStatistics   `json:"stats"`
}
