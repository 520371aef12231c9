// Package dto defines the JSON request and response shapes of the HTTP API.
package dto

import (
	"quintastock/internal/core/id"
)

// ListResponse wraps any list payload together with its item count.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// IDResponse is the body returned by create operations.
type IDResponse struct {
	ID string `json:"id"`
}

func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse is the body for operations that return no data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse carries a machine-readable code alongside the message.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
