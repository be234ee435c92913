// Package dto holds the request/response shapes for the HTTP surface,
// kept separate from internal/entity so wire-format concerns (JSON tags,
// omitempty) never leak into the domain model.
package dto

// ErrorResponse is the standard `{title, ...}` error body (§7).
type ErrorResponse struct {
	Error string `json:"title"`
}

// NewErrorResponse builds an ErrorResponse from err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error()}
}
