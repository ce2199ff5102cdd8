// Package apierror provides the standardized error envelope for the
// agent's local API. Every 4xx/5xx body goes through this package so the
// UI can rely on one shape, and internals (store paths, stack traces)
// never leak into a response.
package apierror

// APIError is the canonical error body. Fields is only populated for
// validation failures.
type APIError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func NewValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "Error de validacion", Fields: fields}
}
