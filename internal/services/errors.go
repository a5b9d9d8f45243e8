package services

import "fmt"

// ConfigurationError means required server configuration is missing.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// NetworkError means no response was obtained from the completion API.
type NetworkError struct{ Message string }

func (e *NetworkError) Error() string { return e.Message }

// UpstreamError is a non-success response from the completion API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API returned %d: %s", e.Status, e.Message)
}

// ResponseFormatError means the completion API body could not be parsed.
type ResponseFormatError struct{ Message string }

func (e *ResponseFormatError) Error() string { return e.Message }
