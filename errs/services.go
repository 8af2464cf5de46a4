package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
)

// Dependency Errors
var (
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", configName),
		Cause:      cause,
		Field:      "config",
	}
}

func NewServiceUnreachableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrServiceUnreachable,
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}

func NewRateLimitError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimitExceeded,
		Details:    "Too many submissions, try again later",
	}
}
