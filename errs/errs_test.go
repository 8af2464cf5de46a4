package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseErrorPassesDriverMessageThrough(t *testing.T) {
	cause := errors.New(`duplicate key value violates unique constraint "leads_pkey"`)
	err := NewDatabaseError("save", "lead", cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, cause.Error(), err.Message())
	assert.Equal(t, "failed to save lead", err.Details)
	assert.ErrorIs(t, err, cause)
}

func TestDatabaseErrorRecordNotFound(t *testing.T) {
	err := NewDatabaseError("find", "project", errors.New("record not found"))

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSentinelsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"storage unavailable", NewStorageUnavailableError("lead"), ErrStorageUnavailable},
		{"config missing", NewConfigError("ADMIN_TOKEN", nil), ErrConfigMissing},
		{"missing token", NewMissingTokenError(), ErrMissingToken},
		{"invalid token", NewInvalidTokenError(), ErrInvalidToken},
		{"malformed payload", NewMalformedPayloadError("lead", nil), ErrMalformedPayload},
		{"missing field", NewMissingRequiredFieldError("slug"), ErrMissingRequiredField},
		{"unreachable", NewServiceUnreachableError("resend", nil), ErrServiceUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
	assert.NotErrorIs(t, NewRateLimitError(), ErrConfigMissing)
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	inner := NewInternalErrorWithCause("send failed", errors.New("dial tcp: timeout"))
	outer := NewServiceUnreachableError("resend", inner)

	assert.Equal(t, "service unreachable: resend request failed -> send failed -> dial tcp: timeout", outer.GetFullError())
	assert.Equal(t, http.StatusTooManyRequests, NewRateLimitError().StatusCode)
}
