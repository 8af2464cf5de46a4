package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrStorageUnavailable = errors.New("storage not configured")
)

// NewDatabaseError surfaces a storage failure as a 500 whose message is the
// driver's own error text. Missing rows are the one case mapped to 404.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("failed to %s %s", operation, entity)

	if cause == nil {
		return &ApiErr{
			StatusCode: http.StatusInternalServerError,
			err:        ErrDatabaseQuery,
			Details:    details,
		}
	}

	if strings.Contains(cause.Error(), "record not found") {
		return &ApiErr{
			StatusCode: http.StatusNotFound,
			err:        fmt.Errorf("%s %w", entity, ErrNotFound),
			Details:    details,
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        cause,
		Details:    details,
		Cause:      cause,
	}
}

func NewStorageUnavailableError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageUnavailable,
		Details:    fmt.Sprintf("%s storage is not configured", entity),
	}
}
