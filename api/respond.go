package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/leads"
	"github.com/ridgeline-labs/site-backend/projectstore"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large, truncating")

		w.WriteHeader(http.StatusRequestEntityTooLarge)
		truncated, _ := json.Marshal(map[string]interface{}{
			"error":        "Response too large",
			"status":       "error",
			"maxSizeMB":    maxResponseSize / (1024 * 1024),
			"actualSizeMB": len(jsonData) / (1024 * 1024),
		})
		w.Write(truncated)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteError writes err as {error, status, field?, fields?, details?, cause?}.
// Domain errors are translated first; anything unrecognised becomes a 500
// carrying the error's own message.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	err = translate(err)

	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{
			"error":  err.Error(),
			"status": "error",
		})
		return
	}

	response := map[string]interface{}{
		"error":  apiErr.Message(),
		"status": "error",
	}
	if apiErr.Field != "" {
		response["field"] = apiErr.Field
	}
	if len(apiErr.Fields) > 0 {
		response["fields"] = apiErr.Fields
	}
	if apiErr.Details != "" {
		response["details"] = apiErr.Details
	}
	if apiErr.Cause != nil {
		response["cause"] = apiErr.GetFullError()
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}
	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

func translate(err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}

	var projectErr *projectstore.ValidationError
	if errors.As(err, &projectErr) {
		return errs.NewBadRequestErrorWithField(projectErr.Error(), projectErr.Field, "")
	}

	var leadErr *leads.ValidationError
	if errors.As(err, &leadErr) {
		return errs.NewValidationError(leadErr.Error(), leadErr.Fields)
	}

	switch {
	case errors.Is(err, projectstore.ErrNotFound):
		return errs.NewNotFoundError(err.Error())
	case errors.Is(err, leads.ErrNotFound):
		return errs.NewNotFoundError(err.Error())
	}
	return err
}
