package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	startupTime time.Time
	storage     bool
	email       bool
}

func newHealthHandler(startupTime time.Time, storage, email bool) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		startupTime: startupTime,
		storage:     storage,
		email:       email,
	}
}

// HealthResponse reports liveness and which integrations are configured
type HealthResponse struct {
	Status        string    `json:"status" example:"ok"`
	StartedAt     time.Time `json:"startedAt"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	Storage       bool      `json:"storage"`
	Email         bool      `json:"email"`
}

// health reports service liveness
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is up"
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if !h.storage {
			status = "degraded"
		}
		h.responder.WriteJSON(w, HealthResponse{
			Status:        status,
			StartedAt:     h.startupTime.UTC(),
			UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
			Storage:       h.storage,
			Email:         h.email,
		})
	}
}
