package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler  healthHandler
	projectHandler projectHandler
	leadHandler    leadHandler
	contentHandler contentHandler
	mediaHandler   mediaHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"email must be a valid email address"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"slug"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
	Cause   string            `json:"cause,omitempty" example:"Underlying error cause"`
}
