package api

import (
	"time"
)

// Dependencies are the services behind the routes. Projects and Media are
// nil when their storage is not configured; their routes then answer 500.
type Dependencies struct {
	Projects     ProjectService
	Leads        LeadService
	Media        MediaUploader
	Content      ContentLibrary
	StorageReady bool
	EmailReady   bool
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time, maxUpload int64) *routeHandlers {
	return &routeHandlers{
		healthHandler:  newHealthHandler(startupTime, deps.StorageReady, deps.EmailReady),
		projectHandler: newProjectHandler(deps.Projects),
		leadHandler:    newLeadHandler(deps.Leads),
		contentHandler: newContentHandler(deps.Content),
		mediaHandler:   newMediaHandler(deps.Media, maxUpload),
	}
}
