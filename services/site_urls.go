package services

import (
	"fmt"
	"strings"

	"github.com/ridgeline-labs/site-backend/config"
)

// GetBaseURL retrieves the public site URL from SITE_BASE_URL, falling back
// to BASE_URL.
func GetBaseURL(cfg map[string]string) string {
	if baseURL := config.GetString(cfg, "SITE_BASE_URL", ""); baseURL != "" {
		return baseURL
	}
	return config.GetString(cfg, "BASE_URL", "")
}

// BuildProjectURL constructs a project page URL from base URL and slug
// Returns an empty string when either is missing.
func BuildProjectURL(baseURL, slug string) string {
	if baseURL == "" || slug == "" {
		return ""
	}
	return fmt.Sprintf("%s/projects/%s", strings.TrimSuffix(baseURL, "/"), slug)
}

// BuildAdminLeadsURL links to the admin leads view filtered to one project
// when slug is set.
func BuildAdminLeadsURL(baseURL, slug string) string {
	if baseURL == "" {
		return ""
	}
	u := strings.TrimSuffix(baseURL, "/") + "/admin/leads"
	if slug != "" {
		u += "?project=" + slug
	}
	return u
}
