package api

import echo "github.com/labstack/echo/v5"

// extractUser extracts the caller's identity from the oauth2-proxy
// headers that spec.md treats as the external authentication
// collaborator's responsibility. Priority: X-Forwarded-User >
// X-Forwarded-Email, grounded on the teacher's extractAuthor helper.
func extractUser(c *echo.Context) string {
	if user := c.Request().Header.Get("X-Forwarded-User"); user != "" {
		return user
	}
	if email := c.Request().Header.Get("X-Forwarded-Email"); email != "" {
		return email
	}
	return ""
}
