package runtime

import (
	"fmt"
	"net/url"
	"strings"
)

// ActionParam is the query parameter that carries the action text.
const ActionParam = "action"

// APIPrefix is the path under which the JSON API is mounted.
const APIPrefix = "/api"

// ActionURL builds the navigation target for an action of an application.
// Spaces are encoded as %20 so the URL survives frontends that treat '+'
// literally.
func ActionURL(appID, action string) string {
	return "/" + url.PathEscape(appID) + "?" + ActionParam + "=" + EscapeAction(action)
}

// EscapeAction percent-encodes action text for use in a query string.
func EscapeAction(action string) string {
	return strings.ReplaceAll(url.QueryEscape(action), "+", "%20")
}

// ParseAction is the inverse of ActionURL.
func ParseAction(raw string) (appID, action string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid action url %q: %w", raw, err)
	}
	appID = strings.TrimPrefix(u.Path, "/")
	if appID == "" {
		return "", "", fmt.Errorf("action url %q has no application", raw)
	}
	return appID, u.Query().Get(ActionParam), nil
}

// SubmitURL is the endpoint a form of appID posts to.
func SubmitURL(appID string) string {
	return APIPrefix + "/" + url.PathEscape(appID)
}
