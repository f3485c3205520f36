// Package xas describes the JSON client API exposed by the target
// application under its /xas/ path.
package xas

import (
	"strings"

	"xasscan/pkg/core"
)

const (
	ActionGetSessionData  = "get_session_data"
	ActionRetrieveByXPath = "retrieve_by_xpath"

	HeaderCSRFToken   = "X-Csrf-Token"
	HeaderCookie      = "Cookie"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	endpointPath = "/xas"
)

// Request is the body of every API call.
type Request struct {
	Action string      `json:"action"`
	Params interface{} `json:"params"`
}

// XPathParams selects objects of one entity type.
type XPathParams struct {
	XPath  string   `json:"xpath"`
	Schema struct{} `json:"schema"`
	Count  bool     `json:"count"`
}

// SessionDataRequest asks for the session bootstrap payload.
func SessionDataRequest() Request {
	return Request{Action: ActionGetSessionData, Params: struct{}{}}
}

// RetrieveRequest asks for every instance of entity, as full objects.
func RetrieveRequest(entity string) Request {
	return Request{
		Action: ActionRetrieveByXPath,
		Params: XPathParams{XPath: "//" + entity},
	}
}

// Headers returns the request headers for a call. Empty cookie and token
// values are omitted.
func Headers(cookie, csrfToken string) map[string]string {
	headers := map[string]string{HeaderContentType: ContentTypeJSON}
	if cookie != "" {
		headers[HeaderCookie] = cookie
	}
	if csrfToken != "" {
		headers[HeaderCSRFToken] = csrfToken
	}
	return headers
}

// SessionHeaders returns the headers for a call made within session.
func SessionHeaders(session *core.Session) map[string]string {
	cookie := ""
	if session.Cookies != nil {
		cookie = session.Cookies.Header()
	}
	return Headers(cookie, session.CSRFToken)
}

// NormalizeURL makes base point at the API endpoint: trailing slashes are
// dropped and "/xas/" is appended unless the path already ends in /xas.
func NormalizeURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(base, endpointPath) {
		return base + "/"
	}
	return base + endpointPath + "/"
}
