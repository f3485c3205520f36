package core

// Response is the part of an HTTP response the scanner looks at.
type Response struct {
	Status     int
	Body       []byte
	SetCookies []string // raw Set-Cookie header values, in order
}

// Transport sends one JSON request to the target. Implementations must
// not retry.
type Transport interface {
	PostJSON(url string, headers map[string]string, payload interface{}) (*Response, error)
}
