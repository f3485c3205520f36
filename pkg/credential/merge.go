// Package credential merges the operator-supplied session cookie with the
// cookies the server issues during the handshake.
package credential

import (
	"strings"

	"github.com/valyala/fasthttp"
)

// DefaultCookieName is the session cookie assumed when the supplied
// credential is a bare value with no name.
const DefaultCookieName = "XASSESSIONID"

// cookie attributes that are never cookie names in a Cookie header
var reservedNames = map[string]bool{
	"path": true, "domain": true, "expires": true, "max-age": true,
	"secure": true, "httponly": true, "samesite": true,
	"version": true, "comment": true,
}

// Jar is an ordered cookie set. Names are case-sensitive. Setting an
// existing name replaces the value but keeps its original position.
type Jar struct {
	names  []string
	values map[string]string
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{values: make(map[string]string)}
}

// Set stores value under name.
func (j *Jar) Set(name, value string) {
	if _, ok := j.values[name]; !ok {
		j.names = append(j.names, name)
	}
	j.values[name] = value
}

// Get returns the value stored under name.
func (j *Jar) Get(name string) (string, bool) {
	value, ok := j.values[name]
	return value, ok
}

// Len returns the number of cookies in the jar.
func (j *Jar) Len() int { return len(j.names) }

// Names returns the cookie names in insertion order.
func (j *Jar) Names() []string {
	return append([]string(nil), j.names...)
}

// Header renders the jar as a Cookie header value: name=value pairs
// joined by "; ".
func (j *Jar) Header() string {
	pairs := make([]string, 0, len(j.names))
	for _, name := range j.names {
		pairs = append(pairs, name+"="+j.values[name])
	}
	return strings.Join(pairs, "; ")
}

// LoadHeader adds every cookie of a Cookie-header style string
// ("a=1; b=2") to the jar. Cookie attributes such as Path are skipped.
func (j *Jar) LoadHeader(header string) {
	var h fasthttp.RequestHeader
	h.Set(fasthttp.HeaderCookie, header)
	h.VisitAllCookie(func(key, value []byte) {
		name := string(key)
		if name == "" || reservedNames[strings.ToLower(name)] {
			return
		}
		j.Set(name, string(value))
	})
}

// LoadSetCookie adds the cookie carried by one raw Set-Cookie value.
// Values that do not parse are ignored.
func (j *Jar) LoadSetCookie(raw string) {
	var c fasthttp.Cookie
	if err := c.Parse(raw); err != nil || len(c.Key()) == 0 {
		return
	}
	j.Set(string(c.Key()), string(c.Value()))
}

// Normalize turns a bare credential value into DefaultCookieName=value.
// Credentials that already contain a name=value pair are returned as is.
func Normalize(external string) string {
	external = strings.TrimSpace(external)
	if external == "" || strings.Contains(external, "=") {
		return external
	}
	return DefaultCookieName + "=" + external
}

// Merge builds the credential set for a session. The external credential
// is loaded first and the server cookies second, so a server-issued value
// replaces an external value of the same name. With neither input the
// jar is empty.
func Merge(external string, setCookies []string) *Jar {
	jar := NewJar()
	if normalized := Normalize(external); normalized != "" {
		jar.LoadHeader(normalized)
	}
	for _, raw := range setCookies {
		jar.LoadSetCookie(raw)
	}
	return jar
}
