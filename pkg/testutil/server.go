// Package testutil provides an in-process fake of the target application
// for tests.
package testutil

import (
	stdnet "net"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"xasscan/pkg/core"
	"xasscan/pkg/net"
)

// TargetURL is the base URL tests send requests to. The host never
// resolves; connections go to the in-memory listener.
const TargetURL = "http://target.test/xas/"

// Serve serves handler on an in-memory listener and returns a dial
// function connected to it. The server stops when the test ends.
func Serve(t testing.TB, handler fasthttp.RequestHandler) fasthttp.DialFunc {
	t.Helper()

	listener := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go server.Serve(listener) //nolint:errcheck
	t.Cleanup(func() { listener.Close() })

	return func(string) (stdnet.Conn, error) { return listener.Dial() }
}

// NewServer serves handler like Serve and returns a client connected to
// it.
func NewServer(t testing.TB, handler fasthttp.RequestHandler) *net.Client {
	t.Helper()

	client, err := net.NewClient(net.Options{Dial: Serve(t, handler)})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// TransportFunc adapts a function to core.Transport.
type TransportFunc func(url string, headers map[string]string, payload interface{}) (*core.Response, error)

func (f TransportFunc) PostJSON(url string, headers map[string]string, payload interface{}) (*core.Response, error) {
	return f(url, headers, payload)
}
