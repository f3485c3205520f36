package session

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/valyala/fasthttp"

	"xasscan/pkg/core"
	"xasscan/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setCookie(ctx *fasthttp.RequestCtx, name, value string) {
	var c fasthttp.Cookie
	c.SetKey(name)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	ctx.Response.Header.SetCookie(&c)
}

func TestBootstrapScenario(t *testing.T) {
	var gotCookie, gotAction string
	client := testutil.NewServer(t, func(ctx *fasthttp.RequestCtx) {
		gotCookie = string(ctx.Request.Header.Peek("Cookie"))
		gotAction = string(ctx.PostBody())
		setCookie(ctx, "XASSESSIONID", "abc123")
		ctx.SetBodyString(`{"csrftoken": "tok123", "metadata": [{"objectType": "Customer"}, {"objectType": "Order"}]}`)
	})

	session, err := NewBootstrapper(client, discardLogger()).Bootstrap(testutil.TargetURL, "")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if gotCookie != "" {
		t.Errorf("expected no Cookie header without a credential, got %q", gotCookie)
	}
	if gotAction != `{"action":"get_session_data","params":{}}` {
		t.Errorf("request body = %s", gotAction)
	}
	if got := session.Cookies.Header(); got != "XASSESSIONID=abc123" {
		t.Errorf("cookie header = %q, want XASSESSIONID=abc123", got)
	}
	if session.CSRFToken != "tok123" {
		t.Errorf("token = %q, want tok123", session.CSRFToken)
	}
	if !reflect.DeepEqual(session.EntityTypes, []string{"Customer", "Order"}) {
		t.Errorf("entities = %v", session.EntityTypes)
	}
	if session.URL != testutil.TargetURL {
		t.Errorf("URL = %q", session.URL)
	}
}

func TestBootstrapSendsNormalizedCookie(t *testing.T) {
	var gotCookie string
	client := testutil.NewServer(t, func(ctx *fasthttp.RequestCtx) {
		gotCookie = string(ctx.Request.Header.Peek("Cookie"))
		setCookie(ctx, "XASID", "0.5")
		ctx.SetBodyString(`{"csrftoken": "t"}`)
	})

	session, err := NewBootstrapper(client, discardLogger()).Bootstrap(testutil.TargetURL, "abc123")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if gotCookie != "XASSESSIONID=abc123" {
		t.Errorf("sent cookie = %q, want XASSESSIONID=abc123", gotCookie)
	}
	if got := session.Cookies.Header(); got != "XASSESSIONID=abc123; XASID=0.5" {
		t.Errorf("merged cookie = %q", got)
	}
	if len(session.EntityTypes) != 0 {
		t.Errorf("expected no entities, got %v", session.EntityTypes)
	}
}

func TestBootstrapServerCookieWins(t *testing.T) {
	client := testutil.NewServer(t, func(ctx *fasthttp.RequestCtx) {
		setCookie(ctx, "XASSESSIONID", "fresh")
		ctx.SetBodyString(`{"csrftoken": "t"}`)
	})

	session, err := NewBootstrapper(client, discardLogger()).Bootstrap(testutil.TargetURL, "XASSESSIONID=stale")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if got := session.Cookies.Header(); got != "XASSESSIONID=fresh" {
		t.Errorf("merged cookie = %q, want XASSESSIONID=fresh", got)
	}
}

func TestBootstrapFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", 401, ``, func(err error) bool { return errors.Is(err, ErrAuthRequired) }},
		{"server error", 500, ``, func(err error) bool {
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.Code == 500
		}},
		{"redirect", 302, ``, func(err error) bool {
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.Code == 302
		}},
		{"no token", 200, `{"metadata": []}`, func(err error) bool { return errors.Is(err, ErrTokenMissing) }},
		{"empty token", 200, `{"csrftoken": ""}`, func(err error) bool { return errors.Is(err, ErrTokenMissing) }},
		{"numeric token", 200, `{"csrftoken": 12}`, func(err error) bool { return errors.Is(err, ErrTokenMissing) }},
		{"not json", 200, `<html>login</html>`, func(err error) bool {
			return err != nil && !errors.Is(err, ErrTokenMissing)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutil.NewServer(t, func(ctx *fasthttp.RequestCtx) {
				ctx.SetStatusCode(tt.status)
				ctx.SetBodyString(tt.body)
			})

			session, err := NewBootstrapper(client, discardLogger()).Bootstrap(testutil.TargetURL, "")
			if session != nil {
				t.Errorf("expected nil session, got %+v", session)
			}
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBootstrapTransportError(t *testing.T) {
	calls := 0
	transport := testutil.TransportFunc(func(string, map[string]string, interface{}) (*core.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})

	_, err := NewBootstrapper(transport, discardLogger()).Bootstrap(testutil.TargetURL, "")
	if err == nil || err.Error() != "session request: connection refused" {
		t.Errorf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestParseSessionDataTolerance(t *testing.T) {
	body := `{"csrftoken": "t", "metadata": [
		{"objectType": "A"},
		{"name": "no type"},
		"junk",
		42,
		{"objectType": 7},
		{"objectType": "B"},
		{"objectType": "A"}
	]}`

	token, entities, err := ParseSessionData([]byte(body))
	if err != nil {
		t.Fatalf("ParseSessionData: %v", err)
	}
	if token != "t" {
		t.Errorf("token = %q", token)
	}
	if !reflect.DeepEqual(entities, []string{"A", "B"}) {
		t.Errorf("entities = %v, want [A B]", entities)
	}

	_, entities, err = ParseSessionData([]byte(`{"csrftoken": "t", "metadata": "oops"}`))
	if err != nil || len(entities) != 0 {
		t.Errorf("non-array metadata: entities=%v err=%v", entities, err)
	}
}
