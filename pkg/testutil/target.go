package testutil

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/valyala/fasthttp"
)

// Target simulates the application's /xas/ endpoint.
type Target struct {
	// SessionStatus overrides the get_session_data status when non-zero.
	SessionStatus int
	Token         string
	// SessionCookie is issued as XASSESSIONID when non-empty.
	SessionCookie string
	// Entities is the metadata list, in order.
	Entities []string
	// Objects maps an entity to the JSON array returned as its objects.
	Objects map[string]string
	// Failing maps an entity to the status returned instead of objects.
	Failing    map[string]int
	Microflows map[string]string

	mu       sync.Mutex
	requests []Request
}

// Request is a call observed by the Target.
type Request struct {
	Action string
	XPath  string
	Cookie string
	Token  string
}

// Requests returns the calls received so far.
func (tg *Target) Requests() []Request {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return append([]Request(nil), tg.requests...)
}

// Handle answers one API call.
func (tg *Target) Handle(ctx *fasthttp.RequestCtx) {
	var body struct {
		Action string `json:"action"`
		Params struct {
			XPath string `json:"xpath"`
		} `json:"params"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	tg.mu.Lock()
	tg.requests = append(tg.requests, Request{
		Action: body.Action,
		XPath:  body.Params.XPath,
		Cookie: string(ctx.Request.Header.Peek("Cookie")),
		Token:  string(ctx.Request.Header.Peek("X-Csrf-Token")),
	})
	tg.mu.Unlock()

	ctx.SetContentType("application/json")
	switch body.Action {
	case "get_session_data":
		tg.sessionData(ctx)
	case "retrieve_by_xpath":
		entity := strings.TrimPrefix(body.Params.XPath, "//")
		if status, ok := tg.Failing[entity]; ok {
			ctx.SetStatusCode(status)
			return
		}
		objects, ok := tg.Objects[entity]
		if !ok {
			objects = "[]"
		}
		ctx.SetBodyString(`{"objects": ` + objects + `}`)
	default:
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
	}
}

func (tg *Target) sessionData(ctx *fasthttp.RequestCtx) {
	if tg.SessionStatus != 0 {
		ctx.SetStatusCode(tg.SessionStatus)
		return
	}
	if tg.SessionCookie != "" {
		var c fasthttp.Cookie
		c.SetKey("XASSESSIONID")
		c.SetValue(tg.SessionCookie)
		c.SetPath("/")
		ctx.Response.Header.SetCookie(&c)
	}

	metadata := make([]map[string]string, len(tg.Entities))
	for i, entity := range tg.Entities {
		metadata[i] = map[string]string{"objectType": entity}
	}
	payload := map[string]interface{}{"metadata": metadata}
	if tg.Token != "" {
		payload["csrftoken"] = tg.Token
	}
	if tg.Microflows != nil {
		payload["microflows"] = tg.Microflows
	}
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
