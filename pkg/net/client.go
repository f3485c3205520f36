package net

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"

	"xasscan/pkg/core"
)

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	// Proxy is an http://, https:// or socks5:// URL. A bare host:port is
	// treated as an HTTP proxy.
	Proxy string
	// Dial replaces the default dialer (and Proxy) when set.
	Dial fasthttp.DialFunc
}

// Client is a wrapper around fasthttp.Client that speaks JSON to the
// target. Certificate verification is disabled.
type Client struct {
	client *fasthttp.Client
}

// NewClient creates a client for the target application.
func NewClient(opts Options) (*Client, error) {
	dial := opts.Dial
	if dial == nil && opts.Proxy != "" {
		var err error
		dial, err = proxyDialer(opts.Proxy, opts.Timeout)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:              opts.Timeout,
			WriteTimeout:             opts.Timeout,
			NoDefaultUserAgentHeader: true,
			TLSConfig:                &tls.Config{InsecureSkipVerify: true},
			Dial:                     dial,
		},
	}, nil
}

// PostJSON marshals payload, POSTs it to target and returns the status,
// the decompressed body and every Set-Cookie value of the response.
// Exactly one attempt is made.
func (c *Client) PostJSON(target string, headers map[string]string, payload interface{}) (*core.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip, br")
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	req.SetBodyRaw(body)

	if err := c.client.Do(req, resp); err != nil {
		return nil, err
	}

	respBody, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	// Copy body because ReleaseResponse recycles it
	result := &core.Response{
		Status: resp.StatusCode(),
		Body:   append([]byte(nil), respBody...),
	}
	resp.Header.VisitAllCookie(func(_, value []byte) {
		result.SetCookies = append(result.SetCookies, string(value))
	})
	return result, nil
}

func proxyDialer(proxy string, timeout time.Duration) (fasthttp.DialFunc, error) {
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q", proxy)
	}

	switch u.Scheme {
	case "http", "https":
		addr := u.Host
		if u.User != nil {
			addr = u.User.String() + "@" + u.Host
		}
		return fasthttpproxy.FasthttpHTTPDialerTimeout(addr, timeout), nil
	case "socks5", "socks5h":
		return fasthttpproxy.FasthttpSocksDialer(proxy), nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
}
