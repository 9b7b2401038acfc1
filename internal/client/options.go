package client

import (
	"net/http"
	"net/http/httptest"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for network calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHandler routes every call to h in-process instead of over the network.
// The server-rendered pages use it to call the proxy they are mounted next to.
func WithHandler(h http.Handler) Option {
	return func(c *Client) {
		if h != nil {
			c.http = &http.Client{Transport: handlerTransport{h: h}}
		}
	}
}

type handlerTransport struct {
	h http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	in := req.Clone(req.Context())
	in.RequestURI = req.URL.RequestURI()
	if in.Body == nil {
		in.Body = http.NoBody
	}
	t.h.ServeHTTP(rec, in)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
