package httpclient

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// Client wraps *http.Client for outbound adapters. The Telegram API
// client takes it over so timeouts are set in one place.
type Client struct {
	HTTP *http.Client
}

// New creates a Client with a sane timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewWithTransport allows injecting a Transport (e.g. for tests).
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	c := New(timeout)
	if tr != nil {
		c.HTTP.Transport = tr
	}
	return c
}
