// Package httputil provides shared HTTP plumbing for the honeypot's
// outbound calls: LLM completions and result callbacks. All clients share
// one pooled transport so repeated calls reuse TCP connections.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize caps how much of an upstream response body is read.
// LLM replies are small; anything near this limit is a misbehaving upstream.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	llmClient      *http.Client
	callbackClient *http.Client
	clientOnce     sync.Once
)

func initClients() {
	// LLM completions can take a while, above all when the provider queues
	// requests. Callbacks hit a plain webhook and should fail fast so the
	// retry schedule stays bounded.
	llmClient = &http.Client{
		Timeout:   60 * time.Second,
		Transport: sharedTransport,
	}
	callbackClient = &http.Client{
		Timeout:   10 * time.Second,
		Transport: sharedTransport,
	}
}

// LLMClient returns the shared client for chat-completion requests (60s).
func LLMClient() *http.Client {
	clientOnce.Do(initClients)
	return llmClient
}

// CallbackClient returns the shared client for result callbacks (10s).
func CallbackClient() *http.Client {
	clientOnce.Do(initClients)
	return callbackClient
}

// NewClient returns a client with a custom timeout on the shared transport,
// for callers whose timeout is configured rather than fixed.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}

// ReadResponseBody reads a response body with a size limit so a bad
// upstream cannot exhaust memory.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadErrorBody reads a response body for error reporting with a small limit.
func ReadErrorBody(r io.Reader) ([]byte, error) {
	const maxErrorSize = 1 * 1024 * 1024
	return io.ReadAll(io.LimitReader(r, maxErrorSize))
}

// DrainAndClose drains and closes a response body so the underlying
// connection returns to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
