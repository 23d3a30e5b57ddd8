package httputil

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestClientSingletons(t *testing.T) {
	if LLMClient() != LLMClient() {
		t.Error("LLMClient() should return the same instance on repeated calls")
	}
	if CallbackClient() != CallbackClient() {
		t.Error("CallbackClient() should return the same instance on repeated calls")
	}
	if LLMClient() == CallbackClient() {
		t.Error("LLM and callback clients should be distinct")
	}
}

func TestClientTimeouts(t *testing.T) {
	if got := LLMClient().Timeout; got != 60*time.Second {
		t.Errorf("LLMClient timeout = %v, want 60s", got)
	}
	if got := CallbackClient().Timeout; got != 10*time.Second {
		t.Errorf("CallbackClient timeout = %v, want 10s", got)
	}
}

func TestClientsShareTransport(t *testing.T) {
	if LLMClient().Transport != CallbackClient().Transport {
		t.Error("clients should share one pooled transport")
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(3 * time.Second)
	if c.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", c.Timeout)
	}
	if c.Transport != LLMClient().Transport {
		t.Error("custom-timeout client should reuse the shared transport")
	}
}

func TestReadResponseBody(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxSize int64
		wantLen int
	}{
		{
			name:    "normal read",
			input:   "hello world",
			maxSize: 1024,
			wantLen: 11,
		},
		{
			name:    "truncated read",
			input:   strings.Repeat("x", 1000),
			maxSize: 100,
			wantLen: 100,
		},
		{
			name:    "default max size",
			input:   "test",
			maxSize: 0,
			wantLen: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.input)
			got, err := ReadResponseBody(r, tt.maxSize)
			if err != nil {
				t.Fatalf("ReadResponseBody() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("ReadResponseBody() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestReadErrorBody(t *testing.T) {
	largeError := strings.Repeat("error details ", 100000) // ~1.4MB
	r := strings.NewReader(largeError)

	got, err := ReadErrorBody(r)
	if err != nil {
		t.Fatalf("ReadErrorBody() error = %v", err)
	}
	if len(got) > 1024*1024 {
		t.Errorf("ReadErrorBody() should truncate to 1MB, got %d bytes", len(got))
	}
}

func TestDrainAndClose(t *testing.T) {
	data := []byte("test data")
	r := &trackingReader{Reader: bytes.NewReader(data)}

	closer := io.NopCloser(r)
	DrainAndClose(closer)

	if !r.fullyRead {
		t.Error("DrainAndClose should fully drain the body")
	}
}

type trackingReader struct {
	io.Reader
	fullyRead bool
}

func (r *trackingReader) Read(p []byte) (n int, err error) {
	n, err = r.Reader.Read(p)
	if err == io.EOF {
		r.fullyRead = true
	}
	return
}

func TestDrainAndCloseNil(t *testing.T) {
	// Should not panic
	DrainAndClose(nil)
}
