package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	if client.Timeout != 0 {
		t.Errorf("Timeout = %v, want none", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *http.Transport", client.Transport)
	}
	if transport.MaxIdleConnsPerHost != 8 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 8", transport.MaxIdleConnsPerHost)
	}
	if transport.TLSHandshakeTimeout != 5*time.Second {
		t.Errorf("TLSHandshakeTimeout = %v, want 5s", transport.TLSHandshakeTimeout)
	}
}

func TestNewClient_Overrides(t *testing.T) {
	client := NewClient(ClientConfig{Timeout: 2 * time.Second, MaxIdleConnsPerHost: 1})

	if client.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", client.Timeout)
	}
	if got := client.Transport.(*http.Transport).MaxIdleConnsPerHost; got != 1 {
		t.Errorf("MaxIdleConnsPerHost = %d, want 1", got)
	}
}

func TestNewClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewClient(ClientConfig{Timeout: 50 * time.Millisecond})
	resp, err := client.Get(srv.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_NoDefaultDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(DefaultClientConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequestWithContext() error = %v", err)
	}
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
		t.Fatal("expected the context deadline to cancel the request")
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() without a deadline error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
