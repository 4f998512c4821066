package webclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raysh454/kanshi/internal/logging"
	"github.com/raysh454/kanshi/internal/webclient"
)

// TestNewNetHTTPClient_Construct verifies construction with the default client
func TestNewNetHTTPClient_Construct(t *testing.T) {
	t.Parallel()

	client, err := webclient.NewNetHTTPClient(0, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	if client == nil {
		t.Fatal("NewNetHTTPClient returned nil client")
	}
	defer client.Close()
}

// TestNetHTTPClient_Get verifies a simple GET round trip
func TestNetHTTPClient_Get(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Probe", "yes")
		w.Write([]byte("hello"))
	}))
	t.Cleanup(srv.Close)

	client, err := webclient.NewNetHTTPClient(0, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	resp, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want hello", resp.Body)
	}
	if resp.Headers.Get("X-Probe") != "yes" {
		t.Errorf("response headers not captured")
	}
	if resp.FetchedAt.IsZero() {
		t.Errorf("FetchedAt not set")
	}
}

// TestNetHTTPClient_HeadersForwarded verifies request headers reach the server
func TestNetHTTPClient_HeadersForwarded(t *testing.T) {
	t.Parallel()

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Custom")
	}))
	t.Cleanup(srv.Close)

	client, err := webclient.NewNetHTTPClient(0, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	headers := http.Header{}
	headers.Set("X-Custom", "value")
	_, err = client.Do(context.Background(), &webclient.Request{
		URL:     srv.URL,
		Headers: headers,
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "value" {
		t.Errorf("header not forwarded, got %q", got)
	}
}

// TestNetHTTPClient_ContextTimeout verifies a cancelled context aborts the fetch
func TestNetHTTPClient_ContextTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	client, err := webclient.NewNetHTTPClient(0, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

// TestNetHTTPClient_NilRequest verifies nil requests are rejected
func TestNetHTTPClient_NilRequest(t *testing.T) {
	t.Parallel()

	client, err := webclient.NewNetHTTPClient(0, logging.Nop(), nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient returned error: %v", err)
	}
	defer client.Close()

	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}
