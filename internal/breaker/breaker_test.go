package breaker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Merhaba"))
	}))
	defer server.Close()

	client := New("test", nil)
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "Merhaba" {
		t.Errorf("body = %q, want %q", string(body), "Merhaba")
	}
}

func TestClientGet_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New("test", nil)
	_, err := client.Get(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", statusErr.StatusCode)
	}
}

func TestClientGet_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New("test", nil)
	for i := 0; i < 3; i++ {
		if _, err := client.Get(context.Background(), server.URL); err == nil {
			t.Fatal("expected error")
		}
	}

	if client.State() != "open" {
		t.Errorf("State() = %s, want open", client.State())
	}

	// An open breaker rejects without touching the server
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected breaker error")
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
}
