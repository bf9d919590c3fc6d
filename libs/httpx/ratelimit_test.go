package httpx

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()

	if !rl.allow("c1", now) || !rl.allow("c1", now) {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("c1", now) {
		t.Fatal("third request in the window should be rejected")
	}
	if !rl.allow("c2", now) {
		t.Fatal("separate clients get separate budgets")
	}
	if !rl.allow("c1", now.Add(2*time.Minute)) {
		t.Fatal("window expiry should reset the counter")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "http://example.com", nil)
	req.RemoteAddr = "10.0.0.5:4433"
	if got := clientKey(req); got != "10.0.0.5" {
		t.Fatalf("expected peer host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientKey(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}

func TestMatchOrigin(t *testing.T) {
	allowed := []string{"https://studio.example.com", "*"}
	if got, ok := matchOrigin("https://other.example.com", allowed); !ok || got != "*" {
		t.Fatalf("wildcard should match, got %q %v", got, ok)
	}
	if _, ok := matchOrigin("https://evil.example.com", []string{"https://studio.example.com"}); ok {
		t.Fatal("unlisted origin should not match")
	}
	if got, ok := matchOrigin("https://STUDIO.example.com", []string{"https://studio.example.com"}); !ok || got != "https://STUDIO.example.com" {
		t.Fatalf("origin match should be case-insensitive, got %q %v", got, ok)
	}
}
