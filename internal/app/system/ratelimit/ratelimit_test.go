package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over the limit should be denied")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("a different key must have its own window")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 20*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("an expired window should reset the count")
	}
}

func TestLimiter_Remaining(t *testing.T) {
	l := New(2, time.Minute)

	if got := l.Remaining("k"); got != 2 {
		t.Errorf("fresh key should have 2 remaining, got %d", got)
	}
	l.Allow("k")
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("expected 1 remaining, got %d", got)
	}
	l.Allow("k")
	l.Allow("k")
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("exhausted key should have 0 remaining, got %d", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("limit should be hit")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("reset key should be allowed again")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded-for first entry", "203.0.113.9, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.9"},
		{"real-ip fallback", "", "203.0.113.7", "10.0.0.2:1234", "203.0.113.7"},
		{"remote addr strips port", "", "", "198.51.100.4:5678", "198.51.100.4"},
		{"remote addr without port", "", "", "198.51.100.4", "198.51.100.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
