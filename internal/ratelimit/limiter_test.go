package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllow_WindowLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxPerWindow: 3, Window: time.Minute, Clock: clock})
	defer limiter.Close()

	ip := "203.0.113.10"
	for i := 0; i < 3; i++ {
		result := limiter.Allow(ip)
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if result.Remaining != 2-i {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 2-i, result.Remaining)
		}
	}

	clock.Advance(20 * time.Second)
	result := limiter.Allow(ip)
	if result.Allowed {
		t.Fatal("fourth request within the window should be blocked")
	}
	if result.RetryAfter != 40*time.Second {
		t.Errorf("expected RetryAfter 40s, got %v", result.RetryAfter)
	}

	clock.Advance(40 * time.Second)
	if result := limiter.Allow(ip); !result.Allowed {
		t.Fatal("request after the window should be allowed")
	}
}

func TestAllow_PerIP(t *testing.T) {
	limiter := New(&Config{MaxPerWindow: 1, Window: time.Minute, Clock: newMockClock()})
	defer limiter.Close()

	if !limiter.Allow("203.0.113.1").Allowed {
		t.Fatal("first IP should be allowed")
	}
	if limiter.Allow("203.0.113.1").Allowed {
		t.Fatal("first IP should be blocked on its second request")
	}
	if !limiter.Allow("203.0.113.2").Allowed {
		t.Fatal("second IP should have its own budget")
	}
}

func TestAllow_ZeroDisables(t *testing.T) {
	limiter := New(&Config{MaxPerWindow: 0, Clock: newMockClock()})
	defer limiter.Close()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("203.0.113.1").Allowed {
			t.Fatalf("request %d should be allowed when limiting is disabled", i+1)
		}
	}

	var nilLimiter *Limiter
	if !nilLimiter.Allow("203.0.113.1").Allowed {
		t.Fatal("nil limiter should allow everything")
	}
}

func TestCleanup_DropsExpiredEntries(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{MaxPerWindow: 1, Window: time.Minute, Clock: clock})
	defer limiter.Close()

	limiter.Allow("203.0.113.1")
	clock.Advance(2 * time.Minute)
	limiter.cleanup()

	limiter.mu.Lock()
	remaining := len(limiter.entries)
	limiter.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected expired entries to be removed, %d left", remaining)
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "203.0.113.7",
			expected:   "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("POST", "/api/v1/extract", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			r.RemoteAddr = tt.remoteAddr

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}
