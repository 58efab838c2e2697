package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeLimiter struct {
	counts map[string]int64
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int64)}
}

func (f *fakeLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func sendWithUser(handler http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/topup", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	if userID != "" {
		req = req.WithContext(WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitBlocksUserOverLimit(t *testing.T) {
	policy := NewRateLimitPolicy("wallet-topup", time.Minute, 2, 0)
	handler := RateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	userID := uuid.NewString()

	for i := 0; i < 2; i++ {
		if rec := sendWithUser(handler, userID); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := sendWithUser(handler, userID); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the user limit, got %d", rec.Code)
	}

	// A different user has a fresh window.
	if rec := sendWithUser(handler, uuid.NewString()); rec.Code != http.StatusOK {
		t.Fatalf("other user should not be throttled, got %d", rec.Code)
	}
}

func TestRateLimitBlocksIPOverLimit(t *testing.T) {
	policy := NewRateLimitPolicy("wallet-topup", time.Minute, 0, 1)
	handler := RateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if rec := sendWithUser(handler, ""); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := sendWithUser(handler, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the ip limit, got %d", rec.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewRateLimitPolicy("wallet-topup", 0, 10, 10)
	limiter := newFakeLimiter()
	handler := RateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		if rec := sendWithUser(handler, uuid.NewString()); rec.Code != http.StatusOK {
			t.Fatalf("disabled policy must not throttle, got %d", rec.Code)
		}
	}
	if len(limiter.counts) != 0 {
		t.Fatalf("disabled policy must not touch the store, got %d scopes", len(limiter.counts))
	}
}

func TestRateLimitNilStorePassesThrough(t *testing.T) {
	policy := NewRateLimitPolicy("wallet-topup", time.Minute, 1, 1)
	handler := RateLimit(policy, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		if rec := sendWithUser(handler, uuid.NewString()); rec.Code != http.StatusOK {
			t.Fatalf("nil store must not throttle, got %d", rec.Code)
		}
	}
}
