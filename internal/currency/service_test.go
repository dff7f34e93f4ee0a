package currency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"relocationos/internal/core"
)

func rateHandler(calls *int32, rate float64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		to := r.URL.Query().Get("to")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"amount":1.0,"base":%q,"date":"2026-08-23","rates":{%q:%v}}`,
			r.URL.Query().Get("from"), to, rate)
	})
}

func newTestService(t *testing.T, h http.Handler) (*Service, *int32) {
	t.Helper()
	var calls int32
	if h == nil {
		h = rateHandler(&calls, 0.92)
	} else {
		wrapped := h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			wrapped.ServeHTTP(w, r)
		})
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s := NewService(srv.URL, 2*time.Second)
	return s, &calls
}

func TestExchangeRateSameCurrency(t *testing.T) {
	s, calls := newTestService(t, nil)
	rate, err := s.ExchangeRate(context.Background(), "USD", "USD")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if rate != core.ParityRate {
		t.Fatalf("expected parity 10000, got %d", rate)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("same-currency lookup must not call the API")
	}
}

func TestExchangeRateCachesForTheDay(t *testing.T) {
	s, calls := newTestService(t, nil)
	ctx := context.Background()

	first, err := s.ExchangeRate(ctx, "USD", "EUR")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if first != 9200 {
		t.Fatalf("expected 9200, got %d", first)
	}

	second, err := s.ExchangeRate(ctx, "USD", "EUR")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if second != first {
		t.Fatalf("cached value changed: %d != %d", second, first)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected a single API call, got %d", got)
	}
}

func TestExchangeRateDateRollover(t *testing.T) {
	s, calls := newTestService(t, nil)
	ctx := context.Background()

	day := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	if _, err := s.ExchangeRate(ctx, "USD", "EUR"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Next calendar day invalidates the whole cache.
	day = day.Add(24 * time.Hour)
	if _, err := s.ExchangeRate(ctx, "USD", "EUR"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected refetch after rollover, got %d calls", got)
	}
}

func TestExchangeRateUnavailable(t *testing.T) {
	cases := []struct {
		name string
		h    http.Handler
	}{
		{"server error", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})},
		{"missing target key", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"amount":1.0,"base":"USD","rates":{"CHF":0.88}}`)
		})},
		{"malformed body", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestService(t, tc.h)
			_, err := s.ExchangeRate(context.Background(), "USD", "EUR")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestExchangeRateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(rateHandler(new(int32), 0.92))
	s := NewService(srv.URL, 500*time.Millisecond)
	srv.Close()

	_, err := s.ExchangeRate(context.Background(), "USD", "EUR")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestConvertAmount(t *testing.T) {
	s, _ := newTestService(t, nil)
	got := s.ConvertAmount(context.Background(), 10000, "USD", "EUR")
	if got != 9200 {
		t.Fatalf("expected 9200, got %d", got)
	}
}

func TestConvertAmountFailsOpen(t *testing.T) {
	s, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	got := s.ConvertAmount(context.Background(), 10000, "USD", "EUR")
	if got != 10000 {
		t.Fatalf("unavailable rate must return the input unchanged, got %d", got)
	}
}

func TestConvertAmountFloors(t *testing.T) {
	s, _ := newTestService(t, nil)
	got := s.ConvertAmount(context.Background(), 999, "USD", "EUR")
	// 999 * 9200 / 10000 = 919.08 -> 919
	if got != 919 {
		t.Fatalf("expected floored 919, got %d", got)
	}
}

func TestResetCache(t *testing.T) {
	s, calls := newTestService(t, nil)
	ctx := context.Background()

	if _, err := s.ExchangeRate(ctx, "USD", "EUR"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	s.ResetCache()
	if _, err := s.ExchangeRate(ctx, "USD", "EUR"); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected refetch after reset, got %d calls", got)
	}
}

func TestParseManualRate(t *testing.T) {
	cases := []struct {
		in   string
		rate core.Rate
		ok   bool
		err  bool
	}{
		{"0.92", 9200, true, false},
		{"1.5", 15000, true, false},
		{"1", 10000, true, false},
		{"0.8375", 8375, true, false},
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"abc", 0, false, true},
		{"0", 0, false, true},
		{"-0.5", 0, false, true},
	}
	for _, tc := range cases {
		rate, ok, err := ParseManualRate(tc.in)
		if tc.err {
			if !errors.Is(err, ErrRateFormat) {
				t.Fatalf("%q expected format error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if ok != tc.ok || rate != tc.rate {
			t.Fatalf("%q expected (%d, %v), got (%d, %v)", tc.in, tc.rate, tc.ok, rate, ok)
		}
	}
}
