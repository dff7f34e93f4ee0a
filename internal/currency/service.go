// Package currency fetches, caches, and formats exchange rates.
//
// Rates come from a Frankfurter-style API and are held as integers scaled
// by core.RateScale. The cache is owned by the Service instance and is
// valid for one calendar day: when the date rolls over the whole cache is
// dropped at once, matching the daily cadence of the upstream data.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"relocationos/internal/core"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Frankfurter endpoint.
const DefaultBaseURL = "https://api.frankfurter.app"

// DefaultTimeout bounds the blocking window of a rate lookup.
const DefaultTimeout = 5 * time.Second

var (
	// ErrUnavailable is the only error a rate lookup produces: any
	// network, decoding, or missing-key failure degrades to it. Callers
	// fall back to manual entry or assume parity.
	ErrUnavailable = errors.New("exchange rate unavailable")

	// ErrRateFormat reports a malformed manually entered rate.
	ErrRateFormat = errors.New("invalid rate format")
)

// Service resolves from->to exchange rates with a one-day cache.
type Service struct {
	client *resty.Client
	now    func() time.Time

	mu    sync.Mutex
	day   string // date stamp covering every cached entry
	rates map[string]core.Rate
}

func NewService(baseURL string, timeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "relocationos/1.0")

	return &Service{
		client: client,
		now:    time.Now,
		rates:  make(map[string]core.Rate),
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// ExchangeRate returns the scaled rate converting from -> to. Identical
// codes short-circuit to parity without touching the network or the
// cache. Lookups that fail in any way return ErrUnavailable.
func (s *Service) ExchangeRate(ctx context.Context, from, to string) (core.Rate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return core.ParityRate, nil
	}

	key := from + "_" + to
	if rate, ok := s.cached(key); ok {
		return rate, nil
	}

	var out ratesResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"from": from, "to": to}).
		SetResult(&out).
		Get("/latest")
	if err != nil {
		slog.WarnContext(ctx, "Exchange rate lookup failed",
			"component", "currency",
			"from", from,
			"to", to,
			"error", err)
		return 0, ErrUnavailable
	}
	if resp.StatusCode() != http.StatusOK {
		slog.WarnContext(ctx, "Exchange rate lookup returned non-OK status",
			"component", "currency",
			"from", from,
			"to", to,
			"status", resp.StatusCode())
		return 0, ErrUnavailable
	}

	f, ok := out.Rates[to]
	if !ok {
		slog.WarnContext(ctx, "Exchange rate response missing target code",
			"component", "currency",
			"from", from,
			"to", to)
		return 0, ErrUnavailable
	}

	rate := core.Rate(f * core.RateScale) // truncate, never round up
	s.store(key, rate)
	return rate, nil
}

// ConvertAmount converts cents between currencies, flooring the scaled
// product. When the rate is unavailable the input is returned unchanged.
func (s *Service) ConvertAmount(ctx context.Context, amountCents int64, from, to string) int64 {
	rate, err := s.ExchangeRate(ctx, from, to)
	if err != nil {
		return amountCents
	}
	return floorDiv(amountCents*int64(rate), core.RateScale)
}

// ResetCache drops every cached rate and the day stamp.
func (s *Service) ResetCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = ""
	s.rates = make(map[string]core.Rate)
}

func (s *Service) cached(key string) (core.Rate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if today := s.today(); s.day != today {
		// Date rolled over: every entry is stale, not just this one.
		s.day = today
		s.rates = make(map[string]core.Rate)
		return 0, false
	}
	rate, ok := s.rates[key]
	return rate, ok
}

func (s *Service) store(key string, rate core.Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if today := s.today(); s.day != today {
		s.day = today
		s.rates = make(map[string]core.Rate)
	}
	s.rates[key] = rate
}

func (s *Service) today() string {
	return core.DateOf(s.now()).String()
}

// ParseManualRate converts a user-typed decimal rate ("0.92") into the
// scaled representation. Empty input means the user skipped the prompt:
// ok is false and err is nil.
func ParseManualRate(s string) (rate core.Rate, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrRateFormat, s)
	}
	scaled := d.Mul(decimal.NewFromInt(core.RateScale)).IntPart()
	if scaled <= 0 {
		return 0, false, fmt.Errorf("%w: rate must be positive", ErrRateFormat)
	}
	return core.Rate(scaled), true, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
