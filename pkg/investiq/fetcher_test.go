package investiq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func newTestFetcher(client HTTPDoer, attempts int) *Fetcher {
	return NewFetcher(FetcherOptions{
		HTTPClient:     client,
		MaxAttempts:    attempts,
		BackoffBase:    time.Millisecond,
		RequestTimeout: time.Second,
	})
}

func TestFetchSuccessFirstSource(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("Tata Consultancy Services", "Information Technology", 3850.5)},
		{match: "chart/TCS.NS", status: http.StatusInternalServerError, body: ""},
	}}
	f := newTestFetcher(client, 3)

	rec, err := f.Fetch(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec.Ticker != "TCS.NS" {
		t.Errorf("ticker = %q", rec.Ticker)
	}
	if rec.Sector != "Information Technology" {
		t.Errorf("sector = %q", rec.Sector)
	}
	if got := mustFloat(t, rec.CurrentPrice); got != 3850.5 {
		t.Errorf("price = %v", got)
	}
	if rec.Volatility != nil || rec.YearPerformance != nil {
		t.Error("chart enrichment should leave fields nil on failure")
	}
	if n := client.callsMatching("quoteSummary"); n != 1 {
		t.Errorf("quoteSummary calls = %d, want 1", n)
	}
}

func TestFetchRetryBudgetExactlyConsumed(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusInternalServerError, body: ""},
	}}
	f := newTestFetcher(client, 3)

	_, err := f.fetchFromSource(context.Background(), fetchSource{name: "primary", host: query1Host, ticker: "TCS.NS"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsErrorCode(err, ErrCodeDataTransient) {
		t.Errorf("code = %v, want DATA_TRANSIENT", CodeOf(err))
	}
	if got := client.callCount(); got != 3 {
		t.Errorf("attempts = %d, want exactly 3", got)
	}
}

func TestFetchNotFoundShortCircuitsRetries(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusNotFound, body: ""},
	}}
	f := newTestFetcher(client, 3)

	_, err := f.fetchFromSource(context.Background(), fetchSource{name: "primary", host: query1Host, ticker: "NOPE.NS"})
	if !IsErrorCode(err, ErrCodeDataNotFound) {
		t.Fatalf("code = %v, want DATA_NOT_FOUND", CodeOf(err))
	}
	if got := client.callCount(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries on not found)", got)
	}
}

func TestFetchFallsBackToAlternateExchange(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusNotFound, body: ""},
		{match: "quoteSummary/TCS.BO", status: http.StatusOK, body: quoteSummaryBody("Tata Consultancy Services", "Information Technology", 3851.0)},
		{match: "chart/TCS.BO", status: http.StatusNotFound, body: ""},
	}}
	f := newTestFetcher(client, 2)

	rec, err := f.Fetch(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec.Ticker != "TCS.BO" {
		t.Errorf("ticker = %q, want TCS.BO", rec.Ticker)
	}
}

func TestFetchWalksAllSourcesThenReturnsLastError(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusNotFound, body: ""},
	}}
	f := newTestFetcher(client, 3)

	_, err := f.Fetch(context.Background(), "GHOST.NS")
	if !IsErrorCode(err, ErrCodeDataNotFound) {
		t.Fatalf("code = %v, want DATA_NOT_FOUND", CodeOf(err))
	}
	// primary .NS, alternate .BO, alternate host; one attempt each.
	if got := client.callCount(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if n := client.callsMatching("query2.finance.yahoo.com"); n != 1 {
		t.Errorf("alternate host calls = %d, want 1", n)
	}
}

func TestFetchClassifiesRateLimit(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusTooManyRequests, body: ""},
	}}
	f := newTestFetcher(client, 1)

	_, err := f.Fetch(context.Background(), "TCS.NS")
	if !IsErrorCode(err, ErrCodeDataRateLimited) {
		t.Fatalf("code = %v, want DATA_RATE_LIMITED", CodeOf(err))
	}
}

func TestFetchClassifiesNetworkError(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", err: errors.New("connection refused")},
	}}
	f := newTestFetcher(client, 1)

	_, err := f.Fetch(context.Background(), "TCS.NS")
	if !IsErrorCode(err, ErrCodeDataTransient) {
		t.Fatalf("code = %v, want DATA_TRANSIENT", CodeOf(err))
	}
}

func TestFetchClassifiesTimeoutAndRetries(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", err: context.DeadlineExceeded},
	}}
	f := newTestFetcher(client, 3)

	_, err := f.fetchFromSource(context.Background(), fetchSource{name: "primary", host: query1Host, ticker: "TCS.NS"})
	if !IsErrorCode(err, ErrCodeDataTimeout) {
		t.Fatalf("code = %v, want DATA_TIMEOUT", CodeOf(err))
	}
	if got := client.callCount(); got != 3 {
		t.Errorf("attempts = %d, want 3 (timeouts consume the retry budget)", got)
	}
}

func TestFetchCancellationIsNotATimeout(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", err: fmt.Errorf("round trip: %w", context.Canceled)},
	}}
	f := newTestFetcher(client, 3)

	_, err := f.fetchFromSource(context.Background(), fetchSource{name: "primary", host: query1Host, ticker: "TCS.NS"})
	if IsErrorCode(err, ErrCodeDataTimeout) {
		t.Fatal("cancellation must not classify as DATA_TIMEOUT")
	}
	if !IsErrorCode(err, ErrCodeInternal) {
		t.Fatalf("code = %v, want INTERNAL_ERROR", CodeOf(err))
	}
	if got := client.callCount(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries after cancellation)", got)
	}
}

func TestFetchEmptyResultIsNotFound(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusOK, body: `{"quoteSummary":{"result":[],"error":null}}`},
	}}
	f := newTestFetcher(client, 2)

	_, err := f.fetchFromSource(context.Background(), fetchSource{name: "primary", host: query1Host, ticker: "X.NS"})
	if !IsErrorCode(err, ErrCodeDataNotFound) {
		t.Fatalf("code = %v, want DATA_NOT_FOUND", CodeOf(err))
	}
	if got := client.callCount(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestFetchChartEnrichment(t *testing.T) {
	chartBody := `{"chart":{"result":[{"timestamp":[1,2,3,4],"indicators":{"quote":[{
		"close":[100.0,102.0,101.0,110.0],
		"volume":[1000.0,null,3000.0,2000.0]
	}]}}],"error":null}}`
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 110)},
		{match: "chart/TCS.NS", status: http.StatusOK, body: chartBody},
	}}
	f := newTestFetcher(client, 1)

	rec, err := f.Fetch(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	perf := mustFloat(t, rec.YearPerformance)
	if perf < 9.9 || perf > 10.1 {
		t.Errorf("year performance = %v, want ~10", perf)
	}
	if got := mustFloat(t, rec.AvgVolume); got != 2000 {
		t.Errorf("avg volume = %v, want 2000", got)
	}
	if rec.Volatility == nil {
		t.Error("expected volatility")
	}
}

func TestFetchIdempotent(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	f := newTestFetcher(client, 1)

	first, err := f.Fetch(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := f.Fetch(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if mustFloat(t, first.CurrentPrice) != mustFloat(t, second.CurrentPrice) {
		t.Error("repeated fetches disagree on price")
	}
	if first.Sector != second.Sector {
		t.Error("repeated fetches disagree on sector")
	}
}
