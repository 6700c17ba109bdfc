package investiq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDoer lets tests swap the HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	query1Host = "https://query1.finance.yahoo.com"
	query2Host = "https://query2.finance.yahoo.com"

	quoteSummaryModules = "price,summaryDetail,financialData,defaultKeyStatistics," +
		"assetProfile,incomeStatementHistory,incomeStatementHistoryQuarterly," +
		"balanceSheetHistory,cashflowStatementHistory"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultMaxAttempts    = 3
	defaultBackoffBase    = 500 * time.Millisecond
	defaultRequestTimeout = 15 * time.Second
)

// FetcherOptions configures a Fetcher. Zero values fall back to defaults.
type FetcherOptions struct {
	Logger         *slog.Logger
	HTTPClient     HTTPDoer
	MaxAttempts    int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
	UserAgent      string
}

// Fetcher retrieves a StockRecord for a ticker from Yahoo Finance, walking an
// ordered source chain: primary host with the resolved suffix, the alternate
// exchange suffix, then the alternate host. Each source gets its own retry
// budget; a definitive "not found" on a source skips straight to the next one.
type Fetcher struct {
	log            *slog.Logger
	client         HTTPDoer
	maxAttempts    int
	backoffBase    time.Duration
	requestTimeout time.Duration
	userAgent      string
}

// NewFetcher constructs a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		log:            opts.Logger,
		client:         opts.HTTPClient,
		maxAttempts:    opts.MaxAttempts,
		backoffBase:    opts.BackoffBase,
		requestTimeout: opts.RequestTimeout,
		userAgent:      opts.UserAgent,
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultRequestTimeout}
	}
	if f.maxAttempts <= 0 {
		f.maxAttempts = defaultMaxAttempts
	}
	if f.backoffBase <= 0 {
		f.backoffBase = defaultBackoffBase
	}
	if f.requestTimeout <= 0 {
		f.requestTimeout = defaultRequestTimeout
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	return f
}

// fetchSource is one (host, ticker) combination to try.
type fetchSource struct {
	name   string
	host   string
	ticker string
}

// buildSources produces the ordered fallback chain for a resolved ticker.
func buildSources(ticker string) []fetchSource {
	sources := []fetchSource{
		{name: "primary", host: query1Host, ticker: ticker},
	}
	if alt, ok := alternateExchangeTicker(ticker); ok {
		sources = append(sources, fetchSource{name: "alternate-exchange", host: query1Host, ticker: alt})
	}
	sources = append(sources, fetchSource{name: "alternate-host", host: query2Host, ticker: ticker})
	return sources
}

func alternateExchangeTicker(ticker string) (string, bool) {
	switch {
	case strings.HasSuffix(ticker, nseSuffix):
		return strings.TrimSuffix(ticker, nseSuffix) + bseSuffix, true
	case strings.HasSuffix(ticker, bseSuffix):
		return strings.TrimSuffix(ticker, bseSuffix) + nseSuffix, true
	default:
		return "", false
	}
}

// Fetch retrieves fundamentals for the ticker and enriches the record with
// one year of trading statistics. The enrichment is best effort; its failure
// never fails the fetch.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) (*StockRecord, error) {
	var lastErr error
	for _, source := range buildSources(ticker) {
		rec, err := f.fetchFromSource(ctx, source)
		if err == nil {
			f.enrichFromChart(ctx, rec, source)
			return rec, nil
		}
		lastErr = err
		f.log.Warn("fetch source failed",
			"source", source.name,
			"ticker", source.ticker,
			"code", string(CodeOf(err)),
			"error", err)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		return nil, NewError(ErrCodeAllSourcesExhausted, "no data sources configured")
	}
	return nil, lastErr
}

// fetchFromSource runs the retry loop for one source. NotFound is definitive
// and is returned without consuming further attempts; retryable kinds back
// off exponentially up to the attempt budget.
func (f *Fetcher) fetchFromSource(ctx context.Context, source fetchSource) (*StockRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		rec, err := f.fetchQuoteSummary(ctx, source)
		if err == nil {
			return rec, nil
		}
		lastErr = err
		if IsErrorCode(err, ErrCodeDataNotFound) || IsErrorCode(err, ErrCodeSymbolNotFound) ||
			IsErrorCode(err, ErrCodeInternal) {
			return nil, err
		}
		if attempt == f.maxAttempts {
			break
		}
		delay := f.backoffBase * time.Duration(math.Pow(2, float64(attempt-1)))
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, WrapError(ErrCodeInternal, "fetch canceled", ctx.Err())
			}
			return nil, WrapError(ErrCodeDataTimeout, "fetch deadline exceeded", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchQuoteSummary(ctx context.Context, source fetchSource) (*StockRecord, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		source.host, url.PathEscape(source.ticker), url.QueryEscape(quoteSummaryModules))

	body, err := f.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var envelope yahooQuoteSummaryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, WrapError(ErrCodeDataTransient, "malformed quote summary response", err)
	}
	if e := envelope.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, NewError(ErrCodeDataNotFound, "no data for "+source.ticker)
		}
		return nil, NewError(ErrCodeDataTransient, "provider error: "+e.Code)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, NewError(ErrCodeDataNotFound, "empty result for "+source.ticker)
	}

	qs := &envelope.QuoteSummary.Result[0]
	if !hasPriceData(qs) {
		return nil, NewError(ErrCodeDataNotFound, "no price data for "+source.ticker)
	}
	return newStockRecordFromQuoteSummary(source.ticker, qs), nil
}

// enrichFromChart fills AvgVolume, YearPerformance and Volatility from one
// year of daily closes. Errors are logged and swallowed.
func (f *Fetcher) enrichFromChart(ctx context.Context, rec *StockRecord, source fetchSource) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d",
		source.host, url.PathEscape(source.ticker))

	body, err := f.getJSON(ctx, endpoint)
	if err != nil {
		f.log.Debug("chart enrichment skipped", "ticker", source.ticker, "error", err)
		return
	}

	var envelope yahooChartEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Chart.Error != nil ||
		len(envelope.Chart.Result) == 0 || len(envelope.Chart.Result[0].Indicators.Quote) == 0 {
		f.log.Debug("chart enrichment skipped", "ticker", source.ticker, "reason", "unusable payload")
		return
	}

	quote := envelope.Chart.Result[0].Indicators.Quote[0]
	closes := compactSeries(quote.Close)
	if len(closes) >= 2 {
		perf := (closes[len(closes)-1] - closes[0]) / closes[0] * 100
		rec.YearPerformance = &perf
		if vol := annualizedVolatility(closes); vol != nil {
			rec.Volatility = vol
		}
	}
	if avg := meanSeries(compactSeries(quote.Volume)); avg != nil {
		rec.AvgVolume = avg
	}
}

// getJSON performs one GET with the per-request timeout and classifies
// failures into the error taxonomy.
func (f *Fetcher) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, WrapError(ErrCodeInternal, "build request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(reqCtx.Err(), context.Canceled):
			// Caller went away; not a provider timeout.
			return nil, WrapError(ErrCodeInternal, "request canceled", err)
		case errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil:
			return nil, WrapError(ErrCodeDataTimeout, "request timed out", err)
		default:
			return nil, WrapError(ErrCodeDataTransient, "request failed", err)
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, WrapError(ErrCodeDataTransient, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewError(ErrCodeDataNotFound, "symbol not found at provider")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(ErrCodeDataRateLimited, "provider rate limit")
	case resp.StatusCode >= 500:
		return nil, NewError(ErrCodeDataTransient, fmt.Sprintf("provider status %d", resp.StatusCode))
	default:
		return nil, NewError(ErrCodeDataTransient, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
}

func compactSeries(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

func meanSeries(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	return &mean
}

// annualizedVolatility computes stddev of daily log returns scaled by
// sqrt(252), in percent.
func annualizedVolatility(closes []float64) *float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return nil
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	vol := math.Sqrt(variance) * math.Sqrt(252) * 100
	return &vol
}
