package investiq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// mockHTTPClient implements HTTPDoer for testing. Responses are matched by
// URL substring in order; the first match wins. Every call is recorded.
type mockHTTPClient struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     []string
}

type mockResponse struct {
	match  string
	status int
	body   string
	err    error
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := req.URL.String()
	m.calls = append(m.calls, url)
	for _, r := range m.responses {
		if strings.Contains(url, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return &http.Response{
				StatusCode: r.status,
				Body:       io.NopCloser(strings.NewReader(r.body)),
				Header:     make(http.Header),
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockHTTPClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockHTTPClient) callsMatching(substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, call := range m.calls {
		if strings.Contains(call, substr) {
			n++
		}
	}
	return n
}

// quoteSummaryBody builds a minimal valid quoteSummary payload.
func quoteSummaryBody(name, sector string, price float64) string {
	return fmt.Sprintf(`{
		"quoteSummary": {
			"result": [{
				"price": {
					"longName": %q,
					"regularMarketPrice": {"raw": %f},
					"marketCap": {"raw": 1.2e13}
				},
				"assetProfile": {"sector": %q, "industry": "IT Services", "country": "India"},
				"summaryDetail": {
					"trailingPE": {"raw": 28.5},
					"dividendYield": {"raw": 0.012},
					"fiftyTwoWeekHigh": {"raw": 4200.0},
					"fiftyTwoWeekLow": {"raw": 3100.0}
				},
				"financialData": {
					"currentPrice": {"raw": %f},
					"returnOnEquity": {"raw": 0.46},
					"profitMargins": {"raw": 0.19},
					"debtToEquity": {"raw": 9.8},
					"revenueGrowth": {"raw": 0.07}
				},
				"defaultKeyStatistics": {
					"priceToBook": {"raw": 12.1},
					"trailingEps": {"raw": 130.5},
					"heldPercentInstitutions": {"raw": 0.24},
					"heldPercentInsiders": {"raw": 0.72}
				}
			}],
			"error": null
		}
	}`, name, price, sector, price)
}

// fakeProvider implements aiProvider for analyzer tests.
type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Analyze(_ context.Context, system, user string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func wellFormedAnalysis() string {
	return `INSIGHTS:
- Valuation is rich versus sector peers.
- Return on equity remains strong.
- Balance sheet carries minimal debt.

INVESTMENT_SUMMARY:
A profitable company with a premium valuation.`
}

func mustFloat(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatal("expected non-nil value")
	}
	return *v
}
