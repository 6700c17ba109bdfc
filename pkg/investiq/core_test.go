package investiq

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestCore(client HTTPDoer) *Core {
	return New(Options{
		HTTPClient:     client,
		MaxAttempts:    1,
		BackoffBase:    time.Millisecond,
		RequestTimeout: time.Second,
	})
}

func TestAskFullPipeline(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("Tata Consultancy Services", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	reply, err := core.Ask(context.Background(), "", "analyze TCS")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply.SessionID == "" {
		t.Error("expected session id")
	}
	if reply.Query.Ticker != "TCS.NS" {
		t.Errorf("ticker = %q", reply.Query.Ticker)
	}
	if reply.Overview == nil {
		t.Fatal("expected overview")
	}
	if reply.Overview.Record.Sector != "Information Technology" {
		t.Errorf("sector = %q", reply.Overview.Record.Sector)
	}
	// No AI credentials configured, so analysis comes from the template.
	if reply.Overview.Analysis.Provider != ProviderTemplate {
		t.Errorf("provider = %q, want template", reply.Overview.Analysis.Provider)
	}
	if !strings.Contains(reply.Reply, "Tata Consultancy Services") {
		t.Errorf("reply should name the company: %q", reply.Reply)
	}
}

func TestAskUnresolvableInputMakesNoHTTPCalls(t *testing.T) {
	client := &mockHTTPClient{}
	core := newTestCore(client)

	reply, err := core.Ask(context.Background(), "", "xyz123notareal")
	if !IsErrorCode(err, ErrCodeSymbolNotFound) {
		t.Fatalf("code = %v, want SYMBOL_NOT_FOUND", CodeOf(err))
	}
	if client.callCount() != 0 {
		t.Errorf("HTTP calls = %d, want 0", client.callCount())
	}
	if reply == nil || reply.Reply == "" {
		t.Fatal("expected a user-facing reply even on failure")
	}
	if strings.Contains(reply.Reply, "SYMBOL_NOT_FOUND") {
		t.Error("raw error codes must not leak into the reply text")
	}
}

func TestAskFetchFailureYieldsFriendlyReply(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	reply, err := core.Ask(context.Background(), "", "analyze TCS")
	if !IsErrorCode(err, ErrCodeDataNotFound) {
		t.Fatalf("code = %v, want DATA_NOT_FOUND", CodeOf(err))
	}
	if reply.Reply != UserMessage(ErrCodeDataNotFound) {
		t.Errorf("reply = %q", reply.Reply)
	}
}

func TestAskReusesSession(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "quoteSummary/INFY.NS", status: http.StatusOK, body: quoteSummaryBody("Infosys", "Information Technology", 1500)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	first, err := core.Ask(context.Background(), "", "TCS")
	if err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	second, err := core.Ask(context.Background(), first.SessionID, "INFY")
	if err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q vs %q", second.SessionID, first.SessionID)
	}
}

func TestAskSessionCacheSkipsRefetch(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	first, err := core.Ask(context.Background(), "", "TCS")
	if err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	before := client.callCount()

	second, err := core.Ask(context.Background(), first.SessionID, "analyze TCS")
	if err != nil {
		t.Fatalf("second Ask: %v", err)
	}
	if client.callCount() != before {
		t.Errorf("HTTP calls = %d, want %d (cached within session)", client.callCount(), before)
	}
	if second.Overview == nil || second.Overview.Record.Ticker != "TCS.NS" {
		t.Error("cached reply should carry the overview")
	}

	// A fresh session must not see the first session's cache.
	_, err = core.Ask(context.Background(), "", "TCS")
	if err != nil {
		t.Fatalf("third Ask: %v", err)
	}
	if client.callCount() == before {
		t.Error("new session should fetch again")
	}
}

func TestAskFollowUpReusesLastTicker(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	first, err := core.Ask(context.Background(), "", "analyze TCS")
	if err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	before := client.callCount()

	second, err := core.Ask(context.Background(), first.SessionID, "tell me more about it")
	if err != nil {
		t.Fatalf("follow-up Ask: %v", err)
	}
	if second.Query.Ticker != "TCS.NS" {
		t.Errorf("follow-up ticker = %q, want TCS.NS", second.Query.Ticker)
	}
	if second.Query.Method != ResolveMethodSession {
		t.Errorf("method = %q, want %q", second.Query.Method, ResolveMethodSession)
	}
	if client.callCount() != before {
		t.Errorf("HTTP calls = %d, want %d (follow-up served from session)", client.callCount(), before)
	}

	// A fresh session has no last ticker to fall back to.
	_, err = core.Ask(context.Background(), "", "tell me more about it")
	if !IsErrorCode(err, ErrCodeSymbolNotFound) {
		t.Errorf("code = %v, want SYMBOL_NOT_FOUND", CodeOf(err))
	}
}

func TestDeleteSession(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	reply, err := core.Ask(context.Background(), "", "TCS")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !core.DeleteSession(reply.SessionID) {
		t.Error("expected delete to succeed")
	}
	if core.DeleteSession(reply.SessionID) {
		t.Error("second delete should fail")
	}
}

func TestBuildProviderSkipsMissingCredential(t *testing.T) {
	core := New(Options{
		Primary:   ProviderConfig{Kind: ProviderTogether},
		Secondary: ProviderConfig{Kind: "bogus", APIKey: "x"},
	})
	if core.analyzer.primary != nil {
		t.Error("provider without credential must be skipped")
	}
	if core.analyzer.secondary != nil {
		t.Error("unknown provider kind must be skipped")
	}
}

func TestBuildProviderKinds(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{ProviderTogether, ProviderTogether},
		{ProviderGroq, ProviderGroq},
		{ProviderGemini, "gemini"},
		{ProviderAnthropic, "anthropic"},
	}
	for _, tt := range tests {
		core := New(Options{Primary: ProviderConfig{Kind: tt.kind, APIKey: "test-key"}})
		p := core.analyzer.primary
		if p == nil {
			t.Errorf("kind %q: expected provider", tt.kind)
			continue
		}
		if p.Name() != tt.want {
			t.Errorf("kind %q: name = %q, want %q", tt.kind, p.Name(), tt.want)
		}
	}
}

func TestAnalyzeOverviewGroups(t *testing.T) {
	client := &mockHTTPClient{responses: []mockResponse{
		{match: "quoteSummary/TCS.NS", status: http.StatusOK, body: quoteSummaryBody("TCS", "Information Technology", 3850.5)},
		{match: "chart", status: http.StatusNotFound, body: ""},
	}}
	core := newTestCore(client)

	overview, err := core.Analyze(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(overview.Ratios) == 0 {
		t.Error("expected ratio metrics")
	}
	if len(overview.Shareholding) == 0 {
		t.Error("expected shareholding metrics")
	}
	for _, m := range overview.Ratios {
		if m.Value == "" {
			t.Errorf("metric %q has empty value", m.Name)
		}
	}
	// Only reported shareholding categories appear.
	for _, m := range overview.Shareholding {
		switch m.Name {
		case "Promoter", "FII", "Retail":
		default:
			t.Errorf("unexpected shareholding metric %q", m.Name)
		}
	}
}
