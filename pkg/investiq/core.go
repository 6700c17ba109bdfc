package investiq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Provider kinds accepted in ProviderConfig.Kind.
const (
	ProviderTogether  = "together"
	ProviderGroq      = "groq"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// ProviderConfig selects one AI backend. A config with an empty APIKey is
// skipped, which degrades the analyzer toward the template.
type ProviderConfig struct {
	Kind   string
	APIKey string
	Model  string
}

// Options configures a Core. Zero values fall back to defaults.
type Options struct {
	Logger         *slog.Logger
	HTTPClient     HTTPDoer
	MaxAttempts    int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	Primary        ProviderConfig
	Secondary      ProviderConfig
}

// Core wires the full query pipeline: resolve, fetch, analyze, reply. It is
// safe for concurrent use.
type Core struct {
	log      *slog.Logger
	resolver *Resolver
	fetcher  *Fetcher
	analyzer *Analyzer
	sessions *SessionManager
}

// New constructs a Core from options. Provider configs with missing
// credentials are skipped with a log line rather than failing startup.
func New(opts Options) *Core {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	primary := buildProvider(log, "primary", opts.Primary)
	secondary := buildProvider(log, "secondary", opts.Secondary)

	return &Core{
		log:      log,
		resolver: NewResolver(),
		fetcher: NewFetcher(FetcherOptions{
			Logger:         log,
			HTTPClient:     opts.HTTPClient,
			MaxAttempts:    opts.MaxAttempts,
			BackoffBase:    opts.BackoffBase,
			RequestTimeout: opts.RequestTimeout,
		}),
		analyzer: NewAnalyzer(AnalyzerOptions{
			Logger:    log,
			Primary:   primary,
			Secondary: secondary,
		}),
		sessions: NewSessionManager(opts.SessionTTL),
	}
}

func buildProvider(log *slog.Logger, role string, cfg ProviderConfig) aiProvider {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		return nil
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Info("ai provider skipped, no credential", "role", role, "kind", kind)
		return nil
	}

	switch kind {
	case ProviderTogether:
		model := cfg.Model
		if model == "" {
			model = defaultTogetherModel
		}
		return newOpenAIProvider(ProviderTogether, togetherBaseURL, cfg.APIKey, model)
	case ProviderGroq:
		model := cfg.Model
		if model == "" {
			model = defaultGroqModel
		}
		return newOpenAIProvider(ProviderGroq, groqBaseURL, cfg.APIKey, model)
	case ProviderGemini:
		model := cfg.Model
		if model == "" {
			model = defaultGeminiModel
		}
		return newGeminiProvider(cfg.APIKey, model)
	case ProviderAnthropic:
		model := cfg.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		return newAnthropicProvider(cfg.APIKey, model)
	default:
		log.Warn("unknown ai provider kind", "role", role, "kind", kind)
		return nil
	}
}

// Ask runs one conversational turn: resolve the text to a ticker, fetch its
// fundamentals, analyze, and format a reply. Turns that name no symbol fall
// back to the session's last resolved ticker. Resolution and fetch failures
// come back as a ChatReply carrying the user-facing message plus the
// classified error; analysis never fails.
func (c *Core) Ask(ctx context.Context, sessionID, text string) (*ChatReply, error) {
	session, created := c.sessions.Touch(sessionID)
	if created {
		c.log.Debug("session created", "session_id", session.ID)
	}

	query := StockQuery{RawText: text}
	reply := &ChatReply{SessionID: session.ID, Query: query}

	resolution, err := c.resolver.Resolve(text)
	if err != nil {
		// Follow-up turns without a recognizable symbol continue with the
		// session's last stock.
		last := c.sessions.LastTicker(session.ID)
		if last == "" || !IsErrorCode(err, ErrCodeSymbolNotFound) {
			reply.Reply = UserMessage(CodeOf(err))
			return reply, err
		}
		resolution = Resolution{Ticker: last, Method: ResolveMethodSession}
	}
	reply.Query.Ticker = resolution.Ticker
	reply.Query.Method = resolution.Method

	overview, cached := c.sessions.CachedOverview(session.ID, resolution.Ticker)
	if !cached {
		overview, err = c.Analyze(ctx, resolution.Ticker)
		if err != nil {
			reply.Reply = UserMessage(CodeOf(err))
			return reply, err
		}
		c.sessions.StoreOverview(session.ID, resolution.Ticker, overview)
	}

	reply.Overview = overview
	reply.Reply = renderReplyText(overview)
	c.sessions.Record(session.ID, SessionTurn{
		Query:  reply.Query,
		Reply:  reply.Reply,
		At:     time.Now(),
		Ticker: resolution.Ticker,
	})
	return reply, nil
}

// Fetch retrieves the raw record for an exchange-qualified ticker.
func (c *Core) Fetch(ctx context.Context, ticker string) (*StockRecord, error) {
	return c.fetcher.Fetch(ctx, ticker)
}

// Analyze fetches a ticker and produces its full overview.
func (c *Core) Analyze(ctx context.Context, ticker string) (*StockOverview, error) {
	rec, err := c.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	analysis := c.analyzer.Analyze(ctx, rec)
	return BuildOverview(rec, analysis), nil
}

// Resolve exposes symbol resolution without fetching.
func (c *Core) Resolve(text string) (Resolution, error) {
	return c.resolver.Resolve(text)
}

// DeleteSession discards a session's state.
func (c *Core) DeleteSession(id string) bool {
	return c.sessions.Delete(id)
}

// renderReplyText formats the overview into the conversational reply body.
func renderReplyText(o *StockOverview) string {
	rec := o.Record
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", displayName(rec), rec.Ticker)
	if rec.Sector != "" {
		fmt.Fprintf(&b, " | %s", rec.Sector)
	}
	b.WriteString("\n")
	if rec.CurrentPrice != nil {
		fmt.Fprintf(&b, "Price: %s", FormatCurrency(*rec.CurrentPrice))
		if rec.YearPerformance != nil {
			fmt.Fprintf(&b, " (1y %s)", FormatPercent(*rec.YearPerformance))
		}
		b.WriteString("\n")
	}
	if rec.MarketCap != nil {
		fmt.Fprintf(&b, "Market Cap: %s\n", FormatCurrency(*rec.MarketCap))
	}
	b.WriteString("\nKey insights:\n")
	for _, insight := range o.Analysis.Insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	if o.Analysis.Summary != "" {
		b.WriteString("\n" + o.Analysis.Summary + "\n")
	}
	return b.String()
}
