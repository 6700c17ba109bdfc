package investiq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	minInsights = 3
	maxInsights = 5

	// ProviderTemplate tags analyses produced by the deterministic fallback.
	ProviderTemplate = "template"
)

// aiProvider is one configured analysis backend. Name tags results for
// observability; Analyze performs exactly one generation call.
type aiProvider interface {
	Name() string
	Analyze(ctx context.Context, system, user string) (string, error)
}

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	Logger    *slog.Logger
	Primary   aiProvider
	Secondary aiProvider
}

// Analyzer produces insights for a StockRecord. It walks primary provider,
// secondary provider, then the deterministic template; a usable result from
// any state ends the walk. The template cannot fail, so Analyze never
// returns an error for analysis itself.
type Analyzer struct {
	log       *slog.Logger
	primary   aiProvider
	secondary aiProvider
}

// NewAnalyzer constructs an Analyzer. Either provider may be nil, in which
// case its state is skipped.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	a := &Analyzer{
		log:       opts.Logger,
		primary:   opts.Primary,
		secondary: opts.Secondary,
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	return a
}

// Analyze generates insights for the record. The returned result always has
// at least minInsights insights and a non-empty summary.
func (a *Analyzer) Analyze(ctx context.Context, rec *StockRecord) AnalysisResult {
	system := analysisSystemPrompt
	user := buildAnalysisPrompt(rec)

	for _, provider := range []aiProvider{a.primary, a.secondary} {
		if provider == nil {
			continue
		}
		result, err := a.tryProvider(ctx, provider, system, user)
		if err != nil {
			a.log.Warn("analysis provider failed",
				"provider", provider.Name(),
				"ticker", rec.Ticker,
				"error", err)
			continue
		}
		return result
	}

	a.log.Info("analysis falling back to template", "ticker", rec.Ticker)
	return templateAnalysis(rec)
}

func (a *Analyzer) tryProvider(ctx context.Context, p aiProvider, system, user string) (AnalysisResult, error) {
	text, err := p.Analyze(ctx, system, user)
	if err != nil {
		return AnalysisResult{}, WrapError(ErrCodeAIUnavailable, "generation failed", err)
	}
	insights, summary, err := parseAnalysisText(text)
	if err != nil {
		return AnalysisResult{}, err
	}
	return AnalysisResult{
		Insights:    insights,
		Summary:     summary,
		Provider:    p.Name(),
		GeneratedAt: time.Now(),
	}, nil
}

const analysisSystemPrompt = `You are an equity research assistant covering Indian listed companies.
Given fundamentals for one stock, produce concise, factual observations grounded
only in the numbers provided. Do not give buy/sell recommendations.

Respond in exactly this format:

INSIGHTS:
- <observation 1>
- <observation 2>
- <observation 3>
- <observation 4, optional>
- <observation 5, optional>

INVESTMENT_SUMMARY:
<one short paragraph summarizing the company's financial position>`

// buildAnalysisPrompt renders the record into the user prompt. Absent fields
// are omitted rather than rendered as zero.
func buildAnalysisPrompt(rec *StockRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n", rec.CompanyName, rec.Ticker)
	if rec.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s\n", rec.Sector)
	}
	if rec.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", rec.Industry)
	}

	writeNum := func(label string, v *float64, unit string) {
		if v != nil {
			fmt.Fprintf(&b, "%s: %.2f%s\n", label, *v, unit)
		}
	}
	writeNum("Current price (INR)", rec.CurrentPrice, "")
	writeNum("Market cap (INR)", rec.MarketCap, "")
	writeNum("P/E ratio", rec.PERatio, "")
	writeNum("P/B ratio", rec.PBRatio, "")
	writeNum("EPS", rec.EPS, "")
	writeNum("Return on equity", rec.ROE, "%")
	writeNum("Profit margin", rec.ProfitMargin, "%")
	writeNum("Operating margin", rec.OperatingMargin, "%")
	writeNum("Revenue growth", rec.RevenueGrowth, "%")
	writeNum("Earnings growth", rec.EarningsGrowth, "%")
	writeNum("Debt to equity", rec.DebtToEquity, "")
	writeNum("Current ratio", rec.CurrentRatio, "")
	writeNum("Dividend yield", rec.DividendYield, "%")
	writeNum("52-week high", rec.FiftyTwoWeekHigh, "")
	writeNum("52-week low", rec.FiftyTwoWeekLow, "")
	writeNum("1-year performance", rec.YearPerformance, "%")
	writeNum("Annualized volatility", rec.Volatility, "%")
	writeNum("Promoter holding", rec.PromoterHolding, "%")
	writeNum("Institutional holding", rec.FIIHolding, "%")

	if len(rec.Annual) > 0 {
		b.WriteString("Annual results (most recent first):\n")
		for _, row := range rec.Annual {
			fmt.Fprintf(&b, "  %s: revenue=%s net_income=%s\n",
				row.Year, promptNum(row.TotalRevenue), promptNum(row.NetIncome))
		}
	}
	return b.String()
}

func promptNum(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", *v)
}

// parseAnalysisText extracts the insight bullets and summary paragraph from a
// provider response. Fewer than minInsights bullets or a missing summary is a
// malformed response, which the caller treats the same as a provider failure.
func parseAnalysisText(text string) (insights []string, summary string, err error) {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")

	insightsIdx := strings.Index(cleaned, "INSIGHTS:")
	summaryIdx := strings.Index(cleaned, "INVESTMENT_SUMMARY:")
	if insightsIdx < 0 || summaryIdx < 0 || summaryIdx < insightsIdx {
		return nil, "", NewError(ErrCodeAIUnavailable, "response missing required sections")
	}

	bulletBlock := cleaned[insightsIdx+len("INSIGHTS:") : summaryIdx]
	for _, line := range strings.Split(bulletBlock, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "-")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		insights = append(insights, line)
		if len(insights) == maxInsights {
			break
		}
	}
	if len(insights) < minInsights {
		return nil, "", NewError(ErrCodeAIUnavailable,
			fmt.Sprintf("response had %d insights, need %d", len(insights), minInsights))
	}

	summary = strings.TrimSpace(cleaned[summaryIdx+len("INVESTMENT_SUMMARY:"):])
	if summary == "" {
		return nil, "", NewError(ErrCodeAIUnavailable, "response missing summary")
	}
	return insights, summary, nil
}
