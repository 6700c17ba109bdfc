package investiq

import (
	"fmt"
	"strings"
	"time"
)

// templateAnalysis is the deterministic final state of the analysis chain.
// It derives rule-based observations from whichever fields are present and
// always yields at least minInsights insights and a summary.
func templateAnalysis(rec *StockRecord) AnalysisResult {
	var insights []string
	add := func(s string) {
		if len(insights) < maxInsights {
			insights = append(insights, s)
		}
	}

	if rec.PERatio != nil {
		switch {
		case *rec.PERatio > 40:
			add(fmt.Sprintf("The stock trades at a high P/E of %.1f, pricing in significant growth expectations.", *rec.PERatio))
		case *rec.PERatio < 15:
			add(fmt.Sprintf("The stock trades at a modest P/E of %.1f relative to broad market averages.", *rec.PERatio))
		default:
			add(fmt.Sprintf("The stock trades at a P/E of %.1f, in line with typical market valuations.", *rec.PERatio))
		}
	}
	if rec.ROE != nil {
		if *rec.ROE >= 15 {
			add(fmt.Sprintf("Return on equity of %.1f%% indicates efficient use of shareholder capital.", *rec.ROE))
		} else {
			add(fmt.Sprintf("Return on equity stands at %.1f%%.", *rec.ROE))
		}
	}
	if rec.ProfitMargin != nil {
		add(fmt.Sprintf("Net profit margin is %.1f%%.", *rec.ProfitMargin))
	}
	if rec.RevenueGrowth != nil {
		if *rec.RevenueGrowth >= 0 {
			add(fmt.Sprintf("Revenue grew %.1f%% year over year.", *rec.RevenueGrowth))
		} else {
			add(fmt.Sprintf("Revenue declined %.1f%% year over year.", -*rec.RevenueGrowth))
		}
	}
	if rec.DebtToEquity != nil {
		if *rec.DebtToEquity > 100 {
			add(fmt.Sprintf("Debt to equity of %.0f suggests a leveraged balance sheet.", *rec.DebtToEquity))
		} else {
			add(fmt.Sprintf("Debt to equity of %.0f indicates a conservative balance sheet.", *rec.DebtToEquity))
		}
	}
	if rec.CurrentRatio != nil && *rec.CurrentRatio >= 1.5 {
		add(fmt.Sprintf("A current ratio of %.2f points to comfortable short-term liquidity.", *rec.CurrentRatio))
	}
	if rec.DividendYield != nil && *rec.DividendYield > 0 {
		add(fmt.Sprintf("The stock offers a dividend yield of %.2f%%.", *rec.DividendYield))
	}
	if rec.YearPerformance != nil {
		if *rec.YearPerformance >= 0 {
			add(fmt.Sprintf("The stock gained %.1f%% over the past year.", *rec.YearPerformance))
		} else {
			add(fmt.Sprintf("The stock lost %.1f%% over the past year.", -*rec.YearPerformance))
		}
	}
	if rec.PromoterHolding != nil {
		add(fmt.Sprintf("Insider ownership stands at %.1f%% of shares outstanding.", *rec.PromoterHolding))
	}

	// Generic fillers keep the minimum bullet count even for sparse records.
	fillers := []string{
		fmt.Sprintf("%s operates in the %s sector.", displayName(rec), orUnknown(rec.Sector)),
		fmt.Sprintf("Data for %s was retrieved from public market sources and may lag live prices.", rec.Ticker),
		"Review the full financial statements before drawing conclusions from summary ratios.",
	}
	for _, filler := range fillers {
		if len(insights) >= minInsights {
			break
		}
		add(filler)
	}

	return AnalysisResult{
		Insights:    insights,
		Summary:     templateSummary(rec),
		Provider:    ProviderTemplate,
		GeneratedAt: time.Now(),
	}
}

func templateSummary(rec *StockRecord) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s (%s)", displayName(rec), rec.Ticker))
	if rec.Sector != "" {
		parts = append(parts, "operates in the "+rec.Sector+" sector")
	}
	if rec.MarketCap != nil {
		parts = append(parts, "with a market capitalization of "+FormatCurrency(*rec.MarketCap))
	}
	sentence := strings.Join(parts, " ") + "."

	var metrics []string
	if rec.PERatio != nil {
		metrics = append(metrics, fmt.Sprintf("P/E %.1f", *rec.PERatio))
	}
	if rec.ROE != nil {
		metrics = append(metrics, fmt.Sprintf("ROE %.1f%%", *rec.ROE))
	}
	if rec.ProfitMargin != nil {
		metrics = append(metrics, fmt.Sprintf("net margin %.1f%%", *rec.ProfitMargin))
	}
	if len(metrics) > 0 {
		sentence += " Key metrics: " + strings.Join(metrics, ", ") + "."
	}
	sentence += " This summary is generated from reported fundamentals without qualitative judgment."
	return sentence
}

func displayName(rec *StockRecord) string {
	if rec.CompanyName != "" {
		return rec.CompanyName
	}
	return rec.Ticker
}

func orUnknown(s string) string {
	if s == "" {
		return "unclassified"
	}
	return s
}
