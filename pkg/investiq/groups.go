package investiq

// BuildOverview assembles the display-ready view of a record and its
// analysis. Absent fields are omitted from the metric groups entirely; no
// placeholder rows are emitted.
func BuildOverview(rec *StockRecord, analysis AnalysisResult) *StockOverview {
	return &StockOverview{
		Record:           rec,
		AnnualSummary:    rec.Annual,
		QuarterlySummary: rec.Quarterly,
		Ratios:           ratioMetrics(rec),
		Shareholding:     shareholdingMetrics(rec),
		Analysis:         analysis,
	}
}

func ratioMetrics(rec *StockRecord) []Metric {
	var metrics []Metric
	addRatio := func(name string, v *float64) {
		if v != nil {
			metrics = append(metrics, Metric{Name: name, Value: FormatRatio(*v)})
		}
	}
	addPercent := func(name string, v *float64) {
		if v != nil {
			metrics = append(metrics, Metric{Name: name, Value: FormatPercent(*v)})
		}
	}
	addCurrency := func(name string, v *float64) {
		if v != nil {
			metrics = append(metrics, Metric{Name: name, Value: FormatCurrency(*v)})
		}
	}

	addCurrency("Current Price", rec.CurrentPrice)
	addCurrency("Market Cap", rec.MarketCap)
	addRatio("P/E Ratio", rec.PERatio)
	addRatio("P/B Ratio", rec.PBRatio)
	addRatio("Price to Sales", rec.PriceToSales)
	addCurrency("Book Value", rec.BookValue)
	addCurrency("Face Value", rec.FaceValue)
	addCurrency("EPS", rec.EPS)
	addCurrency("52-Week High", rec.FiftyTwoWeekHigh)
	addCurrency("52-Week Low", rec.FiftyTwoWeekLow)
	addCurrency("Enterprise Value", rec.EnterpriseValue)
	addRatio("EV / Revenue", rec.EVToRevenue)
	addRatio("EV / EBITDA", rec.EVToEBITDA)
	addPercent("ROE", rec.ROE)
	addPercent("ROCE", rec.ROCE)
	addPercent("Profit Margin", rec.ProfitMargin)
	addPercent("Operating Margin", rec.OperatingMargin)
	addPercent("Revenue Growth", rec.RevenueGrowth)
	addPercent("Earnings Growth", rec.EarningsGrowth)
	addRatio("Debt to Equity", rec.DebtToEquity)
	addRatio("Current Ratio", rec.CurrentRatio)
	addRatio("Quick Ratio", rec.QuickRatio)
	addCurrency("Total Cash", rec.TotalCash)
	addCurrency("Total Debt", rec.TotalDebt)
	addCurrency("Free Cash Flow", rec.FreeCashFlow)
	addPercent("Dividend Yield", rec.DividendYield)
	addCurrency("Dividend Per Share", rec.DividendPerShare)
	addPercent("1-Year Performance", rec.YearPerformance)
	addPercent("Volatility", rec.Volatility)
	if rec.AvgVolume != nil {
		metrics = append(metrics, Metric{Name: "Avg Volume", Value: FormatVolume(*rec.AvgVolume)})
	}
	return metrics
}

func shareholdingMetrics(rec *StockRecord) []Metric {
	var metrics []Metric
	add := func(name string, v *float64) {
		if v != nil {
			metrics = append(metrics, Metric{Name: name, Value: FormatPercent(*v)})
		}
	}
	add("Promoter", rec.PromoterHolding)
	add("FII", rec.FIIHolding)
	add("DII", rec.DIIHolding)
	add("QIB", rec.QIBHolding)
	add("Mutual Funds", rec.MutualFundHolding)
	add("Insurance", rec.InsuranceHolding)
	add("Retail", rec.RetailHolding)
	return metrics
}
