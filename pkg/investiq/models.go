package investiq

import "time"

// StockQuery describes one resolved user turn. It lives only for the
// duration of the request that produced it.
type StockQuery struct {
	RawText string `json:"raw_text"`
	Ticker  string `json:"ticker,omitempty"`
	Method  string `json:"method,omitempty"`
}

// AnnualRow is one fiscal year of the income/balance summary.
type AnnualRow struct {
	Year         string   `json:"year"`
	TotalRevenue *float64 `json:"total_revenue"`
	NetIncome    *float64 `json:"net_income"`
	EPS          *float64 `json:"eps"`
	TotalAssets  *float64 `json:"total_assets"`
	TotalDebt    *float64 `json:"total_debt"`
}

// QuarterlyRow is one fiscal quarter of the income summary.
type QuarterlyRow struct {
	Quarter      string   `json:"quarter"`
	TotalRevenue *float64 `json:"total_revenue"`
	NetIncome    *float64 `json:"net_income"`
	EPS          *float64 `json:"eps"`
}

// BalanceSheetSummary is the latest reported balance sheet snapshot.
type BalanceSheetSummary struct {
	TotalAssets        *float64 `json:"total_assets"`
	TotalLiabilities   *float64 `json:"total_liabilities"`
	ShareholdersEquity *float64 `json:"shareholders_equity"`
	TotalDebt          *float64 `json:"total_debt"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents"`
	CurrentAssets      *float64 `json:"current_assets"`
	CurrentLiabilities *float64 `json:"current_liabilities"`
}

// IncomeStatementSummary is the latest reported income statement snapshot.
type IncomeStatementSummary struct {
	TotalRevenue    *float64 `json:"total_revenue"`
	GrossProfit     *float64 `json:"gross_profit"`
	OperatingIncome *float64 `json:"operating_income"`
	NetIncome       *float64 `json:"net_income"`
	InterestExpense *float64 `json:"interest_expense"`
	TaxProvision    *float64 `json:"tax_provision"`
}

// CashFlowSummary is the latest reported cash flow snapshot.
type CashFlowSummary struct {
	OperatingCashFlow   *float64 `json:"operating_cash_flow"`
	InvestingCashFlow   *float64 `json:"investing_cash_flow"`
	FinancingCashFlow   *float64 `json:"financing_cash_flow"`
	CapitalExpenditures *float64 `json:"capital_expenditures"`
}

// StockRecord is an immutable snapshot of one ticker's fundamentals.
// Every numeric field is independently optional: a nil pointer means the
// provider had no value. Zero is a valid financial value and is never used
// as an absent marker.
type StockRecord struct {
	Ticker          string    `json:"ticker"`
	CompanyName     string    `json:"company_name"`
	Sector          string    `json:"sector,omitempty"`
	Industry        string    `json:"industry,omitempty"`
	Country         string    `json:"country,omitempty"`
	Website         string    `json:"website,omitempty"`
	BusinessSummary string    `json:"business_summary,omitempty"`
	Chairman        string    `json:"chairman,omitempty"`
	ManagingDir     string    `json:"managing_director,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`

	Employees *float64 `json:"employees"`

	// Price and valuation.
	CurrentPrice     *float64 `json:"current_price"`
	MarketCap        *float64 `json:"market_cap"`
	PERatio          *float64 `json:"pe_ratio"`
	PBRatio          *float64 `json:"pb_ratio"`
	PriceToSales     *float64 `json:"price_to_sales"`
	BookValue        *float64 `json:"book_value"`
	FaceValue        *float64 `json:"face_value"`
	EPS              *float64 `json:"eps"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low"`
	EnterpriseValue  *float64 `json:"enterprise_value"`
	EVToRevenue      *float64 `json:"ev_to_revenue"`
	EVToEBITDA       *float64 `json:"ev_to_ebitda"`

	// Profitability and growth, in percent.
	ROE             *float64 `json:"roe"`
	ROCE            *float64 `json:"roce"`
	ProfitMargin    *float64 `json:"profit_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	RevenueGrowth   *float64 `json:"revenue_growth"`
	EarningsGrowth  *float64 `json:"earnings_growth"`

	// Financial strength.
	DebtToEquity     *float64 `json:"debt_to_equity"`
	CurrentRatio     *float64 `json:"current_ratio"`
	QuickRatio       *float64 `json:"quick_ratio"`
	TotalCash        *float64 `json:"total_cash"`
	TotalDebt        *float64 `json:"total_debt"`
	FreeCashFlow     *float64 `json:"free_cash_flow"`
	DividendYield    *float64 `json:"dividend_yield"`
	DividendPerShare *float64 `json:"dividend_per_share"`

	// Trading statistics derived from one year of daily closes.
	AvgVolume       *float64 `json:"avg_volume"`
	YearPerformance *float64 `json:"year_performance"`
	Volatility      *float64 `json:"volatility"`

	// Shareholding pattern, in percent of outstanding shares.
	PromoterHolding   *float64 `json:"promoter_holding"`
	FIIHolding        *float64 `json:"fii_holding"`
	DIIHolding        *float64 `json:"dii_holding"`
	QIBHolding        *float64 `json:"qib_holding"`
	RetailHolding     *float64 `json:"retail_holding"`
	MutualFundHolding *float64 `json:"mutual_fund_holding"`
	InsuranceHolding  *float64 `json:"insurance_holding"`

	// Statement summaries.
	Annual          []AnnualRow             `json:"annual,omitempty"`
	Quarterly       []QuarterlyRow          `json:"quarterly,omitempty"`
	BalanceSheet    *BalanceSheetSummary    `json:"balance_sheet,omitempty"`
	IncomeStatement *IncomeStatementSummary `json:"income_statement,omitempty"`
	CashFlow        *CashFlowSummary        `json:"cash_flow,omitempty"`
}

// AnalysisResult is the insight output for one StockRecord. Provider records
// which path produced it (a provider name or "template") for observability;
// it is not an error signal.
type AnalysisResult struct {
	Insights    []string  `json:"insights"`
	Summary     string    `json:"summary"`
	Provider    string    `json:"provider"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Metric is one labeled, display-formatted value in an overview group.
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StockOverview is the display-ready result of a full pipeline run: the four
// categorized data groups plus the analysis.
type StockOverview struct {
	Record           *StockRecord   `json:"record"`
	AnnualSummary    []AnnualRow    `json:"annual_summary"`
	QuarterlySummary []QuarterlyRow `json:"quarterly_summary"`
	Ratios           []Metric       `json:"ratios"`
	Shareholding     []Metric       `json:"shareholding"`
	Analysis         AnalysisResult `json:"analysis"`
}

// ChatReply is what one user turn produces.
type ChatReply struct {
	SessionID string         `json:"session_id"`
	Query     StockQuery     `json:"query"`
	Overview  *StockOverview `json:"overview,omitempty"`
	Reply     string         `json:"reply"`
}
