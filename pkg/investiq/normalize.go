package investiq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// yahooValue decodes Yahoo's numeric shapes defensively. The quoteSummary API
// wraps numbers as {"raw": n, "fmt": "..."} and occasionally emits bare
// numbers, empty objects, or string placeholders. Anything that is not a
// finite number decodes to a nil raw value, never to zero.
type yahooValue struct {
	raw *float64
}

func (v *yahooValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Raw any `json:"raw"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		v.raw = coerceFloat(obj.Raw)
		return nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	v.raw = coerceFloat(value)
	return nil
}

func (v yahooValue) val() *float64 {
	return v.raw
}

// coerceFloat converts a decoded JSON value to a float pointer. Absent,
// non-numeric, and "N/A" values map to nil.
func coerceFloat(value any) *float64 {
	switch typed := value.(type) {
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return nil
		}
		f := typed
		return &f
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" || strings.EqualFold(trimmed, "n/a") {
			return nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

type yahooOfficer struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type yahooStatement struct {
	EndDate          yahooValue `json:"endDate"`
	TotalRevenue     yahooValue `json:"totalRevenue"`
	GrossProfit      yahooValue `json:"grossProfit"`
	OperatingIncome  yahooValue `json:"operatingIncome"`
	NetIncome        yahooValue `json:"netIncome"`
	InterestExpense  yahooValue `json:"interestExpense"`
	IncomeTaxExpense yahooValue `json:"incomeTaxExpense"`
}

type yahooBalanceSheet struct {
	EndDate                 yahooValue `json:"endDate"`
	TotalAssets             yahooValue `json:"totalAssets"`
	TotalLiab               yahooValue `json:"totalLiab"`
	TotalStockholderEquity  yahooValue `json:"totalStockholderEquity"`
	ShortLongTermDebt       yahooValue `json:"shortLongTermDebt"`
	LongTermDebt            yahooValue `json:"longTermDebt"`
	Cash                    yahooValue `json:"cash"`
	TotalCurrentAssets      yahooValue `json:"totalCurrentAssets"`
	TotalCurrentLiabilities yahooValue `json:"totalCurrentLiabilities"`
}

type yahooCashflow struct {
	EndDate                               yahooValue `json:"endDate"`
	TotalCashFromOperatingActivities      yahooValue `json:"totalCashFromOperatingActivities"`
	TotalCashflowsFromInvestingActivities yahooValue `json:"totalCashflowsFromInvestingActivities"`
	TotalCashFromFinancingActivities      yahooValue `json:"totalCashFromFinancingActivities"`
	CapitalExpenditures                   yahooValue `json:"capitalExpenditures"`
}

// yahooQuoteSummary is the subset of quoteSummary modules this fetcher reads.
type yahooQuoteSummary struct {
	Price *struct {
		LongName           string     `json:"longName"`
		ShortName          string     `json:"shortName"`
		RegularMarketPrice yahooValue `json:"regularMarketPrice"`
		MarketCap          yahooValue `json:"marketCap"`
	} `json:"price"`
	AssetProfile *struct {
		Sector              string         `json:"sector"`
		Industry            string         `json:"industry"`
		Country             string         `json:"country"`
		Website             string         `json:"website"`
		LongBusinessSummary string         `json:"longBusinessSummary"`
		FullTimeEmployees   yahooValue     `json:"fullTimeEmployees"`
		CompanyOfficers     []yahooOfficer `json:"companyOfficers"`
	} `json:"assetProfile"`
	SummaryDetail *struct {
		TrailingPE                   yahooValue `json:"trailingPE"`
		ForwardPE                    yahooValue `json:"forwardPE"`
		PriceToSalesTrailing12Months yahooValue `json:"priceToSalesTrailing12Months"`
		DividendYield                yahooValue `json:"dividendYield"`
		DividendRate                 yahooValue `json:"dividendRate"`
		FiftyTwoWeekHigh             yahooValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow              yahooValue `json:"fiftyTwoWeekLow"`
		PreviousClose                yahooValue `json:"previousClose"`
	} `json:"summaryDetail"`
	FinancialData *struct {
		CurrentPrice     yahooValue `json:"currentPrice"`
		ReturnOnEquity   yahooValue `json:"returnOnEquity"`
		ReturnOnAssets   yahooValue `json:"returnOnAssets"`
		DebtToEquity     yahooValue `json:"debtToEquity"`
		CurrentRatio     yahooValue `json:"currentRatio"`
		QuickRatio       yahooValue `json:"quickRatio"`
		ProfitMargins    yahooValue `json:"profitMargins"`
		OperatingMargins yahooValue `json:"operatingMargins"`
		RevenueGrowth    yahooValue `json:"revenueGrowth"`
		EarningsGrowth   yahooValue `json:"earningsGrowth"`
		TotalCash        yahooValue `json:"totalCash"`
		TotalDebt        yahooValue `json:"totalDebt"`
		FreeCashflow     yahooValue `json:"freeCashflow"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		PriceToBook             yahooValue `json:"priceToBook"`
		BookValue               yahooValue `json:"bookValue"`
		TrailingEps             yahooValue `json:"trailingEps"`
		ForwardEps              yahooValue `json:"forwardEps"`
		EnterpriseValue         yahooValue `json:"enterpriseValue"`
		EnterpriseToRevenue     yahooValue `json:"enterpriseToRevenue"`
		EnterpriseToEbitda      yahooValue `json:"enterpriseToEbitda"`
		SharesOutstanding       yahooValue `json:"sharesOutstanding"`
		HeldPercentInstitutions yahooValue `json:"heldPercentInstitutions"`
		HeldPercentInsiders     yahooValue `json:"heldPercentInsiders"`
	} `json:"defaultKeyStatistics"`
	IncomeStatementHistory *struct {
		IncomeStatementHistory []yahooStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	IncomeStatementHistoryQuarterly *struct {
		IncomeStatementHistory []yahooStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistoryQuarterly"`
	BalanceSheetHistory *struct {
		BalanceSheetStatements []yahooBalanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
	CashflowStatementHistory *struct {
		CashflowStatements []yahooCashflow `json:"cashflowStatements"`
	} `json:"cashflowStatementHistory"`
}

type yahooQuoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []yahooQuoteSummary `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type yahooChartEnvelope struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

const (
	maxAnnualRows    = 5
	maxQuarterlyRows = 8
)

// newStockRecordFromQuoteSummary is the normalization boundary for the Yahoo
// quoteSummary shape: everything the rest of the system sees comes through
// here. Percent ratios reported as fractions are scaled to percent; percent
// fields outside [0,100] are treated as absent.
func newStockRecordFromQuoteSummary(ticker string, qs *yahooQuoteSummary) *StockRecord {
	rec := &StockRecord{
		Ticker:    ticker,
		FetchedAt: time.Now(),
	}

	if p := qs.Price; p != nil {
		rec.CompanyName = firstNonEmpty(p.LongName, p.ShortName, ticker)
		rec.MarketCap = p.MarketCap.val()
		rec.CurrentPrice = p.RegularMarketPrice.val()
	}
	if rec.CompanyName == "" {
		rec.CompanyName = ticker
	}

	if a := qs.AssetProfile; a != nil {
		rec.Sector = a.Sector
		rec.Industry = a.Industry
		rec.Country = a.Country
		rec.Website = a.Website
		rec.BusinessSummary = a.LongBusinessSummary
		rec.Employees = a.FullTimeEmployees.val()
		rec.Chairman, rec.ManagingDir = extractOfficers(a.CompanyOfficers)
	}

	if s := qs.SummaryDetail; s != nil {
		rec.PERatio = firstValue(s.TrailingPE.val(), s.ForwardPE.val())
		rec.PriceToSales = s.PriceToSalesTrailing12Months.val()
		rec.DividendYield = asPercent(s.DividendYield.val(), true)
		rec.DividendPerShare = s.DividendRate.val()
		rec.FiftyTwoWeekHigh = s.FiftyTwoWeekHigh.val()
		rec.FiftyTwoWeekLow = s.FiftyTwoWeekLow.val()
		if rec.CurrentPrice == nil {
			rec.CurrentPrice = s.PreviousClose.val()
		}
	}

	if f := qs.FinancialData; f != nil {
		if rec.CurrentPrice == nil {
			rec.CurrentPrice = f.CurrentPrice.val()
		}
		rec.ROE = asPercent(f.ReturnOnEquity.val(), true)
		rec.ROCE = asPercent(f.ReturnOnAssets.val(), true)
		rec.DebtToEquity = f.DebtToEquity.val()
		rec.CurrentRatio = f.CurrentRatio.val()
		rec.QuickRatio = f.QuickRatio.val()
		rec.ProfitMargin = scalePercent(f.ProfitMargins.val())
		rec.OperatingMargin = scalePercent(f.OperatingMargins.val())
		rec.RevenueGrowth = scalePercent(f.RevenueGrowth.val())
		rec.EarningsGrowth = scalePercent(f.EarningsGrowth.val())
		rec.TotalCash = f.TotalCash.val()
		rec.TotalDebt = f.TotalDebt.val()
		rec.FreeCashFlow = f.FreeCashflow.val()
	}

	if k := qs.DefaultKeyStatistics; k != nil {
		rec.PBRatio = k.PriceToBook.val()
		rec.BookValue = k.BookValue.val()
		rec.EPS = firstValue(k.TrailingEps.val(), k.ForwardEps.val())
		rec.EnterpriseValue = k.EnterpriseValue.val()
		rec.EVToRevenue = k.EnterpriseToRevenue.val()
		rec.EVToEBITDA = k.EnterpriseToEbitda.val()

		institutions := asPercent(k.HeldPercentInstitutions.val(), true)
		insiders := asPercent(k.HeldPercentInsiders.val(), true)
		rec.PromoterHolding = insiders
		rec.FIIHolding = institutions
		rec.RetailHolding = retailHolding(institutions, insiders)
	}

	rec.Annual = buildAnnualRows(qs)
	rec.Quarterly = buildQuarterlyRows(qs)
	rec.BalanceSheet = buildBalanceSheetSummary(qs)
	rec.IncomeStatement = buildIncomeStatementSummary(qs)
	rec.CashFlow = buildCashFlowSummary(qs)

	return rec
}

func extractOfficers(officers []yahooOfficer) (chairman, managingDir string) {
	for _, officer := range officers {
		title := strings.ToLower(officer.Title)
		switch {
		case chairman == "" && strings.Contains(title, "chair"):
			chairman = officer.Name
		case managingDir == "" && (strings.Contains(title, "managing director") ||
			strings.Contains(title, "ceo") ||
			strings.Contains(title, "chief executive")):
			managingDir = officer.Name
		}
	}
	return chairman, managingDir
}

// hasPriceData reports whether the provider returned any usable price field.
// A summary without one is treated as "symbol not found".
func hasPriceData(qs *yahooQuoteSummary) bool {
	if f := qs.FinancialData; f != nil && f.CurrentPrice.val() != nil {
		return true
	}
	if p := qs.Price; p != nil && p.RegularMarketPrice.val() != nil {
		return true
	}
	if s := qs.SummaryDetail; s != nil && s.PreviousClose.val() != nil {
		return true
	}
	return false
}

// asPercent scales a fractional ratio to percent when scale is set and range
// checks the result. Percentages outside [0,100] are absent, not clamped.
func asPercent(v *float64, scale bool) *float64 {
	if v == nil {
		return nil
	}
	pct := *v
	if scale {
		pct *= 100
	}
	if pct < 0 || pct > 100 {
		return nil
	}
	return &pct
}

// scalePercent converts a fraction to percent without the [0,100] bound;
// margins and growth rates can legitimately be negative or above 100.
func scalePercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	pct := *v * 100
	return &pct
}

func retailHolding(institutions, insiders *float64) *float64 {
	if institutions == nil && insiders == nil {
		return nil
	}
	retail := 100.0
	if institutions != nil {
		retail -= *institutions
	}
	if insiders != nil {
		retail -= *insiders
	}
	if retail < 0 {
		retail = 0
	}
	return &retail
}

func firstValue(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func buildAnnualRows(qs *yahooQuoteSummary) []AnnualRow {
	if qs.IncomeStatementHistory == nil {
		return nil
	}
	statements := qs.IncomeStatementHistory.IncomeStatementHistory
	if len(statements) > maxAnnualRows {
		statements = statements[:maxAnnualRows]
	}

	balanceByYear := map[string]yahooBalanceSheet{}
	if qs.BalanceSheetHistory != nil {
		for _, bs := range qs.BalanceSheetHistory.BalanceSheetStatements {
			balanceByYear[fiscalYear(bs.EndDate)] = bs
		}
	}

	shares := sharesOutstandingOf(qs)
	rows := make([]AnnualRow, 0, len(statements))
	for _, st := range statements {
		year := fiscalYear(st.EndDate)
		row := AnnualRow{
			Year:         year,
			TotalRevenue: st.TotalRevenue.val(),
			NetIncome:    st.NetIncome.val(),
			EPS:          perShare(st.NetIncome.val(), shares),
		}
		if bs, ok := balanceByYear[year]; ok {
			row.TotalAssets = bs.TotalAssets.val()
			row.TotalDebt = totalDebtOf(bs)
		}
		rows = append(rows, row)
	}
	return rows
}

func buildQuarterlyRows(qs *yahooQuoteSummary) []QuarterlyRow {
	if qs.IncomeStatementHistoryQuarterly == nil {
		return nil
	}
	statements := qs.IncomeStatementHistoryQuarterly.IncomeStatementHistory
	if len(statements) > maxQuarterlyRows {
		statements = statements[:maxQuarterlyRows]
	}
	shares := sharesOutstandingOf(qs)
	rows := make([]QuarterlyRow, 0, len(statements))
	for _, st := range statements {
		rows = append(rows, QuarterlyRow{
			Quarter:      fiscalQuarter(st.EndDate),
			TotalRevenue: st.TotalRevenue.val(),
			NetIncome:    st.NetIncome.val(),
			EPS:          perShare(st.NetIncome.val(), shares),
		})
	}
	return rows
}

func buildBalanceSheetSummary(qs *yahooQuoteSummary) *BalanceSheetSummary {
	if qs.BalanceSheetHistory == nil || len(qs.BalanceSheetHistory.BalanceSheetStatements) == 0 {
		return nil
	}
	latest := qs.BalanceSheetHistory.BalanceSheetStatements[0]
	return &BalanceSheetSummary{
		TotalAssets:        latest.TotalAssets.val(),
		TotalLiabilities:   latest.TotalLiab.val(),
		ShareholdersEquity: latest.TotalStockholderEquity.val(),
		TotalDebt:          totalDebtOf(latest),
		CashAndEquivalents: latest.Cash.val(),
		CurrentAssets:      latest.TotalCurrentAssets.val(),
		CurrentLiabilities: latest.TotalCurrentLiabilities.val(),
	}
}

func buildIncomeStatementSummary(qs *yahooQuoteSummary) *IncomeStatementSummary {
	if qs.IncomeStatementHistory == nil || len(qs.IncomeStatementHistory.IncomeStatementHistory) == 0 {
		return nil
	}
	latest := qs.IncomeStatementHistory.IncomeStatementHistory[0]
	return &IncomeStatementSummary{
		TotalRevenue:    latest.TotalRevenue.val(),
		GrossProfit:     latest.GrossProfit.val(),
		OperatingIncome: latest.OperatingIncome.val(),
		NetIncome:       latest.NetIncome.val(),
		InterestExpense: latest.InterestExpense.val(),
		TaxProvision:    latest.IncomeTaxExpense.val(),
	}
}

func buildCashFlowSummary(qs *yahooQuoteSummary) *CashFlowSummary {
	if qs.CashflowStatementHistory == nil || len(qs.CashflowStatementHistory.CashflowStatements) == 0 {
		return nil
	}
	latest := qs.CashflowStatementHistory.CashflowStatements[0]
	return &CashFlowSummary{
		OperatingCashFlow:   latest.TotalCashFromOperatingActivities.val(),
		InvestingCashFlow:   latest.TotalCashflowsFromInvestingActivities.val(),
		FinancingCashFlow:   latest.TotalCashFromFinancingActivities.val(),
		CapitalExpenditures: latest.CapitalExpenditures.val(),
	}
}

func sharesOutstandingOf(qs *yahooQuoteSummary) *float64 {
	if k := qs.DefaultKeyStatistics; k != nil {
		return k.SharesOutstanding.val()
	}
	return nil
}

// perShare divides a statement total by shares outstanding. Per-period share
// counts are not reported, so the current count stands in for every period.
func perShare(total, shares *float64) *float64 {
	if total == nil || shares == nil || *shares == 0 {
		return nil
	}
	v := *total / *shares
	return &v
}

// totalDebtOf sums short and long term debt when either is reported.
func totalDebtOf(bs yahooBalanceSheet) *float64 {
	short := bs.ShortLongTermDebt.val()
	long := bs.LongTermDebt.val()
	if short == nil && long == nil {
		return nil
	}
	total := 0.0
	if short != nil {
		total += *short
	}
	if long != nil {
		total += *long
	}
	return &total
}

func fiscalYear(endDate yahooValue) string {
	ts := endDate.val()
	if ts == nil {
		return "unknown"
	}
	return time.Unix(int64(*ts), 0).UTC().Format("2006")
}

func fiscalQuarter(endDate yahooValue) string {
	ts := endDate.val()
	if ts == nil {
		return "unknown"
	}
	t := time.Unix(int64(*ts), 0).UTC()
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())+2)/3)
}
