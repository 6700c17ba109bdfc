package investiq

import (
	"regexp"
	"strings"
)

// Resolution methods, recorded on StockQuery for observability.
const (
	ResolveMethodTable   = "table"
	ResolveMethodTicker  = "ticker"
	ResolveMethodPattern = "pattern"
	ResolveMethodSession = "session"
)

const (
	nseSuffix = ".NS"
	bseSuffix = ".BO"
)

// symbolTable maps common Indian company names and aliases to NSE tickers.
// First match wins; there is no ambiguity resolution. Keys are upper-case.
var symbolTable = map[string]string{
	"TCS":        "TCS.NS",
	"INFY":       "INFY.NS",
	"INFOSYS":    "INFY.NS",
	"RELIANCE":   "RELIANCE.NS",
	"HDFCBANK":   "HDFCBANK.NS",
	"HDFC":       "HDFCBANK.NS",
	"ITC":        "ITC.NS",
	"SBIN":       "SBIN.NS",
	"SBI":        "SBIN.NS",
	"BHARTIARTL": "BHARTIARTL.NS",
	"AIRTEL":     "BHARTIARTL.NS",
	"ICICIBANK":  "ICICIBANK.NS",
	"ICICI":      "ICICIBANK.NS",
	"LT":         "LT.NS",
	"LARSEN":     "LT.NS",
	"HCLTECH":    "HCLTECH.NS",
	"HCL":        "HCLTECH.NS",
	"WIPRO":      "WIPRO.NS",
	"ONGC":       "ONGC.NS",
	"NTPC":       "NTPC.NS",
	"POWERGRID":  "POWERGRID.NS",
	"COALINDIA":  "COALINDIA.NS",
	"MARUTI":     "MARUTI.NS",
	"BAJFINANCE": "BAJFINANCE.NS",
	"BAJAJ":      "BAJFINANCE.NS",
	"SUNPHARMA":  "SUNPHARMA.NS",
	"DRREDDY":    "DRREDDY.NS",
	"NESTLEIND":  "NESTLEIND.NS",
	"NESTLE":     "NESTLEIND.NS",
	"HINDUNILVR": "HINDUNILVR.NS",
	"HUL":        "HINDUNILVR.NS",
	"ULTRACEMCO": "ULTRACEMCO.NS",
	"ADANIPORTS": "ADANIPORTS.NS",
	"ADANI":      "ADANIPORTS.NS",
}

// Pre-compiled extraction patterns, tried in order. Each captures one
// alphabetic token from a recognized conversational shape.
var resolvePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)analyze\s+stock:\s*([A-Za-z]+)`),
	regexp.MustCompile(`(?i)analyze\s+([A-Za-z]+)`),
	regexp.MustCompile(`(?i)stock:\s*([A-Za-z]+)`),
	regexp.MustCompile(`(?i)^([A-Za-z]+)$`),
	regexp.MustCompile(`(?i)([A-Za-z]+)\s+stock`),
	regexp.MustCompile(`(?i)([A-Za-z]+)\s+analysis`),
}

var reExchangeTicker = regexp.MustCompile(`(?i)^([A-Za-z]{2,10})\.(NS|BO)$`)

// Resolution is the outcome of mapping free text to a canonical ticker.
type Resolution struct {
	Ticker string `json:"ticker"`
	Method string `json:"method"`
}

// Resolver maps free-text user input to an exchange-qualified ticker.
// It performs no network calls.
type Resolver struct{}

// NewResolver returns a Resolver backed by the static symbol table.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve applies, in order: exact table match on the whole input, pattern
// extraction of a 2-10 character alphabetic token (then table match on the
// token), and the default NSE suffix rule. It returns ErrCodeSymbolNotFound
// when nothing matches; it never guesses beyond the suffix rule.
func (r *Resolver) Resolve(text string) (Resolution, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return Resolution{}, NewError(ErrCodeSymbolNotFound, "empty input")
	}

	upper := strings.ToUpper(cleaned)
	if ticker, ok := symbolTable[upper]; ok {
		return Resolution{Ticker: ticker, Method: ResolveMethodTable}, nil
	}
	if m := reExchangeTicker.FindStringSubmatch(upper); m != nil {
		return Resolution{Ticker: upper, Method: ResolveMethodTicker}, nil
	}

	token := extractSymbolToken(cleaned)
	if token == "" {
		return Resolution{}, NewError(ErrCodeSymbolNotFound, "no symbol candidate in input")
	}
	if ticker, ok := symbolTable[token]; ok {
		return Resolution{Ticker: ticker, Method: ResolveMethodTable}, nil
	}
	return Resolution{Ticker: token + nseSuffix, Method: ResolveMethodPattern}, nil
}

// extractSymbolToken pulls a candidate symbol out of conversational input.
// Returns "" when no pattern yields a plausible 2-10 letter token.
func extractSymbolToken(input string) string {
	for _, pattern := range resolvePatterns {
		m := pattern.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		token := strings.ToUpper(strings.TrimSpace(m[1]))
		if isSymbolToken(token) {
			return token
		}
	}

	// Whole input with spaces stripped may itself be a symbol.
	compact := strings.ToUpper(strings.ReplaceAll(input, " ", ""))
	if isSymbolToken(compact) {
		return compact
	}
	return ""
}

func isSymbolToken(token string) bool {
	if len(token) < 2 || len(token) > 10 {
		return false
	}
	for _, r := range token {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// StockSuggestions returns common Indian tickers for UI hints.
func StockSuggestions() []string {
	return []string{
		"TCS", "INFY", "RELIANCE", "HDFCBANK", "ITC", "SBIN", "BHARTIARTL",
		"ICICIBANK", "LT", "HCLTECH", "WIPRO", "ONGC", "NTPC", "MARUTI",
		"BAJFINANCE", "SUNPHARMA", "NESTLEIND", "HINDUNILVR", "ULTRACEMCO", "ADANIPORTS",
	}
}
