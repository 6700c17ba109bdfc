package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"investiq/internal/config"
	"investiq/pkg/investiq"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "investiq",
		Short:         "Indian stock analysis from the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var asJSON bool
	var noAI bool
	var timeout time.Duration

	newCore := func() *investiq.Core {
		cfg := config.Load()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if os.Getenv("INVESTIQ_LOG_LEVEL") != "" {
			logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
		opts := investiq.Options{
			Logger:         logger,
			MaxAttempts:    cfg.FetchAttempts,
			RequestTimeout: cfg.FetchTimeout,
		}
		if !noAI {
			opts.Primary = cfg.Primary
			opts.Secondary = cfg.Secondary
		}
		return investiq.New(opts)
	}

	var askCmd = &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask about a stock in plain language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			core := newCore()
			reply, err := core.Ask(ctx, "", strings.Join(args, " "))
			if err != nil {
				fmt.Fprintln(os.Stderr, reply.Reply)
				return err
			}
			if asJSON {
				return printJSON(reply)
			}
			fmt.Println(reply.Reply)
			return nil
		},
	}

	var analyzeCmd = &cobra.Command{
		Use:   "analyze [symbol or text]",
		Short: "Run the full analysis pipeline for a stock",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			core := newCore()
			resolution, err := core.Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			overview, err := core.Analyze(ctx, resolution.Ticker)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(overview)
			}
			printOverview(overview)
			return nil
		},
	}

	var fetchCmd = &cobra.Command{
		Use:   "fetch [symbol]",
		Short: "Fetch raw fundamentals for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			core := newCore()
			resolution, err := core.Resolve(args[0])
			if err != nil {
				return err
			}
			rec, err := core.Fetch(ctx, resolution.Ticker)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}

	var resolveCmd = &cobra.Command{
		Use:   "resolve [text]",
		Short: "Show how input text maps to a ticker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			core := newCore()
			resolution, err := core.Resolve(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(resolution)
			}
			fmt.Printf("%s (%s)\n", resolution.Ticker, resolution.Method)
			return nil
		},
	}

	var suggestCmd = &cobra.Command{
		Use:   "suggest",
		Short: "List common symbols",
		RunE: func(c *cobra.Command, args []string) error {
			symbols := investiq.StockSuggestions()
			if asJSON {
				return printJSON(symbols)
			}
			fmt.Println(strings.Join(symbols, " "))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&noAI, "no-ai", false, "Skip AI providers and use the built-in analysis")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall command timeout")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(suggestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printOverview(o *investiq.StockOverview) {
	rec := o.Record
	fmt.Printf("%s (%s)\n\n", rec.CompanyName, rec.Ticker)

	if len(o.Ratios) > 0 {
		fmt.Println("Key Ratios")
		for _, m := range o.Ratios {
			fmt.Printf("  %-22s %s\n", m.Name, m.Value)
		}
		fmt.Println()
	}
	if len(o.Shareholding) > 0 {
		fmt.Println("Shareholding Pattern")
		for _, m := range o.Shareholding {
			fmt.Printf("  %-22s %s\n", m.Name, m.Value)
		}
		fmt.Println()
	}
	if len(o.AnnualSummary) > 0 {
		fmt.Println("Annual Results")
		for _, row := range o.AnnualSummary {
			fmt.Printf("  %-8s revenue=%s net_income=%s\n",
				row.Year, optCurrency(row.TotalRevenue), optCurrency(row.NetIncome))
		}
		fmt.Println()
	}
	if len(o.QuarterlySummary) > 0 {
		fmt.Println("Quarterly Results")
		for _, row := range o.QuarterlySummary {
			fmt.Printf("  %-8s revenue=%s net_income=%s\n",
				row.Quarter, optCurrency(row.TotalRevenue), optCurrency(row.NetIncome))
		}
		fmt.Println()
	}

	fmt.Printf("Insights (%s)\n", o.Analysis.Provider)
	for _, insight := range o.Analysis.Insights {
		fmt.Printf("  - %s\n", insight)
	}
	if o.Analysis.Summary != "" {
		fmt.Printf("\n%s\n", o.Analysis.Summary)
	}
}

func optCurrency(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return investiq.FormatCurrency(*v)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
