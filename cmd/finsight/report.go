package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/app"
	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/export"
	"github.com/newthinker/finsight/internal/logger"
)

var (
	reportWindow     string
	reportFormat     string
	reportOutput     string
	reportCommentary bool
	reportTimeout    time.Duration
)

// appOptions are applied before command-specific options when building the app.
var appOptions []app.Option

var reportCmd = &cobra.Command{
	Use:   "report TICKER [TICKER...]",
	Short: "Compare up to three companies against the benchmark",
	Long: `Fetch statements and price history for the given companies, compute
ratios and return series, and print the comparison.

Companies may be given by ticker or by display name:
  finsight report AAPL MSFT
  finsight report Apple "Amazon" --window 5y --format xlsx -o cmp.xlsx`,
	Args: cobra.RangeArgs(1, analysis.MaxCompanies),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportWindow, "window", "w", "", "lookback window: 1y, 2y or 5y (default from config)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text, json or xlsx")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default stdout; required for xlsx)")
	reportCmd.Flags().BoolVar(&reportCommentary, "commentary", true, "attach LLM commentary when a provider is configured")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 2*time.Minute, "overall time limit")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	format := strings.ToLower(reportFormat)
	switch format {
	case "text", "json":
	case "xlsx":
		if reportOutput == "" {
			return fmt.Errorf("xlsx output requires --output")
		}
	default:
		return fmt.Errorf("unknown format %q", reportFormat)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	opts := append([]app.Option{}, appOptions...)
	if !reportCommentary {
		opts = append(opts, app.WithLLM(nil))
	}
	a, err := app.New(cfg, log, opts...)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	r, err := a.Generate(ctx, analysis.Selection{Tickers: args, Window: core.Window(reportWindow)})
	if err != nil {
		return err
	}
	log.Debug("report generated", zap.String("id", r.ID), zap.String("status", r.Status()))

	out := cmd.OutOrStdout()
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeReport(out, format, r); err != nil {
		return err
	}
	if reportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s report %s to %s\n", format, r.ID, reportOutput)
	}
	return nil
}

func writeReport(w io.Writer, format string, r *analysis.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "xlsx":
		return export.WriteXLSX(w, r)
	default:
		return export.WriteReport(w, r)
	}
}
