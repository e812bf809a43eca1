package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newthinker/finsight/internal/core"
	"github.com/newthinker/finsight/internal/logger"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the selectable companies and windows",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTICKER")
	for _, c := range cfg.Analysis.Companies {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Symbol)
	}
	fmt.Fprintf(tw, "%s\t%s\t(benchmark)\n", cfg.Analysis.Benchmark.Name, cfg.Analysis.Benchmark.Symbol)
	if err := tw.Flush(); err != nil {
		return err
	}

	windows := make([]string, 0, 3)
	for _, w := range core.Windows() {
		windows = append(windows, string(w))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nWindows: %v (default %s)\n", windows, cfg.Analysis.DefaultWindow)
	return nil
}
