// cmd/recon.go
package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/dispatcher"
	"github.com/xBurningGiraffe/rustrecon/internal/modules/reconnaissance"
	"github.com/xBurningGiraffe/rustrecon/internal/output"
	"github.com/xBurningGiraffe/rustrecon/internal/reporting"
)

var (
	searchTarget   string
	targetList     string
	searchTypes    []string
	searchAll      bool
	outputPath     string
	timeoutSeconds int
	concurrency    int
	showSummary    bool
	reportPath     string
)

// runSearch dispatches --target or every line of --target_list. Provider
// failures are printed and never change the exit code.
func runSearch(cmd *cobra.Command, args []string) error {
	sel := dispatcher.Selection{All: searchAll, Names: dispatcher.ParseNames(searchTypes)}
	if !sel.All && len(sel.Names) == 0 {
		return errors.New("--search_type needs at least one provider name")
	}
	cmd.SilenceUsage = true
	log := logger.GetLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	timeout := cfg.RequestTimeout()
	if cmd.Flags().Changed("timeout") {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	reconnaissance.SetTimeout(timeout)
	reconnaissance.UseChaosBinary(cfg.Chaos())

	workers := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		workers = concurrency
	}

	registry := core.DefaultRegistry()
	creds := core.ResolveCredentials(cfg, registry.CredentialNames(), os.LookupEnv)
	log.Debugf("%d of %d credentials set", len(creds), len(registry.CredentialNames()))

	var sink output.Sink = output.NewConsoleSink(cmd.OutOrStdout())
	if outputPath != "" {
		fileSink, err := output.NewFileSink(outputPath)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sink = fileSink
	}

	progress := core.NewProgress(cmd.ErrOrStderr(), outputPath != "" && isTerminal(os.Stderr))
	defer progress.Stop()

	d := dispatcher.New(registry, creds, sink, dispatcher.Options{
		Concurrency: workers,
		Status:      cmd.ErrOrStderr(),
		OnProvider:  progress.Update,
	})

	var reports []*core.TargetReport
	if targetList != "" {
		reports, err = d.RunBatch(cmd.Context(), targetList, sel)
		if err != nil {
			return err
		}
	} else {
		// An invalid target is reported by the dispatcher and is not fatal.
		report, _ := d.Run(cmd.Context(), searchTarget, sel)
		reports = append(reports, report)
	}
	progress.Stop()

	if outputPath != "" {
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", outputPath)
	}
	if showSummary {
		core.RenderSummary(cmd.ErrOrStderr(), reports)
	}
	if reportPath != "" {
		if err := reporting.NewReportGenerator(reports).GenerateJSONReport(reportPath); err != nil {
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "report: error: %v\n", err)
		}
	}
	log.Debugf("Search finished for %d targets", len(reports))
	return nil
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&searchTarget, "target", "", "Target IP address or domain name.")
	flags.StringVarP(&targetList, "target_list", "l", "", "File with one target per line.")
	flags.StringSliceVar(&searchTypes, "search_type", nil, "Providers to query, repeatable or comma separated; see the providers command.")
	flags.BoolVarP(&searchAll, "all", "a", false, "Query every provider that accepts the target type.")
	flags.StringVarP(&outputPath, "output", "o", "", "Write results to this file (truncated at start) instead of stdout.")
	flags.IntVar(&timeoutSeconds, "timeout", int(core.DefaultRequestTimeout/time.Second), "Per-request timeout in seconds.")
	flags.IntVar(&concurrency, "concurrency", 1, "Providers queried in parallel per target; output order is unchanged.")
	flags.BoolVar(&showSummary, "summary", false, "Print a status table after the run.")
	flags.StringVar(&reportPath, "report", "", "Write a JSON run report (per-provider status, no bodies) to this file.")

	rootCmd.MarkFlagsMutuallyExclusive("target", "target_list")
	rootCmd.MarkFlagsOneRequired("target", "target_list")
	rootCmd.MarkFlagsMutuallyExclusive("search_type", "all")
	rootCmd.MarkFlagsOneRequired("search_type", "all")
}
