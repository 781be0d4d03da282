// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	// Register every provider client.
	_ "github.com/xBurningGiraffe/rustrecon/internal/modules/reconnaissance"
)

var (
	verbose    bool
	logLevel   string
	noColor    bool
	noBanner   bool
	configPath string
	version    = "1.0.0"
)

// rootCmd runs a search when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "rustrecon",
	Short: "Query OSINT search engines for an IP address or domain.",
	Long: `rustrecon sends a target (IPv4, IPv6 or domain name) to a set of
reconnaissance APIs: Shodan, Censys, FullHunt, ProjectDiscovery Chaos,
CriminalIP, Hunter.io, Netlas, ZoomEye, InternetDB, VirusTotal and Cisco
Investigate. Each provider's JSON answer is printed under its name, or
written to a file with -o.

API keys are read from the environment (SHODAN_API, CENSYS_ID, ...) and,
for unset variables, from the config file.`,
	Example: `  rustrecon --target 8.8.8.8 --search_type shodan,internetdb
  rustrecon --target example.com -a -o example.txt
  rustrecon -l targets.txt --search_type vt --search_type censys`,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if verbose {
			level = "debug"
		}
		logger.SetupLogger(level)

		if noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stderr) {
			color.NoColor = true
			logger.DisableColors()
		}
		if !noBanner {
			printBanner(cmd.ErrOrStderr())
		}
	},
	RunE: runSearch,
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the default config file when it exists.
func loadConfig() (*core.Config, error) {
	if configPath != "" {
		cfg, err := core.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := core.LoadConfigIfExists(core.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printBanner(w io.Writer) {
	banner := `
                 _
 _ __ _   _ ___| |_ _ __ ___  ___ ___  _ __
| '__| | | / __| __| '__/ _ \/ __/ _ \| '_ \
| |  | |_| \__ \ |_| | |  __/ (_| (_) | | | |
|_|   \__,_|___/\__|_|  \___|\___\___/|_| |_|
`
	color.New(color.FgCyan).Fprintln(w, banner)
	color.New(color.FgMagenta).Fprintf(w, "rustrecon v%s - OSINT search engine dispatcher\n\n", version)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error.")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output.")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the startup banner.")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML or JSON, default ~/.rustrecon/config.yaml)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}
