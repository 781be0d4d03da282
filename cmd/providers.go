package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List search providers, accepted target types and credential status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry := core.DefaultRegistry()
		creds := core.ResolveCredentials(cfg, registry.CredentialNames(), os.LookupEnv)

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Header", "Targets", "Credentials", "Status", "Aliases"})
		for _, p := range registry.List() {
			spec := p.Spec()
			status := "ready"
			if missing := creds.Missing(spec.CredentialEnvVars...); len(missing) > 0 {
				status = "missing " + strings.Join(missing, ", ")
			}
			envVars := strings.Join(spec.CredentialEnvVars, ", ")
			if envVars == "" {
				envVars = "-"
			}
			t.AppendRow(table.Row{spec.Name, spec.Header(), spec.Targets, envVars, status, strings.Join(spec.Aliases, ", ")})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
