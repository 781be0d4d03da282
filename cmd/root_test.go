package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so one test's arguments
// do not leak into the next run of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	// Keep the developer's own config and keys out of the run.
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{"SHODAN_API", "CENSYS_ID", "CENSYS_SECRET", "VT_API"} {
		t.Setenv(name, "")
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--no-banner", "--no-color"}, args...))
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTargetFlagsAreExclusive(t *testing.T) {
	_, _, err := executeCommand(t, "--target", "8.8.8.8", "-l", "targets.txt", "--all")
	if err == nil {
		t.Fatal("Expected --target and --target_list together to fail")
	}
	if !strings.Contains(err.Error(), "target_list") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestTargetRequired(t *testing.T) {
	if _, _, err := executeCommand(t, "--all"); err == nil {
		t.Error("Expected an error without --target or --target_list")
	}
}

func TestSearchTypeAndAllAreExclusive(t *testing.T) {
	if _, _, err := executeCommand(t, "--target", "8.8.8.8", "--all", "--search_type", "shodan"); err == nil {
		t.Error("Expected --search_type and --all together to fail")
	}
	if _, _, err := executeCommand(t, "--target", "8.8.8.8"); err == nil {
		t.Error("Expected an error without --search_type or --all")
	}
}

func TestInvalidTargetIsNotFatal(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "--target", "not_a_target", "--all")
	if err != nil {
		t.Fatalf("Invalid target must not fail the run: %v", err)
	}
	if stdout != "" {
		t.Errorf("Expected no results, got %q", stdout)
	}
	if !strings.Contains(stderr, "invalid target") {
		t.Errorf("Expected the invalid target on stderr, got %q", stderr)
	}
}

func TestMissingCredentialIsReported(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "--target", "8.8.8.8", "--search_type", "shodan,nope")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("Expected no results, got %q", stdout)
	}
	for _, want := range []string{"Shodan: error: missing credential: SHODAN_API not set", "nope: error: unknown provider"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("Expected %q on stderr, got %q", want, stderr)
		}
	}
}

func TestUnreadableTargetListIsFatal(t *testing.T) {
	_, _, err := executeCommand(t, "-l", filepath.Join(t.TempDir(), "missing.txt"), "--all")
	if err == nil {
		t.Error("Expected an unreadable target list to fail the run")
	}
}

func TestOutputFileIsTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("old results\n"), 0644); err != nil {
		t.Fatalf("Failed to seed output: %v", err)
	}
	if _, _, err := executeCommand(t, "--target", "not_a_target", "--all", "-o", path); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected an empty output file, got %q", data)
	}
}

func TestProvidersCommand(t *testing.T) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--no-banner", "providers", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("Expected an explicit missing config file to fail")
	}

	stdout, _, err := executeCommand(t, "providers")
	if err != nil {
		t.Fatalf("providers failed: %v", err)
	}
	for _, want := range []string{"shodan", "SHODAN_API", "missing SHODAN_API", "internetdb", "ready", "CENSYS_ID, CENSYS_SECRET"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("providers output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rustrecon", "config.yaml")
	if _, _, err := executeCommand(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file at %s: %v", path, err)
	}
	if _, _, err := executeCommand(t, "--config", path, "config", "init"); err == nil {
		t.Error("Expected config init to refuse overwriting")
	}
}

func TestRunReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if _, _, err := executeCommand(t, "--target", "not_a_target", "--all", "--report", path, "--summary"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected a report file: %v", err)
	}
	if !strings.Contains(string(data), `"target": "not_a_target"`) {
		t.Errorf("Report does not mention the target:\n%s", data)
	}
}
