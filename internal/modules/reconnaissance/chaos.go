package reconnaissance

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ChaosRunner runs the locally installed ProjectDiscovery chaos client.
// LookPath and Run default to os/exec and are replaced in tests.
type ChaosRunner struct {
	Binary   string
	LookPath func(file string) (string, error)
	Run      func(ctx context.Context, path string, args ...string) (string, error)
}

func NewChaosRunner(binary string) *ChaosRunner {
	return &ChaosRunner{
		Binary:   binary,
		LookPath: exec.LookPath,
		Run:      runCommand,
	}
}

// Available returns the resolved path of the chaos binary.
func (r *ChaosRunner) Available() (string, bool) {
	if r == nil || r.Binary == "" || r.LookPath == nil {
		return "", false
	}
	path, err := r.LookPath(r.Binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// Subdomains runs `chaos -d <domain> -key <key> -silent` and returns stdout.
func (r *ChaosRunner) Subdomains(ctx context.Context, domain, key string) (string, error) {
	path, ok := r.Available()
	if !ok {
		return "", fmt.Errorf("%s not found in PATH", r.Binary)
	}
	return r.Run(ctx, path, "-d", domain, "-key", key, "-silent")
}

func runCommand(ctx context.Context, path string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", path, err, msg)
		}
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return stdout.String(), nil
}
