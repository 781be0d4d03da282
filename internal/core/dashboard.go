package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Progress shows a spinner on stderr while targets are queried. A disabled
// Progress is a no-op, so callers never need to check.
type Progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	start   time.Time
}

// NewProgress returns a spinner writing to w when enabled is true.
func NewProgress(w io.Writer, enabled bool) *Progress {
	p := &Progress{start: time.Now()}
	if enabled {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return p
}

// Update sets the spinner suffix, starting it on first use.
func (p *Progress) Update(target, provider string) {
	if p == nil || p.spinner == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Suffix = fmt.Sprintf(" %s → %s (%s)", target, provider, time.Since(p.start).Truncate(time.Second))
	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

// Stop halts the spinner.
func (p *Progress) Stop() {
	if p == nil || p.spinner == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()
}

// RenderSummary writes a per-target, per-provider status table.
func RenderSummary(w io.Writer, reports []*TargetReport) {
	if w == nil {
		w = os.Stderr
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Kind", "Provider", "Status", "Elapsed"})

	okCount, failCount := 0, 0
	for _, rep := range reports {
		if rep.Err != nil {
			t.AppendRow(table.Row{rep.Target.Raw, rep.Target.Kind, "-", formatStatus(rep.Err), "-"})
			failCount++
			continue
		}
		for _, err := range rep.Skipped {
			t.AppendRow(table.Row{rep.Target.Value, rep.Target.Kind, "-", formatStatus(err), "-"})
		}
		for _, res := range rep.Results {
			if res.OK() {
				okCount++
			} else {
				failCount++
			}
			t.AppendRow(table.Row{
				rep.Target.Value,
				rep.Target.Kind,
				res.Provider.Header(),
				formatStatus(res.Err),
				res.Elapsed.Round(time.Millisecond),
			})
		}
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("✔ %d | ✘ %d", okCount, failCount), ""})
	t.Render()
}

func formatStatus(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}
