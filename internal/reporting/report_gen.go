// internal/reporting/report_gen.go
package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
)

// ProviderStatus is one provider's outcome for a target.
type ProviderStatus struct {
	Provider  string `json:"provider"`
	Header    string `json:"header"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Bytes     int    `json:"bytes"`
}

type TargetStatus struct {
	Target    string           `json:"target"`
	Kind      string           `json:"kind"`
	Error     string           `json:"error,omitempty"`
	Skipped   []string         `json:"skipped,omitempty"`
	Failures  []string         `json:"failures,omitempty"`
	Providers []ProviderStatus `json:"providers"`
}

// RunReport is the machine-readable account of one invocation. Provider
// bodies are not repeated here; they go to the result output.
type RunReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Targets     []TargetStatus `json:"targets"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
}

// ReportGenerator turns dispatcher reports into a RunReport.
type ReportGenerator struct {
	reports []*core.TargetReport
	log     *logrus.Logger
	now     func() time.Time
}

func NewReportGenerator(reports []*core.TargetReport) *ReportGenerator {
	return &ReportGenerator{
		reports: reports,
		log:     logger.GetLogger(),
		now:     time.Now,
	}
}

// Build collects per-target and per-provider status.
func (r *ReportGenerator) Build() RunReport {
	run := RunReport{GeneratedAt: r.now().UTC(), Targets: make([]TargetStatus, 0, len(r.reports))}
	for _, rep := range r.reports {
		ts := TargetStatus{
			Target:    rep.Target.Value,
			Kind:      rep.Target.Kind.String(),
			Providers: make([]ProviderStatus, 0, len(rep.Results)),
		}
		if rep.Err != nil {
			ts.Target = rep.Target.Raw
			ts.Error = rep.Err.Error()
			run.Failed++
		}
		for _, err := range rep.Skipped {
			ts.Skipped = append(ts.Skipped, err.Error())
		}
		ts.Failures = rep.FailureMessages()
		for _, res := range rep.Results {
			ps := ProviderStatus{
				Provider:  res.Provider.Name,
				Header:    res.Provider.Header(),
				OK:        res.OK(),
				ElapsedMS: res.Elapsed.Milliseconds(),
				Bytes:     len(res.Body),
			}
			if res.Err != nil {
				ps.Error = res.Err.Error()
				if kind, ok := core.KindOf(res.Err); ok {
					ps.ErrorKind = kind.String()
				}
				run.Failed++
			} else {
				run.Succeeded++
			}
			ts.Providers = append(ts.Providers, ps)
		}
		run.Targets = append(run.Targets, ts)
	}
	return run
}

// GenerateJSONReport writes the run report to outputPath.
func (r *ReportGenerator) GenerateJSONReport(outputPath string) error {
	r.log.Infof("Generating JSON report and saving to %s...", outputPath)

	data, err := json.MarshalIndent(r.Build(), "", "  ")
	if err != nil {
		r.log.Errorf("Failed to marshal run report: %v", err)
		return fmt.Errorf("failed to prepare report data: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		r.log.Errorf("Failed to write JSON report to %s: %v", outputPath, err)
		return fmt.Errorf("%w: %v", core.ErrFileWrite, err)
	}

	r.log.Info("JSON report generated successfully.")
	return nil
}
