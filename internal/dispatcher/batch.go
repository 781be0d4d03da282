package dispatcher

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/loader"
)

// RunBatch reads a target list and dispatches every non-blank line. Only a
// list that cannot be opened or read returns an error.
func (d *Dispatcher) RunBatch(ctx context.Context, path string, sel Selection) ([]*core.TargetReport, error) {
	targets, err := loader.ReadTargets(path)
	if err != nil {
		logger.GetLogger().Errorf("Failed to load target list: %v", err)
		return nil, err
	}
	logger.GetLogger().Infof("Loaded %d targets from %s", len(targets), path)
	return d.RunTargets(ctx, targets, sel), nil
}

// RunTargets dispatches targets in order. A target that fails entirely is
// logged and the loop moves on; cancelling ctx stops before the next target.
func (d *Dispatcher) RunTargets(ctx context.Context, targets []string, sel Selection) []*core.TargetReport {
	log := logger.GetLogger()
	reports := make([]*core.TargetReport, 0, len(targets))
	for i, raw := range targets {
		if err := ctx.Err(); err != nil {
			log.Warnf("Stopping after %d of %d targets: %v", i, len(targets), err)
			break
		}
		report, err := d.Run(ctx, raw, sel)
		reports = append(reports, report)
		if err != nil {
			continue
		}
		failures := report.FailureMessages()
		if len(failures) == 0 {
			continue
		}
		entry := log.WithFields(logrus.Fields{"target": report.Target.Value, "failures": len(failures)})
		if len(report.Results) > 0 && report.Succeeded() == 0 {
			entry.Warnf("All %d providers failed: %s", len(report.Results), strings.Join(failures, "; "))
		} else {
			entry.Infof("%d of %d providers answered; failures: %s", report.Succeeded(), len(report.Results), strings.Join(failures, "; "))
		}
	}
	return reports
}
