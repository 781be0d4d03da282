package core

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

// QueryResult is the outcome of one (target, provider) query. Exactly one
// of Body and Err is meaningful.
type QueryResult struct {
	Provider ProviderSpec
	Target   target.Target
	Body     string
	Err      error
	Elapsed  time.Duration
}

// OK reports whether the provider returned a body.
func (r QueryResult) OK() bool {
	return r.Err == nil
}

// TargetReport summarizes one dispatcher run.
type TargetReport struct {
	Target  target.Target
	Results []QueryResult
	// Err is set when the run itself could not start, e.g. InvalidTarget.
	Err error
	// Skipped holds unknown or inapplicable provider names.
	Skipped []error
}

// Failures aggregates every per-provider and selection error of the run.
func (r *TargetReport) Failures() error {
	var result error
	if r.Err != nil {
		result = multierror.Append(result, r.Err)
	}
	for _, err := range r.Skipped {
		result = multierror.Append(result, err)
	}
	for _, res := range r.Results {
		if res.Err != nil {
			result = multierror.Append(result, res.Err)
		}
	}
	return result
}

// FailureMessages lists the messages of every error in Failures, in order.
func (r *TargetReport) FailureMessages() []string {
	var merr *multierror.Error
	if !errors.As(r.Failures(), &merr) {
		return nil
	}
	msgs := make([]string, 0, len(merr.Errors))
	for _, err := range merr.Errors {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// Succeeded counts providers that returned a body.
func (r *TargetReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}
