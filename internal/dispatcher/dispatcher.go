// Package dispatcher fans one target out to the selected providers and
// routes every result through a single sink in provider order.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/output"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

// Selection is either every applicable provider or an explicit list of
// names and aliases.
type Selection struct {
	All   bool
	Names []string
}

// ParseNames splits comma-delimited values, dropping blanks.
func ParseNames(values []string) []string {
	var names []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

type Options struct {
	// Concurrency bounds parallel provider queries per target. Values below
	// 2 query sequentially.
	Concurrency int
	// Status receives per-target headers and per-provider error lines.
	// Defaults to os.Stderr.
	Status io.Writer
	// OnProvider is called before each provider query.
	OnProvider func(target, provider string)
}

type Dispatcher struct {
	registry *core.Registry
	creds    core.Credentials
	sink     output.Sink
	opts     Options
}

func New(registry *core.Registry, creds core.Credentials, sink output.Sink, opts Options) *Dispatcher {
	if registry == nil {
		registry = core.DefaultRegistry()
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	return &Dispatcher{registry: registry, creds: creds, sink: sink, opts: opts}
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed)
)

// Run queries every selected provider for raw and emits the results in
// provider order. Provider failures are printed and recorded in the report;
// the returned error is only set when the target itself is invalid.
func (d *Dispatcher) Run(ctx context.Context, raw string, sel Selection) (*core.TargetReport, error) {
	t := target.Parse(raw)
	report := &core.TargetReport{Target: t}
	log := logger.GetLogger().WithFields(logrus.Fields{"target": t.Value, "kind": t.Kind})

	if t.Kind == target.Invalid {
		err := core.NewQueryError(core.InvalidTarget, "", t.Raw,
			errors.New("not an IPv4/IPv6 address or domain name"))
		report.Err = err
		d.reportError(t.Raw, err)
		log.Warn("skipping invalid target")
		return report, err
	}

	headerColor.Fprintf(d.opts.Status, "[*] %s (%s)\n", t.Value, t.Kind)

	providers, skipped := d.resolve(t, sel)
	report.Skipped = skipped
	for _, err := range skipped {
		var qe *core.QueryError
		name := ""
		if errors.As(err, &qe) {
			name = qe.Provider
		}
		d.reportError(name, err)
	}
	if len(providers) == 0 {
		log.Warn("no provider selected for target")
		return report, nil
	}

	log.Debugf("querying %d providers", len(providers))
	report.Results = d.query(ctx, t, providers)
	return report, nil
}

// resolve turns a selection into providers in query order. Explicit names
// keep the order they were given in; duplicates are dropped.
func (d *Dispatcher) resolve(t target.Target, sel Selection) ([]core.Provider, []error) {
	if sel.All {
		return d.registry.Applicable(t.Kind), nil
	}

	var (
		providers []core.Provider
		skipped   []error
		seen      = make(map[string]bool)
	)
	for _, name := range sel.Names {
		p, ok := d.registry.Lookup(name)
		if !ok {
			skipped = append(skipped, core.NewQueryError(core.UnknownProvider, name, t.Value,
				fmt.Errorf("%q is not a known provider", name)))
			continue
		}
		spec := p.Spec()
		if seen[spec.Name] {
			continue
		}
		seen[spec.Name] = true
		if !spec.AppliesTo(t.Kind) {
			skipped = append(skipped, core.NewQueryError(core.NotApplicable, spec.Header(), t.Value,
				fmt.Errorf("%s accepts %s targets, got %s", spec.Name, spec.Targets, t.Kind)))
			continue
		}
		providers = append(providers, p)
	}
	return providers, skipped
}

// query runs the providers, sequentially or on a bounded pool, and emits
// each result once every earlier provider has been emitted.
func (d *Dispatcher) query(ctx context.Context, t target.Target, providers []core.Provider) []core.QueryResult {
	results := make([]core.QueryResult, len(providers))

	if d.opts.Concurrency < 2 || len(providers) < 2 {
		for i, p := range providers {
			results[i] = d.queryOne(ctx, t, p)
			d.emit(&results[i])
		}
		return results
	}

	done := make([]chan struct{}, len(providers))
	for i := range done {
		done[i] = make(chan struct{})
	}
	sem := make(chan struct{}, d.opts.Concurrency)
	var wg sync.WaitGroup
	wg.Add(len(providers))
	for idx, p := range providers {
		go func(idx int, p core.Provider) {
			defer wg.Done()
			defer close(done[idx])
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = d.queryOne(ctx, t, p)
		}(idx, p)
	}
	for i := range providers {
		<-done[i]
		d.emit(&results[i])
	}
	wg.Wait()
	return results
}

func (d *Dispatcher) queryOne(ctx context.Context, t target.Target, p core.Provider) core.QueryResult {
	spec := p.Spec()
	if d.opts.OnProvider != nil {
		d.opts.OnProvider(t.Value, spec.Header())
	}
	start := time.Now()
	body, err := p.Query(ctx, t, d.creds)
	return core.QueryResult{
		Provider: spec,
		Target:   t,
		Body:     body,
		Err:      err,
		Elapsed:  time.Since(start),
	}
}

// emit writes a successful body to the sink, or prints the failure. A raw
// body attached to an InvalidResponse error is still written.
func (d *Dispatcher) emit(res *core.QueryResult) {
	header := res.Provider.Header()
	log := logger.GetLogger().WithFields(logrus.Fields{
		"provider": res.Provider.Name,
		"target":   res.Target.Value,
		"elapsed":  res.Elapsed.Round(time.Millisecond),
	})

	if res.Err != nil {
		d.reportError(header, res.Err)
		log.WithError(res.Err).Debug("provider failed")
		var qe *core.QueryError
		if errors.As(res.Err, &qe) && qe.Kind == core.InvalidResponse && qe.Body != "" {
			d.write(res, header, qe.Body)
		}
		return
	}

	if _, ok := output.PrettyJSON(res.Body); !ok {
		log.Debug("response is not JSON, writing it as text")
	}
	if d.write(res, header, res.Body) {
		log.Debug("results written")
	}
}

func (d *Dispatcher) write(res *core.QueryResult, header, payload string) bool {
	if d.sink == nil {
		return false
	}
	if err := d.sink.Emit(header, payload); err != nil {
		var qe *core.QueryError
		if errors.As(err, &qe) && qe.Target == "" {
			qe.Target = res.Target.Value
		}
		d.reportError(header, err)
		if res.Err == nil {
			res.Err = err
		}
		return false
	}
	return true
}

// reportError prints "{provider}: error: {reason}".
func (d *Dispatcher) reportError(provider string, err error) {
	if provider == "" {
		errorColor.Fprintf(d.opts.Status, "error: %v\n", err)
		return
	}
	errorColor.Fprintf(d.opts.Status, "%s: error: %v\n", provider, err)
}
