package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/modules/reconnaissance"
	"github.com/xBurningGiraffe/rustrecon/internal/output"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

type fakeProvider struct {
	spec  core.ProviderSpec
	body  string
	err   error
	delay time.Duration
	calls int32
}

func (f *fakeProvider) Spec() core.ProviderSpec { return f.spec }

func (f *fakeProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.body, f.err
}

func newFake(name string, prio int, class target.Class, body string, err error) *fakeProvider {
	return &fakeProvider{
		spec: core.ProviderSpec{
			Name:        name,
			DisplayName: strings.ToUpper(name[:1]) + name[1:],
			Targets:     class,
			Priority:    prio,
		},
		body: body,
		err:  err,
	}
}

func newTestRegistry(t *testing.T, providers ...core.Provider) *core.Registry {
	t.Helper()
	reg := core.NewRegistry()
	for _, p := range providers {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s) failed: %v", p.Spec().Name, err)
		}
	}
	return reg
}

func TestPartialFailureIsolation(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP, "", core.NewQueryError(core.Transport, "alpha", "8.8.8.8", errors.New("connection refused")))
	b := newFake("beta", 2, target.ClassIP, `{"ok":true}`, nil)
	reg := newTestRegistry(t, a, b)

	var out, status bytes.Buffer
	d := New(reg, nil, output.NewConsoleSink(&out), Options{Status: &status})
	report, err := d.Run(context.Background(), "8.8.8.8", Selection{Names: []string{"alpha", "beta"}})
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	if out.String() != "Beta:\n{\n  \"ok\": true\n}\n" {
		t.Errorf("Expected beta's result on stdout, got %q", out.String())
	}
	if !strings.Contains(status.String(), "Alpha: error: transport error: connection refused") {
		t.Errorf("Expected alpha's failure on status, got %q", status.String())
	}
	if len(report.Results) != 2 || report.Succeeded() != 1 {
		t.Errorf("Expected 2 results with 1 success, got %+v", report.Results)
	}
	if !errors.Is(report.Failures(), core.ErrTransport) {
		t.Errorf("Expected the transport failure in the aggregate, got %v", report.Failures())
	}
}

func TestEndToEndShodan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shodan/host/8.8.8.8" || r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"ip":"8.8.8.8"}`))
	}))
	defer srv.Close()

	reg := newTestRegistry(t, &reconnaissance.ShodanProvider{BaseURL: srv.URL})
	creds := core.Credentials{"SHODAN_API": "test-key"}

	var out, status bytes.Buffer
	d := New(reg, creds, output.NewConsoleSink(&out), Options{Status: &status})
	if _, err := d.Run(context.Background(), "8.8.8.8", Selection{Names: []string{"shodan"}}); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	expected := "Shodan:\n{\n  \"ip\": \"8.8.8.8\"\n}\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestChaosOutputKeepsProviderHeader(t *testing.T) {
	pd := &reconnaissance.ProjectDiscoveryProvider{
		BaseURL: "http://127.0.0.1:1",
		Chaos: &reconnaissance.ChaosRunner{
			Binary:   "chaos",
			LookPath: func(file string) (string, error) { return "/usr/bin/" + file, nil },
			Run: func(ctx context.Context, path string, args ...string) (string, error) {
				return "www.example.com\n", nil
			},
		},
	}
	reg := newTestRegistry(t, pd)

	var out bytes.Buffer
	d := New(reg, core.Credentials{"PROJECTDISCOVERY_API": "k"}, output.NewConsoleSink(&out), Options{Status: &bytes.Buffer{}})
	if _, err := d.Run(context.Background(), "example.com", Selection{Names: []string{"chaos"}}); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if out.String() != "ProjectDiscovery:\nwww.example.com\n" {
		t.Errorf("Expected the ProjectDiscovery header on chaos output, got %q", out.String())
	}
}

func TestInvalidTarget(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP|target.ClassDomain, "{}", nil)
	reg := newTestRegistry(t, a)

	var out, status bytes.Buffer
	d := New(reg, nil, output.NewConsoleSink(&out), Options{Status: &status})
	report, err := d.Run(context.Background(), "999.999.999.999", Selection{All: true})
	if !errors.Is(err, core.ErrInvalidTarget) {
		t.Fatalf("Expected ErrInvalidTarget, got %v", err)
	}
	if report.Err == nil || len(report.Results) != 0 {
		t.Errorf("Expected an empty failed report, got %+v", report)
	}
	if atomic.LoadInt32(&a.calls) != 0 || out.Len() != 0 {
		t.Error("No provider should run for an invalid target")
	}
	if !strings.Contains(status.String(), "invalid target") {
		t.Errorf("Expected the invalid target to be reported, got %q", status.String())
	}
}

func TestSelectionResolution(t *testing.T) {
	ipOnly := newFake("iponly", 1, target.ClassIP, `{"a":1}`, nil)
	both := newFake("both", 2, target.ClassIP|target.ClassDomain, `{"b":2}`, nil)
	domainOnly := newFake("domainonly", 3, target.ClassDomain, `{"c":3}`, nil)
	reg := newTestRegistry(t, ipOnly, both, domainOnly)

	var out, status bytes.Buffer
	d := New(reg, nil, output.NewConsoleSink(&out), Options{Status: &status})

	report, _ := d.Run(context.Background(), "example.com", Selection{All: true})
	if got := names(report); got != "both,domainonly" {
		t.Errorf("Expected all applicable providers in priority order, got %s", got)
	}

	out.Reset()
	status.Reset()
	report, _ = d.Run(context.Background(), "example.com",
		Selection{Names: []string{"domainonly", "nope", "iponly", "DomainOnly"}})
	if got := names(report); got != "domainonly" {
		t.Errorf("Expected only domainonly to run, got %s", got)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("Expected 2 skipped names, got %v", report.Skipped)
	}
	if !errors.Is(report.Skipped[0], core.ErrUnknownProvider) || !errors.Is(report.Skipped[1], core.ErrNotApplicable) {
		t.Errorf("Unexpected skip reasons: %v", report.Skipped)
	}
	if !strings.Contains(status.String(), "nope: error: unknown provider") {
		t.Errorf("Expected unknown name on status, got %q", status.String())
	}
	if atomic.LoadInt32(&domainOnly.calls) != 2 {
		t.Errorf("Duplicate names must be queried once per run, got %d calls", domainOnly.calls)
	}
}

func TestConcurrentRunKeepsOrder(t *testing.T) {
	slow := newFake("slow", 1, target.ClassIP, `{"n":1}`, nil)
	slow.delay = 50 * time.Millisecond
	mid := newFake("mid", 2, target.ClassIP, `{"n":2}`, nil)
	mid.delay = 10 * time.Millisecond
	fast := newFake("fast", 3, target.ClassIP, "plain text", nil)
	reg := newTestRegistry(t, slow, mid, fast)

	var seq, par bytes.Buffer
	New(reg, nil, output.NewConsoleSink(&seq), Options{Status: &bytes.Buffer{}}).
		Run(context.Background(), "1.1.1.1", Selection{All: true})

	var started int32
	d := New(reg, nil, output.NewConsoleSink(&par), Options{
		Status:      &bytes.Buffer{},
		Concurrency: 3,
		OnProvider:  func(string, string) { atomic.AddInt32(&started, 1) },
	})
	report, err := d.Run(context.Background(), "1.1.1.1", Selection{All: true})
	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if par.String() != seq.String() {
		t.Errorf("Concurrent output differs from sequential:\n%q\n%q", par.String(), seq.String())
	}
	if got := names(report); got != "slow,mid,fast" {
		t.Errorf("Expected results in provider order, got %s", got)
	}
	if started != 3 {
		t.Errorf("Expected OnProvider for each provider, got %d", started)
	}
}

type failingSink struct{ calls int }

func (s *failingSink) Emit(provider, payload string) error {
	s.calls++
	return core.NewQueryError(core.Io, provider, "", errors.New("disk full"))
}

func TestSinkFailureDoesNotStopProviders(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP, "{}", nil)
	b := newFake("beta", 2, target.ClassIP, "{}", nil)
	reg := newTestRegistry(t, a, b)

	sink := &failingSink{}
	var status bytes.Buffer
	report, _ := New(reg, nil, sink, Options{Status: &status}).
		Run(context.Background(), "8.8.8.8", Selection{All: true})

	if sink.calls != 2 {
		t.Errorf("Expected both providers to attempt a write, got %d", sink.calls)
	}
	if report.Succeeded() != 0 || !errors.Is(report.Failures(), core.ErrFileWrite) {
		t.Errorf("Expected write failures in the report, got %v", report.Failures())
	}
	if strings.Count(status.String(), "error:") != 2 {
		t.Errorf("Expected one error line per provider, got %q", status.String())
	}
	var qe *core.QueryError
	if !errors.As(report.Results[0].Err, &qe) || qe.Kind != core.Io || qe.Target != "8.8.8.8" {
		t.Errorf("Expected an Io error naming the target, got %#v", report.Results[0].Err)
	}
	if !strings.Contains(status.String(), "Alpha: error: failed to write to file: disk full (target 8.8.8.8)") {
		t.Errorf("Unexpected status output %q", status.String())
	}
}

func TestInvalidResponseBodyIsWritten(t *testing.T) {
	qe := core.NewQueryError(core.InvalidResponse, "zoomy", "8.8.8.8", errors.New("decode response"))
	qe.Body = "<html>oops</html>"
	a := newFake("zoomy", 1, target.ClassIP, "", qe)
	reg := newTestRegistry(t, a)

	var out, status bytes.Buffer
	New(reg, nil, output.NewConsoleSink(&out), Options{Status: &status}).
		Run(context.Background(), "8.8.8.8", Selection{All: true})

	if out.String() != "Zoomy:\n<html>oops</html>\n" {
		t.Errorf("Expected raw body on stdout, got %q", out.String())
	}
	if !strings.Contains(status.String(), "Zoomy: error: invalid response") {
		t.Errorf("Expected the error line, got %q", status.String())
	}
}

func TestRunBatch(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP|target.ClassDomain, `{"ok":1}`, nil)
	reg := newTestRegistry(t, a)

	path := filepath.Join(t.TempDir(), "targets.txt")
	if err := os.WriteFile(path, []byte("8.8.8.8\n\nexample.com\n"), 0644); err != nil {
		t.Fatalf("Failed to write target list: %v", err)
	}

	var out bytes.Buffer
	d := New(reg, nil, output.NewConsoleSink(&out), Options{Status: &bytes.Buffer{}})
	reports, err := d.RunBatch(context.Background(), path, Selection{All: true})
	if err != nil {
		t.Fatalf("RunBatch returned an error: %v", err)
	}
	if len(reports) != 2 || atomic.LoadInt32(&a.calls) != 2 {
		t.Errorf("Expected exactly 2 targets processed, got %d reports and %d calls", len(reports), a.calls)
	}
}

func TestRunBatchContinuesPastBadTargets(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP, "", errors.New("boom"))
	reg := newTestRegistry(t, a)

	d := New(reg, nil, output.NewConsoleSink(&bytes.Buffer{}), Options{Status: &bytes.Buffer{}})
	reports := d.RunTargets(context.Background(), []string{"not_a_target", "8.8.8.8", "1.1.1.1"}, Selection{All: true})
	if len(reports) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reports))
	}
	if atomic.LoadInt32(&a.calls) != 2 {
		t.Errorf("Expected the valid targets to be queried, got %d calls", a.calls)
	}
}

func TestRunTargetsLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	a := newFake("alpha", 1, target.ClassIP, "", errors.New("boom"))
	b := newFake("beta", 2, target.ClassIP, "{}", nil)
	d := New(newTestRegistry(t, a, b), nil, output.NewConsoleSink(&bytes.Buffer{}), Options{Status: &bytes.Buffer{}})
	d.RunTargets(context.Background(), []string{"8.8.8.8"}, Selection{Names: []string{"alpha", "beta", "nope"}})

	out := logs.String()
	for _, want := range []string{"1 of 2 providers answered", "boom", "unknown provider", "target=8.8.8.8", "failures=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in the log, got %q", want, out)
		}
	}
}

func TestRunBatchUnreadableFile(t *testing.T) {
	d := New(newTestRegistry(t), nil, nil, Options{Status: &bytes.Buffer{}})
	if _, err := d.RunBatch(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), Selection{All: true}); err == nil {
		t.Error("Expected an error for an unreadable target list")
	}
}

func TestRunTargetsStopsWhenCancelled(t *testing.T) {
	a := newFake("alpha", 1, target.ClassIP, "{}", nil)
	d := New(newTestRegistry(t, a), nil, nil, Options{Status: &bytes.Buffer{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if reports := d.RunTargets(ctx, []string{"8.8.8.8"}, Selection{All: true}); len(reports) != 0 {
		t.Errorf("Expected no targets after cancel, got %d", len(reports))
	}
}

func TestParseNames(t *testing.T) {
	got := strings.Join(ParseNames([]string{"shodan,censys", " vt ", ",", ""}), "|")
	if got != "shodan|censys|vt" {
		t.Errorf("Unexpected names %q", got)
	}
}

func names(report *core.TargetReport) string {
	var out []string
	for _, r := range report.Results {
		out = append(out, r.Provider.Name)
	}
	return strings.Join(out, ",")
}
