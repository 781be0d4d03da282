package reconnaissance

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

func fakeChaos(out string, runErr error, calls *[][]string) *ChaosRunner {
	return &ChaosRunner{
		Binary:   "chaos",
		LookPath: func(file string) (string, error) { return "/usr/local/bin/" + file, nil },
		Run: func(ctx context.Context, path string, args ...string) (string, error) {
			*calls = append(*calls, append([]string{path}, args...))
			return out, runErr
		},
	}
}

func TestProjectDiscoveryUsesChaosClient(t *testing.T) {
	srv, _, hits := newCaptureServer(t, http.StatusOK, `{"subdomains":["www"]}`)
	var calls [][]string
	p := &ProjectDiscoveryProvider{BaseURL: srv.URL, Chaos: fakeChaos("www.example.com\napi.example.com\n", nil, &calls)}

	body, err := p.Query(context.Background(), target.Parse("example.com"), allCreds())
	if err != nil {
		t.Fatalf("Query returned an error: %v", err)
	}
	if body != "www.example.com\napi.example.com\n" {
		t.Errorf("Expected chaos output, got %q", body)
	}
	want := [][]string{{"/usr/local/bin/chaos", "-d", "example.com", "-key", "pd-key", "-silent"}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("Expected %v, got %v", want, calls)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("REST API should not be called when the chaos client succeeds")
	}
}

func TestProjectDiscoveryFallsBackToREST(t *testing.T) {
	srv, _, hits := newCaptureServer(t, http.StatusOK, `{"subdomains":["www"]}`)
	var calls [][]string
	p := &ProjectDiscoveryProvider{BaseURL: srv.URL, Chaos: fakeChaos("", errors.New("exit status 1"), &calls)}

	body, err := p.Query(context.Background(), target.Parse("example.com"), allCreds())
	if err != nil {
		t.Fatalf("Query returned an error: %v", err)
	}
	if body != `{"subdomains":["www"]}` {
		t.Errorf("Expected REST body, got %q", body)
	}
	if len(calls) != 1 || atomic.LoadInt32(hits) != 1 {
		t.Errorf("Expected one chaos attempt and one REST call, got %d and %d", len(calls), *hits)
	}
}

func TestChaosRunnerAbsent(t *testing.T) {
	r := noChaos()
	if _, ok := r.Available(); ok {
		t.Error("Expected chaos to be unavailable")
	}
	if _, err := r.Subdomains(context.Background(), "example.com", "k"); err == nil {
		t.Error("Expected an error when the binary is absent")
	}
	var nilRunner *ChaosRunner
	if _, ok := nilRunner.Available(); ok {
		t.Error("nil runner must report unavailable")
	}
}

func TestUseChaosBinary(t *testing.T) {
	old := projectDiscovery.Chaos.Binary
	defer func() { projectDiscovery.Chaos.Binary = old }()

	UseChaosBinary("/opt/pd/chaos")
	if projectDiscovery.Chaos.Binary != "/opt/pd/chaos" {
		t.Errorf("Expected binary to be updated, got %q", projectDiscovery.Chaos.Binary)
	}
	UseChaosBinary("")
	if projectDiscovery.Chaos.Binary != "/opt/pd/chaos" {
		t.Error("Empty name must not reset the binary")
	}
}
