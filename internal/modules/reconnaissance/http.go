package reconnaissance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
)

// DefaultHTTPClient is used by every provider. Tests swap it for an
// httptest server client.
var DefaultHTTPClient = &http.Client{Timeout: core.DefaultRequestTimeout}

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

const userAgent = "rustrecon/1.0"

// SetTimeout changes the per-request timeout of DefaultHTTPClient.
func SetTimeout(d time.Duration) {
	if d > 0 {
		DefaultHTTPClient.Timeout = d
	}
}

// fetch issues one GET and returns the body whatever the status code.
// decorate attaches the provider's auth scheme.
func fetch(ctx context.Context, spec core.ProviderSpec, targetValue, url string, decorate func(*http.Request)) (string, error) {
	log := logger.GetLogger().WithFields(logrus.Fields{
		"provider": spec.Name,
		"target":   targetValue,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.NewQueryError(core.Transport, spec.Name, targetValue, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if decorate != nil {
		decorate(req)
	}

	start := time.Now()
	resp, err := DefaultHTTPClient.Do(req)
	if err != nil {
		return "", core.NewQueryError(core.Transport, spec.Name, targetValue, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", core.NewQueryError(core.Transport, spec.Name, targetValue, fmt.Errorf("read response: %w", err))
	}

	entry := log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
		"bytes":   len(body),
	})
	if resp.StatusCode >= 300 {
		// Passed through: the body usually carries the provider's error JSON.
		entry.Warnf("%s answered %s", spec.Header(), resp.Status)
	} else {
		entry.Debug("response received")
	}
	return string(body), nil
}

func setHeader(name, value string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(name, value)
	}
}

func bearer(token string) func(*http.Request) {
	return setHeader("Authorization", "Bearer "+token)
}
