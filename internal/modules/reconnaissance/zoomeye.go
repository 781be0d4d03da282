package reconnaissance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var zoomeyeSpec = core.ProviderSpec{
	Name:              "zoomeye",
	DisplayName:       "ZoomEye",
	Description:       "Host search for an IP, Chinese-language matches removed",
	Targets:           target.ClassIP,
	CredentialEnvVars: []string{"ZOOMEYE_API"},
	Priority:          80,
}

// nonEnglishField marks a match carrying Chinese-language text.
const nonEnglishField = "zh-CN"

type ZoomEyeProvider struct {
	BaseURL string
}

func NewZoomEyeProvider() *ZoomEyeProvider {
	return &ZoomEyeProvider{BaseURL: "https://api.zoomeye.org"}
}

func (p *ZoomEyeProvider) Spec() core.ProviderSpec { return zoomeyeSpec }

func (p *ZoomEyeProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(zoomeyeSpec, t.Value)
	if err != nil {
		return "", err
	}
	endpoint := p.BaseURL + "/host/search?" + url.Values{"query": {"ip:" + t.Value}}.Encode()
	body, err := fetch(ctx, zoomeyeSpec, t.Value, endpoint, setHeader("API-KEY", keys[0]))
	if err != nil {
		return "", err
	}
	filtered, err := FilterNonEnglishMatches([]byte(body))
	if err != nil {
		qe := core.NewQueryError(core.InvalidResponse, zoomeyeSpec.Name, t.Value, err)
		qe.Body = body
		return "", qe
	}
	return filtered, nil
}

// FilterNonEnglishMatches drops every element of the "matches" array that
// is an object with a non-empty "zh-CN" value and returns {"matches":[...]}.
// Kept elements keep their fields and order. A body without a "matches"
// field is returned unchanged.
func FilterNonEnglishMatches(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	raw, ok := envelope["matches"]
	if !ok {
		return string(body), nil
	}
	var matches []json.RawMessage
	if err := json.Unmarshal(raw, &matches); err != nil {
		return "", fmt.Errorf("decode matches: %w", err)
	}

	kept := make([]json.RawMessage, 0, len(matches))
	for _, m := range matches {
		if !hasNonEmptyField(m, nonEnglishField) {
			kept = append(kept, m)
		}
	}
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(struct {
		Matches []json.RawMessage `json:"matches"`
	}{kept}); err != nil {
		return "", fmt.Errorf("encode matches: %w", err)
	}
	return string(bytes.TrimRight(out.Bytes(), "\n")), nil
}

func hasNonEmptyField(element json.RawMessage, field string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(element, &obj); err != nil {
		return false
	}
	value, ok := obj[field]
	if !ok {
		return false
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return true
	}
	switch compact.String() {
	case "", "null", `""`, "{}", "[]":
		return false
	}
	return true
}

func init() {
	core.RegisterProvider(NewZoomEyeProvider())
}
