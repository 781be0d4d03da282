package reconnaissance

import (
	"context"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var internetdbSpec = core.ProviderSpec{
	Name:        "internetdb",
	DisplayName: "InternetDB",
	Description: "Open ports, CPEs and known CVEs for an IP (no key required)",
	Targets:     target.ClassIP,
	Priority:    90,
}

// InternetDBProvider queries Shodan's free InternetDB endpoint.
type InternetDBProvider struct {
	BaseURL string
}

func NewInternetDBProvider() *InternetDBProvider {
	return &InternetDBProvider{BaseURL: "https://internetdb.shodan.io"}
}

func (p *InternetDBProvider) Spec() core.ProviderSpec { return internetdbSpec }

func (p *InternetDBProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	return fetch(ctx, internetdbSpec, t.Value, p.BaseURL+"/"+url.PathEscape(t.Value), nil)
}

func init() {
	core.RegisterProvider(NewInternetDBProvider())
}
