// internal/modules/reconnaissance/shodan.go
package reconnaissance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var shodanSpec = core.ProviderSpec{
	Name:              "shodan",
	DisplayName:       "Shodan",
	Description:       "Host details for an IP, DNS records for a domain",
	Targets:           target.ClassIP | target.ClassDomain,
	CredentialEnvVars: []string{"SHODAN_API"},
	Priority:          10,
}

// ShodanProvider queries /shodan/host for IPs and /dns/domain for domains.
// The API key travels as the "key" query parameter.
type ShodanProvider struct {
	BaseURL string
}

func NewShodanProvider() *ShodanProvider {
	return &ShodanProvider{BaseURL: "https://api.shodan.io"}
}

func (p *ShodanProvider) Spec() core.ProviderSpec { return shodanSpec }

func (p *ShodanProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(shodanSpec, t.Value)
	if err != nil {
		return "", err
	}
	path := "/dns/domain/"
	if t.Kind.IsIP() {
		path = "/shodan/host/"
	}
	endpoint := fmt.Sprintf("%s%s%s?%s", p.BaseURL, path, url.PathEscape(t.Value), url.Values{"key": {keys[0]}}.Encode())
	return fetch(ctx, shodanSpec, t.Value, endpoint, nil)
}

func init() {
	core.RegisterProvider(NewShodanProvider())
}
