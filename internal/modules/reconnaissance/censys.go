// internal/modules/reconnaissance/censys.go
package reconnaissance

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var censysSpec = core.ProviderSpec{
	Name:              "censys",
	DisplayName:       "Censys",
	Description:       "Host search (v2) for an IP or domain",
	Targets:           target.ClassIP | target.ClassDomain,
	CredentialEnvVars: []string{"CENSYS_ID", "CENSYS_SECRET"},
	Priority:          20,
}

// CensysProvider runs a v2 host search authenticated with HTTP Basic
// (API ID as user, secret as password).
type CensysProvider struct {
	BaseURL string
}

func NewCensysProvider() *CensysProvider {
	return &CensysProvider{BaseURL: "https://search.censys.io"}
}

func (p *CensysProvider) Spec() core.ProviderSpec { return censysSpec }

func (p *CensysProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(censysSpec, t.Value)
	if err != nil {
		return "", err
	}
	endpoint := p.BaseURL + "/api/v2/hosts/search?" + url.Values{"q": {t.Value}}.Encode()
	return fetch(ctx, censysSpec, t.Value, endpoint, func(req *http.Request) {
		req.SetBasicAuth(keys[0], keys[1])
	})
}

func init() {
	core.RegisterProvider(NewCensysProvider())
}
