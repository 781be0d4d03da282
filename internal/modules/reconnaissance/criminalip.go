package reconnaissance

import (
	"context"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var criminalipSpec = core.ProviderSpec{
	Name:              "criminalip",
	DisplayName:       "CriminalIP",
	Description:       "IP reputation and exposure data",
	Targets:           target.ClassIP,
	CredentialEnvVars: []string{"CRIMINALIP_API"},
	Priority:          50,
}

type CriminalIPProvider struct {
	BaseURL string
}

func NewCriminalIPProvider() *CriminalIPProvider {
	return &CriminalIPProvider{BaseURL: "https://api.criminalip.io"}
}

func (p *CriminalIPProvider) Spec() core.ProviderSpec { return criminalipSpec }

func (p *CriminalIPProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(criminalipSpec, t.Value)
	if err != nil {
		return "", err
	}
	endpoint := p.BaseURL + "/v1/ip/data?" + url.Values{"ip": {t.Value}}.Encode()
	return fetch(ctx, criminalipSpec, t.Value, endpoint, setHeader("x-api-key", keys[0]))
}

func init() {
	core.RegisterProvider(NewCriminalIPProvider())
}
