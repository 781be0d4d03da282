package reconnaissance

import (
	"context"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var hunterioSpec = core.ProviderSpec{
	Name:              "hunterio",
	DisplayName:       "HunterIO",
	Description:       "Email addresses published for a domain",
	Targets:           target.ClassDomain,
	CredentialEnvVars: []string{"HUNTERIO_API"},
	Aliases:           []string{"hunter"},
	Priority:          60,
}

// HunterIOProvider runs a domain search; the key is the api_key parameter.
type HunterIOProvider struct {
	BaseURL string
}

func NewHunterIOProvider() *HunterIOProvider {
	return &HunterIOProvider{BaseURL: "https://api.hunter.io"}
}

func (p *HunterIOProvider) Spec() core.ProviderSpec { return hunterioSpec }

func (p *HunterIOProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(hunterioSpec, t.Value)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("domain", t.Value)
	params.Set("api_key", keys[0])
	return fetch(ctx, hunterioSpec, t.Value, p.BaseURL+"/v2/domain-search?"+params.Encode(), nil)
}

func init() {
	core.RegisterProvider(NewHunterIOProvider())
}
