package reconnaissance

import (
	"context"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var investigateSpec = core.ProviderSpec{
	Name:              "investigate",
	DisplayName:       "Investigate",
	Description:       "Cisco Umbrella Investigate security scores for a domain",
	Targets:           target.ClassDomain,
	CredentialEnvVars: []string{"CISCO_INVESTIGATE_API"},
	Aliases:           []string{"cisco"},
	Priority:          110,
}

type InvestigateProvider struct {
	BaseURL string
}

func NewInvestigateProvider() *InvestigateProvider {
	return &InvestigateProvider{BaseURL: "https://investigate.api.umbrella.com"}
}

func (p *InvestigateProvider) Spec() core.ProviderSpec { return investigateSpec }

func (p *InvestigateProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(investigateSpec, t.Value)
	if err != nil {
		return "", err
	}
	endpoint := p.BaseURL + "/security/name/" + url.PathEscape(t.Value)
	return fetch(ctx, investigateSpec, t.Value, endpoint, bearer(keys[0]))
}

func init() {
	core.RegisterProvider(NewInvestigateProvider())
}
