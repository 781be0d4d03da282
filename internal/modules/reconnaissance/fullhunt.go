package reconnaissance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var fullhuntSpec = core.ProviderSpec{
	Name:              "fullhunt",
	DisplayName:       "FullHunt",
	Description:       "Attack surface details for a domain",
	Targets:           target.ClassDomain,
	CredentialEnvVars: []string{"FULLHUNT_API"},
	Priority:          30,
}

type FullHuntProvider struct {
	BaseURL string
}

func NewFullHuntProvider() *FullHuntProvider {
	return &FullHuntProvider{BaseURL: "https://fullhunt.io"}
}

func (p *FullHuntProvider) Spec() core.ProviderSpec { return fullhuntSpec }

func (p *FullHuntProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(fullhuntSpec, t.Value)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/api/v1/domain/%s/details", p.BaseURL, url.PathEscape(t.Value))
	return fetch(ctx, fullhuntSpec, t.Value, endpoint, setHeader("X-API-KEY", keys[0]))
}

func init() {
	core.RegisterProvider(NewFullHuntProvider())
}
