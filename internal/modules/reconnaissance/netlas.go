package reconnaissance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var netlasSpec = core.ProviderSpec{
	Name:              "netlas",
	DisplayName:       "Netlas",
	Description:       "Host summary for an IP or domain, all fields",
	Targets:           target.ClassIP | target.ClassDomain,
	CredentialEnvVars: []string{"NETLAS_API"},
	Priority:          70,
}

type NetlasProvider struct {
	BaseURL string
}

func NewNetlasProvider() *NetlasProvider {
	return &NetlasProvider{BaseURL: "https://app.netlas.io"}
}

func (p *NetlasProvider) Spec() core.ProviderSpec { return netlasSpec }

func (p *NetlasProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(netlasSpec, t.Value)
	if err != nil {
		return "", err
	}
	params := url.Values{}
	params.Set("fields", "*")
	params.Set("source_type", "include")
	endpoint := fmt.Sprintf("%s/api/host/%s/?%s", p.BaseURL, url.PathEscape(t.Value), params.Encode())
	return fetch(ctx, netlasSpec, t.Value, endpoint, setHeader("X-API-Key", keys[0]))
}

func init() {
	core.RegisterProvider(NewNetlasProvider())
}
