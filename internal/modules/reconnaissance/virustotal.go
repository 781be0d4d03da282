package reconnaissance

import (
	"context"
	"net/url"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var virustotalSpec = core.ProviderSpec{
	Name:              "virustotal",
	DisplayName:       "VirusTotal",
	Description:       "v3 IP address or domain report",
	Targets:           target.ClassIP | target.ClassDomain,
	CredentialEnvVars: []string{"VT_API"},
	Aliases:           []string{"vt"},
	Priority:          100,
}

type VirusTotalProvider struct {
	BaseURL string
}

func NewVirusTotalProvider() *VirusTotalProvider {
	return &VirusTotalProvider{BaseURL: "https://www.virustotal.com"}
}

func (p *VirusTotalProvider) Spec() core.ProviderSpec { return virustotalSpec }

func (p *VirusTotalProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(virustotalSpec, t.Value)
	if err != nil {
		return "", err
	}
	collection := "domains"
	if t.Kind.IsIP() {
		collection = "ip_addresses"
	}
	endpoint := p.BaseURL + "/api/v3/" + collection + "/" + url.PathEscape(t.Value)
	return fetch(ctx, virustotalSpec, t.Value, endpoint, setHeader("x-apikey", keys[0]))
}

func init() {
	core.RegisterProvider(NewVirusTotalProvider())
}
