package reconnaissance

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

var projectdiscoverySpec = core.ProviderSpec{
	Name:              "projectdiscovery",
	DisplayName:       "ProjectDiscovery",
	Description:       "Chaos subdomain dataset for a domain (chaos client if installed, REST otherwise)",
	Targets:           target.ClassDomain,
	CredentialEnvVars: []string{"PROJECTDISCOVERY_API"},
	Aliases:           []string{"chaos", "pd"},
	Priority:          40,
}

// ProjectDiscoveryProvider prefers the chaos client when Chaos finds it and
// falls back to the REST API when the client is absent or fails.
type ProjectDiscoveryProvider struct {
	BaseURL string
	Chaos   *ChaosRunner
}

func NewProjectDiscoveryProvider() *ProjectDiscoveryProvider {
	return &ProjectDiscoveryProvider{
		BaseURL: "https://dns.projectdiscovery.io",
		Chaos:   NewChaosRunner(core.DefaultChaosBinary),
	}
}

func (p *ProjectDiscoveryProvider) Spec() core.ProviderSpec { return projectdiscoverySpec }

func (p *ProjectDiscoveryProvider) Query(ctx context.Context, t target.Target, creds core.Credentials) (string, error) {
	keys, err := creds.Require(projectdiscoverySpec, t.Value)
	if err != nil {
		return "", err
	}

	if path, ok := p.Chaos.Available(); ok {
		log := logger.GetLogger().WithFields(logrus.Fields{
			"provider": projectdiscoverySpec.Name,
			"target":   t.Value,
		})
		out, err := p.Chaos.Subdomains(ctx, t.Value, keys[0])
		if err == nil {
			log.Debugf("answered by chaos client %s", path)
			return out, nil
		}
		log.Debugf("chaos client failed, using REST API: %v", err)
	}

	endpoint := fmt.Sprintf("%s/dns/%s/subdomains", p.BaseURL, url.PathEscape(t.Value))
	return fetch(ctx, projectdiscoverySpec, t.Value, endpoint, bearer(keys[0]))
}

var projectDiscovery = NewProjectDiscoveryProvider()

// UseChaosBinary sets the name or path probed for the chaos client.
func UseChaosBinary(name string) {
	if name != "" {
		projectDiscovery.Chaos.Binary = name
	}
}

func init() {
	core.RegisterProvider(projectDiscovery)
}
