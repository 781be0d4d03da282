package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xBurningGiraffe/rustrecon/internal/core/logger"
	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

// ProviderSpec is the static descriptor of a provider.
type ProviderSpec struct {
	Name              string // command-line name, e.g. "shodan"
	DisplayName       string // output header, e.g. "Shodan"
	Description       string
	Targets           target.Class
	CredentialEnvVars []string // all must be set; empty means no credential
	Aliases           []string
	Priority          int // order used for --all
}

// AppliesTo reports whether the provider accepts targets of kind k.
func (s ProviderSpec) AppliesTo(k target.Kind) bool {
	return s.Targets.Has(k.Class())
}

// Header is the name printed above the provider's results.
func (s ProviderSpec) Header() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// Registry indexes providers by name and alias.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	aliases   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		aliases:   make(map[string]string),
	}
}

// Register adds p. Names and aliases are case-insensitive and must be unique.
func (r *Registry) Register(p Provider) error {
	spec := p.Spec()
	name := strings.ToLower(spec.Name)
	if name == "" {
		return fmt.Errorf("provider has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	if _, exists := r.aliases[name]; exists {
		return fmt.Errorf("provider name %q collides with an alias", name)
	}
	for _, alias := range spec.Aliases {
		alias = strings.ToLower(alias)
		if _, exists := r.providers[alias]; exists {
			return fmt.Errorf("alias %q collides with a provider name", alias)
		}
		if owner, exists := r.aliases[alias]; exists {
			return fmt.Errorf("alias %q already used by %q", alias, owner)
		}
	}

	r.providers[name] = p
	for _, alias := range spec.Aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
	return nil
}

// Lookup finds a provider by name or alias.
func (r *Registry) Lookup(name string) (Provider, bool) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	p, ok := r.providers[key]
	return p, ok
}

// List returns every provider ordered by priority, then name.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	list := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		list = append(list, p)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Spec(), list[j].Spec()
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Name < b.Name
	})
	return list
}

// Applicable returns the providers that accept targets of kind k, in List order.
func (r *Registry) Applicable(k target.Kind) []Provider {
	var out []Provider
	for _, p := range r.List() {
		if p.Spec().AppliesTo(k) {
			out = append(out, p)
		}
	}
	return out
}

// CredentialNames returns every environment variable any provider reads.
func (r *Registry) CredentialNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range r.List() {
		for _, env := range p.Spec().CredentialEnvVars {
			if !seen[env] {
				seen[env] = true
				names = append(names, env)
			}
		}
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// DefaultRegistry is the process-wide table filled by provider init() functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterProvider adds p to the default registry. Called from init().
func RegisterProvider(p Provider) {
	if err := defaultRegistry.Register(p); err != nil {
		// Log error but don't panic - allow application to start
		logger.GetLogger().Warnf("failed to register provider: %v", err)
	}
}

// ListProviders returns the default registry's providers.
func ListProviders() []Provider {
	return defaultRegistry.List()
}
