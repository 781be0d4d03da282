package core

import (
	"context"

	"github.com/xBurningGiraffe/rustrecon/internal/target"
)

// Provider is the interface for all search modules.
//
// Query performs exactly one lookup against the provider's API and returns
// the raw response body. Non-2xx responses are returned as a body, not as an
// error; only missing credentials, transport failures and bodies the provider
// must parse itself are errors, always as *QueryError.
type Provider interface {
	Spec() ProviderSpec
	Query(ctx context.Context, t target.Target, creds Credentials) (string, error)
}
