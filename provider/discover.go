package provider

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// Discover resolves a provider's revocation endpoint from its OIDC discovery
// document, for providers without a hardcoded constructor.
func Discover(ctx context.Context, name, issuer string, options ...Option) (*Endpoint, error) {
	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrapf(err, "[provider.Discover] discovery failed for %s", issuer)
	}

	var metadata struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := oidcProvider.Claims(&metadata); err != nil {
		return nil, errors.Wrap(err, "[provider.Discover] failed to decode provider metadata")
	}
	if metadata.RevocationEndpoint == "" {
		return nil, errors.Errorf("[provider.Discover] %s advertises no revocation endpoint", issuer)
	}

	return NewEndpoint(name, metadata.RevocationEndpoint, options...)
}
