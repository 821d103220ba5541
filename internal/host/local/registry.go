package local

import (
	"context"
	"slices"

	"github.com/billie-coop/metanet/internal/host"
)

// ResolveBasket returns the seeded basket records published by operators.
func (h *Host) ResolveBasket(_ context.Context, basketID string, operators []string) ([]host.BasketRecord, error) {
	var out []host.BasketRecord
	for _, r := range h.seed.Baskets {
		if r.BasketID == basketID && slices.Contains(operators, r.RegistryOperator) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ResolveProtocol returns the seeded protocol records published by operators.
func (h *Host) ResolveProtocol(_ context.Context, protocolID string, level host.SecurityLevel, operators []string) ([]host.ProtocolRecord, error) {
	var out []host.ProtocolRecord
	for _, r := range h.seed.Protocols {
		if r.ProtocolID == protocolID && r.SecurityLevel == level && slices.Contains(operators, r.RegistryOperator) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ResolveCertificate returns the seeded certificate type records published
// by operators.
func (h *Host) ResolveCertificate(_ context.Context, certificateType string, operators []string) ([]host.CertificateRecord, error) {
	var out []host.CertificateRecord
	for _, r := range h.seed.CertificateTypes {
		if r.Type == certificateType && slices.Contains(operators, r.RegistryOperator) {
			out = append(out, r)
		}
	}
	return out, nil
}

// DiscoverIdentity returns identities for identityKey attested by certifiers.
func (h *Host) DiscoverIdentity(_ context.Context, identityKey string, certifiers []string) ([]host.IdentityRecord, error) {
	var out []host.IdentityRecord
	for _, r := range h.seed.Identities {
		if r.IdentityKey == identityKey && slices.Contains(certifiers, r.Certifier) {
			out = append(out, r)
		}
	}
	return out, nil
}
