package host

import "context"

// BasketRecord is a registry entry describing a basket.
type BasketRecord struct {
	BasketID         string `json:"basketID"`
	Name             string `json:"name"`
	IconURL          string `json:"iconURL"`
	Description      string `json:"description"`
	DocumentationURL string `json:"documentationURL"`
	RegistryOperator string `json:"registryOperator"`
}

// ProtocolRecord is a registry entry describing a protocol.
type ProtocolRecord struct {
	ProtocolID       string        `json:"protocolID"`
	SecurityLevel    SecurityLevel `json:"securityLevel"`
	Name             string        `json:"name"`
	IconURL          string        `json:"iconURL"`
	Description      string        `json:"description"`
	DocumentationURL string        `json:"documentationURL"`
	RegistryOperator string        `json:"registryOperator"`
}

// CertificateField describes one field of a certificate type.
type CertificateField struct {
	FriendlyName string `json:"friendlyName"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	IconURL      string `json:"fieldIcon"`
}

// CertificateRecord is a registry entry describing a certificate type.
type CertificateRecord struct {
	Type             string                      `json:"type"`
	Name             string                      `json:"name"`
	IconURL          string                      `json:"iconURL"`
	Description      string                      `json:"description"`
	DocumentationURL string                      `json:"documentationURL"`
	Fields           map[string]CertificateField `json:"fields"`
	RegistryOperator string                      `json:"registryOperator"`
}

// IdentityRecord is a certifier-attested identity for a public key.
type IdentityRecord struct {
	IdentityKey string `json:"identityKey"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarURL"`
	Badge       string `json:"badgeLabel,omitempty"`
	Certifier   string `json:"certifier"`
}

// Registry resolves opaque identifiers to published records. Each lookup is
// restricted to records published by the given operators.
type Registry interface {
	ResolveBasket(ctx context.Context, basketID string, operators []string) ([]BasketRecord, error)
	ResolveProtocol(ctx context.Context, protocolID string, level SecurityLevel, operators []string) ([]ProtocolRecord, error)
	ResolveCertificate(ctx context.Context, certificateType string, operators []string) ([]CertificateRecord, error)
	DiscoverIdentity(ctx context.Context, identityKey string, certifiers []string) ([]IdentityRecord, error)
}
