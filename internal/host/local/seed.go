package local

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/billie-coop/metanet/internal/host"
)

//go:embed seed.json
var defaultSeed []byte

// Well-known operators that publish the embedded registry records.
const (
	OperatorBabbage    = "03daf815fe38f83da0ad83b5bedc520aa488aef5cbc93a93c67a7fe60406cbffe8"
	OperatorSocialCert = "02cf6cdf466951d8dfc9e7c9367511d0007ed6fba35ed42d425cc412fd6cfd4a17"
	OperatorCommunity  = "0294c479f762f6baa97fbcd4393564c1d7bd8336ebd15928135bbcf575cd1a71a1"
)

// Seed is the wallet and registry content a local host serves.
type Seed struct {
	Transactions     []host.Transaction       `json:"transactions"`
	Outputs          []host.Output            `json:"outputs"`
	Certificates     []host.Certificate       `json:"certificates"`
	Baskets          []host.BasketRecord      `json:"baskets"`
	Protocols        []host.ProtocolRecord    `json:"protocols"`
	CertificateTypes []host.CertificateRecord `json:"certificateTypes"`
	Identities       []host.IdentityRecord    `json:"identities"`
}

// DefaultSeed parses the embedded demo data.
func DefaultSeed() (*Seed, error) {
	var s Seed
	if err := json.Unmarshal(defaultSeed, &s); err != nil {
		return nil, fmt.Errorf("parse embedded seed: %w", err)
	}
	return &s, nil
}
