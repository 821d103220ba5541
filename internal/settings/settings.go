// Package settings holds the user's preferences: display currency, theme and
// the registry operators they trust to describe apps, baskets, protocols and
// certificates.
package settings

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Currencies the balance can be shown in.
const (
	CurrencyBSV  = "BSV"
	CurrencySATS = "SATS"
	CurrencyUSD  = "USD"
)

// Theme modes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Trust scores range from MinTrust to MaxTrust. Zero means untrusted.
const (
	MinTrust = 1
	MaxTrust = 10
)

var (
	ErrInvalidPublicKey = errors.New("public key must be a 33-byte compressed key in hex")
	ErrInvalidTrust     = fmt.Errorf("trust must be between %d and %d", MinTrust, MaxTrust)
	ErrUnknownCurrency  = errors.New("unknown currency")
)

// TrustedEntity is a registry operator the user has assigned a trust score.
type TrustedEntity struct {
	Name      string `json:"name"`
	Note      string `json:"note,omitempty"`
	Icon      string `json:"icon,omitempty"`
	PublicKey string `json:"publicKey"`
	Trust     int    `json:"trust"`
}

// Theme is the display theme preference.
type Theme struct {
	Mode string `json:"mode"`
}

// Settings is the document stored encrypted by the host.
type Settings struct {
	Currency        string          `json:"currency"`
	Theme           Theme           `json:"theme"`
	TrustedEntities []TrustedEntity `json:"trustedEntities"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.TrustedEntities = slices.Clone(s.TrustedEntities)
	return s
}

// TrustFor returns the trust score of operator, or 0 if it is not trusted.
func (s Settings) TrustFor(operator string) int {
	for _, e := range s.TrustedEntities {
		if strings.EqualFold(e.PublicKey, operator) {
			return e.Trust
		}
	}
	return 0
}

// Operators returns the public keys of every trusted entity in list order.
func (s Settings) Operators() []string {
	ops := make([]string, 0, len(s.TrustedEntities))
	for _, e := range s.TrustedEntities {
		if e.Trust >= MinTrust {
			ops = append(ops, e.PublicKey)
		}
	}
	return ops
}

// AddTrustedEntity adds e, or replaces the entity with the same key.
func (s *Settings) AddTrustedEntity(e TrustedEntity) error {
	e.PublicKey = strings.ToLower(strings.TrimSpace(e.PublicKey))
	if err := ValidatePublicKey(e.PublicKey); err != nil {
		return err
	}
	if e.Trust < MinTrust || e.Trust > MaxTrust {
		return ErrInvalidTrust
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("name is required")
	}

	for i, existing := range s.TrustedEntities {
		if strings.EqualFold(existing.PublicKey, e.PublicKey) {
			s.TrustedEntities[i] = e
			return nil
		}
	}
	s.TrustedEntities = append(s.TrustedEntities, e)
	return nil
}

// RemoveTrustedEntity removes the entity with publicKey and reports whether
// one was found.
func (s *Settings) RemoveTrustedEntity(publicKey string) bool {
	n := len(s.TrustedEntities)
	s.TrustedEntities = slices.DeleteFunc(s.TrustedEntities, func(e TrustedEntity) bool {
		return strings.EqualFold(e.PublicKey, publicKey)
	})
	return len(s.TrustedEntities) != n
}

// ValidatePublicKey checks for a compressed secp256k1 key in hex.
func ValidatePublicKey(key string) error {
	if len(key) != 66 || (!strings.HasPrefix(key, "02") && !strings.HasPrefix(key, "03")) {
		return ErrInvalidPublicKey
	}
	if _, err := hex.DecodeString(key); err != nil {
		return ErrInvalidPublicKey
	}
	return nil
}

// Normalize fills missing fields from defaults and fixes invalid values.
func (s Settings) Normalize(defaults Settings) Settings {
	switch strings.ToUpper(s.Currency) {
	case CurrencyBSV, CurrencySATS, CurrencyUSD:
		s.Currency = strings.ToUpper(s.Currency)
	default:
		s.Currency = defaults.Currency
	}
	if s.Theme.Mode != ThemeDark && s.Theme.Mode != ThemeLight {
		s.Theme = defaults.Theme
	}
	if s.TrustedEntities == nil {
		s.TrustedEntities = slices.Clone(defaults.TrustedEntities)
	}
	return s
}
