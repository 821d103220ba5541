// Package resolve turns opaque identifiers into friendly names and icons.
//
// Every lookup is stale-while-revalidate: the cached label is delivered
// first, then the result of a single resolution attempt. A failed attempt
// leaves whatever was delivered before in place.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/billie-coop/metanet/internal/cache"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/settings"
)

// ErrNotFound means no trusted record describes the subject.
var ErrNotFound = errors.New("no trusted record found")

// Kind is the type of identifier being resolved.
type Kind string

const (
	KindApp          Kind = "app"
	KindBasket       Kind = "basket"
	KindProtocol     Kind = "protocol"
	KindCertificate  Kind = "certificate"
	KindCounterparty Kind = "counterparty"
)

// Metadata is what a chip displays.
type Metadata struct {
	Name             string `json:"name"`
	IconURL          string `json:"iconURL,omitempty"`
	Description      string `json:"description,omitempty"`
	DocumentationURL string `json:"documentationURL,omitempty"`
}

// Subject identifies one thing to resolve.
type Subject struct {
	Kind Kind
	ID   string
	// Level only applies to protocols.
	Level host.SecurityLevel
}

// App is a website identified by its domain.
func App(domain string) Subject {
	return Subject{Kind: KindApp, ID: domain}
}

// Basket is a basket ID.
func Basket(id string) Subject {
	return Subject{Kind: KindBasket, ID: id}
}

// Protocol is a protocol ID at a security level.
func Protocol(id string, level host.SecurityLevel) Subject {
	return Subject{Kind: KindProtocol, ID: id, Level: level}
}

// Certificate is a certificate type.
func Certificate(certType string) Subject {
	return Subject{Kind: KindCertificate, ID: certType}
}

// Counterparty is an identity key, or "self" or "anyone".
func Counterparty(key string) Subject {
	return Subject{Kind: KindCounterparty, ID: key}
}

// TrustSource supplies the user's trusted entities.
type TrustSource interface {
	Current() settings.Settings
}

// Service resolves subjects against the host registry and app websites.
type Service struct {
	registry host.Registry
	trust    TrustSource
	apps     *AppFetcher
	meta     *cache.Loader[Metadata]
	labels   *cache.Loader[string]
	logger   *slog.Logger
}

// NewService wires a resolver service. apps may be nil to disable website
// lookups.
func NewService(registry host.Registry, trust TrustSource, store cache.Store, policy cache.Policy, apps *AppFetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "resolve")
	s := &Service{
		registry: registry,
		trust:    trust,
		apps:     apps,
		meta:     cache.NewLoader[Metadata](store, policy, logger),
		labels:   cache.NewLoader[string](store, policy, logger),
		logger:   logger,
	}
	return s
}

// Default is the label shown before anything has been resolved.
func Default(subj Subject) Metadata {
	switch subj.Kind {
	case KindCounterparty:
		switch subj.ID {
		case host.CounterpartySelf:
			return Metadata{Name: "Self", Description: "Your own identity"}
		case host.CounterpartyAnyone:
			return Metadata{Name: "Anyone", Description: "Anyone who asks"}
		}
		return Metadata{Name: ShortKey(subj.ID)}
	case KindCertificate:
		return Metadata{Name: "Unknown certificate", Description: subj.ID}
	case KindApp:
		return Metadata{Name: appDomain(subj.ID)}
	default:
		return Metadata{Name: subj.ID}
	}
}

// ShortKey abbreviates a public key for display.
func ShortKey(key string) string {
	if len(key) <= 14 {
		return key
	}
	return key[:8] + "…" + key[len(key)-6:]
}

// CacheKeys returns the cache keys a subject is stored under.
func (s *Service) CacheKeys(subj Subject) []string {
	switch subj.Kind {
	case KindApp:
		domain := appDomain(subj.ID)
		return []string{"manifest_label_" + domain, "favicon_label_" + domain}
	case KindBasket:
		return []string{"basketInfo_" + subj.ID}
	case KindProtocol:
		return []string{fmt.Sprintf("protocolInfo_%s_%d", subj.ID, subj.Level)}
	case KindCertificate:
		return []string{fmt.Sprintf("certData_%s_%s", subj.ID, strings.Join(s.operators(), ","))}
	case KindCounterparty:
		return []string{"signiaIdentity_" + subj.ID}
	}
	return nil
}

// Peek returns the cached label, or the default when nothing is cached.
func (s *Service) Peek(ctx context.Context, subj Subject) Metadata {
	md := Default(subj)
	if isFixedCounterparty(subj) {
		return md
	}
	keys := s.CacheKeys(subj)

	if subj.Kind == KindApp {
		if name, ok := s.labels.Peek(ctx, keys[0]); ok && name != "" {
			md.Name = name
		}
		if icon, ok := s.labels.Peek(ctx, keys[1]); ok {
			md.IconURL = icon
		}
		return md
	}

	if cached, ok := s.meta.Peek(ctx, keys[0]); ok {
		return cached
	}
	return md
}

// Resolve delivers the cached label to onValue, then resolves the subject
// once and delivers the result. Errors are logged and returned; the caller
// keeps showing the last delivered value.
func (s *Service) Resolve(ctx context.Context, subj Subject, onValue func(Metadata)) error {
	if isFixedCounterparty(subj) {
		onValue(Default(subj))
		return nil
	}

	var err error
	if subj.Kind == KindApp {
		err = s.resolveApp(ctx, subj, onValue)
	} else {
		key := s.CacheKeys(subj)[0]
		err = s.meta.Load(ctx, key, func(ctx context.Context) (Metadata, error) {
			return s.fetch(ctx, subj)
		}, onValue)
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("no trusted metadata", "kind", subj.Kind, "id", subj.ID)
	default:
		s.logger.Warn("metadata resolution failed", "kind", subj.Kind, "id", subj.ID, "error", err)
	}
	return err
}

func (s *Service) fetch(ctx context.Context, subj Subject) (Metadata, error) {
	ops := s.operators()
	trustFor := func(string) int { return 0 }
	if s.trust != nil {
		trustFor = s.trust.Current().TrustFor
	}

	switch subj.Kind {
	case KindBasket:
		records, err := s.registry.ResolveBasket(ctx, subj.ID, ops)
		if err != nil {
			return Metadata{}, fmt.Errorf("resolve basket %s: %w", subj.ID, err)
		}
		r, ok := MostTrusted(records, func(r host.BasketRecord) string { return r.RegistryOperator }, trustFor)
		if !ok {
			return Metadata{}, ErrNotFound
		}
		return Metadata{Name: r.Name, IconURL: r.IconURL, Description: r.Description, DocumentationURL: r.DocumentationURL}, nil

	case KindProtocol:
		records, err := s.registry.ResolveProtocol(ctx, subj.ID, subj.Level, ops)
		if err != nil {
			return Metadata{}, fmt.Errorf("resolve protocol %s: %w", subj.ID, err)
		}
		r, ok := MostTrusted(records, func(r host.ProtocolRecord) string { return r.RegistryOperator }, trustFor)
		if !ok {
			return Metadata{}, ErrNotFound
		}
		return Metadata{Name: r.Name, IconURL: r.IconURL, Description: r.Description, DocumentationURL: r.DocumentationURL}, nil

	case KindCertificate:
		records, err := s.registry.ResolveCertificate(ctx, subj.ID, ops)
		if err != nil {
			return Metadata{}, fmt.Errorf("resolve certificate %s: %w", subj.ID, err)
		}
		r, ok := MostTrusted(records, func(r host.CertificateRecord) string { return r.RegistryOperator }, trustFor)
		if !ok {
			return Metadata{}, ErrNotFound
		}
		return Metadata{Name: r.Name, IconURL: r.IconURL, Description: r.Description, DocumentationURL: r.DocumentationURL}, nil

	case KindCounterparty:
		records, err := s.registry.DiscoverIdentity(ctx, subj.ID, ops)
		if err != nil {
			return Metadata{}, fmt.Errorf("discover identity %s: %w", ShortKey(subj.ID), err)
		}
		r, ok := MostTrusted(records, func(r host.IdentityRecord) string { return r.Certifier }, trustFor)
		if !ok {
			return Metadata{}, ErrNotFound
		}
		return Metadata{Name: r.Name, IconURL: r.AvatarURL, Description: r.Badge}, nil
	}
	return Metadata{}, fmt.Errorf("unsupported subject kind %q", subj.Kind)
}

func (s *Service) operators() []string {
	if s.trust == nil {
		return nil
	}
	return s.trust.Current().Operators()
}

// MostTrusted picks the record whose operator has the highest trust score.
// Ties go to the earliest record; records from untrusted operators are
// skipped.
func MostTrusted[T any](records []T, operator func(T) string, trustFor func(string) int) (T, bool) {
	var best T
	bestTrust := 0
	found := false
	for _, r := range records {
		t := trustFor(operator(r))
		if t <= 0 {
			continue
		}
		if !found || t > bestTrust {
			best, bestTrust, found = r, t, true
		}
	}
	return best, found
}

func isFixedCounterparty(subj Subject) bool {
	return subj.Kind == KindCounterparty && (subj.ID == host.CounterpartySelf || subj.ID == host.CounterpartyAnyone)
}
