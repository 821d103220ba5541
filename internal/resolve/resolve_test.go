package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/billie-coop/metanet/internal/cache"
	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/settings"
)

const (
	opHigh = "03daf815fe38f83da0ad83b5bedc520aa488aef5cbc93a93c67a7fe60406cbffe8"
	opLow  = "02cf6cdf466951d8dfc9e7c9367511d0007ed6fba35ed42d425cc412fd6cfd4a17"
	opNone = "0294c479f762f6baa97fbcd4393564c1d7bd8336ebd15928135bbcf575cd1a71a1"
)

type fakeTrust struct {
	settings settings.Settings
}

func (f fakeTrust) Current() settings.Settings { return f.settings }

func trusted() fakeTrust {
	return fakeTrust{settings: settings.Settings{TrustedEntities: []settings.TrustedEntity{
		{Name: "High", PublicKey: opHigh, Trust: 8},
		{Name: "Low", PublicKey: opLow, Trust: 2},
	}}}
}

type fakeRegistry struct {
	baskets    []host.BasketRecord
	protocols  []host.ProtocolRecord
	certs      []host.CertificateRecord
	identities []host.IdentityRecord
	err        error
	calls      int
	operators  []string
}

func (f *fakeRegistry) ResolveBasket(_ context.Context, _ string, ops []string) ([]host.BasketRecord, error) {
	f.calls++
	f.operators = ops
	return f.baskets, f.err
}

func (f *fakeRegistry) ResolveProtocol(_ context.Context, _ string, _ host.SecurityLevel, ops []string) ([]host.ProtocolRecord, error) {
	f.calls++
	f.operators = ops
	return f.protocols, f.err
}

func (f *fakeRegistry) ResolveCertificate(_ context.Context, _ string, ops []string) ([]host.CertificateRecord, error) {
	f.calls++
	f.operators = ops
	return f.certs, f.err
}

func (f *fakeRegistry) DiscoverIdentity(_ context.Context, _ string, ops []string) ([]host.IdentityRecord, error) {
	f.calls++
	f.operators = ops
	return f.identities, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(reg host.Registry, apps *AppFetcher) *Service {
	return NewService(reg, trusted(), cache.NewMemoryStore(), cache.Policy{}, apps, quietLogger())
}

func collect(t *testing.T, s *Service, subj Subject) ([]Metadata, error) {
	t.Helper()
	var seen []Metadata
	err := s.Resolve(context.Background(), subj, func(md Metadata) {
		seen = append(seen, md)
	})
	return seen, err
}

func TestMostTrusted(t *testing.T) {
	trust := trusted().settings.TrustFor
	op := func(r host.BasketRecord) string { return r.RegistryOperator }

	got, ok := MostTrusted([]host.BasketRecord{
		{Name: "low", RegistryOperator: opLow},
		{Name: "high", RegistryOperator: opHigh},
		{Name: "untrusted", RegistryOperator: opNone},
	}, op, trust)
	require.True(t, ok)
	assert.Equal(t, "high", got.Name)

	got, ok = MostTrusted([]host.BasketRecord{
		{Name: "first", RegistryOperator: opHigh},
		{Name: "second", RegistryOperator: opHigh},
	}, op, trust)
	require.True(t, ok)
	assert.Equal(t, "first", got.Name, "ties resolve to the first record")

	_, ok = MostTrusted([]host.BasketRecord{{Name: "x", RegistryOperator: opNone}}, op, trust)
	assert.False(t, ok)
}

func TestCachedValueFirstThenResolved(t *testing.T) {
	reg := &fakeRegistry{baskets: []host.BasketRecord{{Name: "Old Name", RegistryOperator: opHigh}}}
	s := newService(reg, nil)

	seen, err := collect(t, s, Basket("todo tokens"))
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Old Name", seen[0].Name)

	reg.baskets = []host.BasketRecord{{Name: "New Name", RegistryOperator: opHigh}}
	seen, err = collect(t, s, Basket("todo tokens"))
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, "Old Name", seen[0].Name)
	assert.Equal(t, "New Name", seen[1].Name)
	assert.Equal(t, "New Name", s.Peek(context.Background(), Basket("todo tokens")).Name)
}

func TestFailedResolutionKeepsCachedValue(t *testing.T) {
	reg := &fakeRegistry{protocols: []host.ProtocolRecord{{Name: "Todo List", RegistryOperator: opLow}}}
	s := newService(reg, nil)
	subj := Protocol("todo list", host.SecurityLevelCounterparty)

	_, err := collect(t, s, subj)
	require.NoError(t, err)

	reg.err = errors.New("registry unreachable")
	seen, err := collect(t, s, subj)
	assert.Error(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Todo List", seen[0].Name)
	assert.Equal(t, "Todo List", s.Peek(context.Background(), subj).Name)
}

func TestFailedResolutionWithoutCacheKeepsDefault(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("down")}
	s := newService(reg, nil)

	seen, err := collect(t, s, Basket("todo tokens"))
	assert.Error(t, err)
	assert.Empty(t, seen)
	assert.Equal(t, "todo tokens", s.Peek(context.Background(), Basket("todo tokens")).Name)
}

func TestUntrustedRecordsAreNotFound(t *testing.T) {
	reg := &fakeRegistry{certs: []host.CertificateRecord{{Name: "Spoof", RegistryOperator: opNone}}}
	s := newService(reg, nil)

	seen, err := collect(t, s, Certificate("email"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, seen)
	assert.Equal(t, []string{opHigh, opLow}, reg.operators)
}

func TestWithoutTrustSourceNothingIsTrusted(t *testing.T) {
	reg := &fakeRegistry{baskets: []host.BasketRecord{{Name: "Todo Tokens", RegistryOperator: opHigh}}}
	s := NewService(reg, nil, cache.NewMemoryStore(), cache.Policy{}, nil, quietLogger())

	seen, err := collect(t, s, Basket("todo tokens"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, seen)
	assert.Nil(t, reg.operators)
}

func TestCounterpartySpecialCases(t *testing.T) {
	reg := &fakeRegistry{}
	s := newService(reg, nil)

	seen, err := collect(t, s, Counterparty(host.CounterpartySelf))
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Self", seen[0].Name)

	seen, err = collect(t, s, Counterparty(host.CounterpartyAnyone))
	require.NoError(t, err)
	assert.Equal(t, "Anyone", seen[0].Name)
	assert.Equal(t, 0, reg.calls)
}

func TestCounterpartyIdentity(t *testing.T) {
	reg := &fakeRegistry{identities: []host.IdentityRecord{
		{Name: "Low Cert", AvatarURL: "low.png", Certifier: opLow},
		{Name: "Alice", AvatarURL: "alice.png", Badge: "Verified", Certifier: opHigh},
	}}
	s := newService(reg, nil)

	assert.Equal(t, "02cf6cdf…fd4a17", s.Peek(context.Background(), Counterparty(opLow)).Name)

	seen, err := collect(t, s, Counterparty(opLow))
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, Metadata{Name: "Alice", IconURL: "alice.png", Description: "Verified"}, seen[0])
}

func TestCacheKeys(t *testing.T) {
	s := newService(&fakeRegistry{}, nil)
	assert.Equal(t, []string{"manifest_label_todo.example.com", "favicon_label_todo.example.com"}, s.CacheKeys(App("https://todo.example.com/")))
	assert.Equal(t, []string{"basketInfo_todo tokens"}, s.CacheKeys(Basket("todo tokens")))
	assert.Equal(t, []string{"protocolInfo_todo list_2"}, s.CacheKeys(Protocol("todo list", 2)))
	assert.Equal(t, []string{fmt.Sprintf("certData_email_%s,%s", opHigh, opLow)}, s.CacheKeys(Certificate("email")))
	assert.Equal(t, []string{"signiaIdentity_" + opLow}, s.CacheKeys(Counterparty(opLow)))
}

func TestAppFromManifestAndFavicon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manifest.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"name":"Todo List App","short_name":"Todo"}`)
		case "/favicon.ico":
			w.Header().Set("Content-Type", "image/x-icon")
			_, _ = w.Write([]byte{0, 0, 1, 0})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := newService(&fakeRegistry{}, NewAppFetcher(srv.Client(), rate.Inf, 1))
	seen, err := collect(t, s, App(srv.URL))
	require.NoError(t, err)
	require.NotEmpty(t, seen)

	last := seen[len(seen)-1]
	assert.Equal(t, "Todo", last.Name)
	assert.Equal(t, srv.URL+"/favicon.ico", last.IconURL)

	cached := s.Peek(context.Background(), App(srv.URL))
	assert.Equal(t, last, cached)
}

func TestAppWithoutManifestUsesDomain(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := newService(&fakeRegistry{}, NewAppFetcher(srv.Client(), rate.Inf, 1))
	seen, err := collect(t, s, App(srv.URL))
	assert.Error(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, appDomain(srv.URL), seen[0].Name)
	assert.Empty(t, seen[0].IconURL)
}

func TestAppBaseURL(t *testing.T) {
	assert.Equal(t, "https://todo.example.com", appBaseURL("todo.example.com"))
	assert.Equal(t, "http://localhost:3000", appBaseURL("localhost:3000"))
	assert.Equal(t, "http://example.com", appBaseURL("http://example.com/"))
}
