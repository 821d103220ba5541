package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyA = "03daf815fe38f83da0ad83b5bedc520aa488aef5cbc93a93c67a7fe60406cbffe8"
	keyB = "02cf6cdf466951d8dfc9e7c9367511d0007ed6fba35ed42d425cc412fd6cfd4a17"
)

func TestTrustedEntities(t *testing.T) {
	var s Settings
	require.NoError(t, s.AddTrustedEntity(TrustedEntity{Name: "A", PublicKey: keyA, Trust: 5}))
	require.NoError(t, s.AddTrustedEntity(TrustedEntity{Name: "B", PublicKey: keyB, Trust: 3}))

	assert.Equal(t, 5, s.TrustFor(keyA))
	assert.Equal(t, 0, s.TrustFor("02ff"))
	assert.Equal(t, []string{keyA, keyB}, s.Operators())

	require.NoError(t, s.AddTrustedEntity(TrustedEntity{Name: "A2", PublicKey: keyA, Trust: 9}))
	assert.Len(t, s.TrustedEntities, 2)
	assert.Equal(t, 9, s.TrustFor(keyA))

	assert.True(t, s.RemoveTrustedEntity(keyB))
	assert.False(t, s.RemoveTrustedEntity(keyB))
	assert.Equal(t, []string{keyA}, s.Operators())
}

func TestAddTrustedEntityValidates(t *testing.T) {
	var s Settings
	assert.ErrorIs(t, s.AddTrustedEntity(TrustedEntity{Name: "x", PublicKey: "04abc", Trust: 1}), ErrInvalidPublicKey)
	assert.ErrorIs(t, s.AddTrustedEntity(TrustedEntity{Name: "x", PublicKey: keyA, Trust: 11}), ErrInvalidTrust)
	assert.ErrorIs(t, s.AddTrustedEntity(TrustedEntity{Name: "x", PublicKey: keyA, Trust: 0}), ErrInvalidTrust)
	assert.Error(t, s.AddTrustedEntity(TrustedEntity{PublicKey: keyA, Trust: 1}))
	assert.Empty(t, s.TrustedEntities)
}

func TestCloneIsDeep(t *testing.T) {
	s := Settings{TrustedEntities: []TrustedEntity{{Name: "A", PublicKey: keyA, Trust: 1}}}
	c := s.Clone()
	c.TrustedEntities[0].Trust = 9
	assert.Equal(t, 1, s.TrustedEntities[0].Trust)
}

func TestNormalize(t *testing.T) {
	defaults := Settings{Currency: CurrencyBSV, Theme: Theme{Mode: ThemeDark}, TrustedEntities: []TrustedEntity{{Name: "A", PublicKey: keyA, Trust: 1}}}

	got := Settings{Currency: "usd", Theme: Theme{Mode: "neon"}}.Normalize(defaults)
	assert.Equal(t, CurrencyUSD, got.Currency)
	assert.Equal(t, ThemeDark, got.Theme.Mode)
	assert.Len(t, got.TrustedEntities, 1)

	got = Settings{Currency: "DOGE", TrustedEntities: []TrustedEntity{}}.Normalize(defaults)
	assert.Equal(t, CurrencyBSV, got.Currency)
	assert.Empty(t, got.TrustedEntities, "an explicitly empty list is kept")
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		sats     int64
		currency string
		want     string
	}{
		{125000, CurrencySATS, "125,000 sats"},
		{-1500, CurrencySATS, "-1,500 sats"},
		{125000, CurrencyBSV, "0.00125000 BSV"},
		{250_000_000, CurrencyBSV, "2.00000000 BSV"},
		{100_000_000, CurrencyUSD, "$45.50"},
		{1_000_000_000_000, CurrencyUSD, "$455,000.00"},
	}
	for _, tt := range tests {
		got, err := FormatAmount(tt.sats, tt.currency, 45.5)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatAmount(1, "DOGE", 1)
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}
