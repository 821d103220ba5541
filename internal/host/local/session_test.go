package local

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/metanet/internal/host"
)

const testPhone = "+15555550100"

// signUp creates an account and returns its recovery key.
func signUp(t *testing.T, h *Host, password string) string {
	t.Helper()
	ctx := context.Background()
	status := record(h, host.EventAccountStatusDiscovered)
	recovery := record(h, host.EventRecoveryKeyNeedsSaving)

	require.NoError(t, h.StartAuth(ctx, testPhone))
	require.NoError(t, h.SubmitCode(ctx, testCode))

	var st host.AccountStatus
	status.last(t, &st)
	require.Equal(t, host.AccountNew, st.Status)

	require.NoError(t, h.SubmitPassword(ctx, password, password))
	var rk host.RecoveryKey
	recovery.last(t, &rk)
	require.NotEmpty(t, rk.Key)

	require.NoError(t, h.AcknowledgeRecoveryKey(ctx))
	return rk.Key
}

func TestNewAccountFlow(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	codes := record(h, host.EventCodeRequired)
	success := record(h, host.EventAuthenticationSuccess)

	signUp(t, h, "hunter22")

	var code host.CodeRequired
	codes.last(t, &code)
	assert.Equal(t, testPhone, code.Phone)

	var done host.AuthenticationSuccess
	success.last(t, &done)
	assert.NotEmpty(t, done.IdentityKey)

	authed, err := h.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authed)

	key, err := h.PublicKey(ctx, host.PublicKeyArgs{IdentityKey: true})
	require.NoError(t, err)
	assert.Equal(t, done.IdentityKey, key)
}

func TestWrongCodeAndMismatchedPasswords(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()

	require.NoError(t, h.StartAuth(ctx, testPhone))
	assert.ErrorIs(t, h.SubmitCode(ctx, "000000"), host.ErrInvalidCode)
	require.NoError(t, h.SubmitCode(ctx, testCode))
	assert.ErrorIs(t, h.SubmitPassword(ctx, "a", "b"), host.ErrPasswordMismatch)
	assert.ErrorIs(t, h.SubmitPassword(ctx, "", ""), host.ErrInvalidPassword)
}

func TestAbortCodeResetsFlow(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()

	require.NoError(t, h.StartAuth(ctx, testPhone))
	require.NoError(t, h.AbortCode(ctx))
	assert.ErrorIs(t, h.SubmitCode(ctx, testCode), host.ErrNoPendingAuth)
}

func TestSettingsAreSealedAndSurviveLogin(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	h := newTestHost(t, dir)
	signUp(t, h, "hunter22")

	empty, err := h.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	doc := json.RawMessage(`{"theme":{"mode":"dark"},"currency":"USD"}`)
	require.NoError(t, h.SetSettings(ctx, doc))
	assert.NotContains(t, string(h.vault.Get().SealedSettings), "dark")

	reopened := newTestHost(t, dir)
	status := record(reopened, host.EventAccountStatusDiscovered)
	require.NoError(t, reopened.StartAuth(ctx, testPhone))
	require.NoError(t, reopened.SubmitCode(ctx, testCode))
	var st host.AccountStatus
	status.last(t, &st)
	assert.Equal(t, host.AccountExisting, st.Status)

	assert.ErrorIs(t, reopened.SubmitPassword(ctx, "wrong", ""), host.ErrInvalidPassword)
	require.NoError(t, reopened.SubmitPassword(ctx, "hunter22", ""))

	got, err := reopened.GetSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))
}

func TestRecoveryKeyResetsPassword(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	h := newTestHost(t, dir)
	key := signUp(t, h, "forgotten")
	require.NoError(t, h.SetSettings(ctx, json.RawMessage(`{"currency":"SATS"}`)))
	require.NoError(t, h.Logout(ctx))

	require.NoError(t, h.StartAuth(ctx, testPhone))
	require.NoError(t, h.SubmitCode(ctx, testCode))
	assert.ErrorIs(t, h.SubmitRecoveryKey(ctx, "AAAA-BBBB"), host.ErrInvalidRecovery)
	require.NoError(t, h.SubmitRecoveryKey(ctx, " "+key+" "))
	require.NoError(t, h.SubmitPassword(ctx, "remembered", "remembered"))

	got, err := h.GetSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"SATS"}`, string(got))

	require.NoError(t, h.Logout(ctx))
	require.NoError(t, h.StartAuth(ctx, testPhone))
	require.NoError(t, h.SubmitCode(ctx, testCode))
	require.NoError(t, h.SubmitPassword(ctx, "remembered", ""))
}

func TestChangePassword(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	signUp(t, h, "old-password")
	require.NoError(t, h.SetSettings(ctx, json.RawMessage(`{"currency":"BSV"}`)))

	assert.ErrorIs(t, h.ChangePassword(ctx, "nope", "new-password"), host.ErrInvalidPassword)
	require.NoError(t, h.ChangePassword(ctx, "old-password", "new-password"))
	require.NoError(t, h.Logout(ctx))

	authed, _ := h.IsAuthenticated(ctx)
	assert.False(t, authed)

	require.NoError(t, h.StartAuth(ctx, testPhone))
	require.NoError(t, h.SubmitCode(ctx, testCode))
	assert.ErrorIs(t, h.SubmitPassword(ctx, "old-password", ""), host.ErrInvalidPassword)
	require.NoError(t, h.SubmitPassword(ctx, "new-password", ""))

	got, err := h.GetSettings(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"BSV"}`, string(got))
}

func TestWalletQueries(t *testing.T) {
	h := newTestHost(t, "")
	ctx := context.Background()
	signUp(t, h, "hunter22")

	total, err := h.TotalValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120800+48500), total)

	txs, err := h.Transactions(ctx, host.TransactionQuery{Label: "reading"})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Greater(t, txs[0].CreatedUnix, txs[1].CreatedUnix)

	txs, err = h.Transactions(ctx, host.TransactionQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	certs, err := h.FindCertificates(ctx, host.CertificateQuery{Certifiers: []string{OperatorSocialCert}})
	require.NoError(t, err)
	require.Len(t, certs, 2)

	proved, err := h.ProveCertificate(ctx, host.ProveArgs{
		Certificate:       certs[0],
		FieldsToReveal:    []string{"userName"},
		VerifierPublicKey: "02ab",
	})
	require.NoError(t, err)
	assert.Len(t, proved.Keyring, 1)
	assert.Contains(t, proved.Keyring, "userName")

	_, err = h.ProveCertificate(ctx, host.ProveArgs{Certificate: certs[0], FieldsToReveal: []string{"missing"}})
	assert.Error(t, err)

	k1, err := h.PublicKey(ctx, host.PublicKeyArgs{ProtocolID: "todo list", KeyID: "1", Counterparty: host.CounterpartySelf})
	require.NoError(t, err)
	k2, err := h.PublicKey(ctx, host.PublicKeyArgs{ProtocolID: "todo list", KeyID: "2", Counterparty: host.CounterpartySelf})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestRecoveryKeyFormat(t *testing.T) {
	key := formatRecoveryKey(make([]byte, 20))
	assert.Equal(t, "AAAA-AAAA-AAAA-AAAA-AAAA-AAAA-AAAA-AAAA", key)
	assert.Equal(t, "AAAAAAAA", normalizeRecoveryKey("aaaa-aaaa"))
}
