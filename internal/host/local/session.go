package local

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/billie-coop/metanet/internal/host"
)

type authStage int

const (
	stageIdle authStage = iota
	stageCodeSent
	stageCodeVerified
	stageAwaitingAck
	stageRecovered
)

// pendingAuth is the in-flight login. Nothing here is persisted until the
// login completes.
type pendingAuth struct {
	stage   authStage
	phone   string
	code    string
	newUser bool

	// new account, held until the recovery key is acknowledged
	password    string
	recoveryKey string

	// recovery login, data key unwrapped with the recovery key
	dataKey []byte
}

var errEmptyPhone = errors.New("phone number is required")

// StartAuth issues a one-time code for phone and emits onCodeRequired.
func (h *Host) StartAuth(_ context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errEmptyPhone
	}

	code := h.fixedCode
	if code == "" {
		n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		code = fmt.Sprintf("%06d", n.Int64())
	}

	h.mu.Lock()
	h.auth = pendingAuth{stage: stageCodeSent, phone: phone, code: code}
	h.mu.Unlock()

	h.logger.Info("one-time code issued", "phone", phone)
	h.logger.Debug("one-time code", "code", code)
	return h.Emit(host.EventCodeRequired, host.CodeRequired{Phone: phone})
}

// SubmitCode checks the one-time code and emits onAccountStatusDiscovered.
func (h *Host) SubmitCode(_ context.Context, code string) error {
	h.mu.Lock()
	if h.auth.stage != stageCodeSent {
		h.mu.Unlock()
		return host.ErrNoPendingAuth
	}
	if strings.TrimSpace(code) != h.auth.code {
		h.mu.Unlock()
		return host.ErrInvalidCode
	}
	v := h.vault.Get()
	h.auth.newUser = !v.hasAccount() || v.Phone != h.auth.phone
	h.auth.stage = stageCodeVerified
	status := host.AccountExisting
	if h.auth.newUser {
		status = host.AccountNew
	}
	h.mu.Unlock()

	return h.Emit(host.EventAccountStatusDiscovered, host.AccountStatus{Status: status})
}

// AbortCode abandons the login in progress.
func (h *Host) AbortCode(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.auth = pendingAuth{}
	return nil
}

// SubmitPassword logs in an existing account, creates a new one, or sets the
// new password after a recovery key was accepted.
func (h *Host) SubmitPassword(_ context.Context, password, confirm string) error {
	if password == "" {
		return host.ErrInvalidPassword
	}

	h.mu.Lock()
	auth := h.auth
	h.mu.Unlock()

	switch {
	case auth.stage == stageCodeVerified && auth.newUser:
		if password != confirm {
			return host.ErrPasswordMismatch
		}
		return h.beginAccount(auth, password)
	case auth.stage == stageCodeVerified:
		return h.login(password)
	case auth.stage == stageRecovered:
		if password != confirm {
			return host.ErrPasswordMismatch
		}
		return h.resetPassword(auth, password)
	default:
		return host.ErrNoPendingAuth
	}
}

func (h *Host) beginAccount(auth pendingAuth, password string) error {
	raw, err := randomBytes(20)
	if err != nil {
		return fmt.Errorf("generate recovery key: %w", err)
	}
	key := formatRecoveryKey(raw)

	h.mu.Lock()
	h.auth.password = password
	h.auth.recoveryKey = key
	h.auth.stage = stageAwaitingAck
	h.mu.Unlock()

	h.logger.Info("new account staged", "phone", auth.phone)
	return h.Emit(host.EventRecoveryKeyNeedsSaving, host.RecoveryKey{Key: key})
}

// AcknowledgeRecoveryKey confirms the user saved the recovery key and
// finishes creating the new account.
func (h *Host) AcknowledgeRecoveryKey(context.Context) error {
	h.mu.Lock()
	auth := h.auth
	h.mu.Unlock()
	if auth.stage != stageAwaitingAck {
		return host.ErrNoPendingAuth
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(auth.password), h.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	recoveryHash, err := bcrypt.GenerateFromPassword([]byte(normalizeRecoveryKey(auth.recoveryKey)), h.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash recovery key: %w", err)
	}
	dataKey, err := randomBytes(32)
	if err != nil {
		return fmt.Errorf("generate data key: %w", err)
	}
	pwSalt, byPassword, err := wrapKey(auth.password, dataKey)
	if err != nil {
		return err
	}
	rkSalt, byRecovery, err := wrapKey(normalizeRecoveryKey(auth.recoveryKey), dataKey)
	if err != nil {
		return err
	}
	identity, err := randomBytes(32)
	if err != nil {
		return fmt.Errorf("generate identity key: %w", err)
	}

	err = h.vault.Update(func(v *vault) error {
		*v = vault{
			Phone:           auth.phone,
			IdentityKey:     "02" + hex.EncodeToString(identity),
			PasswordHash:    passwordHash,
			RecoveryKeyHash: recoveryHash,
			PasswordSalt:    pwSalt,
			KeyByPassword:   byPassword,
			RecoverySalt:    rkSalt,
			KeyByRecovery:   byRecovery,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return h.complete(dataKey)
}

func (h *Host) login(password string) error {
	v := h.vault.Get()
	if err := bcrypt.CompareHashAndPassword(v.PasswordHash, []byte(password)); err != nil {
		return host.ErrInvalidPassword
	}
	dataKey, err := unwrapKey(password, v.PasswordSalt, v.KeyByPassword)
	if err != nil {
		return fmt.Errorf("unlock vault: %w", err)
	}
	return h.complete(dataKey)
}

// SubmitRecoveryKey replaces the password step for an existing account. The
// next SubmitPassword sets a new password.
func (h *Host) SubmitRecoveryKey(_ context.Context, key string) error {
	h.mu.Lock()
	auth := h.auth
	h.mu.Unlock()
	if auth.stage != stageCodeVerified || auth.newUser {
		return host.ErrNoPendingAuth
	}

	key = normalizeRecoveryKey(key)
	v := h.vault.Get()
	if err := bcrypt.CompareHashAndPassword(v.RecoveryKeyHash, []byte(key)); err != nil {
		return host.ErrInvalidRecovery
	}
	dataKey, err := unwrapKey(key, v.RecoverySalt, v.KeyByRecovery)
	if err != nil {
		return fmt.Errorf("unlock vault: %w", err)
	}

	h.mu.Lock()
	h.auth.stage = stageRecovered
	h.auth.dataKey = dataKey
	h.mu.Unlock()
	return nil
}

func (h *Host) resetPassword(auth pendingAuth, password string) error {
	if err := h.rewrap(password, auth.dataKey); err != nil {
		return err
	}
	h.logger.Info("password reset with recovery key")
	return h.complete(auth.dataKey)
}

func (h *Host) rewrap(password string, dataKey []byte) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	salt, wrapped, err := wrapKey(password, dataKey)
	if err != nil {
		return err
	}
	return h.vault.Update(func(v *vault) error {
		v.PasswordHash = hash
		v.PasswordSalt = salt
		v.KeyByPassword = wrapped
		return nil
	})
}

func (h *Host) complete(dataKey []byte) error {
	h.mu.Lock()
	h.auth = pendingAuth{}
	h.authenticated = true
	h.dataKey = dataKey
	h.mu.Unlock()

	identity := h.vault.Get().IdentityKey
	h.logger.Info("authenticated", "identity_key", identity)
	return h.Emit(host.EventAuthenticationSuccess, host.AuthenticationSuccess{IdentityKey: identity})
}

// ChangePassword re-wraps the vault key under a new password.
func (h *Host) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	dataKey, err := h.unlocked()
	if err != nil {
		return err
	}
	if newPassword == "" {
		return host.ErrInvalidPassword
	}
	v := h.vault.Get()
	if err := bcrypt.CompareHashAndPassword(v.PasswordHash, []byte(oldPassword)); err != nil {
		return host.ErrInvalidPassword
	}
	return h.rewrap(newPassword, dataKey)
}

// IsAuthenticated reports whether a login completed.
func (h *Host) IsAuthenticated(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.authenticated, nil
}

// Logout forgets the unlocked vault key.
func (h *Host) Logout(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.authenticated = false
	h.dataKey = nil
	h.auth = pendingAuth{}
	return nil
}

// GetSettings returns the decrypted settings document, or nil when none has
// been saved yet.
func (h *Host) GetSettings(context.Context) (json.RawMessage, error) {
	dataKey, err := h.unlocked()
	if err != nil {
		return nil, err
	}
	v := h.vault.Get()
	if len(v.SealedSettings) == 0 {
		return nil, nil
	}
	plain, err := open(dataKey, v.SealedSettings, settingsInfo)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(plain), nil
}

// SetSettings encrypts and stores the settings document.
func (h *Host) SetSettings(_ context.Context, settings json.RawMessage) error {
	dataKey, err := h.unlocked()
	if err != nil {
		return err
	}
	if !json.Valid(settings) {
		return errors.New("settings are not valid JSON")
	}
	sealed, err := seal(dataKey, settings, settingsInfo)
	if err != nil {
		return err
	}
	return h.vault.Update(func(v *vault) error {
		v.SealedSettings = sealed
		return nil
	})
}

func (h *Host) unlocked() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.authenticated {
		return nil, host.ErrNotAuthenticated
	}
	return h.dataKey, nil
}

// formatRecoveryKey renders raw bytes as dash-separated groups of four.
func formatRecoveryKey(raw []byte) string {
	enc := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	var groups []string
	for len(enc) > 4 {
		groups = append(groups, enc[:4])
		enc = enc[4:]
	}
	groups = append(groups, enc)
	return strings.Join(groups, "-")
}

func normalizeRecoveryKey(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	return strings.NewReplacer("-", "", " ", "").Replace(key)
}
