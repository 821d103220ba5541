package local

import "slices"

// vault is everything the local host persists between runs.
type vault struct {
	Phone           string  `json:"phone,omitempty"`
	IdentityKey     string  `json:"identity_key,omitempty"`
	PasswordHash    []byte  `json:"password_hash,omitempty"`
	RecoveryKeyHash []byte  `json:"recovery_key_hash,omitempty"`
	PasswordSalt    []byte  `json:"password_salt,omitempty"`
	KeyByPassword   []byte  `json:"key_by_password,omitempty"`
	RecoverySalt    []byte  `json:"recovery_salt,omitempty"`
	KeyByRecovery   []byte  `json:"key_by_recovery,omitempty"`
	SealedSettings  []byte  `json:"sealed_settings,omitempty"`
	Grants          []grant `json:"grants,omitempty"`
}

// grant remembers an approved permission so identical requests skip the UI.
type grant struct {
	Originator string `json:"originator"`
	Kind       string `json:"kind"`
	Key        string `json:"key"`
}

func newVault() vault {
	return vault{}
}

func (v *vault) hasAccount() bool {
	return v.Phone != "" && len(v.PasswordHash) > 0
}

func (v *vault) granted(g grant) bool {
	return slices.Contains(v.Grants, g)
}

func (v *vault) remember(g grant) {
	if !v.granted(g) {
		v.Grants = append(v.Grants, g)
	}
}
