package host

// SecurityLevel of a protocol: 0 silent, 1 app-wide, 2 per counterparty.
type SecurityLevel int

const (
	SecurityLevelSilent       SecurityLevel = 0
	SecurityLevelApp          SecurityLevel = 1
	SecurityLevelCounterparty SecurityLevel = 2
)

// Special counterparty values accepted by the host.
const (
	CounterpartySelf   = "self"
	CounterpartyAnyone = "anyone"
)

// ProtocolPermissionRequest is the payload of onProtocolPermissionRequested.
type ProtocolPermissionRequest struct {
	RequestID     string        `json:"requestID"`
	Originator    string        `json:"originator"`
	ProtocolID    string        `json:"protocolID"`
	SecurityLevel SecurityLevel `json:"securityLevel"`
	Counterparty  string        `json:"counterparty,omitempty"`
	Description   string        `json:"description,omitempty"`
	Renewal       bool          `json:"renewal,omitempty"`
}

// BasketAccessRequest is the payload of onBasketAccessRequested.
type BasketAccessRequest struct {
	RequestID   string `json:"requestID"`
	Originator  string `json:"originator"`
	Basket      string `json:"basket"`
	Description string `json:"description,omitempty"`
	Renewal     bool   `json:"renewal,omitempty"`
}

// CertificateAccessRequest is the payload of onCertificateAccessRequested.
type CertificateAccessRequest struct {
	RequestID         string   `json:"requestID"`
	Originator        string   `json:"originator"`
	CertificateType   string   `json:"certificateType"`
	Fields            []string `json:"fields"`
	VerifierPublicKey string   `json:"verifierPublicKey"`
	Description       string   `json:"description,omitempty"`
	Renewal           bool     `json:"renewal,omitempty"`
}

// SpendingAuthorization asks for a budget the app may spend without asking.
type SpendingAuthorization struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// ProtocolGrant is one protocol sub-grant of a group request.
type ProtocolGrant struct {
	ProtocolID    string        `json:"protocolID"`
	SecurityLevel SecurityLevel `json:"securityLevel"`
	Counterparty  string        `json:"counterparty,omitempty"`
	Description   string        `json:"description,omitempty"`
}

// BasketGrant is one basket sub-grant of a group request.
type BasketGrant struct {
	Basket      string `json:"basket"`
	Description string `json:"description,omitempty"`
}

// CertificateGrant is one certificate sub-grant of a group request.
type CertificateGrant struct {
	CertificateType   string   `json:"type"`
	Fields            []string `json:"fields"`
	VerifierPublicKey string   `json:"verifierPublicKey"`
	Description       string   `json:"description,omitempty"`
}

// GroupGrant is the set of permissions in a group request, and also the
// subset the user approved when passed back to GrantGroupPermission.
type GroupGrant struct {
	SpendingAuthorization *SpendingAuthorization `json:"spendingAuthorization,omitempty"`
	ProtocolPermissions   []ProtocolGrant        `json:"protocolPermissions,omitempty"`
	BasketAccess          []BasketGrant          `json:"basketAccess,omitempty"`
	CertificateAccess     []CertificateGrant     `json:"certificateAccess,omitempty"`
}

// Empty reports whether the grant contains nothing.
func (g GroupGrant) Empty() bool {
	return g.SpendingAuthorization == nil &&
		len(g.ProtocolPermissions) == 0 &&
		len(g.BasketAccess) == 0 &&
		len(g.CertificateAccess) == 0
}

// GroupPermissionRequest is the payload of onGroupPermissionRequested.
type GroupPermissionRequest struct {
	RequestID   string     `json:"requestID"`
	Originator  string     `json:"originator"`
	Permissions GroupGrant `json:"groupPermissions"`
	Description string     `json:"description,omitempty"`
	Renewal     bool       `json:"renewal,omitempty"`
}

// CodeRequired is the payload of onCodeRequired.
type CodeRequired struct {
	Phone string `json:"phone"`
}

// RecoveryKey is the payload of onRecoveryKeyNeedsSaving.
type RecoveryKey struct {
	Key string `json:"recoveryKey"`
}

// AccountStatus is the payload of onAccountStatusDiscovered.
type AccountStatus struct {
	Status string `json:"status"`
}

const (
	AccountNew      = "new-user"
	AccountExisting = "existing-user"
)

// AuthenticationSuccess is the payload of onAuthenticationSuccess.
type AuthenticationSuccess struct {
	IdentityKey string `json:"identityKey"`
}

// TransactionQuery filters Transactions.
type TransactionQuery struct {
	Label  string `json:"label,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Transaction is a wallet transaction as reported by the host.
type Transaction struct {
	TXID        string   `json:"txid"`
	Amount      int64    `json:"amount"`
	Status      string   `json:"status"`
	Note        string   `json:"note,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Originator  string   `json:"originator,omitempty"`
	CreatedUnix int64    `json:"created_at"`
}

// Output is an unspent output tracked in a basket.
type Output struct {
	Outpoint string   `json:"outpoint"`
	Basket   string   `json:"basket"`
	Amount   int64    `json:"amount"`
	Tags     []string `json:"tags,omitempty"`
}

// PublicKeyArgs selects which key PublicKey returns.
type PublicKeyArgs struct {
	IdentityKey   bool          `json:"identityKey,omitempty"`
	ProtocolID    string        `json:"protocolID,omitempty"`
	SecurityLevel SecurityLevel `json:"securityLevel,omitempty"`
	KeyID         string        `json:"keyID,omitempty"`
	Counterparty  string        `json:"counterparty,omitempty"`
}

// CertificateQuery filters FindCertificates.
type CertificateQuery struct {
	Certifiers []string `json:"certifiers,omitempty"`
	Types      []string `json:"types,omitempty"`
}

// Certificate is an identity credential held by the wallet.
type Certificate struct {
	Type         string            `json:"type"`
	SerialNumber string            `json:"serialNumber"`
	Subject      string            `json:"subject"`
	Certifier    string            `json:"certifier"`
	Fields       map[string]string `json:"fields"`
	Keyring      map[string]string `json:"keyring,omitempty"`
}

// ProveArgs asks the host to reveal fields of a certificate to a verifier.
type ProveArgs struct {
	Certificate       Certificate `json:"certificate"`
	FieldsToReveal    []string    `json:"fieldsToReveal"`
	VerifierPublicKey string      `json:"verifierPublicIdentityKey"`
}
