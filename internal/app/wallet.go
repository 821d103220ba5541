package app

import (
	"context"
	"fmt"

	"github.com/billie-coop/metanet/internal/host"
	"github.com/billie-coop/metanet/internal/settings"
)

// recentLimit is how many transactions the dashboard lists.
const recentLimit = 10

// Dashboard is what the signed in landing page shows.
type Dashboard struct {
	IdentityKey  string
	Balance      int64
	BalanceText  string
	Transactions []host.Transaction
	Certificates []host.Certificate
}

// WalletService reads the wallet for the dashboard and formats amounts in the
// user's currency.
type WalletService struct {
	wallet    host.Wallet
	settings  *settings.Service
	usdPerBSV float64
}

// NewWalletService creates a wallet reader.
func NewWalletService(wallet host.Wallet, s *settings.Service, usdPerBSV float64) *WalletService {
	return &WalletService{wallet: wallet, settings: s, usdPerBSV: usdPerBSV}
}

// FormatAmount renders sats in the current currency. Unknown currencies fall
// back to satoshis.
func (w *WalletService) FormatAmount(sats int64) string {
	out, err := settings.FormatAmount(sats, w.settings.Current().Currency, w.usdPerBSV)
	if err != nil {
		out, _ = settings.FormatAmount(sats, settings.CurrencySATS, w.usdPerBSV)
	}
	return out
}

// Dashboard loads the identity key, balance, recent transactions (optionally
// filtered by label) and certificates.
func (w *WalletService) Dashboard(ctx context.Context, label string) (Dashboard, error) {
	var d Dashboard
	var err error

	d.IdentityKey, err = w.wallet.PublicKey(ctx, host.PublicKeyArgs{IdentityKey: true})
	if err != nil {
		return Dashboard{}, fmt.Errorf("identity key: %w", err)
	}
	d.Balance, err = w.wallet.TotalValue(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("balance: %w", err)
	}
	d.BalanceText = w.FormatAmount(d.Balance)

	d.Transactions, err = w.wallet.Transactions(ctx, host.TransactionQuery{Label: label, Limit: recentLimit})
	if err != nil {
		return Dashboard{}, fmt.Errorf("transactions: %w", err)
	}
	d.Certificates, err = w.wallet.FindCertificates(ctx, host.CertificateQuery{
		Certifiers: w.settings.Current().Operators(),
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("certificates: %w", err)
	}
	return d, nil
}
