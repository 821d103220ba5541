package local

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/billie-coop/metanet/internal/host"
)

// Transactions returns seeded transactions, newest first.
func (h *Host) Transactions(_ context.Context, query host.TransactionQuery) ([]host.Transaction, error) {
	if _, err := h.unlocked(); err != nil {
		return nil, err
	}

	var out []host.Transaction
	for _, tx := range h.seed.Transactions {
		if query.Label != "" && !slices.Contains(tx.Labels, query.Label) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedUnix > out[j].CreatedUnix })

	if query.Offset > 0 {
		if query.Offset >= len(out) {
			return nil, nil
		}
		out = out[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(out) {
		out = out[:query.Limit]
	}
	return out, nil
}

// TransactionOutputs lists the outputs tracked in basket.
func (h *Host) TransactionOutputs(_ context.Context, basket string) ([]host.Output, error) {
	if _, err := h.unlocked(); err != nil {
		return nil, err
	}

	var out []host.Output
	for _, o := range h.seed.Outputs {
		if o.Basket == basket {
			out = append(out, o)
		}
	}
	return out, nil
}

// TotalValue sums the spendable outputs of the default basket.
func (h *Host) TotalValue(ctx context.Context) (int64, error) {
	outputs, err := h.TransactionOutputs(ctx, "default")
	if err != nil {
		return 0, err
	}
	var total int64
	for _, o := range outputs {
		total += o.Amount
	}
	return total, nil
}

// PublicKey returns the identity key, or a key derived from it for the
// given protocol, key ID and counterparty.
func (h *Host) PublicKey(_ context.Context, args host.PublicKeyArgs) (string, error) {
	if _, err := h.unlocked(); err != nil {
		return "", err
	}
	identity := h.vault.Get().IdentityKey
	if args.IdentityKey {
		return identity, nil
	}
	if args.ProtocolID == "" || args.KeyID == "" {
		return "", fmt.Errorf("protocolID and keyID are required for derived keys")
	}

	sum := sha256.New()
	for _, part := range []string{identity, strconv.Itoa(int(args.SecurityLevel)), args.ProtocolID, args.KeyID, args.Counterparty} {
		sum.Write([]byte(part))
		sum.Write([]byte{0})
	}
	return "02" + hex.EncodeToString(sum.Sum(nil)), nil
}

// FindCertificates lists held certificates matching the query. Empty filters
// match everything.
func (h *Host) FindCertificates(_ context.Context, query host.CertificateQuery) ([]host.Certificate, error) {
	if _, err := h.unlocked(); err != nil {
		return nil, err
	}

	var out []host.Certificate
	for _, c := range h.seed.Certificates {
		if len(query.Certifiers) > 0 && !slices.Contains(query.Certifiers, c.Certifier) {
			continue
		}
		if len(query.Types) > 0 && !slices.Contains(query.Types, c.Type) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ProveCertificate returns the certificate with a keyring that opens only
// the requested fields for the verifier.
func (h *Host) ProveCertificate(_ context.Context, args host.ProveArgs) (host.Certificate, error) {
	if _, err := h.unlocked(); err != nil {
		return host.Certificate{}, err
	}

	idx := slices.IndexFunc(h.seed.Certificates, func(c host.Certificate) bool {
		return c.SerialNumber == args.Certificate.SerialNumber
	})
	if idx < 0 {
		return host.Certificate{}, fmt.Errorf("certificate %s not held", args.Certificate.SerialNumber)
	}
	cert := h.seed.Certificates[idx]

	keyring := make(map[string]string, len(args.FieldsToReveal))
	for _, field := range args.FieldsToReveal {
		if _, ok := cert.Fields[field]; !ok {
			return host.Certificate{}, fmt.Errorf("certificate has no field %q", field)
		}
		sum := sha256.Sum256([]byte(args.VerifierPublicKey + "/" + cert.SerialNumber + "/" + field))
		keyring[field] = base64.StdEncoding.EncodeToString(sum[:])
	}
	cert.Keyring = keyring
	return cert, nil
}
