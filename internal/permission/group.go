package permission

import (
	"fmt"

	"github.com/billie-coop/metanet/internal/host"
)

// Section names the part of a group request an item belongs to.
type Section string

const (
	SectionSpending    Section = "spending"
	SectionProtocol    Section = "protocol"
	SectionBasket      Section = "basket"
	SectionCertificate Section = "certificate"
)

// GroupItem is one toggleable line of a group request.
type GroupItem struct {
	Section Section
	Index   int
	Label   string
	Enabled bool
}

// GroupSelection tracks which sub-grants of a group request the user keeps.
type GroupSelection struct {
	Requested host.GroupGrant

	spending     bool
	protocols    []bool
	baskets      []bool
	certificates []bool
}

// NewGroupSelection enables every requested item.
func NewGroupSelection(requested host.GroupGrant) *GroupSelection {
	return &GroupSelection{
		Requested:    requested,
		spending:     requested.SpendingAuthorization != nil,
		protocols:    allTrue(len(requested.ProtocolPermissions)),
		baskets:      allTrue(len(requested.BasketAccess)),
		certificates: allTrue(len(requested.CertificateAccess)),
	}
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

// Items lists every requested item in display order.
func (g *GroupSelection) Items() []GroupItem {
	var items []GroupItem
	if sa := g.Requested.SpendingAuthorization; sa != nil {
		items = append(items, GroupItem{
			Section: SectionSpending,
			Label:   fmt.Sprintf("Spend up to %d satoshis", sa.Amount),
			Enabled: g.spending,
		})
	}
	for i, p := range g.Requested.ProtocolPermissions {
		items = append(items, GroupItem{
			Section: SectionProtocol,
			Index:   i,
			Label:   protocolLabel(p),
			Enabled: g.protocols[i],
		})
	}
	for i, b := range g.Requested.BasketAccess {
		items = append(items, GroupItem{
			Section: SectionBasket,
			Index:   i,
			Label:   "Basket " + b.Basket,
			Enabled: g.baskets[i],
		})
	}
	for i, c := range g.Requested.CertificateAccess {
		items = append(items, GroupItem{
			Section: SectionCertificate,
			Index:   i,
			Label:   fmt.Sprintf("Certificate %s (%d fields)", c.CertificateType, len(c.Fields)),
			Enabled: g.certificates[i],
		})
	}
	return items
}

func protocolLabel(p host.ProtocolGrant) string {
	if p.Counterparty != "" {
		return fmt.Sprintf("Protocol %s (level %d, %s)", p.ProtocolID, p.SecurityLevel, p.Counterparty)
	}
	return fmt.Sprintf("Protocol %s (level %d)", p.ProtocolID, p.SecurityLevel)
}

// Toggle flips the n-th item of Items. Out of range indexes are ignored.
func (g *GroupSelection) Toggle(n int) {
	items := g.Items()
	if n < 0 || n >= len(items) {
		return
	}
	it := items[n]
	switch it.Section {
	case SectionSpending:
		g.spending = !g.spending
	case SectionProtocol:
		g.protocols[it.Index] = !g.protocols[it.Index]
	case SectionBasket:
		g.baskets[it.Index] = !g.baskets[it.Index]
	case SectionCertificate:
		g.certificates[it.Index] = !g.certificates[it.Index]
	}
}

// Granted returns the enabled subset of the requested permissions.
func (g *GroupSelection) Granted() host.GroupGrant {
	var out host.GroupGrant
	if g.spending && g.Requested.SpendingAuthorization != nil {
		sa := *g.Requested.SpendingAuthorization
		out.SpendingAuthorization = &sa
	}
	for i, p := range g.Requested.ProtocolPermissions {
		if g.protocols[i] {
			out.ProtocolPermissions = append(out.ProtocolPermissions, p)
		}
	}
	for i, b := range g.Requested.BasketAccess {
		if g.baskets[i] {
			out.BasketAccess = append(out.BasketAccess, b)
		}
	}
	for i, c := range g.Requested.CertificateAccess {
		if g.certificates[i] {
			out.CertificateAccess = append(out.CertificateAccess, c)
		}
	}
	return out
}
