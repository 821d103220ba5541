// Package chip renders resolved display labels for opaque identifiers.
//
// A Set shows the cached label as soon as a subject is requested and swaps
// in the resolved label when the resolver delivers one. A failed resolution
// leaves the shown label alone.
package chip

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/metanet/internal/resolve"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

// Resolver is the part of resolve.Service the chips use.
type Resolver interface {
	Peek(ctx context.Context, subj resolve.Subject) resolve.Metadata
	Resolve(ctx context.Context, subj resolve.Subject, onValue func(resolve.Metadata)) error
}

// ResolvedMsg carries the outcome of one resolution.
type ResolvedMsg struct {
	Subject  resolve.Subject
	Metadata resolve.Metadata
	// Delivered is false when the resolver produced nothing at all.
	Delivered bool
}

// Set tracks the labels of every subject on screen.
type Set struct {
	ctx      context.Context
	resolver Resolver
	labels   map[resolve.Subject]resolve.Metadata
	// requested subjects are not resolved again until Invalidate.
	requested map[resolve.Subject]bool
}

// NewSet creates an empty set. ctx bounds every resolution it starts.
func NewSet(ctx context.Context, r Resolver) *Set {
	return &Set{
		ctx:       ctx,
		resolver:  r,
		labels:    make(map[resolve.Subject]resolve.Metadata),
		requested: make(map[resolve.Subject]bool),
	}
}

// Label returns what to show for subj right now.
func (s *Set) Label(subj resolve.Subject) resolve.Metadata {
	if md, ok := s.labels[subj]; ok {
		return md
	}
	return resolve.Default(subj)
}

// Request shows the cached label of each new subject and returns the
// commands that resolve them.
func (s *Set) Request(subjects ...resolve.Subject) tea.Cmd {
	var cmds []tea.Cmd
	for _, subj := range subjects {
		if subj.ID == "" || s.requested[subj] {
			continue
		}
		s.requested[subj] = true
		if _, shown := s.labels[subj]; !shown {
			s.labels[subj] = s.resolver.Peek(s.ctx, subj)
		}
		cmds = append(cmds, s.resolveCmd(subj))
	}
	return tea.Batch(cmds...)
}

func (s *Set) resolveCmd(subj resolve.Subject) tea.Cmd {
	ctx, r := s.ctx, s.resolver
	return func() tea.Msg {
		msg := ResolvedMsg{Subject: subj}
		_ = r.Resolve(ctx, subj, func(md resolve.Metadata) {
			msg.Metadata = md
			msg.Delivered = true
		})
		return msg
	}
}

// Update applies a ResolvedMsg and reports whether a label changed.
func (s *Set) Update(msg tea.Msg) bool {
	res, ok := msg.(ResolvedMsg)
	if !ok || !res.Delivered {
		return false
	}
	if s.labels[res.Subject] == res.Metadata {
		return false
	}
	s.labels[res.Subject] = res.Metadata
	return true
}

// Invalidate lets every subject be resolved again on its next Request. The
// labels already shown stay until new values arrive.
func (s *Set) Invalidate() {
	clear(s.requested)
}

// Render draws the chip for subj.
func (s *Set) Render(subj resolve.Subject) string {
	return Render(subj.Kind, s.Label(subj))
}

// Render draws a chip for already resolved metadata.
func Render(kind resolve.Kind, md resolve.Metadata) string {
	theme := styles.CurrentTheme()
	icon, fg := styles.AppIcon, theme.ChipApp
	switch kind {
	case resolve.KindBasket:
		icon, fg = styles.BasketIcon, theme.ChipBasket
	case resolve.KindProtocol:
		icon, fg = styles.ProtocolIcon, theme.ChipProtocol
	case resolve.KindCertificate:
		icon, fg = styles.CertificateIcon, theme.ChipCertificate
	case resolve.KindCounterparty:
		icon, fg = styles.CounterpartyIcon, theme.ChipCounterparty
	}
	return theme.S().Chip.Foreground(fg).Render(icon + " " + md.Name)
}

// Detail renders the description under a chip, if there is one.
func Detail(md resolve.Metadata) string {
	if md.Description == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(styles.CurrentTheme().FgSubtle).Render(md.Description)
}
