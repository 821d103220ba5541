package page

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/metanet/internal/tui/components/core"
	"github.com/billie-coop/metanet/internal/tui/styles"
)

const welcomeText = `Your account is ready.

Apps you use ask this client before they touch your keys, baskets or
certificates. Each request shows up here as a dialog, one at a time, and
waits until you allow or deny it.

Press **ctrl+s** to pick your currency and theme, or **f1** for help.`

// Welcome greets a new user once after sign up.
type Welcome struct {
	core.SizeableBase
}

var _ Page = (*Welcome)(nil)

// NewWelcome creates the welcome page.
func NewWelcome() *Welcome {
	return &Welcome{}
}

func (w *Welcome) Init() tea.Cmd {
	return nil
}

func (w *Welcome) Update(msg tea.Msg) tea.Cmd {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "space", "esc":
			return core.Emit(ContinueMsg{})
		}
	}
	return nil
}

func (w *Welcome) View() string {
	s := styles.CurrentTheme().S()
	content := strings.Join([]string{
		styles.RenderThemeGradient("Welcome to the MetaNet", true),
		"",
		styles.RenderMarkdown(welcomeText, 60),
		"",
		s.Subtle.Render("enter go to your dashboard"),
	}, "\n")
	return card(w.Width, w.Height, content)
}
