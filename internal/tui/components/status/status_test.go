package status

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/metanet/internal/events"
)

func TestToastClearsOnlyItsOwnTimer(t *testing.T) {
	c := New()
	require.NotNil(t, c.Show(events.StatusError, "grant failed"))
	first, ok := c.Toast()
	require.True(t, ok)

	time.Sleep(time.Millisecond)
	c.Show(events.StatusInfo, "newer")

	c.Update(clearToastMsg{timestamp: first.Timestamp})
	toast, ok := c.Toast()
	require.True(t, ok, "stale timer must not clear the newer toast")
	assert.Equal(t, "newer", toast.Content)

	c.Update(clearToastMsg{timestamp: toast.Timestamp})
	_, ok = c.Toast()
	assert.False(t, ok)
}

func TestViewShowsLeftAndToast(t *testing.T) {
	c := New()
	assert.Empty(t, c.View(), "no width yet")

	c.SetSize(60, 1)
	c.SetLeftContent("Dashboard")
	c.Show(events.StatusWarning, "Unknown command: /nope")
	out := ansi.Strip(c.View())
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "Unknown command: /nope")
}
