package core

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// TickMsg is sent periodically so age displays stay current.
type TickMsg struct {
	Time time.Time
	ID   string
}

// Ticker re-renders something that shows how long ago an instant was.
type Ticker struct {
	id       string
	since    time.Time
	interval time.Duration
	running  bool
	now      func() time.Time
}

// NewTicker creates a ticker with the given interval. Intervals below 100ms
// are raised to 100ms.
func NewTicker(id string, interval time.Duration) *Ticker {
	if interval < 100*time.Millisecond {
		interval = 100 * time.Millisecond
	}
	return &Ticker{id: id, interval: interval, now: time.Now}
}

// Start measures age from since and begins ticking.
func (t *Ticker) Start(since time.Time) tea.Cmd {
	t.since = since
	if t.running {
		return nil
	}
	t.running = true
	return t.tick()
}

// Stop halts the ticks. The next Start resumes them.
func (t *Ticker) Stop() {
	t.running = false
}

// Running reports whether ticks are scheduled.
func (t *Ticker) Running() bool {
	return t.running
}

// Age is the time elapsed since the start instant.
func (t *Ticker) Age() time.Duration {
	if t.since.IsZero() {
		return 0
	}
	return t.now().Sub(t.since)
}

// Update continues ticking on this ticker's TickMsg.
func (t *Ticker) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(TickMsg); ok && tick.ID == t.id && t.running {
		return t.tick()
	}
	return nil
}

func (t *Ticker) tick() tea.Cmd {
	id := t.id
	return tea.Tick(t.interval, func(tm time.Time) tea.Msg {
		return TickMsg{Time: tm, ID: id}
	})
}

// FormatAge formats a duration as "42s", "3m 07s" or "2h 05m".
func FormatAge(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
