package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/clawdsign/pkg/errors"
	"github.com/matzehuels/clawdsign/pkg/service"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// LeaderboardModel - Live top agents view
// =============================================================================

// statsFetcher loads a fresh stats snapshot.
type statsFetcher func(ctx context.Context) (*service.Stats, error)

type statsMsg struct {
	stats *service.Stats
	err   error
}

// LeaderboardModel is the bubbletea model for the top agents view.
type LeaderboardModel struct {
	Stats   *service.Stats
	Err     error
	Cursor  int
	Loading bool

	fetch statsFetcher
	now   func() time.Time
}

// NewLeaderboardModel creates a leaderboard that loads data with fetch.
func NewLeaderboardModel(fetch statsFetcher) LeaderboardModel {
	return LeaderboardModel{fetch: fetch, Loading: true, now: time.Now}
}

func (m LeaderboardModel) Init() tea.Cmd {
	return m.load()
}

func (m LeaderboardModel) load() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		st, err := fetch(ctx)
		return statsMsg{stats: st, err: err}
	}
}

func (m LeaderboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.Loading = false
		m.Err = msg.err
		if msg.err == nil {
			m.Stats = msg.stats
			if m.Cursor >= len(m.Stats.TopAgents) {
				m.Cursor = max(len(m.Stats.TopAgents)-1, 0)
			}
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Stats != nil && m.Cursor < len(m.Stats.TopAgents)-1 {
				m.Cursor++
			}
		case "r":
			if !m.Loading {
				m.Loading = true
				return m, m.load()
			}
		}
	}
	return m, nil
}

func (m LeaderboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Top Signatures"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  r refresh  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err) + "\n")
	case m.Stats == nil:
		b.WriteString(listDimStyle.Render("Loading...") + "\n")
	case len(m.Stats.TopAgents) == 0:
		b.WriteString(listDimStyle.Render("No signatures claimed yet") + "\n")
	default:
		b.WriteString(m.table())
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d agents  %d votes  updated %s",
			m.Stats.TotalAgents, m.Stats.TotalVotes, formatRelativeTime(m.Stats.Timestamp, m.now()))))
	}
	if m.Loading && m.Stats != nil {
		b.WriteString("\n" + listDimStyle.Render("  refreshing..."))
	}
	return b.String()
}

func (m LeaderboardModel) table() string {
	now := m.now()
	rows := make([][]string, len(m.Stats.TopAgents))
	for i, a := range m.Stats.TopAgents {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{
			cursor,
			strconv.Itoa(i + 1),
			"#" + a.SignatureID,
			a.Name,
			a.Model,
			strconv.FormatInt(a.Votes, 10),
			formatRelativeTime(a.CreatedAt, now),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Signature", "Name", "Model", "Votes", "Claimed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 6 {
				base = base.Foreground(colorDim)
			}
			if row == m.Cursor {
				if col == 6 {
					return base.Foreground(colorGray).Bold(true)
				}
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 5 {
				return base.Foreground(colorCyan)
			}
			return base
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
