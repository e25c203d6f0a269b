package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/heralds-project/heralds/pkg/pipeline"
)

// Batch view styles
var (
	barDoneStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barTodoStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const barWidth = 30

// =============================================================================
// Messages
// =============================================================================

// batchProgressMsg reports one finished scenario.
type batchProgressMsg struct {
	Done  int
	Total int
	Item  pipeline.BatchItem
}

// batchDoneMsg signals that every scenario has finished.
type batchDoneMsg struct{}

// =============================================================================
// BatchModel - Live batch progress
// =============================================================================

// BatchModel is the bubbletea model that follows a running batch.
type BatchModel struct {
	Total   int
	Done    int
	Failed  int
	Recent  []pipeline.BatchItem
	Window  int
	Start   time.Time
	Aborted bool
}

// NewBatchModel creates a model for a batch of total scenarios.
func NewBatchModel(total int) BatchModel {
	return BatchModel{
		Total:  total,
		Window: 8,
		Start:  time.Now(),
	}
}

func (m BatchModel) Init() tea.Cmd {
	return nil
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	case batchProgressMsg:
		m.Done = msg.Done
		m.Total = msg.Total
		if msg.Item.Err != nil {
			m.Failed++
		}
		m.Recent = append(m.Recent, msg.Item)
		if len(m.Recent) > m.Window {
			m.Recent = m.Recent[len(m.Recent)-m.Window:]
		}
	case batchDoneMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.Window = msg.Height - 10
		if m.Window < 3 {
			m.Window = 3
		}
	}
	return m, nil
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Planning scenarios"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	b.WriteString(progressBar(m.Done, m.Total))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d", m.Done, m.Total)))
	if m.Failed > 0 {
		b.WriteString("  " + StyleWarning.Render(fmt.Sprintf("%d failed", m.Failed)))
	}
	b.WriteString(StyleDim.Render("  " + time.Since(m.Start).Round(time.Second).String()))
	b.WriteString("\n\n")

	if len(m.Recent) > 0 {
		b.WriteString(batchTable(m.Recent).Render())
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// progressBar renders a fixed-width bar for done out of total.
func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	return barDoneStyle.Render(strings.Repeat("█", filled)) +
		barTodoStyle.Render(strings.Repeat("░", barWidth-filled))
}

// batchTable renders one row per batch item.
func batchTable(items []pipeline.BatchItem) *table.Table {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = batchRow(it)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Scenario", "Junctions", "Kept", "Filtered", "Markers", "Cache", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(items) && items[row].Err != nil {
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
}

// batchRow formats one item. Failed items show their error in place of
// the counts.
func batchRow(it pipeline.BatchItem) []string {
	elapsed := it.Duration.Round(time.Millisecond).String()
	if it.Err != nil {
		return []string{it.Scenario, "—", "—", "—", "—", truncate(it.Err.Error(), 40), elapsed}
	}
	s := it.Result.Stats
	return []string{
		it.Scenario,
		fmt.Sprint(s.NodeCount),
		fmt.Sprint(s.Kept),
		fmt.Sprint(s.Filtered),
		fmt.Sprint(s.Markers),
		cacheLabel(it.Result.CacheInfo),
		elapsed,
	}
}

// cacheLabel summarizes which stages came from the cache.
func cacheLabel(ci pipeline.CacheInfo) string {
	switch {
	case ci.NetworkHit && ci.PlanHit:
		return iconCached
	case ci.NetworkHit:
		return "network"
	default:
		return iconFresh
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
