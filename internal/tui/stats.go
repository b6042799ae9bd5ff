package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/store"
)

// StatsSource provides the aggregates shown on the stats tab.
type StatsSource interface {
	CountByStatus(ctx context.Context) ([]store.Count, error)
	CountByPriority(ctx context.Context) ([]store.Count, error)
}

type statsModel struct {
	src    StatsSource
	width  int
	height int

	byStatus   []store.Count
	byPriority []store.Count
	err        error

	chart barchart.Model
}

func newStatsModel(src StatsSource) statsModel {
	return statsModel{
		src:   src,
		chart: barchart.New(60, 12),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

func (s statsModel) refresh() tea.Cmd {
	src := s.src
	return func() tea.Msg {
		ctx := context.Background()
		byStatus, err := src.CountByStatus(ctx)
		if err != nil {
			return statsDataMsg{err: err}
		}
		byPriority, err := src.CountByPriority(ctx)
		if err != nil {
			return statsDataMsg{err: err}
		}
		return statsDataMsg{byStatus: byStatus, byPriority: byPriority}
	}
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.err = msg.err
		if msg.err == nil {
			s.byStatus = msg.byStatus
			s.byPriority = msg.byPriority
		}
		s.buildChart()
	}
	return s, nil
}

func (s *statsModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if s.height > 30 {
		chartHeight = 16
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, c := range s.byStatus {
		bars = append(bars, barchart.BarData{
			Label: c.Label,
			Values: []barchart.BarValue{{
				Name:  c.Label,
				Value: float64(c.Total),
				Style: lipgloss.NewStyle().Foreground(statusColor(store.Statuses[i%len(store.Statuses)])),
			}},
		})
	}
	for i, c := range s.byPriority {
		bars = append(bars, barchart.BarData{
			Label: c.Label,
			Values: []barchart.BarValue{{
				Name:  c.Label,
				Value: float64(c.Total),
				Style: lipgloss.NewStyle().Foreground(priorityColor(store.Priorities[i%len(store.Priorities)])),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func total(counts []store.Count) int {
	n := 0
	for _, c := range counts {
		n += c.Total
	}
	return n
}

func (s statsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Stats")

	if s.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("Could not load stats: "+s.err.Error()),
		))
	}

	all := total(s.byStatus)
	if all == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No tasks yet."),
		))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", mutedStyle.Render(fmt.Sprintf("%d tasks", all))),
		"",
		s.chart.View(),
		"",
		s.renderTable("Status", s.byStatus, all),
		"",
		s.renderTable("Priority", s.byPriority, all),
	))
}

func (s statsModel) renderTable(name string, counts []store.Count, all int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-14s %6s %6s", name, "Tasks", "Share")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 28)))
	for _, c := range counts {
		share := 0.0
		if all > 0 {
			share = float64(c.Total) * 100 / float64(all)
		}
		rows = append(rows, fmt.Sprintf("  %-14s %6d %5.0f%%", c.Label, c.Total, share))
	}
	return strings.Join(rows, "\n")
}
