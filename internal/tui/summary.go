package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/betafactory/receipted/internal/api"
)

type summaryMode string

const (
	summaryTable    summaryMode = "table"
	summaryCalendar summaryMode = "calendar"
)

// summaryState drives the yearly/monthly rollup view. month == 0 means
// the yearly rollup.
type summaryState struct {
	year    int
	month   int
	mode    summaryMode
	cursor  int
	yearly  *api.YearlySummary
	monthly *api.MonthlySummary
	loading bool
	errText string
	gen     int
}

func newSummaryState(now time.Time) summaryState {
	return summaryState{year: now.Year(), mode: summaryTable}
}

func (a *App) fetchSummaryCmd() tea.Cmd {
	if !a.authed() {
		return nil
	}
	s := &a.summary
	s.loading = true
	s.errText = ""
	s.gen++
	gen := s.gen
	year, month := s.year, s.month
	if month == 0 {
		return func() tea.Msg {
			data, err := a.client.GetYearlySummary(a.ctx, year)
			return yearlyMsg{gen: gen, data: data, err: err}
		}
	}
	return func() tea.Msg {
		data, err := a.client.GetMonthlySummary(a.ctx, year, month)
		return monthlyMsg{gen: gen, data: data, err: err}
	}
}

func (a *App) applyYearly(m yearlyMsg) tea.Cmd {
	s := &a.summary
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	if m.err != nil {
		s.errText = m.err.Error()
		return nil
	}
	s.yearly = m.data
	if s.cursor >= len(m.data.Summaries) {
		s.cursor = 0
	}
	return nil
}

func (a *App) applyMonthly(m monthlyMsg) tea.Cmd {
	s := &a.summary
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	if m.err != nil {
		s.errText = m.err.Error()
		return nil
	}
	s.monthly = m.data
	if s.cursor >= len(m.data.DailySummaries) {
		s.cursor = 0
	}
	return nil
}

func (a *App) handleSummaryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.authed() {
		return a.handleGlobalKey(m)
	}
	s := &a.summary
	switch m.String() {
	case "left":
		a.stepSummary(-1)
		return a, a.fetchSummaryCmd()
	case "right":
		a.stepSummary(1)
		return a, a.fetchSummaryCmd()
	case "c":
		// pure view toggle over fetched data, no refetch
		if s.mode == summaryTable {
			s.mode = summaryCalendar
		} else {
			s.mode = summaryTable
		}
		return a, nil
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return a, nil
	case "down", "j":
		if s.cursor < a.summaryRowCount()-1 {
			s.cursor++
		}
		return a, nil
	case "enter":
		return a.summaryDrillDown()
	case "esc":
		if s.month != 0 {
			s.month = 0
			s.cursor = 0
			return a, a.fetchSummaryCmd()
		}
		return a, nil
	}
	return a.handleGlobalKey(m)
}

// stepSummary moves one year (yearly mode) or one month with rollover
// (monthly mode).
func (a *App) stepSummary(delta int) {
	s := &a.summary
	if s.month == 0 {
		s.year += delta
		return
	}
	s.month += delta
	if s.month < 1 {
		s.month = 12
		s.year--
	} else if s.month > 12 {
		s.month = 1
		s.year++
	}
}

func (a *App) summaryRowCount() int {
	s := &a.summary
	if s.month == 0 {
		if s.yearly == nil {
			return 0
		}
		return len(s.yearly.Summaries)
	}
	if s.monthly == nil {
		return 0
	}
	return len(s.monthly.DailySummaries)
}

// summaryDrillDown: a month with receipts opens the monthly rollup; a
// day with receipts jumps to purchases for that date.
func (a *App) summaryDrillDown() (tea.Model, tea.Cmd) {
	s := &a.summary
	if s.month == 0 {
		if s.yearly == nil || s.cursor >= len(s.yearly.Summaries) {
			return a, nil
		}
		row := s.yearly.Summaries[s.cursor]
		if row.ReceiptCount == 0 {
			return a, nil
		}
		s.month = row.Month
		s.cursor = 0
		return a, a.fetchSummaryCmd()
	}
	if s.monthly == nil || s.cursor >= len(s.monthly.DailySummaries) {
		return a, nil
	}
	day := s.monthly.DailySummaries[s.cursor]
	if day.ReceiptCount == 0 {
		return a, nil
	}
	parsed, err := time.Parse("2006-01-02", day.Date)
	if err != nil {
		return a, nil
	}
	a.purchases.selectedDate = parsed
	return a, a.switchView(viewPurchases)
}

func (a *App) renderSummary() string {
	if !a.authed() {
		return a.renderGate("Sign in to see your spending summary.")
	}
	s := &a.summary
	title := fmt.Sprintf("Summary %d", s.year)
	if s.month != 0 {
		title = fmt.Sprintf("Summary %d-%02d", s.year, s.month)
	}
	out := titleStyle.Render(title) + "\n"
	if s.loading {
		return out + mutedStyle.Render("Loading...")
	}
	if s.errText != "" {
		return out + errorStyle.Render(s.errText)
	}

	if s.month == 0 {
		out += a.renderYearly()
	} else {
		out += a.renderMonthly()
	}
	out += "\n" + mutedStyle.Render("[←/→] Step  [c] Calendar/Table  [enter] Drill down  [esc] Back")
	return out
}

func (a *App) renderYearly() string {
	s := &a.summary
	if s.yearly == nil {
		return mutedStyle.Render("No data.")
	}
	if s.mode == summaryCalendar {
		return a.renderYearCalendar()
	}
	out := headerStyle.Render(fmt.Sprintf("%-12s %12s %10s %8s", "Month", "Total", "Receipts", "Items")) + "\n"
	for i, row := range s.yearly.Summaries {
		cursor := "  "
		if i == s.cursor {
			cursor = "> "
		}
		out += fmt.Sprintf("%s%-12s %12s %10d %8d\n", cursor, row.MonthName, a.money(row.TotalAmount), row.ReceiptCount, row.ItemCount)
	}
	return out
}

// renderYearCalendar lays the twelve months out as a 3x4 grid of cells.
func (a *App) renderYearCalendar() string {
	s := &a.summary
	cells := make(map[int]api.MonthSummary, len(s.yearly.Summaries))
	for _, row := range s.yearly.Summaries {
		cells[row.Month] = row
	}
	var out strings.Builder
	for month := 1; month <= 12; month++ {
		row, ok := cells[month]
		label := time.Month(month).String()[:3]
		cell := fmt.Sprintf("%s %s", label, mutedStyle.Render("-"))
		if ok && row.ReceiptCount > 0 {
			cell = fmt.Sprintf("%s %s", label, a.money(row.TotalAmount))
		}
		marker := "  "
		if s.cursor < len(s.yearly.Summaries) && s.yearly.Summaries[s.cursor].Month == month {
			marker = "> "
		}
		fmt.Fprintf(&out, "%s%-24s", marker, cell)
		if month%3 == 0 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (a *App) renderMonthly() string {
	s := &a.summary
	if s.monthly == nil {
		return mutedStyle.Render("No data.")
	}
	if s.mode == summaryCalendar {
		return a.renderMonthCalendar()
	}
	out := headerStyle.Render(fmt.Sprintf("%-12s %-10s %12s %10s %8s", "Date", "Day", "Total", "Receipts", "Items")) + "\n"
	for i, day := range s.monthly.DailySummaries {
		cursor := "  "
		if i == s.cursor {
			cursor = "> "
		}
		out += fmt.Sprintf("%s%-12s %-10s %12s %10d %8d\n", cursor, day.Date, day.DayName, a.money(day.TotalAmount), day.ReceiptCount, day.ItemCount)
	}
	return out
}

// renderMonthCalendar is a weekday-aligned grid, Sunday first.
func (a *App) renderMonthCalendar() string {
	s := &a.summary
	byDate := make(map[string]api.DaySummary, len(s.monthly.DailySummaries))
	for _, day := range s.monthly.DailySummaries {
		byDate[day.Date] = day
	}

	first := time.Date(s.monthly.Year, time.Month(s.monthly.Month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	var out strings.Builder
	out.WriteString(headerStyle.Render(" Sun      Mon      Tue      Wed      Thu      Fri      Sat") + "\n")
	col := int(first.Weekday())
	out.WriteString(strings.Repeat("         ", col))
	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%d-%02d-%02d", s.monthly.Year, s.monthly.Month, day)
		cell := fmt.Sprintf("%2d      ", day)
		if summary, ok := byDate[date]; ok && summary.ReceiptCount > 0 {
			cell = fmt.Sprintf("%2d %s", day, a.money(summary.TotalAmount))
		}
		fmt.Fprintf(&out, " %-8s", cell)
		col++
		if col == 7 {
			out.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		out.WriteString("\n")
	}
	return out.String()
}
