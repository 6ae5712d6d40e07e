package tui

import (
	"fmt"
	"time"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/betafactory/receipted/internal/api"
)

type statsTab int

const (
	tabStatsSummary statsTab = iota
	tabStatsItems
	tabStatsCategories
	tabStatsGlobal
)

var statsTabLabels = []string{"Summary", "Items", "Categories", "Global"}

const itemPageSize = 20

type periodFilterKind int

const (
	filterCurrentYear periodFilterKind = iota
	filterYear
	filterMonth
	filterLastMonths
)

// itemPager keeps every fetched page and the token that produced the
// page after it, so moving backwards never touches the network.
type itemPager struct {
	pages   [][]api.UserItemStats
	tokens  []string
	page    int
	hasMore bool
}

type statsState struct {
	tab     statsTab
	loading bool
	errText string
	gen     int

	filterKind   periodFilterKind
	filterYear   int
	filterMonth  int
	filterMonths int

	summary *api.UserSummaryStats

	pager         itemPager
	categoryScope string

	categories     *api.CategoryStatsResponse
	categoryCursor int

	globalQuery      string
	global           *api.GlobalItemStats
	globalNotFound   bool
	globalSuggestion string
	seenNames        map[string]struct{}
}

func newStatsState(now time.Time) statsState {
	return statsState{
		filterKind:   filterCurrentYear,
		filterYear:   now.Year(),
		filterMonth:  int(now.Month()),
		filterMonths: 3,
		seenNames:    map[string]struct{}{},
	}
}

// period builds the filter for the active selectors.
func (s *statsState) period() api.Period {
	switch s.filterKind {
	case filterYear:
		return api.ForYear(s.filterYear)
	case filterMonth:
		return api.ForMonth(s.filterYear, s.filterMonth)
	case filterLastMonths:
		return api.LastMonths(s.filterMonths)
	default:
		return api.CurrentYear()
	}
}

func (s *statsState) periodLabel() string {
	return s.period().Encode()
}

func (a *App) fetchActiveTabCmd() tea.Cmd {
	if !a.authed() {
		return nil
	}
	s := &a.stats
	switch s.tab {
	case tabStatsItems:
		return a.fetchItemPageCmd(true, "")
	case tabStatsCategories:
		return a.fetchCategoriesCmd()
	case tabStatsGlobal:
		return nil // fetched on demand by name
	default:
		return a.fetchStatsSummaryCmd()
	}
}

func (a *App) fetchStatsSummaryCmd() tea.Cmd {
	s := &a.stats
	s.loading = true
	s.errText = ""
	s.gen++
	gen := s.gen
	period := s.period()
	return func() tea.Msg {
		data, err := a.client.GetUserSummaryStats(a.ctx, period)
		return statsSummaryMsg{gen: gen, data: data, err: err}
	}
}

// fetchItemPageCmd fetches one items page. reset discards the pager
// (filter or scope changed); otherwise token extends it forward.
func (a *App) fetchItemPageCmd(reset bool, token string) tea.Cmd {
	s := &a.stats
	s.loading = true
	s.errText = ""
	s.gen++
	gen := s.gen
	period := s.period()
	category := s.categoryScope
	return func() tea.Msg {
		page, err := a.client.GetUserItemStats(a.ctx, itemPageSize, token, period, category)
		return itemStatsMsg{gen: gen, reset: reset, page: page, err: err}
	}
}

func (a *App) fetchCategoriesCmd() tea.Cmd {
	s := &a.stats
	s.loading = true
	s.errText = ""
	s.gen++
	gen := s.gen
	period := s.period()
	return func() tea.Msg {
		data, err := a.client.GetUserCategoryStats(a.ctx, period)
		return categoryStatsMsg{gen: gen, data: data, err: err}
	}
}

func (a *App) lookupGlobal(name string) tea.Cmd {
	if name == "" {
		return nil
	}
	s := &a.stats
	s.globalQuery = name
	s.loading = true
	s.errText = ""
	s.gen++
	gen := s.gen
	return func() tea.Msg {
		data, err := a.client.GetGlobalItemStats(a.ctx, name)
		return globalStatsMsg{gen: gen, name: name, data: data, err: err}
	}
}

func (a *App) applyStatsSummary(m statsSummaryMsg) tea.Cmd {
	s := &a.stats
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	if m.err != nil {
		s.errText = m.err.Error()
		return nil
	}
	s.summary = m.data
	for _, top := range m.data.TopItems {
		s.seenNames[top.ShortLabel] = struct{}{}
	}
	return nil
}

func (a *App) applyItemStats(m itemStatsMsg) tea.Cmd {
	s := &a.stats
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	if m.err != nil {
		s.errText = m.err.Error()
		return nil
	}
	if m.reset {
		s.pager = itemPager{}
	}
	s.pager.pages = append(s.pager.pages, m.page.Items)
	s.pager.tokens = append(s.pager.tokens, m.page.NextToken)
	s.pager.page = len(s.pager.pages) - 1
	s.pager.hasMore = m.page.HasMore
	for _, item := range m.page.Items {
		s.seenNames[item.ItemName] = struct{}{}
	}
	return nil
}

func (a *App) applyCategoryStats(m categoryStatsMsg) tea.Cmd {
	s := &a.stats
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	if m.err != nil {
		s.errText = m.err.Error()
		return nil
	}
	s.categories = m.data
	if s.categoryCursor >= len(m.data.Categories) {
		s.categoryCursor = 0
	}
	for _, cat := range m.data.Categories {
		for _, top := range cat.TopItems {
			s.seenNames[top.ShortLabel] = struct{}{}
		}
	}
	return nil
}

func (a *App) applyGlobalStats(m globalStatsMsg) tea.Cmd {
	s := &a.stats
	if m.gen != s.gen {
		return nil
	}
	s.loading = false
	s.global = nil
	s.globalNotFound = false
	s.globalSuggestion = ""
	if m.err != nil {
		if api.NotFound(m.err) {
			s.globalNotFound = true
			s.globalSuggestion = nearestName(m.name, s.seenNames)
			return nil
		}
		s.errText = m.err.Error()
		return nil
	}
	s.global = m.data
	s.seenNames[m.data.ItemName] = struct{}{}
	return nil
}

// nearestName picks the smallest edit distance over names seen this
// session. Empty when nothing has been seen yet.
func nearestName(query string, seen map[string]struct{}) string {
	best := ""
	bestDist := -1
	for name := range seen {
		d := levenshtein.ComputeDistance(query, name)
		if bestDist < 0 || d < bestDist || (d == bestDist && name < best) {
			best, bestDist = name, d
		}
	}
	return best
}

func (a *App) handleStatsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.authed() {
		return a.handleGlobalKey(m)
	}
	s := &a.stats
	switch m.String() {
	case "tab":
		s.tab = (s.tab + 1) % statsTab(len(statsTabLabels))
		return a, a.fetchActiveTabCmd()
	case "shift+tab":
		s.tab = (s.tab + statsTab(len(statsTabLabels)) - 1) % statsTab(len(statsTabLabels))
		return a, a.fetchActiveTabCmd()
	case "f":
		s.filterKind = (s.filterKind + 1) % 4
		return a, a.fetchActiveTabCmd()
	case "[":
		a.adjustPeriod(-1)
		return a, a.fetchActiveTabCmd()
	case "]":
		a.adjustPeriod(1)
		return a, a.fetchActiveTabCmd()
	}

	switch s.tab {
	case tabStatsItems:
		return a.handleItemsTabKey(m)
	case tabStatsCategories:
		return a.handleCategoriesTabKey(m)
	case tabStatsGlobal:
		if m.String() == "enter" || m.String() == "/" {
			a.openModal(modalGlobalLookup, s.globalQuery)
			return a, nil
		}
	}
	return a.handleGlobalKey(m)
}

func (a *App) adjustPeriod(delta int) {
	s := &a.stats
	switch s.filterKind {
	case filterYear:
		s.filterYear += delta
	case filterMonth:
		s.filterMonth += delta
		if s.filterMonth < 1 {
			s.filterMonth = 12
			s.filterYear--
		} else if s.filterMonth > 12 {
			s.filterMonth = 1
			s.filterYear++
		}
	case filterLastMonths:
		s.filterMonths += delta
		if s.filterMonths < 1 {
			s.filterMonths = 1
		}
	}
}

// handleItemsTabKey pages through item stats. Both paging keys are
// ignored while a request is in flight.
func (a *App) handleItemsTabKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.stats
	switch m.String() {
	case "right", "n":
		if s.loading {
			return a, nil
		}
		if s.pager.page+1 < len(s.pager.pages) {
			s.pager.page++ // cached, no network
			return a, nil
		}
		if s.pager.hasMore && len(s.pager.tokens) > 0 {
			return a, a.fetchItemPageCmd(false, s.pager.tokens[len(s.pager.tokens)-1])
		}
		return a, nil
	case "left", "p":
		if s.loading {
			return a, nil
		}
		if s.pager.page > 0 {
			s.pager.page--
		}
		return a, nil
	case "x":
		if s.categoryScope != "" {
			s.categoryScope = ""
			return a, a.fetchItemPageCmd(true, "")
		}
		return a, nil
	}
	return a.handleGlobalKey(m)
}

func (a *App) handleCategoriesTabKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.stats
	switch m.String() {
	case "up", "k":
		if s.categoryCursor > 0 {
			s.categoryCursor--
		}
		return a, nil
	case "down", "j":
		if s.categories != nil && s.categoryCursor < len(s.categories.Categories)-1 {
			s.categoryCursor++
		}
		return a, nil
	case "enter":
		if s.categories == nil || s.categoryCursor >= len(s.categories.Categories) {
			return a, nil
		}
		s.categoryScope = s.categories.Categories[s.categoryCursor].Category
		s.tab = tabStatsItems
		return a, a.fetchItemPageCmd(true, "")
	}
	return a.handleGlobalKey(m)
}

func (a *App) renderStats() string {
	if !a.authed() {
		return a.renderGate("Sign in to see your stats.")
	}
	s := &a.stats

	tabs := ""
	for i, label := range statsTabLabels {
		if statsTab(i) == s.tab {
			tabs += activeTab.Render(label)
		} else {
			tabs += tabStyle.Render(label)
		}
	}
	out := titleStyle.Render("Stats") + "  " + badgeStyle.Render("period: "+s.periodLabel()) + "\n" + tabs + "\n\n"

	if s.loading {
		return out + mutedStyle.Render("Loading...")
	}
	if s.errText != "" {
		return out + errorStyle.Render(s.errText)
	}

	switch s.tab {
	case tabStatsItems:
		out += a.renderItemsTab()
	case tabStatsCategories:
		out += a.renderCategoriesTab()
	case tabStatsGlobal:
		out += a.renderGlobalTab()
	default:
		out += a.renderStatsSummaryTab()
	}

	out += "\n" + mutedStyle.Render("[tab] Tabs  [f] Period kind  [[/]] Adjust period")
	return out
}

func (a *App) renderStatsSummaryTab() string {
	s := &a.stats
	if s.summary == nil {
		return mutedStyle.Render("No data.")
	}
	out := fmt.Sprintf("Total spent:      %s\n", a.money(s.summary.TotalSpent))
	out += fmt.Sprintf("Unique items:     %d\n", s.summary.TotalUniqueItems)
	out += fmt.Sprintf("Avg per item:     %s\n\n", a.money(s.summary.AvgSpentPerItem))
	out += headerStyle.Render("Top items") + "\n"
	for _, top := range s.summary.TopItems {
		out += fmt.Sprintf("  %-24s %10s  x%d\n", top.ShortLabel, a.money(top.TotalSpent), top.PurchaseCount)
	}
	return out
}

func (a *App) renderItemsTab() string {
	s := &a.stats
	if len(s.pager.pages) == 0 {
		return mutedStyle.Render("No data.")
	}
	out := ""
	if s.categoryScope != "" {
		out += badgeStyle.Render("category: "+s.categoryScope) + "  " + mutedStyle.Render("[x] clear") + "\n"
	}
	out += headerStyle.Render(fmt.Sprintf("%-28s %-12s %10s %6s %10s", "Item", "Category", "Spent", "Count", "Avg")) + "\n"
	for _, item := range s.pager.pages[s.pager.page] {
		out += fmt.Sprintf("%-28s %-12s %10s %6d %10s\n",
			item.ItemName, item.Category, a.money(item.TotalSpent), item.PurchaseCount, a.money(item.AvgCost))
	}
	more := ""
	if s.pager.page == len(s.pager.pages)-1 && s.pager.hasMore {
		more = "  (more available)"
	}
	out += fmt.Sprintf("\nPage %d%s  %s\n", s.pager.page+1, more, mutedStyle.Render("[←/→] Page"))
	return out
}

func (a *App) renderCategoriesTab() string {
	s := &a.stats
	if s.categories == nil {
		return mutedStyle.Render("No data.")
	}
	out := fmt.Sprintf("Total spent: %s\n\n", a.money(s.categories.TotalSpent))
	for i, cat := range s.categories.Categories {
		cursor := "  "
		if i == s.categoryCursor {
			cursor = "> "
		}
		out += fmt.Sprintf("%s%-16s %10s  %d items, avg %s\n",
			cursor, cat.Category, a.money(cat.TotalSpent), cat.ItemCount, a.money(cat.AvgSpentPerItem))
		for _, top := range cat.TopItems {
			out += fmt.Sprintf("      %-20s %10s  x%d\n", top.ShortLabel, a.money(top.TotalSpent), top.PurchaseCount)
		}
	}
	out += "\n" + mutedStyle.Render("[enter] Items in category")
	return out
}

func (a *App) renderGlobalTab() string {
	s := &a.stats
	out := "Item name: " + s.globalQuery + "  " + mutedStyle.Render("[enter] Search") + "\n\n"
	switch {
	case s.globalNotFound:
		out += "No results for " + fmt.Sprintf("%q", s.globalQuery) + "\n"
		if s.globalSuggestion != "" {
			out += "Did you mean " + fmt.Sprintf("%q", s.globalSuggestion) + "?\n"
		}
	case s.global != nil:
		g := s.global
		out += headerStyle.Render(g.ItemName) + "\n"
		out += fmt.Sprintf("Total spent (all users): %s\n", a.money(g.TotalSpent))
		out += fmt.Sprintf("Total purchases:         %d\n", g.TotalPurchases)
		out += fmt.Sprintf("Average cost:            %s\n", a.money(g.AvgCost))
		out += mutedStyle.Render("Updated "+g.LastUpdated) + "\n"
	default:
		out += mutedStyle.Render("Enter an item name to look up cross-user stats.")
	}
	return out
}
