// Package tui is the terminal front-end: one bubbletea model owning the
// upload, purchases, summary and stats views, an auth gate over the
// data views, and modal sub-states for editing and confirmation.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/betafactory/receipted/internal/api"
	"github.com/betafactory/receipted/internal/auth"
	"github.com/betafactory/receipted/internal/config"
	"github.com/betafactory/receipted/internal/prefs"
)

// SessionState is what the TUI needs from the auth session. Satisfied
// by *auth.Session; tests substitute a fake.
type SessionState interface {
	Resolve(ctx context.Context) bool
	Subscribe(fn func(bool)) int
	Unsubscribe(id int)
	BeginSignIn() (*auth.SignInFlow, error)
	SignOut() error
}

// App ties together views.
type App struct {
	ctx     context.Context
	client  *api.Client
	session SessionState
	cfg     config.Config

	view  viewState
	modal modalState

	width  int
	height int

	status    string
	statusErr bool

	// auth gate: nil while the initial probe is outstanding
	authKnown  *bool
	authEvents chan bool
	subID      int
	signInFlow *auth.SignInFlow
	signInURL  string

	inputBuffer string

	upload    uploadState
	purchases purchasesState
	summary   summaryState
	stats     statsState

	currency string
	dateFmt  string
}

type viewState string

const (
	viewUpload    viewState = "upload"
	viewPurchases viewState = "purchases"
	viewSummary   viewState = "summary"
	viewStats     viewState = "stats"
)

type modalState string

const (
	modalNone          modalState = ""
	modalFilePath      modalState = "filePath"
	modalCustomType    modalState = "customType"
	modalDateEntry     modalState = "dateEntry"
	modalItemEdit      modalState = "itemEdit"
	modalReceiptDate   modalState = "receiptDate"
	modalConfirmDelete modalState = "confirmDelete"
	modalGlobalLookup  modalState = "globalLookup"
)

func New(ctx context.Context, cfg config.Config, client *api.Client, session SessionState) *App {
	now := time.Now()
	dateFmt := cfg.UI.DateFormat
	if dateFmt == "" {
		dateFmt = "2006-01-02"
	}
	a := &App{
		ctx:        ctx,
		client:     client,
		session:    session,
		cfg:        cfg,
		view:       viewUpload,
		authEvents: make(chan bool, 8),
		currency:   cfg.UI.CurrencySymbol,
		dateFmt:    dateFmt,
		upload:     newUploadState(),
		purchases:  newPurchasesState(now),
		summary:    newSummaryState(now),
		stats:      newStatsState(now),
	}
	a.subID = session.Subscribe(func(ok bool) {
		select {
		case a.authEvents <- ok:
		default:
		}
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.probeAuthCmd(), a.waitAuthEventCmd())
}

func (a *App) probeAuthCmd() tea.Cmd {
	return func() tea.Msg {
		return authProbeMsg{ok: a.session.Resolve(a.ctx)}
	}
}

func (a *App) waitAuthEventCmd() tea.Cmd {
	return func() tea.Msg {
		return authChangedMsg{ok: <-a.authEvents}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		switch a.view {
		case viewUpload:
			return a.handleUploadKey(m)
		case viewPurchases:
			return a.handlePurchasesKey(m)
		case viewSummary:
			return a.handleSummaryKey(m)
		case viewStats:
			return a.handleStatsKey(m)
		}
		return a, nil

	case authProbeMsg:
		a.setAuthKnown(m.ok)
		return a, a.afterAuthChange(m.ok)

	case authChangedMsg:
		a.setAuthKnown(m.ok)
		return a, tea.Batch(a.afterAuthChange(m.ok), a.waitAuthEventCmd())

	case signInStartedMsg:
		if m.err != nil || m.flow == nil {
			if m.err != nil {
				a.setError("sign-in: " + m.err.Error())
			}
			return a, nil
		}
		a.signInFlow = m.flow
		a.signInURL = m.flow.URL
		return a, a.waitSignInCmd(m.flow)

	case signInDoneMsg:
		a.signInFlow = nil
		a.signInURL = ""
		if m.err != nil {
			a.setError("sign-in: " + m.err.Error())
		}
		return a, nil

	case weeklyMsg:
		return a, a.applyWeekly(m)
	case yearlyMsg:
		return a, a.applyYearly(m)
	case monthlyMsg:
		return a, a.applyMonthly(m)
	case statsSummaryMsg:
		return a, a.applyStatsSummary(m)
	case itemStatsMsg:
		return a, a.applyItemStats(m)
	case categoryStatsMsg:
		return a, a.applyCategoryStats(m)
	case globalStatsMsg:
		return a, a.applyGlobalStats(m)
	case uploadDoneMsg:
		a.applyUploadDone(m)
		return a, nil

	case mutationDoneMsg:
		// reconcile optimistic state against server truth, success or not
		if m.err != nil {
			a.setError(m.label + ": " + m.err.Error())
		} else {
			a.setStatus(m.label + " saved")
		}
		return a, a.fetchWeeklyCmd()
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.view {
	case viewPurchases:
		body = a.renderPurchases()
	case viewSummary:
		body = a.renderSummary()
	case viewStats:
		body = a.renderStats()
	default:
		body = a.renderUpload()
	}

	out := a.renderNav() + "\n" + body
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	if a.status != "" {
		line := a.status
		if a.statusErr {
			line = errorStyle.Render(line)
		}
		out += "\n" + line
	}
	return out
}

func (a *App) renderNav() string {
	tabs := []struct {
		view  viewState
		label string
	}{
		{viewUpload, "[1] Upload"},
		{viewPurchases, "[2] Purchases"},
		{viewSummary, "[3] Summary"},
		{viewStats, "[4] Stats"},
	}
	out := ""
	for _, t := range tabs {
		if t.view == a.view {
			out += activeTab.Render(t.label)
		} else {
			out += tabStyle.Render(t.label)
		}
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalFilePath:
		return titleStyle.Render("File to upload") + fmt.Sprintf("\n%s\n[enter] Set  [esc] Cancel", a.inputBuffer)
	case modalCustomType:
		return titleStyle.Render("Document type") + fmt.Sprintf("\n%s\n[enter] Set  [esc] Cancel", a.inputBuffer)
	case modalDateEntry:
		return titleStyle.Render("Go to date (YYYY-MM-DD)") + fmt.Sprintf("\n%s\n[enter] Go  [esc] Cancel", a.inputBuffer)
	case modalItemEdit:
		return a.renderItemEditModal()
	case modalReceiptDate:
		return titleStyle.Render("New receipt date (YYYY-MM-DD)") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalConfirmDelete:
		if a.purchases.pendingDelete == nil {
			return ""
		}
		return titleStyle.Render("Confirm delete") + "\n" + a.purchases.pendingDelete.message + "\n[y] Delete  [n] Keep"
	case modalGlobalLookup:
		return titleStyle.Render("Global item lookup") + fmt.Sprintf("\n%s\n[enter] Search  [esc] Cancel", a.inputBuffer)
	default:
		return ""
	}
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalItemEdit:
		return a.handleItemEditKey(m)
	case modalConfirmDelete:
		return a.handleConfirmDeleteKey(m)
	}

	// single-buffer text modals
	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil
	case tea.KeyEnter:
		return a.submitTextModal()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

func (a *App) submitTextModal() (tea.Model, tea.Cmd) {
	modal := a.modal
	text := a.inputBuffer
	var cmd tea.Cmd
	switch modal {
	case modalFilePath:
		a.setUploadFile(text)
	case modalCustomType:
		a.upload.customType = text
	case modalDateEntry:
		cmd = a.gotoDate(text)
	case modalReceiptDate:
		cmd = a.saveReceiptDate(text)
	case modalGlobalLookup:
		cmd = a.lookupGlobal(text)
	}
	a.closeModal()
	return a, cmd
}

func (a *App) openModal(modal modalState, buffer string) {
	a.modal = modal
	a.inputBuffer = buffer
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.inputBuffer = ""
	a.purchases.editingItemID = ""
	a.purchases.editingReceiptID = ""
	a.purchases.pendingDelete = nil
}

// handleGlobalKey is the fallback for keys no view handler consumed.
func (a *App) handleGlobalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		a.session.Unsubscribe(a.subID)
		return a, tea.Quit
	case "1":
		return a, a.switchView(viewUpload)
	case "2":
		return a, a.switchView(viewPurchases)
	case "3":
		return a, a.switchView(viewSummary)
	case "4":
		return a, a.switchView(viewStats)
	case "s":
		if a.gated() && !a.authed() {
			return a, a.beginSignInCmd()
		}
	case "o":
		if a.authed() {
			if err := a.session.SignOut(); err != nil {
				a.setError("sign-out: " + err.Error())
			}
		}
	}
	return a, nil
}

// switchView changes the active view. Every navigation to a data view
// refetches; there is no cross-view cache.
func (a *App) switchView(v viewState) tea.Cmd {
	a.view = v
	a.status = ""
	switch v {
	case viewPurchases:
		return a.fetchWeeklyCmd()
	case viewSummary:
		return a.fetchSummaryCmd()
	case viewStats:
		return a.fetchActiveTabCmd()
	}
	return nil
}

// auth gate

func (a *App) gated() bool {
	return a.view == viewPurchases || a.view == viewSummary || a.view == viewStats
}

func (a *App) authed() bool {
	return a.authKnown != nil && *a.authKnown
}

func (a *App) setAuthKnown(ok bool) {
	a.authKnown = &ok
}

// afterAuthChange restores the saved return path after a sign-in and
// kicks off the current view's fetch now that requests can be
// authorized.
func (a *App) afterAuthChange(ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	if route, err := prefs.LoadReturnPath(); err == nil && route != nil {
		return a.restoreRoute(route)
	}
	if a.gated() {
		return a.switchView(a.view)
	}
	return nil
}

func (a *App) restoreRoute(route *prefs.Route) tea.Cmd {
	switch route.View {
	case string(viewPurchases):
		if date, ok := route.Params["date"]; ok {
			if parsed, err := time.Parse("2006-01-02", date); err == nil {
				a.purchases.selectedDate = parsed
			}
		}
		return a.switchView(viewPurchases)
	case string(viewSummary):
		if year, ok := route.Params["year"]; ok {
			fmt.Sscanf(year, "%d", &a.summary.year)
		}
		if month, ok := route.Params["month"]; ok {
			fmt.Sscanf(month, "%d", &a.summary.month)
		}
		return a.switchView(viewSummary)
	case string(viewStats):
		return a.switchView(viewStats)
	}
	return a.switchView(a.view)
}

// currentRoute captures the active view and its deep-link parameters so
// sign-in can return here.
func (a *App) currentRoute() prefs.Route {
	route := prefs.Route{View: string(a.view), Params: map[string]string{}}
	switch a.view {
	case viewPurchases:
		route.Params["date"] = a.purchases.selectedDate.Format("2006-01-02")
	case viewSummary:
		route.Params["year"] = fmt.Sprintf("%d", a.summary.year)
		if a.summary.month != 0 {
			route.Params["month"] = fmt.Sprintf("%d", a.summary.month)
		}
	}
	return route
}

func (a *App) beginSignInCmd() tea.Cmd {
	if a.signInFlow != nil {
		return nil // one attempt at a time
	}
	if err := prefs.SaveReturnPath(a.currentRoute()); err != nil {
		a.setError("save return path: " + err.Error())
	}
	return func() tea.Msg {
		flow, err := a.session.BeginSignIn()
		return signInStartedMsg{flow: flow, err: err}
	}
}

func (a *App) waitSignInCmd(flow *auth.SignInFlow) tea.Cmd {
	return func() tea.Msg {
		return signInDoneMsg{err: flow.Wait(a.ctx)}
	}
}

// renderGate covers the unresolved and signed-out states of the data
// views. No fetch is dispatched from either state.
func (a *App) renderGate(message string) string {
	if a.authKnown == nil {
		return mutedStyle.Render("Checking session...")
	}
	out := titleStyle.Render("Authentication Required") + "\n" + message + "\n[s] Sign in"
	if a.signInURL != "" {
		out += "\n\nVisit to continue:\n" + a.signInURL
	}
	return out
}

// status line

func (a *App) setStatus(text string) {
	a.status = text
	a.statusErr = false
}

func (a *App) setError(text string) {
	a.status = text
	a.statusErr = true
}

// money renders an amount with the refund style for negative values.
func (a *App) money(d decimal.Decimal) string {
	if d.Sign() < 0 {
		return refundStyle.Render("-" + a.currency + d.Abs().StringFixed(2))
	}
	return spendStyle.Render(a.currency + d.StringFixed(2))
}
