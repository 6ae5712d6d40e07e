package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/betafactory/receipted/internal/api"
)

type rowKind int

const (
	rowDay rowKind = iota
	rowReceipt
	rowItem
)

// purchaseRow is one line of the flattened week listing. The cursor
// moves over receipt and item rows; day rows are headers.
type purchaseRow struct {
	kind       rowKind
	date       string
	receiptIdx int
	itemIdx    int
}

type deleteKind int

const (
	deleteItem deleteKind = iota
	deleteReceipt
)

// pendingDelete holds the target of an open confirmation prompt.
type pendingDelete struct {
	kind    deleteKind
	id      string
	date    string
	message string
}

type purchasesState struct {
	selectedDate time.Time
	data         *api.WeeklyPurchases
	rows         []purchaseRow
	cursor       int
	loading      bool
	errText      string
	gen          int

	editingItemID    string
	editingReceiptID string
	editName         string
	editCost         string
	editFocusCost    bool
	editDate         string

	pendingDelete *pendingDelete
}

func newPurchasesState(now time.Time) purchasesState {
	return purchasesState{selectedDate: now}
}

func (a *App) fetchWeeklyCmd() tea.Cmd {
	if !a.authed() {
		return nil
	}
	a.purchases.loading = true
	a.purchases.errText = ""
	a.purchases.gen++
	gen := a.purchases.gen
	date := a.purchases.selectedDate.Format("2006-01-02")
	return func() tea.Msg {
		data, err := a.client.GetPurchases(a.ctx, date)
		return weeklyMsg{gen: gen, data: data, err: err}
	}
}

func (a *App) applyWeekly(m weeklyMsg) tea.Cmd {
	if m.gen != a.purchases.gen {
		return nil // stale response for an abandoned date
	}
	a.purchases.loading = false
	if m.err != nil {
		a.purchases.errText = m.err.Error()
		return nil
	}
	a.purchases.data = m.data
	a.purchases.rows = flattenWeek(m.data)
	if a.purchases.cursor >= len(a.purchases.rows) {
		a.purchases.cursor = 0
	}
	return nil
}

// flattenWeek produces the navigable row list, days in ascending date
// order.
func flattenWeek(data *api.WeeklyPurchases) []purchaseRow {
	dates := make([]string, 0, len(data.Purchases))
	for date := range data.Purchases {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var rows []purchaseRow
	for _, date := range dates {
		rows = append(rows, purchaseRow{kind: rowDay, date: date})
		for ri, receipt := range data.Purchases[date] {
			rows = append(rows, purchaseRow{kind: rowReceipt, date: date, receiptIdx: ri})
			for ii := range receipt.Items {
				rows = append(rows, purchaseRow{kind: rowItem, date: date, receiptIdx: ri, itemIdx: ii})
			}
		}
	}
	return rows
}

func (a *App) handlePurchasesKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.authed() {
		return a.handleGlobalKey(m)
	}
	p := &a.purchases
	switch m.String() {
	case "left":
		p.selectedDate = p.selectedDate.AddDate(0, 0, -7)
		return a, a.fetchWeeklyCmd()
	case "right":
		p.selectedDate = p.selectedDate.AddDate(0, 0, 7)
		return a, a.fetchWeeklyCmd()
	case "g":
		a.openModal(modalDateEntry, p.selectedDate.Format("2006-01-02"))
		return a, nil
	case "up", "k":
		p.cursor = prevSelectable(p.rows, p.cursor)
		return a, nil
	case "down", "j":
		p.cursor = nextSelectable(p.rows, p.cursor)
		return a, nil
	case "e", "enter":
		a.beginEdit()
		return a, nil
	case "d":
		a.beginDelete()
		return a, nil
	case "r":
		return a, a.fetchWeeklyCmd()
	}
	return a.handleGlobalKey(m)
}

func nextSelectable(rows []purchaseRow, cursor int) int {
	for i := cursor + 1; i < len(rows); i++ {
		if rows[i].kind != rowDay {
			return i
		}
	}
	return cursor
}

func prevSelectable(rows []purchaseRow, cursor int) int {
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].kind != rowDay {
			return i
		}
	}
	return cursor
}

func (a *App) currentRow() (purchaseRow, *api.Purchase, bool) {
	p := &a.purchases
	if p.data == nil || p.cursor < 0 || p.cursor >= len(p.rows) {
		return purchaseRow{}, nil, false
	}
	row := p.rows[p.cursor]
	if row.kind == rowDay {
		return row, nil, false
	}
	receipts := p.data.Purchases[row.date]
	if row.receiptIdx >= len(receipts) {
		return row, nil, false
	}
	return row, &receipts[row.receiptIdx], true
}

// beginEdit opens the editor matching the cursor row: item edit for an
// item row, receipt re-date for a receipt row. At most one editor is
// open at a time.
func (a *App) beginEdit() {
	row, receipt, ok := a.currentRow()
	if !ok {
		return
	}
	p := &a.purchases
	switch row.kind {
	case rowItem:
		item := receipt.Items[row.itemIdx]
		p.editingItemID = item.ItemID
		p.editName = item.ItemName
		p.editCost = item.ItemCost.StringFixed(2)
		p.editFocusCost = false
		a.modal = modalItemEdit
	case rowReceipt:
		p.editingReceiptID = receipt.ReceiptID
		p.editDate = row.date
		a.openModal(modalReceiptDate, row.date)
	}
}

func (a *App) beginDelete() {
	row, receipt, ok := a.currentRow()
	if !ok {
		return
	}
	p := &a.purchases
	switch row.kind {
	case rowItem:
		item := receipt.Items[row.itemIdx]
		p.pendingDelete = &pendingDelete{
			kind:    deleteItem,
			id:      item.ItemID,
			date:    row.date,
			message: fmt.Sprintf("Delete item %q (%s)?", item.ItemName, a.money(item.ItemCost)),
		}
	case rowReceipt:
		p.pendingDelete = &pendingDelete{
			kind:    deleteReceipt,
			id:      receipt.ReceiptID,
			date:    row.date,
			message: fmt.Sprintf("Delete receipt from %q with %d items?", receipt.Merchant, len(receipt.Items)),
		}
	}
	a.modal = modalConfirmDelete
}

func (a *App) handleConfirmDeleteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "y", "enter":
		pending := a.purchases.pendingDelete
		a.closeModal()
		return a, a.confirmDelete(pending)
	case "n", "esc":
		// cancel never issues a request
		a.closeModal()
		return a, nil
	}
	return a, nil
}

// confirmDelete applies the removal optimistically and fires exactly one
// DELETE for the recorded target.
func (a *App) confirmDelete(pending *pendingDelete) tea.Cmd {
	if pending == nil {
		return nil
	}
	switch pending.kind {
	case deleteItem:
		a.removeItemLocally(pending.id)
		return func() tea.Msg {
			return mutationDoneMsg{label: "item delete", err: a.client.DeleteItem(a.ctx, pending.id)}
		}
	case deleteReceipt:
		a.removeReceiptLocally(pending.id)
		return func() tea.Msg {
			return mutationDoneMsg{label: "receipt delete", err: a.client.DeleteReceipt(a.ctx, pending.id, pending.date)}
		}
	}
	return nil
}

func (a *App) removeItemLocally(itemID string) {
	p := &a.purchases
	if p.data == nil {
		return
	}
	for date, receipts := range p.data.Purchases {
		for ri := range receipts {
			for ii, item := range receipts[ri].Items {
				if item.ItemID == itemID {
					receipts[ri].Items = append(receipts[ri].Items[:ii], receipts[ri].Items[ii+1:]...)
					receipts[ri].Total = receipts[ri].Total.Sub(item.ItemCost)
					p.data.Purchases[date] = receipts
					p.rows = flattenWeek(p.data)
					if p.cursor >= len(p.rows) {
						p.cursor = 0
					}
					return
				}
			}
		}
	}
}

func (a *App) removeReceiptLocally(receiptID string) {
	p := &a.purchases
	if p.data == nil {
		return
	}
	for date, receipts := range p.data.Purchases {
		for ri, receipt := range receipts {
			if receipt.ReceiptID == receiptID {
				p.data.Purchases[date] = append(receipts[:ri], receipts[ri+1:]...)
				p.rows = flattenWeek(p.data)
				if p.cursor >= len(p.rows) {
					p.cursor = 0
				}
				return
			}
		}
	}
}

func (a *App) handleItemEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &a.purchases
	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil
	case tea.KeyTab:
		p.editFocusCost = !p.editFocusCost
		return a, nil
	case tea.KeyEnter:
		return a, a.saveItemEdit()
	case tea.KeyBackspace, tea.KeyCtrlH:
		if p.editFocusCost {
			if len(p.editCost) > 0 {
				p.editCost = p.editCost[:len(p.editCost)-1]
			}
		} else if len(p.editName) > 0 {
			p.editName = p.editName[:len(p.editName)-1]
		}
		return a, nil
	case tea.KeySpace:
		if !p.editFocusCost {
			p.editName += " "
		}
		return a, nil
	case tea.KeyRunes:
		if p.editFocusCost {
			p.editCost += string(m.Runes)
		} else {
			p.editName += string(m.Runes)
		}
		return a, nil
	}
	return a, nil
}

// saveItemEdit validates locally, applies the edit optimistically and
// issues the update.
func (a *App) saveItemEdit() tea.Cmd {
	p := &a.purchases
	name := strings.TrimSpace(p.editName)
	if name == "" {
		a.setError("item name is required")
		return nil
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(p.editCost))
	if err != nil {
		a.setError("cost must be a number")
		return nil
	}
	itemID := p.editingItemID
	a.applyItemEditLocally(itemID, name, cost)
	a.closeModal()
	return func() tea.Msg {
		return mutationDoneMsg{label: "item update", err: a.client.UpdateItem(a.ctx, itemID, name, cost)}
	}
}

func (a *App) applyItemEditLocally(itemID, name string, cost decimal.Decimal) {
	p := &a.purchases
	if p.data == nil {
		return
	}
	for _, receipts := range p.data.Purchases {
		for ri := range receipts {
			for ii, item := range receipts[ri].Items {
				if item.ItemID == itemID {
					receipts[ri].Total = receipts[ri].Total.Sub(item.ItemCost).Add(cost)
					receipts[ri].Items[ii].ItemName = name
					receipts[ri].Items[ii].ItemCost = cost
					return
				}
			}
		}
	}
}

func (a *App) saveReceiptDate(newDate string) tea.Cmd {
	p := &a.purchases
	receiptID := p.editingReceiptID
	oldDate := p.editDate
	p.editingReceiptID = ""
	if _, err := time.Parse("2006-01-02", newDate); err != nil {
		a.setError("date must be YYYY-MM-DD")
		return nil
	}
	return func() tea.Msg {
		return mutationDoneMsg{label: "receipt re-date", err: a.client.UpdateReceiptDate(a.ctx, receiptID, oldDate, newDate)}
	}
}

func (a *App) gotoDate(text string) tea.Cmd {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(text))
	if err != nil {
		a.setError("date must be YYYY-MM-DD")
		return nil
	}
	a.purchases.selectedDate = parsed
	return a.fetchWeeklyCmd()
}

func (a *App) renderItemEditModal() string {
	p := &a.purchases
	nameField := p.editName
	costField := p.editCost
	if p.editFocusCost {
		costField = "[" + costField + "]"
	} else {
		nameField = "[" + nameField + "]"
	}
	return titleStyle.Render("Edit item") +
		fmt.Sprintf("\nName: %s\nCost: %s\n[tab] Switch  [enter] Save  [esc] Cancel", nameField, costField)
}

func (a *App) renderPurchases() string {
	if !a.authed() {
		return a.renderGate("Sign in to see your purchases.")
	}
	p := &a.purchases
	out := titleStyle.Render("Purchases") + "  " + mutedStyle.Render(p.selectedDate.Format(a.dateFmt)) + "\n"
	if p.loading {
		return out + mutedStyle.Render("Loading...")
	}
	if p.errText != "" {
		return out + errorStyle.Render(p.errText)
	}
	if p.data == nil {
		return out + mutedStyle.Render("No data.")
	}

	out += fmt.Sprintf("Week %s to %s  %s  (%d/%d days with purchases)\n\n",
		p.data.WeekStart, p.data.WeekEnd, a.money(p.data.TotalAmount),
		p.data.DaysWithPurchases, p.data.TotalDays)

	if len(p.rows) == 0 {
		out += mutedStyle.Render("No purchases this week.") + "\n"
	}
	for i, row := range p.rows {
		cursor := "  "
		if i == p.cursor && row.kind != rowDay {
			cursor = "> "
		}
		switch row.kind {
		case rowDay:
			out += "\n" + headerStyle.Render(row.date) + "\n"
		case rowReceipt:
			receipt := p.data.Purchases[row.date][row.receiptIdx]
			out += fmt.Sprintf("%s%-28s %s\n", cursor, receipt.Merchant, a.money(receipt.Total))
		case rowItem:
			item := p.data.Purchases[row.date][row.receiptIdx].Items[row.itemIdx]
			out += fmt.Sprintf("%s    %-24s %s\n", cursor, item.ItemName, a.money(item.ItemCost))
		}
	}

	out += "\n" + mutedStyle.Render("[←/→] Week  [g] Go to date  [e] Edit  [d] Delete  [r] Refresh")
	return out
}
