// Package fixture serves canned backend data for offline and dev use.
// It implements api.Transport, dispatching on the request's operation
// tag. Mutations edit the in-memory dataset for real, so a refetch
// observes them; in mock mode this dataset is the source of truth.
package fixture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betafactory/receipted/internal/api"
)

// Transport is the mock-mode implementation of api.Transport.
type Transport struct {
	mu    sync.Mutex
	data  *dataset
	delay time.Duration
}

// New builds a fixture transport with an artificial response delay.
func New(delay time.Duration) *Transport {
	return &Transport{data: seed(), delay: delay}
}

func (t *Transport) Do(ctx context.Context, req api.Request, out any) error {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch req.Op {
	case api.OpUploadDocument:
		return t.upload(req, out)
	case api.OpWeeklyPurchases:
		return assign(out, t.weekly(req.Query.Get("date")))
	case api.OpSummary:
		return t.summary(req, out)
	case api.OpUpdateItem:
		return t.updateItem(req)
	case api.OpDeleteItem:
		return t.deleteItem(req)
	case api.OpUpdateReceiptDate:
		return t.updateReceiptDate(req)
	case api.OpDeleteReceipt:
		return t.deleteReceipt(req)
	case api.OpUserItemStats:
		return t.itemStats(req, out)
	case api.OpUserSummaryStats:
		return assign(out, t.data.summary)
	case api.OpUserCategoryStats:
		return assign(out, t.data.categories)
	case api.OpGlobalItemStats:
		return t.globalStats(req, out)
	default:
		return &api.Error{Status: http.StatusNotImplemented, Message: "unknown operation"}
	}
}

// upload returns a canned extraction and records the receipt so the
// purchases view can find it afterwards.
func (t *Transport) upload(req api.Request, out any) error {
	result := api.UploadResult{
		Merchant:     "Fixture Store",
		PurchaseDate: "2025-10-27",
		Items: []api.Item{
			{ItemName: "Fixture Item", ItemCost: dec("10.99")},
			{ItemName: "Fixture Extra", ItemCost: dec("5.00")},
		},
		TotalItems:       2,
		ProcessingTimeMs: 1200,
	}

	receipt := api.Purchase{
		ReceiptID: uuid.NewString(),
		Merchant:  result.Merchant,
		Timestamp: result.PurchaseDate + "T12:00:00Z",
	}
	total := decimal.Zero
	for _, item := range result.Items {
		receipt.Items = append(receipt.Items, api.Item{
			ItemID:   uuid.NewString(),
			ItemName: item.ItemName,
			ItemCost: item.ItemCost,
		})
		total = total.Add(item.ItemCost)
	}
	receipt.Total = total
	t.data.purchases[result.PurchaseDate] = append(t.data.purchases[result.PurchaseDate], receipt)

	return assign(out, result)
}

// weekly assembles the week containing date (Sunday through Saturday)
// from the purchases map, computing the bucket totals on read.
func (t *Transport) weekly(date string) api.WeeklyPurchases {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		day = time.Now().UTC()
	}
	start := day.AddDate(0, 0, -int(day.Weekday()))

	week := api.WeeklyPurchases{
		WeekStart:   start.Format("2006-01-02"),
		WeekEnd:     start.AddDate(0, 0, 6).Format("2006-01-02"),
		TotalDays:   7,
		TotalAmount: decimal.Zero,
		Purchases:   map[string][]api.Purchase{},
	}
	for i := 0; i < 7; i++ {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		receipts := t.data.purchases[key]
		if len(receipts) == 0 {
			continue
		}
		week.Purchases[key] = receipts
		week.DaysWithPurchases++
		for _, r := range receipts {
			week.TotalAmount = week.TotalAmount.Add(r.Total)
		}
	}
	return week
}

func (t *Transport) summary(req api.Request, out any) error {
	year, _ := strconv.Atoi(req.Query.Get("year"))
	if monthParam := req.Query.Get("month"); monthParam != "" {
		month, _ := strconv.Atoi(monthParam)
		key := fmt.Sprintf("%d-%02d", year, month)
		if monthly, ok := t.data.monthly[key]; ok {
			return assign(out, monthly)
		}
		return assign(out, api.MonthlySummary{Year: year, Month: month})
	}
	if yearly, ok := t.data.yearly[year]; ok {
		return assign(out, yearly)
	}
	return assign(out, api.YearlySummary{Year: year})
}

func (t *Transport) updateItem(req api.Request) error {
	var body struct {
		ItemID   string          `json:"itemId"`
		ItemName string          `json:"itemName"`
		ItemCost decimal.Decimal `json:"itemCost"`
	}
	if err := decodeBody(req.Body, &body); err != nil {
		return err
	}
	for date, receipts := range t.data.purchases {
		for ri := range receipts {
			for ii := range receipts[ri].Items {
				if receipts[ri].Items[ii].ItemID != body.ItemID {
					continue
				}
				receipts[ri].Items[ii].ItemName = body.ItemName
				receipts[ri].Items[ii].ItemCost = body.ItemCost
				receipts[ri].Total = sumItems(receipts[ri].Items)
				t.data.purchases[date] = receipts
				return nil
			}
		}
	}
	return &api.Error{Status: http.StatusNotFound, Message: "item not found"}
}

func (t *Transport) deleteItem(req api.Request) error {
	var body struct {
		ItemID string `json:"itemId"`
	}
	if err := decodeBody(req.Body, &body); err != nil {
		return err
	}
	for date, receipts := range t.data.purchases {
		for ri := range receipts {
			for ii := range receipts[ri].Items {
				if receipts[ri].Items[ii].ItemID != body.ItemID {
					continue
				}
				receipts[ri].Items = append(receipts[ri].Items[:ii], receipts[ri].Items[ii+1:]...)
				receipts[ri].Total = sumItems(receipts[ri].Items)
				t.data.purchases[date] = receipts
				return nil
			}
		}
	}
	return &api.Error{Status: http.StatusNotFound, Message: "item not found"}
}

func (t *Transport) updateReceiptDate(req api.Request) error {
	var body struct {
		OldDate string `json:"oldDate"`
		NewDate string `json:"newDate"`
	}
	if err := decodeBody(req.Body, &body); err != nil {
		return err
	}
	receiptID := strings.TrimSuffix(strings.TrimPrefix(req.Path, "/receipts/"), "/date")
	for date, receipts := range t.data.purchases {
		for ri, r := range receipts {
			if r.ReceiptID != receiptID {
				continue
			}
			t.data.purchases[date] = append(receipts[:ri], receipts[ri+1:]...)
			if len(t.data.purchases[date]) == 0 {
				delete(t.data.purchases, date)
			}
			t.data.purchases[body.NewDate] = append(t.data.purchases[body.NewDate], r)
			return nil
		}
	}
	return &api.Error{Status: http.StatusNotFound, Message: "receipt not found"}
}

func (t *Transport) deleteReceipt(req api.Request) error {
	receiptID := strings.TrimPrefix(req.Path, "/receipts/")
	for date, receipts := range t.data.purchases {
		for ri, r := range receipts {
			if r.ReceiptID != receiptID {
				continue
			}
			t.data.purchases[date] = append(receipts[:ri], receipts[ri+1:]...)
			if len(t.data.purchases[date]) == 0 {
				delete(t.data.purchases, date)
			}
			return nil
		}
	}
	return &api.Error{Status: http.StatusNotFound, Message: "receipt not found"}
}

// itemStats pages through the item dataset with opaque offset tokens,
// honoring an optional category scope.
func (t *Transport) itemStats(req api.Request, out any) error {
	limit, _ := strconv.Atoi(req.Query.Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	items := append([]api.UserItemStats(nil), t.data.items...)
	if category := req.Query.Get("category"); category != "" {
		scoped := make([]api.UserItemStats, 0, len(items))
		for _, item := range items {
			if strings.EqualFold(item.Category, category) {
				scoped = append(scoped, item)
			}
		}
		items = scoped
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalSpent.GreaterThan(items[j].TotalSpent)
	})

	offset := 0
	if token := req.Query.Get("nextToken"); token != "" {
		parsed, err := decodeToken(token)
		if err != nil {
			return &api.Error{Status: http.StatusBadRequest, Message: "invalid nextToken"}
		}
		offset = parsed
	}
	if offset > len(items) {
		offset = len(items)
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page := api.ItemStatsPage{
		Items:   items[offset:end],
		HasMore: end < len(items),
	}
	if page.HasMore {
		page.NextToken = encodeToken(end)
	}
	return assign(out, page)
}

func (t *Transport) globalStats(req api.Request, out any) error {
	name := strings.ToLower(strings.TrimSpace(req.Query.Get("itemName")))
	stats, ok := t.data.global[name]
	if !ok {
		return &api.Error{Status: http.StatusNotFound, Message: "item not found in global database"}
	}
	return assign(out, stats)
}

func sumItems(items []api.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ItemCost)
	}
	return total
}

func encodeToken(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte("offset:" + strconv.Itoa(offset)))
}

func decodeToken(token string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, err
	}
	value, ok := strings.CutPrefix(string(raw), "offset:")
	if !ok {
		return 0, fmt.Errorf("malformed token")
	}
	return strconv.Atoi(value)
}

// assign copies a fixture value into the caller's output through a JSON
// round trip, giving every response a request-scoped copy.
func assign(out, value any) error {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return json.Unmarshal(data, out)
}

// decodeBody converts the request body the same way the wire would.
func decodeBody(body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &api.Error{Status: http.StatusBadRequest, Message: "malformed body"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &api.Error{Status: http.StatusBadRequest, Message: "malformed body"}
	}
	return nil
}
