package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures the request and replies with a canned
// payload.
type recordingTransport struct {
	last    Request
	payload any
	err     error
}

func (r *recordingTransport) Do(ctx context.Context, req Request, out any) error {
	r.last = req
	if r.err != nil {
		return r.err
	}
	if out == nil || r.payload == nil {
		return nil
	}
	data, err := json.Marshal(r.payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func TestUploadDerivesTotalCost(t *testing.T) {
	rt := &recordingTransport{payload: UploadResult{
		Merchant: "Corner Store",
		Items: []Item{
			{ItemName: "A", ItemCost: decimal.RequireFromString("10.99")},
			{ItemName: "B", ItemCost: decimal.RequireFromString("5.00")},
		},
		TotalItems: 2,
	}}
	client := NewClient(rt)

	result, err := client.UploadDocument(context.Background(), "r.jpg", strings.NewReader("bytes"), "receipt")
	require.NoError(t, err)
	require.True(t, result.TotalCost.Equal(decimal.RequireFromString("15.99")),
		"derived total = %s", result.TotalCost)

	require.Equal(t, OpUploadDocument, rt.last.Op)
	require.Equal(t, "/upload", rt.last.Path)
	require.NotNil(t, rt.last.Upload)
	require.Equal(t, "receipt", rt.last.Upload.DocType)
}

func TestUploadTotalIncludesNegativeItems(t *testing.T) {
	rt := &recordingTransport{payload: UploadResult{
		Items: []Item{
			{ItemCost: decimal.RequireFromString("20.00")},
			{ItemCost: decimal.RequireFromString("-4.50")},
		},
	}}
	client := NewClient(rt)

	result, err := client.UploadDocument(context.Background(), "r.jpg", strings.NewReader("x"), "receipt")
	require.NoError(t, err)
	require.True(t, result.TotalCost.Equal(decimal.RequireFromString("15.50")))
}

func TestPurchasesRequestShape(t *testing.T) {
	rt := &recordingTransport{payload: WeeklyPurchases{WeekStart: "2025-10-26"}}
	client := NewClient(rt)

	_, err := client.GetPurchases(context.Background(), "2025-10-28")
	require.NoError(t, err)
	require.Equal(t, OpWeeklyPurchases, rt.last.Op)
	require.Equal(t, http.MethodGet, rt.last.Method)
	require.Equal(t, "/purchases", rt.last.Path)
	require.Equal(t, "2025-10-28", rt.last.Query.Get("date"))
}

func TestSummaryRequestsShareOnePath(t *testing.T) {
	rt := &recordingTransport{payload: YearlySummary{Year: 2025}}
	client := NewClient(rt)

	_, err := client.GetYearlySummary(context.Background(), 2025)
	require.NoError(t, err)
	require.Equal(t, "/purchases/summary", rt.last.Path)
	require.Equal(t, "2025", rt.last.Query.Get("year"))
	require.Empty(t, rt.last.Query.Get("month"))

	rt.payload = MonthlySummary{Year: 2025, Month: 11}
	_, err = client.GetMonthlySummary(context.Background(), 2025, 11)
	require.NoError(t, err)
	require.Equal(t, "/purchases/summary", rt.last.Path)
	require.Equal(t, "2025", rt.last.Query.Get("year"))
	require.Equal(t, "11", rt.last.Query.Get("month"))
}

func TestItemMutationBodies(t *testing.T) {
	rt := &recordingTransport{}
	client := NewClient(rt)

	err := client.UpdateItem(context.Background(), "item-1", "Oat Milk", decimal.RequireFromString("4.20"))
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, rt.last.Method)
	require.Equal(t, "/items", rt.last.Path)
	body := rt.last.Body.(map[string]any)
	require.Equal(t, "item-1", body["itemId"])
	require.Equal(t, "Oat Milk", body["itemName"])

	err = client.DeleteItem(context.Background(), "item-2")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, rt.last.Method)
	require.Equal(t, "/items", rt.last.Path)
	require.Equal(t, "item-2", rt.last.Body.(map[string]any)["itemId"])
}

func TestReceiptMutationShapes(t *testing.T) {
	rt := &recordingTransport{}
	client := NewClient(rt)

	err := client.UpdateReceiptDate(context.Background(), "r-9", "2025-11-01", "2025-11-02")
	require.NoError(t, err)
	require.Equal(t, "/receipts/r-9/date", rt.last.Path)
	body := rt.last.Body.(map[string]any)
	require.Equal(t, "2025-11-01", body["oldDate"])
	require.Equal(t, "2025-11-02", body["newDate"])

	err = client.DeleteReceipt(context.Background(), "r-9", "2025-11-02")
	require.NoError(t, err)
	require.Equal(t, "/receipts/r-9", rt.last.Path)
	require.Equal(t, "2025-11-02", rt.last.Body.(map[string]any)["purchaseDate"])

	err = client.DeleteReceipt(context.Background(), "r-9", "")
	require.NoError(t, err)
	require.Nil(t, rt.last.Body, "unknown purchase date sends no body")
}

func TestItemStatsQueryOmitsEmptyOptionals(t *testing.T) {
	rt := &recordingTransport{payload: ItemStatsPage{}}
	client := NewClient(rt)

	_, err := client.GetUserItemStats(context.Background(), 20, "", CurrentYear(), "")
	require.NoError(t, err)
	require.Equal(t, "/user-stats/items", rt.last.Path)
	require.Equal(t, "20", rt.last.Query.Get("limit"))
	require.Equal(t, "current-year", rt.last.Query.Get("period"))
	_, hasToken := rt.last.Query["nextToken"]
	require.False(t, hasToken)
	_, hasCategory := rt.last.Query["category"]
	require.False(t, hasCategory)

	_, err = client.GetUserItemStats(context.Background(), 20, "tok", ForMonth(2025, 11), "Dairy")
	require.NoError(t, err)
	require.Equal(t, "tok", rt.last.Query.Get("nextToken"))
	require.Equal(t, "Dairy", rt.last.Query.Get("category"))
	require.Equal(t, "2025-11", rt.last.Query.Get("period"))
}

func TestGlobalStatsNotFound(t *testing.T) {
	rt := &recordingTransport{err: &Error{Status: http.StatusNotFound, Message: "item not found"}}
	client := NewClient(rt)

	_, err := client.GetGlobalItemStats(context.Background(), "unobtainium")
	require.Error(t, err)
	require.True(t, NotFound(err))
	require.Equal(t, "unobtainium", rt.last.Query.Get("itemName"))
}
