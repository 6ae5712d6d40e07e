package fixture

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/betafactory/receipted/internal/api"
)

func newTestClient() *api.Client {
	return api.NewClient(New(0))
}

func TestWeeklyWindowAndTotals(t *testing.T) {
	client := newTestClient()

	week, err := client.GetPurchases(context.Background(), "2025-10-28")
	require.NoError(t, err)
	require.Equal(t, "2025-10-26", week.WeekStart)
	require.Equal(t, "2025-11-01", week.WeekEnd)
	require.Equal(t, 7, week.TotalDays)
	require.Equal(t, 3, week.DaysWithPurchases)

	// the refund receipt keeps its negative total
	var refund *api.Purchase
	for _, receipts := range week.Purchases {
		for i, r := range receipts {
			if r.Total.Sign() < 0 {
				refund = &receipts[i]
			}
		}
	}
	require.NotNil(t, refund, "seed data carries a negative-total receipt")
	require.True(t, refund.Total.Equal(decimal.RequireFromString("-10.00")))
}

func TestItemStatsPaginationAdvancesWithoutRepetition(t *testing.T) {
	client := newTestClient()

	seen := map[string]bool{}
	token := ""
	pages := 0
	for {
		page, err := client.GetUserItemStats(context.Background(), 3, token, api.CurrentYear(), "")
		require.NoError(t, err)
		require.NotEmpty(t, page.Items)
		for _, item := range page.Items {
			require.False(t, seen[item.ItemName], "item %q repeated across pages", item.ItemName)
			seen[item.ItemName] = true
		}
		pages++
		if !page.HasMore {
			require.Empty(t, page.NextToken)
			break
		}
		require.NotEmpty(t, page.NextToken)
		token = page.NextToken
	}
	require.Greater(t, pages, 1, "page size 3 must paginate the seed items")
	require.Len(t, seen, 10)
}

func TestItemStatsFirstPageIsStable(t *testing.T) {
	client := newTestClient()

	first, err := client.GetUserItemStats(context.Background(), 3, "", api.CurrentYear(), "")
	require.NoError(t, err)
	again, err := client.GetUserItemStats(context.Background(), 3, "", api.CurrentYear(), "")
	require.NoError(t, err)
	require.Equal(t, first.Items, again.Items)
}

func TestItemStatsRejectsMalformedToken(t *testing.T) {
	client := newTestClient()

	_, err := client.GetUserItemStats(context.Background(), 3, "not-base64!!", api.CurrentYear(), "")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.Status)
}

func TestItemStatsCategoryScope(t *testing.T) {
	client := newTestClient()

	page, err := client.GetUserItemStats(context.Background(), 20, "", api.CurrentYear(), "dairy")
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	for _, item := range page.Items {
		require.True(t, strings.EqualFold(item.Category, "Dairy"))
	}
}

func TestUploadRecordsReceipt(t *testing.T) {
	client := newTestClient()

	result, err := client.UploadDocument(context.Background(), "r.jpg", strings.NewReader("jpeg"), "receipt")
	require.NoError(t, err)
	require.True(t, result.TotalCost.Equal(decimal.RequireFromString("15.99")))

	week, err := client.GetPurchases(context.Background(), result.PurchaseDate)
	require.NoError(t, err)
	found := false
	for _, r := range week.Purchases[result.PurchaseDate] {
		if r.Merchant == result.Merchant && r.Total.Equal(result.TotalCost) {
			found = true
		}
	}
	require.True(t, found, "uploaded receipt should appear in its week")
}

func TestDeleteItemRecomputesReceiptTotal(t *testing.T) {
	client := newTestClient()

	week, err := client.GetPurchases(context.Background(), "2025-10-28")
	require.NoError(t, err)

	var receipt api.Purchase
	var date string
	for d, receipts := range week.Purchases {
		for _, r := range receipts {
			if len(r.Items) > 1 {
				receipt, date = r, d
			}
		}
	}
	require.NotEmpty(t, receipt.ReceiptID)

	victim := receipt.Items[0]
	require.NoError(t, client.DeleteItem(context.Background(), victim.ItemID))

	after, err := client.GetPurchases(context.Background(), date)
	require.NoError(t, err)
	for _, r := range after.Purchases[date] {
		if r.ReceiptID != receipt.ReceiptID {
			continue
		}
		require.Len(t, r.Items, len(receipt.Items)-1)
		require.True(t, r.Total.Equal(receipt.Total.Sub(victim.ItemCost)),
			"receipt total must be recomputed after item delete")
	}
}

func TestUpdateReceiptDateMovesBucket(t *testing.T) {
	client := newTestClient()

	week, err := client.GetPurchases(context.Background(), "2025-10-28")
	require.NoError(t, err)
	var receipt api.Purchase
	var oldDate string
	for d, receipts := range week.Purchases {
		if len(receipts) > 0 {
			receipt, oldDate = receipts[0], d
			break
		}
	}
	require.NotEmpty(t, receipt.ReceiptID)

	newDate := "2025-12-15"
	require.NoError(t, client.UpdateReceiptDate(context.Background(), receipt.ReceiptID, oldDate, newDate))

	moved, err := client.GetPurchases(context.Background(), newDate)
	require.NoError(t, err)
	found := false
	for _, r := range moved.Purchases[newDate] {
		if r.ReceiptID == receipt.ReceiptID {
			found = true
		}
	}
	require.True(t, found)

	orig, err := client.GetPurchases(context.Background(), oldDate)
	require.NoError(t, err)
	for _, r := range orig.Purchases[oldDate] {
		require.NotEqual(t, receipt.ReceiptID, r.ReceiptID)
	}
}

func TestDeleteReceiptPrunesBucket(t *testing.T) {
	client := newTestClient()

	week, err := client.GetPurchases(context.Background(), "2025-10-28")
	require.NoError(t, err)
	var receipt api.Purchase
	var date string
	for d, receipts := range week.Purchases {
		if len(receipts) == 1 {
			receipt, date = receipts[0], d
		}
	}
	require.NotEmpty(t, receipt.ReceiptID)

	require.NoError(t, client.DeleteReceipt(context.Background(), receipt.ReceiptID, date))

	after, err := client.GetPurchases(context.Background(), date)
	require.NoError(t, err)
	_, stillThere := after.Purchases[date]
	require.False(t, stillThere, "an emptied day bucket is removed")
}

func TestSummaryDispatch(t *testing.T) {
	client := newTestClient()

	yearly, err := client.GetYearlySummary(context.Background(), 2025)
	require.NoError(t, err)
	require.Equal(t, 2025, yearly.Year)
	require.NotEmpty(t, yearly.Summaries)

	var november *api.MonthSummary
	for i := range yearly.Summaries {
		if yearly.Summaries[i].Month == 11 {
			november = &yearly.Summaries[i]
		}
	}
	require.NotNil(t, november)

	monthly, err := client.GetMonthlySummary(context.Background(), 2025, 11)
	require.NoError(t, err)
	require.Equal(t, 11, monthly.Month)
	require.NotEmpty(t, monthly.DailySummaries)

	// unknown periods come back empty, not as errors
	empty, err := client.GetYearlySummary(context.Background(), 1999)
	require.NoError(t, err)
	require.Empty(t, empty.Summaries)
}

func TestGlobalStatsLookup(t *testing.T) {
	client := newTestClient()

	stats, err := client.GetGlobalItemStats(context.Background(), "Coffee Beans")
	require.NoError(t, err, "lookup is case-insensitive")
	require.NotZero(t, stats.TotalPurchases)

	_, err = client.GetGlobalItemStats(context.Background(), "unobtainium")
	require.True(t, api.NotFound(err))
}
