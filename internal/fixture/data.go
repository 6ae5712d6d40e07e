package fixture

import (
	"github.com/shopspring/decimal"

	"github.com/betafactory/receipted/internal/api"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("fixture: bad decimal literal " + s)
	}
	return d
}

// dataset is the mutable in-memory backend state served in mock mode.
type dataset struct {
	purchases  map[string][]api.Purchase // ISO date -> receipts
	yearly     map[int]api.YearlySummary
	monthly    map[string]api.MonthlySummary // "YYYY-MM"
	items      []api.UserItemStats
	categories api.CategoryStatsResponse
	summary    api.UserSummaryStats
	global     map[string]api.GlobalItemStats // lowercase item name
}

func seed() *dataset {
	return &dataset{
		purchases: map[string][]api.Purchase{
			"2025-10-26": {
				{
					ReceiptID: "fixture-receipt-0",
					Merchant:  "Weekend Store",
					Total:     dec("45.67"),
					Timestamp: "2025-10-26T09:00:00Z",
					Items: []api.Item{
						{ItemID: "fixture-item-0-1", ItemName: "Weekend Special", ItemCost: dec("25.67")},
						{ItemID: "fixture-item-0-2", ItemName: "Fresh Produce", ItemCost: dec("20.00")},
					},
				},
			},
			"2025-10-28": {
				{
					ReceiptID: "fixture-receipt-1",
					Merchant:  "Woolworths",
					Total:     dec("85.20"),
					Timestamp: "2025-10-28T10:00:00Z",
					Items: []api.Item{
						{ItemID: "fixture-item-1-1", ItemName: "Spicy Chicken Drumsticks 3pk", ItemCost: dec("12.50")},
						{ItemID: "fixture-item-1-2", ItemName: "Paseo 3 Ply T/tissue 24pk Value", ItemCost: dec("8.00")},
						{ItemID: "fixture-item-1-3", ItemName: "S/Magnum Honeycomb Crunch 4pk", ItemCost: dec("9.70")},
						{ItemID: "fixture-item-1-4", ItemName: "Groceries Assorted", ItemCost: dec("55.00")},
					},
				},
			},
			"2025-11-01": {
				{
					ReceiptID: "fixture-receipt-2",
					Merchant:  "Dan Murphy's",
					Total:     dec("-10.00"),
					Timestamp: "2025-11-01T16:30:00Z",
					Items: []api.Item{
						{ItemID: "fixture-item-2-1", ItemName: "Returned Carton", ItemCost: dec("-10.00")},
					},
				},
			},
		},
		yearly: map[int]api.YearlySummary{
			2025: {
				Year: 2025,
				Summaries: []api.MonthSummary{
					{Month: 1, MonthName: "January", TotalAmount: dec("1234.56"), ReceiptCount: 45, ItemCount: 234},
					{Month: 2, MonthName: "February", TotalAmount: dec("987.43"), ReceiptCount: 32, ItemCount: 189},
					{Month: 3, MonthName: "March", TotalAmount: dec("1500.00"), ReceiptCount: 50, ItemCount: 300},
					{Month: 10, MonthName: "October", TotalAmount: dec("-50.00"), ReceiptCount: 2, ItemCount: 2},
					{Month: 11, MonthName: "November", TotalAmount: dec("250.75"), ReceiptCount: 10, ItemCount: 45},
				},
			},
		},
		monthly: map[string]api.MonthlySummary{
			"2025-11": {
				Year:  2025,
				Month: 11,
				DailySummaries: []api.DaySummary{
					{Date: "2025-11-01", DayName: "Saturday", TotalAmount: dec("45.67"), ReceiptCount: 2, ItemCount: 8},
					{Date: "2025-11-02", DayName: "Sunday", TotalAmount: dec("0"), ReceiptCount: 0, ItemCount: 0},
					{Date: "2025-11-03", DayName: "Monday", TotalAmount: dec("85.20"), ReceiptCount: 1, ItemCount: 3},
					{Date: "2025-11-04", DayName: "Tuesday", TotalAmount: dec("0"), ReceiptCount: 0, ItemCount: 0},
					{Date: "2025-11-05", DayName: "Wednesday", TotalAmount: dec("38.25"), ReceiptCount: 2, ItemCount: 5},
					{Date: "2025-11-06", DayName: "Thursday", TotalAmount: dec("-15.50"), ReceiptCount: 1, ItemCount: 1},
				},
			},
		},
		items: []api.UserItemStats{
			itemStat("Coffee Beans", "Beverages", "156.78", 23, "6.82", "2025-10-15T10:30:00Z"),
			itemStat("Milk", "Dairy", "89.45", 15, "5.96", "2025-10-14T08:20:00Z"),
			itemStat("Bread", "Bakery", "67.20", 12, "5.60", "2025-10-13T16:45:00Z"),
			itemStat("Eggs", "Dairy", "45.30", 8, "5.66", "2025-10-12T11:15:00Z"),
			itemStat("Bananas", "Fruits", "34.80", 10, "3.48", "2025-10-11T14:30:00Z"),
			itemStat("Chicken Breast", "Meat", "92.10", 9, "10.23", "2025-10-10T18:05:00Z"),
			itemStat("Olive Oil", "Pantry", "41.97", 3, "13.99", "2025-10-02T12:40:00Z"),
			itemStat("Toilet Tissue", "Household", "56.00", 7, "8.00", "2025-09-28T09:55:00Z"),
			itemStat("Ice Cream", "Frozen", "38.80", 4, "9.70", "2025-09-21T17:10:00Z"),
			itemStat("Apples", "Fruits", "27.30", 7, "3.90", "2025-09-18T15:25:00Z"),
		},
		categories: api.CategoryStatsResponse{
			TotalSpent: dec("649.70"),
			Categories: []api.CategoryStats{
				{
					Category: "Beverages", TotalSpent: dec("156.78"), ItemCount: 1, AvgSpentPerItem: dec("156.78"),
					TopItems: []api.TopItem{{ShortLabel: "Coffee Beans", TotalSpent: dec("156.78"), PurchaseCount: 23}},
				},
				{
					Category: "Dairy", TotalSpent: dec("134.75"), ItemCount: 2, AvgSpentPerItem: dec("67.38"),
					TopItems: []api.TopItem{
						{ShortLabel: "Milk", TotalSpent: dec("89.45"), PurchaseCount: 15},
						{ShortLabel: "Eggs", TotalSpent: dec("45.30"), PurchaseCount: 8},
					},
				},
				{
					Category: "Fruits", TotalSpent: dec("62.10"), ItemCount: 2, AvgSpentPerItem: dec("31.05"),
					TopItems: []api.TopItem{
						{ShortLabel: "Bananas", TotalSpent: dec("34.80"), PurchaseCount: 10},
						{ShortLabel: "Apples", TotalSpent: dec("27.30"), PurchaseCount: 7},
					},
				},
			},
		},
		summary: api.UserSummaryStats{
			TotalSpent:       dec("649.70"),
			TotalUniqueItems: 10,
			AvgSpentPerItem:  dec("64.97"),
			TopItems: []api.TopItem{
				{ShortLabel: "Coffee Beans", TotalSpent: dec("156.78"), PurchaseCount: 23},
				{ShortLabel: "Chicken Breast", TotalSpent: dec("92.10"), PurchaseCount: 9},
				{ShortLabel: "Milk", TotalSpent: dec("89.45"), PurchaseCount: 15},
				{ShortLabel: "Bread", TotalSpent: dec("67.20"), PurchaseCount: 12},
				{ShortLabel: "Toilet Tissue", TotalSpent: dec("56.00"), PurchaseCount: 7},
			},
		},
		global: map[string]api.GlobalItemStats{
			"coffee beans": {ItemName: "Coffee Beans", TotalSpent: dec("48211.50"), TotalPurchases: 7421, AvgCost: dec("6.50"), LastUpdated: "2025-11-01T00:00:00Z"},
			"milk":         {ItemName: "Milk", TotalSpent: dec("120400.00"), TotalPurchases: 21500, AvgCost: dec("5.60"), LastUpdated: "2025-11-01T00:00:00Z"},
			"bread":        {ItemName: "Bread", TotalSpent: dec("80350.40"), TotalPurchases: 14348, AvgCost: dec("5.60"), LastUpdated: "2025-11-01T00:00:00Z"},
		},
	}
}

func itemStat(name, category, total string, count int, avg, last string) api.UserItemStats {
	return api.UserItemStats{
		ItemName:      name,
		ShortLabel:    name,
		Category:      category,
		TotalSpent:    dec(total),
		PurchaseCount: count,
		AvgCost:       dec(avg),
		LastPurchase:  last,
	}
}
