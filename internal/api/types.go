package api

import "github.com/shopspring/decimal"

func init() {
	// The backend emits and consumes plain JSON numbers for money fields.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is one line on a receipt. A negative cost is a refund or discount.
type Item struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	ItemCost decimal.Decimal `json:"itemCost"`
}

// Purchase is one recorded receipt.
type Purchase struct {
	ReceiptID string          `json:"receiptId"`
	Merchant  string          `json:"merchant"`
	Total     decimal.Decimal `json:"total"`
	Timestamp string          `json:"timestamp"`
	Items     []Item          `json:"items"`
}

// WeeklyPurchases groups a week of receipts by ISO date string.
// TotalAmount, DaysWithPurchases and TotalDays are computed server-side.
type WeeklyPurchases struct {
	WeekStart         string                `json:"weekStart"`
	WeekEnd           string                `json:"weekEnd"`
	TotalDays         int                   `json:"totalDays"`
	DaysWithPurchases int                   `json:"daysWithPurchases"`
	TotalAmount       decimal.Decimal       `json:"totalAmount"`
	Purchases         map[string][]Purchase `json:"purchases"`
}

// MonthSummary is one row of a yearly rollup.
type MonthSummary struct {
	Month        int             `json:"month"`
	MonthName    string          `json:"monthName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	ReceiptCount int             `json:"receiptCount"`
	ItemCount    int             `json:"itemCount"`
}

// YearlySummary is the per-month rollup for one year.
type YearlySummary struct {
	Year      int            `json:"year"`
	Summaries []MonthSummary `json:"summaries"`
}

// DaySummary is one row of a monthly rollup.
type DaySummary struct {
	Date         string          `json:"date"`
	DayName      string          `json:"dayName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	ReceiptCount int             `json:"receiptCount"`
	ItemCount    int             `json:"itemCount"`
}

// MonthlySummary is the per-day rollup for one month.
type MonthlySummary struct {
	Year           int          `json:"year"`
	Month          int          `json:"month"`
	DailySummaries []DaySummary `json:"dailySummaries"`
}

// UserItemStats is the per-item aggregate for the authenticated user.
type UserItemStats struct {
	ItemName         string                     `json:"itemName"`
	ShortLabel       string                     `json:"shortLabel"`
	Category         string                     `json:"category"`
	TotalSpent       decimal.Decimal            `json:"totalSpent"`
	PurchaseCount    int                        `json:"purchaseCount"`
	AvgCost          decimal.Decimal            `json:"avgCost"`
	LastPurchase     string                     `json:"lastPurchase"`
	MonthlyBreakdown map[string]decimal.Decimal `json:"monthlyBreakdown,omitempty"`
}

// ItemStatsPage is one page of item stats. NextToken is opaque and must
// be echoed back unmodified to fetch the following page.
type ItemStatsPage struct {
	Items     []UserItemStats `json:"items"`
	HasMore   bool            `json:"hasMore"`
	NextToken string          `json:"nextToken,omitempty"`
}

// TopItem is a condensed item entry inside summary and category stats.
type TopItem struct {
	ShortLabel    string          `json:"shortLabel"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	PurchaseCount int             `json:"purchaseCount"`
}

// UserSummaryStats is the user's all-up spending summary.
type UserSummaryStats struct {
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	TotalUniqueItems int             `json:"totalUniqueItems"`
	AvgSpentPerItem  decimal.Decimal `json:"avgSpentPerItem"`
	TopItems         []TopItem       `json:"topItems"`
}

// CategoryStats aggregates the user's spending for one category.
type CategoryStats struct {
	Category        string          `json:"category"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	ItemCount       int             `json:"itemCount"`
	AvgSpentPerItem decimal.Decimal `json:"avgSpentPerItem"`
	TopItems        []TopItem       `json:"topItems"`
}

// CategoryStatsResponse is the categories endpoint payload.
type CategoryStatsResponse struct {
	TotalSpent decimal.Decimal `json:"totalSpent"`
	Categories []CategoryStats `json:"categories"`
}

// GlobalItemStats is the cross-user aggregate for one item name.
type GlobalItemStats struct {
	ItemName       string          `json:"itemName"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	TotalPurchases int             `json:"totalPurchases"`
	AvgCost        decimal.Decimal `json:"avgCost"`
	LastUpdated    string          `json:"lastUpdated"`
}

// UploadResult holds the fields extracted from an uploaded document.
// TotalCost is not sent by the server; the client derives it by summing
// item costs.
type UploadResult struct {
	Merchant         string          `json:"merchant"`
	PurchaseDate     string          `json:"purchaseDate"`
	PurchaseTime     string          `json:"purchaseTime,omitempty"`
	Items            []Item          `json:"items"`
	TotalItems       int             `json:"totalItems"`
	ProcessingTimeMs int             `json:"processingTimeMs"`
	TotalCost        decimal.Decimal `json:"-"`
}
