package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Client is the single point of contact with the backend. It builds
// structured request descriptors and hands them to its Transport, so
// the same code path serves live and fixture modes.
type Client struct {
	transport Transport
}

func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// UploadDocument submits a document for extraction. docType must be
// validated non-empty by the caller. TotalCost is derived locally; the
// server does not provide it.
func (c *Client) UploadDocument(ctx context.Context, fileName string, file io.Reader, docType string) (*UploadResult, error) {
	var result UploadResult
	err := c.transport.Do(ctx, Request{
		Op:     OpUploadDocument,
		Method: http.MethodPost,
		Path:   "/upload",
		Upload: &Upload{FileName: fileName, File: file, DocType: docType},
	}, &result)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, item := range result.Items {
		total = total.Add(item.ItemCost)
	}
	result.TotalCost = total
	return &result, nil
}

// GetPurchases fetches the week of purchases containing date
// (YYYY-MM-DD).
func (c *Client) GetPurchases(ctx context.Context, date string) (*WeeklyPurchases, error) {
	var result WeeklyPurchases
	err := c.transport.Do(ctx, Request{
		Op:     OpWeeklyPurchases,
		Method: http.MethodGet,
		Path:   "/purchases",
		Query:  url.Values{"date": {date}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetYearlySummary fetches the per-month rollup for one year.
func (c *Client) GetYearlySummary(ctx context.Context, year int) (*YearlySummary, error) {
	var result YearlySummary
	err := c.transport.Do(ctx, Request{
		Op:     OpSummary,
		Method: http.MethodGet,
		Path:   "/purchases/summary",
		Query:  url.Values{"year": {strconv.Itoa(year)}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMonthlySummary fetches the per-day rollup for one month.
func (c *Client) GetMonthlySummary(ctx context.Context, year, month int) (*MonthlySummary, error) {
	var result MonthlySummary
	err := c.transport.Do(ctx, Request{
		Op:     OpSummary,
		Method: http.MethodGet,
		Path:   "/purchases/summary",
		Query:  url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateItem renames or reprices one item.
func (c *Client) UpdateItem(ctx context.Context, itemID, itemName string, itemCost decimal.Decimal) error {
	return c.transport.Do(ctx, Request{
		Op:     OpUpdateItem,
		Method: http.MethodPut,
		Path:   "/items",
		Body: map[string]any{
			"itemId":   itemID,
			"itemName": itemName,
			"itemCost": itemCost,
		},
	}, nil)
}

// DeleteItem removes one item. Deletes are never retried.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.transport.Do(ctx, Request{
		Op:     OpDeleteItem,
		Method: http.MethodDelete,
		Path:   "/items",
		Body:   map[string]any{"itemId": itemID},
	}, nil)
}

// UpdateReceiptDate moves a receipt to a new calendar date bucket.
func (c *Client) UpdateReceiptDate(ctx context.Context, receiptID, oldDate, newDate string) error {
	return c.transport.Do(ctx, Request{
		Op:     OpUpdateReceiptDate,
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/receipts/%s/date", receiptID),
		Body:   map[string]any{"oldDate": oldDate, "newDate": newDate},
	}, nil)
}

// DeleteReceipt removes a whole receipt. purchaseDate may be empty when
// unknown. Deletes are never retried.
func (c *Client) DeleteReceipt(ctx context.Context, receiptID, purchaseDate string) error {
	req := Request{
		Op:     OpDeleteReceipt,
		Method: http.MethodDelete,
		Path:   "/receipts/" + receiptID,
	}
	if purchaseDate != "" {
		req.Body = map[string]any{"purchaseDate": purchaseDate}
	}
	return c.transport.Do(ctx, req, nil)
}

// GetUserItemStats fetches one page of per-item stats. nextToken is the
// opaque cursor from the previous page, empty for the first page.
// category optionally scopes the listing.
func (c *Client) GetUserItemStats(ctx context.Context, limit int, nextToken string, period Period, category string) (*ItemStatsPage, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"period": {period.Encode()},
	}
	if nextToken != "" {
		query.Set("nextToken", nextToken)
	}
	if category != "" {
		query.Set("category", category)
	}
	var result ItemStatsPage
	err := c.transport.Do(ctx, Request{
		Op:     OpUserItemStats,
		Method: http.MethodGet,
		Path:   "/user-stats/items",
		Query:  query,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUserSummaryStats fetches the user's spending summary.
func (c *Client) GetUserSummaryStats(ctx context.Context, period Period) (*UserSummaryStats, error) {
	var result UserSummaryStats
	err := c.transport.Do(ctx, Request{
		Op:     OpUserSummaryStats,
		Method: http.MethodGet,
		Path:   "/user-stats/summary",
		Query:  url.Values{"period": {period.Encode()}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUserCategoryStats fetches per-category aggregates.
func (c *Client) GetUserCategoryStats(ctx context.Context, period Period) (*CategoryStatsResponse, error) {
	var result CategoryStatsResponse
	err := c.transport.Do(ctx, Request{
		Op:     OpUserCategoryStats,
		Method: http.MethodGet,
		Path:   "/user-stats/categories",
		Query:  url.Values{"period": {period.Encode()}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetGlobalItemStats looks up the cross-user aggregate for one item
// name.
func (c *Client) GetGlobalItemStats(ctx context.Context, itemName string) (*GlobalItemStats, error) {
	var result GlobalItemStats
	err := c.transport.Do(ctx, Request{
		Op:     OpGlobalItemStats,
		Method: http.MethodGet,
		Path:   "/item-stats",
		Query:  url.Values{"itemName": {itemName}},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
