package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
)

// Op tags the logical operation a Request performs. The fixture
// transport dispatches on this tag; the live transport only needs the
// method, path and parameters.
type Op int

const (
	OpUploadDocument Op = iota
	OpWeeklyPurchases
	OpSummary
	OpUpdateItem
	OpDeleteItem
	OpUpdateReceiptDate
	OpDeleteReceipt
	OpUserItemStats
	OpUserSummaryStats
	OpUserCategoryStats
	OpGlobalItemStats
)

// Upload carries the multipart form fields of a document upload.
type Upload struct {
	FileName string
	File     io.Reader
	DocType  string
}

// Request is a structured request descriptor built by the Client.
type Request struct {
	Op     Op
	Method string
	Path   string
	Query  url.Values
	Body   any     // JSON-encoded when non-nil
	Upload *Upload // multipart form when non-nil
}

// Transport executes a Request and decodes the response into out. The
// live implementation talks to the backend; the fixture implementation
// serves canned data.
type Transport interface {
	Do(ctx context.Context, req Request, out any) error
}

// TokenSource produces the bearer token for the current session. An
// empty token means anonymous; implementations must not return an error
// merely because no user is signed in.
type TokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// Error is a transport-level failure carrying the HTTP status code.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// NotFound reports whether err is an API error with status 404.
func NotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
