package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport performs requests against the live backend. Tokens may
// be nil, in which case every request is anonymous.
type HTTPTransport struct {
	BaseURL string
	Tokens  TokenSource
	Client  *http.Client
}

// NewHTTPTransport builds a live transport for the given base URL.
func NewHTTPTransport(baseURL string, tokens TokenSource) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req Request, out any) error {
	if req.Upload != nil {
		return t.doUpload(ctx, req, out)
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.url(req), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	t.authorize(ctx, httpReq)

	return t.roundTrip(httpReq, out)
}

// doUpload sends a multipart form with "file" and "type" fields. The
// content type comes from the multipart writer, so the auth header is
// the only one attached by hand.
func (t *HTTPTransport) doUpload(ctx context.Context, req Request, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", req.Upload.FileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Upload.File); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := w.WriteField("type", req.Upload.DocType); err != nil {
		return fmt.Errorf("write type field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url(req), &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	t.authorize(ctx, httpReq)

	return t.roundTrip(httpReq, out)
}

// authorize attaches the bearer header when a token is available. An
// unauthenticated session is expected and the header is simply omitted.
func (t *HTTPTransport) authorize(ctx context.Context, req *http.Request) {
	if t.Tokens == nil {
		return
	}
	token, err := t.Tokens.IDToken(ctx)
	if err != nil || token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (t *HTTPTransport) roundTrip(req *http.Request, out any) error {
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (t *HTTPTransport) url(req Request) string {
	u := t.BaseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}
