package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) IDToken(ctx context.Context) (string, error) { return s.token, s.err }

func TestHTTPTransportAttachesBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, staticTokens{token: "tok-123"})
	var out struct{}
	err := tr.Do(context.Background(), Request{Method: http.MethodGet, Path: "/purchases"}, &out)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestHTTPTransportAnonymousOnTokenFailure(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// empty token and erroring source both degrade to anonymous
	for _, tokens := range []TokenSource{staticTokens{}, staticTokens{err: context.DeadlineExceeded}, nil} {
		gotAuth = "sentinel"
		tr := NewHTTPTransport(srv.URL, tokens)
		err := tr.Do(context.Background(), Request{Method: http.MethodGet, Path: "/purchases"}, nil)
		require.NoError(t, err)
		require.Empty(t, gotAuth)
	}
}

func TestHTTPTransportQueryAndErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/item-stats", r.URL.Path)
		require.Equal(t, "coffee", r.URL.Query().Get("itemName"))
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"item not found in global database"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, nil)
	err := tr.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/item-stats",
		Query:  url.Values{"itemName": {"coffee"}},
	}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Contains(t, apiErr.Message, "item not found")
	require.True(t, NotFound(err))
}

func TestHTTPTransportMultipartUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "receipt", r.FormValue("type"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "receipt.jpg", header.Filename)

		w.Write([]byte(`{"merchant":"Corner Store","items":[],"totalItems":0}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, staticTokens{token: "tok"})
	var out UploadResult
	err := tr.Do(context.Background(), Request{
		Op:     OpUploadDocument,
		Method: http.MethodPost,
		Path:   "/upload",
		Upload: &Upload{FileName: "receipt.jpg", File: strings.NewReader("jpeg"), DocType: "receipt"},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "Corner Store", out.Merchant)
}

func TestHTTPTransportTrimsTrailingSlash(t *testing.T) {
	tr := NewHTTPTransport("https://example.com/v1/", nil)
	require.Equal(t, "https://example.com/v1", tr.BaseURL)
}
