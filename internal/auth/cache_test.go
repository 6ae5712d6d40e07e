package auth

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolateCache(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestTokenCacheRoundTrip(t *testing.T) {
	isolateCache(t)

	tok := &storedToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		IDToken:      "id",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, saveToken(tok))

	loaded, err := loadToken()
	require.NoError(t, err)
	require.Equal(t, tok.AccessToken, loaded.AccessToken)
	require.Equal(t, tok.RefreshToken, loaded.RefreshToken)
	require.Equal(t, tok.IDToken, loaded.IDToken)
	require.True(t, tok.Expiry.Equal(loaded.Expiry))
}

func TestTokenCacheMissingIsNotAnError(t *testing.T) {
	isolateCache(t)

	tok, err := loadToken()
	require.NoError(t, err)
	require.Nil(t, tok)

	require.NoError(t, clearToken(), "clearing an absent cache succeeds")
}

func TestTokenCacheNeverStoresPlaintext(t *testing.T) {
	isolateCache(t)

	require.NoError(t, saveToken(&storedToken{AccessToken: "super-secret-token"}))
	path, err := cachePath()
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token")
}

func TestTokenCacheRejectsTampering(t *testing.T) {
	isolateCache(t)

	require.NoError(t, saveToken(&storedToken{AccessToken: "access"}))
	path, err := cachePath()
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var cf cacheFile
	require.NoError(t, json.Unmarshal(raw, &cf))
	ct, err := base64.StdEncoding.DecodeString(cf.Token)
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff
	cf.Token = base64.StdEncoding.EncodeToString(ct)
	tampered, err := json.Marshal(cf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = loadToken()
	require.Error(t, err)
}

func TestSignOutForgetsTokenAndNotifies(t *testing.T) {
	isolateCache(t)

	require.NoError(t, saveToken(&storedToken{AccessToken: "access", Expiry: time.Now().Add(time.Hour)}))

	s := NewSession(Config{Domain: "auth.example.com", ClientID: "client"})
	var events []bool
	id := s.Subscribe(func(ok bool) { events = append(events, ok) })
	defer s.Unsubscribe(id)

	require.True(t, s.Resolve(t.Context()))
	require.NoError(t, s.SignOut())
	require.Equal(t, []bool{false}, events)

	require.False(t, s.Resolve(t.Context()), "the cached token is gone after sign-out")
	require.NotNil(t, s.Resolved())
	require.False(t, *s.Resolved())
}

func TestResolveTreatsExpiredUnrefreshableAsSignedOut(t *testing.T) {
	isolateCache(t)

	require.NoError(t, saveToken(&storedToken{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}))

	s := NewSession(Config{Domain: "auth.example.com", ClientID: "client"})
	require.False(t, s.Resolve(t.Context()))
}
