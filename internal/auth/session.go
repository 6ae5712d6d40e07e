// Package auth manages the hosted-provider session. Token issuance and
// refresh belong to the identity provider; this package only runs the
// redirect code flow, caches the resulting tokens, and answers "is a
// user signed in" for the rest of the program.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Config holds the identity-provider connection parameters.
type Config struct {
	Domain            string // hosted auth domain, e.g. auth.example.com
	ClientID          string
	RedirectURL       string // loopback URL registered with the provider
	LogoutRedirectURL string
	Scopes            []string
}

// Session tracks the current authentication state. It is an explicit
// observable: views subscribe for sign-in/sign-out notifications and
// unsubscribe when they stop caring.
type Session struct {
	oauth Config

	mu       sync.Mutex
	conf     *oauth2.Config
	token    *storedToken
	resolved *bool
	subs     map[int]func(bool)
	nextSub  int
}

func NewSession(cfg Config) *Session {
	return &Session{
		oauth: cfg,
		conf: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  fmt.Sprintf("https://%s/oauth2/authorize", cfg.Domain),
				TokenURL: fmt.Sprintf("https://%s/oauth2/token", cfg.Domain),
			},
		},
		subs: map[int]func(bool){},
	}
}

// Resolve performs the initial session probe: a cached, still-usable
// token means signed in. A missing or expired-beyond-refresh token is a
// normal negative result, never an error.
func (s *Session) Resolve(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := loadToken()
	ok := err == nil && tok != nil && s.usable(ctx, tok)
	if ok {
		s.token = tok
	}
	s.resolved = &ok
	return ok
}

// Resolved reports the probe state: nil until Resolve has run, then the
// last known answer.
func (s *Session) Resolved() *bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Subscribe registers a listener for authentication changes and returns
// an id for Unsubscribe.
func (s *Session) Subscribe(fn func(authenticated bool)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.subs[s.nextSub] = fn
	return s.nextSub
}

func (s *Session) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// IDToken implements api.TokenSource. An unauthenticated session yields
// an empty token and no error; requests proceed anonymously.
func (s *Session) IDToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return "", nil
	}
	if time.Until(s.token.Expiry) < time.Minute {
		if err := s.refreshLocked(ctx); err != nil {
			return "", nil
		}
	}
	if s.token.IDToken != "" {
		return s.token.IDToken, nil
	}
	return s.token.AccessToken, nil
}

// refreshLocked exchanges the refresh token for fresh credentials.
func (s *Session) refreshLocked(ctx context.Context) error {
	if s.token.RefreshToken == "" {
		return errors.New("no refresh token")
	}
	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		return err
	}
	s.token = fromOAuth(fresh, s.token.RefreshToken)
	return saveToken(s.token)
}

// usable reports whether tok still authenticates, refreshing if needed.
func (s *Session) usable(ctx context.Context, tok *storedToken) bool {
	if time.Until(tok.Expiry) >= time.Minute {
		return true
	}
	if tok.RefreshToken == "" {
		return false
	}
	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		return false
	}
	*tok = *fromOAuth(fresh, tok.RefreshToken)
	_ = saveToken(tok)
	return true
}

// SignInFlow is one in-progress redirect sign-in attempt.
type SignInFlow struct {
	// URL is the provider page the user must visit.
	URL string

	session  *Session
	server   *http.Server
	listener net.Listener
	state    string
	verifier string
	codeCh   chan string
	errCh    chan error
}

// BeginSignIn starts a loopback listener on the configured redirect URL
// and returns the provider URL to visit. Call Wait to complete the
// exchange.
func (s *Session) BeginSignIn() (*SignInFlow, error) {
	redirect, err := url.Parse(s.oauth.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}

	flow := &SignInFlow{
		session:  s,
		state:    randomHex(16),
		verifier: oauth2.GenerateVerifier(),
		codeCh:   make(chan string, 1),
		errCh:    make(chan error, 1),
	}
	flow.URL = s.conf.AuthCodeURL(flow.state, oauth2.S256ChallengeOption(flow.verifier))

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", redirect.Host, err)
	}
	flow.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != flow.state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			flow.errCh <- errors.New("state mismatch in callback")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			flow.errCh <- errors.New("callback without code")
			return
		}
		fmt.Fprintln(w, "Signed in. You can return to the terminal.")
		flow.codeCh <- code
	})
	flow.server = &http.Server{Handler: mux}
	go func() {
		if err := flow.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			flow.errCh <- err
		}
	}()

	return flow, nil
}

// Wait blocks until the provider redirects back, exchanges the code,
// caches the token, and notifies subscribers.
func (f *SignInFlow) Wait(ctx context.Context) error {
	defer f.server.Close()

	var code string
	select {
	case code = <-f.codeCh:
	case err := <-f.errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	tok, err := f.session.conf.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	f.session.mu.Lock()
	f.session.token = fromOAuth(tok, tok.RefreshToken)
	ok := true
	f.session.resolved = &ok
	err = saveToken(f.session.token)
	subs := snapshot(f.session.subs)
	f.session.mu.Unlock()

	notify(subs, true)
	return err
}

// SignOut forgets the cached credentials and notifies subscribers. The
// provider's own session is browser state this client never holds.
func (s *Session) SignOut() error {
	s.mu.Lock()
	s.token = nil
	ok := false
	s.resolved = &ok
	err := clearToken()
	subs := snapshot(s.subs)
	s.mu.Unlock()

	notify(subs, false)
	return err
}

func fromOAuth(tok *oauth2.Token, fallbackRefresh string) *storedToken {
	st := &storedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if st.RefreshToken == "" {
		st.RefreshToken = fallbackRefresh
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		st.IDToken = id
	}
	return st
}

func snapshot(subs map[int]func(bool)) []func(bool) {
	out := make([]func(bool), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(bool), authenticated bool) {
	for _, fn := range subs {
		fn(authenticated)
	}
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
