// Package session owns the authenticated user's credentials. The Store is
// the single writer of the access/refresh/username keys in durable storage;
// every other component reads the session through it (or subscribes) instead
// of touching storage directly.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"craftfolio/internal/api"
	"craftfolio/internal/logging"
	"craftfolio/internal/storage"
)

// Session is the credential pair plus the cached username. Replaced
// wholesale on login, never mutated in place.
type Session struct {
	AccessToken  string
	RefreshToken string
	Username     string
}

// Authenticated reports whether an access token is present. Expiry is not
// checked here: an expired token surfaces as an AuthError on the next call.
func (s Session) Authenticated() bool { return s.AccessToken != "" }

// Credentials is a login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is a register payload. Registration chains into login.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store manages the session lifecycle and implements api.TokenSource.
type Store struct {
	mu       sync.RWMutex
	kv       *storage.Store
	client   *api.Client
	watchers map[int]func(Session)
	nextID   int
	log      *zap.Logger
}

// NewStore builds a store over durable storage. Call SetClient before Login
// or Register.
func NewStore(kv *storage.Store) *Store {
	return &Store{
		kv:       kv,
		watchers: make(map[int]func(Session)),
		log:      logging.Get(logging.CategorySession),
	}
}

// SetClient binds the HTTP adapter. The store cannot be constructed with it
// because the adapter needs the store as its token source.
func (s *Store) SetClient(c *api.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	return s.kv.Get(storage.KeyAccess)
}

// Current returns the persisted session.
func (s *Store) Current() Session {
	return Session{
		AccessToken:  s.kv.Get(storage.KeyAccess),
		RefreshToken: s.kv.Get(storage.KeyRefresh),
		Username:     s.kv.Get(storage.KeyUsername),
	}
}

// Watch registers a subscriber notified after every session change. The
// returned func cancels the subscription.
func (s *Store) Watch(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	current := s.Current()
	s.mu.RLock()
	fns := make([]func(Session), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(current)
	}
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair and persists the session.
// On failure nothing in storage changes.
func (s *Store) Login(ctx context.Context, creds Credentials) (Session, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return Session{}, fmt.Errorf("session store has no client bound")
	}

	var pair tokenPair
	if err := client.Post(ctx, "/auth/jwt/create", creds, &pair); err != nil {
		return Session{}, err
	}

	username := claimUsername(pair.Access)
	if username == "" {
		username = creds.Username
	}

	next := Session{AccessToken: pair.Access, RefreshToken: pair.Refresh, Username: username}
	if err := s.kv.SetAll(map[string]string{
		storage.KeyAccess:   next.AccessToken,
		storage.KeyRefresh:  next.RefreshToken,
		storage.KeyUsername: next.Username,
	}); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.log.Info("logged in", zap.String("username", next.Username))
	s.notify()
	return next, nil
}

// Register creates the account, then chains into Login.
func (s *Store) Register(ctx context.Context, reg Registration) (Session, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return Session{}, fmt.Errorf("session store has no client bound")
	}

	if err := client.Post(ctx, "/auth/users/", reg, nil); err != nil {
		return Session{}, err
	}
	return s.Login(ctx, Credentials{Username: reg.Username, Password: reg.Password})
}

// Logout clears the stored tokens unconditionally. Idempotent.
func (s *Store) Logout() {
	_ = s.kv.Delete(storage.KeyAccess)
	_ = s.kv.Delete(storage.KeyRefresh)
	_ = s.kv.Delete(storage.KeyUsername)
	s.log.Info("logged out")
	s.notify()
}

// claimUsername pulls the username claim out of a JWT without verifying the
// signature. The token came over TLS from the issuer; we only read metadata.
func claimUsername(token string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if u, ok := claims["username"].(string); ok {
		return u
	}
	return ""
}
