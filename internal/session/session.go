package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
	"github.com/five82/storefront/internal/storeapi"
)

var (
	// ErrValidation is returned when required fields are missing. No request
	// is sent.
	ErrValidation = errors.New("invalid input")
	// ErrNotSignedIn is returned by operations that need a credential.
	ErrNotSignedIn = errors.New("not signed in")
)

// API is the part of the remote client the session needs.
type API interface {
	SignUp(ctx context.Context, name, email, password string) (storeapi.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (storeapi.AuthResult, error)
	UpdateProfile(ctx context.Context, token string, update model.ProfileUpdate) (storeapi.ProfileResult, error)
}

// Store holds the signed-in identity and its credential. The credential
// lives in memory only.
type Store struct {
	api    API
	logger *zap.Logger

	mu         sync.RWMutex
	identity   *model.Identity
	credential string
	tracker    state.Tracker
}

// New returns an empty session store.
func New(api API, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, logger: logger.Named("session")}
}

// SignUp registers an account and signs it in.
func (s *Store) SignUp(ctx context.Context, name, email, password string) (model.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return model.Identity{}, fmt.Errorf("sign up: name, email and password required: %w", ErrValidation)
	}
	return s.authenticate(ctx, "sign up", func() (storeapi.AuthResult, error) {
		return s.api.SignUp(ctx, name, email, password)
	})
}

// SignIn exchanges credentials for a session. On failure the previous
// identity, if any, is kept.
func (s *Store) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Identity{}, fmt.Errorf("sign in: email and password required: %w", ErrValidation)
	}
	return s.authenticate(ctx, "sign in", func() (storeapi.AuthResult, error) {
		return s.api.SignIn(ctx, email, password)
	})
}

func (s *Store) authenticate(ctx context.Context, op string, call func() (storeapi.AuthResult, error)) (model.Identity, error) {
	s.mu.Lock()
	s.tracker.Begin()
	s.mu.Unlock()

	res, err := call()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		s.tracker.Fail(err)
		s.logger.Info(op+" failed", zap.Error(err), zap.Bool("auth", storeapi.IsAuthError(err)))
		return model.Identity{}, err
	}
	identity := res.Identity()
	s.identity = &identity
	s.credential = res.Token
	s.tracker.Succeed()
	s.logger.Info(op+" succeeded", zap.String("email", identity.Email))
	return identity, nil
}

// UpdateProfile changes the name and/or password of the signed-in user and
// merges the returned fields into the identity.
func (s *Store) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Identity, error) {
	s.mu.Lock()
	token := s.credential
	if token == "" || s.identity == nil {
		s.mu.Unlock()
		return model.Identity{}, fmt.Errorf("update profile: %w", ErrNotSignedIn)
	}
	if update.Empty() {
		s.mu.Unlock()
		return model.Identity{}, fmt.Errorf("update profile: name or password required: %w", ErrValidation)
	}
	s.tracker.Begin()
	s.mu.Unlock()

	res, err := s.api.UpdateProfile(ctx, token, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		err = fmt.Errorf("update profile: %w", err)
		s.tracker.Fail(err)
		s.logger.Info("profile update failed", zap.Error(err))
		return model.Identity{}, err
	}
	if s.identity == nil || s.credential != token {
		// signed out or replaced while the request was in flight
		s.tracker.Reset()
		return model.Identity{}, fmt.Errorf("update profile: %w", ErrNotSignedIn)
	}
	merged := res.Merge(*s.identity)
	if update.Name != nil && strings.TrimSpace(res.Name) == "" {
		merged.Name = strings.TrimSpace(*update.Name)
	}
	s.identity = &merged
	s.tracker.Succeed()
	return merged, nil
}

// SignOut clears the session and returns the identity that was active.
func (s *Store) SignOut() (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev model.Identity
	had := s.identity != nil
	if had {
		prev = *s.identity
	}
	s.identity = nil
	s.credential = ""
	s.tracker.Reset()
	return prev, had
}

// Identity returns the signed-in identity.
func (s *Store) Identity() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return model.Identity{}, false
	}
	return *s.identity, true
}

// Credential returns the bearer token, empty when signed out.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *Store) Status() state.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Status()
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.LastError()
}

// Request returns a copy of the request lifecycle.
func (s *Store) Request() state.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Snapshot()
}

// CredentialExpiry returns the exp claim when the credential is a JWT. The
// signature is not checked; the server remains the authority. Opaque tokens
// yield the zero time.
func (s *Store) CredentialExpiry() time.Time {
	return tokenExpiry(s.Credential())
}

// Expired reports whether a known expiry has passed. Credentials without an
// expiry never expire locally.
func (s *Store) Expired(now time.Time) bool {
	exp := s.CredentialExpiry()
	return !exp.IsZero() && !now.Before(exp)
}

func tokenExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
