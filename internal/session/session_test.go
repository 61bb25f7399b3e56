package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/state"
	"github.com/five82/storefront/internal/storeapi"
)

type fakeAPI struct {
	signIn    func(email, password string) (storeapi.AuthResult, error)
	update    func(token string, u model.ProfileUpdate) (storeapi.ProfileResult, error)
	calls     int
	lastToken string
}

func (f *fakeAPI) SignUp(_ context.Context, name, email, _ string) (storeapi.AuthResult, error) {
	f.calls++
	return storeapi.AuthResult{Token: "new", Name: name, Email: email}, nil
}

func (f *fakeAPI) SignIn(_ context.Context, email, password string) (storeapi.AuthResult, error) {
	f.calls++
	return f.signIn(email, password)
}

func (f *fakeAPI) UpdateProfile(_ context.Context, token string, u model.ProfileUpdate) (storeapi.ProfileResult, error) {
	f.calls++
	f.lastToken = token
	return f.update(token, u)
}

func okSignIn(email, _ string) (storeapi.AuthResult, error) {
	return storeapi.AuthResult{Token: "tok", Name: "Ann", Email: email}, nil
}

func TestSignInSuccess(t *testing.T) {
	api := &fakeAPI{signIn: okSignIn}
	s := New(api, nil)

	id, err := s.SignIn(context.Background(), " u@x ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u@x", id.Email)
	assert.Equal(t, "tok", s.Credential())
	assert.Equal(t, state.StatusSucceeded, s.Status())
	assert.NoError(t, s.LastError())

	got, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestSignInValidationSkipsRemote(t *testing.T) {
	api := &fakeAPI{signIn: okSignIn}
	s := New(api, nil)

	_, err := s.SignIn(context.Background(), "", "pw")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.SignUp(context.Background(), "Ann", "u@x", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, api.calls)
	assert.Equal(t, state.StatusIdle, s.Status())
}

func TestSignInFailureKeepsIdentity(t *testing.T) {
	api := &fakeAPI{signIn: okSignIn}
	s := New(api, nil)
	_, err := s.SignIn(context.Background(), "u@x", "pw")
	require.NoError(t, err)

	api.signIn = func(string, string) (storeapi.AuthResult, error) {
		return storeapi.AuthResult{}, &storeapi.APIError{Path: "/users/signin", StatusCode: 200, Auth: true}
	}
	_, err = s.SignIn(context.Background(), "other@x", "bad")
	require.Error(t, err)
	assert.True(t, storeapi.IsAuthError(err))
	assert.Equal(t, state.StatusFailed, s.Status())
	assert.True(t, storeapi.IsAuthError(s.LastError()))

	got, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, "u@x", got.Email)
	assert.Equal(t, "tok", s.Credential())
}

func TestSignInNetworkErrorIsNotAuth(t *testing.T) {
	api := &fakeAPI{signIn: func(string, string) (storeapi.AuthResult, error) {
		return storeapi.AuthResult{}, errors.New("execute request: connection refused")
	}}
	s := New(api, nil)

	_, err := s.SignIn(context.Background(), "u@x", "pw")
	require.Error(t, err)
	assert.False(t, storeapi.IsAuthError(err))
	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestSignUpSignsIn(t *testing.T) {
	s := New(&fakeAPI{}, nil)
	id, err := s.SignUp(context.Background(), "Ann", "u@x", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Ann", id.Name)
	assert.Equal(t, "new", s.Credential())
}

func TestSignOutClearsEverything(t *testing.T) {
	s := New(&fakeAPI{signIn: okSignIn}, nil)
	_, err := s.SignIn(context.Background(), "u@x", "pw")
	require.NoError(t, err)

	prev, had := s.SignOut()
	assert.True(t, had)
	assert.Equal(t, "u@x", prev.Email)
	assert.Empty(t, s.Credential())
	assert.Equal(t, state.StatusIdle, s.Status())
	_, ok := s.Identity()
	assert.False(t, ok)

	_, had = s.SignOut()
	assert.False(t, had)
}

func TestUpdateProfile(t *testing.T) {
	api := &fakeAPI{
		signIn: okSignIn,
		update: func(_ string, u model.ProfileUpdate) (storeapi.ProfileResult, error) {
			return storeapi.ProfileResult{Status: storeapi.StatusOK, Name: *u.Name}, nil
		},
	}
	s := New(api, nil)

	name := "Anna"
	_, err := s.UpdateProfile(context.Background(), model.ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, ErrNotSignedIn)
	assert.Zero(t, api.calls)

	_, err = s.SignIn(context.Background(), "u@x", "pw")
	require.NoError(t, err)

	_, err = s.UpdateProfile(context.Background(), model.ProfileUpdate{})
	require.ErrorIs(t, err, ErrValidation)

	id, err := s.UpdateProfile(context.Background(), model.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna", id.Name)
	assert.Equal(t, "u@x", id.Email)
	assert.Equal(t, "tok", api.lastToken)
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	s := New(&fakeAPI{signIn: func(email, _ string) (storeapi.AuthResult, error) {
		return storeapi.AuthResult{Token: token, Email: email}, nil
	}}, nil)
	_, err = s.SignIn(context.Background(), "u@x", "pw")
	require.NoError(t, err)

	assert.True(t, s.CredentialExpiry().Equal(exp))
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestOpaqueCredentialNeverExpires(t *testing.T) {
	s := New(&fakeAPI{signIn: okSignIn}, nil)
	_, err := s.SignIn(context.Background(), "u@x", "pw")
	require.NoError(t, err)
	assert.True(t, s.CredentialExpiry().IsZero())
	assert.False(t, s.Expired(time.Now().Add(24*time.Hour*365)))
}
