package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "licmgr/internal/errors"
)

func newTestSession(auth Authenticator, clock *time.Time) *Session {
	s := NewSession(auth, time.Minute, 2, nil)
	s.now = func() time.Time { return *clock }
	return s
}

func TestSessionLogin(t *testing.T) {
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "admin123").Return(nil)
	clock := fixedNow
	session := newTestSession(auth, &clock)

	assert.False(t, session.Authenticated())
	require.NoError(t, session.Login(context.Background(), "admin123"))
	assert.True(t, session.Authenticated())

	session.Logout()
	assert.False(t, session.Authenticated())
	auth.AssertExpectations(t)
}

func TestSessionThrottlesFailedLogins(t *testing.T) {
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "wrong").Return(apperrors.ErrInvalidPassword)
	auth.On("Login", mock.Anything, "admin123").Return(nil)
	clock := fixedNow
	session := newTestSession(auth, &clock)
	ctx := context.Background()

	// the burst of two failures is let through to the store
	assert.ErrorIs(t, session.Login(ctx, "wrong"), apperrors.ErrInvalidPassword)
	assert.ErrorIs(t, session.Login(ctx, "wrong"), apperrors.ErrInvalidPassword)

	// then attempts are refused without checking the password
	err := session.Login(ctx, "admin123")
	assert.ErrorIs(t, err, apperrors.ErrLoginThrottled)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	assert.False(t, session.Authenticated())
	auth.AssertNumberOfCalls(t, "Login", 2)

	clock = clock.Add(time.Minute)
	require.NoError(t, session.Login(ctx, "admin123"))
	assert.True(t, session.Authenticated())
}

func TestSessionSuccessDoesNotConsumeAttempts(t *testing.T) {
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "admin123").Return(nil)
	clock := fixedNow
	session := newTestSession(auth, &clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, session.Login(context.Background(), "admin123"))
	}
	auth.AssertNumberOfCalls(t, "Login", 5)
}

func TestSessionStorageErrorsAreNotThrottled(t *testing.T) {
	auth := new(mockAuthenticator)
	missing := apperrors.Storage(apperrors.CodeCredentialMissing, "credential file missing", os.ErrNotExist)
	auth.On("Login", mock.Anything, "admin123").Return(missing)
	clock := fixedNow
	session := newTestSession(auth, &clock)

	for i := 0; i < 4; i++ {
		err := session.Login(context.Background(), "admin123")
		assert.ErrorIs(t, err, apperrors.ErrStorage)
	}
	auth.AssertNumberOfCalls(t, "Login", 4)
}
