package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krishkalaria12/car-vault/config"
	"github.com/krishkalaria12/car-vault/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	cfg := &config.Config{
		JWTSecret: "test-secret",
		AppURL:    "http://localhost:3000",
	}
	return NewService(cfg, db)
}

func TestCreateAccountAndAuthenticate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret1", user.Password, "password is stored hashed")

	got, err := s.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestCreateAccountRejections(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Alice", "not-an-email", "secret1")
	assertCode(t, err, CodeInvalidEmail)

	_, err = s.CreateAccount(ctx, "Alice", "alice@example.com", "short")
	assertCode(t, err, CodeWeakPassword)

	_, err = s.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, "Alice Again", "alice@example.com", "secret2")
	assertCode(t, err, CodeEmailInUse)
}

func TestAuthenticateRejections(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
	assertCode(t, err, CodeWrongPassword)

	_, err = s.Authenticate(ctx, "nobody@example.com", "secret1")
	assertCode(t, err, CodeUserNotFound)
}

func TestAuthenticateLockoutAfterRepeatedFailures(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < maxFailedAttempts; i++ {
		_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
		assertCode(t, err, CodeWrongPassword)
	}

	// locked out even with the right password
	_, err = s.Authenticate(ctx, "alice@example.com", "secret1")
	assertCode(t, err, CodeTooManyRequests)

	// other identities are unaffected
	_, err = s.Authenticate(ctx, "bob@example.com", "whatever")
	assertCode(t, err, CodeUserNotFound)
}

func TestAuthenticateLockoutExpiresAndResets(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	now := time.Now()
	s.attempts.clock = func() time.Time { return now }

	for i := 0; i < maxFailedAttempts; i++ {
		_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
		assertCode(t, err, CodeWrongPassword)
	}
	_, err = s.Authenticate(ctx, "alice@example.com", "secret1")
	assertCode(t, err, CodeTooManyRequests)

	// the window passes
	s.attempts.clock = func() time.Time { return now.Add(lockoutWindow + time.Minute) }

	user, err := s.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user)

	// success cleared the counter: one new failure does not lock
	_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
	assertCode(t, err, CodeWrongPassword)
	_, err = s.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
}

func TestTokenRoundtrip(t *testing.T) {
	s := newTestService(t)

	user, err := s.CreateAccount(context.Background(), "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	tokenStr, err := s.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := s.TokenService().Parse(tokenStr)
	require.NoError(t, err)
	require.NotNil(t, claims.User)
	assert.Equal(t, user.ID, claims.User.ID)
	assert.Equal(t, user.Email, claims.User.Email)
}

func TestMessageMapping(t *testing.T) {
	assert.Equal(t, "Invalid email address.", Message(&Error{Code: CodeInvalidEmail}))
	assert.Equal(t, "Incorrect password. Please try again.", Message(&Error{Code: CodeWrongPassword}))
	assert.Equal(t,
		"This email is already registered. Please try logging in instead.",
		Message(&Error{Code: CodeEmailInUse}))

	// unrecognized codes and foreign errors fall through to the generic message
	generic := "An unexpected error occurred. Please try again."
	assert.Equal(t, generic, Message(&Error{Code: "auth/unheard-of"}))
	assert.Equal(t, generic, Message(errors.New("dial tcp: connection refused")))
}

func TestNotifierLatestStateWins(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()

	n.Publish(SessionEvent{UserID: "u1", SignedIn: true, At: time.Now()})
	n.Publish(SessionEvent{UserID: "u1", SignedIn: false, At: time.Now()})

	select {
	case ev := <-ch:
		assert.False(t, ev.SignedIn, "a slow subscriber sees the newest event")
	default:
		t.Fatal("expected a pending event")
	}

	select {
	case <-ch:
		t.Fatal("each change is delivered at most once")
	default:
	}
}

func TestNotifierMultipleSubscribers(t *testing.T) {
	n := NewNotifier()
	a := n.Subscribe()
	b := n.Subscribe()

	n.Publish(SessionEvent{UserID: "u1", SignedIn: true, At: time.Now()})

	assert.Equal(t, "u1", (<-a).UserID)
	assert.Equal(t, "u1", (<-b).UserID)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, code, ae.Code)
}
