package service

import (
	"path/filepath"
	"testing"
	"time"

	"bitwise74/account-api/db"
	"bitwise74/account-api/internal/model"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "P4ssword"

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendAccountActivation(to, token string) error {
	return m.Called(to, token).Error(0)
}

func (m *mockMailer) SendPasswordReset(to, token string) error {
	return m.Called(to, token).Error(0)
}

// Cheap parameters, the real ones make every test take seconds
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	d, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return d
}

type testEnv struct {
	db     *gorm.DB
	users  *UserService
	tokens *TokenService
	mailer *mockMailer
	images *LocalImageStore
	clock  *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	d := newTestDB(t)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenService(d, DefaultTokenRetention)
	tokens.Now = func() time.Time { return clock }

	images, err := NewLocalImageStore(t.TempDir(), "profile")
	require.NoError(t, err)

	mailer := &mockMailer{}
	t.Cleanup(func() { mailer.AssertExpectations(t) })

	return &testEnv{
		db:     d,
		tokens: tokens,
		mailer: mailer,
		images: images,
		clock:  &clock,
		users: &UserService{
			DB:     d,
			Argon:  testArgon(),
			Tokens: tokens,
			Mailer: mailer,
			Images: images,
		},
	}
}

func (e *testEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func (e *testEnv) createUser(t *testing.T, username, email string, inactive bool) model.User {
	t.Helper()

	hash, err := e.users.Argon.GenerateFromPassword(testPassword)
	require.NoError(t, err)

	u := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Inactive:     inactive,
	}
	require.NoError(t, e.db.Create(&u).Error)

	return u
}

func requireHTTPErr(t *testing.T, err error, status int) *httperr.Error {
	t.Helper()

	e, ok := httperr.As(err)
	require.True(t, ok, "expected *httperr.Error, got %v", err)
	assert.Equal(t, status, e.Status)

	return e
}
