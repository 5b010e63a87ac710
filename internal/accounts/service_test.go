package accounts

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/campus-connect/internal/auth"
	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
	"github.com/hongminglow/campus-connect/internal/storage/storagetest"
)

type fixture struct {
	svc    *Service
	store  *storagetest.MemoryStore
	tokens *auth.TokenManager
	logs   *test.Hook
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	store := storagetest.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", "campus-connect", auth.DefaultTTL)
	return fixture{
		svc:    NewService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, logger),
		store:  store,
		tokens: tokens,
		logs:   hook,
	}
}

var annSignup = dto.SignupRequest{Name: "Ann", Email: "ann@x.edu", Password: "pw12345", Role: "student"}

func TestSignupThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signed, err := f.svc.Signup(ctx, annSignup)
	require.NoError(t, err)
	assert.Equal(t, "Ann", signed.User.Name)
	assert.Equal(t, models.RoleStudent, signed.User.Role)
	assert.NotEqual(t, "pw12345", signed.User.PasswordHash)

	logged, err := f.svc.Login(ctx, dto.LoginRequest{Email: "ann@x.edu", Password: "pw12345"})
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, logged.User.ID)

	claims, err := f.tokens.Verify(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.edu", claims.Email)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, signed.User.ID, claims.UserID)
}

func TestSignupRequiresFields(t *testing.T) {
	f := newFixture(t)
	cases := []dto.SignupRequest{
		{Email: "a@x.edu", Password: "pw"},
		{Name: "A", Password: "pw"},
		{Name: "A", Email: "a@x.edu"},
		{Name: "   ", Email: "a@x.edu", Password: "pw"},
	}
	for _, req := range cases {
		_, err := f.svc.Signup(context.Background(), req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "All fields are required", verr.Message)
	}
	assert.Zero(t, f.store.UserCount())
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, annSignup)
	require.NoError(t, err)

	_, err = f.svc.Signup(ctx, annSignup)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, f.store.UserCount())
}

func TestSignupDuplicateCaughtByConstraint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, annSignup)
	require.NoError(t, err)

	f.store.SkipLookup = true
	_, err = f.svc.Signup(ctx, annSignup)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignupDefaultsRole(t *testing.T) {
	f := newFixture(t)
	s, err := f.svc.Signup(context.Background(), dto.SignupRequest{Name: "Bo", Email: "bo@x.edu", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, s.User.Role)
}

func TestSignupKeepsUnrecognizedRoleAndWarns(t *testing.T) {
	f := newFixture(t)
	s, err := f.svc.Signup(context.Background(), dto.SignupRequest{Name: "Cy", Email: "cy@x.edu", Password: "pw", Role: "dean"})
	require.NoError(t, err)
	assert.Equal(t, models.Role("dean"), s.User.Role)
	require.NotNil(t, f.logs.LastEntry())
	assert.Equal(t, logrus.WarnLevel, f.logs.LastEntry().Level)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Signup(ctx, annSignup)
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, dto.LoginRequest{Email: "ann@x.edu", Password: "nope"})
	_, unknownEmail := f.svc.Login(ctx, dto.LoginRequest{Email: "ghost@x.edu", Password: "pw12345"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginRequiresFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), dto.LoginRequest{Email: "ann@x.edu"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email and password required", verr.Message)
}

func TestStorageFailuresAreWrapped(t *testing.T) {
	f := newFixture(t)
	f.store.Err = errors.New("connection reset")

	_, err := f.svc.Signup(context.Background(), annSignup)
	assert.ErrorIs(t, err, ErrStorage)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Email: "ann@x.edu", Password: "pw"})
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

type failingIssuer struct{}

func (failingIssuer) Issue(auth.Identity) (string, error) { return "", errors.New("no key") }

func TestSigningFailureIsInternal(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(storagetest.NewMemoryStore(), auth.NewPasswordHasher(bcrypt.MinCost), failingIssuer{}, logger)

	_, err := svc.Signup(context.Background(), annSignup)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCorruptStoredHashIsInternal(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.CreateUser(context.Background(), models.User{Name: "D", Email: "d@x.edu", PasswordHash: "garbage", Role: models.RoleStudent, CreatedAt: time.Now()})
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), dto.LoginRequest{Email: "d@x.edu", Password: "pw"})
	assert.ErrorIs(t, err, ErrInternal)
}
