package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/whopranjalshah/me-api-playground/internal/domain/user"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func newLoginUseCase(t *testing.T, repo user.Repository) (*LoginUseCase, *auth.JWTService) {
	t.Helper()
	jwtSvc, err := auth.NewJWTService("login-test-secret", 15*time.Minute, "test")
	require.NoError(t, err)
	return NewLoginUseCase(NewUserCredentialPolicy(repo), jwtSvc, logger.NewNopLogger()), jwtSvc
}

func TestLogin_Success(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "admin").
		Return(&user.User{ID: 3, Username: "admin", PasswordHash: hash, Role: user.RoleAdmin}, nil)

	uc, jwtSvc := newLoginUseCase(t, repo)
	out, err := uc.Execute(context.Background(), LoginInput{Username: " admin ", Password: "correct horse"})
	require.NoError(t, err)

	assert.Equal(t, TokenTypeBearer, out.TokenType)
	assert.Equal(t, int64(900), out.ExpiresIn)

	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username())
	assert.Equal(t, int64(3), claims.AccountID())
	assert.Equal(t, user.RoleAdmin, claims.Role)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "admin").
		Return(&user.User{ID: 3, Username: "admin", PasswordHash: hash}, nil)

	uc, _ := newLoginUseCase(t, repo)
	_, err = uc.Execute(context.Background(), LoginInput{Username: "admin", Password: "battery staple"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, apperror.NewNotFound("user", "ghost"))

	uc, _ := newLoginUseCase(t, repo)
	_, err := uc.Execute(context.Background(), LoginInput{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_StoreFailure(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByUsername", mock.Anything, "admin").Return(nil, apperror.NewInternal("db down", errors.New("dial")))

	uc, _ := newLoginUseCase(t, repo)
	_, err := uc.Execute(context.Background(), LoginInput{Username: "admin", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestLogin_MissingFields(t *testing.T) {
	repo := new(MockUserRepository)
	uc, _ := newLoginUseCase(t, repo)

	_, err := uc.Execute(context.Background(), LoginInput{Username: "", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

type staticPolicy struct{ identity *Identity }

func (p staticPolicy) Verify(context.Context, string, string) (*Identity, error) {
	return p.identity, nil
}

func TestLogin_PluggablePolicy(t *testing.T) {
	jwtSvc, err := auth.NewJWTService("login-test-secret", time.Minute, "test")
	require.NoError(t, err)
	uc := NewLoginUseCase(staticPolicy{&Identity{UserID: 9, Username: "svc", Role: "bot"}}, jwtSvc, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), LoginInput{Username: "anything", Password: "anything"})
	require.NoError(t, err)

	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "svc", claims.Username())
}
