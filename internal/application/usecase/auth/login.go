package auth

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/domain/user"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const TokenTypeBearer = "bearer"

// Identity is what a successful credential check vouches for.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// CredentialPolicy decides whether a username/password pair may log in.
type CredentialPolicy interface {
	Verify(ctx context.Context, username, password string) (*Identity, error)
}

// UserCredentialPolicy checks passwords against bcrypt hashes in the users table.
type UserCredentialPolicy struct {
	userRepo user.Repository
}

func NewUserCredentialPolicy(repo user.Repository) *UserCredentialPolicy {
	return &UserCredentialPolicy{userRepo: repo}
}

func (p *UserCredentialPolicy) Verify(ctx context.Context, username, password string) (*Identity, error) {
	u, err := p.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("incorrect username or password", nil)
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return nil, apperror.NewUnauthorized("incorrect username or password", nil)
	}
	return &Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

type LoginUseCase struct {
	policy CredentialPolicy
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLoginUseCase(policy CredentialPolicy, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		policy: policy,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		err := apperror.NewInvalidInput("username and password are required", nil)
		span.RecordError(err)
		return nil, err
	}

	identity, err := uc.policy.Verify(ctx, username, input.Password)
	if err != nil {
		uc.logger.Warn("Login rejected", zap.String("username", username))
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(identity.Username, identity.UserID, identity.Role)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.Int64("user_id", identity.UserID))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user_id", identity.UserID))

	return &LoginOutput{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(uc.jwtSvc.TokenLifespan().Seconds()),
	}, nil
}
