package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

var ErrEmptySecret = errors.New("jwt secret key is empty")

type JWTService struct {
	secretKey     []byte
	tokenLifespan time.Duration
	issuer        string
	now           func() time.Time
}

// Claims is the payload of an access token. Username travels as the
// registered "sub" claim.
type Claims struct {
	UserID *int64 `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Username() string {
	return c.Subject
}

func (c *Claims) AccountID() int64 {
	if c.UserID == nil {
		return 0
	}
	return *c.UserID
}

func NewJWTService(secretKey string, tokenLifespan time.Duration, issuer string) (*JWTService, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	return &JWTService{
		secretKey:     []byte(secretKey),
		tokenLifespan: tokenLifespan,
		issuer:        issuer,
		now:           time.Now,
	}, nil
}

func (s *JWTService) TokenLifespan() time.Duration {
	return s.tokenLifespan
}

// GenerateToken issues a token with the service's default lifespan.
func (s *JWTService) GenerateToken(username string, userID int64, role string) (string, error) {
	return s.IssueToken(username, userID, role, s.tokenLifespan)
}

func (s *JWTService) IssueToken(username string, userID int64, role string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: &userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   username,
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}

	return signedString, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature algorithm: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("error when parsing token claims", nil)
	}
	if claims.Subject == "" || claims.UserID == nil {
		return nil, apperror.NewUnauthorized("token is missing required claims", nil)
	}

	return claims, nil
}
