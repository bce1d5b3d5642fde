package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenTypeAccess is the only token type the API accepts.
const TokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("access token expiration must be positive, got %s", expiration)
	}

	return &JWTService{
		accessTokenExpirationTime: expiration,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}, nil
}

// GenerateAccessToken signs the tenant claims the API reads back with
// user.ClaimsFromContext.
func (j *JWTService) GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error) {
	if claims.CompanyID == "" {
		return "", 0, user.ErrCompanyIDRequired
	}
	if !claims.Role.IsValid() {
		return "", 0, user.ErrUnknownRole
	}
	if claims.IsGuard() && claims.GuardID == nil {
		return "", 0, user.ErrGuardIDRequired
	}

	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	payload := map[string]interface{}{
		"user_id":    claims.UserID,
		"company_id": claims.CompanyID,
		"role":       string(claims.Role),
		"type":       TokenTypeAccess,
		"exp":        expiresAt,
	}
	if claims.GuardID != nil {
		payload["guard_id"] = *claims.GuardID
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	return tokenString, expiresAt, err
}
