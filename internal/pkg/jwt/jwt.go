package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Role is the back-office role carried in the "role" claim.
type Role string

const (
	RoleAdmin          Role = "admin"
	RolePayrollManager Role = "payroll_manager"
	RoleForeman        Role = "foreman"
)

const tokenTypeAccess = "access"

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RolePayrollManager, RoleForeman:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type Service interface {
	GenerateAccessToken(userID string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpirationTime: expiration,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID string, role Role) (token string, expiresAt int64, err error) {
	if userID == "" {
		return "", 0, fmt.Errorf("user id is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return "", 0, err
	}

	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    tokenTypeAccess,
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

// IsAccessToken reports whether the claims belong to an access token.
func IsAccessToken(claims map[string]interface{}) bool {
	tokenType, ok := claims["type"].(string)
	return ok && tokenType == tokenTypeAccess
}
