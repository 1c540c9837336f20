package jwt

import (
	"errors"
	"time"

	"stockdesk/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const issuer = "stockdesk"

// Claims carries the session principal inside the signed session token
type Claims struct {
	PrincipalID string `json:"pid"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session into an HS256 token valid for ttl
func GenerateSessionToken(session *domain.Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		PrincipalID: session.PrincipalID,
		DisplayName: session.DisplayName,
		Role:        session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   session.PrincipalID,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken validates a session token and returns the session it carries
func ValidateSessionToken(tokenString, secret string) (*domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PrincipalID == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}

	return &domain.Session{
		PrincipalID: claims.PrincipalID,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
