package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/finlab/walletcore/internal/domain"
)

type JWTServiceInterface interface {
	GenerateJWT(accountID int, role domain.Role, expirationTime time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

var secretKey = []byte("walletcore-dev-secret")

// SetSecret overrides the signing secret; called once from app start with the
// configured value.
func SetSecret(secret string) {
	if secret != "" {
		secretKey = []byte(secret)
	}
}

type Claims struct {
	AccountID int         `json:"account_id"`
	Role      domain.Role `json:"role"`
	jwt.StandardClaims
}

type JWTService struct{}

// GenerateJWT exists for tests and tooling; production tokens are issued by the
// external auth service with the same claims shape.
func (s *JWTService) GenerateJWT(accountID int, role domain.Role, expirationTime time.Time) (string, error) {
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			Issuer:    "walletcore",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.AccountID == 0 || claims.Issuer != "walletcore" {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role == "" {
		claims.Role = domain.RoleUser
	}

	return claims, nil
}
