package auth

import (
	"testing"
	"time"

	"github.com/finlab/walletcore/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := &JWTService{}

	token, err := svc.GenerateJWT(42, domain.RoleAdmin, time.Now().Add(time.Hour))
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, claims.AccountID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := &JWTService{}

	token, err := svc.GenerateJWT(42, domain.RoleUser, time.Now().Add(-time.Hour))
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := &JWTService{}

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_MissingRoleDefaultsToUser(t *testing.T) {
	svc := &JWTService{}

	token, err := svc.GenerateJWT(7, "", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
}
