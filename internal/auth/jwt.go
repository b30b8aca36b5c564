package auth

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret []byte
	secretMu  sync.RWMutex
)

// SetSecret define a chave HS256 usada para assinar e validar tokens.
// Chamado pelo main a partir da configuração.
func SetSecret(secret []byte) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = secret
}

func secret() ([]byte, error) {
	secretMu.RLock()
	s := jwtSecret
	secretMu.RUnlock()
	if len(s) > 0 {
		return s, nil
	}
	if env := os.Getenv("JWT_SECRET"); env != "" {
		SetSecret([]byte(env))
		return []byte(env), nil
	}
	return nil, fmt.Errorf("JWT_SECRET não definida")
}

// Claims carrega a identidade autenticada e o papel de negócio
// (customer | supplier) extraído na emissão do token.
type Claims struct {
	UserID       uint   `json:"user_id"`
	BusinessType string `json:"business_type"`
	jwt.RegisteredClaims
}

// GenerateToken gera um JWT com validade de 24h.
func GenerateToken(userID uint, businessType string) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	claims := &Claims{
		UserID:       userID,
		BusinessType: businessType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseAndValidate valida o token e retorna as claims.
func ParseAndValidate(tokenStr string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("não foi possível extrair claims")
	}
	return claims, nil
}
