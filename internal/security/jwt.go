package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// JWTManager выпускает и проверяет токены операторского интерфейса.
// Подпись HMAC: сервис один, распределять ключи не нужно. Успешно
// проверенные claims кэшируются до истечения токена, чтобы не гонять
// криптографию на каждый запрос UI.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	claimCache *gocache.Cache
}

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

func NewJWTManager(secret string, expiration time.Duration, issuer string) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if expiration <= 0 {
		expiration = 12 * time.Hour
	}

	return &JWTManager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
		claimCache: gocache.New(5*time.Minute, 10*time.Minute),
	}, nil
}

// Generate выпускает токен для оператора
func (m *JWTManager) Generate(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   username,
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate проверяет токен и возвращает claims
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if cached, found := m.claimCache.Get(tokenString); found {
		return cached.(*Claims), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			m.claimCache.Set(tokenString, claims, ttl)
		}
	}

	return claims, nil
}
