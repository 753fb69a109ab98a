package security

import (
	"Ringside/internal/api/config"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	mu         sync.RWMutex
	secret     = []byte("ringside")
	issuer     = "Ringside"
	expiration = 24 * time.Hour
)

// Init 使用配置覆盖签名密钥、签发者与有效期
func Init(cfg config.JWTConfig) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Secret != "" {
		secret = []byte(cfg.Secret)
	}
	if cfg.Issuer != "" {
		issuer = cfg.Issuer
	}
	if cfg.ExpireHours > 0 {
		expiration = time.Duration(cfg.ExpireHours) * time.Hour
	}
}

// Expiration Token 有效期, 注销黑名单按此过期
func Expiration() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return expiration
}

// GenerateToken 生成一个新的 JWT Token
func GenerateToken(userID string, roles []string) (string, error) {
	mu.RLock()
	key, iss, exp := secret, issuer, expiration
	mu.RUnlock()

	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    iss,
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	mu.RLock()
	key, iss := secret, issuer
	mu.RUnlock()

	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithIssuer(iss))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("token is invalid or expired")
	}
	return claims, nil
}

// ExtractSignature 从 Token 字符串中提取签名, 用作注销黑名单的键
func ExtractSignature(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", errors.New("malformed token")
	}
	return parts[2], nil
}
