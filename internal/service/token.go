package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const shareScope = "proposal_review"

// TokenManager проверяет access-токены исполнителей и выпускает ссылки для
// просмотра предложения клиентом.
type TokenManager struct {
	accessSecret []byte
	shareSecret  []byte
	accessTTL    time.Duration
	shareBaseURL string
}

func NewTokenManager(accessSecret, shareSecret string, accessTTL time.Duration, shareBaseURL string) *TokenManager {
	return &TokenManager{
		accessSecret: []byte(accessSecret),
		shareSecret:  []byte(shareSecret),
		accessTTL:    accessTTL,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
	}
}

// IssueAccess выпускает access токен. Сервис аутентификации внешний, здесь
// токены нужны для локальной разработки и тестов.
func (m *TokenManager) IssueAccess(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// ParseAccess извлекает userID и роль из access токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, "", jwt.ErrTokenInvalidClaims
	}

	role, _ := claims["role"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", err
	}

	return userID, role, nil
}

// ShareToken выпускает токен просмотра без временных клеймов: для одного и того же
// предложения всегда получается одна и та же строка.
func (m *TokenManager) ShareToken(proposalID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":   proposalID.String(),
		"scope": shareScope,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.shareSecret)
}

// ShareLink возвращает адрес страницы, которую клиент открывает для просмотра.
func (m *TokenManager) ShareLink(proposalID uuid.UUID) (string, error) {
	token, err := m.ShareToken(proposalID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/review/%s", m.shareBaseURL, token), nil
}

// ParseShareToken проверяет подпись и назначение токена и возвращает ID предложения.
func (m *TokenManager) ParseShareToken(token string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.shareSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	if scope, _ := claims["scope"].(string); scope != shareScope {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return uuid.Parse(sub)
}
