// Package token выпускает и проверяет сессионные токены (JWT, HS256).
// Секрет подписи живёт только здесь; хендлеры и middleware получают Service
// через конструктор, а не через глобальное состояние.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/legacyvault/internal/logger"
)

var (
	// ErrEmptySecret — секрет подписи не задан. Фатально при старте процесса,
	// а не при первом логине.
	ErrEmptySecret = errors.New("token: signing secret is empty")
	// ErrInvalidToken — любая ошибка проверки: битый токен, неверная подпись,
	// чужой алгоритм, истёк или ещё не действует. Наружу причина не различается
	// (меньше информации для перебора), конкретика — только в логах.
	ErrInvalidToken = errors.New("token: invalid token")
)

// Claims — полезная нагрузка сессионного токена.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// Service подписывает и проверяет токены одним симметричным секретом.
// Секрет читается один раз при создании и дальше не меняется, поэтому
// Service безопасен для конкурентного использования без блокировок.
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// New создаёт сервис. Пустой секрет — ErrEmptySecret (конфигурация, не runtime).
func New(secret []byte, lifetime time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Service{secret: secret, lifetime: lifetime}, nil
}

// Lifetime возвращает срок жизни токена (он же MaxAge cookie).
func (s *Service) Lifetime() time.Duration { return s.lifetime }

// Sign выпускает токен для пользователя: iat = сейчас, nbf = iat, exp = iat + lifetime.
func (s *Service) Sign(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		UserID: userID,
		Email:  email,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия. Разрешён только HS256 — токены с
// подменённым алгоритмом (включая "none") отклоняются до проверки подписи.
// Граница истечения: токен невалиден начиная с момента exp включительно.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		// Истёкшие и битые токены приходят с каждым запросом старой сессии,
		// причина пишется на уровне debug.
		logger.Debugf("token verify: %v", err)
		return nil, ErrInvalidToken
	}
	if !tok.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
