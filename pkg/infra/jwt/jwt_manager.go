package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "doctourgate"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrMissingKey   = errors.New("jwt secret key is not configured")
)

//go:generate mockery --name=Manager --dir=. --output=mocks/ --filename=jwt_manager_mock.go --case=underscore --with-expecter
type (
	Manager interface {
		CreateToken(subject string) (string, error)
		ValidateToken(tokenString string) error
		DecodeToken(tokenString string) (*Claims, error)
	}
	manager struct {
		secretKey []byte
		ttl       time.Duration
	}
)

// NewJwtManager signs admin tokens with HS256. A zero ttl issues tokens
// without an expiry.
func NewJwtManager(secretKey string, ttl time.Duration) Manager {
	return &manager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

type Claims struct {
	jwt.RegisteredClaims
}

func (m *manager) CreateToken(subject string) (string, error) {
	if len(m.secretKey) == 0 {
		return "", ErrMissingKey
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

func (m *manager) ValidateToken(tokenString string) error {
	_, err := m.DecodeToken(tokenString)
	return err
}

func (m *manager) DecodeToken(tokenString string) (*Claims, error) {
	if len(m.secretKey) == 0 {
		return nil, ErrMissingKey
	}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(issuer),
	)
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
	return claims, nil
}
