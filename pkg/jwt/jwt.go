package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Service interface {
	GenerateToken(subject, club string, role Role, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*PortalClaims, error)
}

type service struct {
	secret     []byte
	issuer     string
	defaultTTL time.Duration
}

// NewService returns a HS256 token service. A zero ttl passed to GenerateToken uses defaultTTL.
func NewService(secret, issuer string, defaultTTL time.Duration) Service {
	return &service{
		secret:     []byte(secret),
		issuer:     issuer,
		defaultTTL: defaultTTL,
	}
}

func (s *service) GenerateToken(subject, club string, role Role, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	claims := &PortalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Club: club,
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *service) ValidateToken(tokenString string) (*PortalClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &PortalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*PortalClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
