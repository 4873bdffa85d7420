package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repo"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

// TokenService signs and validates the access/refresh token pair. The
// subject claim is the user's email, which the core receives as a plain
// parameter downstream.
type TokenService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

func (t *TokenService) SignAccessToken(email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.JWTSecret)
}

func (t *TokenService) SignRefreshToken(ctx context.Context, email, role string) (string, error) {
	exp := time.Now().Add(RefreshTTL)
	claims := jwt.MapClaims{
		"sub":  email,
		"role": role,
		"exp":  exp.Unix(),
		"typ":  "refresh",
		"jti":  uuid.NewString(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.RefreshSecret)
	if err != nil {
		return "", err
	}

	stored := models.RefreshToken{
		Token:     raw,
		UserEmail: email,
		ExpiresAt: exp,
	}
	if err := t.Repo.SaveRefreshToken(ctx, &stored); err != nil {
		return "", err
	}
	return raw, nil
}

func (t *TokenService) ValidateAccess(raw string) (email, role string, err error) {
	claims, err := parseHMAC(raw, t.JWTSecret)
	if err != nil {
		return "", "", err
	}
	return claimStrings(claims)
}

func (t *TokenService) ValidateRefresh(ctx context.Context, raw string) (email, role string, err error) {
	claims, err := parseHMAC(raw, t.RefreshSecret)
	if err != nil {
		return "", "", err
	}
	if typ, ok := claims["typ"].(string); !ok || typ != "refresh" {
		return "", "", errors.New("not a refresh token")
	}

	stored, err := t.Repo.FindRefreshToken(ctx, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", errors.New("refresh token not found")
		}
		return "", "", err
	}
	if stored.Revoked {
		return "", "", errors.New("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", "", errors.New("refresh token expired")
	}

	return claimStrings(claims)
}

func parseHMAC(raw string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	return claims, nil
}

func claimStrings(claims jwt.MapClaims) (email, role string, err error) {
	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", "", errors.New("invalid subject claim")
	}
	role, ok = claims["role"].(string)
	if !ok {
		return "", "", errors.New("invalid role claim")
	}
	return email, role, nil
}
