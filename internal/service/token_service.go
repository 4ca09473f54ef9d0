package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
)

// TokenConfig configures bearer token signing.
type TokenConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// TokenCodec signs and verifies HS256 bearer tokens carrying a subject user
// id and the user's center id. It holds no state beyond its key.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec constructs a TokenCodec.
func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &TokenCodec{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiration,
		issuer: cfg.Issuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Expiry returns the lifetime of issued tokens.
func (c *TokenCodec) Expiry() time.Duration {
	return c.expiry
}

// Sign issues a token for the given user and center.
func (c *TokenCodec) Sign(userID, centerID string) (string, time.Time, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.expiry)
	claims := &models.TokenClaims{
		CenterID: centerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of raw and returns what it asserts.
// A bad signature or an expired token yields ErrInvalidToken; a token that
// verifies but names no subject yields ErrInvalidTokenPayload.
func (c *TokenCodec) Verify(raw string) (*models.TokenIdentity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidTokenPayload, "")
	}

	return &models.TokenIdentity{SubjectUserID: claims.Subject, CenterID: claims.CenterID}, nil
}
