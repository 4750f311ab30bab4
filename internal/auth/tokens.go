package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stationhub/stationhub/internal/shared"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = time.Hour

// Claims is the payload of a session token.
type Claims struct {
	RoleID int64  `json:"roleId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("auth: subject %q: %w", c.Subject, shared.ErrTokenInvalid)
	}
	return id, nil
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager. issuer may be empty.
func NewTokenManager(secret, issuer string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret is empty")
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs a token for the user. exp is always iat + TokenTTL.
func (m *TokenManager) Issue(userID, roleID int64, role string) (string, Claims, error) {
	now := m.now().UTC().Truncate(time.Second)
	claims := Claims{
		RoleID: roleID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates signature, algorithm and expiry. Every failure is reported
// as shared.ErrTokenInvalid.
func (m *TokenManager) Parse(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("auth: parse token: %w: %v", shared.ErrTokenInvalid, err)
	}
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("auth: token without id: %w", shared.ErrTokenInvalid)
	}
	return claims, nil
}
