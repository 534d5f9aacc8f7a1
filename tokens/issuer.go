// tokens/issuer.go
package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload carried by access tokens.
type Claims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Pair is the credential pair handed to a client. Refresh is empty when a
// rotation-off refresh leaves the old token live.
type Pair struct {
	Access  string
	Refresh string
}

// Issuer mints and verifies the server's tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool
	store      RefreshTokenStore
	now        func() time.Time
}

// NewIssuer builds an Issuer signing with secret. accessTTL and refreshTTL
// bound the two token lifetimes; rotate controls whether a refresh consumes
// the presented token and returns a new one.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, rotate bool, store RefreshTokenStore) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		rotate:     rotate,
		store:      store,
		now:        time.Now,
	}
}

// Issue returns a fresh access/refresh pair for userID, storing the refresh
// token so it can later be redeemed or revoked.
func (i *Issuer) Issue(ctx context.Context, userID uuid.UUID) (Pair, error) {
	access, err := i.signAccess(userID)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := i.mintRefresh(userID)
	if err != nil {
		return Pair{}, err
	}
	if err := i.store.Create(ctx, refresh); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: refresh.Token}, nil
}

// Refresh redeems refreshToken for a new access token. The presented token
// must exist and be unexpired; expired rows are dropped on sight. With
// rotation on the old token is consumed and a new refresh token is returned in
// the pair; with rotation off the pair's Refresh is empty and the old token
// stays live.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (Pair, error) {
	if refreshToken == "" {
		return Pair{}, ErrRefreshInvalid
	}

	stored, err := i.store.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return Pair{}, ErrRefreshInvalid
		}
		return Pair{}, fmt.Errorf("look up refresh token: %w", err)
	}
	if i.now().After(stored.ExpiresAt) {
		_ = i.store.Delete(ctx, refreshToken)
		return Pair{}, ErrRefreshInvalid
	}

	access, err := i.signAccess(stored.UserID)
	if err != nil {
		return Pair{}, err
	}

	if !i.rotate {
		return Pair{Access: access}, nil
	}

	next, err := i.mintRefresh(stored.UserID)
	if err != nil {
		return Pair{}, err
	}
	if err := i.store.Replace(ctx, refreshToken, next); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			// Consumed by a concurrent rotation between Find and Replace.
			return Pair{}, ErrRefreshInvalid
		}
		return Pair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return Pair{Access: access, Refresh: next.Token}, nil
}

// Verify parses and validates an access token, returning its claims. The
// signing algorithm is pinned to HS256 and the token_type claim must be
// "access"; anything less is ErrAccessInvalid.
func (i *Issuer) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrAccessInvalid, err)
	}
	if !parsed.Valid || claims.TokenType != "access" {
		return Claims{}, ErrAccessInvalid
	}
	return claims, nil
}

// Revoke deletes refreshToken from the store. Unknown tokens are a no-op, so
// logout stays idempotent.
func (i *Issuer) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return i.store.Delete(ctx, refreshToken)
}

// PurgeExpired drops refresh tokens past their expiry.
func (i *Issuer) PurgeExpired(ctx context.Context) (int64, error) {
	return i.store.DeleteExpired(ctx, i.now())
}

func (i *Issuer) signAccess(userID uuid.UUID) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    userID.String(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) mintRefresh(userID uuid.UUID) (RefreshToken, error) {
	value, err := randomToken()
	if err != nil {
		return RefreshToken{}, err
	}
	now := i.now()
	return RefreshToken{
		ID:        uuid.New(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: now.Add(i.refreshTTL),
		CreatedAt: now,
	}, nil
}

// randomToken returns 32 bytes of crypto/rand entropy as hex.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
