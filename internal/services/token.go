package services

import (
	"context"
	"errors"
	"time"

	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("invalid or expired token")

const (
	tokenKindLogin   = "login"
	tokenKindRefresh = "refresh"
)

// storedToken is the tokens/<hash> document for both one-time magic
// login tokens and long-lived refresh tokens.
type storedToken struct {
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenService struct {
	store store.Store
}

func NewTokenService(st store.Store) *TokenService {
	return &TokenService{store: st}
}

func (s *TokenService) StoreLoginToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return s.put(ctx, tokenHash, storedToken{UserID: userID, Kind: tokenKindLogin, ExpiresAt: expiresAt})
}

// RedeemLoginToken validates and consumes a magic login token. Tokens
// are single use: redemption deletes the document even when it turns
// out to be expired.
func (s *TokenService) RedeemLoginToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	tok, err := s.get(ctx, tokenHash)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.store.Delete(ctx, store.TokenKey(tokenHash)); err != nil {
		return uuid.Nil, err
	}
	if tok.Kind != tokenKindLogin || time.Now().After(tok.ExpiresAt) {
		return uuid.Nil, ErrTokenInvalid
	}
	return tok.UserID, nil
}

func (s *TokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return s.put(ctx, tokenHash, storedToken{UserID: userID, Kind: tokenKindRefresh, ExpiresAt: expiresAt})
}

func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	tok, err := s.get(ctx, tokenHash)
	if err != nil {
		return uuid.Nil, err
	}
	if tok.Kind != tokenKindRefresh || time.Now().After(tok.ExpiresAt) {
		return uuid.Nil, ErrTokenInvalid
	}
	return tok.UserID, nil
}

func (s *TokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return s.store.Delete(ctx, store.TokenKey(tokenHash))
}

// RevokeAllUserTokens walks the token key space and deletes every token
// belonging to the user. The token population is small (one or two per
// active user), so the scan is acceptable.
func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	return s.sweep(ctx, func(tok storedToken) bool {
		return tok.UserID == userID
	})
}

// CleanupExpired removes tokens past their expiry. Run periodically
// from main.
func (s *TokenService) CleanupExpired(ctx context.Context) error {
	now := time.Now()
	return s.sweep(ctx, func(tok storedToken) bool {
		return now.After(tok.ExpiresAt)
	})
}

func (s *TokenService) sweep(ctx context.Context, drop func(storedToken) bool) error {
	keys, err := s.store.ListKeys(ctx, store.TokenPrefixAll())
	if err != nil {
		return err
	}
	for _, key := range keys {
		var tok storedToken
		if err := store.GetJSON(ctx, s.store, key, &tok); err != nil {
			continue
		}
		if drop(tok) {
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *TokenService) get(ctx context.Context, tokenHash string) (storedToken, error) {
	var tok storedToken
	err := store.GetJSON(ctx, s.store, store.TokenKey(tokenHash), &tok)
	if errors.Is(err, store.ErrNotFound) {
		return tok, ErrTokenInvalid
	}
	return tok, err
}

func (s *TokenService) put(ctx context.Context, tokenHash string, tok storedToken) error {
	return store.PutJSON(ctx, s.store, store.TokenKey(tokenHash), tok)
}
