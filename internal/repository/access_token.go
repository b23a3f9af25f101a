package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"collectra/internal/config/connections/postgres"
)

type AccessToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	Abilities string
	ExpiresAt *time.Time
}

type AccessTokenRepository struct {
	pg *postgres.Postgres
}

func NewAccessTokenRepository(pg *postgres.Postgres) *AccessTokenRepository {
	return &AccessTokenRepository{pg: pg}
}

// FindByPlainToken resolves a presented bearer token. Tokens may carry an
// "id|secret" prefix; only the sha256 of the secret is stored.
func (r *AccessTokenRepository) FindByPlainToken(ctx context.Context, plainToken string) (*AccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	var (
		tokenID   *int64
		tokenPart string
	)

	if idx := strings.Index(plainToken, "|"); idx > 0 {
		idStr := plainToken[:idx]
		tokenPart = plainToken[idx+1:]
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			tokenID = &id
		} else {
			log.Printf("[TOKEN] failed to parse id %q: %v", idStr, err)
		}
	} else {
		tokenPart = plainToken
	}

	sum := sha256.Sum256([]byte(tokenPart))
	hashStr := fmt.Sprintf("%x", sum)

	var tok AccessToken

	if tokenID != nil {
		query := `
            SELECT id, token_hash, user_id, abilities, expires_at
            FROM access_tokens
            WHERE id = $1
              AND (expires_at IS NULL OR expires_at > $2)
        `

		err := r.pg.Pool.QueryRow(ctx, query, *tokenID, time.Now()).Scan(
			&tok.ID,
			&tok.TokenHash,
			&tok.UserID,
			&tok.Abilities,
			&tok.ExpiresAt,
		)
		if err != nil {
			log.Printf("[TOKEN] query by id error: %v", err)
		} else if tok.TokenHash == hashStr {
			return &tok, nil
		}
	}

	// fallback by hash value
	query := `
        SELECT id, token_hash, user_id, abilities, expires_at
        FROM access_tokens
        WHERE token_hash = $1
          AND (expires_at IS NULL OR expires_at > $2)
        ORDER BY created_at DESC
        LIMIT 1
    `

	err := r.pg.Pool.QueryRow(ctx, query, hashStr, time.Now()).Scan(
		&tok.ID,
		&tok.TokenHash,
		&tok.UserID,
		&tok.Abilities,
		&tok.ExpiresAt,
	)
	if err != nil {
		return nil, errors.New("token not found")
	}

	return &tok, nil
}
