// Package token validates API credentials presented to the gateway.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-hub/gateway/internal/store"
	"github.com/portfolio-hub/gateway/pkg/models"
)

// Runner spawns best-effort work outside the request path.
type Runner interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// Validator resolves raw secrets to usable tokens.
type Validator struct {
	store  store.TokenStore
	runner Runner
	now    func() time.Time
}

type Option func(*Validator)

// WithClock overrides the time source used for expiry checks and last-used stamps.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func NewValidator(s store.TokenStore, r Runner, opts ...Option) *Validator {
	v := &Validator{store: s, runner: r, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// HashSecret returns the hex SHA-256 digest stored for a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Validate returns the token matching raw, or nil when no active, unexpired
// token matches. An error means the lookup itself failed.
func (v *Validator) Validate(ctx context.Context, raw string) (*models.APIToken, error) {
	if raw == "" {
		return nil, nil
	}

	t, err := v.store.GetActiveTokenByHash(ctx, HashSecret(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}

	now := v.now()
	if !t.UsableAt(now) {
		return nil, nil
	}

	id := t.ID
	v.runner.Go(ctx, "token_last_used", func(ctx context.Context) error {
		if err := v.store.UpdateTokenLastUsed(ctx, id, now.UTC()); err != nil {
			return fmt.Errorf("token %s: %w", id, err)
		}
		return nil
	})

	return t, nil
}
