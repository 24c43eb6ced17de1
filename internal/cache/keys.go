package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// RateLimitKey returns the counter key for one token in the given window.
func RateLimitKey(tokenID uuid.UUID, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", tokenID, window)
}
