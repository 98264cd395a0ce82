package services

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/formloop/formloop/internal/models"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// TokenLength is the fixed length of generated access tokens
const TokenLength = 12

// maxTokenAttempts bounds how many candidates the uniqueness loop will try
// before giving up on a single email.
const maxTokenAttempts = 10

// GenerateToken produces one random candidate token. Each character is drawn
// independently and uniformly from the 62-symbol alphanumeric alphabet;
// uniqueness against existing tokens is the caller's responsibility.
func GenerateToken() (string, error) {
	token := make([]byte, TokenLength)

	// Rejection sampling keeps the distribution uniform: 248 is the largest
	// multiple of len(tokenAlphabet) that fits in a byte.
	const limit = 248

	buf := make([]byte, TokenLength)
	filled := 0
	for filled < TokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			token[filled] = tokenAlphabet[int(b)%len(tokenAlphabet)]
			filled++
			if filled == TokenLength {
				break
			}
		}
	}

	return string(token), nil
}

// uniqueToken runs a bounded retry loop: generate a candidate, probe the
// store for a collision, regenerate on a hit. Exhausting the attempt budget
// fails that one email's processing with ErrTokenGenerationExhausted; the
// caller continues with the rest of its batch.
func uniqueToken(
	ctx context.Context,
	maxAttempts int,
	generate func() (string, error),
	exists func(ctx context.Context, token string) (bool, error),
) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := generate()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", models.ErrTokenGenerationExhausted
}
