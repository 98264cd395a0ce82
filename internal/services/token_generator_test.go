package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/formloop/formloop/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateToken_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		assert.NoError(t, err)
		assert.Len(t, token, TokenLength)

		for _, c := range token {
			assert.True(t, strings.ContainsRune(tokenAlphabet, c),
				"token contains character outside alphabet: %q", c)
		}
	}
}

func TestGenerateToken_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GenerateToken()
		assert.NoError(t, err)
		assert.False(t, seen[token], "generator produced duplicate token %q", token)
		seen[token] = true
	}
}

func TestUniqueToken_FirstCandidateFree(t *testing.T) {
	probes := 0
	token, err := uniqueToken(context.Background(), maxTokenAttempts,
		GenerateToken,
		func(ctx context.Context, token string) (bool, error) {
			probes++
			return false, nil
		},
	)

	assert.NoError(t, err)
	assert.Len(t, token, TokenLength)
	assert.Equal(t, 1, probes)
}

func TestUniqueToken_RetriesOnCollision(t *testing.T) {
	collisions := 3
	probes := 0
	token, err := uniqueToken(context.Background(), maxTokenAttempts,
		GenerateToken,
		func(ctx context.Context, token string) (bool, error) {
			probes++
			return probes <= collisions, nil
		},
	)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, collisions+1, probes)
}

func TestUniqueToken_Exhausted(t *testing.T) {
	probes := 0
	token, err := uniqueToken(context.Background(), maxTokenAttempts,
		GenerateToken,
		func(ctx context.Context, token string) (bool, error) {
			probes++
			return true, nil
		},
	)

	assert.ErrorIs(t, err, models.ErrTokenGenerationExhausted)
	assert.Empty(t, token)
	assert.Equal(t, maxTokenAttempts, probes)
}

func TestUniqueToken_ExistsCheckError(t *testing.T) {
	storeErr := errors.New("store unavailable")
	_, err := uniqueToken(context.Background(), maxTokenAttempts,
		GenerateToken,
		func(ctx context.Context, token string) (bool, error) {
			return false, storeErr
		},
	)

	assert.ErrorIs(t, err, storeErr)
}
