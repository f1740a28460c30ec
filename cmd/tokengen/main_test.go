package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tianzhicdev/dogetionary-sub002/internal/config"
	"github.com/tianzhicdev/dogetionary-sub002/internal/service/auth"
)

const testSecret = "tokengen-secret-that-is-at-least-32-chars"

func TestRunIssuesValidToken(t *testing.T) {
	t.Setenv("DOGETIONARY_AUTH_JWT_SECRET", testSecret)
	userID := uuid.New()

	var out bytes.Buffer
	require.NoError(t, run([]string{"-user", userID.String()}, &out))

	var token string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "token:") {
			token = strings.TrimSpace(strings.TrimPrefix(line, "token:"))
		}
	}
	require.NotEmpty(t, token)

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestRunRejectsBadUser(t *testing.T) {
	t.Setenv("DOGETIONARY_AUTH_JWT_SECRET", testSecret)
	assert.Error(t, run([]string{"-user", "nope"}, &bytes.Buffer{}))
}

func TestRunRequiresSecret(t *testing.T) {
	t.Setenv("DOGETIONARY_AUTH_JWT_SECRET", "")
	assert.Error(t, run(nil, &bytes.Buffer{}))
}
