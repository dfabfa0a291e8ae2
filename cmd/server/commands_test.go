package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/eduinsight-server/internal/app"
	"github.com/godilite/eduinsight-server/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", "does-not-exist.env"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "eduinsight")

	out, err := execute(t, "token", "--user-id", "7", "--role", "student", "--name", "Ada")
	require.NoError(t, err)

	tokens, err := auth.NewTokens("cli-secret", "eduinsight")
	require.NoError(t, err)
	claims, err := tokens.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, auth.RoleStudent, claims.Role)
	assert.Equal(t, "Ada", claims.FullName)
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := execute(t, "token", "--role", "dean")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestMissingSecretRefusesToStart(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "migrate")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestSeedCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", ":memory:")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("CACHE_ENABLED", "false")

	out, err := execute(t, "seed", "--students", "5", "--submissions", "12", "--seed", "3")
	require.NoError(t, err)

	var report app.SeedReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &report))
	assert.Equal(t, 12, report.Submissions)
	assert.Positive(t, report.Courses)
}
