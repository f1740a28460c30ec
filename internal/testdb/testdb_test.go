package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseURLPrefersTestVariable(t *testing.T) {
	t.Setenv(EnvTestDatabaseURL, "postgres://test")
	t.Setenv(EnvDatabaseURL, "postgres://app")
	assert.Equal(t, "postgres://test", DatabaseURL())

	t.Setenv(EnvTestDatabaseURL, "")
	assert.Equal(t, "postgres://app", DatabaseURL())

	t.Setenv(EnvDatabaseURL, "")
	assert.Empty(t, DatabaseURL())
}

func TestIsCI(t *testing.T) {
	for _, name := range ciVars {
		t.Setenv(name, "")
	}
	assert.False(t, IsCI())

	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, IsCI())
}
