package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users.sql", "00002_recordings.sql"}, names)

	for _, name := range names {
		data, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"), name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}
}
