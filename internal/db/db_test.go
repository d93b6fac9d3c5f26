package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Init(filepath.Join(t.TempDir(), "data", "authui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestInit_RunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authui.db")

	first, err := Init(path)
	require.NoError(t, err)
	version, err := first.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)
	require.NoError(t, first.Close())

	second, err := Init(path)
	require.NoError(t, err)
	defer second.Close()
	version, err = second.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)
	assert.Equal(t, path, second.GetDBPath())
}

func TestRegistrationIntents(t *testing.T) {
	database := newTestDB(t)

	intent := NewRegistrationIntent("  Ada@Example.com ", " Ada ", "https://id.example.com/sign-in?first_screen=register")
	require.NoError(t, database.CreateRegistrationIntent(intent))

	got, err := database.GetRegistrationIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, intent.RedirectURL, got.RedirectURL)
	assert.WithinDuration(t, intent.CreatedAt, got.CreatedAt, time.Second)

	_, err = database.GetRegistrationIntent("missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	count, err := database.CountRegistrationIntents()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListRegistrationIntents(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		intent := NewRegistrationIntent(email, "", "https://id")
		intent.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, database.CreateRegistrationIntent(intent))
	}

	intents, err := database.ListRegistrationIntents(2)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, "c@x.io", intents[0].Email)
	assert.Equal(t, "b@x.io", intents[1].Email)
}

func TestPruneRegistrationIntents(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	old := NewRegistrationIntent("old@x.io", "", "https://id")
	old.CreatedAt = now.Add(-48 * time.Hour)
	fresh := NewRegistrationIntent("fresh@x.io", "", "https://id")
	fresh.CreatedAt = now

	require.NoError(t, database.CreateRegistrationIntent(old))
	require.NoError(t, database.CreateRegistrationIntent(fresh))

	removed, err := database.PruneRegistrationIntents(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = database.GetRegistrationIntent(old.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = database.GetRegistrationIntent(fresh.ID)
	assert.NoError(t, err)
}
