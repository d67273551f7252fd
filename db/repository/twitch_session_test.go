package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a migrated database named by DB_CONN.
func testRepository(t *testing.T) *DBRepository {
	dbConn := os.Getenv("DB_CONN")
	if dbConn == "" {
		t.Skip("DB_CONN is not set")
	}

	dbr, err := Connect(dbConn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = dbr.db.Exec(`delete from twitch_sessions where client_id like 'test-%'`)
		_ = dbr.Close()
	})
	return dbr
}

func TestSessionState_SaveLoad(t *testing.T) {
	dbr := testRepository(t)
	ctx := context.Background()

	state, err := dbr.LoadSessionState(ctx, "test-missing")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, dbr.SaveSessionState(ctx, "test-cid", []byte(`{"format":"twitch-session/v1","oauth_token":"a"}`)))
	require.NoError(t, dbr.SaveSessionState(ctx, "test-cid", []byte(`{"format":"twitch-session/v1","oauth_token":"b"}`)))

	state, err = dbr.LoadSessionState(ctx, "test-cid")
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"twitch-session/v1","oauth_token":"b"}`, string(state))
}
