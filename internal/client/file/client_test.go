package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileClient_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fc := NewFileClient(path)
	ctx := context.Background()

	state, err := fc.LoadSessionState(ctx, "cid")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, fc.SaveSessionState(ctx, "cid", []byte(`{"oauth_token":"a"}`)))
	require.NoError(t, fc.SaveSessionState(ctx, "other", []byte(`{"oauth_token":"b"}`)))
	require.NoError(t, fc.SaveSessionState(ctx, "cid", []byte(`{"oauth_token":"c"}`)))

	state, err = NewFileClient(path).LoadSessionState(ctx, "cid")
	require.NoError(t, err)
	assert.JSONEq(t, `{"oauth_token":"c"}`, string(state))

	state, err = fc.LoadSessionState(ctx, "other")
	require.NoError(t, err)
	assert.JSONEq(t, `{"oauth_token":"b"}`, string(state))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileClient_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewFileClient(path).LoadSessionState(context.Background(), "cid")
	assert.Error(t, err)
}
