package boltslot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "session.db")

	slot, err := Open(path)
	require.NoError(t, err)

	data, err := slot.Load()
	require.NoError(t, err)
	assert.Nil(t, data, "a new slot is empty")

	require.NoError(t, slot.Store([]byte("token-1")))
	require.NoError(t, slot.Store([]byte("token-2")))
	data, err = slot.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("token-2"), data)
	require.NoError(t, slot.Close())

	// reopened: the identity survives a restart
	slot, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })
	data, err = slot.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("token-2"), data)

	require.NoError(t, slot.Clear())
	data, err = slot.Load()
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, slot.Clear(), "clearing an empty slot")
}
