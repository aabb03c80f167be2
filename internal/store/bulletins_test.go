package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulletins_AppendUniqueDeduplicates(t *testing.T) {
	dir := t.TempDir()
	b := NewBulletins(dir, logging.Discard())

	first := model.Bulletin{Time: "3/14/2025 1:05:09 PM", Crime: "Mugging", Victim: "Alice", Suspect: "xyz", OnlineUsers: []string{"Maxyz", "Bob"}}
	second := model.Bulletin{Time: "3/14/2025 1:07:00 PM", Crime: "Hack", Victim: "Carol", Suspect: "ol"}

	added, err := b.AppendUnique([]model.Bulletin{first, second})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Same report copied again with a different online snapshot
	again := first
	again.OnlineUsers = []string{"Someone"}
	added, err = b.AppendUnique([]model.Bulletin{again})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	all := b.ReadAll()
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Maxyz", "Bob"}, all[0].OnlineUsers)
	assert.Empty(t, all[1].OnlineUsers)
}

func TestBulletins_PersistedFormat(t *testing.T) {
	dir := t.TempDir()
	b := NewBulletins(dir, logging.Discard())

	_, err := b.AppendUnique([]model.Bulletin{{Time: "t", Crime: "c", Victim: "v", Suspect: "s", OnlineUsers: []string{"a", "b"}}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, BulletinsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"time":"t","crime":"c","victim":"v","suspect":"s","online_users":"a, b"}]`, string(data))
}

func TestBulletins_CorruptFailsOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BulletinsFile), []byte("not json"), 0644))

	b := NewBulletins(dir, logging.Discard())
	assert.Empty(t, b.ReadAll())
}
