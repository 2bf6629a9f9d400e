package rolemap

import (
	"path/filepath"
	"testing"

	"clan-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "role_map.json")
	store, err := NewStore(path, "Member", "Guest")
	require.NoError(t, err)
	return store, path
}

func TestAddGroupClassifiesKind(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddGroup("Alpha", 1, false))
	require.NoError(t, store.AddGroup("Member", 2, false))
	require.NoError(t, store.AddGroup("Guest", 3, false))

	m, ok := store.Get("Alpha")
	require.True(t, ok)
	assert.Equal(t, models.RoleKindOrdinary, m.Kind)

	m, _ = store.Get("Member")
	assert.Equal(t, models.RoleKindMember, m.Kind)

	m, _ = store.Get("Guest")
	assert.Equal(t, models.RoleKindGuest, m.Kind)
}

func TestAddGroupDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 1, false))
	assert.Error(t, store.AddGroup("Alpha", 1, false))
}

func TestRemoveGroupDeletesEmptyMapping(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 1, false))
	require.NoError(t, store.AddGroup("Alpha", 2, false))

	deleted, err := store.RemoveGroup("Alpha", 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = store.RemoveGroup("Alpha", 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok := store.Get("Alpha")
	assert.False(t, ok)

	// The deletion survives a reload: every mutation is written back.
	reloaded, err := NewStore(path, "Member", "Guest")
	require.NoError(t, err)
	_, ok = reloaded.Get("Alpha")
	assert.False(t, ok)
}

func TestPermanentMappingRefusesEdits(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddGroup("Officers", 5, true))

	assert.ErrorIs(t, store.AddGroup("Officers", 6, false), ErrPermanent)
	_, err := store.RemoveGroup("Officers", 5)
	assert.ErrorIs(t, err, ErrPermanent)

	m, ok := store.Get("Officers")
	require.True(t, ok)
	assert.Equal(t, []int{5}, m.ForumGroups)
}

func TestResolveRoleIDCaches(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 1, false))

	roles := []*discordgo.Role{{ID: "r-alpha", Name: "Alpha"}}
	id, err := store.ResolveRoleID("Alpha", roles)
	require.NoError(t, err)
	assert.Equal(t, "r-alpha", id)

	// Cached: resolution no longer needs the live role list, and the ID
	// survives a reload.
	id, err = store.ResolveRoleID("Alpha", nil)
	require.NoError(t, err)
	assert.Equal(t, "r-alpha", id)

	reloaded, err := NewStore(path, "Member", "Guest")
	require.NoError(t, err)
	id, err = reloaded.ResolveRoleID("Alpha", nil)
	require.NoError(t, err)
	assert.Equal(t, "r-alpha", id)
}

func TestResolveRoleIDUnknownRole(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 1, false))

	_, err := store.ResolveRoleID("Alpha", []*discordgo.Role{{ID: "r-x", Name: "Other"}})
	assert.Error(t, err)

	_, err = store.ResolveRoleID("Unmapped", nil)
	assert.ErrorIs(t, err, ErrUnknownMapping)
}

func TestListOrderIsStable(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.AddGroup("Zulu", 1, false))
	require.NoError(t, store.AddGroup("Alpha", 2, false))

	names := func(s *Store) []string {
		var out []string
		for _, nm := range s.List() {
			out = append(out, nm.RoleName)
		}
		return out
	}

	// Insertion order while the store lives, sorted order after a reload;
	// both are deterministic for a given store state.
	assert.Equal(t, []string{"Zulu", "Alpha"}, names(store))

	reloaded, err := NewStore(path, "Member", "Guest")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zulu"}, names(reloaded))
}

func TestPrune(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 1, false))
	require.NoError(t, store.AddGroup("Ghost", 2, false))
	require.NoError(t, store.AddGroup("Officers", 3, true)) // permanent, never pruned

	roles := []*discordgo.Role{{ID: "r-alpha", Name: "Alpha"}}
	removed, err := store.Prune(roles)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ghost"}, removed)

	_, ok := store.Get("Ghost")
	assert.False(t, ok)
	_, ok = store.Get("Officers")
	assert.True(t, ok)
}

func TestAllGroupIDs(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddGroup("Alpha", 3, false))
	require.NoError(t, store.AddGroup("Bravo", 1, false))
	require.NoError(t, store.AddGroup("Bravo", 3, false))

	assert.Equal(t, []int{1, 3}, store.AllGroupIDs())
}
