// Package rolemap persists the mapping between managed Discord roles and the
// forum groups that define their membership. The store is a flat JSON
// document keyed by role name, rewritten wholesale after every mutation.
package rolemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"clan-bot/models"

	"github.com/bwmarrin/discordgo"
)

// ErrPermanent is returned when a mutation targets a permanent mapping.
var ErrPermanent = errors.New("mapping is permanent and cannot be edited")

// ErrUnknownMapping is returned when no mapping exists for a role name.
var ErrUnknownMapping = errors.New("no mapping for role")

// Store manages the role-map document. Mutations are synchronous with the
// file on disk: no operation returns success before the document is written
// back. Concurrent administrative edits are serialized by the mutex;
// last-writer-wins on the full document.
type Store struct {
	path           string
	memberRoleName string
	guestRoleName  string

	mu       sync.Mutex
	mappings map[string]*models.RoleMapping
	order    []string // stable iteration order for sync passes
}

// NewStore loads the role-map document at path, creating an empty store if
// the file does not exist yet. memberRoleName and guestRoleName classify new
// mappings at edit time.
func NewStore(path, memberRoleName, guestRoleName string) (*Store, error) {
	s := &Store{
		path:           path,
		memberRoleName: memberRoleName,
		guestRoleName:  guestRoleName,
		mappings:       make(map[string]*models.RoleMapping),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read role map: %w", err)
	}
	if err := json.Unmarshal(data, &s.mappings); err != nil {
		return nil, fmt.Errorf("failed to parse role map: %w", err)
	}
	for name := range s.mappings {
		s.order = append(s.order, name)
	}
	sort.Strings(s.order)
	return s, nil
}

// classify derives the role-kind tag for a role name. Decided once here, at
// mapping-edit time, never re-derived during a pass.
func (s *Store) classify(roleName string) models.RoleKind {
	switch roleName {
	case s.memberRoleName:
		return models.RoleKindMember
	case s.guestRoleName:
		return models.RoleKindGuest
	default:
		return models.RoleKindOrdinary
	}
}

// List returns all mappings in the store's iteration order. The returned
// mappings are copies; edits go through the mutating methods.
func (s *Store) List() []models.NamedMapping {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.NamedMapping, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, models.NamedMapping{RoleName: name, Mapping: *s.mappings[name]})
	}
	return out
}

// Get returns a copy of the mapping for roleName, if any.
func (s *Store) Get(roleName string) (models.RoleMapping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[roleName]
	if !ok {
		return models.RoleMapping{}, false
	}
	return *m, true
}

// AllGroupIDs returns the union of forum groups across every mapping.
func (s *Store) AllGroupIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool)
	var ids []int
	for _, name := range s.order {
		for _, id := range s.mappings[name].ForumGroups {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// AddGroup adds a forum group to roleName's mapping, creating the mapping if
// it does not exist. The permanent flag only applies on creation; editing an
// existing permanent mapping is refused.
func (s *Store) AddGroup(roleName string, groupID int, permanent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[roleName]
	if !ok {
		s.mappings[roleName] = &models.RoleMapping{
			Permanent:   permanent,
			Kind:        s.classify(roleName),
			ForumGroups: []int{groupID},
		}
		s.order = append(s.order, roleName)
		return s.save()
	}
	if m.Permanent {
		return ErrPermanent
	}
	if m.HasGroup(groupID) {
		return fmt.Errorf("role %q already maps forum group %d", roleName, groupID)
	}
	m.ForumGroups = append(m.ForumGroups, groupID)
	return s.save()
}

// RemoveGroup removes a forum group from roleName's mapping. When the last
// group is removed the whole mapping is deleted. Returns whether the mapping
// was deleted.
func (s *Store) RemoveGroup(roleName string, groupID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[roleName]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownMapping, roleName)
	}
	if m.Permanent {
		return false, ErrPermanent
	}
	if !m.HasGroup(groupID) {
		return false, fmt.Errorf("role %q does not map forum group %d", roleName, groupID)
	}

	groups := m.ForumGroups[:0]
	for _, id := range m.ForumGroups {
		if id != groupID {
			groups = append(groups, id)
		}
	}
	m.ForumGroups = groups

	if len(m.ForumGroups) == 0 {
		s.deleteLocked(roleName)
		return true, s.save()
	}
	return false, s.save()
}

// ResolveRoleID returns the Discord role ID for roleName, filling and caching
// it from the live guild roles the first time the role is seen. Role names
// are user-facing; IDs are stable, so the cached ID wins on later renames.
func (s *Store) ResolveRoleID(roleName string, guildRoles []*discordgo.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mappings[roleName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMapping, roleName)
	}
	if m.RoleID != "" {
		return m.RoleID, nil
	}
	for _, r := range guildRoles {
		if r.Name == roleName {
			m.RoleID = r.ID
			if err := s.save(); err != nil {
				return "", err
			}
			return m.RoleID, nil
		}
	}
	return "", fmt.Errorf("role %q not found in guild", roleName)
}

// Prune deletes mappings whose role no longer exists in the guild, skipping
// permanent ones. Returns the deleted role names.
func (s *Store) Prune(guildRoles []*discordgo.Role) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]bool, len(guildRoles))
	byID := make(map[string]bool, len(guildRoles))
	for _, r := range guildRoles {
		byName[r.Name] = true
		byID[r.ID] = true
	}

	var removed []string
	for _, name := range append([]string(nil), s.order...) {
		m := s.mappings[name]
		if m.Permanent {
			continue
		}
		if byName[name] || (m.RoleID != "" && byID[m.RoleID]) {
			continue
		}
		s.deleteLocked(name)
		removed = append(removed, name)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, s.save()
}

func (s *Store) deleteLocked(roleName string) {
	delete(s.mappings, roleName)
	for i, n := range s.order {
		if n == roleName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// save writes the whole document back to disk. Must be called with the mutex
// held. The in-memory mutation completes before the write, so a crash here
// loses at most the last edit, never corrupts the file contents in memory.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create role map directory: %w", err)
	}
	data, err := json.MarshalIndent(s.mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode role map: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write role map: %w", err)
	}
	return nil
}
