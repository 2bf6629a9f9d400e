package models

// RoleKind tags a mapping with the special-case semantics it carries during a
// sync pass. It is decided once, when the mapping is created, by comparing the
// role name against the configured member/guest role names.
type RoleKind string

const (
	// RoleKindOrdinary is a plain managed role with no extra side effects.
	RoleKindOrdinary RoleKind = "ordinary"
	// RoleKindMember is the organization's primary member role. Removing it
	// also clears the nickname; holding it suppresses the guest role.
	RoleKindMember RoleKind = "member"
	// RoleKindGuest marks the guest role itself so the engine can find its ID.
	RoleKindGuest RoleKind = "guest"
)

// RoleMapping ties a managed Discord role to the forum groups whose union
// defines its membership. One entry per managed role, keyed by role name in
// the persisted document.
type RoleMapping struct {
	RoleID      string   `json:"role_id,omitempty"`
	Permanent   bool     `json:"permanent,omitempty"`
	Kind        RoleKind `json:"kind,omitempty"`
	ForumGroups []int    `json:"forum_groups"`
}

// HasGroup reports whether the mapping already includes the given forum group.
func (m *RoleMapping) HasGroup(groupID int) bool {
	for _, id := range m.ForumGroups {
		if id == groupID {
			return true
		}
	}
	return false
}

// NamedMapping pairs a mapping with its role name for ordered iteration.
type NamedMapping struct {
	RoleName string
	Mapping  RoleMapping
}
