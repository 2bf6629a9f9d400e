package models

// ForumMember is one row resolved from the forum directory for a set of
// group IDs. Recomputed on every sync pass, never persisted.
type ForumMember struct {
	ForumUserID   int64  // forum-side user ID
	ForumUsername string // forum login name
	DisplayName   string // decoded forum-registered display name (the desired nickname)
	Identity      string // decoded discord identity string used for matching
	Division      string // division/rank profile field
}
