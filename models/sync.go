package models

import "time"

// RenameEntry records one pending or applied nickname change.
type RenameEntry struct {
	Tag  string // guild identity of the member
	From string // display name seen on the guild
	To   string // forum-registered name
}

// SyncDelta is the reconciliation output for one managed role in one pass.
// ToAdd, ToRemove and ToRename are disjoint for a given role; a member in
// ToAdd may also appear in ToRename when the freshly added member needs a
// nickname fix.
type SyncDelta struct {
	RoleName string

	ToAdd     []string      // forum identities granted (or due) the role
	ToRemove  []string      // guild tags losing (or due to lose) the role
	ToRename  []RenameEntry // nickname corrections
	Unmatched []string      // forum identities with no resolvable guild member
	Ambiguous []string      // identities claimed by more than one forum account

	GuestDemotions []string // guest role removals triggered by member-role logic
	Failures       []string // individual mutation failures, one line each

	// DirectorySkipped is set when the forum group fetch for this role failed
	// and the role was skipped without computing a delta.
	DirectorySkipped bool
}

// Empty reports whether the delta carries nothing worth reporting.
func (d *SyncDelta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0 && len(d.ToRename) == 0 &&
		len(d.Unmatched) == 0 && len(d.Ambiguous) == 0 && len(d.GuestDemotions) == 0 &&
		len(d.Failures) == 0 && !d.DirectorySkipped
}

// RosterEntry is one matched member in the final roster snapshot pushed to
// the tracker after a successful pass.
type RosterEntry struct {
	Tag         string `json:"tag"`
	DisplayName string `json:"display_name"`
	Division    string `json:"division"`
	ForumUserID int64  `json:"forum_user_id"`
}

// SyncReport accumulates per-role deltas and running counters across one
// complete pass.
type SyncReport struct {
	CheckOnly bool
	Started   time.Time
	Elapsed   time.Duration

	RolesProcessed int
	RolesSkipped   int

	Adds    int
	Removes int
	Renames int
	Misses  int

	Deltas []*SyncDelta
	Roster []RosterEntry
}

// Add folds one role's delta into the report totals.
func (r *SyncReport) Add(d *SyncDelta) {
	r.Deltas = append(r.Deltas, d)
	if d.DirectorySkipped {
		r.RolesSkipped++
		r.Misses++
		return
	}
	r.RolesProcessed++
	r.Adds += len(d.ToAdd)
	r.Removes += len(d.ToRemove)
	r.Renames += len(d.ToRename)
	r.Misses += len(d.Unmatched) + len(d.Ambiguous)
}

// PassRecord is one completed (or failed) pass as stored in the local
// pass-history database.
type PassRecord struct {
	ID        int64
	Trigger   string // "scheduled" or "manual"
	CheckOnly bool
	Roles     int
	Adds      int
	Removes   int
	Renames   int
	Misses    int
	ElapsedMS int64
	Error     string
	Timestamp int64 // unix seconds
}
