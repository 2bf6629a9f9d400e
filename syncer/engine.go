// Package syncer reconciles Discord role membership against forum group
// membership, one pass at a time. A pass walks every mapped role in the
// store's order, computes the add/remove/rename delta, and applies it unless
// running in check-only mode. Individual mutation failures never abort the
// pass; only an unreachable directory before any role is processed does.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"clan-bot/models"
	"clan-bot/rolemap"
	"clan-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Engine computes and applies reconciliation deltas.
type Engine struct {
	dir           Directory
	guild         Guild
	mut           Mutator
	store         *rolemap.Store
	guestRoleName string
}

// NewEngine wires the engine to its collaborators. guestRoleName is the
// guild role suppressed for full members; empty disables guest handling.
func NewEngine(dir Directory, guild Guild, mut Mutator, store *rolemap.Store, guestRoleName string) *Engine {
	return &Engine{dir: dir, guild: guild, mut: mut, store: store, guestRoleName: guestRoleName}
}

// passState carries the caches scoped to a single pass: the report under
// construction, the set of members already renamed (a member matching several
// role groups is renamed at most once), and the ambiguous identities already
// notified.
type passState struct {
	report      *models.SyncReport
	matcher     *Matcher
	renamed     map[string]bool
	notified    map[string]bool
	rosterSeen  map[string]bool
	guestRoleID string
	checkOnly   bool
}

func (p *passState) addRoster(tag string, fm models.ForumMember) {
	if p.rosterSeen[tag] {
		return
	}
	p.rosterSeen[tag] = true
	p.report.Roster = append(p.report.Roster, models.RosterEntry{
		Tag:         tag,
		DisplayName: fm.DisplayName,
		Division:    fm.Division,
		ForumUserID: fm.ForumUserID,
	})
}

// Run executes one complete pass over all mapped roles. In check-only mode
// the same deltas are computed and reported but no mutation is issued.
// The returned error is non-nil only for a pass-level failure, before any
// role was processed.
func (e *Engine) Run(ctx context.Context, checkOnly bool) (*models.SyncReport, error) {
	started := time.Now()

	// An unreachable directory up front abandons the whole pass. Per-role
	// fetch failures later only skip that role.
	if err := e.dir.Ping(ctx); err != nil {
		return nil, err
	}

	members, err := e.guild.Members(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := e.guild.Roles(ctx)
	if err != nil {
		return nil, err
	}

	pass := &passState{
		report:     &models.SyncReport{CheckOnly: checkOnly, Started: started},
		matcher:    NewMatcher(members),
		renamed:    make(map[string]bool),
		notified:   make(map[string]bool),
		rosterSeen: make(map[string]bool),
		checkOnly:  checkOnly,
	}
	if e.guestRoleName != "" {
		for _, r := range roles {
			if r.Name == e.guestRoleName {
				pass.guestRoleID = r.ID
				break
			}
		}
	}

	for _, nm := range e.store.List() {
		delta := e.syncRole(ctx, pass, nm, members, roles)
		pass.report.Add(delta)
		if !delta.Empty() {
			utils.SyncLog("%s", RoleBreakdown(delta))
		}
	}

	pass.report.Elapsed = time.Since(started)
	utils.SyncLog("%s", Summary(pass.report))
	return pass.report, nil
}

// syncRole reconciles one managed role: removal pass, rename pass for
// matched members, addition pass, then ambiguity reporting. Every mutation
// failure is captured into the delta and the remaining work continues.
func (e *Engine) syncRole(ctx context.Context, pass *passState, nm models.NamedMapping, members []*discordgo.Member, roles []*discordgo.Role) *models.SyncDelta {
	delta := &models.SyncDelta{RoleName: nm.RoleName}

	roleID, err := e.store.ResolveRoleID(nm.RoleName, roles)
	if err != nil {
		delta.Failures = append(delta.Failures, err.Error())
		return delta
	}

	dir, err := e.dir.MembersOfGroups(ctx, nm.Mapping.ForumGroups)
	if err != nil {
		// Skip only this role's fetch; never treat it as zero matches.
		delta.DirectorySkipped = true
		delta.Failures = append(delta.Failures, fmt.Sprintf("group fetch for %q: %v", nm.RoleName, err))
		return delta
	}

	isMember := nm.Mapping.Kind == models.RoleKindMember

	holders := make(map[string]*discordgo.Member)
	for _, m := range members {
		if m.User != nil && hasRole(m, roleID) {
			holders[MemberTag(m.User)] = m
		}
	}
	holderTags := sortedKeys(holders)

	// Removal pass: holders no longer eligible via the forum. Identities
	// under collision are excluded from automatic mutation entirely.
	for _, tag := range holderTags {
		if _, ok := dir.Members[tag]; ok {
			continue
		}
		if _, ok := dir.Collisions[tag]; ok {
			continue
		}
		m := holders[tag]
		delta.ToRemove = append(delta.ToRemove, tag)
		if pass.checkOnly {
			continue
		}
		if err := e.mut.RevokeRole(ctx, m.User.ID, roleID); err != nil {
			delta.Failures = append(delta.Failures, fmt.Sprintf("revoke %q from %s: %v", nm.RoleName, tag, err))
		}
		if isMember {
			// Leaving full membership clears the forum-managed nickname.
			if err := e.mut.SetNickname(ctx, m.User.ID, ""); err != nil {
				delta.Failures = append(delta.Failures, fmt.Sprintf("clear nickname of %s: %v", tag, err))
			}
			e.demoteGuest(ctx, pass, delta, m, tag)
		}
	}

	// Rename pass: members present on both sides.
	for _, tag := range holderTags {
		fm, ok := dir.Members[tag]
		if !ok {
			continue
		}
		e.applyProfile(ctx, pass, delta, holders[tag], tag, fm, isMember)
	}

	// Addition pass: eligible forum identities not currently holding the
	// role, matched against the whole guild.
	for _, identity := range sortedKeys(dir.Members) {
		if _, held := holders[identity]; held {
			continue
		}
		fm := dir.Members[identity]
		m, res := pass.matcher.Match(identity, dir)
		if res != MatchFound {
			delta.Unmatched = append(delta.Unmatched, identity)
			continue
		}
		delta.ToAdd = append(delta.ToAdd, identity)
		if !pass.checkOnly {
			if err := e.mut.GrantRole(ctx, m.User.ID, roleID); err != nil {
				delta.Failures = append(delta.Failures, fmt.Sprintf("grant %q to %s: %v", nm.RoleName, identity, err))
			}
		}
		e.applyProfile(ctx, pass, delta, m, identity, fm, isMember)
	}

	// Ambiguous identities: report, and notify the affected user directly
	// at most once per pass. No automatic mutation for them.
	for _, identity := range sortedKeys(dir.Collisions) {
		delta.Ambiguous = append(delta.Ambiguous, identity)
		if pass.notified[identity] {
			continue
		}
		pass.notified[identity] = true
		if pass.checkOnly {
			continue
		}
		m, ok := pass.matcher.Lookup(identity)
		if !ok {
			continue
		}
		msg := fmt.Sprintf("Multiple forum accounts have registered your Discord tag %q. "+
			"Role sync is paused for you until a forum admin resolves the duplicate.", identity)
		if err := e.mut.NotifyUser(ctx, m.User.ID, msg); err != nil {
			delta.Failures = append(delta.Failures, fmt.Sprintf("notify %s: %v", identity, err))
		}
	}

	return delta
}

// applyProfile records the nickname fix for a matched member, applies it
// outside check-only mode, and enforces guest suppression for the primary
// member role. A member matching several role groups is renamed at most once
// per pass.
func (e *Engine) applyProfile(ctx context.Context, pass *passState, delta *models.SyncDelta, m *discordgo.Member, tag string, fm models.ForumMember, isMember bool) {
	pass.addRoster(tag, fm)

	current := MemberDisplayName(m)
	if fm.DisplayName != "" && current != fm.DisplayName && !pass.renamed[tag] {
		pass.renamed[tag] = true
		delta.ToRename = append(delta.ToRename, models.RenameEntry{Tag: tag, From: current, To: fm.DisplayName})
		if !pass.checkOnly {
			if err := e.mut.SetNickname(ctx, m.User.ID, fm.DisplayName); err != nil {
				delta.Failures = append(delta.Failures, fmt.Sprintf("rename %s to %q: %v", tag, fm.DisplayName, err))
			}
		}
	}
	if isMember {
		e.demoteGuest(ctx, pass, delta, m, tag)
	}
}

// demoteGuest strips the guest role from a member touched by primary-member
// logic. Guests must never simultaneously hold full-member status.
func (e *Engine) demoteGuest(ctx context.Context, pass *passState, delta *models.SyncDelta, m *discordgo.Member, tag string) {
	if pass.guestRoleID == "" || !hasRole(m, pass.guestRoleID) {
		return
	}
	delta.GuestDemotions = append(delta.GuestDemotions, tag)
	if pass.checkOnly {
		return
	}
	if err := e.mut.RevokeRole(ctx, m.User.ID, pass.guestRoleID); err != nil {
		delta.Failures = append(delta.Failures, fmt.Sprintf("demote guest %s: %v", tag, err))
	}
}

func hasRole(m *discordgo.Member, roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrPassInProgress is returned when a pass is triggered while another is
// still running.
var ErrPassInProgress = errors.New("a sync pass is already running")

// Runner serializes passes: a scheduled pass and a manually triggered pass
// are mutually exclusive, since overlapping runs would make duplicate
// decisions against a moving target.
type Runner struct {
	Engine  *Engine
	running atomic.Bool
}

// Run executes one pass unless another is in flight.
func (r *Runner) Run(ctx context.Context, checkOnly bool) (*models.SyncReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrPassInProgress
	}
	defer r.running.Store(false)
	return r.Engine.Run(ctx, checkOnly)
}
