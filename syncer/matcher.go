package syncer

import (
	"clan-bot/forum"

	"github.com/bwmarrin/discordgo"
)

// MatchResult is the outcome of resolving a forum identity to a guild member.
type MatchResult int

const (
	// MatchNone means no guild member carries the identity.
	MatchNone MatchResult = iota
	// MatchFound means exactly one guild member matched.
	MatchFound
	// MatchAmbiguous means more than one forum account claims the identity;
	// the engine must not guess.
	MatchAmbiguous
)

// Matcher resolves forum-registered identity strings to guild members.
// Matching is exact and case-sensitive on the username#discriminator tag.
// Built once per pass from the full member list, since a forum member may be
// joining a role without holding any mapped role yet.
type Matcher struct {
	byTag map[string]*discordgo.Member
}

// NewMatcher indexes the guild's members by identity tag.
func NewMatcher(members []*discordgo.Member) *Matcher {
	byTag := make(map[string]*discordgo.Member, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		byTag[MemberTag(m.User)] = m
	}
	return &Matcher{byTag: byTag}
}

// Match resolves identity against the guild, consulting the directory's
// collision list first: an identity claimed by multiple forum accounts is
// ambiguous regardless of whether a guild member carries it.
func (m *Matcher) Match(identity string, dir *forum.Directory) (*discordgo.Member, MatchResult) {
	if dir != nil && len(dir.Collisions[identity]) > 0 {
		return nil, MatchAmbiguous
	}
	if member, ok := m.byTag[identity]; ok {
		return member, MatchFound
	}
	return nil, MatchNone
}

// Lookup returns the guild member carrying the identity, if any, without
// collision handling. Used for direct notifications.
func (m *Matcher) Lookup(identity string) (*discordgo.Member, bool) {
	member, ok := m.byTag[identity]
	return member, ok
}

// MemberTag returns the unique username#discriminator identity of a user.
// Accounts migrated off discriminators use the bare unique username.
func MemberTag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// MemberDisplayName returns the name shown in the guild: the nickname when
// set, the account username otherwise.
func MemberDisplayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.Username
	}
	return ""
}
