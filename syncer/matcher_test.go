package syncer

import (
	"testing"

	"clan-bot/forum"
	"clan-bot/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestMemberTag(t *testing.T) {
	assert.Equal(t, "Bob#1111", MemberTag(&discordgo.User{Username: "Bob", Discriminator: "1111"}))
	// Accounts migrated to unique usernames carry discriminator "0".
	assert.Equal(t, "bob", MemberTag(&discordgo.User{Username: "bob", Discriminator: "0"}))
	assert.Equal(t, "bob", MemberTag(&discordgo.User{Username: "bob"}))
}

func TestMemberDisplayName(t *testing.T) {
	m := newMember("u1", "Bob", "1111", "")
	assert.Equal(t, "Bob", MemberDisplayName(m))
	m.Nick = "Bobby"
	assert.Equal(t, "Bobby", MemberDisplayName(m))
}

func TestMatcherMatch(t *testing.T) {
	members := []*discordgo.Member{
		newMember("u1", "Bob", "1111", ""),
		newMember("u2", "Carl", "2222", ""),
	}
	matcher := NewMatcher(members)

	dir := &forum.Directory{
		Members: map[string]models.ForumMember{},
		Collisions: map[string][]models.ForumMember{
			"Bob#1111": {
				{ForumUserID: 1, Identity: "Bob#1111"},
				{ForumUserID: 2, Identity: "Bob#1111"},
			},
		},
	}

	// Collisions win over a guild match: never guess between forum accounts.
	_, res := matcher.Match("Bob#1111", dir)
	assert.Equal(t, MatchAmbiguous, res)

	m, res := matcher.Match("Carl#2222", dir)
	assert.Equal(t, MatchFound, res)
	assert.Equal(t, "u2", m.User.ID)

	// Matching is exact and case-sensitive.
	_, res = matcher.Match("carl#2222", dir)
	assert.Equal(t, MatchNone, res)

	_, res = matcher.Match("Nobody#9999", dir)
	assert.Equal(t, MatchNone, res)
}
