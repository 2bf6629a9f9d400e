package syncer

import (
	"context"
	"fmt"

	"clan-bot/forum"

	"github.com/bwmarrin/discordgo"
)

// Directory is the forum-side collaborator a pass pulls state from.
// Implemented by forum.Client.
type Directory interface {
	Ping(ctx context.Context) error
	MembersOfGroups(ctx context.Context, groupIDs []int) (*forum.Directory, error)
}

// Guild provides the live guild-side view, read fresh each pass.
type Guild interface {
	Roles(ctx context.Context) ([]*discordgo.Role, error)
	Members(ctx context.Context) ([]*discordgo.Member, error)
}

// Mutator applies single-target guild mutations. Each call may fail
// independently; the engine captures failures without aborting the pass.
type Mutator interface {
	GrantRole(ctx context.Context, userID, roleID string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	SetNickname(ctx context.Context, userID, nick string) error
	NotifyUser(ctx context.Context, userID, message string) error
}

// DiscordGuild adapts a discordgo session to the Guild and Mutator
// interfaces for a single guild.
type DiscordGuild struct {
	s       *discordgo.Session
	guildID string
}

// NewDiscordGuild wraps a session for the given guild.
func NewDiscordGuild(s *discordgo.Session, guildID string) *DiscordGuild {
	return &DiscordGuild{s: s, guildID: guildID}
}

// Roles returns the guild's current roles.
func (g *DiscordGuild) Roles(ctx context.Context) ([]*discordgo.Role, error) {
	return g.s.GuildRoles(g.guildID, discordgo.WithContext(ctx))
}

// Members pages through the full member list.
func (g *DiscordGuild) Members(ctx context.Context) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		batch, err := g.s.GuildMembers(g.guildID, after, 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list guild members: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < 1000 {
			return all, nil
		}
		after = nextPageCursor(batch)
		if after == "" {
			return all, nil
		}
	}
}

// nextPageCursor returns the member ID to page after, skipping trailing
// entries without user data.
func nextPageCursor(batch []*discordgo.Member) string {
	for i := len(batch) - 1; i >= 0; i-- {
		if batch[i].User != nil {
			return batch[i].User.ID
		}
	}
	return ""
}

// GrantRole adds a role to a member.
func (g *DiscordGuild) GrantRole(ctx context.Context, userID, roleID string) error {
	return g.s.GuildMemberRoleAdd(g.guildID, userID, roleID, discordgo.WithContext(ctx))
}

// RevokeRole removes a role from a member.
func (g *DiscordGuild) RevokeRole(ctx context.Context, userID, roleID string) error {
	return g.s.GuildMemberRoleRemove(g.guildID, userID, roleID, discordgo.WithContext(ctx))
}

// SetNickname sets a member's nickname; an empty string clears it.
func (g *DiscordGuild) SetNickname(ctx context.Context, userID, nick string) error {
	return g.s.GuildMemberNickname(g.guildID, userID, nick, discordgo.WithContext(ctx))
}

// NotifyUser sends a direct message.
func (g *DiscordGuild) NotifyUser(ctx context.Context, userID, message string) error {
	ch, err := g.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	_, err = g.s.ChannelMessageSend(ch.ID, message, discordgo.WithContext(ctx))
	return err
}
