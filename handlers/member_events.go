package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"clan-bot/syncer"

	"github.com/bwmarrin/discordgo"
)

// MemberAddHandler checks a joining member's tag against the forum directory
// and warns them directly when multiple forum accounts claim it. This is a
// separate notification path from the sync pass: the joining member would
// otherwise silently receive no roles.
func MemberAddHandler(d *Deps) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.User == nil || m.User.Bot {
			return
		}
		tag := syncer.MemberTag(m.User)
		log.Printf("Member %s joined guild %s, checking forum identity", tag, m.GuildID)

		groupIDs := d.Store.AllGroupIDs()
		if len(groupIDs) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		dir, err := d.Forum.MembersOfGroups(ctx, groupIDs)
		if err != nil {
			log.Printf("Join-time forum lookup for %s failed: %v", tag, err)
			return
		}
		if len(dir.Collisions[tag]) == 0 {
			return
		}

		ch, err := s.UserChannelCreate(m.User.ID)
		if err != nil {
			log.Printf("Could not open DM channel for %s: %v", tag, err)
			return
		}
		msg := fmt.Sprintf("Welcome! Multiple forum accounts have registered your Discord tag %q, "+
			"so your roles cannot be assigned automatically. Please contact a forum admin.", tag)
		if _, err := s.ChannelMessageSend(ch.ID, msg); err != nil {
			log.Printf("Could not DM %s about identity collision: %v", tag, err)
		}
	}
}
