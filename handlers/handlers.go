package handlers

import (
	"log"

	"clan-bot/bot"
	"clan-bot/database"
	"clan-bot/forum"
	"clan-bot/rolemap"
	"clan-bot/syncer"

	"github.com/bwmarrin/discordgo"
)

// Deps bundles the subsystems the handlers operate on.
type Deps struct {
	Store   *rolemap.Store
	Forum   *forum.Client
	Runner  *syncer.Runner
	History *database.SyncHistoryDB
}

// Register all handlers to the bot.
func Register(b *bot.Bot, d *Deps) {
	b.Session.AddHandler(InteractionCreate(b, d))
	b.Session.AddHandler(MemberAddHandler(d))

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
