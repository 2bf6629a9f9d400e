package bot

import (
	"fmt"
	"log"

	"clan-bot/database"
	"clan-bot/syncer"
	"clan-bot/tracker"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Services bundles the subsystems the bot's handlers and scheduler work with.
type Services struct {
	Runner  *syncer.Runner
	History *database.SyncHistoryDB
	Tracker *tracker.Client // nil when no tracker is configured
}

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Services *Services
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	return &Bot{Session: dg}, nil
}

// Start opens the bot's session, registers handlers and slash commands, and
// starts the scheduler.
func (b *Bot) Start(registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	guildID := viper.GetString("bot.guildId")
	for _, cmd := range commands {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, guildID, cmd); err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Name, err)
		}
	}

	startScheduler(b)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}
