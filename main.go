package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clan-bot/bot"
	"clan-bot/command"
	"clan-bot/config"
	"clan-bot/database"
	"clan-bot/forum"
	"clan-bot/handlers"
	"clan-bot/rolemap"
	"clan-bot/syncer"
	"clan-bot/tracker"
	"clan-bot/utils"

	"github.com/spf13/viper"
)

func main() {
	config.LoadConfig()

	b, err := bot.NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	guildID := viper.GetString("bot.guildId")
	if guildID == "" {
		log.Fatal("bot.guildId is not configured")
	}

	store, err := rolemap.NewStore(
		viper.GetString("sync.role_map_path"),
		viper.GetString("bot.memberRoleName"),
		viper.GetString("bot.guestRoleName"),
	)
	if err != nil {
		log.Fatalf("Error loading role map: %v", err)
	}

	history, err := database.OpenSyncHistory(viper.GetString("sync.history_db_path"))
	if err != nil {
		log.Fatalf("Error opening sync history database: %v", err)
	}
	defer history.Close()

	forumClient := forum.NewClient(
		viper.GetString("FORUM_DSN"),
		time.Duration(viper.GetInt("forum.timeout_seconds"))*time.Second,
	)
	defer forumClient.Close()

	var trackerClient *tracker.Client
	if url := viper.GetString("TRACKER_URL"); url != "" {
		trackerClient = tracker.NewClient(
			url,
			viper.GetString("TRACKER_KEY"),
			time.Duration(viper.GetInt("tracker.timeout_seconds"))*time.Second,
		)
	}

	dg := syncer.NewDiscordGuild(b.Session, guildID)
	engine := syncer.NewEngine(forumClient, dg, dg, store, viper.GetString("bot.guestRoleName"))
	runner := &syncer.Runner{Engine: engine}

	b.Services = &bot.Services{
		Runner:  runner,
		History: history,
		Tracker: trackerClient,
	}

	deps := &handlers.Deps{
		Store:   store,
		Forum:   forumClient,
		Runner:  runner,
		History: history,
	}

	utils.InitSyncLog(viper.GetString("sync.log_path"))

	registerHandlers := func(b *bot.Bot) {
		utils.InitLogger(b.Session)
		handlers.Register(b, deps)
	}

	if err := b.Start(registerHandlers, command.GetCommandDefinitions()); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
}
