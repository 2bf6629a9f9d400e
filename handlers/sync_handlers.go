package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"clan-bot/models"
	"clan-bot/syncer"

	"github.com/bwmarrin/discordgo"
)

// HandleSync handles the logic for the /sync command. It responds
// immediately and runs the pass in a goroutine, following up with the
// report embed when the pass finishes.
func HandleSync(s *discordgo.Session, i *discordgo.InteractionCreate, d *Deps) {
	checkOnly := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "check_only" {
			checkOnly = opt.BoolValue()
		}
	}

	initial := "Starting forum sync pass..."
	if checkOnly {
		initial = "Starting forum sync pass (check-only)..."
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: initial,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})

	go func() {
		report, err := d.Runner.Run(context.Background(), checkOnly)
		if errors.Is(err, syncer.ErrPassInProgress) {
			s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
				Content: "🚫 A sync pass is already running; try again when it finishes.",
			})
			return
		}
		if err != nil {
			log.Printf("Manual sync pass failed: %v", err)
			if recErr := d.History.RecordPass(models.PassRecord{Trigger: "manual", CheckOnly: checkOnly, Error: err.Error()}); recErr != nil {
				log.Printf("Could not record failed pass: %v", recErr)
			}
			s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
				Content: fmt.Sprintf("🚫 Sync pass failed: %v", err),
			})
			return
		}

		if recErr := d.History.RecordPass(models.PassRecord{
			Trigger:   "manual",
			CheckOnly: checkOnly,
			Roles:     report.RolesProcessed + report.RolesSkipped,
			Adds:      report.Adds,
			Removes:   report.Removes,
			Renames:   report.Renames,
			Misses:    report.Misses,
			ElapsedMS: report.Elapsed.Milliseconds(),
		}); recErr != nil {
			log.Printf("Could not record pass: %v", recErr)
		}

		s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{syncer.BuildEmbed(report)},
		})
	}()
}

// maxSyncLogEntries caps the /synclog reply so it stays within Discord's
// message length limit.
const maxSyncLogEntries = 25

// clampLogLimit normalizes a user-supplied history limit.
func clampLogLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > maxSyncLogEntries {
		return maxSyncLogEntries
	}
	return limit
}

// HandleSyncLog handles the /synclog command.
func HandleSyncLog(s *discordgo.Session, i *discordgo.InteractionCreate, d *Deps) {
	limit := 10
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	records, err := d.History.RecentPasses(clampLogLimit(limit))
	if err != nil {
		log.Printf("Failed to query sync history: %v", err)
		respondEphemeral(s, i, "Error: could not read sync history.")
		return
	}
	if len(records) == 0 {
		respondEphemeral(s, i, "No sync passes recorded yet.")
		return
	}

	var b strings.Builder
	for _, rec := range records {
		ts := time.Unix(rec.Timestamp, 0).UTC().Format("2006-01-02 15:04")
		if rec.Error != "" {
			fmt.Fprintf(&b, "`%s` %s **failed**: %s\n", ts, rec.Trigger, rec.Error)
			continue
		}
		mode := ""
		if rec.CheckOnly {
			mode = " (check-only)"
		}
		fmt.Fprintf(&b, "`%s` %s%s: roles=%d +%d -%d ~%d miss=%d in %dms\n",
			ts, rec.Trigger, mode, rec.Roles, rec.Adds, rec.Removes, rec.Renames, rec.Misses, rec.ElapsedMS)
	}
	respondEphemeral(s, i, b.String())
}
