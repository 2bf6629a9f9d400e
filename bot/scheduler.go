package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"clan-bot/models"
	"clan-bot/syncer"
	"clan-bot/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

var c *cron.Cron

// startScheduler starts the cron-driven sync passes.
func startScheduler(b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()
	spec := viper.GetString("sync.schedule")
	_, err := c.AddFunc(spec, func() {
		runScheduledPass(b)
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Printf("Sync pass scheduled: %s", spec)

	if viper.GetBool("sync.run_at_startup") {
		go func() {
			log.Println("Running initial sync pass on startup...")
			runScheduledPass(b)
		}()
	}
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}

// runScheduledPass executes one background pass. The Runner rejects overlap
// with a manually triggered pass; the scheduler never starts the next pass
// before the previous one finished.
func runScheduledPass(b *Bot) {
	svc := b.Services
	if svc == nil || svc.Runner == nil {
		log.Println("Scheduler: sync services not wired, skipping pass.")
		return
	}

	// Read the last scheduled date before this pass is recorded; the
	// day-rollover alert fires at most once per day.
	lastDate, dateErr := svc.History.LastScheduledDate()
	if dateErr != nil {
		log.Printf("Scheduler: could not read last scheduled date: %v", dateErr)
	}

	report, err := svc.Runner.Run(context.Background(), false)
	if errors.Is(err, syncer.ErrPassInProgress) {
		log.Println("Scheduler: a sync pass is already running, skipping.")
		return
	}
	if err != nil {
		utils.Error("sync", "scheduled pass", err.Error())
		if recErr := svc.History.RecordPass(models.PassRecord{Trigger: "scheduled", Error: err.Error()}); recErr != nil {
			log.Printf("Scheduler: could not record failed pass: %v", recErr)
		}
		return
	}

	if recErr := svc.History.RecordPass(models.PassRecord{
		Trigger:   "scheduled",
		Roles:     report.RolesProcessed + report.RolesSkipped,
		Adds:      report.Adds,
		Removes:   report.Removes,
		Renames:   report.Renames,
		Misses:    report.Misses,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}); recErr != nil {
		log.Printf("Scheduler: could not record pass: %v", recErr)
	}

	today := time.Now().Format("2006-01-02")
	if report.Misses > 0 && dateErr == nil && lastDate != today {
		utils.OpsAlert(missAlert(report))
	}

	if svc.Tracker != nil && len(report.Roster) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.Tracker.PushRoster(ctx, report.Roster); err != nil {
			utils.Warn("tracker", "roster push", err.Error())
		}
	}
}

// missAlert summarizes unmatched forum members for the operations channel.
func missAlert(report *models.SyncReport) string {
	var unmatched []string
	for _, d := range report.Deltas {
		unmatched = append(unmatched, d.Unmatched...)
		unmatched = append(unmatched, d.Ambiguous...)
	}
	msg := fmt.Sprintf("Forum sync: %d forum member(s) could not be matched to guild members today.", report.Misses)
	if len(unmatched) > 0 {
		msg += " Affected: " + strings.Join(unmatched, ", ")
	}
	return msg
}
