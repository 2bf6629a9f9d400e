package syncer

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clan-bot/models"

	"github.com/bwmarrin/discordgo"
)

const (
	// Discord caps an embed field value at 1024 characters and an embed at
	// 25 fields.
	embedFieldBudget = 1024
	maxEmbedFields   = 25
	contMarker       = " (cont...)"
)

// RoleBreakdown renders one role's delta as a single durable-log line.
func RoleBreakdown(d *models.SyncDelta) string {
	if d.DirectorySkipped {
		return fmt.Sprintf("role=%q skipped: forum directory unavailable", d.RoleName)
	}
	var parts []string
	if len(d.ToAdd) > 0 {
		parts = append(parts, fmt.Sprintf("added=[%s]", strings.Join(d.ToAdd, ", ")))
	}
	if len(d.ToRemove) > 0 {
		parts = append(parts, fmt.Sprintf("removed=[%s]", strings.Join(d.ToRemove, ", ")))
	}
	if len(d.ToRename) > 0 {
		renames := make([]string, len(d.ToRename))
		for i, r := range d.ToRename {
			renames[i] = fmt.Sprintf("%s: %q -> %q", r.Tag, r.From, r.To)
		}
		parts = append(parts, fmt.Sprintf("renamed=[%s]", strings.Join(renames, ", ")))
	}
	if len(d.Unmatched) > 0 {
		parts = append(parts, fmt.Sprintf("unmatched=[%s]", strings.Join(d.Unmatched, ", ")))
	}
	if len(d.Ambiguous) > 0 {
		parts = append(parts, fmt.Sprintf("ambiguous=[%s]", strings.Join(d.Ambiguous, ", ")))
	}
	if len(d.GuestDemotions) > 0 {
		parts = append(parts, fmt.Sprintf("guest_demoted=[%s]", strings.Join(d.GuestDemotions, ", ")))
	}
	if len(d.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("failures=[%s]", strings.Join(d.Failures, "; ")))
	}
	return fmt.Sprintf("role=%q %s", d.RoleName, strings.Join(parts, " "))
}

// Summary renders the pass-end timing and counter line.
func Summary(r *models.SyncReport) string {
	mode := "sync"
	if r.CheckOnly {
		mode = "check-only"
	}
	return fmt.Sprintf("pass complete (%s): roles=%d skipped=%d adds=%d removes=%d renames=%d misses=%d elapsed=%s",
		mode, r.RolesProcessed, r.RolesSkipped, r.Adds, r.Removes, r.Renames, r.Misses, r.Elapsed.Round(time.Millisecond))
}

// BuildEmbed renders the pass report for an interactive reply. Each delta
// category becomes an embed field, paginated across fields with a
// "(cont...)" marker when a category outgrows the field budget.
func BuildEmbed(r *models.SyncReport) *discordgo.MessageEmbed {
	title := "Forum Sync Report"
	if r.CheckOnly {
		title = "Forum Sync Report (check-only)"
	}
	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: 0x00ff00,
		Footer: &discordgo.MessageEmbedFooter{
			Text: Summary(r),
		},
	}

	for _, d := range r.Deltas {
		if d.Empty() {
			continue
		}
		if d.DirectorySkipped {
			appendFields(embed, d.RoleName+": skipped", []string{"forum directory unavailable"})
			continue
		}
		appendFields(embed, d.RoleName+": added", d.ToAdd)
		appendFields(embed, d.RoleName+": removed", d.ToRemove)
		if len(d.ToRename) > 0 {
			renames := make([]string, len(d.ToRename))
			for i, rn := range d.ToRename {
				renames[i] = fmt.Sprintf("%s → %s", rn.Tag, rn.To)
			}
			appendFields(embed, d.RoleName+": renamed", renames)
		}
		appendFields(embed, d.RoleName+": unmatched", d.Unmatched)
		appendFields(embed, d.RoleName+": ambiguous", d.Ambiguous)
		appendFields(embed, d.RoleName+": guest demoted", d.GuestDemotions)
		appendFields(embed, d.RoleName+": failures", d.Failures)
	}

	if len(embed.Fields) > maxEmbedFields {
		embed.Fields = embed.Fields[:maxEmbedFields-1]
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "…",
			Value: "further entries are in the sync log",
		})
	}
	return embed
}

func appendFields(embed *discordgo.MessageEmbed, name string, entries []string) {
	if len(entries) == 0 {
		return
	}
	for i, value := range paginate(entries, embedFieldBudget) {
		fieldName := name
		if i > 0 {
			fieldName = name + " (cont.)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fieldName,
			Value: value,
		})
	}
}

// paginate joins entries into chunks of at most budget characters; every
// chunk except the last ends with the continuation marker.
func paginate(entries []string, budget int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	limit := budget - len(contMarker)
	for _, e := range entries {
		if len(e) > limit {
			e = truncateRunes(e, limit)
		}
		add := len(e)
		if current.Len() > 0 {
			add += 2 // separator
		}
		if current.Len()+add > limit {
			chunks = append(chunks, current.String()+contMarker)
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(", ")
		}
		current.WriteString(e)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// truncateRunes cuts s to at most n bytes without splitting a multi-byte rune.
func truncateRunes(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
