package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"clan-bot/rolemap"
	"clan-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// HandleRoleMap handles the /rolemap subcommands.
func HandleRoleMap(s *discordgo.Session, i *discordgo.InteractionCreate, d *Deps) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondEphemeral(s, i, "Error: missing subcommand.")
		return
	}
	sub := data.Options[0]

	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		optionMap[opt.Name] = opt
	}

	switch sub.Name {
	case "add":
		role := optionMap["role"].RoleValue(s, i.GuildID)
		groupID := int(optionMap["group"].IntValue())
		permanent := false
		if opt, ok := optionMap["permanent"]; ok {
			permanent = opt.BoolValue()
		}
		if err := d.Store.AddGroup(role.Name, groupID, permanent); err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
			return
		}
		utils.Info("rolemap", "add", fmt.Sprintf("role %q now maps forum group %d", role.Name, groupID))
		respondEphemeral(s, i, fmt.Sprintf("✅ Role **%s** now maps forum group **%d**.", role.Name, groupID))

	case "remove":
		role := optionMap["role"].RoleValue(s, i.GuildID)
		groupID := int(optionMap["group"].IntValue())
		deleted, err := d.Store.RemoveGroup(role.Name, groupID)
		if err != nil {
			if errors.Is(err, rolemap.ErrPermanent) {
				respondEphemeral(s, i, fmt.Sprintf("🚫 Mapping for **%s** is permanent and cannot be edited.", role.Name))
				return
			}
			respondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
			return
		}
		if deleted {
			utils.Info("rolemap", "remove", fmt.Sprintf("mapping for role %q deleted (last group removed)", role.Name))
			respondEphemeral(s, i, fmt.Sprintf("✅ Removed group **%d**; mapping for **%s** had no groups left and was deleted.", groupID, role.Name))
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Removed forum group **%d** from role **%s**.", groupID, role.Name))

	case "list":
		mappings := d.Store.List()
		if len(mappings) == 0 {
			respondEphemeral(s, i, "No role mappings configured.")
			return
		}
		var b strings.Builder
		for _, nm := range mappings {
			groups := make([]string, len(nm.Mapping.ForumGroups))
			for gi, g := range nm.Mapping.ForumGroups {
				groups[gi] = fmt.Sprintf("%d", g)
			}
			line := fmt.Sprintf("%s → groups [%s]", nm.RoleName, strings.Join(groups, ", "))
			if nm.Mapping.Kind != "" && nm.Mapping.Kind != "ordinary" {
				line += fmt.Sprintf(" (%s)", nm.Mapping.Kind)
			}
			if nm.Mapping.Permanent {
				line += " [permanent]"
			}
			b.WriteString(line + "\n")
		}
		respondEphemeral(s, i, b.String())

	case "prune":
		roles, err := s.GuildRoles(i.GuildID)
		if err != nil {
			log.Printf("Failed to fetch guild roles for prune: %v", err)
			respondEphemeral(s, i, "Error: could not fetch guild roles.")
			return
		}
		removed, err := d.Store.Prune(roles)
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
			return
		}
		if len(removed) == 0 {
			respondEphemeral(s, i, "All mappings point at existing roles; nothing pruned.")
			return
		}
		utils.Info("rolemap", "prune", fmt.Sprintf("removed mappings: %s", strings.Join(removed, ", ")))
		respondEphemeral(s, i, fmt.Sprintf("✅ Pruned mappings for deleted roles: **%s**.", strings.Join(removed, ", ")))

	case "groups":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		groups, err := d.Forum.GroupsLike(ctx, viper.GetString("forum.group_pattern"))
		if err != nil {
			respondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
			return
		}
		if len(groups) == 0 {
			respondEphemeral(s, i, "No forum groups match the configured pattern.")
			return
		}
		ids := make([]int, 0, len(groups))
		for id := range groups {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		var b strings.Builder
		for _, id := range ids {
			fmt.Fprintf(&b, "%d → %s\n", id, groups[id])
		}
		respondEphemeral(s, i, b.String())

	default:
		respondEphemeral(s, i, "Error: unknown subcommand.")
	}
}
