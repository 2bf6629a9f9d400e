package command

import "github.com/bwmarrin/discordgo"

// RoleMapCommand defines the /rolemap command for editing role mappings.
type RoleMapCommand struct{}

// Definition returns the application command definition.
func (c *RoleMapCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "rolemap",
		Description: "Manage role to forum-group mappings",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "add",
				Description: "Map a forum group to a Discord role",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "role",
						Description: "The Discord role to manage",
						Type:        discordgo.ApplicationCommandOptionRole,
						Required:    true,
					},
					{
						Name:        "group",
						Description: "The forum group ID",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
					},
					{
						Name:        "permanent",
						Description: "Protect the mapping from edits and pruning",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Required:    false,
					},
				},
			},
			{
				Name:        "remove",
				Description: "Remove a forum group from a role mapping",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "role",
						Description: "The mapped Discord role",
						Type:        discordgo.ApplicationCommandOptionRole,
						Required:    true,
					},
					{
						Name:        "group",
						Description: "The forum group ID",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
					},
				},
			},
			{
				Name:        "list",
				Description: "List all role mappings",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name:        "prune",
				Description: "Delete mappings whose role no longer exists",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name:        "groups",
				Description: "List forum groups matching the clan naming pattern",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
		},
	}
}

// SyncCommand defines the /sync command that triggers a reconciliation pass.
type SyncCommand struct{}

// Definition returns the application command definition.
func (c *SyncCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "sync",
		Description: "Run a forum sync pass over all mapped roles",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "check_only",
				Description: "Compute and report the deltas without applying them",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    false,
			},
		},
	}
}

// SyncLogCommand defines the /synclog command showing recent pass history.
type SyncLogCommand struct{}

// Definition returns the application command definition.
func (c *SyncLogCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "synclog",
		Description: "Show recent sync pass history",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "limit",
				Description: "Number of passes to show (default 10)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    false,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
