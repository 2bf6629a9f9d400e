package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	session      *discordgo.Session
	adminChannel string
	opsChannel   string
)

// InitLogger initializes the channel logger with a Discord session.
func InitLogger(s *discordgo.Session) {
	session = s
	adminChannel = viper.GetString("bot.adminChannelId")
	opsChannel = viper.GetString("bot.opsChannelId")
	if opsChannel == "" {
		opsChannel = adminChannel
	}
	if adminChannel == "" {
		log.Println("Warning: bot.adminChannelId is not set. Logging to channel will be disabled.")
	}
}

// Log sends a log message to the admin channel.
func Log(level, module, operation, details string) {
	if session == nil || adminChannel == "" {
		log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)
		return
	}

	var color int
	switch level {
	case "WARN":
		color = ColorWarn
	case "ERROR":
		color = ColorError
	default:
		color = ColorInfo
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module, Inline: true},
			{Name: "Operation", Value: operation, Inline: true},
			{Name: "Details", Value: details},
		},
	}

	if _, err := session.ChannelMessageSendEmbed(adminChannel, embed); err != nil {
		log.Printf("Error sending log message to Discord: %v", err)
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}

// OpsAlert sends a plain message to the operations channel. Delivery failure
// is logged and otherwise ignored; alerts never block the caller.
func OpsAlert(message string) {
	if session == nil || opsChannel == "" {
		log.Printf("[OPS] %s", message)
		return
	}
	if _, err := session.ChannelMessageSend(opsChannel, message); err != nil {
		log.Printf("Error sending ops alert to Discord: %v", err)
	}
}

var (
	syncLogMu   sync.Mutex
	syncLogPath string
)

// InitSyncLog sets the path of the durable sync log file.
func InitSyncLog(path string) {
	syncLogMu.Lock()
	defer syncLogMu.Unlock()
	syncLogPath = path
	if path != "" {
		os.MkdirAll(filepath.Dir(path), 0755)
	}
}

// SyncLog appends one line to the durable sync log, prefixed with an
// ISO-8601 timestamp. With no path configured it falls back to the process
// log.
func SyncLog(format string, args ...any) {
	line := fmt.Sprintf(format, args...)

	syncLogMu.Lock()
	defer syncLogMu.Unlock()
	if syncLogPath == "" {
		log.Printf("[sync] %s", line)
		return
	}
	f, err := os.OpenFile(syncLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("Error opening sync log file: %v", err)
		log.Printf("[sync] %s", line)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), line)
}
