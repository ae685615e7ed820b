package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/korjavin/dinnerboard/pkg/logger"
)

// DefaultStaff is the serving staff offered when neither the roster nor
// STAFF provides one
var DefaultStaff = []string{"真弓", "ミン", "ボビ", "サラミ", "パビ", "翔平"}

// Config holds all configuration for the application
type Config struct {
	// Telegram Bot configuration
	BotToken        string
	OperatorChatIDs []int64
	KitchenChatID   int64

	// Storage
	DataDir string

	// Staff roster fallback
	Staff       []string
	CustomStaff string

	// OpenAI configuration, used only for dish readings
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Pre-service reminder, HH:MM local time
	ReminderTime string

	LogLevel string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Global.Warn("Error loading .env file: %v", err)
	}

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		DataDir:       getEnvWithDefault("DATA_DIR", "./data"),
		CustomStaff:   strings.TrimSpace(os.Getenv("CUSTOM_STAFF")),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIBase: getEnvWithDefault("OPENAI_API_BASE", "https://api.openai.com/v1"),
		OpenAIModel:   getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ReminderTime:  getEnvWithDefault("REMINDER_TIME", "17:30"),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
	}

	ids, err := parseChatIDs(os.Getenv("OPERATOR_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("OPERATOR_CHAT_IDS: %w", err)
	}
	cfg.OperatorChatIDs = ids

	if raw := strings.TrimSpace(os.Getenv("KITCHEN_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("KITCHEN_CHAT_ID: %w", err)
		}
		cfg.KitchenChatID = id
	}

	cfg.Staff = splitList(os.Getenv("STAFF"))
	if len(cfg.Staff) == 0 {
		cfg.Staff = append([]string(nil), DefaultStaff...)
	}

	if !validClock(cfg.ReminderTime) {
		return nil, fmt.Errorf("REMINDER_TIME must be HH:MM, got %q", cfg.ReminderTime)
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// Log configuration with sensitive data redacted
	logCfg := *cfg
	logCfg.BotToken = redact(logCfg.BotToken)
	logCfg.OpenAIAPIKey = redact(logCfg.OpenAIAPIKey)
	logger.Global.Info("Configuration loaded: %+v", logCfg)
	return cfg, nil
}

// RequireBot checks the settings the Telegram front end cannot run without
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	return nil
}

// OperatorAllowed reports whether a chat may drive the board
func (c *Config) OperatorAllowed(chatID int64) bool {
	if len(c.OperatorChatIDs) == 0 {
		return true
	}
	for _, id := range c.OperatorChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h, err1 := strconv.Atoi(s[:2])
	m, err2 := strconv.Atoi(s[3:])
	return err1 == nil && err2 == nil && h >= 0 && h < 24 && m >= 0 && m < 60
}

func redact(secret string) string {
	if len(secret) > 8 {
		return secret[:8] + "...REDACTED..."
	}
	return secret
}
