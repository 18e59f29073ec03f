package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds everything the streamer reads from the environment.
type Config struct {
	MongoURI string
	DBName   string

	ScraperURL string

	TelegramToken string

	GeminiAPIKey      string
	GeminiModel       string
	TranslationPrompt string

	SyncDaysCount int
	ChunkSize     int
	Schedule      string
	SyncOnStart   bool

	DisplayTimezone *time.Location

	Tasks []Task
}

// Task is one account/company pair to sync: who to scrape, with which
// credentials, and where to send notifications.
type Task struct {
	User        string
	Company     string
	Credentials map[string]string
	ChatID      int64
}

// companyAliases maps normalized (lower-cased) configuration keys to the
// closed set of provider identifiers the scraping service understands.
var companyAliases = map[string]string{
	"hapoalim":     "hapoalim",
	"leumi":        "leumi",
	"discount":     "discount",
	"mercantile":   "mercantile",
	"mizrahi":      "mizrahi",
	"otsarhahayal": "otsarHahayal",
	"beinleumi":    "beinleumi",
	"massad":       "massad",
	"yahav":        "yahav",
	"union":        "union",
	"onezero":      "oneZero",
	"visacal":      "visaCal",
	"cal":          "visaCal",
	"max":          "max",
	"isracard":     "isracard",
	"amex":         "amex",
}

// Load reads configuration from environment variables. Tasks are derived
// once, here; they are never mutated afterward. Company entries that do not
// match a known provider are logged and skipped.
func Load(log zerolog.Logger) (*Config, error) {
	cfg := &Config{
		MongoURI:          getEnv("MONGO_CONNECTION_STRING", "mongodb://localhost:27017"),
		DBName:            getEnv("DB_NAME", "shekelstreamer"),
		ScraperURL:        getEnv("SCRAPER_URL", "http://localhost:8177"),
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		TranslationPrompt: os.Getenv("TRANSLATION_PROMPT"),
		Schedule:          getEnv("SYNC_SCHEDULE", "0 8 * * *"),
		SyncOnStart:       getEnv("SYNC_ON_START", "true") == "true",
	}

	var err error
	if cfg.SyncDaysCount, err = getEnvInt("SYNC_DAYS_COUNT", 7); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 30); err != nil {
		return nil, err
	}
	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("config: CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}

	tz := getEnv("DISPLAY_TIMEZONE", "Asia/Jerusalem")
	cfg.DisplayTimezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: loading DISPLAY_TIMEZONE %q: %w", tz, err)
	}

	cfg.Tasks, err = deriveTasks(log)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// deriveTasks builds the task list from USERS and the per-user
// <USER>_COMPANIES / <USER>_<COMPANY>_CREDENTIALS variables.
func deriveTasks(log zerolog.Logger) ([]Task, error) {
	users := splitList(os.Getenv("USERS"))
	if len(users) == 0 {
		return nil, fmt.Errorf("config: USERS is required")
	}

	defaultChat, err := getEnvChatID("DEFAULT_TELEGRAM_CHANNEL_ID")
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, user := range users {
		prefix := envKey(user)

		chatID, err := getEnvChatID(prefix + "_TELEGRAM_CHANNEL_ID")
		if err != nil {
			return nil, err
		}
		if chatID == 0 {
			chatID = defaultChat
		}

		for _, raw := range splitList(os.Getenv(prefix + "_COMPANIES")) {
			company, ok := companyAliases[strings.ToLower(raw)]
			if !ok {
				log.Warn().Str("user", user).Str("company", raw).
					Msg("Unknown company in configuration, skipping")
				continue
			}

			credsVar := prefix + "_" + envKey(company) + "_CREDENTIALS"
			credsJSON := os.Getenv(credsVar)
			if credsJSON == "" {
				return nil, fmt.Errorf("config: %s is required for company %s", credsVar, company)
			}
			creds := map[string]string{}
			if err := json.Unmarshal([]byte(credsJSON), &creds); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", credsVar, err)
			}

			tasks = append(tasks, Task{
				User:        user,
				Company:     company,
				Credentials: creds,
				ChatID:      chatID,
			})
		}
	}

	return tasks, nil
}

func envKey(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parsing %s: %w", key, err)
	}
	return v, nil
}

func getEnvChatID(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parsing %s: %w", key, err)
	}
	return v, nil
}
