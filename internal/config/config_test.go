package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cneltyn-s/shekel-streamer/internal/logger"
)

func TestLoad_DeriveTasks(t *testing.T) {
	t.Setenv("USERS", "john, jane")
	t.Setenv("DEFAULT_TELEGRAM_CHANNEL_ID", "-1001")
	t.Setenv("JOHN_COMPANIES", "Hapoalim, visacal")
	t.Setenv("JOHN_HAPOALIM_CREDENTIALS", `{"userCode":"AB1234","password":"secret"}`)
	t.Setenv("JOHN_VISACAL_CREDENTIALS", `{"username":"john","password":"secret"}`)
	t.Setenv("JANE_COMPANIES", "max")
	t.Setenv("JANE_MAX_CREDENTIALS", `{"username":"jane","password":"secret"}`)
	t.Setenv("JANE_TELEGRAM_CHANNEL_ID", "-1002")

	cfg, err := Load(logger.NewWithWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(cfg.Tasks))
	}

	first := cfg.Tasks[0]
	if first.User != "john" || first.Company != "hapoalim" {
		t.Errorf("Unexpected first task: %+v", first)
	}
	if first.Credentials["userCode"] != "AB1234" {
		t.Errorf("Expected credentials to be parsed, got %v", first.Credentials)
	}
	if first.ChatID != -1001 {
		t.Errorf("Expected default chat ID fallback, got %d", first.ChatID)
	}

	if cfg.Tasks[1].Company != "visaCal" {
		t.Errorf("Expected case-insensitive alias to resolve to visaCal, got %s", cfg.Tasks[1].Company)
	}

	jane := cfg.Tasks[2]
	if jane.ChatID != -1002 {
		t.Errorf("Expected per-user chat ID, got %d", jane.ChatID)
	}
}

func TestLoad_UnknownCompanySkipped(t *testing.T) {
	t.Setenv("USERS", "john")
	t.Setenv("JOHN_COMPANIES", "Hapoalim, narnia-bank")
	t.Setenv("JOHN_HAPOALIM_CREDENTIALS", `{"userCode":"AB1234","password":"secret"}`)

	buf := &bytes.Buffer{}
	cfg, err := Load(logger.NewWithWriter(buf))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Tasks) != 1 {
		t.Fatalf("Expected the unknown company to be skipped, got %d tasks", len(cfg.Tasks))
	}
	if !strings.Contains(buf.String(), "narnia-bank") {
		t.Errorf("Expected a warning naming the skipped company, got: %s", buf.String())
	}
}

func TestLoad_MissingCredentialsFails(t *testing.T) {
	t.Setenv("USERS", "john")
	t.Setenv("JOHN_COMPANIES", "leumi")

	if _, err := Load(logger.NewWithWriter(&bytes.Buffer{})); err == nil {
		t.Fatal("Expected an error for missing credentials")
	}
}

func TestLoad_NoUsersFails(t *testing.T) {
	t.Setenv("USERS", "")
	if _, err := Load(logger.NewWithWriter(&bytes.Buffer{})); err == nil {
		t.Fatal("Expected an error when USERS is empty")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("USERS", "john")
	t.Setenv("JOHN_COMPANIES", "")

	cfg, err := Load(logger.NewWithWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SyncDaysCount != 7 {
		t.Errorf("Expected default lookback of 7 days, got %d", cfg.SyncDaysCount)
	}
	if cfg.ChunkSize != 30 {
		t.Errorf("Expected default chunk size 30, got %d", cfg.ChunkSize)
	}
	if cfg.DisplayTimezone == nil || cfg.DisplayTimezone.String() != "Asia/Jerusalem" {
		t.Errorf("Expected default display timezone Asia/Jerusalem, got %v", cfg.DisplayTimezone)
	}
}
