package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chandana/internal/domain"
)

const (
	defaultExternalHTTPTimeoutSeconds = 30
	defaultCacheTTLSeconds            = 3600
	defaultTargetHPLCTests            = 1000
	defaultSyntheticRows              = 250
	defaultSyntheticSeed              = 42
	defaultAutoRefreshSchedule        = "@every 5m"
	defaultListenAddr                 = ":8501"
	defaultPageTitle                  = "Project Chandana Dashboard"
	deadlineLayout                    = "2006-01-02"
)

type Config struct {
	HPOSDataURL  string `yaml:"hpos_data_url"`
	HPLCDataPath string `yaml:"hplc_data_path"`

	HPOSThresholdLow  float64 `yaml:"hpos_threshold_low"`
	HPOSThresholdHigh float64 `yaml:"hpos_threshold_high"`

	TargetHPLCTests    int    `yaml:"target_hplc_tests"`
	CompletionDeadline string `yaml:"completion_deadline"`
	HPLCDateColumn     string `yaml:"hplc_date_column"`

	CacheTTLSeconds            int    `yaml:"cache_ttl_seconds"`
	AutoRefreshSchedule        string `yaml:"auto_refresh_schedule"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	ListenAddr string `yaml:"listen_addr"`
	PageTitle  string `yaml:"page_title"`

	SyntheticRows int   `yaml:"synthetic_rows"`
	SyntheticSeed int64 `yaml:"synthetic_seed"`

	DBPath         string `yaml:"db_path"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
	Timezone       string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
	Deadline time.Time      `yaml:"-"` // parsed CompletionDeadline, zero when unset

	// autoRefreshSet distinguishes an explicit empty schedule (disabled)
	// from an absent key.
	autoRefreshSet bool
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		var keys map[string]any
		if err := yaml.Unmarshal(data, &keys); err == nil {
			_, cfg.autoRefreshSet = keys["auto_refresh_schedule"]
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.HPOSDataURL, "HPOS_DATA_URL")
	envOverride(&cfg.HPLCDataPath, "HPLC_DATA_PATH")
	envOverrideFloat(&cfg.HPOSThresholdLow, "HPOS_THRESHOLD_LOW")
	envOverrideFloat(&cfg.HPOSThresholdHigh, "HPOS_THRESHOLD_HIGH")
	envOverrideInt(&cfg.TargetHPLCTests, "TARGET_HPLC_TESTS")
	envOverride(&cfg.CompletionDeadline, "COMPLETION_DEADLINE")
	envOverride(&cfg.HPLCDateColumn, "HPLC_DATE_COLUMN")
	envOverrideInt(&cfg.CacheTTLSeconds, "CACHE_TTL_SECONDS")
	if val, ok := os.LookupEnv("AUTO_REFRESH_SCHEDULE"); ok {
		cfg.AutoRefreshSchedule = val
		cfg.autoRefreshSet = true
	}
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.PageTitle, "PAGE_TITLE")
	envOverrideInt(&cfg.SyntheticRows, "SYNTHETIC_ROWS")
	envOverrideInt64(&cfg.SyntheticSeed, "SYNTHETIC_SEED")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.HPOSThresholdLow == 0 {
		cfg.HPOSThresholdLow = domain.DefaultThresholds.Low
	}
	if cfg.HPOSThresholdHigh == 0 {
		cfg.HPOSThresholdHigh = domain.DefaultThresholds.High
	}
	if cfg.TargetHPLCTests == 0 {
		cfg.TargetHPLCTests = defaultTargetHPLCTests
	}
	if cfg.CacheTTLSeconds == 0 {
		cfg.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if !cfg.autoRefreshSet {
		cfg.AutoRefreshSchedule = defaultAutoRefreshSchedule
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.PageTitle == "" {
		cfg.PageTitle = defaultPageTitle
	}
	if cfg.SyntheticRows == 0 {
		cfg.SyntheticRows = defaultSyntheticRows
	}
	if cfg.SyntheticSeed == 0 {
		cfg.SyntheticSeed = defaultSyntheticSeed
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.HPOSDataURL == "" {
		log.Printf("WARNING: hpos_data_url is not set. HPOS views will show synthetic data.")
	}
	if cfg.HPLCDataPath == "" {
		log.Printf("WARNING: hplc_data_path is not set. HPLC views will show synthetic data.")
	}
	if (cfg.SlackBotToken == "") != (cfg.SlackChannelID == "") {
		log.Printf("WARNING: slack_bot_token and slack_channel_id must both be set for Slack notices; logging instead.")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Thresholds().Validate(); err != nil {
		log.Fatalf("invalid hpos thresholds: %v", err)
	}
	if cfg.TargetHPLCTests < 1 {
		log.Fatalf("invalid target_hplc_tests '%d': must be >= 1", cfg.TargetHPLCTests)
	}
	if cfg.CacheTTLSeconds < 0 {
		log.Fatalf("invalid cache_ttl_seconds '%d': must be >= 0", cfg.CacheTTLSeconds)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.SyntheticRows < 1 {
		log.Fatalf("invalid synthetic_rows '%d': must be >= 1", cfg.SyntheticRows)
	}
	if cfg.CompletionDeadline != "" {
		deadline, err := parseDeadline(cfg.CompletionDeadline, cfg.Location)
		if err != nil {
			log.Fatalf("invalid completion_deadline '%s': %v", cfg.CompletionDeadline, err)
		}
		cfg.Deadline = deadline
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideInt64(field *int64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func (c Config) Thresholds() domain.Thresholds {
	return domain.Thresholds{Low: c.HPOSThresholdLow, High: c.HPOSThresholdHigh}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func parseDeadline(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(deadlineLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD: %w", err)
	}
	return t, nil
}
