package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("HPOS_DATA_URL", "https://example.test/hpos.csv")

	cfg := LoadConfig()

	if cfg.HPOSDataURL != "https://example.test/hpos.csv" {
		t.Fatalf("unexpected hpos url: %q", cfg.HPOSDataURL)
	}
	if cfg.HPOSThresholdLow != 0.38 || cfg.HPOSThresholdHigh != 0.42 {
		t.Fatalf("unexpected threshold defaults: %v / %v", cfg.HPOSThresholdLow, cfg.HPOSThresholdHigh)
	}
	if cfg.TargetHPLCTests != 1000 {
		t.Fatalf("unexpected target default: %d", cfg.TargetHPLCTests)
	}
	if cfg.CacheTTLSeconds != 3600 {
		t.Fatalf("unexpected cache ttl default: %d", cfg.CacheTTLSeconds)
	}
	if cfg.AutoRefreshSchedule != "@every 5m" {
		t.Fatalf("unexpected auto refresh default: %q", cfg.AutoRefreshSchedule)
	}
	if cfg.ExternalHTTPTimeoutSeconds != defaultExternalHTTPTimeoutSeconds {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.ListenAddr != ":8501" {
		t.Fatalf("unexpected listen addr default: %q", cfg.ListenAddr)
	}
	if cfg.PageTitle != "Project Chandana Dashboard" {
		t.Fatalf("unexpected page title default: %q", cfg.PageTitle)
	}
	if cfg.SyntheticRows != 250 || cfg.SyntheticSeed != 42 {
		t.Fatalf("unexpected synthetic defaults: rows=%d seed=%d", cfg.SyntheticRows, cfg.SyntheticSeed)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if !cfg.Deadline.IsZero() {
		t.Fatalf("expected zero deadline, got %v", cfg.Deadline)
	}
	if cfg.SlackConfigured() {
		t.Fatal("expected slack to be unconfigured")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
hpos_data_url: "https://yaml.test/hpos.csv"
hplc_data_path: "/data/hplc.csv"
hpos_threshold_low: 0.35
hpos_threshold_high: 0.45
target_hplc_tests: 500
completion_deadline: "2025-12-31"
timezone: "Asia/Kolkata"
slack_bot_token: "xoxb-yaml"
slack_channel_id: "C123"
auto_refresh_schedule: ""
synthetic_seed: 7
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("HPLC_DATA_PATH", "/env/hplc.csv")
	t.Setenv("TARGET_HPLC_TESTS", "750")
	t.Setenv("CACHE_TTL_SECONDS", "60")

	cfg := LoadConfig()

	if cfg.HPOSDataURL != "https://yaml.test/hpos.csv" {
		t.Fatalf("expected yaml hpos url, got %q", cfg.HPOSDataURL)
	}
	if cfg.HPLCDataPath != "/env/hplc.csv" {
		t.Fatalf("expected env hplc path, got %q", cfg.HPLCDataPath)
	}
	if got := cfg.Thresholds(); got.Low != 0.35 || got.High != 0.45 {
		t.Fatalf("unexpected thresholds: %+v", got)
	}
	if cfg.TargetHPLCTests != 750 {
		t.Fatalf("expected env target, got %d", cfg.TargetHPLCTests)
	}
	if cfg.CacheTTL().Seconds() != 60 {
		t.Fatalf("expected 60s ttl, got %v", cfg.CacheTTL())
	}
	if cfg.AutoRefreshSchedule != "" {
		t.Fatalf("expected explicit empty schedule to disable auto refresh, got %q", cfg.AutoRefreshSchedule)
	}
	if cfg.SyntheticSeed != 7 {
		t.Fatalf("expected yaml seed, got %d", cfg.SyntheticSeed)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if got := cfg.Deadline.Format("2006-01-02"); got != "2025-12-31" {
		t.Fatalf("got deadline %q, want %q", got, "2025-12-31")
	}
	if cfg.Deadline.Location().String() != "Asia/Kolkata" {
		t.Fatalf("deadline not in configured zone: %v", cfg.Deadline.Location())
	}
	if !cfg.SlackConfigured() {
		t.Fatal("expected slack to be configured")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("CH_TEST_STR", "value")
	envOverride(&s, "CH_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	i := 1
	t.Setenv("CH_TEST_INT", "42")
	envOverrideInt(&i, "CH_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	var i64 int64 = 1
	t.Setenv("CH_TEST_INT64", "9000000000")
	envOverrideInt64(&i64, "CH_TEST_INT64")
	if i64 != 9000000000 {
		t.Fatalf("envOverrideInt64 failed, got %d", i64)
	}

	f := 0.1
	t.Setenv("CH_TEST_FLOAT", "0.75")
	envOverrideFloat(&f, "CH_TEST_FLOAT")
	if f != 0.75 {
		t.Fatalf("envOverrideFloat failed, got %f", f)
	}
}

func TestParseDeadline(t *testing.T) {
	if _, err := parseDeadline("2025-12-31", nil); err != nil {
		t.Fatalf("parseDeadline returned error: %v", err)
	}
	if _, err := parseDeadline("31/12/2025", nil); err == nil {
		t.Fatal("expected parseDeadline to reject non ISO dates")
	}
}

func expectFatal(t *testing.T, name string, env map[string]string) {
	t.Helper()
	if os.Getenv("CH_FATAL_CASE") == name {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		for k, v := range env {
			_ = os.Setenv(k, v)
		}
		LoadConfig()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^"+t.Name()+"$")
	cmd.Env = append(os.Environ(), "CH_FATAL_CASE="+name)
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	expectFatal(t, "tz", map[string]string{"TIMEZONE": "Mars/Colony"})
}

func TestLoadConfigInvertedThresholdsFatal(t *testing.T) {
	expectFatal(t, "thresholds", map[string]string{
		"TIMEZONE":            "UTC",
		"HPOS_THRESHOLD_LOW":  "0.45",
		"HPOS_THRESHOLD_HIGH": "0.40",
	})
}

func TestLoadConfigShortTimeoutFatal(t *testing.T) {
	expectFatal(t, "timeout", map[string]string{
		"TIMEZONE":                      "UTC",
		"EXTERNAL_HTTP_TIMEOUT_SECONDS": "2",
	})
}
