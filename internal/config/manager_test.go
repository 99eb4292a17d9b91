package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"telegram": {"token": "x:y", "owner_user_ids": [42], "group_log": "", "poll_timeout": "10s"},
		"logging": {"level": "info", "console": true, "file": {"enabled": false, "path": ""}, "telegram": {"enabled": false, "thread_id": 0, "min_level": "", "rate_per_sec": 0}},
		"scheduler": {"enabled": true},
		"storage": {"driver": "file", "path": "./state.json"},
		"plugins": {"timezone": {"enabled": true, "config": {"refresh_interval": "15s"}}}
	}`)

	m := NewConfigManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "x:y" || len(cfg.Telegram.OwnerUserIDs) != 1 {
		t.Fatalf("telegram: %+v", cfg.Telegram)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	p, ok := cfg.Plugins["timezone"]
	if !ok || !p.Enabled || len(p.Config) == 0 {
		t.Fatalf("plugins: %+v", cfg.Plugins)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get should return the committed config")
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "x:y"
  owner_user_ids: [1, 2]
  group_log: ""
  poll_timeout: 30s
logging:
  level: debug
  console: true
  file: {enabled: true, path: ./bot.log}
  telegram: {enabled: false, thread_id: 0, min_level: "", rate_per_sec: 0}
scheduler:
  enabled: true
  timezone: UTC
plugins:
  timezone:
    enabled: true
`)

	cfg, err := NewConfigManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.File.Enabled {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Scheduler.Timezone != "UTC" {
		t.Fatalf("scheduler: %+v", cfg.Scheduler)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
	}{
		{"top level", `{"telegram": {"token": "t", "owner_user_ids": [], "group_log": "", "poll_timeout": ""}, "logging": {"level": "", "console": false, "file": {"enabled": false, "path": ""}, "telegram": {"enabled": false, "thread_id": 0, "min_level": "", "rate_per_sec": 0}}, "scheduler": {"enabled": false}, "plugins": {}, "bogus": 1}`},
		{"plugin section", `{"telegram": {"token": "t", "owner_user_ids": [], "group_log": "", "poll_timeout": ""}, "logging": {"level": "", "console": false, "file": {"enabled": false, "path": ""}, "telegram": {"enabled": false, "thread_id": 0, "min_level": "", "rate_per_sec": 0}}, "scheduler": {"enabled": false}, "plugins": {"timezone": {"enabled": true, "timeout": "5s"}}}`},
		{"trailing data", `{"telegram": {"token": "t", "owner_user_ids": [], "group_log": "", "poll_timeout": ""}, "logging": {"level": "", "console": false, "file": {"enabled": false, "path": ""}, "telegram": {"enabled": false, "thread_id": 0, "min_level": "", "rate_per_sec": 0}}, "scheduler": {"enabled": false}, "plugins": {}} {}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, "config.json", tc.body)
			if _, err := NewConfigManager(path).Parse(); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", "  "); err != nil || d != 0 {
		t.Fatalf("blank: d=%v err=%v", d, err)
	}
	if _, err := ParseDurationField("x", "nope"); err == nil {
		t.Fatal("invalid accepted")
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("negative accepted")
	}
	if d, err := ParseDurationOrDefault("x", "", 7); err != nil || d != 7 {
		t.Fatalf("default: d=%v err=%v", d, err)
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	oldCfg := &Config{}
	newCfg := &Config{
		Telegram: TelegramConfig{PollTimeout: "10s"},
		Storage:  &StorageConfig{Driver: "sqlite", Path: "./db"},
	}
	changed, _, plugins := SummarizeConfigChange(oldCfg, newCfg)
	want := map[string]bool{"telegram": true, "storage": true}
	for _, c := range changed {
		if !want[c] {
			t.Fatalf("unexpected section %q in %v", c, changed)
		}
		delete(want, c)
	}
	if len(want) != 0 {
		t.Fatalf("missing sections: %v (got %v)", want, changed)
	}
	if len(plugins) != 0 {
		t.Fatalf("plugins: %v", plugins)
	}

	// Plugin config content change is detected through canonical JSON.
	a := &Config{Plugins: map[string]PluginConfigRaw{"timezone": {Enabled: true, Config: []byte(`{"a":1,"b":2}`)}}}
	b := &Config{Plugins: map[string]PluginConfigRaw{"timezone": {Enabled: true, Config: []byte(`{"b":2,"a":1}`)}}}
	c := &Config{Plugins: map[string]PluginConfigRaw{"timezone": {Enabled: true, Config: []byte(`{"a":9}`)}}}
	if _, _, p := SummarizeConfigChange(a, b); len(p) != 0 {
		t.Fatalf("key order should not count as a change: %v", p)
	}
	if _, _, p := SummarizeConfigChange(a, c); len(p) != 1 || p[0] != "timezone" {
		t.Fatalf("content change not detected: %v", p)
	}
}
